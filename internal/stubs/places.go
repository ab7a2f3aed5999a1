package stubs

import (
	"regexp"
	"sort"
)

var usStates = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado", "Connecticut",
	"Delaware", "Florida", "Georgia", "Hawaii", "Idaho", "Illinois", "Indiana", "Iowa",
	"Kansas", "Kentucky", "Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan",
	"Minnesota", "Mississippi", "Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire",
	"New Jersey", "New Mexico", "New York", "North Carolina", "North Dakota", "Ohio",
	"Oklahoma", "Oregon", "Pennsylvania", "Rhode Island", "South Carolina", "South Dakota",
	"Tennessee", "Texas", "Utah", "Vermont", "Virginia", "Washington", "West Virginia",
	"Wisconsin", "Wyoming", "Washington D.C.",
}

var stateRegions = map[string]string{
	"Connecticut": "Northeast", "Maine": "Northeast", "Massachusetts": "Northeast",
	"New Hampshire": "Northeast", "Rhode Island": "Northeast", "Vermont": "Northeast",
	"New Jersey": "Northeast", "New York": "Northeast", "Pennsylvania": "Northeast",

	"Alabama": "South", "Arkansas": "South", "Delaware": "South", "Florida": "South",
	"Georgia": "South", "Kentucky": "South", "Louisiana": "South", "Maryland": "South",
	"Mississippi": "South", "North Carolina": "South", "Oklahoma": "South",
	"South Carolina": "South", "Tennessee": "South", "Texas": "South", "Virginia": "South",
	"West Virginia": "South", "Washington D.C.": "South",

	"Illinois": "Midwest", "Indiana": "Midwest", "Iowa": "Midwest", "Kansas": "Midwest",
	"Michigan": "Midwest", "Minnesota": "Midwest", "Missouri": "Midwest", "Nebraska": "Midwest",
	"North Dakota": "Midwest", "Ohio": "Midwest", "South Dakota": "Midwest", "Wisconsin": "Midwest",

	"Alaska": "West", "Arizona": "West", "California": "West", "Colorado": "West",
	"Hawaii": "West", "Idaho": "West", "Montana": "West", "Nevada": "West",
	"New Mexico": "West", "Oregon": "West", "Utah": "West", "Washington": "West", "Wyoming": "West",
}

type place struct {
	name  string
	state string
}

// Cities that appear in more than one state are listed once, under the
// state they most often refer to in coverage.
var usCities = []place{
	{"Detroit", "Michigan"}, {"Flint", "Michigan"}, {"Ann Arbor", "Michigan"}, {"Grand Rapids", "Michigan"},
	{"Lansing", "Michigan"}, {"Kalamazoo", "Michigan"}, {"Dearborn", "Michigan"},
	{"Houston", "Texas"}, {"Dallas", "Texas"}, {"Austin", "Texas"}, {"San Antonio", "Texas"},
	{"Fort Worth", "Texas"}, {"El Paso", "Texas"}, {"Arlington", "Virginia"}, {"Plano", "Texas"},
	{"Lubbock", "Texas"}, {"Laredo", "Texas"}, {"Irving", "Texas"}, {"Amarillo", "Texas"},
	{"Los Angeles", "California"}, {"San Francisco", "California"}, {"San Diego", "California"},
	{"Sacramento", "California"}, {"San Jose", "California"}, {"Fresno", "California"},
	{"Oakland", "California"}, {"Long Beach", "California"}, {"Bakersfield", "California"},
	{"Stockton", "California"}, {"Riverside", "California"}, {"Anaheim", "California"},
	{"Santa Ana", "California"}, {"Irvine", "California"}, {"Oxnard", "California"},
	{"Chicago", "Illinois"}, {"Springfield", "Missouri"}, {"Rockford", "Illinois"}, {"Aurora", "Colorado"},
	{"New York City", "New York"}, {"NYC", "New York"}, {"Brooklyn", "New York"}, {"Bronx", "New York"},
	{"Queens", "New York"}, {"Manhattan", "New York"}, {"Buffalo", "New York"}, {"Rochester", "New York"},
	{"Syracuse", "New York"}, {"Albany", "New York"}, {"Yonkers", "New York"},
	{"Philadelphia", "Pennsylvania"}, {"Pittsburgh", "Pennsylvania"}, {"Allentown", "Pennsylvania"},
	{"Scranton", "Pennsylvania"}, {"Lackawanna", "Pennsylvania"}, {"Erie", "Pennsylvania"},
	{"Harrisburg", "Pennsylvania"}, {"Reading", "Pennsylvania"}, {"Bethlehem", "Pennsylvania"},
	{"Miami", "Florida"}, {"Orlando", "Florida"}, {"Tampa", "Florida"}, {"Jacksonville", "Florida"},
	{"St. Petersburg", "Florida"}, {"Fort Lauderdale", "Florida"}, {"Tallahassee", "Florida"},
	{"Palm Beach", "Florida"}, {"Broward", "Florida"}, {"Hialeah", "Florida"}, {"Gainesville", "Florida"},
	{"Pensacola", "Florida"}, {"Daytona", "Florida"}, {"Cape Coral", "Florida"},
	{"Atlanta", "Georgia"}, {"Savannah", "Georgia"}, {"Augusta", "Georgia"}, {"Macon", "Georgia"},
	{"Columbus", "Ohio"}, {"Cleveland", "Ohio"}, {"Cincinnati", "Ohio"}, {"Toledo", "Ohio"},
	{"Akron", "Ohio"}, {"Dayton", "Ohio"}, {"Canton", "Ohio"}, {"Youngstown", "Ohio"},
	{"Charlotte", "North Carolina"}, {"Raleigh", "North Carolina"}, {"Durham", "North Carolina"},
	{"Greensboro", "North Carolina"}, {"Winston-Salem", "North Carolina"}, {"Fayetteville", "Arkansas"},
	{"Phoenix", "Arizona"}, {"Tucson", "Arizona"}, {"Mesa", "Arizona"}, {"Scottsdale", "Arizona"},
	{"Chandler", "Arizona"}, {"Tempe", "Arizona"}, {"Gilbert", "Arizona"}, {"Glendale", "Arizona"},
	{"Denver", "Colorado"}, {"Colorado Springs", "Colorado"}, {"Boulder", "Colorado"},
	{"Fort Collins", "Colorado"}, {"Lakewood", "Colorado"}, {"Pueblo", "Colorado"},
	{"Seattle", "Washington"}, {"Tacoma", "Washington"}, {"Spokane", "Washington"}, {"Bellevue", "Washington"},
	{"Nashville", "Tennessee"}, {"Memphis", "Tennessee"}, {"Knoxville", "Tennessee"}, {"Chattanooga", "Tennessee"},
	{"Indianapolis", "Indiana"}, {"Fort Wayne", "Indiana"}, {"Evansville", "Indiana"}, {"South Bend", "Indiana"},
	{"Baltimore", "Maryland"}, {"Annapolis", "Maryland"}, {"Silver Spring", "Maryland"},
	{"Las Vegas", "Nevada"}, {"Reno", "Nevada"}, {"Henderson", "Nevada"},
	{"Portland", "Oregon"}, {"Salem", "Oregon"}, {"Eugene", "Oregon"},
	{"Milwaukee", "Wisconsin"}, {"Madison", "Wisconsin"}, {"Green Bay", "Wisconsin"},
	{"Minneapolis", "Minnesota"}, {"St. Paul", "Minnesota"}, {"Duluth", "Minnesota"},
	{"Kansas City", "Missouri"}, {"St. Louis", "Missouri"},
	{"New Orleans", "Louisiana"}, {"Baton Rouge", "Louisiana"}, {"Shreveport", "Louisiana"},
	{"Louisville", "Kentucky"}, {"Lexington", "Kentucky"}, {"Bowling Green", "Kentucky"},
	{"Birmingham", "Alabama"}, {"Montgomery", "Alabama"}, {"Huntsville", "Alabama"}, {"Mobile", "Alabama"},
	{"Oklahoma City", "Oklahoma"}, {"Tulsa", "Oklahoma"}, {"Norman", "Oklahoma"},
	{"Omaha", "Nebraska"}, {"Lincoln", "Nebraska"},
	{"Charleston", "South Carolina"}, {"Columbia", "South Carolina"}, {"Greenville", "South Carolina"},
	{"Richmond", "Virginia"}, {"Virginia Beach", "Virginia"}, {"Norfolk", "Virginia"},
	{"Alexandria", "Virginia"}, {"Fairfax", "Virginia"},
	{"Little Rock", "Arkansas"},
	{"Des Moines", "Iowa"}, {"Cedar Rapids", "Iowa"}, {"Davenport", "Iowa"},
	{"Jackson", "Mississippi"}, {"Hattiesburg", "Mississippi"}, {"Biloxi", "Mississippi"},
	{"Hartford", "Connecticut"}, {"New Haven", "Connecticut"}, {"Stamford", "Connecticut"}, {"Bridgeport", "Connecticut"},
	{"Newark", "New Jersey"}, {"Jersey City", "New Jersey"}, {"Trenton", "New Jersey"}, {"Paterson", "New Jersey"},
	{"Camden", "New Jersey"}, {"Elizabeth", "New Jersey"},
	{"Albuquerque", "New Mexico"}, {"Santa Fe", "New Mexico"}, {"Las Cruces", "New Mexico"},
	{"Honolulu", "Hawaii"}, {"Boise", "Idaho"}, {"Salt Lake City", "Utah"}, {"Provo", "Utah"},
	{"Providence", "Rhode Island"}, {"Wilmington", "Delaware"},
	{"Anchorage", "Alaska"}, {"Billings", "Montana"}, {"Cheyenne", "Wyoming"},
	{"Sioux Falls", "South Dakota"}, {"Fargo", "North Dakota"}, {"Burlington", "Vermont"},
	{"Wichita", "Kansas"}, {"Topeka", "Kansas"}, {"Overland Park", "Kansas"},
}

type placeMatcher struct {
	pattern *regexp.Regexp
	state   string
}

var (
	stateMatchers = buildMatchers(statePlaces())
	cityMatchers  = buildMatchers(usCities)
)

func statePlaces() []place {
	places := make([]place, 0, len(usStates))
	for _, s := range usStates {
		places = append(places, place{name: s, state: s})
	}
	return places
}

// buildMatchers orders places longest name first so "West Virginia" wins
// over "Virginia".
func buildMatchers(places []place) []placeMatcher {
	ordered := append([]place(nil), places...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].name) > len(ordered[j].name)
	})

	matchers := make([]placeMatcher, 0, len(ordered))
	for _, p := range ordered {
		matchers = append(matchers, placeMatcher{
			pattern: regexp.MustCompile(`(?i)(?:^|[^\pL\pN_])` + regexp.QuoteMeta(p.name) + `(?:$|[^\pL\pN_])`),
			state:   p.state,
		})
	}
	return matchers
}

// ExtractState finds a US state named in text, directly or through a major
// city. It returns "" when nothing matches.
func ExtractState(text string) string {
	for _, m := range stateMatchers {
		if m.pattern.MatchString(text) {
			return m.state
		}
	}
	for _, m := range cityMatchers {
		if m.pattern.MatchString(text) {
			return m.state
		}
	}
	return ""
}

// Region returns the census region for a state name.
func Region(state string) string {
	return stateRegions[state]
}
