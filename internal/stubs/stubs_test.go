package stubs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/match"
	"horse.fit/threatwatch/internal/review"
	"horse.fit/threatwatch/internal/textsim"
)

func TestExtractSchool(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Bomb threat at Tucker High School prompts evacuation":    "Tucker High School",
		"Second American Canyon High School student arrested":     "American Canyon High School",
		"Police investigate threat at Lincoln University":         "Lincoln University",
		"Oak Ridge Elementary School placed on lockdown":          "Oak Ridge Elementary School",
		"Threat made against Westfield Academy":                   "Westfield Academy",
		"police respond to threat, no school named in this story": "",
	}
	for title, want := range cases {
		if got := ExtractSchool(title); got != want {
			t.Fatalf("ExtractSchool(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestExtractState(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"West Virginia school evacuated":          "West Virginia",
		"Threat closes schools in virginia":       "Virginia",
		"Washington D.C. school threat":           "Washington D.C.",
		"Lockdown lifted at Flint middle school":  "Michigan",
		"Tucson high school receives bomb threat": "Arizona",
		"Arkansas student charged":                "Arkansas",
		"Westville school threat":                 "",
	}
	for title, want := range cases {
		if got := ExtractState(title); got != want {
			t.Fatalf("ExtractState(%q) = %q, want %q", title, got, want)
		}
	}
	if Region("Georgia") != "South" || Region("Ohio") != "Midwest" || Region("") != "" {
		t.Fatalf("unexpected region lookup")
	}
}

func TestExtractThreatAndSchoolType(t *testing.T) {
	t.Parallel()

	threats := map[string]string{
		"Bomb and gun threat at school":     "Bomb and Shooting",
		"Bomb threat at school":             "Bomb",
		"Shooting threat at middle school":  "Shooting",
		"School placed on lockdown":         "Threat",
		"Student arrested at high school":   "General Threat",
		"Threatening message sent to staff": "Threat",
	}
	for title, want := range threats {
		if got := ExtractThreatType(title); got != want {
			t.Fatalf("ExtractThreatType(%q) = %q, want %q", title, got, want)
		}
	}

	levels := map[string]string{
		"Oak Ridge Elementary evacuated":     "Elementary School",
		"Junior high student arrested":       "Middle School",
		"Tucker High School threat":          "High School",
		"Threat at Lincoln University":       "University/College",
		"Threat at a school near Des Moines": "",
	}
	for title, want := range levels {
		if got := ExtractSchoolType(title); got != want {
			t.Fatalf("ExtractSchoolType(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestLikelyUS(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"Lincoln High School bomb threat prompts evacuation": true,
		"Bomb threat at Toronto high school":                 false,
		"Ohio school board meets on budget":                  true,
		"Students in London evacuated after threat":          false,
		"School board meets on budget":                       false,
		"Markets rally on jobs data":                         false,
	}
	for title, want := range cases {
		if got := LikelyUS(title); got != want {
			t.Fatalf("LikelyUS(%q) = %v, want %v", title, got, want)
		}
	}
}

func TestOffenseDate(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2026-01-05T14:00:00Z":          "5-Jan",
		"2026-03-09":                    "9-Mar",
		"Mon, 09 Mar 2026 13:00:00 GMT": "9-Mar",
		"":                              NotSpecified,
		"sometime last week":            NotSpecified,
	}
	for published, want := range cases {
		if got := OffenseDate(published); got != want {
			t.Fatalf("OffenseDate(%q) = %q, want %q", published, got, want)
		}
	}
}

func TestStubDefaults(t *testing.T) {
	t.Parallel()

	stub := Stub(incident.Article{
		Title:        "Tucker High School in Georgia evacuated after bomb threat",
		URL:          " https://example.com/tucker ",
		Published:    "2026-01-05T14:00:00Z",
		Snippet:      "<b>Students</b> were evacuated",
		OtherSources: []string{"https://a.example", "https://b.example"},
	}, 12)

	if stub.ID != 12 || stub.School != "Tucker High School" || stub.State != "Georgia" || stub.Region != "South" {
		t.Fatalf("unexpected identity fields: %+v", stub)
	}
	if stub.Source != "https://example.com/tucker" || stub.OffenseDate != "5-Jan" || stub.ThreatType != "Bomb" {
		t.Fatalf("unexpected source fields: %+v", stub)
	}
	if stub.IncidentDetails != "Students were evacuated" {
		t.Fatalf("expected stripped snippet as details, got %q", stub.IncidentDetails)
	}
	if stub.AdditionalSources != "https://a.example, https://b.example" {
		t.Fatalf("unexpected additional sources %q", stub.AdditionalSources)
	}
	if stub.Time != NotSpecified || stub.Conveyance != "Not Disclosed" || stub.WhoThreatened != "School" ||
		stub.Bond != "N/A" || stub.Charges != "Unknown" || stub.LockdownType != "N/A" {
		t.Fatalf("unexpected placeholders: %+v", stub)
	}

	bare := Stub(incident.Article{Title: "School threat in Ohio"}, 1)
	if bare.IncidentDetails != "School threat in Ohio" || bare.OffenseDate != NotSpecified {
		t.Fatalf("expected title fallback and unspecified date, got %+v", bare)
	}
}

func newConverter() Converter {
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return Converter{
		Checker: review.Checker{
			Scorer: match.NewScorer(textsim.Levenshtein{}),
			Policy: review.DefaultPolicy(),
			Now:    func() time.Time { return fixed },
		},
		Logger: zerolog.Nop(),
	}
}

var existingIncidents = []incident.Record{
	{ID: 7, School: "Tucker High School", State: "Georgia", OffenseDate: "5-Jan", ThreatType: "Bomb"},
	{ID: 9, IncidentDetails: "Bomb threat forces evacuation at Riverside campus police say"},
}

func TestConvertRoutesArticles(t *testing.T) {
	t.Parallel()

	articles := []incident.Article{
		{Title: "  "},
		{Title: "Bomb threat at Toronto high school", URL: "https://example.com/toronto"},
		{Title: "Tucker High School in Georgia evacuated after bomb threat", URL: "https://example.com/tucker", Published: "2026-01-05T14:00:00Z"},
		{Title: "Bomb threat forces evacuation at Riverside campus, police say", URL: "https://example.com/riverside", Published: "2026-03-09T10:00:00Z"},
		{Title: "Lincoln Middle School in Ohio placed on lockdown after gun threat", URL: "https://example.com/lincoln", Published: "2026-03-09T12:00:00Z"},
	}

	state := &review.State{Queue: []review.Entry{}, Log: []review.Entry{}}
	result := newConverter().Convert(context.Background(), state, articles, existingIncidents)

	if result.Processed != 5 || result.SkippedEmpty != 1 || result.SkippedNonUS != 1 {
		t.Fatalf("unexpected skip counts: %+v", result)
	}
	if result.SkippedDuplicate != 2 || result.SentToReview != 0 {
		t.Fatalf("expected structured and headline duplicates, got %+v", result)
	}
	if len(result.Stubs) != 1 {
		t.Fatalf("expected one new stub, got %d", len(result.Stubs))
	}

	stub := result.Stubs[0]
	if stub.ID != 10 || stub.School != "Lincoln Middle School" || stub.ThreatType != "Shooting" || stub.State != "Ohio" {
		t.Fatalf("unexpected stub: %+v", stub)
	}

	if len(state.Log) != 1 || state.Log[0].Decision != review.DecisionAutoDuplicate || state.Log[0].Match.ExistingID != 7 {
		t.Fatalf("expected the Tucker duplicate in the log, got %+v", state.Log)
	}
	if state.Log[0].Timestamp != "2026-03-10T09:00:00Z" {
		t.Fatalf("unexpected log timestamp %q", state.Log[0].Timestamp)
	}
}

func TestConvertSkipsOtherLanguages(t *testing.T) {
	t.Parallel()

	converter := newConverter()
	converter.Language = "en"

	articles := []incident.Article{
		{Title: "Amenaza de bomba obliga a evacuar una escuela secundaria en Texas esta mañana", URL: "https://example.com/es"},
	}
	state := &review.State{Queue: []review.Entry{}, Log: []review.Entry{}}
	result := converter.Convert(context.Background(), state, articles, nil)
	if result.SkippedLanguage != 1 || len(result.Stubs) != 0 {
		t.Fatalf("expected the Spanish headline to be skipped, got %+v", result)
	}
}

func TestConvertEnrichesMissingSnippets(t *testing.T) {
	t.Parallel()

	converter := newConverter()
	converter.Enrich = func(_ context.Context, url string) (string, error) {
		if url == "https://example.com/broken" {
			return "", errors.New("boom")
		}
		return "  Full   article\ntext  ", nil
	}

	articles := []incident.Article{
		{Title: "Oak Ridge Elementary School in Texas on lockdown", URL: "https://example.com/oak"},
		{Title: "Pine Hill Middle School in Utah receives threat", URL: "https://example.com/broken"},
		{Title: "Cedar High School in Iowa evacuated", URL: "https://example.com/cedar", Snippet: "Snippet wins"},
	}
	state := &review.State{Queue: []review.Entry{}, Log: []review.Entry{}}
	result := converter.Convert(context.Background(), state, articles, nil)
	if len(result.Stubs) != 3 {
		t.Fatalf("expected 3 stubs, got %+v", result)
	}
	if got := result.Stubs[0].IncidentDetails; got != "Full article text" {
		t.Fatalf("expected enriched details, got %q", got)
	}
	if got := result.Stubs[1].IncidentDetails; got != "Pine Hill Middle School in Utah receives threat" {
		t.Fatalf("expected title fallback on enrichment failure, got %q", got)
	}
	if got := result.Stubs[2].IncidentDetails; got != "Snippet wins" {
		t.Fatalf("expected snippet to be kept, got %q", got)
	}
	if result.Stubs[0].ID != 1 || result.Stubs[2].ID != 3 {
		t.Fatalf("expected sequential ids from 1, got %d and %d", result.Stubs[0].ID, result.Stubs[2].ID)
	}
}
