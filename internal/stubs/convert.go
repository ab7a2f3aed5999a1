// Package stubs turns clustered news articles into stub incident records
// and screens them against the canonical incidents.
package stubs

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/threatwatch/internal/cluster"
	"horse.fit/threatwatch/internal/datafile"
	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/langdetect"
	"horse.fit/threatwatch/internal/reader"
	"horse.fit/threatwatch/internal/review"
)

const maxDetailsRunes = 500

// EnrichFunc returns the readable text of the page at url.
type EnrichFunc func(ctx context.Context, url string) (string, error)

// Converter builds stubs from articles. Language, when set, is the
// two-letter code headlines must be written in. Enrich, when set, fills
// details for articles that carry no snippet.
type Converter struct {
	Checker  review.Checker
	Language string
	Enrich   EnrichFunc
	Logger   zerolog.Logger
}

// Result summarises one conversion run.
type Result struct {
	Processed        int
	SkippedEmpty     int
	SkippedLanguage  int
	SkippedNonUS     int
	SkippedDuplicate int
	SentToReview     int
	Stubs            []incident.Record
}

// Stub converts one article into an incident record with the given id.
// Fields a headline cannot tell us get the same placeholders analysts use
// in the spreadsheet.
func Stub(article incident.Article, id int) incident.Record {
	title := strings.TrimSpace(article.Title)
	state := ExtractState(title)

	details := reader.Truncate(reader.StripMarkup(article.Snippet), maxDetailsRunes)
	if details == "" {
		details = title
	}

	return incident.Record{
		ID:                id,
		School:            ExtractSchool(title),
		SchoolType:        ExtractSchoolType(title),
		State:             state,
		Region:            Region(state),
		Source:            strings.TrimSpace(article.URL),
		OffenseDate:       OffenseDate(article.Published),
		Time:              NotSpecified,
		LawEnforcement:    "Unknown",
		ThreatType:        ExtractThreatType(title),
		Conveyance:        "Not Disclosed",
		WhoThreatened:     "School",
		IncidentDetails:   details,
		LockdownType:      "N/A",
		ClassesCancelled:  "N/A",
		Precautions:       "N/A",
		Weapons:           "Unknown",
		Gender:            "Unknown",
		Charged:           "Unknown",
		Custody:           "Unknown",
		Charges:           "Unknown",
		Bond:              "N/A",
		AdditionalSources: strings.Join(article.OtherSources, ", "),
	}
}

// Convert screens every article and returns the stubs judged new. Stub ids
// continue from the highest id in existing. Matches against existing
// records are recorded on state through the Checker.
func (c Converter) Convert(ctx context.Context, state *review.State, articles []incident.Article, existing []incident.Record) Result {
	result := Result{Stubs: []incident.Record{}}
	batch := c.Checker.Begin(state)
	nextID := datafile.MaxIncidentID(existing) + 1

	for _, article := range articles {
		result.Processed++

		title := strings.TrimSpace(article.Title)
		if title == "" {
			result.SkippedEmpty++
			continue
		}
		if c.Language != "" && !langdetect.Matches(title, c.Language) {
			result.SkippedLanguage++
			continue
		}
		if !LikelyUS(title) {
			result.SkippedNonUS++
			continue
		}

		stub := Stub(article, nextID)
		if strings.TrimSpace(article.Snippet) == "" {
			stub.IncidentDetails = c.enrich(ctx, stub.Source, stub.IncidentDetails)
		}

		outcome := batch.Route(stub, existing)
		switch outcome.Disposition {
		case review.DispositionAutoDuplicate:
			result.SkippedDuplicate++
			continue
		case review.DispositionPendingReview:
			result.SentToReview++
			continue
		}

		if stub.School == "" && headlineDuplicate(title, existing) {
			result.SkippedDuplicate++
			continue
		}

		result.Stubs = append(result.Stubs, stub)
		nextID++
	}
	return result
}

func (c Converter) enrich(ctx context.Context, url, fallback string) string {
	if c.Enrich == nil || url == "" {
		return fallback
	}
	text, err := c.Enrich(ctx, url)
	if err != nil {
		c.Logger.Warn().Err(err).Str("url", url).Msg("article enrichment failed")
		return fallback
	}
	text = reader.Truncate(reader.CleanText(text), maxDetailsRunes)
	if text == "" {
		return fallback
	}
	return text
}

// headlineDuplicate compares headline words with the school and details
// of each existing record.
func headlineDuplicate(title string, existing []incident.Record) bool {
	words := cluster.TitleWords(title)
	for _, record := range existing {
		other := cluster.TitleWords(record.School + " " + record.IncidentDetails)
		if cluster.SameIncident(words, other, cluster.HeadlineFallbackThreshold) {
			return true
		}
	}
	return false
}
