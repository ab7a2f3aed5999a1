package incident

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Record is one school-threat incident as stored in the canonical
// incidents document. Absent fields are empty strings, never null.
type Record struct {
	ID                int    `json:"id"`
	ArticleDate       string `json:"article_date,omitempty"`
	School            string `json:"school"`
	SchoolType        string `json:"school_type"`
	State             string `json:"state"`
	Region            string `json:"region"`
	Source            string `json:"source"`
	OffenseDate       string `json:"offense_date"`
	Time              string `json:"time"`
	LawEnforcement    string `json:"law_enforcement"`
	ThreatType        string `json:"threat_type"`
	Conveyance        string `json:"conveyance"`
	WhoThreatened     string `json:"who_threatened"`
	IncidentDetails   string `json:"incident_details"`
	LockdownType      string `json:"lockdown_type"`
	Evacuation        string `json:"evacuation,omitempty"`
	ClassesCancelled  string `json:"classes_cancelled"`
	Precautions       string `json:"precautions"`
	Weapons           string `json:"weapons"`
	Gender            string `json:"gender"`
	Charged           string `json:"charged"`
	Custody           string `json:"custody"`
	Charges           string `json:"charges"`
	Bond              string `json:"bond"`
	AdditionalSources string `json:"additional_sources"`
}

// Article is one news item feeding the clusterer.
type Article struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Published    string   `json:"published"`
	Source       string   `json:"source"`
	Snippet      string   `json:"snippet"`
	OtherSources []string `json:"other_sources"`
}

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// PublishedTime parses Published on a best-effort basis.
func (a Article) PublishedTime() (time.Time, bool) {
	raw := strings.TrimSpace(a.Published)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// PublishedKey returns a string that orders articles chronologically.
// Parseable timestamps are rendered as UTC RFC3339; anything else falls
// back to the raw trimmed value. Empty values sort first.
func (a Article) PublishedKey() string {
	if ts, ok := a.PublishedTime(); ok {
		return ts.Format("2006-01-02T15:04:05Z")
	}
	return strings.TrimSpace(a.Published)
}

// ValidationError reports a record whose shape is malformed. Callers skip
// the record and keep processing the batch.
type ValidationError struct {
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d is invalid: %v", e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
