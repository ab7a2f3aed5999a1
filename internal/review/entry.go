package review

import (
	"fmt"

	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/match"
)

const maxDetailsRunes = 200

// Decision is the lifecycle state of an Entry.
type Decision string

const (
	DecisionPendingReview Decision = "pending_review"
	DecisionAutoDuplicate Decision = "auto_duplicate"
	DecisionAccepted      Decision = "accepted_duplicate"
	DecisionRejected      Decision = "rejected_not_duplicate"
)

// Terminal reports whether entries in this state belong in the Dedup Log.
func (d Decision) Terminal() bool {
	switch d {
	case DecisionAutoDuplicate, DecisionAccepted, DecisionRejected:
		return true
	default:
		return false
	}
}

// Candidate holds the abbreviated fields of the incoming record.
type Candidate struct {
	School     string `json:"school"`
	State      string `json:"state"`
	Date       string `json:"date"`
	ThreatType string `json:"threat_type"`
	Details    string `json:"details"`
}

// MatchSummary holds the abbreviated fields of the matched existing record.
type MatchSummary struct {
	ExistingID     int          `json:"existing_id"`
	ExistingSchool string       `json:"existing_school"`
	ExistingState  string       `json:"existing_state"`
	ExistingDate   string       `json:"existing_date"`
	Scores         match.Result `json:"scores"`
}

// Entry is one persisted match decision.
type Entry struct {
	MatchID    int          `json:"match_id"`
	Timestamp  string       `json:"timestamp"`
	Candidate  Candidate    `json:"candidate"`
	Match      MatchSummary `json:"match"`
	Confidence float64      `json:"confidence"`
	Decision   Decision     `json:"decision"`
	ReviewedAt string       `json:"reviewed_at,omitempty"`
}

func newEntry(id int, timestamp string, candidate incident.Record, m match.Match, decision Decision) Entry {
	return Entry{
		MatchID:   id,
		Timestamp: timestamp,
		Candidate: Candidate{
			School:     candidate.School,
			State:      candidate.State,
			Date:       candidate.OffenseDate,
			ThreatType: candidate.ThreatType,
			Details:    truncateRunes(candidate.IncidentDetails, maxDetailsRunes),
		},
		Match: MatchSummary{
			ExistingID:     m.Existing.ID,
			ExistingSchool: m.Existing.School,
			ExistingState:  m.Existing.State,
			ExistingDate:   m.Existing.OffenseDate,
			Scores:         m.Result,
		},
		Confidence: m.Result.Composite,
		Decision:   decision,
	}
}

// NotFoundError reports an accept or reject against a match id that is not
// pending review.
type NotFoundError struct {
	MatchID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("match %d not found in pending review queue", e.MatchID)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
