package review

import (
	"time"

	"horse.fit/threatwatch/internal/datafile"
)

// State is the Review Queue and Dedup Log loaded for one run.
type State struct {
	Queue []Entry
	Log   []Entry
}

// NextMatchID returns one more than the largest id in Queue and Log.
func (s *State) NextMatchID() int {
	maxID := 0
	for _, entries := range [][]Entry{s.Queue, s.Log} {
		for _, entry := range entries {
			if entry.MatchID > maxID {
				maxID = entry.MatchID
			}
		}
	}
	return maxID + 1
}

// Pending returns the queue entries awaiting review.
func (s *State) Pending() []Entry {
	pending := make([]Entry, 0, len(s.Queue))
	for _, entry := range s.Queue {
		if entry.Decision == DecisionPendingReview {
			pending = append(pending, entry)
		}
	}
	return pending
}

func (s *State) Accept(matchID int, now time.Time) (Entry, error) {
	return s.resolve(matchID, DecisionAccepted, now)
}

func (s *State) Reject(matchID int, now time.Time) (Entry, error) {
	return s.resolve(matchID, DecisionRejected, now)
}

// resolve moves a pending entry from Queue to Log. State is left untouched
// when no pending entry carries matchID.
func (s *State) resolve(matchID int, decision Decision, now time.Time) (Entry, error) {
	idx := -1
	for i, entry := range s.Queue {
		if entry.MatchID == matchID && entry.Decision == DecisionPendingReview {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Entry{}, &NotFoundError{MatchID: matchID}
	}

	entry := s.Queue[idx]
	entry.Decision = decision
	entry.ReviewedAt = now.UTC().Format(datafile.TimestampLayout)

	queue := make([]Entry, 0, len(s.Queue)-1)
	queue = append(queue, s.Queue[:idx]...)
	queue = append(queue, s.Queue[idx+1:]...)
	s.Queue = queue
	s.Log = append(s.Log, entry)
	return entry, nil
}

// Stats summarises the Dedup Log and Review Queue.
type Stats struct {
	AutoDuplicates    int     `json:"auto_duplicates"`
	Accepted          int     `json:"accepted_duplicates"`
	Rejected          int     `json:"rejected_not_duplicates"`
	Pending           int     `json:"pending_review"`
	FalsePositiveRate float64 `json:"false_positive_rate"`
}

func (s *State) Stats() Stats {
	var stats Stats
	for _, entry := range s.Log {
		switch entry.Decision {
		case DecisionAutoDuplicate:
			stats.AutoDuplicates++
		case DecisionAccepted:
			stats.Accepted++
		case DecisionRejected:
			stats.Rejected++
		}
	}
	stats.Pending = len(s.Pending())

	if reviewed := stats.Accepted + stats.Rejected; reviewed > 0 {
		stats.FalsePositiveRate = float64(stats.Rejected) / float64(reviewed)
	}
	return stats
}
