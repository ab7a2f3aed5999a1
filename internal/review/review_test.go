package review

import (
	"errors"
	"testing"
	"time"

	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/match"
	"horse.fit/threatwatch/internal/textsim"
)

var fixedNow = time.Date(2026, 3, 9, 14, 30, 0, 0, time.UTC)

func newTestChecker() Checker {
	return Checker{
		Scorer: match.NewScorer(textsim.Levenshtein{}),
		Policy: DefaultPolicy(),
		Now:    func() time.Time { return fixedNow },
	}
}

func TestPolicyDecide(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()
	cases := []struct {
		composite float64
		want      Disposition
	}{
		{0.90, DispositionAutoDuplicate},
		{0.85, DispositionAutoDuplicate},
		{0.849, DispositionPendingReview},
		{0.60, DispositionPendingReview},
		{0.50, DispositionPendingReview},
		{0.30, DispositionNew},
		{0, DispositionNew},
	}
	for _, tc := range cases {
		if got := policy.Decide(tc.composite); got != tc.want {
			t.Fatalf("Decide(%.3f) = %s, want %s", tc.composite, got, tc.want)
		}
	}
}

func TestPolicyWithHigh(t *testing.T) {
	t.Parallel()

	policy, err := DefaultPolicy().WithHigh(0.6)
	if err != nil {
		t.Fatalf("expected 0.6 to be accepted, got %v", err)
	}
	if got := policy.Decide(0.65); got != DispositionAutoDuplicate {
		t.Fatalf("expected lowered threshold to auto-dedupe 0.65, got %s", got)
	}

	for _, bad := range []float64{0.4, 1.2} {
		if _, err := DefaultPolicy().WithHigh(bad); err == nil {
			t.Fatalf("expected threshold %.2f to be rejected", bad)
		}
	}
}

func pendingEntry(id int) Entry {
	return Entry{MatchID: id, Timestamp: "2026-03-01T00:00:00Z", Decision: DecisionPendingReview, Confidence: 0.6}
}

func TestNextMatchIDSpansQueueAndLog(t *testing.T) {
	t.Parallel()

	state := &State{}
	if got := state.NextMatchID(); got != 1 {
		t.Fatalf("expected first id 1, got %d", got)
	}

	state.Queue = []Entry{pendingEntry(2)}
	state.Log = []Entry{{MatchID: 9, Decision: DecisionAccepted}}
	if got := state.NextMatchID(); got != 10 {
		t.Fatalf("expected next id 10, got %d", got)
	}
}

func TestAcceptMovesEntryToLog(t *testing.T) {
	t.Parallel()

	state := &State{Queue: []Entry{pendingEntry(1), pendingEntry(2)}, Log: []Entry{}}
	entry, err := state.Accept(2, fixedNow)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if entry.Decision != DecisionAccepted || entry.ReviewedAt != "2026-03-09T14:30:00Z" {
		t.Fatalf("unexpected accepted entry: %+v", entry)
	}
	if len(state.Queue) != 1 || state.Queue[0].MatchID != 1 {
		t.Fatalf("expected entry 2 to leave the queue, got %+v", state.Queue)
	}
	if len(state.Log) != 1 || state.Log[0].MatchID != 2 {
		t.Fatalf("expected entry 2 in the log, got %+v", state.Log)
	}

	if _, err := state.Accept(2, fixedNow); err == nil {
		t.Fatalf("expected second accept to fail")
	}
}

func TestRejectUnknownIDLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	state := &State{
		Queue: []Entry{pendingEntry(1)},
		Log:   []Entry{{MatchID: 2, Decision: DecisionAutoDuplicate}},
	}
	for _, id := range []int{2, 42} {
		_, err := state.Reject(id, fixedNow)
		var notFound *NotFoundError
		if !errors.As(err, &notFound) || notFound.MatchID != id {
			t.Fatalf("expected NotFoundError for %d, got %v", id, err)
		}
	}
	if len(state.Queue) != 1 || len(state.Log) != 1 || state.Queue[0].ReviewedAt != "" {
		t.Fatalf("expected state to be unchanged, got %+v", state)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	empty := (&State{}).Stats()
	if empty != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", empty)
	}

	state := &State{
		Queue: []Entry{pendingEntry(5)},
		Log: []Entry{
			{MatchID: 1, Decision: DecisionAutoDuplicate},
			{MatchID: 2, Decision: DecisionAccepted},
			{MatchID: 3, Decision: DecisionAccepted},
			{MatchID: 4, Decision: DecisionRejected},
		},
	}
	stats := state.Stats()
	want := Stats{AutoDuplicates: 1, Accepted: 2, Rejected: 1, Pending: 1, FalsePositiveRate: 1.0 / 3.0}
	if stats != want {
		t.Fatalf("unexpected stats: got %+v want %+v", stats, want)
	}
}

func TestCheckRoutesCandidates(t *testing.T) {
	t.Parallel()

	existing := []incident.Record{
		{ID: 1, School: "Tucker High School", State: "Georgia", OffenseDate: "5-Jan", ThreatType: "Bomb"},
	}
	candidates := []incident.Record{
		// composite 1.0
		{School: "Tucker HS", State: "Georgia", OffenseDate: "5-Jan", ThreatType: "bomb threat", IncidentDetails: "Emailed threat"},
		// school 1, state neutral, date 0.6, threat 0: 0.4 + 0.06 + 0.12 = 0.58
		{School: "Tucker High School", OffenseDate: "8-Jan", ThreatType: "shooting"},
		// school 0, state 0, date 0, threat 0
		{State: "Texas", OffenseDate: "1-Jun", ThreatType: "shooting"},
	}

	state := &State{Queue: []Entry{}, Log: []Entry{{MatchID: 4, Decision: DecisionRejected}}}
	summary := newTestChecker().Check(state, candidates, existing)

	if summary.Checked != 3 || summary.AutoDuplicates != 1 || summary.PendingReview != 1 || len(summary.New) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.New[0].State != "Texas" {
		t.Fatalf("expected the Texas candidate to be new, got %+v", summary.New[0])
	}

	if len(state.Log) != 2 || state.Log[1].MatchID != 5 || state.Log[1].Decision != DecisionAutoDuplicate {
		t.Fatalf("expected auto duplicate with id 5 in the log, got %+v", state.Log)
	}
	if state.Log[1].Timestamp != "2026-03-09T14:30:00Z" || state.Log[1].Match.ExistingID != 1 {
		t.Fatalf("unexpected log entry: %+v", state.Log[1])
	}
	if len(state.Queue) != 1 || state.Queue[0].MatchID != 6 || state.Queue[0].Confidence != 0.58 {
		t.Fatalf("expected pending entry with id 6, got %+v", state.Queue)
	}
}

func TestEntryDetailsAreTruncated(t *testing.T) {
	t.Parallel()

	long := make([]rune, 250)
	for i := range long {
		long[i] = 'é'
	}
	entry := newEntry(1, "2026-03-09T14:30:00Z", incident.Record{IncidentDetails: string(long)}, match.Match{}, DecisionPendingReview)
	if got := len([]rune(entry.Candidate.Details)); got != maxDetailsRunes {
		t.Fatalf("expected %d runes, got %d", maxDetailsRunes, got)
	}
}
