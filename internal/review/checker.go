package review

import (
	"time"

	"horse.fit/threatwatch/internal/datafile"
	"horse.fit/threatwatch/internal/globaltime"
	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/match"
)

// Checker routes candidate records through the Match Finder and Policy.
type Checker struct {
	Scorer match.Scorer
	Policy Policy
	Now    func() time.Time
}

// Outcome is the routing result for one candidate. Match is only set when
// Matched is true.
type Outcome struct {
	Disposition Disposition
	Match       match.Match
	Matched     bool
	Entry       *Entry
}

// Evaluate finds the best existing match for candidate and decides its
// disposition without touching any state.
func (c Checker) Evaluate(candidate incident.Record, existing []incident.Record) Outcome {
	best, ok := c.Scorer.FindBest(candidate, existing)
	if !ok {
		return Outcome{Disposition: DispositionNew}
	}
	return Outcome{
		Disposition: c.Policy.Decide(best.Result.Composite),
		Match:       best,
		Matched:     true,
	}
}

// Batch records routing outcomes for one run. Match ids are assigned
// sequentially from the State's next id at the time the batch began.
type Batch struct {
	checker   Checker
	state     *State
	nextID    int
	timestamp string
}

func (c Checker) Begin(state *State) *Batch {
	now := globaltime.UTC
	if c.Now != nil {
		now = c.Now
	}
	return &Batch{
		checker:   c,
		state:     state,
		nextID:    state.NextMatchID(),
		timestamp: now().UTC().Format(datafile.TimestampLayout),
	}
}

// Route evaluates candidate and records auto duplicates in the Dedup Log
// and ambiguous matches in the Review Queue.
func (b *Batch) Route(candidate incident.Record, existing []incident.Record) Outcome {
	outcome := b.checker.Evaluate(candidate, existing)

	var decision Decision
	switch outcome.Disposition {
	case DispositionAutoDuplicate:
		decision = DecisionAutoDuplicate
	case DispositionPendingReview:
		decision = DecisionPendingReview
	default:
		return outcome
	}

	entry := newEntry(b.nextID, b.timestamp, candidate, outcome.Match, decision)
	b.nextID++
	if decision == DecisionPendingReview {
		b.state.Queue = append(b.state.Queue, entry)
	} else {
		b.state.Log = append(b.state.Log, entry)
	}
	outcome.Entry = &entry
	return outcome
}

// Summary counts the dispositions of one Check run.
type Summary struct {
	Checked        int
	AutoDuplicates int
	PendingReview  int
	New            []incident.Record
}

// Check routes every candidate and returns those judged new, in input
// order.
func (c Checker) Check(state *State, candidates []incident.Record, existing []incident.Record) Summary {
	batch := c.Begin(state)
	summary := Summary{New: []incident.Record{}}
	for _, candidate := range candidates {
		summary.Checked++
		switch batch.Route(candidate, existing).Disposition {
		case DispositionAutoDuplicate:
			summary.AutoDuplicates++
		case DispositionPendingReview:
			summary.PendingReview++
		default:
			summary.New = append(summary.New, candidate)
		}
	}
	return summary
}
