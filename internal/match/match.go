// Package match scores pairs of incident records and finds the closest
// existing record for a candidate.
package match

import (
	"math"

	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/normalize"
)

const (
	WeightSchoolName = 0.40
	WeightState      = 0.20
	WeightDate       = 0.20
	WeightThreatType = 0.20

	// NeutralScore is returned when a field is missing on either side.
	NeutralScore = 0.3

	compoundThreatScore = 0.7
)

// TextSimilarity compares two strings on a 0..1 scale.
type TextSimilarity interface {
	// TokenSort tolerates word reordering.
	TokenSort(a, b string) float64
	// Partial tolerates one string being contained in the other.
	Partial(a, b string) float64
}

// Components holds the per-field scores of one comparison.
type Components struct {
	SchoolName float64 `json:"school_name"`
	State      float64 `json:"state"`
	Date       float64 `json:"date"`
	ThreatType float64 `json:"threat_type"`
}

// Result is the outcome of comparing two records.
type Result struct {
	Components Components `json:"component_scores"`
	Composite  float64    `json:"composite"`
}

// Match pairs a Result with the existing record it was computed against.
type Match struct {
	Existing incident.Record
	Index    int
	Result   Result
}

// Scorer compares incident fields. All methods are total: malformed or
// missing values degrade to neutral scores.
type Scorer struct {
	Similarity TextSimilarity
}

func NewScorer(sim TextSimilarity) Scorer {
	return Scorer{Similarity: sim}
}

func (s Scorer) SchoolName(a, b string) float64 {
	na := normalize.SchoolName(a)
	nb := normalize.SchoolName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	if s.Similarity == nil {
		return 0
	}
	return clamp(math.Max(s.Similarity.TokenSort(na, nb), s.Similarity.Partial(na, nb)))
}

func (Scorer) State(a, b string) float64 {
	na := normalize.State(a)
	nb := normalize.State(b)
	if na == "" || nb == "" {
		return NeutralScore
	}
	if na == nb {
		return 1
	}
	return 0
}

func (Scorer) Date(a, b string) float64 {
	da := normalize.Date(a)
	db := normalize.Date(b)
	if !da.Known() || !db.Known() {
		return NeutralScore
	}
	if da == db {
		return 1
	}

	distance := da.Ordinal() - db.Ordinal()
	if distance < 0 {
		distance = -distance
	}
	switch {
	case distance <= 1:
		return 0.9
	case distance <= 3:
		return 0.6
	case distance <= 7:
		return 0.3
	default:
		return 0
	}
}

func (Scorer) ThreatType(a, b string) float64 {
	na := normalize.ThreatType(a)
	nb := normalize.ThreatType(b)
	if na == "" || nb == "" {
		return NeutralScore
	}
	if na == nb {
		return 1
	}
	if partialThreatMatch(na, nb) || partialThreatMatch(nb, na) {
		return compoundThreatScore
	}
	return 0
}

func partialThreatMatch(compound, single string) bool {
	return compound == normalize.ThreatBombAndShooting &&
		(single == normalize.ThreatBomb || single == normalize.ThreatShooting)
}

// Compute scores every field and combines them into a composite rounded to
// three decimals.
func (s Scorer) Compute(a, b incident.Record) Result {
	components := Components{
		SchoolName: s.SchoolName(a.School, b.School),
		State:      s.State(a.State, b.State),
		Date:       s.Date(a.OffenseDate, b.OffenseDate),
		ThreatType: s.ThreatType(a.ThreatType, b.ThreatType),
	}
	composite := WeightSchoolName*components.SchoolName +
		WeightState*components.State +
		WeightDate*components.Date +
		WeightThreatType*components.ThreatType

	return Result{
		Components: components,
		Composite:  round3(composite),
	}
}

// FindBest returns the existing record with the highest composite score.
// Ties keep the earlier record. It reports false when existing is empty or
// no composite is above zero.
func (s Scorer) FindBest(candidate incident.Record, existing []incident.Record) (Match, bool) {
	var best Match
	found := false
	for i, record := range existing {
		result := s.Compute(candidate, record)
		if result.Composite <= 0 {
			continue
		}
		if !found || result.Composite > best.Result.Composite {
			best = Match{Existing: record, Index: i, Result: result}
			found = true
		}
	}
	return best, found
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
