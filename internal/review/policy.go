package review

import "fmt"

const (
	DefaultHighConfidence = 0.85
	DefaultLowConfidence  = 0.50
)

// Disposition is the routing outcome for one candidate.
type Disposition string

const (
	DispositionAutoDuplicate Disposition = "auto_duplicate"
	DispositionPendingReview Disposition = "pending_review"
	DispositionNew           Disposition = "new"
)

// Policy maps a composite confidence onto a Disposition.
type Policy struct {
	High float64
	Low  float64
}

func DefaultPolicy() Policy {
	return Policy{High: DefaultHighConfidence, Low: DefaultLowConfidence}
}

// WithHigh returns a copy of p using high as the auto-duplicate threshold.
func (p Policy) WithHigh(high float64) (Policy, error) {
	next := Policy{High: high, Low: p.Low}
	if err := next.Validate(); err != nil {
		return Policy{}, err
	}
	return next, nil
}

func (p Policy) Validate() error {
	if p.Low < 0 || p.Low > 1 {
		return fmt.Errorf("low threshold %.3f must be within [0, 1]", p.Low)
	}
	if p.High < p.Low || p.High > 1 {
		return fmt.Errorf("high threshold %.3f must be within [%.2f, 1]", p.High, p.Low)
	}
	return nil
}

func (p Policy) Decide(composite float64) Disposition {
	switch {
	case composite >= p.High:
		return DispositionAutoDuplicate
	case composite >= p.Low:
		return DispositionPendingReview
	default:
		return DispositionNew
	}
}
