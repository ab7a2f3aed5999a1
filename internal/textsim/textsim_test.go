package textsim

import "testing"

func TestRatio(t *testing.T) {
	t.Parallel()

	sim := Levenshtein{}
	if got := sim.Ratio("", ""); got != 1 {
		t.Fatalf("expected empty strings to be identical, got %f", got)
	}
	if got := sim.Ratio("abcd", "abcd"); got != 1 {
		t.Fatalf("expected identical strings to score 1, got %f", got)
	}
	if got := sim.Ratio("abcd", "abcf"); got != 0.75 {
		t.Fatalf("expected one substitution in four runes to score 0.75, got %f", got)
	}
	if got := sim.Ratio("abc", "xyz"); got != 0 {
		t.Fatalf("expected disjoint strings to score 0, got %f", got)
	}
}

func TestTokenSortIgnoresOrder(t *testing.T) {
	t.Parallel()

	sim := Levenshtein{}
	if got := sim.TokenSort("high school lincoln", "lincoln high school"); got != 1 {
		t.Fatalf("expected reordered tokens to score 1, got %f", got)
	}
}

func TestPartialHandlesContainment(t *testing.T) {
	t.Parallel()

	sim := Levenshtein{}
	if got := sim.Partial("tucker high", "tucker high school"); got != 1 {
		t.Fatalf("expected contained string to score 1, got %f", got)
	}
	if got := sim.Partial("tucker high school", "tucker high"); got != 1 {
		t.Fatalf("expected partial to be symmetric, got %f", got)
	}
	if got := sim.Partial("", "abc"); got != 0 {
		t.Fatalf("expected empty needle to score 0, got %f", got)
	}
}

func TestScoresStayInRange(t *testing.T) {
	t.Parallel()

	sim := Levenshtein{}
	pairs := [][2]string{
		{"a", "bbbbbbbbbb"},
		{"oak ridge elementary", "ridge oak"},
		{"école", "ecole"},
	}
	for _, p := range pairs {
		for _, score := range []float64{sim.Ratio(p[0], p[1]), sim.TokenSort(p[0], p[1]), sim.Partial(p[0], p[1])} {
			if score < 0 || score > 1 {
				t.Fatalf("score out of range for %q/%q: %f", p[0], p[1], score)
			}
		}
	}
}
