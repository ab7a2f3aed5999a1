package globaltime

import (
	"testing"
	"time"
)

func TestFreezeAndRestore(t *testing.T) {
	pinned := time.Date(2026, time.March, 9, 14, 0, 0, 500, time.FixedZone("EST", -5*3600))
	restore := Freeze(pinned)

	got := UTC()
	if got.Location() != time.UTC || got.Hour() != 19 || got.Nanosecond() != 0 {
		t.Fatalf("unexpected frozen time %v", got)
	}

	restore()
	if UTC().Equal(got) {
		t.Fatalf("expected the clock to be restored")
	}
}
