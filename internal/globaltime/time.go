// Package globaltime is the single clock every timestamp in the engine is
// read from. Tests freeze it to get reproducible documents.
package globaltime

import (
	"sync"
	"time"
)

var (
	mu    sync.RWMutex
	clock = time.Now
)

// UTC returns the current instant in UTC, truncated to whole seconds since
// every persisted timestamp has second precision.
func UTC() time.Time {
	mu.RLock()
	now := clock
	mu.RUnlock()
	return now().UTC().Truncate(time.Second)
}

// Freeze pins the clock to t until the returned restore func is called.
func Freeze(t time.Time) (restore func()) {
	mu.Lock()
	previous := clock
	clock = func() time.Time { return t }
	mu.Unlock()

	return func() {
		mu.Lock()
		clock = previous
		mu.Unlock()
	}
}
