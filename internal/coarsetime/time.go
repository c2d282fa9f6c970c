// Package coarsetime trades timestamp precision for speed: a background
// goroutine refreshes a cached time.Now() every 50ms and Now returns the
// cached value. Good enough for connection-pool bookkeeping, much cheaper
// than time.Now on hot paths.
package coarsetime

import (
	"sync/atomic"
	"time"
)

const resolution = 50 * time.Millisecond

var now atomic.Value

func init() {
	now.Store(time.Now())

	ticker := time.NewTicker(resolution)
	go func() {
		for range ticker.C {
			now.Store(time.Now())
		}
	}()
}

// Now returns the cached current time, at most one resolution stale.
func Now() time.Time {
	return now.Load().(time.Time)
}
