// internal/hw/clock.go
// Package hw provides the host-side implementations of the
// capabilities the detection engine borrows: monotonic millisecond
// timing, microsecond pacing and line samplers.
package hw

import (
	"time"

	"github.com/eippbx/phoneDTMF/internal/dtmf"
)

// SystemClock implements dtmf.Clock on the runtime's monotonic clock.
type SystemClock struct {
	epoch time.Time
}

var _ dtmf.Clock = (*SystemClock)(nil)

// NewSystemClock returns a clock whose epoch is the moment of the call.
func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

// Millis returns milliseconds elapsed since the clock was created.
func (c *SystemClock) Millis() int64 {
	return time.Since(c.epoch).Milliseconds()
}

// BusyPacer implements dtmf.Pacer with a spin wait. The scheduler
// cannot hold microsecond deadlines through time.Sleep, so the pacer
// burns the interval on the monotonic clock instead.
type BusyPacer struct{}

var _ dtmf.Pacer = BusyPacer{}

// Pause blocks the calling goroutine for the given number of microseconds.
func (BusyPacer) Pause(micros int) {
	if micros <= 0 {
		return
	}
	deadline := time.Now().Add(time.Duration(micros) * time.Microsecond)
	for time.Now().Before(deadline) {
	}
}
