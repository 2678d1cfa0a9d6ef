// internal/audio/sampler.go
package audio

import "github.com/eippbx/phoneDTMF/internal/dtmf"

const (
	// adcMidpoint is the idle-line reading a 12-bit ADC would report
	// on a properly biased input.
	adcMidpoint = 2048
	// adcScale maps full-scale float32 audio onto the 12-bit range.
	adcScale = 2047
)

// Line adapts a captured frame stream into all three capabilities the
// detection engine borrows: sampler, clock and pacer.
//
// Captured audio is recorded at the card rate, so wall-clock time says
// nothing about the signal: adjacent samples are 1/cardRate seconds
// apart no matter how fast or slow the consumer runs. Line therefore
// keeps time in the recording itself. The clock reads consumed samples
// over the card rate, and pausing skips the samples the pause spans
// instead of sleeping. Calibration then measures, and the resonator
// bank is tuned to, the rate at which the engine moves through
// recorded time, so the coefficients match the signal the bank
// actually sees.
type Line struct {
	frames <-chan []float32
	rate   float64

	pending  []float32
	consumed int64   // samples taken from the stream, skipped ones included
	skipDebt float64 // fractional samples still owed by Pause
	closed   bool
}

var (
	_ dtmf.Sampler = (*Line)(nil)
	_ dtmf.Clock   = (*Line)(nil)
	_ dtmf.Pacer   = (*Line)(nil)
)

// NewLine wraps a frame stream recorded at sampleRate. Pass the Line
// as the engine's Sampler, Clock and Pacer together; mixing it with a
// wall-clock Clock would reintroduce the rate mismatch it exists to
// remove.
func NewLine(frames <-chan []float32, sampleRate uint32) *Line {
	return &Line{frames: frames, rate: float64(sampleRate)}
}

// Read returns the next sample as an ADC-style count, first dropping
// any samples owed by earlier pauses. It blocks until a frame is
// available. Once the stream closes it reports the idle midpoint and
// the clock stops, which the engine surfaces as a timing error on its
// next block.
func (l *Line) Read(pin int) int {
	skip := int(l.skipDebt)
	l.skipDebt -= float64(skip)
	for ; skip > 0; skip-- {
		if _, ok := l.next(); !ok {
			return adcMidpoint
		}
	}
	v, ok := l.next()
	if !ok {
		return adcMidpoint
	}
	return adcMidpoint + int(v*adcScale)
}

// Millis reports recorded time: milliseconds of signal consumed so far.
func (l *Line) Millis() int64 {
	return int64(float64(l.consumed) * 1000 / l.rate)
}

// Pause advances recorded time by the samples the pause spans. The
// skip is deferred to the next Read, so Pause never blocks and
// fractional samples accumulate instead of being lost.
func (l *Line) Pause(micros int) {
	if micros <= 0 {
		return
	}
	l.skipDebt += float64(micros) * l.rate / 1e6
}

// next takes one sample off the stream, blocking for the next frame
// when the current one is exhausted.
func (l *Line) next() (float32, bool) {
	if l.closed {
		return 0, false
	}
	for len(l.pending) == 0 {
		frame, ok := <-l.frames
		if !ok {
			l.closed = true
			return 0, false
		}
		l.pending = frame
	}
	v := l.pending[0]
	l.pending = l.pending[1:]
	l.consumed++
	return v, true
}
