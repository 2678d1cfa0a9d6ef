// internal/dtmf/capability.go
package dtmf

// The engine borrows three capabilities from its host instead of
// calling hardware directly, so the calibration and classification
// paths can run against synthetic implementations in tests. Production
// implementations live in internal/hw and internal/audio.

// Sampler reads one raw integer value from an analog input pin.
// Synchronous, no buffering, no error signaling beyond the value.
type Sampler interface {
	Read(pin int) int
}

// Clock reports elapsed milliseconds since an arbitrary epoch. Only
// differences are meaningful; the reading must be monotonic.
type Clock interface {
	Millis() int64
}

// Pacer blocks the calling goroutine for the given number of
// microseconds. Used to throttle an inherently faster sampling path
// down to the calibrated target rate.
type Pacer interface {
	Pause(micros int)
}
