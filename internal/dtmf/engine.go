// internal/dtmf/engine.go
package dtmf

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSampleCount indicates the block size must be positive
	ErrInvalidSampleCount = errors.New("sample count must be positive")
	// ErrSamplerRequired indicates a Sampler capability is required
	ErrSamplerRequired = errors.New("sampler is required")
	// ErrClockRequired indicates a Clock capability is required
	ErrClockRequired = errors.New("clock is required")
	// ErrPacerRequired indicates a Pacer capability is required
	ErrPacerRequired = errors.New("pacer is required")
	// ErrZeroElapsed indicates a rate measurement observed zero elapsed time
	ErrZeroElapsed = errors.New("rate measurement elapsed zero milliseconds")
	// ErrNoConvergence indicates the rate-adjust loop never reached a fixed point
	ErrNoConvergence = errors.New("sample rate calibration did not converge")
	// ErrNotCalibrated indicates Detect was called before a successful Init
	ErrNotCalibrated = errors.New("engine has not been calibrated")
)

const (
	// DefaultSampleCount is the number of samples per detection block.
	// At 6000 Hz a block of 128 takes about 21 ms. Larger blocks trade
	// latency for frequency resolution; with a millisecond clock they
	// also give the rate-adjust loop more room to settle.
	DefaultSampleCount = 128

	// DefaultMaxFrequency is the target sample rate ceiling in Hz.
	// Comfortably above twice the highest DTMF tone (1633 Hz).
	DefaultMaxFrequency = 6000

	// DefaultMaxPasses bounds the rate-adjust loop. The compensation
	// delay moves 1 us per pass over a 0-200 us range, so a stable
	// host settles well inside this.
	DefaultMaxPasses = 250

	// maxCompensation clamps the inter-sample pause in microseconds.
	maxCompensation = 200

	// rateSlack is the tolerated shortfall below the target rate in Hz
	// before the loop starts removing compensation again.
	rateSlack = 150

	// warmupReads is the number of raw reads used to estimate the
	// host's native sampling rate.
	warmupReads = 1000
)

// profile is the sampling profile produced by calibration. It is
// replaced as a whole on successful re-calibration and restored as a
// whole when calibration fails part way through.
type profile struct {
	sampleFreq    float32 // native rate estimated during warm-up
	realFreq      float32 // rate measured over the most recent block
	coeffFreq     float32 // rate the bank's coefficients were derived from
	compensation  int     // inter-sample pause in microseconds
	adcCenter     int     // idle-line reading, subtracted from every sample
	baseMagnitude float32 // mean per-tone magnitude over one idle block
}

// Config holds the constructor parameters for an Engine. The three
// capabilities are mandatory; zero values select the defaults for the
// numeric fields.
type Config struct {
	// SampleCount is the detection block size (default DefaultSampleCount)
	SampleCount int
	// MaxPasses caps the calibration rate-adjust loop (default DefaultMaxPasses)
	MaxPasses int
	// Sampler reads raw values from the analog line
	Sampler Sampler
	// Clock provides monotonic millisecond timing
	Clock Clock
	// Pacer provides the microsecond inter-sample pause
	Pacer Pacer
}

// Engine is a single-line DTMF detection engine. It owns its resonator
// bank and sampling profile exclusively and uses no internal locking;
// concurrent use of one Engine must be serialized by the caller, and
// independent lines should each get their own Engine.
type Engine struct {
	sampleCount int
	maxPasses   int
	pin         int

	sampler Sampler
	clock   Clock
	pacer   Pacer

	bank  Bank
	prof  profile
	ready bool
}

// New creates an Engine from cfg. The engine starts uncalibrated;
// call Init before Detect.
func New(cfg Config) (*Engine, error) {
	if cfg.Sampler == nil {
		return nil, ErrSamplerRequired
	}
	if cfg.Clock == nil {
		return nil, ErrClockRequired
	}
	if cfg.Pacer == nil {
		return nil, ErrPacerRequired
	}
	if cfg.SampleCount < 0 {
		return nil, ErrInvalidSampleCount
	}
	if cfg.SampleCount == 0 {
		cfg.SampleCount = DefaultSampleCount
	}
	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = DefaultMaxPasses
	}

	return &Engine{
		sampleCount: cfg.SampleCount,
		maxPasses:   cfg.MaxPasses,
		sampler:     cfg.Sampler,
		clock:       cfg.Clock,
		pacer:       cfg.Pacer,
	}, nil
}

// Init calibrates the engine for the given analog pin and returns the
// measured real sample frequency in Hz.
//
// Calibration estimates the host's native rate over a warm-up burst,
// seeds a pacing delay when the host is faster than maxFrequency,
// captures the idle-line ADC center, then runs detection blocks while
// nudging the pacing delay by one microsecond per pass until the
// measured rate and the delay both stop moving. The pass count is
// bounded; exhausting it reports ErrNoConvergence and leaves any
// previously calibrated state untouched.
//
// maxFrequency <= 0 selects DefaultMaxFrequency. The line is assumed
// idle (no DTMF signal) for the duration of the call.
func (e *Engine) Init(pin int, maxFrequency float32) (float32, error) {
	if maxFrequency <= 0 {
		maxFrequency = DefaultMaxFrequency
	}

	savedProf, savedBank, savedReady := e.prof, e.bank, e.ready
	fail := func(err error) (float32, error) {
		e.prof, e.bank, e.ready = savedProf, savedBank, savedReady
		return 0, err
	}

	e.pin = pin
	e.ready = false
	e.prof = profile{}
	e.bank = Bank{}

	// Warm-up: estimate the native rate from a burst of raw reads.
	start := e.clock.Millis()
	for i := 0; i < warmupReads; i++ {
		e.sampler.Read(pin)
	}
	elapsed := e.clock.Millis() - start
	if elapsed <= 0 {
		return fail(fmt.Errorf("warm-up: %w", ErrZeroElapsed))
	}
	native := float32(warmupReads) / float32(elapsed) * 1000

	comp := 0
	if native > maxFrequency {
		comp = int((1000/maxFrequency - 1000/native) * 1000)
		if comp > maxCompensation {
			comp = maxCompensation
		}
	}
	e.prof.sampleFreq = native
	e.prof.compensation = comp

	// The line is idle, so a single read gives the DC offset.
	e.prof.adcCenter = e.sampler.Read(pin)

	// Rate adjust: walk the pacing delay until the measured rate sits
	// still. A fixed point requires both an unchanged measurement and
	// an untouched delay, otherwise millisecond quantization can stall
	// the loop one step short of the target band.
	var mags [NumTones]float32
	converged := false
	for pass := 0; pass < e.maxPasses; pass++ {
		prev := e.prof.realFreq
		if err := e.runBlock(mags[:]); err != nil {
			return fail(err)
		}
		adjusted := false
		if e.prof.realFreq > maxFrequency && e.prof.compensation < maxCompensation {
			e.prof.compensation++
			adjusted = true
		}
		if e.prof.realFreq < maxFrequency-rateSlack && e.prof.compensation > 0 {
			e.prof.compensation--
			adjusted = true
		}
		if !adjusted && e.prof.realFreq == prev {
			converged = true
			break
		}
		// Keep the coefficients tied to the latest measured rate so
		// every block, including the next probe, runs with a valid bank.
		if e.prof.realFreq != e.prof.coeffFreq {
			e.bank.SetCoefficients(e.prof.realFreq)
			e.prof.coeffFreq = e.prof.realFreq
		}
	}
	if !converged {
		return fail(fmt.Errorf("rate adjust after %d passes: %w", e.maxPasses, ErrNoConvergence))
	}

	// Finalize coefficients at the converged rate, then measure the
	// idle-line noise floor with the bank that detection will use.
	e.bank.SetCoefficients(e.prof.realFreq)
	e.prof.coeffFreq = e.prof.realFreq
	e.bank.Reset()

	if err := e.runBlock(mags[:]); err != nil {
		return fail(fmt.Errorf("noise floor: %w", err))
	}
	var sum float32
	for _, m := range mags {
		sum += m
	}
	e.prof.baseMagnitude = sum / NumTones

	e.ready = true
	return e.prof.realFreq, nil
}

// Detect runs one classification block and returns the detection
// bitmask: bit i is set when tone i's magnitude exceeds the threshold.
//
// magnitudes, when non-nil, receives the per-tone magnitudes of the
// block (up to NumTones values). A negative threshold selects the
// automatic threshold of twice the block's mean magnitude; any other
// value is used verbatim.
func (e *Engine) Detect(magnitudes []float32, threshold float32) (uint8, error) {
	if !e.ready {
		return 0, ErrNotCalibrated
	}

	var mags [NumTones]float32
	if err := e.runBlock(mags[:]); err != nil {
		return 0, err
	}
	if magnitudes != nil {
		copy(magnitudes, mags[:])
	}
	return classify(mags[:], threshold), nil
}

// runBlock executes one full detection block: paced sampling, rate
// measurement, magnitude extraction and resonator reset. The measured
// rate is stored as the calibration feedback signal.
func (e *Engine) runBlock(out []float32) error {
	start := e.clock.Millis()
	for i := 0; i < e.sampleCount; i++ {
		s := e.sampler.Read(e.pin)
		e.bank.ProcessSample(float32(s - e.prof.adcCenter))
		e.pacer.Pause(e.prof.compensation)
	}
	elapsed := e.clock.Millis() - start

	for i := 0; i < NumTones; i++ {
		out[i] = e.bank.Magnitude(i)
	}
	e.bank.Reset()

	if elapsed <= 0 {
		return fmt.Errorf("detection block: %w", ErrZeroElapsed)
	}
	e.prof.realFreq = float32(e.sampleCount) / (float32(elapsed) / 1000)
	return nil
}

// resolveThreshold turns a caller threshold into the effective one.
// Negative means automatic: twice the mean magnitude of the block.
func resolveThreshold(mags []float32, threshold float32) float32 {
	if threshold >= 0 {
		return threshold
	}
	var sum float32
	for _, m := range mags {
		sum += m
	}
	return sum / float32(len(mags)) * 2
}

// classify converts per-tone magnitudes into a detection bitmask.
func classify(mags []float32, threshold float32) uint8 {
	threshold = resolveThreshold(mags, threshold)
	var mask uint8
	for i, m := range mags {
		if m > threshold {
			mask |= 1 << i
		}
	}
	return mask
}

// Ready reports whether the engine has completed a successful Init.
func (e *Engine) Ready() bool { return e.ready }

// SampleCount returns the configured detection block size.
func (e *Engine) SampleCount() int { return e.sampleCount }

// SampleFrequency returns the native rate in Hz estimated during the
// calibration warm-up.
func (e *Engine) SampleFrequency() float32 { return e.prof.sampleFreq }

// RealFrequency returns the paced sample rate in Hz measured over the
// most recent block.
func (e *Engine) RealFrequency() float32 { return e.prof.realFreq }

// ADCCenter returns the idle-line reading subtracted from every sample.
func (e *Engine) ADCCenter() int { return e.prof.adcCenter }

// BaseMagnitude returns the mean per-tone magnitude of an idle block,
// the engine's idea of "no signal" energy.
func (e *Engine) BaseMagnitude() float32 { return e.prof.baseMagnitude }

// Compensation returns the calibrated inter-sample pause in microseconds.
func (e *Engine) Compensation() int { return e.prof.compensation }

// MeasurementTime returns the duration of one detection block in
// milliseconds, derived from the measured real frequency.
func (e *Engine) MeasurementTime() float32 {
	if e.prof.realFreq <= 0 {
		return 0
	}
	return 1000 / e.prof.realFreq * float32(e.sampleCount)
}
