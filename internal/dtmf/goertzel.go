// internal/dtmf/goertzel.go
package dtmf

import "github.com/chewxy/math32"

// Bank holds the resonator state for every DTMF tone: the two most
// recent steps of each second-order Goertzel recursion plus the
// precomputed per-tone coefficient. It knows nothing about timing or
// hardware; callers feed it centered samples one at a time.
//
// A coefficient array is only valid for the sample frequency it was
// derived from. Whenever the measured frequency changes,
// SetCoefficients must run again before the next block.
type Bank struct {
	coeff [NumTones]float32
	q1    [NumTones]float32
	q2    [NumTones]float32
}

// ProcessSample advances every tone's recursion by one step. The input
// must already have the ADC center subtracted. No allocation, O(NumTones).
func (b *Bank) ProcessSample(input float32) {
	for i := 0; i < NumTones; i++ {
		q0 := b.coeff[i]*b.q1[i] - b.q2[i] + input
		b.q2[i] = b.q1[i]
		b.q1[i] = q0
	}
}

// Reset zeroes all accumulators. Must be called before each detection
// block; magnitudes are only meaningful as energy accumulated over a
// window of known length.
func (b *Bank) Reset() {
	for i := 0; i < NumTones; i++ {
		b.q1[i] = 0
		b.q2[i] = 0
	}
}

// SetCoefficients recomputes every tone's coefficient for the given
// sample frequency: coeff[i] = 2*cos(2*pi*tone[i]/realFrequency).
// Deterministic for identical inputs.
func (b *Bank) SetCoefficients(realFrequency float32) {
	for i := 0; i < NumTones; i++ {
		omega := 2 * math32.Pi * Tones[i] / realFrequency
		b.coeff[i] = 2 * math32.Cos(omega)
	}
}

// Magnitude returns the accumulated spectral magnitude of tone i using
// the closed-form Goertzel power formula. The phase terms are omitted;
// only tone presence matters for DTMF.
func (b *Bank) Magnitude(i int) float32 {
	power := b.q1[i]*b.q1[i] + b.q2[i]*b.q2[i] - b.coeff[i]*b.q1[i]*b.q2[i]
	if power < 0 {
		// float error can push a near-zero power slightly negative
		power = 0
	}
	return math32.Sqrt(power)
}

// Coefficients returns a copy of the current coefficient array.
func (b *Bank) Coefficients() [NumTones]float32 {
	return b.coeff
}
