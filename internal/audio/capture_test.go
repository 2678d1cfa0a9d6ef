// internal/audio/capture_test.go
package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DeviceIndex != -1 {
		t.Errorf("DeviceIndex = %d, want -1", cfg.DeviceIndex)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", cfg.SampleRate)
	}
	if cfg.BufferSize != 512 {
		t.Errorf("BufferSize = %d, want 512", cfg.BufferSize)
	}
}

func TestBytesToFloat32(t *testing.T) {
	want := []float32{0, 1, -1, 0.5, -0.25}
	data := make([]byte, 4*len(want))
	for i, v := range want {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}

	got := bytesToFloat32(data)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLine_DrainsFrames(t *testing.T) {
	frames := make(chan []float32, 2)
	frames <- []float32{0, 1, -1}
	frames <- []float32{0.5}
	close(frames)

	l := NewLine(frames, 48000)

	half := float32(0.5)
	want := []int{
		adcMidpoint,
		adcMidpoint + adcScale,
		adcMidpoint - adcScale,
		adcMidpoint + int(half*adcScale),
	}
	for i, w := range want {
		if got := l.Read(0); got != w {
			t.Errorf("Read() #%d = %d, want %d", i, got, w)
		}
	}

	// Closed stream settles at the idle midpoint.
	if got := l.Read(0); got != adcMidpoint {
		t.Errorf("Read() after close = %d, want %d", got, adcMidpoint)
	}
}

func TestLine_ClockTracksConsumption(t *testing.T) {
	frames := make(chan []float32, 1)
	frames <- make([]float32, 96)
	close(frames)

	l := NewLine(frames, 48000)

	if got := l.Millis(); got != 0 {
		t.Errorf("Millis() = %d before any read, want 0", got)
	}
	// 48 samples at 48 kHz is one millisecond of recorded time.
	for i := 0; i < 48; i++ {
		l.Read(0)
	}
	if got := l.Millis(); got != 1 {
		t.Errorf("Millis() = %d after 48 samples, want 1", got)
	}

	// A closed stream stops the clock.
	for i := 0; i < 96; i++ {
		l.Read(0)
	}
	if got := l.Millis(); got != 2 {
		t.Errorf("Millis() = %d once the stream is exhausted, want 2", got)
	}
}

func TestLine_PauseSkipsSamples(t *testing.T) {
	frames := make(chan []float32, 1)
	frame := make([]float32, 64)
	for i := range frame {
		frame[i] = float32(i) / 100
	}
	frames <- frame
	close(frames)

	l := NewLine(frames, 48000)

	if got := l.Read(0); got != adcMidpoint {
		t.Fatalf("Read() #0 = %d, want %d", got, adcMidpoint)
	}
	// 250 us at 48 kHz spans 12 samples; the next read lands on
	// sample 13 and the clock credits the skipped signal.
	l.Pause(250)
	sample := float32(0.13)
	want := adcMidpoint + int(sample*adcScale)
	if got := l.Read(0); got != want {
		t.Errorf("Read() after Pause(250) = %d, want %d", got, want)
	}
	if got := l.consumed; got != 14 {
		t.Errorf("consumed = %d, want 14", got)
	}
}

func TestLine_PauseAccumulatesFractions(t *testing.T) {
	frames := make(chan []float32, 1)
	frames <- make([]float32, 200)
	close(frames)

	l := NewLine(frames, 48000)

	// 10 us at 48 kHz is 0.48 samples: no single pause spans a whole
	// sample, but ten of them must skip four or five, not zero.
	for i := 0; i < 10; i++ {
		l.Read(0)
		l.Pause(10)
	}
	l.Read(0)
	if got := l.consumed; got != 15 {
		t.Errorf("consumed = %d after 11 reads and 10 x 10us pauses, want 15", got)
	}
}
