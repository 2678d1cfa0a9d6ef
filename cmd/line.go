// cmd/line.go
package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/eippbx/phoneDTMF/internal/audio"
	"github.com/eippbx/phoneDTMF/internal/config"
	"github.com/eippbx/phoneDTMF/internal/dtmf"
	"github.com/eippbx/phoneDTMF/internal/hw"
)

// buildEngine wires the configured input backend into a detection
// engine. The returned cleanup releases the backend and must run even
// when calibration fails.
//
// The serial backend delivers readings in real time, so it runs
// against the system clock and a busy-wait pacer. The audio backend
// delivers pre-recorded frames, so its Line supplies the clock and
// pacer too, keeping the engine in recorded time.
func buildEngine(ctx context.Context, settings *config.Settings) (*dtmf.Engine, func(), error) {
	var (
		sampler dtmf.Sampler
		clock   dtmf.Clock = hw.NewSystemClock()
		pacer   dtmf.Pacer = hw.BusyPacer{}
		cleanup func()
	)

	switch settings.Input {
	case "serial":
		s := hw.NewSerialSampler(settings.SerialPort, settings.BaudRate)
		if err := s.Connect(); err != nil {
			return nil, nil, fmt.Errorf("connect serial sampler: %w", err)
		}
		cleanup = func() {
			if err := s.Close(); err != nil {
				log.Error("close serial sampler", "err", err)
			}
		}
		sampler = s

	case "audio":
		capture, err := audio.New(audio.Config{
			DeviceIndex: settings.DeviceIndex,
			SampleRate:  uint32(settings.SampleRate),
			BufferSize:  uint32(settings.BufferSize),
		})
		if err != nil {
			return nil, nil, err
		}
		if err := capture.Start(ctx); err != nil {
			_ = capture.Close()
			return nil, nil, err
		}
		cleanup = func() {
			if err := capture.Close(); err != nil {
				log.Error("close audio capture", "err", err)
			}
		}
		line := audio.NewLine(capture.Frames, uint32(settings.SampleRate))
		sampler, clock, pacer = line, line, line

	default:
		return nil, nil, fmt.Errorf("unknown input backend %q", settings.Input)
	}

	engine, err := dtmf.New(dtmf.Config{
		SampleCount: settings.SampleCount,
		MaxPasses:   settings.CalibrationPasses,
		Sampler:     sampler,
		Clock:       clock,
		Pacer:       pacer,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return engine, cleanup, nil
}

// calibrate runs Init and logs the resulting sampling profile.
func calibrate(engine *dtmf.Engine, settings *config.Settings) error {
	log.Info("calibrating", "pin", settings.Pin, "max_frequency_hz", settings.MaxFrequency)
	freq, err := engine.Init(settings.Pin, float32(settings.MaxFrequency))
	if err != nil {
		return fmt.Errorf("calibrate: %w", err)
	}
	log.Info("calibration complete",
		"native_hz", engine.SampleFrequency(),
		"real_hz", freq,
		"compensation_us", engine.Compensation(),
		"adc_center", engine.ADCCenter(),
		"base_magnitude", engine.BaseMagnitude(),
		"block_ms", engine.MeasurementTime(),
	)
	return nil
}
