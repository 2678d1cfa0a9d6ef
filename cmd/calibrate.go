// cmd/calibrate.go
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eippbx/phoneDTMF/internal/config"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Run calibration once and report the sampling profile",
	Long: `Measures the host's native sample rate, derives the pacing delay
needed to hit the target rate, captures the idle-line ADC center and
noise floor, and reports the resulting profile. The line must be idle
(no tone) while this runs.`,
	RunE: runCalibrate,
}

func init() {
	rootCmd.AddCommand(calibrateCmd)
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, cleanup, err := buildEngine(ctx, settings)
	if err != nil {
		return err
	}
	defer cleanup()

	return calibrate(engine, settings)
}
