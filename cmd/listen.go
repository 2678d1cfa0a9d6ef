// cmd/listen.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eippbx/phoneDTMF/internal/cli/listen"
	"github.com/eippbx/phoneDTMF/internal/config"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Calibrate, then print keypad presses as they are detected",
	RunE:  runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, args []string) error {
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

	if err := calibrate(engine, settings); err != nil {
		return err
	}

	l, err := listen.New(engine, listen.Options{
		Threshold: float32(settings.Threshold),
		Debounce:  settings.DebounceBlocks,
	})
	if err != nil {
		return err
	}

	err = l.Run(ctx, func(ch byte) {
		fmt.Printf("%c\n", ch)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
