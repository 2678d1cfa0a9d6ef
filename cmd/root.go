// cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eippbx/phoneDTMF/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "phonedtmf",
	Short: "Self-calibrating DTMF (touch tone) detector",
	Long: `Detects DTMF keypad tones on an analog line using a bank of Goertzel
resonators, after calibrating itself to the sample rate the host can
actually sustain.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().StringP("input", "i", "audio", "input backend: audio or serial")
	rootCmd.PersistentFlags().StringP("port", "p", "", "serial port for the serial backend")
	rootCmd.PersistentFlags().IntP("device", "d", -1, "audio device index (-1 for default)")
	rootCmd.PersistentFlags().Float64P("max-frequency", "f", 6000, "target sample rate ceiling in Hz")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug output")

	// Bind flags to viper
	viper.BindPFlag("input", rootCmd.PersistentFlags().Lookup("input"))
	viper.BindPFlag("serial_port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("device_index", rootCmd.PersistentFlags().Lookup("device"))
	viper.BindPFlag("max_frequency", rootCmd.PersistentFlags().Lookup("max-frequency"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
}
