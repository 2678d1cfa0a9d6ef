// cmd/devices.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eippbx/phoneDTMF/internal/audio"
	"github.com/eippbx/phoneDTMF/internal/hw"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available audio capture devices and serial ports",
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	capture, err := audio.New(audio.DefaultConfig())
	if err != nil {
		return err
	}
	defer capture.Close()

	infos, err := capture.ListDevices()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Audio capture devices:")
	for i, info := range infos {
		fmt.Fprintf(cmd.OutOrStdout(), "  %2d: %s\n", i, info.Name())
	}

	ports, err := hw.Ports()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Serial ports:")
	for _, p := range ports {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
	}
	return nil
}
