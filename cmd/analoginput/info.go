// cmd/analoginput/info.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/harp-analoginput/internal/analoginput"
)

func newInfoCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print device identity and versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withDevice(cmd.Context(), func(dev *analoginput.Device) error {
				info, err := dev.Info(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Name:      %s\n", info.Name)
				fmt.Fprintf(out, "WhoAmI:    %d\n", info.WhoAmI)
				fmt.Fprintf(out, "Hardware:  %s (assembly %d)\n", info.HardwareVersion, info.AssemblyVersion)
				fmt.Fprintf(out, "Firmware:  %s\n", info.FirmwareVersion)
				fmt.Fprintf(out, "Core:      %s\n", info.CoreVersion)
				fmt.Fprintf(out, "Serial:    %d\n", info.SerialNumber)
				return nil
			})
		},
	}
}
