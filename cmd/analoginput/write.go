// cmd/analoginput/write.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/harp-analoginput/internal/analoginput"
)

func newWriteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "write <name|address> <value>",
		Short: "Write one register",
		Long: `Write one register. Enumerated registers accept their value names
(case-insensitive) or numbers; bit masks accept names joined with '|'.`,
		Example: `  analoginput write SamplingFrequency Frequency2kHz --port /dev/ttyUSB0
  analoginput write OutputSet "DO0|DO2" --simulate
  analoginput write DO1Threshold -1200 --simulate`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withDevice(cmd.Context(), func(dev *analoginput.Device) error {
				reg, err := dev.Table().Resolve(args[0])
				if err != nil {
					return err
				}
				d := reg.Descriptor()

				payload, err := reg.ParseValue(args[1])
				if err != nil {
					return err
				}
				if err := dev.WriteRaw(cmd.Context(), d.Address, payload); err != nil {
					return err
				}

				v, err := reg.DecodeValue(payload)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <- %v\n", d.Name, v)
				return nil
			})
		},
	}
}
