// cmd/analoginput/read.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/harp-analoginput/internal/analoginput"
)

func newReadCmd(g *globalFlags) *cobra.Command {
	var words bool

	cmd := &cobra.Command{
		Use:   "read <name|address>...",
		Short: "Read registers",
		Example: `  analoginput read AnalogData --port /dev/ttyUSB0
  analoginput read 37 DO0Threshold --simulate`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withDevice(cmd.Context(), func(dev *analoginput.Device) error {
				out := cmd.OutOrStdout()

				for _, ref := range args {
					reg, err := dev.Table().Resolve(ref)
					if err != nil {
						return err
					}
					d := reg.Descriptor()

					msg, err := dev.ReadRaw(cmd.Context(), d.Address)
					if err != nil {
						return err
					}
					v, err := reg.DecodeValue(msg.Payload)
					if err != nil {
						return err
					}

					line := fmt.Sprintf("%s = %v", d.Name, v)
					if msg.HasTimestamp {
						line += fmt.Sprintf(" @ %.6fs", msg.Timestamp)
					}
					if words {
						w, err := reg.Words(msg.Payload)
						if err != nil {
							return err
						}
						line += fmt.Sprintf(" %v", w)
					}
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&words, "words", false, "Also print the 16-bit words used by the Modbus mirror")
	return cmd
}
