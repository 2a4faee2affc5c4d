// cmd/analoginput/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/harp-analoginput/internal/config"
	"github.com/tamzrod/harp-analoginput/internal/logging"
)

type globalFlags struct {
	port      string
	baud      int
	timeout   time.Duration
	simulate  bool
	logLevel  string
	logFormat string

	log *zap.Logger
}

// deviceConfig is the device section implied by the global flags.
func (g *globalFlags) deviceConfig() config.DeviceConfig {
	return config.DeviceConfig{
		Port:      g.port,
		BaudRate:  g.baud,
		TimeoutMs: int(g.timeout / time.Millisecond),
		Simulate:  g.simulate,
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "analoginput",
		Short: "Harp AnalogInput register access",
		Long: `analoginput reads and writes the registers of a Harp AnalogInput board
over its serial port, and can mirror selected registers into Modbus TCP servers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(g.logLevel, g.logFormat)
			if err != nil {
				return err
			}
			g.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.log != nil {
				_ = g.log.Sync()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.port, "port", "", "Serial port of the device (e.g. /dev/ttyUSB0, COM3)")
	pf.IntVar(&g.baud, "baud", config.DefaultBaudRate, "Serial baud rate")
	pf.DurationVar(&g.timeout, "timeout", config.DefaultTimeoutMs*time.Millisecond, "Reply timeout per command")
	pf.BoolVar(&g.simulate, "simulate", false, "Talk to an in-process simulated device instead of a serial port")
	pf.StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "console", "Log format (console, json)")

	rootCmd.AddCommand(newRegistersCmd())
	rootCmd.AddCommand(newInfoCmd(g))
	rootCmd.AddCommand(newReadCmd(g))
	rootCmd.AddCommand(newWriteCmd(g))
	rootCmd.AddCommand(newMirrorCmd(g))

	return rootCmd
}
