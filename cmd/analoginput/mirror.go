// cmd/analoginput/mirror.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/harp-analoginput/internal/analoginput"
	"github.com/tamzrod/harp-analoginput/internal/config"
	"github.com/tamzrod/harp-analoginput/internal/mirror"
	"github.com/tamzrod/harp-analoginput/internal/poller"
	"github.com/tamzrod/harp-analoginput/internal/registers"
	"github.com/tamzrod/harp-analoginput/internal/writer"
)

func newMirrorCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mirror <config.yaml>",
		Short: "Mirror registers into Modbus TCP holding registers",
		Long: `Poll the configured registers and copy their 16-bit words into one or more
Modbus TCP servers, with an optional device status block. Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runMirror(ctx, g, args[0])
		},
	}
}

func runMirror(ctx context.Context, g *globalFlags, path string) error {
	log := g.log

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if g.simulate {
		cfg.Device.Simulate = true
	}

	table, err := registers.NewTable()
	if err != nil {
		return err
	}

	if err := config.Validate(cfg, table); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	// --------------------
	// Device
	// --------------------

	dev, closeDevice, err := connect(ctx, cfg.Device, table, log)
	if err != nil {
		return err
	}
	defer closeDevice()

	name := cfg.Device.Port
	if cfg.Device.Simulate {
		name = "simulator"
	}

	// status block falls back to the name the device reports
	if s := cfg.Mirror.Status; s != nil && s.DeviceName == "" {
		if s.DeviceName, err = analoginput.Read(ctx, dev, registers.DeviceName); err != nil {
			return fmt.Errorf("read device name: %w", err)
		}
	}

	// --------------------
	// Pipeline
	// --------------------

	p, err := poller.Build(name, cfg.Mirror, table, dev)
	if err != nil {
		return err
	}

	plan, err := writer.BuildPlan(name, cfg.Mirror)
	if err != nil {
		return err
	}

	clients, closeWriters, err := writer.BuildEndpointClients(plan)
	if err != nil {
		return fmt.Errorf("writer clients failed: %w", err)
	}
	defer closeWriters()

	statusWriter, _ := writer.NewDeviceStatusWriter(plan, clients)

	loop := &mirror.Loop{
		Name:   name,
		Data:   writer.New(plan, clients),
		Status: statusWriter,
		Log:    log,
	}

	out := make(chan poller.PollResult)
	done := make(chan struct{})
	go func() {
		loop.Run(ctx, out)
		close(done)
	}()

	log.Info("mirror started",
		zap.String("device", name),
		zap.Int("registers", len(cfg.Mirror.Registers)),
		zap.Int("targets", len(plan.Targets)),
		zap.Bool("status", plan.Status != nil),
	)

	p.Run(ctx, out, log)

	// final status write happens before the clients close
	<-done
	log.Info("mirror stopped", zap.String("device", name))
	return nil
}
