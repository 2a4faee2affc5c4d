// cmd/analoginput/connect.go
package main

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/harp-analoginput/internal/analoginput"
	"github.com/tamzrod/harp-analoginput/internal/config"
	"github.com/tamzrod/harp-analoginput/internal/registers"
	"github.com/tamzrod/harp-analoginput/internal/simulator"
	"github.com/tamzrod/harp-analoginput/internal/transport"
)

// connect opens the transport described by dc and identifies the device.
// The returned func releases the transport (and the simulator, if any).
func connect(ctx context.Context, dc config.DeviceConfig, table *registers.Table, log *zap.Logger) (*analoginput.Device, func() error, error) {
	opts := []transport.Option{
		transport.WithLogger(log.Named("transport")),
		transport.WithTimeout(time.Duration(dc.TimeoutMs) * time.Millisecond),
	}

	var (
		stream  *transport.Stream
		closeFn func() error
	)

	if dc.Simulate {
		sim := simulator.New(table, simulator.WithLogger(log.Named("simulator")))
		host, devEnd := net.Pipe()

		simCtx, cancel := context.WithCancel(context.Background())
		served := make(chan error, 1)
		go func() { served <- sim.Serve(simCtx, devEnd) }()

		stream = transport.NewStream(host, opts...)
		closeFn = func() error {
			err := stream.Close()
			cancel()
			return errors.Join(err, <-served)
		}
	} else {
		s, err := transport.OpenSerial(transport.SerialConfig{Port: dc.Port, BaudRate: dc.BaudRate}, opts...)
		if err != nil {
			return nil, nil, err
		}
		stream, closeFn = s, s.Close
	}

	dev, err := analoginput.Connect(ctx, stream,
		analoginput.WithTable(table),
		analoginput.WithLogger(log.Named("device")),
	)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	return dev, closeFn, nil
}

// withDevice runs fn against a connected device built from the global flags.
func (g *globalFlags) withDevice(ctx context.Context, fn func(*analoginput.Device) error) error {
	table, err := registers.NewTable()
	if err != nil {
		return err
	}

	dc := g.deviceConfig()
	if !dc.Simulate && dc.Port == "" {
		return errors.New("--port is required (or use --simulate)")
	}

	dev, closeFn, err := connect(ctx, dc, table, g.log)
	if err != nil {
		return err
	}

	return errors.Join(fn(dev), closeFn())
}
