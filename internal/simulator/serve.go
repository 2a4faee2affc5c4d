// internal/simulator/serve.go
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

// Serve answers framed commands read from rw until ctx is done or rw fails.
// rw is closed when Serve returns.
func (d *Device) Serve(ctx context.Context, rw io.ReadWriteCloser) error {
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		select {
		case <-ctx.Done():
			rw.Close()
		case <-stop:
		}
	}()
	defer rw.Close()

	sc := harp.NewScanner(rw)
	for sc.Scan() {
		req, err := harp.Parse(sc.Bytes())
		if err != nil {
			d.log.Warn("discarding frame", zap.Error(err))
			continue
		}

		frame, err := d.Handle(req).Encode()
		if err != nil {
			return fmt.Errorf("simulator: encode reply: %w", err)
		}
		if _, err := rw.Write(frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("simulator: write reply: %w", err)
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("simulator: read: %w", err)
	}
	return nil
}

// Emit writes one unsolicited event frame for addr to w.
func (d *Device) Emit(w io.Writer, addr uint8) error {
	msg, err := d.Event(addr)
	if err != nil {
		return err
	}
	frame, err := msg.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}
