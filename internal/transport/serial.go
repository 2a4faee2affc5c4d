// internal/transport/serial.go
package transport

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goburrow/serial"
)

// Harp devices talk 8N1 at 1 Mbaud.
const DefaultBaudRate = 1000000

type SerialConfig struct {
	Port     string
	BaudRate int

	// ReadTimeout is the poll interval of the port read, not a reply timeout.
	ReadTimeout time.Duration
}

// OpenSerial opens a Harp device on a serial port.
func OpenSerial(cfg SerialConfig, opts ...Option) (*Stream, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("transport: serial port not set")
	}

	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 100 * time.Millisecond
	}

	port, err := serial.Open(&serial.Config{
		Address:  cfg.Port,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", cfg.Port, err)
	}

	return NewStream(port, opts...), nil
}

// patientReader retries reads that timed out with no data.
// A serial read timeout only means the line was idle.
type patientReader struct {
	r io.Reader
}

func (p patientReader) Read(b []byte) (int, error) {
	for {
		n, err := p.r.Read(b)
		if errors.Is(err, serial.ErrTimeout) {
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}
