// internal/writer/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// MaxRegistersPerWrite is the FC16 quantity limit.
const MaxRegistersPerWrite = 123

// EndpointClient is a single TCP connection to one Modbus server.
// It serializes requests because it mutates SlaveId per write.
type EndpointClient struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	// fail fast at startup; later writes reconnect on demand
	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("writer modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return &EndpointClient{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// WriteRegisters writes holding registers with FC16, split into
// MaxRegistersPerWrite chunks. A failed chunk drops the connection so the
// next call starts on a fresh one.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID

	if err := writeChunked(c.client, addr, regs); err != nil {
		_ = c.handler.Close()
		return err
	}
	return nil
}

// multiWriter is the FC16 subset of modbus.Client.
type multiWriter interface {
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// writeChunked issues one FC16 per MaxRegistersPerWrite words, each at its
// own offset from addr. It stops at the first failed chunk.
func writeChunked(w multiWriter, addr uint16, regs []uint16) error {
	for start := 0; start < len(regs); start += MaxRegistersPerWrite {
		end := start + MaxRegistersPerWrite
		if end > len(regs) {
			end = len(regs)
		}
		chunk := regs[start:end]

		if _, err := w.WriteMultipleRegisters(addr+uint16(start), uint16(len(chunk)), packRegisters(chunk)); err != nil {
			return fmt.Errorf("writer modbus: FC16 at %d (%d registers): %w", addr+uint16(start), len(chunk), err)
		}
	}
	return nil
}

// packRegisters lays words out big-endian as FC16 expects.
func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
