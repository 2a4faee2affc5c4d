// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

// Reader abstracts the device access the poller needs.
// *analoginput.Device satisfies it.
type Reader interface {
	ReadRaw(ctx context.Context, addr uint8) (harp.Message, error)
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Name     string
	Interval time.Duration
	Reads    []ReadBlock
}

// Poller is a dumb, clock-driven reader.
type Poller struct {
	cfg    Config
	reader Reader
	now    func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, reader Reader) (*Poller, error) {
	if cfg.Name == "" {
		return nil, errors.New("poller: name required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if len(cfg.Reads) == 0 {
		return nil, errors.New("poller: at least one read block required")
	}
	if reader == nil {
		return nil, errors.New("poller: reader required")
	}
	for i, rb := range cfg.Reads {
		if rb.Register == nil {
			return nil, fmt.Errorf("poller: read block %d has no register", i)
		}
	}
	return &Poller{cfg: cfg, reader: reader, now: time.Now}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	res := PollResult{
		Name: p.cfg.Name,
		At:   p.now(),
	}

	blocks := make([]BlockResult, 0, len(p.cfg.Reads))
	var seconds float64

	for _, rb := range p.cfg.Reads {
		addr := rb.Register.Descriptor().Address

		msg, err := p.reader.ReadRaw(ctx, addr)
		if err != nil {
			res.Err = err
			return res
		}

		words, err := rb.Register.Words(msg.Payload)
		if err != nil {
			res.Err = err
			return res
		}

		if msg.HasTimestamp {
			seconds = msg.Timestamp
		}

		blocks = append(blocks, BlockResult{
			Address:  addr,
			Position: rb.Position,
			Words:    words,
		})
	}

	// Commit only if all reads succeeded
	res.Blocks = blocks
	res.DeviceSeconds = seconds
	return res
}
