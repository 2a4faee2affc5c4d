// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	cfg "github.com/tamzrod/harp-analoginput/internal/config"
	"github.com/tamzrod/harp-analoginput/internal/registers"
)

// Build constructs a Poller for the mirror section of a validated config.
// Registers are laid out back to back in the order they are listed.
func Build(name string, m cfg.MirrorConfig, table *registers.Table, reader Reader) (*Poller, error) {
	reads := make([]ReadBlock, 0, len(m.Registers))

	pos := 0
	for _, ref := range m.Registers {
		reg, err := table.Resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("poller: %w", err)
		}
		reads = append(reads, ReadBlock{Register: reg, Position: uint16(pos)})
		pos += reg.Descriptor().WordCount()
	}

	return New(
		Config{
			Name:     name,
			Interval: time.Duration(m.IntervalMs) * time.Millisecond,
			Reads:    reads,
		},
		reader,
	)
}
