// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/harp-analoginput/internal/registers"
)

// ReadBlock is one register read per cycle and the place its words take
// in the mirrored image.
type ReadBlock struct {
	Register registers.Register
	Position uint16 // first word within the image
}

// BlockResult is the mirrored form of a single register read.
type BlockResult struct {
	Address  uint8 // Harp register address
	Position uint16
	Words    []uint16
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	Name string
	At   time.Time

	// DeviceSeconds is the device clock carried by the last reply, 0 when none had one.
	DeviceSeconds float64

	Blocks []BlockResult
	Err    error // non-nil means the poll cycle failed
}

// Words is the image size covered by the blocks.
func (r PollResult) Words() int {
	n := 0
	for _, b := range r.Blocks {
		if end := int(b.Position) + len(b.Words); end > n {
			n = end
		}
	}
	return n
}
