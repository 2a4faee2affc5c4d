// internal/writer/types.go
package writer

import (
	"time"

	"github.com/tamzrod/harp-analoginput/internal/poller"
)

// TargetEndpoint is one holding register image on a Modbus TCP server.
type TargetEndpoint struct {
	TargetID uint32
	Endpoint string
	UnitID   uint8
	Offset   uint16 // holding register of image word 0
	Timeout  time.Duration
}

// StatusPlan locates the device status block.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16 // block index; first register is BaseSlot*SlotsPerDevice
	DeviceName string
}

// Plan is the fully-built write plan for one mirrored device.
type Plan struct {
	Name    string
	Targets []TargetEndpoint
	Status  *StatusPlan // nil: status disabled
}

// Writer writes poll snapshots into targets.
type Writer interface {
	Write(res poller.PollResult) error
}
