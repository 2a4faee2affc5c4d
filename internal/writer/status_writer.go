// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/harp-analoginput/internal/status"
)

// StatusWriter is the delivery-only contract for device status.
// It receives a snapshot and writes it verbatim.
// No logic, no state, no interpretation.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter writes full blocks on (re)assert and changed slots otherwise.
type deviceStatusWriter struct {
	plan *StatusPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
}

// NewDeviceStatusWriter builds a status writer if status is enabled.
// If plan.Status is nil, status is disabled.
func NewDeviceStatusWriter(plan Plan, clients map[string]endpointClient) (StatusWriter, bool) {
	if plan.Status == nil {
		return nil, false
	}

	return &deviceStatusWriter{
		plan:     plan.Status,
		cli:      clients[plan.Status.Endpoint],
		needFull: true, // full re-assert on first write
	}, true
}

// statusField is one incrementally written slot range.
type statusField struct {
	name string
	slot uint16
	regs func(s status.Snapshot) []uint16
}

var statusFields = []statusField{
	{"health", status.SlotHealthCode, func(s status.Snapshot) []uint16 { return []uint16{s.Health} }},
	{"last_error", status.SlotLastErrorCode, func(s status.Snapshot) []uint16 { return []uint16{s.LastErrorCode} }},
	{"seconds_in_error", status.SlotSecondsInError, func(s status.Snapshot) []uint16 { return []uint16{s.SecondsInError} }},
	{"device_seconds", status.SlotDeviceSecondsHigh, func(s status.Snapshot) []uint16 {
		return []uint16{uint16(s.DeviceSeconds >> 16), uint16(s.DeviceSeconds)}
	}},
}

// WriteStatus delivers a device status snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	base := sw.baseAddr()

	if sw.needFull {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base, status.Encode(s, sw.plan.DeviceName)); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	for _, f := range statusFields {
		want := f.regs(s)
		if equalRegs(f.regs(sw.last), want) {
			continue
		}
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base+f.slot, want); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", f.slot, f.name, err))
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next call.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	sw.last = s
	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

func equalRegs(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
