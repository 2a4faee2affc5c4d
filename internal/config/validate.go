// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/harp-analoginput/internal/registers"
	"github.com/tamzrod/harp-analoginput/internal/status"
)

// Validate checks configuration correctness against the register table.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config, table *registers.Table) error {
	if cfg == nil {
		return fmt.Errorf("config is empty")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if !cfg.Device.Simulate && cfg.Device.Port == "" {
		return fmt.Errorf("device: port is required unless simulate is set")
	}
	if cfg.Device.BaudRate < 0 {
		return fmt.Errorf("device: baud_rate must not be negative")
	}
	if cfg.Device.TimeoutMs < 0 {
		return fmt.Errorf("device: timeout_ms must not be negative")
	}

	// ------------------------------------------------------------
	// MIRROR REGISTERS
	// ------------------------------------------------------------

	m := cfg.Mirror

	if m.IntervalMs <= 0 {
		return fmt.Errorf("mirror: interval_ms must be > 0")
	}
	if len(m.Registers) == 0 {
		return fmt.Errorf("mirror: no registers to mirror")
	}
	if len(m.Targets) == 0 && m.Status == nil {
		return fmt.Errorf("mirror: no targets and no status block defined")
	}

	words := 0
	seen := make(map[uint8]string)
	for _, ref := range m.Registers {
		reg, err := table.Resolve(ref)
		if err != nil {
			return fmt.Errorf("mirror: register %q: %w", ref, err)
		}
		d := reg.Descriptor()
		if !d.Access.Can(registers.AccessRead) {
			return fmt.Errorf("mirror: register %s is not readable", d.Name)
		}
		if prev, dup := seen[d.Address]; dup {
			return fmt.Errorf("mirror: register %s listed twice (as %q and %q)", d.Name, prev, ref)
		}
		seen[d.Address] = ref
		words += d.WordCount()
	}

	// ------------------------------------------------------------
	// DESTINATION MEMORY GEOMETRY VALIDATION
	// ------------------------------------------------------------

	type span struct {
		start int
		end   int
		owner string
	}

	// key = endpoint | unit_id
	spans := make(map[string][]span)

	claim := func(endpoint string, unitID uint8, start, count int, owner string) error {
		end := start + count - 1
		if end > 0xFFFF {
			return fmt.Errorf("%s: range %d-%d exceeds the holding register space", owner, start, end)
		}

		key := fmt.Sprintf("%s|%d", endpoint, unitID)
		for _, s := range spans[key] {
			// overlap check (inclusive)
			if !(end < s.start || start > s.end) {
				return fmt.Errorf(
					"memory overlap: endpoint=%s unit_id=%d range=%d-%d (%s) overlaps range=%d-%d (%s)",
					endpoint, unitID, start, end, owner, s.start, s.end, s.owner,
				)
			}
		}
		spans[key] = append(spans[key], span{start: start, end: end, owner: owner})
		return nil
	}

	targetIDs := make(map[uint32]bool)
	for i, t := range m.Targets {
		if t.Endpoint == "" {
			return fmt.Errorf("mirror: target %d has no endpoint", i)
		}
		if t.TimeoutMs < 0 {
			return fmt.Errorf("mirror: target %d: timeout_ms must not be negative", t.ID)
		}
		if targetIDs[t.ID] {
			return fmt.Errorf("mirror: duplicate target id %d", t.ID)
		}
		targetIDs[t.ID] = true

		owner := fmt.Sprintf("target %d", t.ID)
		if err := claim(t.Endpoint, t.UnitID, int(t.Offset), words, owner); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK VALIDATION (OPT-IN)
	// ------------------------------------------------------------

	if s := m.Status; s != nil {
		if s.Endpoint == "" {
			return fmt.Errorf("status: endpoint is required")
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(s.DeviceName); i++ {
			if s.DeviceName[i] > 0x7F {
				return fmt.Errorf("status: device_name must contain ASCII characters only")
			}
		}

		base := int(s.Slot) * status.SlotsPerDevice
		if err := claim(s.Endpoint, s.UnitID, base, status.SlotsPerDevice, "status block"); err != nil {
			return err
		}
	}

	return nil
}
