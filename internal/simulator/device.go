// internal/simulator/device.go
package simulator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/harp-analoginput/internal/harp"
	"github.com/tamzrod/harp-analoginput/internal/registers"
)

const outputMask = 0x0F // DO0..DO3

// Device is an in-process AnalogInput.
// It answers Harp commands from a register bank, applies the device's write
// rules and timestamps every reply with its own clock.
type Device struct {
	mu sync.Mutex

	table  *registers.Table
	values map[uint8][]byte
	whoAmI uint16

	now   func() time.Time
	start time.Time

	log      *zap.Logger
	commands int
}

type Option func(*Device)

// WithWhoAmI makes the device report another identity code.
func WithWhoAmI(code uint16) Option {
	return func(d *Device) { d.whoAmI = code }
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Device) {
		if now != nil {
			d.now = now
		}
	}
}

// New builds a device in its power-on state.
func New(table *registers.Table, opts ...Option) *Device {
	d := &Device{
		table:  table,
		values: make(map[uint8][]byte),
		whoAmI: registers.IdentityCode,
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.start = d.now()

	for _, r := range table.All() {
		desc := r.Descriptor()
		d.values[desc.Address] = make([]byte, desc.Size())
	}
	d.loadDefaults()

	return d
}

func (d *Device) loadDefaults() {
	set := func(desc registers.Descriptor, payload []byte) {
		d.values[desc.Address] = payload
	}

	set(registers.HardwareVersionHigh.Descriptor(), registers.HardwareVersionHigh.EncodePayload(1))
	set(registers.CoreVersionHigh.Descriptor(), registers.CoreVersionHigh.EncodePayload(1))
	set(registers.CoreVersionLow.Descriptor(), registers.CoreVersionLow.EncodePayload(13))
	set(registers.FirmwareVersionHigh.Descriptor(), registers.FirmwareVersionHigh.EncodePayload(1))
	set(registers.DeviceName.Descriptor(), registers.DeviceName.EncodePayload("AnalogInput"))

	set(registers.RangeAndBandwidthConfig.Descriptor(),
		registers.RangeAndBandwidthConfig.EncodePayload(registers.Range10VLowPass1k5Hz))
	set(registers.DO0PulseDuration.Descriptor(), registers.DO0PulseDuration.EncodePayload(10))

	for i := 0; i < 4; i++ {
		set(registers.DOTargetChannel[i].Descriptor(),
			registers.DOTargetChannel[i].EncodePayload(registers.ChannelNone))
		set(registers.DOBufferRisingEdge[i].Descriptor(), registers.DOBufferRisingEdge[i].EncodePayload(1))
		set(registers.DOBufferFallingEdge[i].Descriptor(), registers.DOBufferFallingEdge[i].EncodePayload(1))
	}
}

// SendCommand lets the device stand in for a transport.
func (d *Device) SendCommand(ctx context.Context, req harp.Message) (harp.Message, error) {
	if err := ctx.Err(); err != nil {
		return harp.Message{}, err
	}
	return d.Handle(req), nil
}

// Handle answers one command.
func (d *Device) Handle(req harp.Message) harp.Message {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.commands++

	reg, err := d.table.Register(req.Address)
	if err != nil {
		return d.reject(req, "unknown register")
	}
	desc := reg.Descriptor()
	if req.PayloadType != desc.Type {
		return d.reject(req, "payload type mismatch")
	}

	switch req.Type {
	case harp.Read:
		if !desc.Access.Can(registers.AccessRead) {
			return d.reject(req, "register is not readable")
		}
		return d.reply(harp.Read, desc)

	case harp.Write:
		if !desc.Access.Can(registers.AccessWrite) {
			return d.reject(req, "register is read-only")
		}
		if len(req.Payload) != desc.Size() {
			return d.reject(req, "payload length mismatch")
		}
		if check, ok := writeChecks[desc.Address]; ok && !check(req.Payload) {
			return d.reject(req, "value out of range")
		}
		d.apply(desc, req.Payload)
		return d.reply(harp.Write, desc)

	default:
		return d.reject(req, "unsupported message type")
	}
}

// Commands reports how many commands the device has handled.
func (d *Device) Commands() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commands
}

// SetAnalogData changes the reading returned by the AnalogData register.
func (d *Device) SetAnalogData(p registers.AnalogDataPayload) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[registers.AnalogData.Descriptor().Address] = registers.AnalogData.EncodePayload(p)
}

// Event builds the event message the device would emit for addr.
func (d *Device) Event(addr uint8) (harp.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	reg, err := d.table.Register(addr)
	if err != nil {
		return harp.Message{}, err
	}
	return d.reply(harp.Event, reg.Descriptor()), nil
}

// ---- internals, d.mu held ----

func (d *Device) seconds() float64 {
	return d.now().Sub(d.start).Seconds()
}

func (d *Device) value(desc registers.Descriptor) []byte {
	switch desc.Address {
	case registers.WhoAmI.Descriptor().Address:
		return registers.WhoAmI.EncodePayload(d.whoAmI)
	case registers.TimestampSeconds.Descriptor().Address:
		return registers.TimestampSeconds.EncodePayload(uint32(d.seconds()))
	}
	return append([]byte(nil), d.values[desc.Address]...)
}

func (d *Device) apply(desc registers.Descriptor, payload []byte) {
	state := registers.OutputState.Descriptor().Address

	switch desc.Address {
	case registers.OutputSet.Descriptor().Address:
		d.setOutputs(d.outputs() | decodeOutputs(payload))
	case registers.OutputClear.Descriptor().Address:
		d.setOutputs(d.outputs() &^ decodeOutputs(payload))
	case registers.OutputToggle.Descriptor().Address:
		d.setOutputs(d.outputs() ^ decodeOutputs(payload))
	case state:
		d.setOutputs(decodeOutputs(payload))
		return
	case registers.TimestampSeconds.Descriptor().Address:
		secs, _ := registers.TimestampSeconds.DecodePayload(payload)
		d.start = d.now().Add(-time.Duration(secs) * time.Second)
	}

	d.values[desc.Address] = append([]byte(nil), payload...)
}

func (d *Device) outputs() registers.DigitalOutputs {
	return decodeOutputs(d.values[registers.OutputState.Descriptor().Address])
}

func (d *Device) setOutputs(v registers.DigitalOutputs) {
	d.values[registers.OutputState.Descriptor().Address] =
		registers.OutputState.EncodePayload(v & outputMask)
}

func decodeOutputs(payload []byte) registers.DigitalOutputs {
	v, _ := registers.OutputState.DecodePayload(payload)
	return v
}

func (d *Device) reply(typ harp.MessageType, desc registers.Descriptor) harp.Message {
	return harp.Message{
		Type:        typ,
		Address:     desc.Address,
		Port:        harp.DevicePort,
		PayloadType: desc.Type,
		Payload:     d.value(desc),
	}.WithTimestamp(d.seconds())
}

func (d *Device) reject(req harp.Message, reason string) harp.Message {
	d.log.Debug("rejecting command",
		zap.Stringer("type", req.Type),
		zap.Uint8("address", req.Address),
		zap.String("reason", reason),
	)
	return harp.Message{
		Type:        req.Type,
		Error:       true,
		Address:     req.Address,
		Port:        harp.DevicePort,
		PayloadType: req.PayloadType,
	}.WithTimestamp(d.seconds())
}

// writeChecks mirrors the firmware's write validation.
var writeChecks = map[uint8]func([]byte) bool{
	registers.StartAcquisition.Descriptor().Address: func(p []byte) bool {
		return registers.EnableFlag(p[0]).Defined()
	},
	registers.RangeAndBandwidthConfig.Descriptor().Address: func(p []byte) bool {
		return registers.RangeAndBandwidth(p[0]).Defined()
	},
	registers.SamplingFrequencyConfig.Descriptor().Address: func(p []byte) bool {
		return registers.SamplingFrequency(p[0]).Defined()
	},
	registers.DI0ModeConfig.Descriptor().Address: func(p []byte) bool {
		return registers.DI0Mode(p[0]).Defined()
	},
	registers.DO0ModeConfig.Descriptor().Address: func(p []byte) bool {
		return registers.DO0Mode(p[0]).Defined()
	},
	registers.DO0PulseDuration.Descriptor().Address: func(p []byte) bool {
		return p[0] >= 1
	},
	registers.AcquisitionStartOutputConfig.Descriptor().Address: func(p []byte) bool {
		return registers.AcquisitionStartOutput(p[0]).Defined()
	},
}

func init() {
	for _, c := range registers.DOTargetChannel {
		writeChecks[c.Descriptor().Address] = func(p []byte) bool {
			return registers.TargetChannel(p[0]).Defined()
		}
	}
}
