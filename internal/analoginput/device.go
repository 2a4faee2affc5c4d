// internal/analoginput/device.go
package analoginput

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tamzrod/harp-analoginput/internal/harp"
	"github.com/tamzrod/harp-analoginput/internal/registers"
)

// WhoAmI is the identity code every AnalogInput reports.
const WhoAmI = registers.IdentityCode

// Transport carries one command to the device and returns its reply.
// Implementations own ordering, timeouts and cancellation.
type Transport interface {
	SendCommand(ctx context.Context, req harp.Message) (harp.Message, error)
}

// Device is a connected AnalogInput.
// It holds no mutable state; concurrent use is as safe as the Transport.
type Device struct {
	tr    Transport
	table *registers.Table
	log   *zap.Logger
}

type Option func(*Device)

func WithLogger(l *zap.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.log = l
		}
	}
}

// WithTable reuses an already built register table.
func WithTable(t *registers.Table) Option {
	return func(d *Device) {
		if t != nil {
			d.table = t
		}
	}
}

// Connect checks the identity of the device behind tr.
// A device that does not report WhoAmI is rejected and no further command is sent.
func Connect(ctx context.Context, tr Transport, opts ...Option) (*Device, error) {
	d := &Device{
		tr:  tr,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.table == nil {
		table, err := registers.NewTable()
		if err != nil {
			return nil, err
		}
		d.table = table
	}

	who, err := Read(ctx, d, registers.WhoAmI)
	if err != nil {
		return nil, fmt.Errorf("analoginput: identify device: %w", err)
	}
	if who != WhoAmI {
		return nil, &UnexpectedDeviceIdentityError{Expected: WhoAmI, Actual: who}
	}

	d.log.Info("device connected", zap.Uint16("who_am_i", who))
	return d, nil
}

// Table returns the register table used by d.
func (d *Device) Table() *registers.Table { return d.table }

// ---- typed access ----

// Read fetches the current value of the register described by c.
func Read[T any](ctx context.Context, d *Device, c *registers.Codec[T]) (T, error) {
	var zero T

	reply, err := d.roundTrip(ctx, harp.NewRead(c.Descriptor().Address, c.Descriptor().Type))
	if err != nil {
		return zero, err
	}
	return c.Decode(reply)
}

// ReadTimestamped is Read plus the device time of the reply.
func ReadTimestamped[T any](ctx context.Context, d *Device, c *registers.Codec[T]) (registers.Timestamped[T], error) {
	reply, err := d.roundTrip(ctx, harp.NewRead(c.Descriptor().Address, c.Descriptor().Type))
	if err != nil {
		return registers.Timestamped[T]{}, err
	}
	return c.DecodeTimestamped(reply)
}

// Write sets the register described by c to v and waits for the acknowledgement.
func Write[T any](ctx context.Context, d *Device, c *registers.Codec[T], v T) error {
	_, err := d.roundTrip(ctx, c.Encode(harp.Write, v))
	return err
}

// ---- address based access ----

// ReadRaw reads the payload of the register at addr.
func (d *Device) ReadRaw(ctx context.Context, addr uint8) (harp.Message, error) {
	desc, err := d.table.Lookup(addr)
	if err != nil {
		return harp.Message{}, err
	}

	reply, err := d.roundTrip(ctx, harp.NewRead(addr, desc.Type))
	if err != nil {
		return harp.Message{}, err
	}
	if err := checkShape(desc, reply); err != nil {
		return harp.Message{}, err
	}
	return reply, nil
}

// WriteRaw writes payload to the register at addr.
// The payload must already have the register's exact size.
func (d *Device) WriteRaw(ctx context.Context, addr uint8, payload []byte) error {
	desc, err := d.table.Lookup(addr)
	if err != nil {
		return err
	}
	if len(payload) != desc.Size() {
		return &registers.MalformedPayloadError{Address: addr, Expected: desc.Size(), Actual: len(payload)}
	}

	_, err = d.roundTrip(ctx, harp.NewWrite(addr, desc.Type, payload))
	return err
}

// roundTrip sends req and checks that the reply answers it.
func (d *Device) roundTrip(ctx context.Context, req harp.Message) (harp.Message, error) {
	reply, err := d.tr.SendCommand(ctx, req)
	if err != nil {
		d.log.Debug("command failed",
			zap.Stringer("type", req.Type),
			zap.Uint8("address", req.Address),
			zap.Error(err),
		)
		return harp.Message{}, fmt.Errorf("analoginput: %s register %d: %w", req.Type, req.Address, err)
	}

	if reply.Error {
		return harp.Message{}, &harp.DeviceError{Type: req.Type, Address: req.Address}
	}
	if reply.Type != req.Type || reply.Address != req.Address {
		return harp.Message{}, &UnexpectedReplyError{Request: req, Reply: reply}
	}
	return reply, nil
}

func checkShape(desc registers.Descriptor, reply harp.Message) error {
	if reply.PayloadType != desc.Type {
		return &registers.PayloadTypeError{
			Address:  desc.Address,
			Expected: desc.Type,
			Actual:   reply.PayloadType,
			Got:      reply.Address,
		}
	}
	if len(reply.Payload) != desc.Size() {
		return &registers.MalformedPayloadError{
			Address:  desc.Address,
			Expected: desc.Size(),
			Actual:   len(reply.Payload),
		}
	}
	return nil
}
