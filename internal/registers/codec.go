// internal/registers/codec.go
package registers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

// Timestamped pairs a decoded value with the device time carried by its message.
type Timestamped[T any] struct {
	Seconds float64
	Value   T
}

// Register is the type-erased view of a Codec, used where the register is
// only known at runtime (address lookups, CLI, mirroring).
type Register interface {
	Descriptor() Descriptor
	DecodeValue(payload []byte) (any, error)
	ParseValue(s string) ([]byte, error)
	Words(payload []byte) ([]uint16, error)
}

// Codec maps the payload of exactly one register to and from T.
// Codecs are immutable and safe for concurrent use.
type Codec[T any] struct {
	desc   Descriptor
	decode func([]byte) T
	encode func([]byte, T)
	parse  func(string) (T, error)
}

func newCodec[T any](d Descriptor, decode func([]byte) T, encode func([]byte, T), parse func(string) (T, error)) *Codec[T] {
	return &Codec[T]{desc: d, decode: decode, encode: encode, parse: parse}
}

func (c *Codec[T]) Descriptor() Descriptor { return c.desc }

// DecodePayload interprets raw payload bytes.
// The length must match the register's fixed size exactly.
func (c *Codec[T]) DecodePayload(payload []byte) (T, error) {
	var zero T
	if len(payload) != c.desc.Size() {
		return zero, &MalformedPayloadError{
			Address:  c.desc.Address,
			Expected: c.desc.Size(),
			Actual:   len(payload),
		}
	}
	return c.decode(payload), nil
}

// EncodePayload always returns exactly Descriptor().Size() bytes.
func (c *Codec[T]) EncodePayload(v T) []byte {
	b := make([]byte, c.desc.Size())
	c.encode(b, v)
	return b
}

// Decode checks that msg belongs to this register and decodes its payload.
func (c *Codec[T]) Decode(msg harp.Message) (T, error) {
	var zero T
	if msg.Address != c.desc.Address || msg.PayloadType != c.desc.Type {
		return zero, &PayloadTypeError{
			Address:  c.desc.Address,
			Expected: c.desc.Type,
			Actual:   msg.PayloadType,
			Got:      msg.Address,
		}
	}
	return c.DecodePayload(msg.Payload)
}

// DecodeTimestamped is Decode plus the message timestamp, passed through unchanged.
func (c *Codec[T]) DecodeTimestamped(msg harp.Message) (Timestamped[T], error) {
	v, err := c.Decode(msg)
	if err != nil {
		return Timestamped[T]{}, err
	}
	if !msg.HasTimestamp {
		return Timestamped[T]{}, &MissingTimestampError{Address: c.desc.Address}
	}
	return Timestamped[T]{Seconds: msg.Timestamp, Value: v}, nil
}

// Encode builds a message of the given type carrying v.
func (c *Codec[T]) Encode(typ harp.MessageType, v T) harp.Message {
	return harp.Message{
		Type:        typ,
		Address:     c.desc.Address,
		Port:        harp.DevicePort,
		PayloadType: c.desc.Type,
		Payload:     c.EncodePayload(v),
	}
}

func (c *Codec[T]) EncodeTimestamped(seconds float64, typ harp.MessageType, v T) harp.Message {
	return c.Encode(typ, v).WithTimestamp(seconds)
}

// Parse reads a value from its textual form (enum name or number).
func (c *Codec[T]) Parse(s string) (T, error) {
	v, err := c.parse(s)
	if err != nil {
		return v, fmt.Errorf("%s: %w", c.desc.Name, err)
	}
	return v, nil
}

// ---- Register ----

func (c *Codec[T]) DecodeValue(payload []byte) (any, error) {
	v, err := c.DecodePayload(payload)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Codec[T]) ParseValue(s string) ([]byte, error) {
	v, err := c.Parse(s)
	if err != nil {
		return nil, err
	}
	return c.EncodePayload(v), nil
}

func (c *Codec[T]) Words(payload []byte) ([]uint16, error) {
	if len(payload) != c.desc.Size() {
		return nil, &MalformedPayloadError{
			Address:  c.desc.Address,
			Expected: c.desc.Size(),
			Actual:   len(payload),
		}
	}
	return payloadWords(c.desc.Type, payload), nil
}

// ---- scalar constructors ----

func u8Codec[T ~uint8](d Descriptor, parse func(string) (T, error)) *Codec[T] {
	d.Type, d.Length = harp.U8, 1
	return newCodec(d,
		func(b []byte) T { return T(b[0]) },
		func(b []byte, v T) { b[0] = byte(v) },
		parse,
	)
}

func u16Codec[T ~uint16](d Descriptor, parse func(string) (T, error)) *Codec[T] {
	d.Type, d.Length = harp.U16, 1
	return newCodec(d,
		func(b []byte) T { return T(getU16(b)) },
		func(b []byte, v T) { putU16(b, uint16(v)) },
		parse,
	)
}

func s16Codec[T ~int16](d Descriptor, parse func(string) (T, error)) *Codec[T] {
	d.Type, d.Length = harp.S16, 1
	return newCodec(d,
		func(b []byte) T { return T(getS16(b)) },
		func(b []byte, v T) { putS16(b, int16(v)) },
		parse,
	)
}

func u32Codec[T ~uint32](d Descriptor, parse func(string) (T, error)) *Codec[T] {
	d.Type, d.Length = harp.U32, 1
	return newCodec(d,
		func(b []byte) T { return T(getU32(b)) },
		func(b []byte, v T) { putU32(b, uint32(v)) },
		parse,
	)
}

func parseUnsigned[T ~uint8 | ~uint16 | ~uint32](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 0, bits)
		if err != nil {
			return 0, fmt.Errorf("registers: parse %q as U%d: %w", s, bits, err)
		}
		return T(n), nil
	}
}

func parseSigned[T ~int16](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 0, bits)
		if err != nil {
			return 0, fmt.Errorf("registers: parse %q as S%d: %w", s, bits, err)
		}
		return T(n), nil
	}
}
