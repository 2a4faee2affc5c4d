// internal/harp/types.go
package harp

import "fmt"

// MessageType identifies the kind of exchange a message belongs to.
type MessageType byte

const (
	Read  MessageType = 0x01
	Write MessageType = 0x02
	Event MessageType = 0x03
)

// errorFlag is OR-ed into the type byte of a reply the device rejected.
const errorFlag byte = 0x08

func (t MessageType) String() string {
	switch t {
	case Read:
		return "Read"
	case Write:
		return "Write"
	case Event:
		return "Event"
	default:
		return fmt.Sprintf("MessageType(%d)", byte(t))
	}
}

func (t MessageType) valid() bool {
	return t == Read || t == Write || t == Event
}

// PayloadType is the wire element type of a payload.
// Low nibble = element size in bytes, 0x80 = signed, 0x40 = floating point.
type PayloadType byte

const (
	U8    PayloadType = 0x01
	S8    PayloadType = 0x81
	U16   PayloadType = 0x02
	S16   PayloadType = 0x82
	U32   PayloadType = 0x04
	S32   PayloadType = 0x84
	U64   PayloadType = 0x08
	S64   PayloadType = 0x88
	Float PayloadType = 0x44
)

// timestampFlag is OR-ed into the payload type byte when a timestamp follows.
const timestampFlag byte = 0x10

// ElementSize returns the size in bytes of one payload element.
func (p PayloadType) ElementSize() int {
	return int(byte(p) & 0x0F)
}

// Signed reports whether elements are two's complement integers.
func (p PayloadType) Signed() bool {
	return byte(p)&0x80 != 0
}

func (p PayloadType) valid() bool {
	switch p {
	case U8, S8, U16, S16, U32, S32, U64, S64, Float:
		return true
	}
	return false
}

func (p PayloadType) String() string {
	switch p {
	case U8:
		return "U8"
	case S8:
		return "S8"
	case U16:
		return "U16"
	case S16:
		return "S16"
	case U32:
		return "U32"
	case S32:
		return "S32"
	case U64:
		return "U64"
	case S64:
		return "S64"
	case Float:
		return "Float"
	default:
		return fmt.Sprintf("PayloadType(0x%02X)", byte(p))
	}
}

// ParsePayloadType maps a type name ("U8", "S16", ...) to its PayloadType.
func ParsePayloadType(name string) (PayloadType, error) {
	for _, p := range []PayloadType{U8, S8, U16, S16, U32, S32, U64, S64, Float} {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("harp: unknown payload type %q", name)
}
