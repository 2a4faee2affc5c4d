// internal/registers/wire.go
package registers

import (
	"encoding/binary"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

// Pure little-endian helpers. No IO.

func putU16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func getU16(b []byte) uint16    { return binary.LittleEndian.Uint16(b) }

func putS16(b []byte, v int16) { binary.LittleEndian.PutUint16(b, uint16(v)) }
func getS16(b []byte) int16    { return int16(binary.LittleEndian.Uint16(b)) }

func putU32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func getU32(b []byte) uint32    { return binary.LittleEndian.Uint32(b) }

// payloadWords spreads a payload over 16-bit words.
// Byte-wide elements take one word (signed bytes are sign-extended),
// wider elements are split low word first.
func payloadWords(t harp.PayloadType, payload []byte) []uint16 {
	size := t.ElementSize()
	switch size {
	case 1:
		out := make([]uint16, len(payload))
		for i, b := range payload {
			if t.Signed() {
				out[i] = uint16(int16(int8(b)))
			} else {
				out[i] = uint16(b)
			}
		}
		return out

	default:
		out := make([]uint16, 0, len(payload)/2)
		for i := 0; i+1 < len(payload); i += 2 {
			out = append(out, getU16(payload[i:]))
		}
		return out
	}
}
