// internal/harp/message.go
package harp

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Frame geometry constants.
const (
	// DevicePort addresses the device itself (as opposed to a hub port).
	DevicePort byte = 0xFF

	headerSize    = 5 // type + len + address + port + payload type
	timestampSize = 6 // seconds(4) + ticks(2)
	checksumSize  = 1

	// MinFrameSize is the size of an untimestamped frame with no payload.
	MinFrameSize = headerSize + checksumSize

	// MaxFrameSize bounds a frame whose length fits in the single LEN byte.
	MaxFrameSize = 0xFF + 2

	// tickSeconds is the resolution of the sub-second timestamp field.
	tickSeconds = 32e-6
	ticksPerSec = 31250
)

// Message is one Harp envelope.
// Payload holds raw little-endian elements of PayloadType.
type Message struct {
	Type        MessageType
	Error       bool
	Address     uint8
	Port        uint8
	PayloadType PayloadType

	HasTimestamp bool
	Timestamp    float64 // seconds, device clock

	Payload []byte
}

// NewRead builds a zero-payload read request for one register.
func NewRead(address uint8, payloadType PayloadType) Message {
	return Message{
		Type:        Read,
		Address:     address,
		Port:        DevicePort,
		PayloadType: payloadType,
	}
}

// NewWrite builds a write request carrying payload.
func NewWrite(address uint8, payloadType PayloadType, payload []byte) Message {
	return Message{
		Type:        Write,
		Address:     address,
		Port:        DevicePort,
		PayloadType: payloadType,
		Payload:     payload,
	}
}

// WithTimestamp returns a copy of m carrying the given device time.
func (m Message) WithTimestamp(seconds float64) Message {
	m.HasTimestamp = true
	m.Timestamp = seconds
	return m
}

// Encode frames the message.
// Fails if the payload does not fit a single-byte length or is not a whole
// number of elements, or if the timestamp does not fit the 32-bit seconds
// field.
func (m Message) Encode() ([]byte, error) {
	if !m.Type.valid() {
		return nil, fmt.Errorf("%w: message type %d", ErrInvalidFrame, byte(m.Type))
	}
	if !m.PayloadType.valid() {
		return nil, fmt.Errorf("%w: payload type 0x%02X", ErrInvalidFrame, byte(m.PayloadType))
	}
	if len(m.Payload)%m.PayloadType.ElementSize() != 0 {
		return nil, fmt.Errorf("%w: payload of %d bytes is not a multiple of %s",
			ErrInvalidFrame, len(m.Payload), m.PayloadType)
	}

	size := headerSize + len(m.Payload) + checksumSize
	if m.HasTimestamp {
		size += timestampSize
	}
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: frame of %d bytes exceeds %d", ErrInvalidFrame, size, MaxFrameSize)
	}

	frame := make([]byte, 0, size)

	typ := byte(m.Type)
	if m.Error {
		typ |= errorFlag
	}
	ptype := byte(m.PayloadType)
	if m.HasTimestamp {
		ptype |= timestampFlag
	}

	frame = append(frame, typ, byte(size-2), m.Address, m.Port, ptype)

	if m.HasTimestamp {
		var ts [timestampSize]byte
		secs, ticks, ok := splitTimestamp(m.Timestamp)
		if !ok {
			return nil, fmt.Errorf("%w: timestamp %v out of range", ErrInvalidFrame, m.Timestamp)
		}
		binary.LittleEndian.PutUint32(ts[0:4], secs)
		binary.LittleEndian.PutUint16(ts[4:6], ticks)
		frame = append(frame, ts[:]...)
	}

	frame = append(frame, m.Payload...)
	frame = append(frame, Checksum(frame))

	return frame, nil
}

// Parse validates and unframes exactly one message.
// The returned payload does not alias frame.
func Parse(frame []byte) (Message, error) {
	if len(frame) < MinFrameSize {
		return Message{}, errTooShort(len(frame), MinFrameSize)
	}

	size := int(frame[1]) + 2
	if len(frame) != size {
		return Message{}, fmt.Errorf("%w: length field says %d bytes, got %d", ErrInvalidFrame, size, len(frame))
	}

	want := Checksum(frame[:size-1])
	if got := frame[size-1]; got != want {
		return Message{}, &ChecksumError{Expected: want, Actual: got}
	}

	m := Message{
		Type:        MessageType(frame[0] &^ errorFlag),
		Error:       frame[0]&errorFlag != 0,
		Address:     frame[2],
		Port:        frame[3],
		PayloadType: PayloadType(frame[4] &^ timestampFlag),
	}
	if !m.Type.valid() {
		return Message{}, fmt.Errorf("%w: message type byte 0x%02X", ErrInvalidFrame, frame[0])
	}
	if !m.PayloadType.valid() {
		return Message{}, fmt.Errorf("%w: payload type byte 0x%02X", ErrInvalidFrame, frame[4])
	}

	body := frame[headerSize : size-1]
	if frame[4]&timestampFlag != 0 {
		if len(body) < timestampSize {
			return Message{}, errTooShort(len(frame), MinFrameSize+timestampSize)
		}
		m.HasTimestamp = true
		m.Timestamp = joinTimestamp(
			binary.LittleEndian.Uint32(body[0:4]),
			binary.LittleEndian.Uint16(body[4:6]),
		)
		body = body[timestampSize:]
	}

	if len(body)%m.PayloadType.ElementSize() != 0 {
		return Message{}, fmt.Errorf("%w: payload of %d bytes is not a multiple of %s",
			ErrInvalidFrame, len(body), m.PayloadType)
	}

	m.Payload = append([]byte(nil), body...)
	return m, nil
}

// Checksum is the low byte of the sum of all bytes.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// splitTimestamp reports ok=false for NaN or times past the 32-bit seconds field.
func splitTimestamp(seconds float64) (secs uint32, ticks uint16, ok bool) {
	if math.IsNaN(seconds) {
		return 0, 0, false
	}
	if seconds <= 0 {
		return 0, 0, true
	}
	whole := math.Floor(seconds)
	t := math.Round((seconds - whole) / tickSeconds)
	if t >= ticksPerSec {
		whole++
		t = 0
	}
	if whole > math.MaxUint32 {
		return 0, 0, false
	}
	return uint32(whole), uint16(t), true
}

func joinTimestamp(secs uint32, ticks uint16) float64 {
	return float64(secs) + float64(ticks)*tickSeconds
}
