// internal/harp/errors.go
package harp

import (
	"errors"
	"fmt"
)

// ErrInvalidFrame is wrapped by every structural framing failure.
var ErrInvalidFrame = errors.New("harp: invalid frame")

// ChecksumError reports a frame whose trailing checksum does not match its bytes.
type ChecksumError struct {
	Expected byte
	Actual   byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("harp: checksum mismatch: expected 0x%02X, got 0x%02X", e.Expected, e.Actual)
}

// Unwrap lets errors.Is(err, ErrInvalidFrame) match checksum failures too.
func (e *ChecksumError) Unwrap() error { return ErrInvalidFrame }

// DeviceError is a reply with the error flag set: the device refused the
// request (unknown register, wrong type, value out of range, read-only).
type DeviceError struct {
	Type    MessageType
	Address uint8
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("harp: device rejected %s of register %d", e.Type, e.Address)
}

func errTooShort(got, want int) error {
	return fmt.Errorf("%w: %d bytes, need at least %d", ErrInvalidFrame, got, want)
}
