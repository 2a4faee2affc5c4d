// internal/registers/errors.go
package registers

import (
	"fmt"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

// UnknownRegisterError is returned for an address with no descriptor.
type UnknownRegisterError struct {
	Address uint8
}

func (e *UnknownRegisterError) Error() string {
	return fmt.Sprintf("registers: unknown register %d", e.Address)
}

// MalformedPayloadError reports a payload whose length does not match the
// register's fixed shape.
type MalformedPayloadError struct {
	Address  uint8
	Expected int
	Actual   int
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("registers: malformed payload for register %d: expected %d bytes, got %d",
		e.Address, e.Expected, e.Actual)
}

// PayloadTypeError reports a message whose address or payload type tag does
// not belong to the register being decoded.
type PayloadTypeError struct {
	Address  uint8
	Expected harp.PayloadType
	Actual   harp.PayloadType
	Got      uint8 // address carried by the message
}

func (e *PayloadTypeError) Error() string {
	if e.Got != e.Address {
		return fmt.Sprintf("registers: message for register %d decoded as register %d", e.Got, e.Address)
	}
	return fmt.Sprintf("registers: register %d expects %s payload, got %s", e.Address, e.Expected, e.Actual)
}

// MissingTimestampError is returned by DecodeTimestamped for an untimestamped message.
type MissingTimestampError struct {
	Address uint8
}

func (e *MissingTimestampError) Error() string {
	return fmt.Sprintf("registers: message for register %d carries no timestamp", e.Address)
}
