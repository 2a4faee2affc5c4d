// internal/analoginput/errors.go
package analoginput

import (
	"fmt"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

// UnexpectedDeviceIdentityError is returned by Connect when the device is
// not an AnalogInput.
type UnexpectedDeviceIdentityError struct {
	Expected uint16
	Actual   uint16
}

func (e *UnexpectedDeviceIdentityError) Error() string {
	return fmt.Sprintf("analoginput: the device is not an AnalogInput: expected WhoAmI %d, device reports %d",
		e.Expected, e.Actual)
}

// UnexpectedReplyError reports a reply that does not answer the request sent.
type UnexpectedReplyError struct {
	Request harp.Message
	Reply   harp.Message
}

func (e *UnexpectedReplyError) Error() string {
	return fmt.Sprintf("analoginput: %s of register %d answered by %s of register %d",
		e.Request.Type, e.Request.Address, e.Reply.Type, e.Reply.Address)
}
