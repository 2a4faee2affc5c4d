// internal/status/tracker.go
package status

import (
	"context"
	"errors"

	"github.com/tamzrod/harp-analoginput/internal/analoginput"
	"github.com/tamzrod/harp-analoginput/internal/harp"
	"github.com/tamzrod/harp-analoginput/internal/registers"
	"github.com/tamzrod/harp-analoginput/internal/transport"
)

// Outcome is one mirror cycle as seen by the tracker.
type Outcome struct {
	PollErr       error  // reading the device failed
	DeliveryErr   error  // the device answered but a target write failed
	DeviceSeconds uint32 // device clock of the last reply
}

// Tracker owns the status snapshot of one mirrored device.
// It is not safe for concurrent use; the mirror loop is its only owner.
type Tracker struct {
	snap Snapshot
}

func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Observe folds one cycle into the snapshot and reports whether it changed.
func (t *Tracker) Observe(o Outcome) bool {
	prev := t.snap

	switch {
	case o.PollErr != nil:
		t.snap.Health = HealthError
		t.snap.LastErrorCode = ErrorCode(o.PollErr)

	case o.DeliveryErr != nil:
		t.snap.Health = HealthStale
		t.snap.LastErrorCode = ErrorCode(o.DeliveryErr)
		t.snap.DeviceSeconds = o.DeviceSeconds

	default:
		t.snap = Snapshot{
			Health:        HealthOK,
			LastErrorCode: ErrorNone,
			DeviceSeconds: o.DeviceSeconds,
		}
	}

	// seconds_in_error only moves on Tick
	return t.snap != prev
}

// Tick advances seconds_in_error while the device is not OK.
// The counter saturates instead of wrapping.
func (t *Tracker) Tick() bool {
	switch t.snap.Health {
	case HealthOK, HealthDisabled:
		return false
	}
	if t.snap.SecondsInError == 0xFFFF {
		return false
	}
	t.snap.SecondsInError++
	return true
}

// Disable marks the mirror as stopped.
func (t *Tracker) Disable() bool {
	if t.snap.Health == HealthDisabled {
		return false
	}
	t.snap.Health = HealthDisabled
	return true
}

// ErrorCode maps an error to a SlotLastErrorCode value.
// Errors exposing Code() uint16 pass their code through.
func ErrorCode(err error) uint16 {
	if err == nil {
		return ErrorNone
	}

	type coder interface{ Code() uint16 }

	var (
		c  coder
		de *harp.DeviceError
		me *registers.MalformedPayloadError
		pe *registers.PayloadTypeError
		ie *analoginput.UnexpectedDeviceIdentityError
		ue *analoginput.UnexpectedReplyError
	)

	switch {
	case errors.As(err, &c):
		return c.Code()
	case errors.Is(err, transport.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrorTimeout
	case errors.As(err, &de):
		return ErrorDeviceRejected
	case errors.As(err, &me), errors.As(err, &pe):
		return ErrorMalformedPayload
	case errors.As(err, &ie):
		return ErrorWrongDevice
	case errors.Is(err, transport.ErrClosed):
		return ErrorPortClosed
	case errors.As(err, &ue):
		return ErrorUnexpectedReply
	}

	return ErrorGeneric
}
