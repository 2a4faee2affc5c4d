// internal/status/constants.go
package status

// Device Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of holding registers per status block.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

const (
	SlotHealthCode     = 0
	SlotLastErrorCode  = 1
	SlotSecondsInError = 2

	// Device clock (whole seconds) of the last good poll, high word first.
	SlotDeviceSecondsHigh = 3
	SlotDeviceSecondsLow  = 4
)

// ---- RESERVED RANGE ----

// Slots 5-10 and 19 are reserved and written as zero.
const SlotReservedStart = 5
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 2 * SlotDeviceNameSlots

// ---- HEALTH CODES ----

const (
	HealthUnknown  uint16 = 0
	HealthOK       uint16 = 1
	HealthError    uint16 = 2
	HealthStale    uint16 = 3 // device answered but the mirror could not be delivered
	HealthDisabled uint16 = 4
)

// ---- ERROR CODES ----

// Values of SlotLastErrorCode. Errors exposing Code() uint16 pass their own code through.
const (
	ErrorNone             uint16 = 0
	ErrorGeneric          uint16 = 1
	ErrorTimeout          uint16 = 2
	ErrorDeviceRejected   uint16 = 3
	ErrorMalformedPayload uint16 = 4
	ErrorWrongDevice      uint16 = 5
	ErrorPortClosed       uint16 = 6
	ErrorUnexpectedReply  uint16 = 7
)
