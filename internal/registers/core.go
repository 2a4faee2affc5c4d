// internal/registers/core.go
package registers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

// IdentityCode is the WhoAmI value reported by an AnalogInput device.
const IdentityCode uint16 = 1236

// DeviceNameSize is the fixed length of the DeviceName register.
const DeviceNameSize = 25

// Core registers shared by every Harp device.
var (
	WhoAmI = u16Codec(Descriptor{
		Address: 0, Name: "WhoAmI", Access: AccessRead,
		Description: "Device identity code.",
	}, parseUnsigned[uint16](16))

	HardwareVersionHigh = u8Codec(Descriptor{
		Address: 1, Name: "HardwareVersionHigh", Access: AccessRead,
		Description: "Major hardware version.",
	}, parseUnsigned[uint8](8))

	HardwareVersionLow = u8Codec(Descriptor{
		Address: 2, Name: "HardwareVersionLow", Access: AccessRead,
		Description: "Minor hardware version.",
	}, parseUnsigned[uint8](8))

	AssemblyVersion = u8Codec(Descriptor{
		Address: 3, Name: "AssemblyVersion", Access: AccessRead,
		Description: "Board assembly version.",
	}, parseUnsigned[uint8](8))

	CoreVersionHigh = u8Codec(Descriptor{
		Address: 4, Name: "CoreVersionHigh", Access: AccessRead,
		Description: "Major Harp core version.",
	}, parseUnsigned[uint8](8))

	CoreVersionLow = u8Codec(Descriptor{
		Address: 5, Name: "CoreVersionLow", Access: AccessRead,
		Description: "Minor Harp core version.",
	}, parseUnsigned[uint8](8))

	FirmwareVersionHigh = u8Codec(Descriptor{
		Address: 6, Name: "FirmwareVersionHigh", Access: AccessRead,
		Description: "Major firmware version.",
	}, parseUnsigned[uint8](8))

	FirmwareVersionLow = u8Codec(Descriptor{
		Address: 7, Name: "FirmwareVersionLow", Access: AccessRead,
		Description: "Minor firmware version.",
	}, parseUnsigned[uint8](8))

	TimestampSeconds = u32Codec(Descriptor{
		Address: 8, Name: "TimestampSeconds", Access: rwe,
		Description: "Whole seconds of the device clock.",
	}, parseUnsigned[uint32](32))

	// DeviceName holds at most DeviceNameSize bytes and ends at the first NUL.
	// Parse and ParseValue reject longer names and embedded NULs;
	// EncodePayload does not check and silently truncates at DeviceNameSize.
	DeviceName = newCodec(Descriptor{
		Address: 12, Name: "DeviceName", Type: harp.U8, Length: DeviceNameSize, Access: rw,
		Description: "Human readable device name, NUL padded.",
	}, decodeDeviceName, encodeDeviceName, parseDeviceName)

	SerialNumber = u16Codec(Descriptor{
		Address: 13, Name: "SerialNumber", Access: rw,
		Description: "Device serial number.",
	}, parseUnsigned[uint16](16))
)

// decodeDeviceName stops at the first NUL.
func decodeDeviceName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// encodeDeviceName truncates to the register size; b is zeroed by the caller.
func encodeDeviceName(b []byte, s string) {
	copy(b, s)
}

func parseDeviceName(s string) (string, error) {
	if len(s) > DeviceNameSize {
		return "", fmt.Errorf("registers: device name longer than %d bytes", DeviceNameSize)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return "", fmt.Errorf("registers: device name contains a NUL byte")
	}
	return s, nil
}
