// internal/status/encode.go
package status

// Encode converts a Snapshot and a device name into a full status block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot, name string) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError
	regs[SlotDeviceSecondsHigh] = uint16(s.DeviceSeconds >> 16)
	regs[SlotDeviceSecondsLow] = uint16(s.DeviceSeconds)

	copy(regs[SlotDeviceNameStart:SlotDeviceNameEnd+1], EncodeDeviceName(name))

	return regs
}

// EncodeDeviceName packs up to DeviceNameMaxChars ASCII characters into
// SlotDeviceNameSlots registers, two characters per register, big-endian.
// Non-printable bytes become '?'.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	for i := range b {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < len(b); i += 2 {
		hi := uint16(b[i]) << 8
		var lo uint16
		if i+1 < len(b) {
			lo = uint16(b[i+1])
		}
		out[i/2] = hi | lo
	}

	return out
}
