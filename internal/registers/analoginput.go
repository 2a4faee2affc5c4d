// internal/registers/analoginput.go
package registers

import (
	"fmt"
	"strings"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

// AnalogDataPayload is one simultaneous reading of all ADC channels.
// Field order is wire order.
type AnalogDataPayload struct {
	Channel0 int16
	Channel1 int16
	Channel2 int16
	Channel3 int16
}

func (p AnalogDataPayload) String() string {
	return fmt.Sprintf("[%d %d %d %d]", p.Channel0, p.Channel1, p.Channel2, p.Channel3)
}

func decodeAnalogData(b []byte) AnalogDataPayload {
	return AnalogDataPayload{
		Channel0: getS16(b[0:]),
		Channel1: getS16(b[2:]),
		Channel2: getS16(b[4:]),
		Channel3: getS16(b[6:]),
	}
}

func encodeAnalogData(b []byte, p AnalogDataPayload) {
	putS16(b[0:], p.Channel0)
	putS16(b[2:], p.Channel1)
	putS16(b[4:], p.Channel2)
	putS16(b[6:], p.Channel3)
}

// parseAnalogData accepts four comma or space separated integers.
func parseAnalogData(s string) (AnalogDataPayload, error) {
	fields := strings.FieldsFunc(strings.Trim(s, "[]"), func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(fields) != 4 {
		return AnalogDataPayload{}, fmt.Errorf("registers: analog data needs 4 channels, got %d", len(fields))
	}
	var ch [4]int16
	for i, f := range fields {
		v, err := parseSigned[int16](16)(f)
		if err != nil {
			return AnalogDataPayload{}, err
		}
		ch[i] = v
	}
	return AnalogDataPayload{ch[0], ch[1], ch[2], ch[3]}, nil
}

const (
	rw  = AccessRead | AccessWrite
	rwe = AccessRead | AccessWrite | AccessEvent
	re  = AccessRead | AccessEvent
)

// ---- application registers ----

var (
	StartAcquisition = u8Codec(Descriptor{
		Address: 32, Name: "StartAcquisition", Access: rwe,
		Description: "Starts or stops the analog acquisition.",
	}, ParseEnableFlag)

	AnalogData = newCodec(Descriptor{
		Address: 33, Name: "AnalogData", Type: harp.S16, Length: 4, Access: re,
		Description: "Single read of all four ADC channels.",
	}, decodeAnalogData, encodeAnalogData, parseAnalogData)

	InputEvent = u8Codec(Descriptor{
		Address: 34, Name: "InputEvent", Access: re,
		Description: "State of digital input 0.",
	}, ParseDigitalState)

	RangeAndBandwidthConfig = u8Codec(Descriptor{
		Address: 37, Name: "RangeAndBandwidth", Access: rw,
		Description: "ADC input range and low-pass filter cutoff.",
	}, ParseRangeAndBandwidth)

	SamplingFrequencyConfig = u8Codec(Descriptor{
		Address: 38, Name: "SamplingFrequency", Access: rw,
		Description: "ADC sampling frequency.",
	}, ParseSamplingFrequency)

	DI0ModeConfig = u8Codec(Descriptor{
		Address: 39, Name: "DI0Mode", Access: rw,
		Description: "Configuration of digital input 0.",
	}, ParseDI0Mode)

	DO0ModeConfig = u8Codec(Descriptor{
		Address: 40, Name: "DO0Mode", Access: rw,
		Description: "Configuration of digital output 0.",
	}, ParseDO0Mode)

	DO0PulseDuration = u8Codec(Descriptor{
		Address: 41, Name: "DO0PulseDuration", Access: rw,
		Description: "Pulse duration in ms of digital output 0 when DO0Mode is Pulse [1:255].",
	}, parseUnsigned[uint8](8))

	OutputSet = u16Codec(Descriptor{
		Address: 42, Name: "OutputSet", Access: AccessWrite,
		Description: "Sets the given digital outputs.",
	}, ParseDigitalOutputs)

	OutputClear = u16Codec(Descriptor{
		Address: 43, Name: "OutputClear", Access: AccessWrite,
		Description: "Clears the given digital outputs.",
	}, ParseDigitalOutputs)

	OutputToggle = u16Codec(Descriptor{
		Address: 44, Name: "OutputToggle", Access: AccessWrite,
		Description: "Toggles the given digital outputs.",
	}, ParseDigitalOutputs)

	OutputState = u16Codec(Descriptor{
		Address: 45, Name: "OutputState", Access: rwe,
		Description: "State of all digital outputs.",
	}, ParseDigitalOutputs)

	AcquisitionStartOutputConfig = u8Codec(Descriptor{
		Address: 48, Name: "AcquisitionStartOutput", Access: rw,
		Description: "Digital output raised when acquisition starts.",
	}, ParseAcquisitionStartOutput)
)

// Per digital output threshold configuration, indexed by output number.
var (
	DOTargetChannel     [4]*Codec[TargetChannel]
	DOThreshold         [4]*Codec[int16]
	DOBufferRisingEdge  [4]*Codec[uint16]
	DOBufferFallingEdge [4]*Codec[uint16]
)

func init() {
	for i := 0; i < 4; i++ {
		DOTargetChannel[i] = u8Codec(Descriptor{
			Address: uint8(58 + i), Name: fmt.Sprintf("DO%dTargetChannel", i), Access: rw,
			Description: fmt.Sprintf("Analog channel compared against the threshold of DO%d.", i),
		}, ParseTargetChannel)

		DOThreshold[i] = s16Codec(Descriptor{
			Address: uint8(66 + i), Name: fmt.Sprintf("DO%dThreshold", i), Access: rw,
			Description: fmt.Sprintf("Threshold value driving DO%d.", i),
		}, parseSigned[int16](16))

		DOBufferRisingEdge[i] = u16Codec(Descriptor{
			Address: uint8(74 + i), Name: fmt.Sprintf("DO%dBufferRisingEdge", i), Access: rw,
			Description: fmt.Sprintf("Samples above threshold required to set DO%d.", i),
		}, parseUnsigned[uint16](16))

		DOBufferFallingEdge[i] = u16Codec(Descriptor{
			Address: uint8(82 + i), Name: fmt.Sprintf("DO%dBufferFallingEdge", i), Access: rw,
			Description: fmt.Sprintf("Samples below threshold required to clear DO%d.", i),
		}, parseUnsigned[uint16](16))
	}
}

// codecs lists every register this package knows, in address order.
func codecs() []Register {
	out := []Register{
		WhoAmI,
		HardwareVersionHigh,
		HardwareVersionLow,
		AssemblyVersion,
		CoreVersionHigh,
		CoreVersionLow,
		FirmwareVersionHigh,
		FirmwareVersionLow,
		TimestampSeconds,
		DeviceName,
		SerialNumber,

		StartAcquisition,
		AnalogData,
		InputEvent,
		RangeAndBandwidthConfig,
		SamplingFrequencyConfig,
		DI0ModeConfig,
		DO0ModeConfig,
		DO0PulseDuration,
		OutputSet,
		OutputClear,
		OutputToggle,
		OutputState,
		AcquisitionStartOutputConfig,
	}
	for _, c := range DOTargetChannel {
		out = append(out, c)
	}
	for _, c := range DOThreshold {
		out = append(out, c)
	}
	for _, c := range DOBufferRisingEdge {
		out = append(out, c)
	}
	for _, c := range DOBufferFallingEdge {
		out = append(out, c)
	}
	return out
}
