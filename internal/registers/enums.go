// internal/registers/enums.go
package registers

import (
	"fmt"
	"strconv"
	"strings"
)

// Enum-backed registers are open: any raw byte is representable, and values
// without a name render as Type(n). Devices running newer firmware may report
// codes this table does not know.

type EnableFlag uint8

const (
	Disable EnableFlag = 0
	Enable  EnableFlag = 1
)

var enableFlagNames = map[EnableFlag]string{
	Disable: "Disable",
	Enable:  "Enable",
}

// Defined reports whether v is a named member.
func (v EnableFlag) Defined() bool { _, ok := enableFlagNames[v]; return ok }

func (v EnableFlag) String() string { return enumString(v, enableFlagNames, "EnableFlag") }

func ParseEnableFlag(s string) (EnableFlag, error) { return parseEnum(s, enableFlagNames) }

type DigitalState uint8

const (
	Low  DigitalState = 0
	High DigitalState = 1
)

var digitalStateNames = map[DigitalState]string{
	Low:  "Low",
	High: "High",
}

func (v DigitalState) Defined() bool { _, ok := digitalStateNames[v]; return ok }

func (v DigitalState) String() string { return enumString(v, digitalStateNames, "DigitalState") }

func ParseDigitalState(s string) (DigitalState, error) { return parseEnum(s, digitalStateNames) }

// RangeAndBandwidth selects the ADC input range and its low-pass cutoff.
type RangeAndBandwidth uint8

const (
	Range5VLowPass15kHz  RangeAndBandwidth = 1
	Range5VLowPass13k7Hz RangeAndBandwidth = 2
	Range5VLowPass10k3Hz RangeAndBandwidth = 3
	Range5VLowPass6kHz   RangeAndBandwidth = 4
	Range5VLowPass3kHz   RangeAndBandwidth = 5
	Range5VLowPass1k5Hz  RangeAndBandwidth = 6

	Range10VLowPass22kHz  RangeAndBandwidth = 17
	Range10VLowPass18k5Hz RangeAndBandwidth = 18
	Range10VLowPass11k9Hz RangeAndBandwidth = 19
	Range10VLowPass6kHz   RangeAndBandwidth = 20
	Range10VLowPass3kHz   RangeAndBandwidth = 21
	Range10VLowPass1k5Hz  RangeAndBandwidth = 22
)

var rangeAndBandwidthNames = map[RangeAndBandwidth]string{
	Range5VLowPass15kHz:   "Range5VLowPass15kHz",
	Range5VLowPass13k7Hz:  "Range5VLowPass13k7Hz",
	Range5VLowPass10k3Hz:  "Range5VLowPass10k3Hz",
	Range5VLowPass6kHz:    "Range5VLowPass6kHz",
	Range5VLowPass3kHz:    "Range5VLowPass3kHz",
	Range5VLowPass1k5Hz:   "Range5VLowPass1k5Hz",
	Range10VLowPass22kHz:  "Range10VLowPass22kHz",
	Range10VLowPass18k5Hz: "Range10VLowPass18k5Hz",
	Range10VLowPass11k9Hz: "Range10VLowPass11k9Hz",
	Range10VLowPass6kHz:   "Range10VLowPass6kHz",
	Range10VLowPass3kHz:   "Range10VLowPass3kHz",
	Range10VLowPass1k5Hz:  "Range10VLowPass1k5Hz",
}

func (v RangeAndBandwidth) Defined() bool { _, ok := rangeAndBandwidthNames[v]; return ok }

func (v RangeAndBandwidth) String() string {
	return enumString(v, rangeAndBandwidthNames, "RangeAndBandwidth")
}

func ParseRangeAndBandwidth(s string) (RangeAndBandwidth, error) {
	return parseEnum(s, rangeAndBandwidthNames)
}

type SamplingFrequency uint8

const (
	Frequency1kHz SamplingFrequency = 0
	Frequency2kHz SamplingFrequency = 1
)

var samplingFrequencyNames = map[SamplingFrequency]string{
	Frequency1kHz: "Frequency1kHz",
	Frequency2kHz: "Frequency2kHz",
}

func (v SamplingFrequency) Defined() bool { _, ok := samplingFrequencyNames[v]; return ok }

func (v SamplingFrequency) String() string {
	return enumString(v, samplingFrequencyNames, "SamplingFrequency")
}

func ParseSamplingFrequency(s string) (SamplingFrequency, error) {
	return parseEnum(s, samplingFrequencyNames)
}

// DI0Mode configures digital input 0.
type DI0Mode uint8

const (
	DI0None            DI0Mode = 0
	DI0StartOnRising   DI0Mode = 1
	DI0StartOnFalling  DI0Mode = 2
	DI0SampleOnRising  DI0Mode = 3
	DI0SampleOnFalling DI0Mode = 4
)

var di0ModeNames = map[DI0Mode]string{
	DI0None:            "None",
	DI0StartOnRising:   "StartOnRisingEdge",
	DI0StartOnFalling:  "StartOnFallingEdge",
	DI0SampleOnRising:  "SampleOnRisingEdge",
	DI0SampleOnFalling: "SampleOnFallingEdge",
}

func (v DI0Mode) Defined() bool { _, ok := di0ModeNames[v]; return ok }

func (v DI0Mode) String() string { return enumString(v, di0ModeNames, "DI0Mode") }

func ParseDI0Mode(s string) (DI0Mode, error) { return parseEnum(s, di0ModeNames) }

// DO0Mode configures digital output 0.
type DO0Mode uint8

const (
	DO0Output           DO0Mode = 0
	DO0ToggleEachSecond DO0Mode = 1
	DO0Pulse            DO0Mode = 2
)

var do0ModeNames = map[DO0Mode]string{
	DO0Output:           "Output",
	DO0ToggleEachSecond: "ToggleEachSecond",
	DO0Pulse:            "Pulse",
}

func (v DO0Mode) Defined() bool { _, ok := do0ModeNames[v]; return ok }

func (v DO0Mode) String() string { return enumString(v, do0ModeNames, "DO0Mode") }

func ParseDO0Mode(s string) (DO0Mode, error) { return parseEnum(s, do0ModeNames) }

// AcquisitionStartOutput selects the digital output raised when acquisition starts.
type AcquisitionStartOutput uint8

const (
	StartOutputNone AcquisitionStartOutput = 0
	StartOutputDO0  AcquisitionStartOutput = 1
	StartOutputDO1  AcquisitionStartOutput = 2
	StartOutputDO2  AcquisitionStartOutput = 3
	StartOutputDO3  AcquisitionStartOutput = 4
)

var acquisitionStartOutputNames = map[AcquisitionStartOutput]string{
	StartOutputNone: "None",
	StartOutputDO0:  "DO0",
	StartOutputDO1:  "DO1",
	StartOutputDO2:  "DO2",
	StartOutputDO3:  "DO3",
}

func (v AcquisitionStartOutput) Defined() bool { _, ok := acquisitionStartOutputNames[v]; return ok }

func (v AcquisitionStartOutput) String() string {
	return enumString(v, acquisitionStartOutputNames, "AcquisitionStartOutput")
}

func ParseAcquisitionStartOutput(s string) (AcquisitionStartOutput, error) {
	return parseEnum(s, acquisitionStartOutputNames)
}

// TargetChannel is the analog channel feeding a digital output threshold.
type TargetChannel uint8

const (
	Channel0    TargetChannel = 0
	Channel1    TargetChannel = 1
	Channel2    TargetChannel = 2
	Channel3    TargetChannel = 3
	ChannelNone TargetChannel = 8
)

var targetChannelNames = map[TargetChannel]string{
	Channel0:    "Channel0",
	Channel1:    "Channel1",
	Channel2:    "Channel2",
	Channel3:    "Channel3",
	ChannelNone: "None",
}

func (v TargetChannel) Defined() bool { _, ok := targetChannelNames[v]; return ok }

func (v TargetChannel) String() string { return enumString(v, targetChannelNames, "TargetChannel") }

func ParseTargetChannel(s string) (TargetChannel, error) { return parseEnum(s, targetChannelNames) }

// DigitalOutputs is a bit mask over DO0..DO3.
type DigitalOutputs uint16

const (
	DO0 DigitalOutputs = 1 << iota
	DO1
	DO2
	DO3
)

var digitalOutputBits = []struct {
	bit  DigitalOutputs
	name string
}{
	{DO0, "DO0"},
	{DO1, "DO1"},
	{DO2, "DO2"},
	{DO3, "DO3"},
}

// String renders set bits as "DO0|DO2"; bits without a name are appended in hex.
func (v DigitalOutputs) String() string {
	if v == 0 {
		return "None"
	}
	var parts []string
	rest := v
	for _, b := range digitalOutputBits {
		if v&b.bit != 0 {
			parts = append(parts, b.name)
			rest &^= b.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%X", uint16(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseDigitalOutputs accepts "None", "DO0|DO3" or a number. Numbers may
// also appear as parts, so the output of String parses back.
func ParseDigitalOutputs(s string) (DigitalOutputs, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "None") {
		return 0, nil
	}
	if n, err := strconv.ParseUint(s, 0, 16); err == nil {
		return DigitalOutputs(n), nil
	}

	var out DigitalOutputs
next:
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		for _, b := range digitalOutputBits {
			if strings.EqualFold(part, b.name) {
				out |= b.bit
				continue next
			}
		}
		if n, err := strconv.ParseUint(part, 0, 16); err == nil {
			out |= DigitalOutputs(n)
			continue
		}
		return 0, fmt.Errorf("registers: unknown digital output %q", part)
	}
	return out, nil
}

// ---- helpers ----

func enumString[T ~uint8](v T, names map[T]string, typ string) string {
	if n, ok := names[v]; ok {
		return n
	}
	return fmt.Sprintf("%s(%d)", typ, uint8(v))
}

// parseEnum accepts a member name (case-insensitive), any number in range,
// or the "Type(n)" form enumString gives unnamed values.
func parseEnum[T ~uint8](s string, names map[T]string) (T, error) {
	s = strings.TrimSpace(s)
	for v, n := range names {
		if strings.EqualFold(n, s) {
			return v, nil
		}
	}
	if i := strings.IndexByte(s, '('); i > 0 && strings.HasSuffix(s, ")") {
		s = s[i+1 : len(s)-1]
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("registers: %q is neither a known name nor a byte value", s)
	}
	return T(n), nil
}
