// internal/registers/codec_test.go
package registers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

func TestAnalogData_FieldOrder(t *testing.T) {
	in := AnalogDataPayload{Channel0: 10, Channel1: -5, Channel2: 0, Channel3: 32767}

	b := AnalogData.EncodePayload(in)

	want := []byte{0x0A, 0x00, 0xFB, 0xFF, 0x00, 0x00, 0xFF, 0x7F}
	if !bytes.Equal(b, want) {
		t.Fatalf("EncodePayload = % X, want % X", b, want)
	}

	out, err := AnalogData.DecodePayload(b)
	if err != nil {
		t.Fatalf("DecodePayload err=%v", err)
	}
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

func TestRoundTrip_AllEnumMembers(t *testing.T) {
	for v := range rangeAndBandwidthNames {
		got, err := RangeAndBandwidthConfig.DecodePayload(RangeAndBandwidthConfig.EncodePayload(v))
		if err != nil || got != v {
			t.Fatalf("RangeAndBandwidth %v round trip = %v, %v", v, got, err)
		}
	}
	for v := range targetChannelNames {
		got, err := DOTargetChannel[2].DecodePayload(DOTargetChannel[2].EncodePayload(v))
		if err != nil || got != v {
			t.Fatalf("TargetChannel %v round trip = %v, %v", v, got, err)
		}
	}
	for _, v := range []DigitalOutputs{0, DO0, DO1 | DO3, DO0 | DO1 | DO2 | DO3} {
		got, err := OutputState.DecodePayload(OutputState.EncodePayload(v))
		if err != nil || got != v {
			t.Fatalf("DigitalOutputs %v round trip = %v, %v", v, got, err)
		}
	}
}

func TestRoundTrip_Scalars(t *testing.T) {
	for _, v := range []int16{-32768, -1, 0, 1, 32767} {
		got, err := DOThreshold[0].DecodePayload(DOThreshold[0].EncodePayload(v))
		if err != nil || got != v {
			t.Fatalf("threshold %d round trip = %d, %v", v, got, err)
		}
	}
	for _, v := range []uint16{0, 1, 0x1234, 0xFFFF} {
		got, err := DOBufferFallingEdge[3].DecodePayload(DOBufferFallingEdge[3].EncodePayload(v))
		if err != nil || got != v {
			t.Fatalf("buffer %d round trip = %d, %v", v, got, err)
		}
	}
	for _, v := range []uint32{0, 1, 0xDEADBEEF} {
		got, err := TimestampSeconds.DecodePayload(TimestampSeconds.EncodePayload(v))
		if err != nil || got != v {
			t.Fatalf("seconds %d round trip = %d, %v", v, got, err)
		}
	}
}

func TestEncode_FixedLength(t *testing.T) {
	fills := []byte{0x00, 0x31, 0xFF}

	for _, r := range codecs() {
		d := r.Descriptor()
		for _, fill := range fills {
			payload := bytes.Repeat([]byte{fill}, d.Size())

			v, err := r.DecodeValue(payload)
			if err != nil {
				t.Fatalf("%s: DecodeValue(0x%02X...) err=%v", d.Name, fill, err)
			}

			text := fmt.Sprint(v)
			b, err := r.ParseValue(text)
			if err != nil {
				t.Fatalf("%s: ParseValue(%q) err=%v", d.Name, text, err)
			}
			if len(b) != d.Size() {
				t.Fatalf("%s: ParseValue(%q) = %d bytes, want %d", d.Name, text, len(b), d.Size())
			}
			if !bytes.Equal(b, payload) {
				t.Fatalf("%s: %q encodes to % X, want % X", d.Name, text, b, payload)
			}
		}
	}

	if n := len(DeviceName.EncodePayload("AnalogInput")); n != DeviceNameSize {
		t.Fatalf("DeviceName payload = %d bytes, want %d", n, DeviceNameSize)
	}
	if n := len(AnalogData.EncodePayload(AnalogDataPayload{})); n != 8 {
		t.Fatalf("AnalogData payload = %d bytes, want 8", n)
	}
	if n := len(OutputSet.EncodePayload(DO2)); n != 2 {
		t.Fatalf("OutputSet payload = %d bytes, want 2", n)
	}
}

func TestDecode_MalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"short", []byte{1, 2, 3}},
		{"empty", nil},
		{"long", make([]byte, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AnalogData.DecodePayload(tt.payload)
			var me *MalformedPayloadError
			if !errors.As(err, &me) {
				t.Fatalf("err=%v, want *MalformedPayloadError", err)
			}
			if me.Address != 33 || me.Expected != 8 || me.Actual != len(tt.payload) {
				t.Fatalf("unexpected error fields: %+v", me)
			}
		})
	}
}

func TestDecode_EnumTolerance(t *testing.T) {
	v, err := RangeAndBandwidthConfig.DecodePayload([]byte{99})
	if err != nil {
		t.Fatalf("unknown enum value should decode, err=%v", err)
	}
	if uint8(v) != 99 {
		t.Fatalf("value = %d, want 99", v)
	}
	if s := v.String(); s != "RangeAndBandwidth(99)" {
		t.Fatalf("String() = %q", s)
	}

	mode, err := DI0ModeConfig.DecodePayload([]byte{200})
	if err != nil || uint8(mode) != 200 {
		t.Fatalf("DI0Mode(200) = %v, %v", mode, err)
	}
}

func TestDecode_ChecksMessageShape(t *testing.T) {
	msg := DO0PulseDuration.Encode(harp.Read, 5)

	// wrong register
	msg.Address = 40
	var pe *PayloadTypeError
	if _, err := DO0PulseDuration.Decode(msg); !errors.As(err, &pe) {
		t.Fatalf("err=%v, want *PayloadTypeError", err)
	}

	// wrong payload type
	msg = DO0PulseDuration.Encode(harp.Read, 5)
	msg.PayloadType = harp.U16
	if _, err := DO0PulseDuration.Decode(msg); !errors.As(err, &pe) {
		t.Fatalf("err=%v, want *PayloadTypeError", err)
	}
}

func TestDecodeTimestamped(t *testing.T) {
	value := AnalogDataPayload{Channel0: 1, Channel1: 2, Channel2: 3, Channel3: -4}
	msg := AnalogData.EncodeTimestamped(1234.5, harp.Event, value)

	plain, err := AnalogData.Decode(msg)
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}
	ts, err := AnalogData.DecodeTimestamped(msg)
	if err != nil {
		t.Fatalf("DecodeTimestamped err=%v", err)
	}
	if ts.Value != plain || ts.Seconds != 1234.5 {
		t.Fatalf("DecodeTimestamped = %+v, want value %+v at 1234.5", ts, plain)
	}

	_, err = AnalogData.DecodeTimestamped(AnalogData.Encode(harp.Read, value))
	var me *MissingTimestampError
	if !errors.As(err, &me) {
		t.Fatalf("err=%v, want *MissingTimestampError", err)
	}
}

func TestDeviceName(t *testing.T) {
	b := DeviceName.EncodePayload("AnalogInput")
	if b[len("AnalogInput")] != 0 {
		t.Fatalf("name not NUL padded: % X", b)
	}
	got, err := DeviceName.DecodePayload(b)
	if err != nil || got != "AnalogInput" {
		t.Fatalf("DecodePayload = %q, %v", got, err)
	}
	if _, err := DeviceName.ParseValue("this name is definitely too long"); err == nil {
		t.Fatalf("expected error for long name")
	}
	if _, err := DeviceName.ParseValue("rig\x00b"); err == nil {
		t.Fatalf("expected error for embedded NUL")
	}

	// exactly DeviceNameSize bytes fills the register with no terminator
	full := strings.Repeat("n", DeviceNameSize)
	b, err = DeviceName.ParseValue(full)
	if err != nil || string(b) != full {
		t.Fatalf("ParseValue(%d bytes) = %q, %v", DeviceNameSize, b, err)
	}

	// the unchecked encoder truncates
	if got := DeviceName.EncodePayload(full + "xyz"); string(got) != full {
		t.Fatalf("EncodePayload(long) = %q, want %q", got, full)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		reg  Register
		in   string
		want []byte
	}{
		{StartAcquisition, "Enable", []byte{1}},
		{StartAcquisition, "0", []byte{0}},
		{RangeAndBandwidthConfig, "range10vlowpass22khz", []byte{17}},
		{OutputSet, "DO0|DO3", []byte{0x09, 0x00}},
		{OutputClear, "None", []byte{0x00, 0x00}},
		{DOThreshold[1], "-2", []byte{0xFE, 0xFF}},
		{DOBufferRisingEdge[0], "0x100", []byte{0x00, 0x01}},
		{AnalogData, "1, 2, 3, 4", []byte{1, 0, 2, 0, 3, 0, 4, 0}},
		{RangeAndBandwidthConfig, "RangeAndBandwidth(99)", []byte{99}},
		{OutputState, "DO0|0x30", []byte{0x31, 0x00}},
	}

	for _, tt := range tests {
		got, err := tt.reg.ParseValue(tt.in)
		if err != nil {
			t.Fatalf("%s.ParseValue(%q) err=%v", tt.reg.Descriptor().Name, tt.in, err)
		}
		if !bytes.Equal(got, tt.want) {
			t.Fatalf("%s.ParseValue(%q) = % X, want % X", tt.reg.Descriptor().Name, tt.in, got, tt.want)
		}
	}

	for _, bad := range []struct {
		reg Register
		in  string
	}{
		{StartAcquisition, "maybe"},
		{DO0PulseDuration, "256"},
		{OutputSet, "DO7"},
		{AnalogData, "1 2 3"},
	} {
		if _, err := bad.reg.ParseValue(bad.in); err == nil {
			t.Fatalf("%s.ParseValue(%q) expected error", bad.reg.Descriptor().Name, bad.in)
		}
	}
}

func TestWords(t *testing.T) {
	words, err := AnalogData.Words(AnalogData.EncodePayload(AnalogDataPayload{Channel0: -1, Channel3: 7}))
	if err != nil {
		t.Fatalf("Words err=%v", err)
	}
	want := []uint16{0xFFFF, 0, 0, 7}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("Words = %v, want %v", words, want)
		}
	}

	words, err = TimestampSeconds.Words(TimestampSeconds.EncodePayload(0x00020001))
	if err != nil || len(words) != 2 || words[0] != 1 || words[1] != 2 {
		t.Fatalf("Words(U32) = %v, %v", words, err)
	}

	words, err = DeviceName.Words(DeviceName.EncodePayload("A"))
	if err != nil || len(words) != DeviceNameSize || words[0] != 'A' {
		t.Fatalf("Words(U8x25) = %v, %v", words, err)
	}
	if got := DeviceName.Descriptor().WordCount(); got != DeviceNameSize {
		t.Fatalf("WordCount = %d", got)
	}
}

func TestEnumString(t *testing.T) {
	tests := []struct {
		v    interface{ String() string }
		want string
	}{
		{Enable, "Enable"},
		{High, "High"},
		{Frequency2kHz, "Frequency2kHz"},
		{DO0Pulse, "Pulse"},
		{StartOutputDO2, "DO2"},
		{ChannelNone, "None"},
		{TargetChannel(5), "TargetChannel(5)"},
		{DO1 | DO2, "DO1|DO2"},
		{DigitalOutputs(0x31), "DO0|0x30"},
		{DigitalOutputs(0), "None"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
