// internal/analoginput/device_test.go
package analoginput

import (
	"context"
	"errors"
	"net"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/tamzrod/harp-analoginput/internal/harp"
	"github.com/tamzrod/harp-analoginput/internal/registers"
	"github.com/tamzrod/harp-analoginput/internal/simulator"
	"github.com/tamzrod/harp-analoginput/internal/transport"
)

// ---- fakes ----

type fakeTransport struct {
	calls []harp.Message
	reply func(req harp.Message) (harp.Message, error)
}

func (f *fakeTransport) SendCommand(ctx context.Context, req harp.Message) (harp.Message, error) {
	f.calls = append(f.calls, req)
	return f.reply(req)
}

func newTable(t *testing.T) *registers.Table {
	t.Helper()
	table, err := registers.NewTable()
	if err != nil {
		t.Fatalf("NewTable err=%v", err)
	}
	return table
}

func connectSimulator(t *testing.T, opts ...simulator.Option) (*Device, *simulator.Device) {
	t.Helper()
	table := newTable(t)
	sim := simulator.New(table, opts...)

	d, err := Connect(context.Background(), sim, WithTable(table), WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("Connect err=%v", err)
	}
	return d, sim
}

// ---- tests ----

func TestConnect_IdentityMismatch(t *testing.T) {
	table := newTable(t)
	sim := simulator.New(table, simulator.WithWhoAmI(1200))

	d, err := Connect(context.Background(), sim, WithTable(table))
	if d != nil {
		t.Fatalf("expected no device on mismatch")
	}

	var ie *UnexpectedDeviceIdentityError
	if !errors.As(err, &ie) {
		t.Fatalf("err=%v, want *UnexpectedDeviceIdentityError", err)
	}
	if ie.Expected != 1236 || ie.Actual != 1200 {
		t.Fatalf("unexpected error fields: %+v", ie)
	}
	if n := sim.Commands(); n != 1 {
		t.Fatalf("device handled %d commands, want only the identity read", n)
	}
}

func TestConnect_TransportFailure(t *testing.T) {
	boom := errors.New("port unplugged")
	tr := &fakeTransport{reply: func(harp.Message) (harp.Message, error) { return harp.Message{}, boom }}

	_, err := Connect(context.Background(), tr)
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want wrapped transport error", err)
	}
	var ie *UnexpectedDeviceIdentityError
	if errors.As(err, &ie) {
		t.Fatalf("transport failure reported as identity mismatch")
	}
}

func TestReadWrite_Simulator(t *testing.T) {
	d, sim := connectSimulator(t)
	ctx := context.Background()

	want := registers.AnalogDataPayload{Channel0: 10, Channel1: -5, Channel2: 0, Channel3: 32767}
	sim.SetAnalogData(want)

	got, err := Read(ctx, d, registers.AnalogData)
	if err != nil || got != want {
		t.Fatalf("AnalogData = %+v, %v", got, err)
	}

	if err := Write(ctx, d, registers.SamplingFrequencyConfig, registers.Frequency2kHz); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	freq, err := Read(ctx, d, registers.SamplingFrequencyConfig)
	if err != nil || freq != registers.Frequency2kHz {
		t.Fatalf("SamplingFrequency = %v, %v", freq, err)
	}

	if err := Write(ctx, d, registers.DOThreshold[3], -42); err != nil {
		t.Fatalf("Write threshold err=%v", err)
	}
	th, err := Read(ctx, d, registers.DOThreshold[3])
	if err != nil || th != -42 {
		t.Fatalf("DO3Threshold = %d, %v", th, err)
	}
}

func TestWrite_DeviceRejects(t *testing.T) {
	d, _ := connectSimulator(t)

	err := Write(context.Background(), d, registers.DO0PulseDuration, 0)
	var de *harp.DeviceError
	if !errors.As(err, &de) {
		t.Fatalf("err=%v, want *harp.DeviceError", err)
	}
	if de.Address != 41 || de.Type != harp.Write {
		t.Fatalf("unexpected error fields: %+v", de)
	}
}

func TestRead_MalformedIsNotTransportError(t *testing.T) {
	table := newTable(t)
	tr := &fakeTransport{reply: func(req harp.Message) (harp.Message, error) {
		if req.Address == 0 {
			return registers.WhoAmI.Encode(harp.Read, WhoAmI), nil
		}
		reply := req
		reply.Payload = []byte{1, 0} // AnalogData needs 8 bytes
		return reply, nil
	}}

	d, err := Connect(context.Background(), tr, WithTable(table))
	if err != nil {
		t.Fatalf("Connect err=%v", err)
	}

	_, err = Read(context.Background(), d, registers.AnalogData)
	var me *registers.MalformedPayloadError
	if !errors.As(err, &me) {
		t.Fatalf("err=%v, want *MalformedPayloadError", err)
	}
	if me.Expected != 8 || me.Actual != 2 {
		t.Fatalf("unexpected error fields: %+v", me)
	}

	_, err = d.ReadRaw(context.Background(), 33)
	if !errors.As(err, &me) {
		t.Fatalf("ReadRaw err=%v, want *MalformedPayloadError", err)
	}
}

func TestRead_TransportErrorPropagates(t *testing.T) {
	d, _ := connectSimulator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Read(ctx, d, registers.AnalogData)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	var me *registers.MalformedPayloadError
	if errors.As(err, &me) {
		t.Fatalf("cancellation reported as malformed payload")
	}
}

func TestWrite_CancelledIsNotSent(t *testing.T) {
	d, sim := connectSimulator(t)
	before := sim.Commands()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Write(ctx, d, registers.StartAcquisition, registers.Enable); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if sim.Commands() != before {
		t.Fatalf("cancelled write reached the device")
	}
}

func TestReadTimestamped(t *testing.T) {
	table := newTable(t)
	tr := &fakeTransport{reply: func(req harp.Message) (harp.Message, error) {
		if req.Address == 0 {
			return registers.WhoAmI.Encode(harp.Read, WhoAmI), nil
		}
		return registers.InputEvent.EncodeTimestamped(77.25, harp.Read, registers.High), nil
	}}

	d, err := Connect(context.Background(), tr, WithTable(table))
	if err != nil {
		t.Fatalf("Connect err=%v", err)
	}

	ts, err := ReadTimestamped(context.Background(), d, registers.InputEvent)
	if err != nil {
		t.Fatalf("ReadTimestamped err=%v", err)
	}
	if ts.Seconds != 77.25 || ts.Value != registers.High {
		t.Fatalf("ReadTimestamped = %+v", ts)
	}

	plain, err := Read(context.Background(), d, registers.InputEvent)
	if err != nil || plain != ts.Value {
		t.Fatalf("Read = %v, %v, want %v", plain, err, ts.Value)
	}
}

func TestRead_UnexpectedReply(t *testing.T) {
	tr := &fakeTransport{reply: func(req harp.Message) (harp.Message, error) {
		if req.Address == 0 {
			return registers.WhoAmI.Encode(harp.Read, WhoAmI), nil
		}
		return registers.StartAcquisition.Encode(harp.Event, registers.Enable), nil
	}}
	d, err := Connect(context.Background(), tr, WithTable(newTable(t)))
	if err != nil {
		t.Fatalf("Connect err=%v", err)
	}

	_, err = Read(context.Background(), d, registers.DO0ModeConfig)
	var ue *UnexpectedReplyError
	if !errors.As(err, &ue) {
		t.Fatalf("err=%v, want *UnexpectedReplyError", err)
	}
}

func TestRaw_UnknownRegister(t *testing.T) {
	d, sim := connectSimulator(t)
	before := sim.Commands()

	var ue *registers.UnknownRegisterError
	if _, err := d.ReadRaw(context.Background(), 35); !errors.As(err, &ue) {
		t.Fatalf("ReadRaw err=%v, want *UnknownRegisterError", err)
	}
	if err := d.WriteRaw(context.Background(), 200, []byte{1}); !errors.As(err, &ue) {
		t.Fatalf("WriteRaw err=%v, want *UnknownRegisterError", err)
	}
	if sim.Commands() != before {
		t.Fatalf("unknown register reached the device")
	}
}

func TestRaw_RoundTrip(t *testing.T) {
	d, _ := connectSimulator(t)
	ctx := context.Background()

	payload, err := registers.OutputSet.ParseValue("DO1|DO2")
	if err != nil {
		t.Fatalf("ParseValue err=%v", err)
	}
	if err := d.WriteRaw(ctx, 42, payload); err != nil {
		t.Fatalf("WriteRaw err=%v", err)
	}

	reply, err := d.ReadRaw(ctx, 45)
	if err != nil {
		t.Fatalf("ReadRaw err=%v", err)
	}
	state, err := registers.OutputState.Decode(reply)
	if err != nil || state != registers.DO1|registers.DO2 {
		t.Fatalf("OutputState = %v, %v", state, err)
	}

	var me *registers.MalformedPayloadError
	if err := d.WriteRaw(ctx, 45, []byte{1}); !errors.As(err, &me) {
		t.Fatalf("WriteRaw(short) err=%v, want *MalformedPayloadError", err)
	}
}

func TestInfo(t *testing.T) {
	d, _ := connectSimulator(t)

	info, err := d.Info(context.Background())
	if err != nil {
		t.Fatalf("Info err=%v", err)
	}
	if info.WhoAmI != WhoAmI || info.Name != "AnalogInput" || info.CoreVersion.String() != "1.13" {
		t.Fatalf("Info = %+v", info)
	}
}

func TestDevice_OverStream(t *testing.T) {
	table := newTable(t)
	sim := simulator.New(table)

	host, devEnd := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sim.Serve(ctx, devEnd)

	stream := transport.NewStream(host)
	defer stream.Close()

	d, err := Connect(ctx, stream, WithTable(table))
	if err != nil {
		t.Fatalf("Connect err=%v", err)
	}

	if err := Write(ctx, d, registers.RangeAndBandwidthConfig, registers.Range5VLowPass3kHz); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	ts, err := ReadTimestamped(ctx, d, registers.RangeAndBandwidthConfig)
	if err != nil || ts.Value != registers.Range5VLowPass3kHz {
		t.Fatalf("ReadTimestamped = %+v, %v", ts, err)
	}
}
