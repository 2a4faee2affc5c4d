// internal/writer/writer_test.go
package writer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tamzrod/harp-analoginput/internal/config"
	"github.com/tamzrod/harp-analoginput/internal/poller"
	wmodbus "github.com/tamzrod/harp-analoginput/internal/writer/modbus"
)

// ---- fake endpoint client ----

type fakeEndpointClient struct {
	writes []writeCall
	fail   error

	lastRegs     []uint16
	lastRegsAddr uint16
}

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail != nil {
		return f.fail
	}
	cp := append([]uint16(nil), regs...)
	f.writes = append(f.writes, writeCall{unitID: unitID, addr: addr, regs: cp})
	f.lastRegs = cp
	f.lastRegsAddr = addr
	return nil
}

func pollResult() poller.PollResult {
	return poller.PollResult{
		Name: "ai",
		Blocks: []poller.BlockResult{
			{Address: 33, Position: 0, Words: []uint16{1, 2, 3, 4}},
			{Address: 66, Position: 4, Words: []uint16{0xFFD6}},
		},
	}
}

// ---- tests ----

func TestWriter_OffsetMath(t *testing.T) {
	fake := &fakeEndpointClient{}

	plan := Plan{
		Name: "ai",
		Targets: []TargetEndpoint{
			{TargetID: 1, Endpoint: "ep1", UnitID: 7, Offset: 100},
		},
	}

	w := New(plan, map[string]endpointClient{"ep1": fake})

	if err := w.Write(pollResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(fake.writes))
	}
	if w0 := fake.writes[0]; w0.unitID != 7 || w0.addr != 100 || len(w0.regs) != 4 {
		t.Fatalf("first write = %+v", w0)
	}
	if w1 := fake.writes[1]; w1.addr != 104 || w1.regs[0] != 0xFFD6 { // 100 + 4
		t.Fatalf("second write = %+v", w1)
	}
}

func TestWriter_FailedPollWritesNothing(t *testing.T) {
	fake := &fakeEndpointClient{}
	w := New(Plan{Targets: []TargetEndpoint{{Endpoint: "ep1"}}}, map[string]endpointClient{"ep1": fake})

	res := pollResult()
	res.Err = errors.New("device timeout")

	if err := w.Write(res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.writes) != 0 {
		t.Fatalf("failed poll reached the target: %d writes", len(fake.writes))
	}
}

func TestWriter_TargetsAreIndependent(t *testing.T) {
	bad := &fakeEndpointClient{fail: errors.New("connection reset")}
	good := &fakeEndpointClient{}

	plan := Plan{
		Targets: []TargetEndpoint{
			{TargetID: 1, Endpoint: "bad"},
			{TargetID: 2, Endpoint: "missing"},
			{TargetID: 3, Endpoint: "good", Offset: 10},
		},
	}
	w := New(plan, map[string]endpointClient{"bad": bad, "good": good})

	err := w.Write(pollResult())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "connection reset") || !strings.Contains(err.Error(), "missing client") {
		t.Fatalf("error does not name both failures: %v", err)
	}
	if len(good.writes) != 2 || good.writes[0].addr != 10 {
		t.Fatalf("good target writes = %+v", good.writes)
	}
}

func TestWriter_RejectsOverflow(t *testing.T) {
	fake := &fakeEndpointClient{}
	w := New(Plan{Targets: []TargetEndpoint{{Endpoint: "ep1", Offset: 0xFFFD}}}, map[string]endpointClient{"ep1": fake})

	// both blocks end past register 65535
	if err := w.Write(pollResult()); err == nil {
		t.Fatalf("expected overflow error")
	}
	if len(fake.writes) != 0 {
		t.Fatalf("overflowing block was written: %+v", fake.writes)
	}
}

func TestBuildPlan(t *testing.T) {
	m := config.MirrorConfig{
		Targets: []config.TargetConfig{{ID: 4, Endpoint: "ep1", UnitID: 2, Offset: 50, TimeoutMs: 250}},
		Status:  &config.StatusConfig{Endpoint: "ep2", UnitID: 9, Slot: 3, DeviceName: "rig"},
	}

	plan, err := BuildPlan("ai", m)
	if err != nil {
		t.Fatalf("BuildPlan err=%v", err)
	}

	want := TargetEndpoint{TargetID: 4, Endpoint: "ep1", UnitID: 2, Offset: 50, Timeout: 250 * time.Millisecond}
	if len(plan.Targets) != 1 || plan.Targets[0] != want {
		t.Fatalf("targets = %+v", plan.Targets)
	}
	if plan.Status == nil || *plan.Status != (StatusPlan{Endpoint: "ep2", UnitID: 9, BaseSlot: 3, DeviceName: "rig"}) {
		t.Fatalf("status = %+v", plan.Status)
	}

	if _, err := BuildPlan("", m); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestBuildEndpointClients(t *testing.T) {
	plan := Plan{
		Targets: []TargetEndpoint{
			{Endpoint: "ep1", Timeout: 100 * time.Millisecond},
			{Endpoint: "ep1", Timeout: 300 * time.Millisecond},
			{Endpoint: "ep2", Timeout: 200 * time.Millisecond},
		},
		Status: &StatusPlan{Endpoint: "ep3"},
	}

	dialed := map[string]time.Duration{}
	closed := 0
	dial := func(c wmodbus.Config) (endpointClient, func() error, error) {
		dialed[c.Endpoint] = c.Timeout
		return &fakeEndpointClient{}, func() error { closed++; return nil }, nil
	}

	clients, closeAll, err := buildEndpointClients(plan, dial)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(clients) != 3 {
		t.Fatalf("expected 3 clients, got %d", len(clients))
	}
	if dialed["ep1"] != 300*time.Millisecond || dialed["ep2"] != 200*time.Millisecond {
		t.Fatalf("timeouts = %v", dialed)
	}
	if dialed["ep3"] != time.Duration(config.DefaultTimeoutMs)*time.Millisecond {
		t.Fatalf("status endpoint timeout = %v", dialed["ep3"])
	}

	if err := closeAll(); err != nil || closed != 3 {
		t.Fatalf("closeAll err=%v closed=%d", err, closed)
	}
}

func TestBuildEndpointClients_ClosesOnFailure(t *testing.T) {
	plan := Plan{Targets: []TargetEndpoint{{Endpoint: "ep1"}, {Endpoint: "ep2"}}}

	closed := 0
	dial := func(c wmodbus.Config) (endpointClient, func() error, error) {
		if c.Endpoint == "ep2" {
			return nil, nil, errors.New("refused")
		}
		return &fakeEndpointClient{}, func() error { closed++; return nil }, nil
	}

	if _, _, err := buildEndpointClients(plan, dial); err == nil {
		t.Fatalf("expected error")
	}
	if closed != 1 {
		t.Fatalf("opened clients not closed: %d", closed)
	}
}
