// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/harp-analoginput/internal/config"
	wmodbus "github.com/tamzrod/harp-analoginput/internal/writer/modbus"
)

// BuildPlan converts the mirror config into a Writer Plan.
// Assumes config has already passed Validate and Normalize.
func BuildPlan(name string, m cfg.MirrorConfig) (Plan, error) {
	if name == "" {
		return Plan{}, errors.New("writer: name required")
	}

	plan := Plan{Name: name}

	for _, t := range m.Targets {
		plan.Targets = append(plan.Targets, TargetEndpoint{
			TargetID: t.ID,
			Endpoint: t.Endpoint,
			UnitID:   t.UnitID,
			Offset:   t.Offset,
			Timeout:  time.Duration(t.TimeoutMs) * time.Millisecond,
		})
	}

	if s := m.Status; s != nil {
		plan.Status = &StatusPlan{
			Endpoint:   s.Endpoint,
			UnitID:     s.UnitID,
			BaseSlot:   s.Slot,
			DeviceName: s.DeviceName,
		}
	}

	return plan, nil
}

// dialer opens one endpoint client; replaced in tests.
type dialer func(wmodbus.Config) (endpointClient, func() error, error)

func dialModbus(c wmodbus.Config) (endpointClient, func() error, error) {
	cli, err := wmodbus.NewEndpointClient(c)
	if err != nil {
		return nil, nil, err
	}
	return cli, cli.Close, nil
}

// BuildEndpointClients creates one TCP client per unique endpoint, data and status alike.
// An endpoint shared by several targets uses the longest timeout among them.
func BuildEndpointClients(plan Plan) (map[string]endpointClient, func() error, error) {
	return buildEndpointClients(plan, dialModbus)
}

func buildEndpointClients(plan Plan, dial dialer) (map[string]endpointClient, func() error, error) {
	timeouts := map[string]time.Duration{}
	var order []string

	add := func(endpoint string, timeout time.Duration) {
		prev, seen := timeouts[endpoint]
		if !seen {
			order = append(order, endpoint)
		}
		if !seen || timeout > prev {
			timeouts[endpoint] = timeout
		}
	}

	for _, t := range plan.Targets {
		add(t.Endpoint, t.Timeout)
	}
	if plan.Status != nil {
		add(plan.Status.Endpoint, 0)
	}

	clients := make(map[string]endpointClient)
	var closers []func() error

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	for _, endpoint := range order {
		timeout := timeouts[endpoint]
		if timeout == 0 {
			timeout = time.Duration(cfg.DefaultTimeoutMs) * time.Millisecond
		}

		c, closeFn, err := dial(wmodbus.Config{Endpoint: endpoint, Timeout: timeout})
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		clients[endpoint] = c
		closers = append(closers, closeFn)
	}

	return clients, closeAll, nil
}
