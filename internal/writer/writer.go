// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/harp-analoginput/internal/poller"
)

// endpointClient is the exact contract the writer uses.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

type writerImpl struct {
	plan    Plan
	clients map[string]endpointClient
}

func New(plan Plan, clients map[string]endpointClient) Writer {
	return &writerImpl{
		plan:    plan,
		clients: clients,
	}
}

// Write copies every block of a successful poll into every target.
// A failed poll writes nothing: targets keep the last good image.
// Targets are independent; one failing does not stop the others.
func (w *writerImpl) Write(res poller.PollResult) error {
	if res.Err != nil {
		return nil
	}

	var errs []string

	for _, tgt := range w.plan.Targets {
		cli := w.clients[tgt.Endpoint]
		if cli == nil {
			errs = append(errs, fmt.Sprintf("writer: missing client for endpoint %s", tgt.Endpoint))
			continue
		}

		for _, b := range res.Blocks {
			dst := uint32(tgt.Offset) + uint32(b.Position)
			if dst+uint32(len(b.Words)) > 0x10000 {
				errs = append(errs, fmt.Sprintf(
					"writer: target=%d register %d does not fit at %d",
					tgt.TargetID, b.Address, dst,
				))
				continue
			}

			if err := cli.WriteRegisters(tgt.UnitID, uint16(dst), b.Words); err != nil {
				errs = append(errs, fmt.Sprintf(
					"writer: target=%d ep=%s unit=%d register=%d addr=%d err=%v",
					tgt.TargetID, tgt.Endpoint, tgt.UnitID, b.Address, dst, err,
				))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}
