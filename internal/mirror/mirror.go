// internal/mirror/mirror.go
package mirror

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/harp-analoginput/internal/poller"
	"github.com/tamzrod/harp-analoginput/internal/status"
	"github.com/tamzrod/harp-analoginput/internal/writer"
)

// Loop delivers poll results to the targets and keeps the status block current.
// It owns the status tracker; nothing else touches it.
type Loop struct {
	Name   string
	Data   writer.Writer
	Status writer.StatusWriter // nil: status disabled
	Log    *zap.Logger

	// Tick drives seconds_in_error. Zero means one second.
	Tick time.Duration
}

// Run consumes in until ctx is done or in is closed.
// On exit the status block is marked disabled.
func (l *Loop) Run(ctx context.Context, in <-chan poller.PollResult) {
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("mirror", l.Name))

	tick := l.Tick
	if tick <= 0 {
		tick = time.Second
	}

	tracker := status.NewTracker()

	writeStatus := func(on string) {
		if l.Status == nil {
			return
		}
		if err := l.Status.WriteStatus(tracker.Snapshot()); err != nil {
			log.Warn("status write failed", zap.String("on", on), zap.Error(err))
		}
	}

	// Full block write on start (identity re-assert).
	writeStatus("start")

	secTicker := time.NewTicker(tick)
	defer secTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			if tracker.Disable() {
				writeStatus("stop")
			}
			return

		case res, ok := <-in:
			if !ok {
				if tracker.Disable() {
					writeStatus("stop")
				}
				return
			}

			// --- data delivery ---
			deliveryErr := l.Data.Write(res)
			if deliveryErr != nil {
				log.Warn("writer error", zap.Error(deliveryErr))
			}

			// --- status update (device-level truth) ---
			prev := tracker.Snapshot().Health
			changed := tracker.Observe(status.Outcome{
				PollErr:       res.Err,
				DeliveryErr:   deliveryErr,
				DeviceSeconds: uint32(res.DeviceSeconds),
			})

			if now := tracker.Snapshot(); now.Health != prev {
				log.Info("device health changed",
					zap.Uint16("from", prev),
					zap.Uint16("to", now.Health),
					zap.Uint16("error_code", now.LastErrorCode),
					zap.NamedError("poll_error", res.Err),
				)
			}

			if changed {
				writeStatus("update")
			}

		case <-secTicker.C:
			if tracker.Tick() {
				writeStatus("tick")
			}
		}
	}
}
