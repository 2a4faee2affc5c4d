// internal/poller/runner.go
package poller

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run starts the ticker loop and emits PollResult on the provided channel.
// One goroutine per device. No overlap. No retries.
// A cycle slower than the interval delays the next tick instead of queueing it.
func (p *Poller) Run(ctx context.Context, out chan<- PollResult, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res := p.PollOnce(ctx)
			if res.Err != nil && ctx.Err() == nil {
				log.Debug("poll failed", zap.String("mirror", res.Name), zap.Error(res.Err))
			}

			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}
