package health

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/slipway-sh/slipwayd/internal/protocol"
)

// Polling cadence while waiting for the first successful probe.
const waitPollInterval = 250 * time.Millisecond

// Blocks until the monitor reports healthy or the deadline passes.
//
// The deadline covers the probe's start period plus one full retry budget,
// so a server that boots slowly but within its declared grace period is
// never flagged. The monitor's own loop keeps running; this only watches
// its state.
func WaitHealthy(ctx context.Context, m *Monitor) error {
	deadline := m.check.StartPeriod + m.check.Interval*time.Duration(m.check.Retries+1)

	backoff := retry.WithMaxDuration(deadline, retry.NewConstant(waitPollInterval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		status := m.Status()
		switch status.State {
		case protocol.HealthHealthy:
			return nil
		case protocol.HealthUnhealthy:
			return fmt.Errorf("%w: %s", ErrUnhealthy, status.LastError)
		default:
			return retry.RetryableError(fmt.Errorf("%w: still starting", ErrUnhealthy))
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	return nil
}
