package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/slipway-sh/slipwayd/internal/manifest"
	"github.com/slipway-sh/slipwayd/internal/protocol"
)

// Describes a single application's liveness probe.
type Check struct {
	URL         string        // Probed endpoint, e.g. "http://127.0.0.1:8501/_stcore/health".
	Interval    time.Duration // Delay between probes.
	Timeout     time.Duration // Per-probe timeout.
	StartPeriod time.Duration // Grace period during which failures do not count.
	Retries     int           // Consecutive failures before the state turns unhealthy.
}

// Builds the probe description for a manifest.
//
// The probe targets loopback because launched containers share the host
// network namespace, so the served port is bound directly on the host.
func CheckFor(m *manifest.Manifest) Check {
	return Check{
		URL:         fmt.Sprintf("http://127.0.0.1:%d%s", m.Serve.Port, m.Health.Path),
		Interval:    m.Health.Interval.Std(),
		Timeout:     m.Health.Timeout.Std(),
		StartPeriod: m.Health.StartPeriod.Std(),
		Retries:     m.Health.Retries,
	}
}

// Snapshot of a monitor's observed state.
type Status struct {
	State     protocol.HealthState
	Failures  int    // Consecutive probe failures.
	LastError string // Message from the most recent failed probe.
}

// Periodically probes an application's health endpoint.
//
// The monitor starts in the starting state and stays there until either a
// probe succeeds or the start period elapses; failures inside the start
// period never count toward the retry budget. After that, each consecutive
// failure increments the failure count, and reaching the retry limit flips
// the state to unhealthy. A single success resets the count and restores
// healthy. The monitor only ever reports; it never restarts anything.
type Monitor struct {
	check  Check
	client *http.Client

	mu       sync.Mutex
	state    protocol.HealthState
	failures int
	lastErr  string
	started  time.Time

	now func() time.Time
}

// Creates a monitor for a probe description.
func NewMonitor(check Check) *Monitor {
	return &Monitor{
		check:  check,
		client: &http.Client{Timeout: check.Timeout},
		state:  protocol.HealthStarting,
		now:    time.Now,
	}
}

// Runs the probe loop until the context is cancelled.
//
// The first probe fires after one interval, matching the semantics of a
// container health check.
func (m *Monitor) Run(ctx context.Context) {
	m.mu.Lock()
	m.started = m.now()
	m.mu.Unlock()

	slog.Info("health monitor started", "url", m.check.URL, "interval", m.check.Interval)

	ticker := time.NewTicker(m.check.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("health monitor stopped", "url", m.check.URL)
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

// Returns the current observed state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		State:     m.state,
		Failures:  m.failures,
		LastError: m.lastErr,
	}
}

// Runs a single probe and folds the result into the state.
func (m *Monitor) probe(ctx context.Context) {
	err := m.observe(ctx)
	m.transition(err, m.now())
}

// Performs one HTTP probe. Any status outside 2xx is a failure.
func (m *Monitor) observe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.check.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.check.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbe, err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbe, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrProbe, resp.StatusCode)
	}

	return nil
}

// Applies a probe outcome to the state machine.
func (m *Monitor) transition(err error, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		if m.state != protocol.HealthHealthy {
			slog.Info("application healthy", "url", m.check.URL)
		}
		m.state = protocol.HealthHealthy
		m.failures = 0
		m.lastErr = ""
		return
	}

	// Failures inside the start period are expected while the server boots.
	if m.state == protocol.HealthStarting && now.Sub(m.started) < m.check.StartPeriod {
		m.lastErr = err.Error()
		return
	}

	m.failures++
	m.lastErr = err.Error()

	if m.failures >= m.check.Retries && m.state != protocol.HealthUnhealthy {
		slog.Warn("application unhealthy", "url", m.check.URL, "failures", m.failures, "error", err)
		m.state = protocol.HealthUnhealthy
	}
}
