package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/slipway-sh/slipwayd/internal/manifest"
	"github.com/slipway-sh/slipwayd/internal/protocol"
)

func testCheck() Check {
	return Check{
		URL:         "http://127.0.0.1:8501/_stcore/health",
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		StartPeriod: 5 * time.Second,
		Retries:     3,
	}
}

func TestCheckFor(t *testing.T) {
	m := &manifest.Manifest{
		Serve: manifest.Serve{Port: 8501},
		Health: manifest.Health{
			Path:        "/_stcore/health",
			Interval:    manifest.Duration(30 * time.Second),
			Timeout:     manifest.Duration(10 * time.Second),
			StartPeriod: manifest.Duration(5 * time.Second),
			Retries:     3,
		},
	}

	check := CheckFor(m)
	if check.URL != "http://127.0.0.1:8501/_stcore/health" {
		t.Fatalf("URL = %q", check.URL)
	}
	if check.Interval != 30*time.Second || check.Timeout != 10*time.Second {
		t.Fatalf("interval/timeout = %v/%v", check.Interval, check.Timeout)
	}
	if check.StartPeriod != 5*time.Second || check.Retries != 3 {
		t.Fatalf("start period/retries = %v/%d", check.StartPeriod, check.Retries)
	}
}

func TestTransitionStartPeriodForgivesFailures(t *testing.T) {
	m := NewMonitor(testCheck())
	start := time.Now()
	m.started = start

	probeErr := errors.New("connection refused")

	// Failures inside the start period never count.
	for i := 0; i < 10; i++ {
		m.transition(probeErr, start.Add(time.Second))
	}

	status := m.Status()
	if status.State != protocol.HealthStarting {
		t.Fatalf("state = %s, want starting", status.State)
	}
	if status.Failures != 0 {
		t.Fatalf("failures = %d, want 0", status.Failures)
	}
	if status.LastError == "" {
		t.Fatal("last error should record the probe failure")
	}
}

func TestTransitionUnhealthyAfterRetries(t *testing.T) {
	m := NewMonitor(testCheck())
	start := time.Now()
	m.started = start

	probeErr := errors.New("status 500")
	after := start.Add(time.Minute)

	m.transition(probeErr, after)
	m.transition(probeErr, after)
	if got := m.Status().State; got != protocol.HealthStarting {
		t.Fatalf("state = %s before retry budget exhausted, want starting", got)
	}

	m.transition(probeErr, after)
	status := m.Status()
	if status.State != protocol.HealthUnhealthy {
		t.Fatalf("state = %s, want unhealthy", status.State)
	}
	if status.Failures != 3 {
		t.Fatalf("failures = %d, want 3", status.Failures)
	}
}

func TestTransitionSuccessResets(t *testing.T) {
	m := NewMonitor(testCheck())
	start := time.Now()
	m.started = start
	after := start.Add(time.Minute)

	probeErr := errors.New("status 500")
	for i := 0; i < 3; i++ {
		m.transition(probeErr, after)
	}
	if got := m.Status().State; got != protocol.HealthUnhealthy {
		t.Fatalf("state = %s, want unhealthy", got)
	}

	m.transition(nil, after)
	status := m.Status()
	if status.State != protocol.HealthHealthy {
		t.Fatalf("state = %s, want healthy", status.State)
	}
	if status.Failures != 0 || status.LastError != "" {
		t.Fatalf("failures/lastError = %d/%q, want reset", status.Failures, status.LastError)
	}

	// One failure after recovery does not flip back immediately.
	m.transition(probeErr, after)
	if got := m.Status().State; got != protocol.HealthHealthy {
		t.Fatalf("state = %s after single failure, want healthy", got)
	}
}

func TestMonitorProbesEndpoint(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/_stcore/health" {
			http.NotFound(w, r)
			return
		}
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMonitor(Check{
		URL:         srv.URL + "/_stcore/health",
		Interval:    10 * time.Millisecond,
		Timeout:     time.Second,
		StartPeriod: 50 * time.Millisecond,
		Retries:     3,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	// Unavailable during the start period keeps the state at starting.
	time.Sleep(30 * time.Millisecond)
	if got := m.Status().State; got != protocol.HealthStarting {
		t.Fatalf("state = %s during start period, want starting", got)
	}

	healthy.Store(true)
	waitForState(t, m, protocol.HealthHealthy)

	healthy.Store(false)
	waitForState(t, m, protocol.HealthUnhealthy)

	healthy.Store(true)
	waitForState(t, m, protocol.HealthHealthy)
}

func TestWaitHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMonitor(Check{
		URL:         srv.URL,
		Interval:    10 * time.Millisecond,
		Timeout:     time.Second,
		StartPeriod: 10 * time.Millisecond,
		Retries:     3,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	if err := WaitHealthy(ctx, m); err != nil {
		t.Fatalf("WaitHealthy: %v", err)
	}
}

func TestWaitHealthyUnreachable(t *testing.T) {
	// A closed server guarantees connection-refused probes.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	m := NewMonitor(Check{
		URL:         url,
		Interval:    10 * time.Millisecond,
		Timeout:     100 * time.Millisecond,
		StartPeriod: 10 * time.Millisecond,
		Retries:     2,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	err := WaitHealthy(ctx, m)
	if !errors.Is(err, ErrUnhealthy) {
		t.Fatalf("err = %v, want ErrUnhealthy", err)
	}
}

func waitForState(t *testing.T, m *Monitor, want protocol.HealthState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.Status().State == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %s, want %s", m.Status().State, want)
}
