package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/slipway-sh/slipwayd/internal/health"
	"github.com/slipway-sh/slipwayd/internal/manifest"
	"github.com/slipway-sh/slipwayd/internal/protocol"
	"github.com/slipway-sh/slipwayd/internal/runtime"
)

// A launched application tracked by the daemon.
//
// The container and monitor live on background contexts: both must outlive
// the connection that issued the up command.
type app struct {
	id        string             // Launch identifier.
	image     string             // Image tag the container was launched from.
	port      int                // Host port the server binds.
	container *runtime.Container // Handle on the running container.
	monitor   *health.Monitor    // Health prober for this application.
	cancel    context.CancelFunc // Stops the monitor's probe loop.
}

// Imports the archive, launches a container from it, and registers the
// application with a running health monitor.
func (s *Server) launchApp(ctx context.Context, m *manifest.Manifest, archive string) (*app, error) {
	tag, err := s.runtime.ImportArchive(ctx, archive, hostPlatform())
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()

	ctr, err := s.runtime.Launch(ctx, tag, containerName(id))
	if err != nil {
		return nil, err
	}

	monitor := health.NewMonitor(health.CheckFor(m))
	monitorCtx, cancel := context.WithCancel(context.Background())
	go monitor.Run(monitorCtx)

	a := &app{
		id:        id,
		image:     tag,
		port:      m.Serve.Port,
		container: ctr,
		monitor:   monitor,
		cancel:    cancel,
	}

	s.mu.Lock()
	s.apps[id] = a
	s.mu.Unlock()

	go a.watchExit()

	return a, nil
}

// Logs the application's exit when its primary process terminates.
//
// Status queries reflect the stopped container either way; the log line is
// what connects an unexpected exit to its code. The daemon never restarts.
func (a *app) watchExit() {
	code, err := a.container.WaitExit(context.Background())
	if err != nil {
		slog.Debug("exit watch ended", "id", a.id, "error", err)
		return
	}
	slog.Warn("application exited", "id", a.id, "code", code)
}

// Stops a launched application and removes it from the registry.
func (s *Server) stopApp(ctx context.Context, id string) error {
	s.mu.Lock()
	a, ok := s.apps[id]
	if ok {
		delete(s.apps, id)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: unknown application %q", ErrServer, id)
	}

	a.cancel()

	if err := a.container.Stop(ctx); err != nil {
		slog.Warn("failed to stop application container", "id", id, "error", err)
	}
	a.container.Destroy(ctx)

	slog.Info("application stopped", "id", id)
	return nil
}

// Stops every launched application. Used during daemon shutdown.
func (s *Server) stopAllApps(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.apps))
	for id := range s.apps {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.stopApp(ctx, id); err != nil {
			slog.Warn("failed to stop application during shutdown", "id", id, "error", err)
		}
	}
}

// Collects status snapshots for every launched application.
func (s *Server) appStatuses(ctx context.Context) []protocol.AppStatus {
	s.mu.Lock()
	apps := make([]*app, 0, len(s.apps))
	for _, a := range s.apps {
		apps = append(apps, a)
	}
	s.mu.Unlock()

	statuses := make([]protocol.AppStatus, 0, len(apps))
	for _, a := range apps {
		state, err := a.container.Status(ctx)
		if err != nil {
			slog.Warn("failed to query container status", "id", a.id, "error", err)
			state = protocol.ContainerNotCreated
		}

		probe := a.monitor.Status()

		statuses = append(statuses, protocol.AppStatus{
			ID:        a.id,
			Image:     a.image,
			Port:      a.port,
			Container: state,
			Health:    probe.State,
			Failures:  probe.Failures,
			LastError: probe.LastError,
		})
	}

	return statuses
}

// Derives the container ID for a launch.
//
// The UUID prefix is plenty for uniqueness within one daemon's namespace
// and keeps containerd IDs readable.
func containerName(id string) string {
	return "slipway-" + id[:8]
}
