package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	goruntime "runtime"
	"time"

	"github.com/slipway-sh/slipwayd/internal"
	"github.com/slipway-sh/slipwayd/internal/build"
	"github.com/slipway-sh/slipwayd/internal/health"
	"github.com/slipway-sh/slipwayd/internal/manifest"
	"github.com/slipway-sh/slipwayd/internal/protocol"
	"github.com/slipway-sh/slipwayd/internal/render"
)

// Handles a build command.
//
// Loads the manifest from disk and runs the two-stage build pipeline
// against the container runtime.
func (s *Server) handleBuild(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.BuildRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	m, err := manifest.Load(req.Manifest)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	result, err := build.Run(ctx, s.runtime, build.Options{
		Manifest:  m,
		Resource:  resourceName(m),
		Output:    req.Output,
		Platforms: req.Platforms,
	})
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.mu.Lock()
	s.builds++
	s.mu.Unlock()

	s.respond(conn, protocol.CmdOK, &protocol.BuildResult{
		Output:     result.Output,
		DepsCached: result.DepsCached,
	})
}

// Handles a render command.
func (s *Server) handleRender(_ context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.RenderRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	m, err := manifest.Load(req.Manifest)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	dockerfile, err := render.Dockerfile(m)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.RenderResult{Dockerfile: dockerfile})
}

// Handles an up command.
//
// The launch itself uses a background context: the container and its health
// monitor must survive the connection that started them. Only the import
// and launch calls are bounded by the connection context.
func (s *Server) handleUp(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.UpRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	m, err := manifest.Load(req.Manifest)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	a, err := s.launchApp(ctx, m, req.Archive)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	if req.Wait {
		if err := health.WaitHealthy(ctx, a.monitor); err != nil {
			if stopErr := s.stopApp(context.Background(), a.id); stopErr != nil {
				slog.Warn("failed to stop unhealthy application", "id", a.id, "error", stopErr)
			}
			s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
			return
		}
	}

	s.respond(conn, protocol.CmdOK, &protocol.UpResult{ID: a.id, Port: a.port})
}

// Handles a down command.
func (s *Server) handleDown(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.DownRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	if err := s.stopApp(ctx, req.ID); err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, nil)
}

// Handles a status command.
func (s *Server) handleStatus(ctx context.Context, conn net.Conn) {
	s.mu.Lock()
	builds := s.builds
	s.mu.Unlock()

	uptime := time.Since(s.startedAt).Truncate(time.Second)

	s.respond(conn, protocol.CmdOK, &protocol.StatusResult{
		Running: true,
		Version: internal.VersionString(),
		Pid:     os.Getpid(),
		Uptime:  uptime.String(),
		Builds:  builds,
		Apps:    s.appStatuses(ctx),
	})
}

// Handles a shutdown command.
func (s *Server) handleShutdown(_ context.Context, conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}

// Derives a build resource name from the manifest's directory.
func resourceName(m *manifest.Manifest) string {
	return filepath.Base(m.Dir)
}

// Returns the OCI platform of the host.
func hostPlatform() string {
	return "linux/" + goruntime.GOARCH
}
