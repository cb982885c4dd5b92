package cli

import (
	"context"
	"log/slog"

	"github.com/slipway-sh/slipwayd/internal/server"
)

// Represents the 'slipwayd start' command.
type StartCmd struct {
	Containerd string `help:"Containerd socket address." default:"${containerd_address}" placeholder:"PATH"`
	Namespace  string `help:"Containerd namespace for images and containers." default:"${containerd_namespace}"`
}

// Executes the start command.
//
// Starts the server on a Unix domain socket and blocks until the context is
// cancelled (e.g. via SIGINT or SIGTERM) or a shutdown command arrives.
func (c *StartCmd) Run(ctx context.Context) error {
	srv, err := server.New(server.Config{
		SocketPath:          RootCmd.Socket,
		ContainerdAddress:   c.Containerd,
		ContainerdNamespace: c.Namespace,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("slipwayd is running")

	<-ctx.Done()

	slog.Info("shutting down")
	return srv.Stop()
}
