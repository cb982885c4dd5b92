package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/slipway-sh/slipwayd/internal"
	"github.com/slipway-sh/slipwayd/internal/server"
)

// Represents the root command for the slipwayd daemon.
var RootCmd struct {
	Quiet  bool   `short:"q" help:"Suppress informational output."`
	Debug  bool   `short:"d" help:"Enable debug output."`
	Socket string `short:"s" help:"Override the default Unix socket path." placeholder:"PATH"`

	Start    StartCmd    `cmd:"" help:"Start the daemon."`
	Build    BuildCmd    `cmd:"" help:"Build an application image from a manifest."`
	Render   RenderCmd   `cmd:"" help:"Render a manifest as a Dockerfile."`
	Up       UpCmd       `cmd:"" help:"Launch a built application image."`
	Down     DownCmd     `cmd:"" help:"Stop a launched application."`
	Status   StatusCmd   `cmd:"" help:"Show daemon and application status."`
	Shutdown ShutdownCmd `cmd:"" help:"Shut down the daemon."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("The slipway daemon.\n\nBuilds and launches web application containers from slipway.toml manifests."),
		kong.UsageOnError(),
		kong.Vars{
			"version":              internal.VersionString(),
			"containerd_address":   server.DefaultContainerdAddress,
			"containerd_namespace": server.DefaultContainerdNamespace,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
//
// Flags override build-time defaults set via linker flags.
func configureLogger() {
	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelWarn
	}

	internal.SetDebug(debug)
	internal.SetQuiet(quiet)

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
