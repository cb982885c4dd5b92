package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/slipway-sh/slipwayd/internal/protocol"
)

// Represents the 'slipwayd build' command.
type BuildCmd struct {
	Manifest  string   `arg:"" optional:"" help:"Path to the application manifest." default:"slipway.toml" type:"path"`
	Output    string   `short:"o" help:"Output directory for the image archive." default:"dist" type:"path"`
	Platforms []string `short:"p" help:"Target platforms (e.g. linux/amd64). Defaults to the host platform."`
}

// Executes the build command.
func (c *BuildCmd) Run(ctx context.Context) error {
	output, err := filepath.Abs(c.Output)
	if err != nil {
		return err
	}

	result, err := request[protocol.BuildResult](protocol.CmdBuild, &protocol.BuildRequest{
		Manifest:  c.Manifest,
		Output:    output,
		Platforms: c.Platforms,
	})
	if err != nil {
		return err
	}

	if result.DepsCached {
		slog.Info("dependency layers reused from cache")
	}

	fmt.Println(result.Output)
	return nil
}
