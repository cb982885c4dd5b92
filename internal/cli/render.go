package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/slipway-sh/slipwayd/internal/protocol"
)

// Represents the 'slipwayd render' command.
type RenderCmd struct {
	Manifest string `arg:"" optional:"" help:"Path to the application manifest." default:"slipway.toml" type:"path"`
	Output   string `short:"o" help:"Write the Dockerfile to a file instead of stdout." placeholder:"PATH"`
}

// Executes the render command.
func (c *RenderCmd) Run(ctx context.Context) error {
	result, err := request[protocol.RenderResult](protocol.CmdRender, &protocol.RenderRequest{
		Manifest: c.Manifest,
	})
	if err != nil {
		return err
	}

	if c.Output != "" {
		return os.WriteFile(c.Output, []byte(result.Dockerfile), 0644)
	}

	fmt.Print(result.Dockerfile)
	return nil
}
