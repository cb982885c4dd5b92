package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/slipway-sh/slipwayd/internal/protocol"
)

// Represents the 'slipwayd up' command.
type UpCmd struct {
	Manifest string `arg:"" optional:"" help:"Path to the application manifest." default:"slipway.toml" type:"path"`
	Archive  string `short:"a" help:"Path to the image archive produced by build." default:"dist/image.tar" type:"path"`
	Wait     bool   `short:"w" help:"Block until the application reports healthy."`
}

// Executes the up command.
func (c *UpCmd) Run(ctx context.Context) error {
	archive, err := filepath.Abs(c.Archive)
	if err != nil {
		return err
	}

	result, err := request[protocol.UpResult](protocol.CmdUp, &protocol.UpRequest{
		Manifest: c.Manifest,
		Archive:  archive,
		Wait:     c.Wait,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s listening on port %d\n", result.ID, result.Port)
	return nil
}
