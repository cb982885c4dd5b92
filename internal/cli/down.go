package cli

import (
	"context"

	"github.com/slipway-sh/slipwayd/internal/protocol"
)

// Represents the 'slipwayd down' command.
type DownCmd struct {
	ID string `arg:"" help:"Launch identifier reported by up."`
}

// Executes the down command.
func (c *DownCmd) Run(ctx context.Context) error {
	_, err := exchange(protocol.CmdDown, &protocol.DownRequest{ID: c.ID})
	return err
}
