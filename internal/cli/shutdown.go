package cli

import (
	"context"

	"github.com/slipway-sh/slipwayd/internal/protocol"
)

// Represents the 'slipwayd shutdown' command.
type ShutdownCmd struct{}

// Executes the shutdown command.
func (c *ShutdownCmd) Run(ctx context.Context) error {
	_, err := exchange(protocol.CmdShutdown, nil)
	return err
}
