package cli

import (
	"context"
	"fmt"

	"github.com/slipway-sh/slipwayd/internal"
)

// Represents the 'slipwayd version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
