package cli

import (
	"context"
	"fmt"

	"github.com/slipway-sh/slipwayd/internal/protocol"
)

// Represents the 'slipwayd status' command.
type StatusCmd struct{}

// Executes the status command.
func (c *StatusCmd) Run(ctx context.Context) error {
	result, err := request[protocol.StatusResult](protocol.CmdStatus, nil)
	if err != nil {
		return err
	}

	fmt.Printf("version: %s\n", result.Version)
	fmt.Printf("pid:     %d\n", result.Pid)
	fmt.Printf("uptime:  %s\n", result.Uptime)
	fmt.Printf("builds:  %d\n", result.Builds)

	if len(result.Apps) == 0 {
		return nil
	}

	fmt.Println("\napplications:")
	for _, a := range result.Apps {
		fmt.Printf("  %s  port=%d  container=%s  health=%s", a.ID, a.Port, a.Container, a.Health)
		if a.Failures > 0 {
			fmt.Printf("  failures=%d", a.Failures)
		}
		if a.LastError != "" {
			fmt.Printf("  error=%q", a.LastError)
		}
		fmt.Println()
	}

	return nil
}
