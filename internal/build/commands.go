package build

import (
	"fmt"
	"strings"
	"time"

	"github.com/slipway-sh/slipwayd/internal/manifest"
)

const (

	// Shell used for build-step commands.
	defaultShell = "/bin/sh"

	// Where the requirements manifest is copied inside the dependency
	// stage. It lands outside the application directory so the later
	// context copy does not shadow it.
	requirementsDest = "/requirements.txt"
)

// Label keys carrying the health-check descriptor on exported images.
const (
	LabelHealthPath        = "sh.slipway.health.path"
	LabelHealthInterval    = "sh.slipway.health.interval"
	LabelHealthTimeout     = "sh.slipway.health.timeout"
	LabelHealthStartPeriod = "sh.slipway.health.start-period"
	LabelHealthRetries     = "sh.slipway.health.retries"
	LabelPort              = "sh.slipway.port"
)

// Builds the OS package installation command.
//
// The package index is refreshed and dropped again in the same step so the
// index never persists as image content, keeping the layer deterministic
// across package-list-preserving rebuilds.
func aptInstallCommand(packages []string) string {
	return fmt.Sprintf(
		"apt-get update && apt-get install -y --no-install-recommends %s && rm -rf /var/lib/apt/lists/*",
		strings.Join(packages, " "),
	)
}

// Builds the installer upgrade command. Idempotent.
func pipUpgradeCommand() string {
	return "pip3 install --no-cache-dir --upgrade pip"
}

// Builds the dependency installation command.
func pipInstallCommand(requirements string) string {
	return fmt.Sprintf("pip3 install --no-cache-dir -r %s", requirements)
}

// Builds the restricted-user creation command.
func useraddCommand(app manifest.App) string {
	return fmt.Sprintf("useradd -m -u %d -d %s %s", app.UID, app.Home, app.User)
}

// Encodes the manifest's health-check descriptor as image labels.
func healthLabels(m *manifest.Manifest) map[string]string {
	return map[string]string{
		LabelHealthPath:        m.Health.Path,
		LabelHealthInterval:    time.Duration(m.Health.Interval).String(),
		LabelHealthTimeout:     time.Duration(m.Health.Timeout).String(),
		LabelHealthStartPeriod: time.Duration(m.Health.StartPeriod).String(),
		LabelHealthRetries:     fmt.Sprintf("%d", m.Health.Retries),
		LabelPort:              fmt.Sprintf("%d", m.Serve.Port),
	}
}
