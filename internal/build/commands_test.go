package build

import (
	"strings"
	"testing"
	"time"

	"github.com/slipway-sh/slipwayd/internal/manifest"
)

func TestAptInstallCommand(t *testing.T) {
	cmd := aptInstallCommand([]string{"build-essential", "curl", "software-properties-common"})

	if !strings.Contains(cmd, "apt-get update") {
		t.Fatalf("command missing index refresh: %q", cmd)
	}
	if !strings.Contains(cmd, "install -y --no-install-recommends build-essential curl software-properties-common") {
		t.Fatalf("command missing package list: %q", cmd)
	}
	if !strings.Contains(cmd, "rm -rf /var/lib/apt/lists/*") {
		t.Fatalf("command leaves the package index behind: %q", cmd)
	}
}

func TestPipCommands(t *testing.T) {
	if got := pipUpgradeCommand(); got != "pip3 install --no-cache-dir --upgrade pip" {
		t.Fatalf("pipUpgradeCommand = %q", got)
	}
	if got := pipInstallCommand("/requirements.txt"); got != "pip3 install --no-cache-dir -r /requirements.txt" {
		t.Fatalf("pipInstallCommand = %q", got)
	}
}

func TestUseraddCommand(t *testing.T) {
	app := manifest.App{User: "appuser", UID: 1000, Home: "/home/appuser"}
	if got := useraddCommand(app); got != "useradd -m -u 1000 -d /home/appuser appuser" {
		t.Fatalf("useraddCommand = %q", got)
	}
}

func TestHealthLabels(t *testing.T) {
	m := testManifest()
	m.Health = manifest.Health{
		Path:        "/_stcore/health",
		Interval:    manifest.Duration(30 * time.Second),
		Timeout:     manifest.Duration(30 * time.Second),
		StartPeriod: manifest.Duration(5 * time.Second),
		Retries:     3,
	}

	labels := healthLabels(m)

	want := map[string]string{
		LabelHealthPath:        "/_stcore/health",
		LabelHealthInterval:    "30s",
		LabelHealthTimeout:     "30s",
		LabelHealthStartPeriod: "5s",
		LabelHealthRetries:     "3",
		LabelPort:              "8501",
	}
	for k, v := range want {
		if labels[k] != v {
			t.Errorf("labels[%q] = %q, want %q", k, labels[k], v)
		}
	}
	if len(labels) != len(want) {
		t.Fatalf("len(labels) = %d, want %d", len(labels), len(want))
	}
}
