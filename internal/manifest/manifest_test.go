package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleManifest = `
[image]
base = "docker.io/library/python:3.9-slim"

[system]
packages = ["build-essential", "curl", "software-properties-common", "git"]

[python]
requirements = "requirements.txt"
upgrade_pip = true

[app]
files = ["app.py", "aedemobg.png"]

[env]
MPLBACKEND = "Agg"
PYTHONPATH = "/home/appuser/app"

[serve]
command = ["streamlit", "run", "app.py"]
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Image.Base != "docker.io/library/python:3.9-slim" {
		t.Errorf("base = %q", m.Image.Base)
	}
	if len(m.System.Packages) != 4 {
		t.Errorf("packages = %v", m.System.Packages)
	}
	if !m.Python.UpgradePip {
		t.Error("upgrade_pip not set")
	}
	if len(m.App.Files) != 2 || m.App.Files[0] != "app.py" {
		t.Errorf("files = %v", m.App.Files)
	}
	if m.Env["MPLBACKEND"] != "Agg" {
		t.Errorf("env = %v", m.Env)
	}
}

func TestParseDefaults(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Serve.Port != DefaultPort {
		t.Errorf("port = %d, want %d", m.Serve.Port, DefaultPort)
	}
	if m.Serve.Address != DefaultAddress {
		t.Errorf("address = %q, want %q", m.Serve.Address, DefaultAddress)
	}
	if m.App.User != DefaultUser || m.App.UID != DefaultUID {
		t.Errorf("user = %q uid = %d", m.App.User, m.App.UID)
	}
	if m.App.Home != "/home/appuser" {
		t.Errorf("home = %q", m.App.Home)
	}
	if m.App.Workdir != "/home/appuser/app" {
		t.Errorf("workdir = %q", m.App.Workdir)
	}
	if m.Health.Path != DefaultHealthPath {
		t.Errorf("health path = %q", m.Health.Path)
	}
	if m.Health.Interval.Std() != DefaultInterval {
		t.Errorf("interval = %v", m.Health.Interval.Std())
	}
	if m.Health.StartPeriod.Std() != DefaultStartPeriod {
		t.Errorf("start period = %v", m.Health.StartPeriod.Std())
	}
	if m.Health.Retries != DefaultRetries {
		t.Errorf("retries = %d", m.Health.Retries)
	}
}

func TestParseHealthOverrides(t *testing.T) {
	doc := sampleManifest + `
[healthcheck]
path = "/healthz"
interval = "10s"
timeout = "2s"
start_period = "1s"
retries = 5
`
	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Health.Path != "/healthz" {
		t.Errorf("path = %q", m.Health.Path)
	}
	if m.Health.Interval.Std() != 10*time.Second {
		t.Errorf("interval = %v", m.Health.Interval.Std())
	}
	if m.Health.Timeout.Std() != 2*time.Second {
		t.Errorf("timeout = %v", m.Health.Timeout.Std())
	}
	if m.Health.StartPeriod.Std() != time.Second {
		t.Errorf("start period = %v", m.Health.StartPeriod.Std())
	}
	if m.Health.Retries != 5 {
		t.Errorf("retries = %d", m.Health.Retries)
	}
}

func TestParseBadDuration(t *testing.T) {
	doc := sampleManifest + `
[healthcheck]
interval = "soon"
`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestLoadRecordsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slipway.toml")
	if err := os.WriteFile(path, []byte(sampleManifest), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Dir != dir {
		t.Errorf("dir = %q, want %q", m.Dir, dir)
	}
	if got := m.RequirementsPath(); got != filepath.Join(dir, "requirements.txt") {
		t.Errorf("requirements path = %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, ErrManifest) {
		t.Fatalf("err = %v, want ErrManifest", err)
	}
}
