package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default values applied when the manifest omits a section or field. They
// match the conventional Streamlit deployment: a slim Python base, the
// framework's health endpoint, and its default serving port.
const (
	DefaultAddress     = "0.0.0.0"
	DefaultPort        = 8501
	DefaultHealthPath  = "/_stcore/health"
	DefaultUser        = "appuser"
	DefaultUID         = 1000
	DefaultInterval    = 30 * time.Second
	DefaultTimeout     = 30 * time.Second
	DefaultStartPeriod = 5 * time.Second
	DefaultRetries     = 3
)

// A duration that unmarshals from TOML strings like "30s".
type Duration time.Duration

// Implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Returns the duration as a [time.Duration].
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// A declarative deployment descriptor for a single web application.
//
// The manifest is the moral equivalent of a Dockerfile: it names a base
// image, the OS and Python dependencies to install on top of it, the
// application files to copy in, the restricted user the process runs as,
// its environment, the served port, the liveness probe, and the launch
// command. Section order in the file is irrelevant; the build pipeline
// imposes the execution order.
type Manifest struct {
	Image  Image             `toml:"image"`
	System System            `toml:"system"`
	Python Python            `toml:"python"`
	App    App               `toml:"app"`
	Env    map[string]string `toml:"env"`
	Serve  Serve             `toml:"serve"`
	Health Health            `toml:"healthcheck"`

	// Directory containing the manifest file. Relative copy sources are
	// resolved against it. Not part of the TOML document.
	Dir string `toml:"-"`
}

// The pinned base environment a build starts from.
type Image struct {
	Base string `toml:"base"` // Image reference, e.g. "docker.io/library/python:3.9-slim".
}

// OS-level packages installed with the image's package manager.
type System struct {
	Packages []string `toml:"packages"`
}

// Python dependency installation.
type Python struct {
	Requirements string `toml:"requirements"` // Path to the requirements manifest, relative to the manifest dir.
	UpgradePip   bool   `toml:"upgrade_pip"`  // Upgrade the installer before resolving dependencies.
}

// The application file set and the runtime identity it executes under.
type App struct {
	Files   []string `toml:"files"`   // Source and asset files copied into the image.
	User    string   `toml:"user"`    // Restricted user name.
	UID     int      `toml:"uid"`     // Numeric identity for the restricted user.
	Home    string   `toml:"home"`    // Home directory created for the user.
	Workdir string   `toml:"workdir"` // Working directory for the launch command.
}

// The network contract and launch command of the running container.
type Serve struct {
	Port    int      `toml:"port"`    // TCP port the server binds and the image exposes.
	Address string   `toml:"address"` // Bind address, normally 0.0.0.0.
	Command []string `toml:"command"` // Foreground launch command (OCI entrypoint).
}

// The periodic liveness probe descriptor.
type Health struct {
	Path        string   `toml:"path"`         // HTTP path probed on the served port.
	Interval    Duration `toml:"interval"`     // Delay between probes.
	Timeout     Duration `toml:"timeout"`      // Per-probe timeout.
	StartPeriod Duration `toml:"start_period"` // Grace period before failures count.
	Retries     int      `toml:"retries"`      // Consecutive failures before unhealthy.
}

// Reads and validates a manifest file.
//
// Missing optional fields are filled with defaults before validation. The
// manifest's directory is recorded so relative file references can be
// resolved later.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	m.Dir = abs

	return m, nil
}

// Parses a manifest document, applies defaults, and validates it.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}

	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Fills zero-valued optional fields with their defaults.
func (m *Manifest) applyDefaults() {
	if m.App.User == "" {
		m.App.User = DefaultUser
	}
	if m.App.UID == 0 {
		m.App.UID = DefaultUID
	}
	if m.App.Home == "" {
		m.App.Home = "/home/" + m.App.User
	}
	if m.App.Workdir == "" {
		m.App.Workdir = filepath.Join(m.App.Home, "app")
	}

	if m.Serve.Port == 0 {
		m.Serve.Port = DefaultPort
	}
	if m.Serve.Address == "" {
		m.Serve.Address = DefaultAddress
	}

	if m.Health.Path == "" {
		m.Health.Path = DefaultHealthPath
	}
	if m.Health.Interval == 0 {
		m.Health.Interval = Duration(DefaultInterval)
	}
	if m.Health.Timeout == 0 {
		m.Health.Timeout = Duration(DefaultTimeout)
	}
	if m.Health.StartPeriod == 0 {
		m.Health.StartPeriod = Duration(DefaultStartPeriod)
	}
	if m.Health.Retries == 0 {
		m.Health.Retries = DefaultRetries
	}
}

// Resolves the requirements manifest path against the manifest directory.
func (m *Manifest) RequirementsPath() string {
	if m.Python.Requirements == "" {
		return ""
	}
	if filepath.IsAbs(m.Python.Requirements) {
		return m.Python.Requirements
	}
	return filepath.Join(m.Dir, m.Python.Requirements)
}
