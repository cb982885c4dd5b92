package manifest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Checks the manifest for structural errors.
//
// Validation enforces the invariants the build pipeline relies on: a pinned
// base image, a positive port and uid, an absolute health path, and positive
// probe durations. File lists may not contain absolute paths or parent
// escapes; sources always resolve inside the manifest directory.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Image.Base) == "" {
		return fmt.Errorf("%w: image.base is required", ErrInvalid)
	}

	if err := m.validateApp(); err != nil {
		return err
	}
	if err := m.validateServe(); err != nil {
		return err
	}
	return m.validateHealth()
}

func (m *Manifest) validateApp() error {
	if m.App.UID < 0 {
		return fmt.Errorf("%w: app.uid must not be negative", ErrInvalid)
	}
	if !filepath.IsAbs(m.App.Home) {
		return fmt.Errorf("%w: app.home must be absolute, got %q", ErrInvalid, m.App.Home)
	}
	if !filepath.IsAbs(m.App.Workdir) {
		return fmt.Errorf("%w: app.workdir must be absolute, got %q", ErrInvalid, m.App.Workdir)
	}

	for _, f := range m.App.Files {
		if filepath.IsAbs(f) {
			return fmt.Errorf("%w: app file %q must be relative to the manifest directory", ErrInvalid, f)
		}
		if escapesDir(f) {
			return fmt.Errorf("%w: app file %q escapes the manifest directory", ErrInvalid, f)
		}
	}

	if m.Python.Requirements != "" && escapesDir(m.Python.Requirements) {
		return fmt.Errorf("%w: python.requirements %q escapes the manifest directory", ErrInvalid, m.Python.Requirements)
	}

	return nil
}

func (m *Manifest) validateServe() error {
	if m.Serve.Port < 1 || m.Serve.Port > 65535 {
		return fmt.Errorf("%w: serve.port %d out of range", ErrInvalid, m.Serve.Port)
	}
	if len(m.Serve.Command) == 0 {
		return fmt.Errorf("%w: serve.command is required", ErrInvalid)
	}
	return nil
}

func (m *Manifest) validateHealth() error {
	if !strings.HasPrefix(m.Health.Path, "/") {
		return fmt.Errorf("%w: healthcheck.path must be absolute, got %q", ErrInvalid, m.Health.Path)
	}
	if m.Health.Interval <= 0 {
		return fmt.Errorf("%w: healthcheck.interval must be positive", ErrInvalid)
	}
	if m.Health.Timeout <= 0 {
		return fmt.Errorf("%w: healthcheck.timeout must be positive", ErrInvalid)
	}
	if m.Health.StartPeriod < 0 {
		return fmt.Errorf("%w: healthcheck.start_period must not be negative", ErrInvalid)
	}
	if m.Health.Retries < 1 {
		return fmt.Errorf("%w: healthcheck.retries must be at least 1", ErrInvalid)
	}
	return nil
}

// Reports whether a relative path climbs out of its base directory.
func escapesDir(path string) bool {
	clean := filepath.Clean(path)
	return clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
}
