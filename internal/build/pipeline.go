package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/slipway-sh/slipwayd/internal/manifest"
	"github.com/slipway-sh/slipwayd/internal/paths"
	"github.com/slipway-sh/slipwayd/internal/runtime"
)

// Holds shared state for building a manifest across all target platforms.
type pipeline struct {
	rt       *runtime.Runtime   // Container runtime for image and container operations.
	m        *manifest.Manifest // Manifest under build.
	resource string             // Resource name, used as a prefix for container IDs.
	output   string             // Output directory for the final build artifact.
	cache    *stageCache        // Content-addressed store for dependency stages.
	plats    []string           // Target platforms to build for.
}

// Creates a new [pipeline] from the given options.
func newPipeline(rt *runtime.Runtime, opts Options) *pipeline {
	return &pipeline{
		rt:       rt,
		m:        opts.Manifest,
		resource: opts.Resource,
		output:   opts.Output,
		cache:    newStageCache(opts.CacheDir),
		plats:    opts.Platforms,
	}
}

// Runs the pipeline for every target platform.
//
// Each platform is built independently. The result reports a cache hit only
// when every platform reused its dependency stage.
func (p *pipeline) run(ctx context.Context) (*Result, error) {
	allCached := true

	for _, platform := range p.plats {
		cached, err := p.buildPlatform(ctx, platform)
		if err != nil {
			return nil, fmt.Errorf("%w: platform %s: %w", ErrBuild, platform, err)
		}
		allCached = allCached && cached
	}

	return &Result{Output: p.output, DepsCached: allCached}, nil
}

// Builds both stages for a single platform.
func (p *pipeline) buildPlatform(ctx context.Context, platform string) (bool, error) {
	slog.Info("building platform", "platform", platform)

	output := p.platformOutput(platform)
	if err := os.MkdirAll(output, paths.DefaultDirMode); err != nil {
		return false, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	depsArchive, cached, err := p.ensureDeps(ctx, platform)
	if err != nil {
		return false, err
	}

	if err := p.buildApp(ctx, platform, depsArchive, output); err != nil {
		return false, err
	}

	return cached, nil
}

// Produces the dependency-stage archive, reusing the cache when possible.
//
// The stage digest covers the base image reference, the OS package list, the
// pip upgrade flag, and the requirements file content. Application files are
// deliberately excluded so that editing them never invalidates this stage.
func (p *pipeline) ensureDeps(ctx context.Context, platform string) (string, bool, error) {
	requirements, err := p.readRequirements()
	if err != nil {
		return "", false, err
	}

	key := depsDigest(p.m, requirements, platform)
	if archive, ok := p.cache.lookup(key); ok {
		slog.Info("dependency stage cached", "digest", key)
		return archive, true, nil
	}

	slog.Info("building dependency stage", "digest", key)

	if err := p.rt.Pull(ctx, p.m.Image.Base, platform); err != nil {
		return "", false, err
	}

	ctr, err := p.rt.StartFromRef(ctx, p.m.Image.Base, p.containerID("deps", platform), platform)
	if err != nil {
		return "", false, err
	}
	defer ctr.Destroy(ctx)

	if err := p.runDepsSteps(ctx, ctr, requirements); err != nil {
		return "", false, err
	}

	if err := ctr.Stop(ctx); err != nil {
		return "", false, err
	}

	// The export lands in a staging directory first; only a complete
	// archive is renamed into the cache. An interrupted export leaves
	// nothing behind for lookup to find.
	staging, err := p.cache.stage()
	if err != nil {
		return "", false, err
	}
	defer os.RemoveAll(staging)

	// An empty spec commits the filesystem changes without touching the
	// inherited image config.
	if err := ctr.Export(ctx, staging, runtime.ImageSpec{}); err != nil {
		return "", false, err
	}

	archive, err := p.cache.commit(key, staging)
	if err != nil {
		return "", false, err
	}

	return archive, false, nil
}

// Executes the dependency-stage steps in their fixed order: OS packages,
// installer upgrade, requirements copy, dependency install.
func (p *pipeline) runDepsSteps(ctx context.Context, ctr *runtime.Container, requirements []byte) error {
	state := newStepState()

	if len(p.m.System.Packages) > 0 {
		if err := p.exec(ctx, ctr, state, aptInstallCommand(p.m.System.Packages)); err != nil {
			return err
		}
	}

	if p.m.Python.UpgradePip {
		if err := p.exec(ctx, ctr, state, pipUpgradeCommand()); err != nil {
			return err
		}
	}

	if len(requirements) > 0 {
		if err := copyBytes(ctx, ctr, requirements, requirementsDest); err != nil {
			return err
		}
		if err := p.exec(ctx, ctr, state, pipInstallCommand(requirementsDest)); err != nil {
			return err
		}
	}

	return nil
}

// Builds the application stage on top of the dependency archive and exports
// the final image.
//
// Step order encodes the manifest's invariants: application files land
// before the user exists, the user is created and adopted before the chowned
// context copy, and the launch metadata is stamped on at export.
func (p *pipeline) buildApp(ctx context.Context, platform, depsArchive, output string) error {
	slog.Info("building application stage", "platform", platform)

	ctr, err := p.rt.StartFromArchive(ctx, depsArchive, p.containerID("app", platform), platform)
	if err != nil {
		return err
	}
	defer ctr.Destroy(ctx)

	state := newStepState()

	for _, f := range p.m.App.Files {
		if err := copyFile(ctx, ctr, filepath.Join(p.m.Dir, f), "/"+filepath.Base(f)); err != nil {
			return err
		}
	}

	if err := p.exec(ctx, ctr, state, useraddCommand(p.m.App)); err != nil {
		return err
	}
	state.setUser(p.m.App.UID)

	state.mergeEnv(map[string]string{"HOME": p.m.App.Home})
	state.mergeEnv(p.m.Env)
	state.setWorkdir(p.m.App.Workdir)

	if err := ctr.MkdirAll(ctx, p.m.App.Workdir); err != nil {
		return err
	}

	if err := copyContext(ctx, ctr, p.m.Dir, p.m.App.Workdir, p.output); err != nil {
		return err
	}
	if err := ctr.Chown(ctx, p.m.App.UID, p.m.App.Home); err != nil {
		return err
	}

	if err := ctr.Stop(ctx); err != nil {
		return err
	}

	return ctr.Export(ctx, output, p.imageSpec(state))
}

// Builds the final image metadata from the manifest and accumulated state.
//
// The health-check descriptor has no home in the OCI image config, so it is
// carried as labels for any consumer that imports the archive. The daemon's
// own prober reads it from the manifest instead.
func (p *pipeline) imageSpec(state *stepState) runtime.ImageSpec {
	return runtime.ImageSpec{
		Entrypoint:   p.m.Serve.Command,
		Env:          state.environ(),
		WorkingDir:   p.m.App.Workdir,
		User:         strconv.Itoa(p.m.App.UID),
		ExposedPorts: []string{fmt.Sprintf("%d/tcp", p.m.Serve.Port)},
		Labels:       healthLabels(p.m),
	}
}

// Runs a shell command in the build container, failing on non-zero exit.
func (p *pipeline) exec(ctx context.Context, ctr *runtime.Container, state *stepState, command string) error {
	slog.Debug("run", "command", command)

	result, err := ctr.Exec(ctx, defaultShell, command, state.execOpts())
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: exit code %d: %s", ErrCommandFailed, result.ExitCode, result.Stderr)
	}
	return nil
}

// Reads the requirements manifest, or nil when the manifest declares none.
func (p *pipeline) readRequirements() ([]byte, error) {
	path := p.m.RequirementsPath()
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	return data, nil
}

// Returns a unique container ID for a stage, scoped to this resource and
// platform.
func (p *pipeline) containerID(stage, platform string) string {
	return fmt.Sprintf("%s-%s-%s", p.resource, platformSlug(platform), stage)
}

// Returns the output directory for a specific platform.
//
// When building for a single platform, the output directory is left as-is
// to preserve the {output}/image.tar convention. For multi-platform builds,
// each platform gets a subdirectory (e.g., {output}/linux-amd64).
func (p *pipeline) platformOutput(platform string) string {
	if len(p.plats) == 1 {
		return p.output
	}
	return filepath.Join(p.output, platformSlug(platform))
}

// Converts a platform string to a filesystem-safe slug.
//
// Replaces slashes with dashes (e.g., "linux/amd64" becomes "linux-amd64").
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}
