package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"

	"github.com/slipway-sh/slipwayd/internal/manifest"
	"github.com/slipway-sh/slipwayd/internal/paths"
	"github.com/slipway-sh/slipwayd/internal/runtime"
)

// Controls a build.
type Options struct {
	Manifest  *manifest.Manifest // Deployment manifest to build.
	Resource  string             // Resource name, used as a prefix for container IDs.
	Output    string             // Directory for the exported image.
	CacheDir  string             // Directory for cached dependency stages. Empty uses the default.
	Platforms []string           // Target platforms (e.g., ["linux/amd64"]). Defaults to host.
}

// Returned after a successful build.
type Result struct {
	Output     string // Directory containing the exported image.
	DepsCached bool   // Whether every platform reused a cached dependency stage.
}

// Builds a manifest end-to-end against the container runtime.
//
// The build is a fixed, linear pipeline split into two stages. The
// dependency stage installs OS packages and Python dependencies on the base
// image and is cached by a content digest of its inputs, so editing
// application files never reinstalls dependencies. The application stage
// layers the application files, the restricted user, and the image metadata
// on top of the dependency stage and exports the final OCI archive. Any
// stage failure aborts the build; nothing is retried.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	if len(opts.Platforms) == 0 {
		opts.Platforms = []string{"linux/" + goruntime.GOARCH}
	}
	if opts.CacheDir == "" {
		opts.CacheDir = paths.StageCache()
	}

	slog.Info("building manifest",
		"resource", opts.Resource,
		"base", opts.Manifest.Image.Base,
		"output", opts.Output,
		"platforms", opts.Platforms,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	return newPipeline(rt, opts).run(ctx)
}
