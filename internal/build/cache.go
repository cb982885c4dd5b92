package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/slipway-sh/slipwayd/internal/manifest"
	"github.com/slipway-sh/slipwayd/internal/paths"
	"github.com/slipway-sh/slipwayd/internal/runtime"
)

// Field separator for the digest input. NUL cannot appear in any of the
// encoded values, so distinct inputs can never collide by concatenation.
const digestSep = "\x00"

// Content-addressed store for dependency-stage archives.
//
// Each entry is a directory named after the stage digest, holding the OCI
// archive exported by the dependency stage. Lookup is a plain stat; there
// is no eviction. Entries appear whole or not at all: the export writes
// into a private staging directory and commit renames the finished archive
// into the entry, so a failed or cancelled export can never leave a
// truncated archive where lookup would find it. The rename also makes
// concurrent same-key builds safe; the last commit wins with an identical
// archive.
type stageCache struct {
	dir string
}

// Creates a cache rooted at the given directory.
func newStageCache(dir string) *stageCache {
	return &stageCache{dir: dir}
}

// Returns the archive path for a digest and whether it exists.
func (c *stageCache) lookup(key digest.Digest) (string, bool) {
	path := c.archivePath(key)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Creates a staging directory for an in-progress export.
//
// The directory lives under the cache root so the later rename never
// crosses a filesystem boundary. The caller removes it when done.
func (c *stageCache) stage() (string, error) {
	if err := os.MkdirAll(c.dir, paths.DefaultDirMode); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	dir, err := os.MkdirTemp(c.dir, "stage-")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	return dir, nil
}

// Publishes a staged archive under its digest, returning the final path.
//
// The rename is the commit point: until it happens the entry does not
// exist, and after it the archive is complete.
func (c *stageCache) commit(key digest.Digest, stagingDir string) (string, error) {
	if err := os.MkdirAll(c.entryDir(key), paths.DefaultDirMode); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	archive := c.archivePath(key)
	if err := os.Rename(filepath.Join(stagingDir, runtime.ExportFilename), archive); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	return archive, nil
}

// Returns the archive path for a digest.
func (c *stageCache) archivePath(key digest.Digest) string {
	return filepath.Join(c.entryDir(key), runtime.ExportFilename)
}

// Returns the entry directory for a digest.
//
// The digest's algorithm separator is flattened so the entry is a single
// path element (e.g. "sha256-ab12...").
func (c *stageCache) entryDir(key digest.Digest) string {
	return filepath.Join(c.dir, strings.ReplaceAll(key.String(), ":", "-"))
}

// Computes the dependency-stage digest for a manifest and platform.
//
// The digest covers exactly the inputs that influence the stage's content:
// the base image reference, the OS package list in declaration order, the
// pip upgrade flag, the requirements file content, and the target platform.
// Application files, env vars, and serve settings are excluded; changing
// them must not invalidate the cached stage.
func depsDigest(m *manifest.Manifest, requirements []byte, platform string) digest.Digest {
	var b strings.Builder

	b.WriteString("deps/v1")
	b.WriteString(digestSep)
	b.WriteString(m.Image.Base)
	b.WriteString(digestSep)
	b.WriteString(platform)
	b.WriteString(digestSep)

	for _, pkg := range m.System.Packages {
		b.WriteString(pkg)
		b.WriteString(digestSep)
	}

	if m.Python.UpgradePip {
		b.WriteString("upgrade-pip")
	}
	b.WriteString(digestSep)

	// The requirements content is digested rather than embedded so the
	// builder input stays bounded.
	b.WriteString(digest.FromBytes(requirements).String())

	return digest.FromString(b.String())
}
