package runtime

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
)

// Creates a directory inside the container, including parents.
func (c *Container) MkdirAll(ctx context.Context, path string) error {
	return c.mustExec(ctx, "mkdir", nil, nil, "mkdir", "-p", path)
}

// Copies a tar stream into the container's filesystem.
//
// The contents of r are extracted into destDir by piping them to "tar xf - -C
// destDir" inside the container.
func (c *Container) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	return c.mustExec(ctx, "tar extract", r, nil, "tar", "xf", "-", "-C", destDir)
}

// Copies a path from the container's filesystem as a tar stream.
//
// The file or directory at path is archived by running "tar cf - -C <dir>
// <base>" inside the container and streaming the output to w.
func (c *Container) CopyFrom(ctx context.Context, w io.Writer, path string) error {
	return c.mustExec(ctx, "tar archive", nil, w, "tar", "cf", "-", "-C", filepath.Dir(path), filepath.Base(path))
}

// Recursively changes ownership of a path inside the container.
//
// Used after copying files on behalf of the restricted user, the moral
// equivalent of a Dockerfile COPY --chown.
func (c *Container) Chown(ctx context.Context, uid int, path string) error {
	owner := fmt.Sprintf("%d:%d", uid, uid)
	return c.mustExec(ctx, "chown", nil, nil, "chown", "-R", owner, path)
}

// Helper method that runs a command inside the container, returning an error
// that includes desc if the process exits with a non-zero code.
func (c *Container) mustExec(ctx context.Context, desc string, stdin io.Reader, stdout io.Writer, args ...string) error {
	exitCode, stderr, err := c.execCommand(ctx, stdin, stdout, ExecOpts{}, args...)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return fmt.Errorf("%w: %s failed with exit code %d (%s)", ErrRuntime, desc, exitCode, stderr)
	}
	return nil
}
