package build

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/slipway-sh/slipwayd/internal/runtime"
)

// Copies a single host file into the container at dest.
//
// A missing source surfaces through the tar pipe: writeFileToTar stats the
// file and its error closes the pipe, failing the CopyTo below.
func copyFile(ctx context.Context, ctr *runtime.Container, src, dest string) error {
	slog.Debug("copy", "src", src, "dest", dest)

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)
		writeErr := writeFileToTar(tw, src, filepath.Base(dest))
		tw.Close()
		pw.CloseWithError(writeErr)
	}()

	if err := ctr.CopyTo(ctx, pr, filepath.Dir(dest)); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	return nil
}

// Copies an in-memory byte slice into the container as a regular file.
func copyBytes(ctx context.Context, ctr *runtime.Container, data []byte, dest string) error {
	slog.Debug("copy", "bytes", len(data), "dest", dest)

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	header := &tar.Header{
		Name:    filepath.Base(dest),
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}
	tw.Close()

	if err := ctr.CopyTo(ctx, &buf, filepath.Dir(dest)); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	return nil
}

// Copies the full application context into the container at destDir.
//
// The walk excludes the build output directory when it sits inside the
// context, so prior build artifacts never end up baked into the image.
func copyContext(ctx context.Context, ctr *runtime.Container, contextDir, destDir, output string) error {
	slog.Debug("copy context", "src", contextDir, "dest", destDir)

	skip := excludedPath(contextDir, output)

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)
		writeErr := writeDirToTar(tw, contextDir, ".", skip)
		tw.Close()
		pw.CloseWithError(writeErr)
	}()

	if err := ctr.CopyTo(ctx, pr, destDir); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	return nil
}

// Resolves the context-relative path to skip during the context walk, or ""
// when the output directory lives outside the context.
func excludedPath(contextDir, output string) string {
	rel, err := filepath.Rel(contextDir, output)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return ""
	}
	return rel
}

// Writes a single file to a tar writer with the given archive name.
func writeFileToTar(tw *tar.Writer, hostPath, name string) error {
	info, err := os.Stat(hostPath)
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	f, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}

// Writes a directory tree to a tar writer rooted at the given archive prefix.
//
// Entries under the skip path (context-relative) are omitted.
func writeDirToTar(tw *tar.Writer, hostDir, prefix, skip string) error {
	return filepath.WalkDir(hostDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(hostDir, path)
		if err != nil {
			return err
		}

		if skip != "" && (relPath == skip || strings.HasPrefix(relPath, skip+string(filepath.Separator))) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		archivePath := filepath.ToSlash(filepath.Join(prefix, relPath))
		return writeTarEntry(tw, path, archivePath, d)
	})
}

// Writes a single file or directory entry to a tar writer.
func writeTarEntry(tw *tar.Writer, hostPath, archivePath string, d os.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = archivePath

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(hostPath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	}

	return nil
}
