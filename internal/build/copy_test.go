package build

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestExcludedPath(t *testing.T) {
	tests := []struct {
		name       string
		contextDir string
		output     string
		want       string
	}{
		{
			name:       "output inside context",
			contextDir: "/src/app",
			output:     "/src/app/dist",
			want:       "dist",
		},
		{
			name:       "nested output",
			contextDir: "/src/app",
			output:     "/src/app/build/out",
			want:       filepath.Join("build", "out"),
		},
		{
			name:       "output outside context",
			contextDir: "/src/app",
			output:     "/tmp/dist",
			want:       "",
		},
		{
			name:       "output is sibling",
			contextDir: "/src/app",
			output:     "/src/dist",
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := excludedPath(tt.contextDir, tt.output); got != tt.want {
				t.Fatalf("excludedPath(%q, %q) = %q, want %q", tt.contextDir, tt.output, got, tt.want)
			}
		})
	}
}

func TestWriteDirToTarSkipsOutput(t *testing.T) {
	dir := t.TempDir()

	mustWriteFile(t, filepath.Join(dir, "app.py"), "import streamlit")
	mustWriteFile(t, filepath.Join(dir, "logo.png"), "png")
	mustWriteFile(t, filepath.Join(dir, "dist", "image.tar"), "stale artifact")

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := writeDirToTar(tw, dir, ".", "dist"); err != nil {
		t.Fatalf("writeDirToTar: %v", err)
	}
	tw.Close()

	names := tarNames(t, &buf)
	if !names["app.py"] || !names["logo.png"] {
		t.Fatalf("archive missing context files: %v", names)
	}
	for name := range names {
		if name == "dist" || filepath.Dir(name) == "dist" {
			t.Fatalf("archive contains excluded entry %q", name)
		}
	}
}

func TestWriteFileToTar(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "requirements.txt")
	mustWriteFile(t, src, "streamlit\n")

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := writeFileToTar(tw, src, "requirements.txt"); err != nil {
		t.Fatalf("writeFileToTar: %v", err)
	}
	tw.Close()

	tr := tar.NewReader(&buf)
	header, err := tr.Next()
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	if header.Name != "requirements.txt" {
		t.Fatalf("entry name = %q, want requirements.txt", header.Name)
	}

	content, err := io.ReadAll(tr)
	if err != nil {
		t.Fatalf("reading entry: %v", err)
	}
	if string(content) != "streamlit\n" {
		t.Fatalf("entry content = %q", content)
	}
}

func TestWriteFileToTarMissingSource(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	defer tw.Close()

	err := writeFileToTar(tw, filepath.Join(t.TempDir(), "absent.txt"), "absent.txt")
	if err == nil {
		t.Fatal("expected error for missing source file")
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func tarNames(t *testing.T, r io.Reader) map[string]bool {
	t.Helper()
	names := make(map[string]bool)
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return names
		}
		if err != nil {
			t.Fatalf("reading archive: %v", err)
		}
		names[filepath.Clean(header.Name)] = true
	}
}
