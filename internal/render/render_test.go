package render

import (
	"strings"
	"testing"

	"github.com/slipway-sh/slipwayd/internal/manifest"
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
PYTHONUNBUFFERED = "1"
LANG = "C.UTF-8"

[serve]
command = ["streamlit", "run", "app.py", "--server.port=8501", "--server.address=0.0.0.0"]
`

func renderSample(t *testing.T) string {
	t.Helper()
	m, err := manifest.Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("parsing manifest: %v", err)
	}
	out, err := Dockerfile(m)
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}
	return out
}

func TestDockerfileDirectives(t *testing.T) {
	out := renderSample(t)

	want := []string{
		"FROM docker.io/library/python:3.9-slim",
		"RUN apt-get update && apt-get install -y --no-install-recommends build-essential curl software-properties-common git && rm -rf /var/lib/apt/lists/*",
		"RUN pip3 install --no-cache-dir --upgrade pip",
		"COPY requirements.txt /requirements.txt",
		"RUN pip3 install --no-cache-dir -r /requirements.txt",
		"COPY app.py /",
		"COPY aedemobg.png /",
		"RUN useradd -m -u 1000 -d /home/appuser appuser",
		"USER 1000",
		"ENV HOME=/home/appuser",
		"ENV LANG=C.UTF-8",
		"ENV PYTHONUNBUFFERED=1",
		"WORKDIR /home/appuser/app",
		"COPY --chown=1000:1000 . /home/appuser/app",
		"EXPOSE 8501",
		"HEALTHCHECK --interval=30s --timeout=30s --start-period=5s --retries=3",
		"CMD curl --fail http://localhost:8501/_stcore/health || exit 1",
		`CMD ["streamlit","run","app.py","--server.port=8501","--server.address=0.0.0.0"]`,
	}

	pos := 0
	for _, line := range want {
		i := strings.Index(out[pos:], line)
		if i < 0 {
			t.Fatalf("missing or out-of-order directive %q in:\n%s", line, out)
		}
		pos += i + len(line)
	}
}

func TestDockerfileOmitsEmptySections(t *testing.T) {
	m, err := manifest.Parse([]byte(`
[image]
base = "docker.io/library/python:3.11-slim"

[app]
files = ["app.py"]

[serve]
command = ["python", "app.py"]
`))
	if err != nil {
		t.Fatalf("parsing manifest: %v", err)
	}

	out, err := Dockerfile(m)
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}

	if strings.Contains(out, "apt-get") {
		t.Fatal("rendered apt-get step without system packages")
	}
	if strings.Contains(out, "requirements.txt") {
		t.Fatal("rendered requirements steps without a requirements file")
	}
	if strings.Contains(out, "--upgrade pip") {
		t.Fatal("rendered pip upgrade step without the flag")
	}
}

func TestDockerfileDeterministic(t *testing.T) {
	a := renderSample(t)
	b := renderSample(t)
	if a != b {
		t.Fatal("output differs between renders of the same manifest")
	}
}
