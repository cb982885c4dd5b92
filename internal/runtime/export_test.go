package runtime

import (
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestApplyImageSpec(t *testing.T) {
	config := ocispec.Image{}
	config.Config.Env = []string{"PATH=/usr/bin"}
	config.Config.Cmd = []string{"python3"}

	applyImageSpec(&config, ImageSpec{
		Entrypoint:   []string{"streamlit", "run", "app.py"},
		Env:          []string{"HOME=/home/appuser", "PATH=/home/appuser/.local/bin:/usr/bin"},
		WorkingDir:   "/home/appuser/app",
		User:         "1000",
		ExposedPorts: []string{"8501/tcp"},
		Labels:       map[string]string{"sh.slipway.health.path": "/_stcore/health"},
	})

	if len(config.Config.Entrypoint) != 3 || config.Config.Entrypoint[0] != "streamlit" {
		t.Errorf("entrypoint = %v", config.Config.Entrypoint)
	}
	if config.Config.Cmd != nil {
		t.Errorf("cmd = %v, want nil after entrypoint override", config.Config.Cmd)
	}
	if config.Config.WorkingDir != "/home/appuser/app" {
		t.Errorf("workdir = %q", config.Config.WorkingDir)
	}
	if config.Config.User != "1000" {
		t.Errorf("user = %q", config.Config.User)
	}
	if _, ok := config.Config.ExposedPorts["8501/tcp"]; !ok {
		t.Errorf("exposed ports = %v", config.Config.ExposedPorts)
	}
	if config.Config.Labels["sh.slipway.health.path"] != "/_stcore/health" {
		t.Errorf("labels = %v", config.Config.Labels)
	}

	env := make(map[string]bool, len(config.Config.Env))
	for _, e := range config.Config.Env {
		env[e] = true
	}
	if !env["HOME=/home/appuser"] || !env["PATH=/home/appuser/.local/bin:/usr/bin"] {
		t.Errorf("env = %v", config.Config.Env)
	}
	if env["PATH=/usr/bin"] {
		t.Error("base PATH survived the override")
	}
}

func TestApplyImageSpecZeroValue(t *testing.T) {
	config := ocispec.Image{}
	config.Config.Env = []string{"PATH=/usr/bin"}
	config.Config.Cmd = []string{"python3"}
	config.Config.User = "root"

	applyImageSpec(&config, ImageSpec{})

	if len(config.Config.Env) != 1 || config.Config.Env[0] != "PATH=/usr/bin" {
		t.Errorf("env = %v, want untouched", config.Config.Env)
	}
	if len(config.Config.Cmd) != 1 {
		t.Errorf("cmd = %v, want untouched", config.Config.Cmd)
	}
	if config.Config.User != "root" {
		t.Errorf("user = %q, want untouched", config.Config.User)
	}
	if config.Config.ExposedPorts != nil || config.Config.Labels != nil {
		t.Error("ports/labels allocated for zero-value spec")
	}
}

func TestManifestGCLabels(t *testing.T) {
	m := ocispec.Manifest{
		Config: ocispec.Descriptor{
			Digest: digest.FromString("config"),
		},
		Layers: []ocispec.Descriptor{
			{Digest: digest.FromString("layer0")},
			{Digest: digest.FromString("layer1")},
		},
	}

	labels := manifestGCLabels(m)

	if got := labels["containerd.io/gc.ref.content.config"]; got != m.Config.Digest.String() {
		t.Fatalf("config label = %q, want %q", got, m.Config.Digest.String())
	}
	for i, layer := range m.Layers {
		key := "containerd.io/gc.ref.content.l." + string(rune('0'+i))
		if got := labels[key]; got != layer.Digest.String() {
			t.Fatalf("labels[%q] = %q, want %q", key, got, layer.Digest.String())
		}
	}
	if len(labels) != 3 {
		t.Fatalf("len(labels) = %d, want 3", len(labels))
	}
}

func TestIndexGCLabels(t *testing.T) {
	idx := ocispec.Index{
		Manifests: []ocispec.Descriptor{
			{Digest: digest.FromString("m0")},
			{Digest: digest.FromString("m1")},
		},
	}

	labels := indexGCLabels(idx)
	if len(labels) != 2 {
		t.Fatalf("len(labels) = %d, want 2", len(labels))
	}
	if labels["containerd.io/gc.ref.content.m.0"] != idx.Manifests[0].Digest.String() {
		t.Fatal("manifest 0 label mismatch")
	}
	if labels["containerd.io/gc.ref.content.m.1"] != idx.Manifests[1].Digest.String() {
		t.Fatal("manifest 1 label mismatch")
	}
}
