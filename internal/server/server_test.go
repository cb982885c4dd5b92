package server

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/slipway-sh/slipwayd/internal/manifest"
)

func TestContextWithDisconnect(t *testing.T) {
	pr, pw := io.Pipe()

	ctx, cancel := contextWithDisconnect(context.Background(), pr)
	defer cancel()

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before the peer closed")
	case <-time.After(20 * time.Millisecond):
	}

	pw.Close()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after the peer closed")
	}
}

func TestResourceName(t *testing.T) {
	m := &manifest.Manifest{Dir: "/home/user/projects/demo-app"}
	if got := resourceName(m); got != "demo-app" {
		t.Fatalf("resourceName = %q, want demo-app", got)
	}
}

func TestContainerName(t *testing.T) {
	got := containerName("3f2a9b84-0000-0000-0000-000000000000")
	if got != "slipway-3f2a9b84" {
		t.Fatalf("containerName = %q", got)
	}
}
