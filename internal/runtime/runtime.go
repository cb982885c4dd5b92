package runtime

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"
	"syscall"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
)

const (

	// Snapshotter used for container filesystems. fuse-overlayfs provides
	// overlay semantics without requiring root privileges (no mount(2)),
	// allowing the daemon to run as a regular user.
	snapshotter = "fuse-overlayfs"

	// OCI runtime shim for running containers.
	ociRuntime = "io.containerd.runc.v2"
)

// Manages the containerd client and provides image and container operations.
type Runtime struct {
	client *containerd.Client // Containerd client for managing containers and images.
}

// Creates a runtime connected to the containerd socket at the given address.
//
// The namespace scopes all containerd operations to a single tenant. The
// runtime must be closed when no longer needed.
func New(address, namespace string) (*Runtime, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	return &Runtime{client: client}, nil
}

// Closes the containerd client connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Pulls an image from a registry and unpacks it for the target platform.
//
// The pull is skipped when the reference is already present in the image
// store with unpacked layers, so repeated builds against a pinned base tag
// do not touch the network.
func (rt *Runtime) Pull(ctx context.Context, ref, platform string) error {
	p, err := platforms.Parse(platform)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if img, err := rt.resolveImage(ctx, ref, platform); err == nil {
		if unpacked, err := img.IsUnpacked(ctx, snapshotter); err == nil && unpacked {
			slog.Debug("base image already present", "ref", ref)
			return nil
		}
	}

	slog.Info("pulling base image", "ref", ref, "platform", platform)

	_, err = rt.client.Pull(ctx, ref,
		containerd.WithPlatformMatcher(platforms.Only(p)),
		containerd.WithPullUnpack,
		containerd.WithPullSnapshotter(snapshotter),
	)
	if err != nil {
		return fmt.Errorf("%w: pull %s: %w", ErrRuntime, ref, err)
	}

	return nil
}

// Starts a build container from an image reference already present in the
// image store (pulled from a registry or imported from an archive).
//
// The container runs a long-lived task (sleep infinity) so that subsequent
// Exec calls have a running process to attach to. Any stale container with
// the same ID is removed first.
func (rt *Runtime) StartFromRef(ctx context.Context, ref, id, platform string) (*Container, error) {
	c := &Container{
		client:   rt.client,
		id:       id,
		image:    ref,
		platform: platform,
	}

	c.remove(ctx)

	image, err := rt.resolveImage(ctx, ref, platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	ctr, err := c.create(ctx, image, buildProcess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := c.startTask(ctx, ctr); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Debug("build container started", "id", id, "image", ref)
	return c, nil
}

// Imports an OCI archive, unpacks it for the target platform, and starts a
// build container from it.
//
// The archive is tagged with a deterministic name derived from its path so
// repeated imports of the same archive reuse the stored image record.
func (rt *Runtime) StartFromArchive(ctx context.Context, path, id, platform string) (*Container, error) {
	tag, err := rt.ImportArchive(ctx, path, platform)
	if err != nil {
		return nil, err
	}
	return rt.StartFromRef(ctx, tag, id, platform)
}

// Imports an OCI archive into the content store and unpacks it.
//
// Returns the deterministic tag the archive was stored under.
func (rt *Runtime) ImportArchive(ctx context.Context, path, platform string) (string, error) {
	tag := archiveTag(path)

	source, err := rt.importArchive(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := rt.tagImage(ctx, source, tag); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := rt.unpackImage(ctx, tag, platform); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Debug("archive imported", "path", path, "tag", tag)
	return tag, nil
}

// Launches an application container from an imported image tag.
//
// Unlike build containers, the task runs the image's own entrypoint: the
// process starts in the image's working directory, under the image's user,
// with the image's environment. The container shares the host network
// namespace, so the port the process binds is bound on the host. The task's
// exit status is observable via [Container.WaitExit].
func (rt *Runtime) Launch(ctx context.Context, tag, id string) (*Container, error) {
	platform := defaultPlatform()

	c := &Container{
		client:   rt.client,
		id:       id,
		image:    tag,
		platform: platform,
	}

	c.remove(ctx)

	image, err := rt.resolveImage(ctx, tag, platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	ctr, err := c.create(ctx, image, imageProcess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := c.startTask(ctx, ctr); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Info("application launched", "id", id, "image", tag)
	return c, nil
}

// Removes an image and all containers created from it.
//
// Containers are discovered by querying containerd for records whose image
// field matches the tag. Each container's task is killed before the container
// and its snapshot are deleted.
func (rt *Runtime) DestroyImage(ctx context.Context, tag string) error {
	ctrs, err := rt.client.Containers(ctx, fmt.Sprintf("image==%s", tag))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	for _, ctr := range ctrs {
		if task, taskErr := ctr.Task(ctx, nil); taskErr == nil {
			task.Kill(ctx, syscall.SIGKILL)
			task.Delete(ctx, containerd.WithProcessKill)
		}
		if err := ctr.Delete(ctx, containerd.WithSnapshotCleanup); err != nil && !errdefs.IsNotFound(err) {
			return fmt.Errorf("%w: %w", ErrRuntime, err)
		}
	}

	if err := rt.client.ImageService().Delete(ctx, tag); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Debug("image destroyed", "tag", tag)
	return nil
}

// Imports an OCI archive into the content store.
//
// The archive must contain exactly one image. Multi-platform archives
// are supported (single OCI index with per-platform manifests).
func (rt *Runtime) importArchive(ctx context.Context, path string) (images.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return images.Image{}, err
	}
	defer fh.Close()

	imported, err := rt.client.Import(ctx, fh)
	if err != nil {
		return images.Image{}, err
	}

	if len(imported) == 0 {
		return images.Image{}, ErrEmptyArchive
	} else if len(imported) > 1 {
		return images.Image{}, ErrMultipleImages
	}

	return imported[0], nil
}

// Tags an imported image under a deterministic name.
//
// Updates the tag if it already exists. Removes the source record when
// its name differs from the tag to avoid duplicates.
func (rt *Runtime) tagImage(ctx context.Context, source images.Image, tag string) error {
	is := rt.client.ImageService()

	img := images.Image{
		Name:   tag,
		Target: source.Target,
	}

	if _, err := is.Create(ctx, img); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return err
		}
		if _, err := is.Update(ctx, img, "target"); err != nil {
			return err
		}
	}

	if source.Name != tag {
		_ = is.Delete(ctx, source.Name)
	}

	return nil
}

// Unpacks the image layers for the target platform into the snapshotter.
func (rt *Runtime) unpackImage(ctx context.Context, tag, platform string) error {
	image, err := rt.resolveImage(ctx, tag, platform)
	if err != nil {
		return err
	}

	return image.Unpack(ctx, snapshotter)
}

// Looks up an image and selects the manifest for the given platform.
func (rt *Runtime) resolveImage(ctx context.Context, ref, platform string) (containerd.Image, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, err
	}

	img, err := rt.client.ImageService().Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	return containerd.NewImageWithPlatform(rt.client, img, platforms.Only(p)), nil
}

// Returns a handle for an existing container.
//
// The container is not loaded or verified; the handle is a lightweight
// reference that resolves the container lazily on subsequent calls.
func (rt *Runtime) Container(id string) *Container {
	return &Container{
		client:   rt.client,
		id:       id,
		platform: defaultPlatform(),
	}
}

// Produces a containerd image tag from an archive path.
//
// The path is hashed to produce a tag that is always valid for OCI references
// regardless of which characters the path contains.
func archiveTag(path string) string {
	h := sha256.Sum256([]byte(path))
	return fmt.Sprintf("import/%s:latest", hex.EncodeToString(h[:]))
}

// Returns the default OCI platform for the host architecture.
func defaultPlatform() string {
	return "linux/" + goruntime.GOARCH
}
