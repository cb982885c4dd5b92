// Package runtime manages containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides registry pulls,
// OCI archive import, and container creation. Images are unpacked for the
// target platform and used to create containers with overlayfs snapshots.
//
// Containers come in two flavors. Build containers run a long-lived
// placeholder task that build steps attach exec processes to; files are
// copied in and out as tar streams and the final filesystem state can be
// committed and exported as a new OCI archive with rewritten config
// metadata (entrypoint, env, user, working directory, exposed ports).
// Launched containers run the image's own entrypoint in the host network
// namespace, so the port the server binds is reachable on the host.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "slipway")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartFromRef(ctx, "docker.io/library/python:3.9-slim", "build-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "pip3 install -r requirements.txt", runtime.ExecOpts{})
//	if err != nil {
//	    return err
//	}
//
//	err = ctr.Export(ctx, "dist", runtime.ImageSpec{
//	    Entrypoint: []string{"streamlit", "run", "app.py"},
//	    User:       "1000",
//	})
package runtime
