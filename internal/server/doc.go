// Package server implements the slipwayd daemon.
//
// The daemon listens on a Unix domain socket for JSON-encoded commands
// from the slipway CLI. Each connection carries a single request-response
// exchange: the client sends a newline-delimited JSON envelope, the
// server dispatches the command, and writes the result back before
// closing the connection.
//
// Supported commands cover the application lifecycle: building a manifest
// into an image archive, rendering it as a Dockerfile, launching a built
// image, stopping a launched application, querying daemon status, and
// initiating shutdown. Builds are delegated to the build package, launches
// to the runtime package, and each launched application gets a health
// monitor from the health package.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    ContainerdAddress:   "/run/containerd/containerd.sock",
//	    ContainerdNamespace: "slipway",
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
