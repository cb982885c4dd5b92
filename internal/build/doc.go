// Package build turns an application manifest into a runnable OCI image.
//
// The pipeline builds two stages per target platform. The dependency stage
// pulls the base image, installs OS packages, and installs the Python
// requirements; its exported archive is cached under a content digest so
// that edits to application files never trigger a reinstall. The
// application stage imports that archive, lays down the application files,
// creates the restricted user, and exports the final image with its launch
// metadata (entrypoint, env, workdir, user, exposed port) stamped into the
// image config.
//
// Container operations are delegated to the runtime package. Step state
// (environment variables, working directory, user) accumulates across
// steps within a stage, the way directives accumulate in a Dockerfile.
//
// Example usage:
//
//	result, err := build.Run(ctx, rt, build.Options{
//	    Manifest: m,
//	    Resource: "my-app",
//	    Output:   "dist",
//	})
//	if err != nil {
//	    return err
//	}
package build
