// Package render translates a manifest into an equivalent Dockerfile.
//
// The output is a plain build recipe any OCI builder can consume, useful
// for deploying to platforms that accept a Dockerfile but not an image
// archive. The rendered directives follow the daemon's own build order.
package render
