package internal

import (
	"fmt"
	"runtime"
	"strings"
)

// Name used for the daemon binary, socket, and log prefix.
const Name = "slipwayd"

const (

	// String to indicate an undefined variable
	defaultUndefined = "(undefined)"

	// String to indicate a local (non-pipeline) build
	defaultLocalBuild = "(local)"
)

var (
	version   = "" // Version number (e.g., "0.3.0")
	gitCommit = "" // Git commit hash (e.g., "a1b2c3d4")

	rawQuiet = "false" // Whether to enable quiet mode
	rawDebug = "false" // Whether to enable debug mode
)

// Returns the current version.
//
// If the version is not set, returns "(undefined)". A "v" or "V" prefix
// (e.g., "v1.0.0") is stripped.
func Version() string {
	v := strings.TrimSpace(version)
	if v == "" {
		return defaultUndefined
	}

	v = strings.ToLower(v)
	v = strings.TrimPrefix(v, "v")

	return v
}

// Returns the git commit hash, or "(undefined)" when unset.
func GitCommit() string {
	c := strings.TrimSpace(gitCommit)
	if c == "" {
		return defaultUndefined
	}
	return c
}

// Returns true if this is a local (non-pipeline) build.
//
// Pipeline builds set both the version and the commit hash via linker flags.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" || strings.TrimSpace(gitCommit) == ""
}

// Returns a detailed version string.
//
// If this is a local build, returns "(local)". Otherwise, returns a string
// formatted as "<version> <git-commit> [<arch>]".
func VersionString() string {
	if IsLocal() {
		return defaultLocalBuild
	}
	return fmt.Sprintf("%s %s [%s]", Version(), GitCommit(), runtime.GOARCH)
}
