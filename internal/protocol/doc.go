// Package protocol defines the wire format between the CLI and the daemon.
//
// Each exchange is a single newline-delimited JSON envelope carrying a
// command name and a command-specific payload. The daemon answers with an
// "ok" or "error" envelope whose payload holds the result.
package protocol
