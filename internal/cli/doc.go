// Parses flags and dispatches commands for the slipwayd daemon.
//
// The binary doubles as daemon and client: 'start' runs the server, while
// the lifecycle commands (build, render, up, down, status, shutdown) dial
// the daemon's Unix socket and perform one request-response exchange.
//
// Global flags:
//
//	-q, --quiet     Suppress informational output.
//	-d, --debug     Enable debug output.
//	-s, --socket    Unix socket path.
//
// Flags override build-time defaults set via linker flags. After parsing,
// the global logger is reconfigured to reflect the final level before the
// selected command runs.
package cli
