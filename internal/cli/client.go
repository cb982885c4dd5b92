package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/slipway-sh/slipwayd/internal/paths"
	"github.com/slipway-sh/slipwayd/internal/protocol"
)

var ErrDaemon = errors.New("daemon error")

// Returns the daemon socket path, honoring the --socket override.
func socketPath() string {
	if RootCmd.Socket != "" {
		return RootCmd.Socket
	}
	return paths.Socket()
}

// Performs one request-response exchange with the daemon.
//
// Dials the Unix socket, writes a newline-delimited envelope, and reads the
// single-line response. An error response from the daemon is surfaced as an
// [ErrDaemon].
func exchange(cmd protocol.Command, payload any) (json.RawMessage, error) {
	conn, err := net.Dial("unix", socketPath())
	if err != nil {
		return nil, fmt.Errorf("%w: is the daemon running? %w", ErrDaemon, err)
	}
	defer conn.Close()

	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		return nil, err
	}
	data = append(data, byte(10))

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemon, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes(byte(10))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemon, err)
	}

	env, raw, err := protocol.Decode(line)
	if err != nil {
		return nil, err
	}

	if env.Command == protocol.CmdError {
		result, err := protocol.DecodePayload[protocol.ErrorResult](raw)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrDaemon, result.Message)
	}

	return raw, nil
}

// Performs an exchange and decodes the response payload as T.
func request[T any](cmd protocol.Command, payload any) (*T, error) {
	raw, err := exchange(cmd, payload)
	if err != nil {
		return nil, err
	}
	return protocol.DecodePayload[T](raw)
}
