package protocol

// Identifies a request or response on the daemon socket.
type Command string

// Requests sent by the CLI.
const (
	CmdBuild    Command = "build"
	CmdRender   Command = "render"
	CmdUp       Command = "up"
	CmdDown     Command = "down"
	CmdStatus   Command = "status"
	CmdShutdown Command = "shutdown"
)

// Responses sent by the daemon.
const (
	CmdOK    Command = "ok"
	CmdError Command = "error"
)
