package protocol

// Health of a launched application as observed by the daemon's prober.
type HealthState string

const (
	HealthStarting  HealthState = "starting"
	HealthHealthy   HealthState = "healthy"
	HealthUnhealthy HealthState = "unhealthy"
)

// Lifecycle state of a container.
type ContainerState string

const (
	ContainerNotCreated ContainerState = "not-created"
	ContainerRunning    ContainerState = "running"
	ContainerStopped    ContainerState = "stopped"
)

// Asks the daemon to build an image from a manifest.
type BuildRequest struct {
	Manifest  string   `json:"manifest"`            // Path to the manifest file.
	Output    string   `json:"output"`              // Directory for the exported image archive.
	Platforms []string `json:"platforms,omitempty"` // Target platforms. Empty means the host platform.
}

// Reports a completed build.
type BuildResult struct {
	Output     string `json:"output"`      // Directory containing the exported image.
	DepsCached bool   `json:"deps_cached"` // Whether the dependency stage was reused from cache.
}

// Asks the daemon to render a manifest as a Dockerfile.
type RenderRequest struct {
	Manifest string `json:"manifest"` // Path to the manifest file.
}

// Carries the rendered Dockerfile text.
type RenderResult struct {
	Dockerfile string `json:"dockerfile"`
}

// Asks the daemon to launch a previously built image.
type UpRequest struct {
	Manifest string `json:"manifest"`       // Path to the manifest file.
	Archive  string `json:"archive"`        // Path to the OCI archive produced by build.
	Wait     bool   `json:"wait,omitempty"` // Block until the application reports healthy.
}

// Reports a launched application.
type UpResult struct {
	ID   string `json:"id"`   // Launch identifier for subsequent down/status calls.
	Port int    `json:"port"` // Host port the server is bound to.
}

// Asks the daemon to stop a launched application.
type DownRequest struct {
	ID string `json:"id"`
}

// Snapshot of one launched application.
type AppStatus struct {
	ID        string         `json:"id"`
	Image     string         `json:"image"`
	Port      int            `json:"port"`
	Container ContainerState `json:"container"`
	Health    HealthState    `json:"health"`
	Failures  int            `json:"failures"`             // Consecutive probe failures.
	LastError string         `json:"last_error,omitempty"` // Message from the most recent failed probe.
}

// Reports daemon status.
type StatusResult struct {
	Running bool        `json:"running"`
	Version string      `json:"version"`
	Pid     int         `json:"pid"`
	Uptime  string      `json:"uptime"`
	Builds  int         `json:"builds"`
	Apps    []AppStatus `json:"apps,omitempty"`
}

// Carries an error message back to the client.
type ErrorResult struct {
	Message string `json:"message"`
}
