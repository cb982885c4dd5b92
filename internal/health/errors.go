package health

import "errors"

var (
	ErrProbe     = errors.New("probe failed")
	ErrUnhealthy = errors.New("application did not become healthy")
)
