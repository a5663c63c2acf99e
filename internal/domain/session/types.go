package session

import "context"

// Session describes one launched desktop container.
type Session struct {
	ID         string `json:"containerId"`
	VNCPort    int    `json:"vncPort"`
	DebugPort  int    `json:"debugPort,omitempty"`
	Display    string `json:"display,omitempty"`
	WSEndpoint string `json:"wsEndpoint,omitempty"`
}

// LaunchDescriptor is the structured result the external launcher prints.
type LaunchDescriptor struct {
	ContainerID string `json:"containerId"`
	WSEndpoint  string `json:"wsEndpoint"`
}

// ContainerRuntime is the slice of the execution-unit manager this package
// depends on. Implemented by container.CLI; faked in tests.
type ContainerRuntime interface {
	// List returns IDs of running containers of the given image.
	List(ctx context.Context, image string) ([]string, error)
	// IsRunning reports whether the container is currently running.
	IsRunning(ctx context.Context, id string) (bool, error)
	// Logs returns the container's log output since start.
	Logs(ctx context.Context, id string) (string, error)
	// Stop stops the container.
	Stop(ctx context.Context, id string) error
}

// Launcher starts a new desktop container and reports its descriptor.
type Launcher interface {
	Launch(ctx context.Context, debugPort, vncPort int, display string) (*LaunchDescriptor, error)
}
