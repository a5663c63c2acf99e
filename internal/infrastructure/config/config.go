package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Bridge    BridgeConfig
	Container ContainerConfig
	Ports     PortConfig
	Logging   LogConfig
}

// ServerConfig holds HTTP API server configuration.
type ServerConfig struct {
	Host      string `envconfig:"API_HOST" default:"127.0.0.1"`
	Port      string `envconfig:"API_PORT" default:"8123"`
	StaticDir string `envconfig:"STATIC_DIR" default:"./web"`
}

// BridgeConfig holds the WebSocket bridge listener configuration.
//
// The bridge runs on its own listener so a slow relay can never block
// API requests, and vice versa.
type BridgeConfig struct {
	Host string `envconfig:"BRIDGE_HOST" default:"127.0.0.1"`
	Port string `envconfig:"BRIDGE_PORT" default:"8124"`
}

// ContainerConfig holds execution-unit manager configuration.
type ContainerConfig struct {
	Image          string        `envconfig:"CONTAINER_IMAGE" default:"chrome-gui"`
	DockerBin      string        `envconfig:"DOCKER_BIN" default:"docker"`
	LaunchScript   string        `envconfig:"LAUNCH_SCRIPT" default:"/usr/local/bin/run-chrome-gui.sh"`
	CommandTimeout time.Duration `envconfig:"DOCKER_TIMEOUT" default:"5s"`
	StopTimeout    time.Duration `envconfig:"DOCKER_STOP_TIMEOUT" default:"10s"`
	LaunchTimeout  time.Duration `envconfig:"LAUNCH_TIMEOUT" default:"30s"`
}

// PortConfig holds port and display allocation preferences.
type PortConfig struct {
	DebugStart   int `envconfig:"DEBUG_PORT_START" default:"9222"`
	VNCStart     int `envconfig:"VNC_PORT_START" default:"5900"`
	DisplayStart int `envconfig:"DISPLAY_START" default:"99"`
	DisplayEnd   int `envconfig:"DISPLAY_END" default:"199"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      "8123",
			StaticDir: "./web",
		},
		Bridge: BridgeConfig{
			Host: "127.0.0.1",
			Port: "8124",
		},
		Container: ContainerConfig{
			Image:          "chrome-gui",
			DockerBin:      "docker",
			LaunchScript:   "/usr/local/bin/run-chrome-gui.sh",
			CommandTimeout: 5 * time.Second,
			StopTimeout:    10 * time.Second,
			LaunchTimeout:  30 * time.Second,
		},
		Ports: PortConfig{
			DebugStart:   9222,
			VNCStart:     5900,
			DisplayStart: 99,
			DisplayEnd:   199,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
