package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8123", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Bridge config
	assert.Equal(t, "8124", cfg.Bridge.Port)
	assert.Equal(t, "127.0.0.1", cfg.Bridge.Host)

	// Container config
	assert.Equal(t, "chrome-gui", cfg.Container.Image)
	assert.Equal(t, "docker", cfg.Container.DockerBin)
	assert.Equal(t, 5*time.Second, cfg.Container.CommandTimeout)
	assert.Equal(t, 10*time.Second, cfg.Container.StopTimeout)

	// Port config
	assert.Equal(t, 9222, cfg.Ports.DebugStart)
	assert.Equal(t, 5900, cfg.Ports.VNCStart)
	assert.Equal(t, 99, cfg.Ports.DisplayStart)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8123", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"API_PORT":        "9000",
		"BRIDGE_PORT":     "9001",
		"CONTAINER_IMAGE": "firefox-gui",
		"VNC_PORT_START":  "6000",
		"DOCKER_TIMEOUT":  "2s",
		"LOG_LEVEL":       "debug",
		"LOG_DEV":         "true",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "9001", cfg.Bridge.Port)
	assert.Equal(t, "firefox-gui", cfg.Container.Image)
	assert.Equal(t, 6000, cfg.Ports.VNCStart)
	assert.Equal(t, 2*time.Second, cfg.Container.CommandTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}
