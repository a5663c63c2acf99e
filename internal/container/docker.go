package container

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/logging"
)

// runFunc executes an external command and returns its stdout and stderr.
// Injected in tests so parsing is exercised without a docker daemon.
type runFunc func(ctx context.Context, name string, args ...string) (string, string, error)

func runCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// CLIConfig holds docker CLI client configuration.
type CLIConfig struct {
	Binary         string
	CommandTimeout time.Duration
	StopTimeout    time.Duration
}

// CLI talks to the container runtime through the docker binary.
type CLI struct {
	cfg    CLIConfig
	logger *logging.Logger
	run    runFunc
}

// NewCLI creates a docker CLI client.
func NewCLI(cfg CLIConfig, logger *logging.Logger) *CLI {
	if cfg.Binary == "" {
		cfg.Binary = "docker"
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 5 * time.Second
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 10 * time.Second
	}
	return &CLI{
		cfg:    cfg,
		logger: logger.Named("docker"),
		run:    runCommand,
	}
}

// List returns IDs of running containers of the given image.
func (c *CLI) List(ctx context.Context, image string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CommandTimeout)
	defer cancel()

	stdout, stderr, err := c.run(ctx, c.cfg.Binary, "ps",
		"--filter", "ancestor="+image,
		"--filter", "status=running",
		"--format", "{{.ID}}",
	)
	if err != nil {
		return nil, fmt.Errorf("docker ps: %w: %s", err, strings.TrimSpace(stderr))
	}
	return splitIDs(stdout), nil
}

// IsRunning reports whether the container is currently running. An inspect
// failure (typically "no such container") reads as not running.
func (c *CLI) IsRunning(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CommandTimeout)
	defer cancel()

	stdout, stderr, err := c.run(ctx, c.cfg.Binary, "inspect", id, "--format", "{{.State.Running}}")
	if err != nil {
		c.logger.Debug("Inspect failed, treating container as stopped",
			zap.String("container_id", id), zap.String("stderr", strings.TrimSpace(stderr)))
		return false, nil
	}
	return strings.TrimSpace(stdout) == "true", nil
}

// Logs returns the container's combined log output.
func (c *CLI) Logs(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CommandTimeout)
	defer cancel()

	stdout, stderr, err := c.run(ctx, c.cfg.Binary, "logs", id)
	if err != nil {
		return "", fmt.Errorf("docker logs %s: %w: %s", id, err, strings.TrimSpace(stderr))
	}
	// x11vnc writes its startup banner to either stream depending on the
	// container's entrypoint wiring.
	return stdout + stderr, nil
}

// Stop stops the container.
func (c *CLI) Stop(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StopTimeout)
	defer cancel()

	_, stderr, err := c.run(ctx, c.cfg.Binary, "stop", id)
	if err != nil {
		return fmt.Errorf("docker stop %s: %w: %s", id, err, strings.TrimSpace(stderr))
	}
	return nil
}

// splitIDs parses docker's one-ID-per-line output, dropping blanks.
func splitIDs(out string) []string {
	ids := []string{}
	for _, line := range strings.Split(out, "\n") {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
