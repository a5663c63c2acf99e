package container

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xweng-opaida/agent-viewer/internal/domain/session"
	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/logging"
)

// LauncherConfig holds launch script configuration.
type LauncherConfig struct {
	ScriptPath string
	Timeout    time.Duration
}

// ScriptLauncher starts containers through the external launch script.
//
// The script is invoked as `bash <script> <debugPort> <vncPort> <display>`
// and must print a JSON descriptor with at least a containerId field on
// stdout. Anything else is a fatal error for that launch attempt.
type ScriptLauncher struct {
	cfg    LauncherConfig
	logger *logging.Logger
	run    runFunc
}

// NewScriptLauncher creates a launcher around the configured script.
func NewScriptLauncher(cfg LauncherConfig, logger *logging.Logger) *ScriptLauncher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &ScriptLauncher{
		cfg:    cfg,
		logger: logger.Named("launcher"),
		run:    runCommand,
	}
}

// Launch runs the launch script and decodes its descriptor.
func (l *ScriptLauncher) Launch(ctx context.Context, debugPort, vncPort int, display string) (*session.LaunchDescriptor, error) {
	if _, err := os.Stat(l.cfg.ScriptPath); err != nil {
		return nil, fmt.Errorf("launch script not found: %s", l.cfg.ScriptPath)
	}

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	l.logger.Debug("Running launch script",
		zap.String("script", l.cfg.ScriptPath),
		zap.Int("debug_port", debugPort),
		zap.Int("vnc_port", vncPort),
		zap.String("display", display),
	)

	stdout, stderr, err := l.run(ctx, "/bin/bash", l.cfg.ScriptPath,
		strconv.Itoa(debugPort), strconv.Itoa(vncPort), display)
	if err != nil {
		return nil, fmt.Errorf("launch script failed: %w: %s", err, strings.TrimSpace(stderr))
	}

	return ParseDescriptor(stdout, stderr)
}

// ParseDescriptor decodes the launcher's JSON output. stderr is carried
// into error messages only; it is never parsed.
func ParseDescriptor(stdout, stderr string) (*session.LaunchDescriptor, error) {
	var desc session.LaunchDescriptor
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &desc); err != nil {
		return nil, fmt.Errorf("failed to parse launcher output %q: %w: %s",
			strings.TrimSpace(stdout), err, strings.TrimSpace(stderr))
	}
	if desc.ContainerID == "" {
		return nil, fmt.Errorf("launcher did not return containerId: %s", strings.TrimSpace(stdout))
	}
	return &desc, nil
}
