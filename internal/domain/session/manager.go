package session

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/logging"
	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/monitoring"
	"github.com/xweng-opaida/agent-viewer/internal/shared/netutil"
)

const (
	// portLogAttempts bounds how long a launch waits for the VNC server to
	// announce its port in the container logs.
	portLogAttempts = 8
	portLogInterval = 250 * time.Millisecond

	// scanWidth bounds the best-effort port scan fallback.
	scanWidth   = 20
	scanTimeout = 100 * time.Millisecond
)

// ManagerConfig holds launch-flow tunables.
type ManagerConfig struct {
	Image          string
	DebugPortStart int
	VNCPortStart   int
	DisplayStart   int
	DisplayEnd     int
}

// Manager drives the session lifecycle: launching new containers, stopping
// them, and reconciling the registry against the runtime's live state.
type Manager struct {
	registry   *Registry
	runtime    ContainerRuntime
	launcher   Launcher
	discoverer *Discoverer
	cfg        ManagerConfig
	logger     *logging.Logger
	metrics    *monitoring.Metrics

	// Injection points for tests.
	freePort      func(start, end int) (int, error)
	chooseDisplay func(ctx context.Context) string
	probePort     func(port int) bool
	sleep         func(d time.Duration)
}

// NewManager creates a session manager.
func NewManager(registry *Registry, runtime ContainerRuntime, launcher Launcher, discoverer *Discoverer, cfg ManagerConfig, logger *logging.Logger) *Manager {
	return &Manager{
		registry:   registry,
		runtime:    runtime,
		launcher:   launcher,
		discoverer: discoverer,
		cfg:        cfg,
		logger:     logger.Named("session"),
		freePort:   netutil.FreePort,
		chooseDisplay: func(context.Context) string {
			return fmt.Sprintf(":%d", cfg.DisplayStart)
		},
		probePort: func(port int) bool {
			conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), scanTimeout)
			if err != nil {
				return false
			}
			conn.Close()
			return true
		},
		sleep: time.Sleep,
	}
}

// WithMetrics adds metrics tracking to the manager.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithDisplayChooser overrides the default X display selection.
func (m *Manager) WithDisplayChooser(choose func(ctx context.Context) string) *Manager {
	m.chooseDisplay = choose
	return m
}

// Launch starts a new desktop container and registers its session.
//
// On any failure nothing is registered and the error carries the captured
// diagnostics; there is no half-launched state in the registry.
func (m *Manager) Launch(ctx context.Context) (*Session, error) {
	debugPort, err := m.freePort(m.cfg.DebugPortStart, 0)
	if err != nil {
		return nil, m.launchFailed(fmt.Errorf("debug port allocation: %w", err))
	}
	vncPort, err := m.freePort(m.cfg.VNCPortStart, 0)
	if err != nil {
		return nil, m.launchFailed(fmt.Errorf("vnc port allocation: %w", err))
	}
	display := m.chooseDisplay(ctx)

	m.logger.Info("Launching container",
		zap.Int("debug_port", debugPort),
		zap.Int("vnc_port", vncPort),
		zap.String("display", display),
	)

	desc, err := m.launcher.Launch(ctx, debugPort, vncPort, display)
	if err != nil {
		return nil, m.launchFailed(fmt.Errorf("launcher: %w", err))
	}

	actualPort := m.resolveVNCPort(ctx, desc.ContainerID, vncPort)

	m.registry.Upsert(desc.ContainerID, actualPort)
	m.syncGauge()
	if m.metrics != nil {
		m.metrics.SessionsLaunched.Inc()
	}

	m.logger.Info("Session started",
		zap.String("container_id", short(desc.ContainerID)),
		zap.Int("vnc_port", actualPort),
	)

	return &Session{
		ID:         desc.ContainerID,
		VNCPort:    actualPort,
		DebugPort:  debugPort,
		Display:    display,
		WSEndpoint: desc.WSEndpoint,
	}, nil
}

// resolveVNCPort determines the port the container's VNC server actually
// bound. The container log line is authoritative; the port scan is a
// best-effort fallback that is ambiguous under concurrent launches, so a
// scan hit is only trusted when no tracked session already owns the port.
// Failing both, the requested port is assumed.
func (m *Manager) resolveVNCPort(ctx context.Context, id string, requested int) int {
	for attempt := 0; attempt < portLogAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		logs, err := m.runtime.Logs(ctx, id)
		if err == nil {
			if port, ok := ParseVNCPort(logs); ok {
				m.logger.Debug("VNC port from container logs", zap.Int("port", port))
				return port
			}
		}
		m.sleep(portLogInterval)
	}

	for port := m.cfg.VNCPortStart; port < m.cfg.VNCPortStart+scanWidth; port++ {
		if m.registry.HasPort(port) {
			continue
		}
		if m.probePort(port) {
			m.logger.Debug("VNC port from scan", zap.Int("port", port))
			return port
		}
	}

	m.logger.Warn("Falling back to requested VNC port", zap.Int("port", requested))
	return requested
}

// Stop stops the container and removes it from the registry.
//
// The registry entry is removed even when the container was already gone
// or the stop itself failed: a dead entry must never keep routing bridges.
func (m *Manager) Stop(ctx context.Context, id string) {
	running, err := m.runtime.IsRunning(ctx, id)
	if err != nil {
		m.logger.Warn("Failed to inspect container before stop",
			zap.String("container_id", short(id)), zap.Error(err))
	}
	if running {
		if err := m.runtime.Stop(ctx, id); err != nil {
			m.logger.Warn("Failed to stop container",
				zap.String("container_id", short(id)), zap.Error(err))
		}
	}
	m.registry.Remove(id)
	m.syncGauge()
	m.logger.Info("Session removed", zap.String("container_id", short(id)))
}

// Cleanup removes registry entries whose containers are no longer running
// and returns the removed IDs.
func (m *Manager) Cleanup(ctx context.Context) ([]string, error) {
	ids, err := m.runtime.List(ctx, m.cfg.Image)
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}

	running := make(map[string]bool, len(ids))
	for _, id := range ids {
		running[id] = true
	}

	removed := []string{}
	for id := range m.registry.Snapshot() {
		if !running[id] {
			m.registry.Remove(id)
			removed = append(removed, id)
			m.logger.Info("Reclaimed stopped session", zap.String("container_id", short(id)))
		}
	}

	if m.metrics != nil {
		m.metrics.SessionsReclaimed.Add(float64(len(removed)))
	}
	m.syncGauge()
	return removed, nil
}

// Refresh replaces the registry contents with freshly discovered state.
func (m *Manager) Refresh(ctx context.Context) map[string]int {
	discovered := m.discoverer.Discover(ctx)
	m.registry.ReplaceAll(discovered)
	m.syncGauge()
	return discovered
}

func (m *Manager) launchFailed(err error) error {
	if m.metrics != nil {
		m.metrics.LaunchFailures.Inc()
	}
	m.logger.Error("Launch failed", zap.Error(err))
	return err
}

func (m *Manager) syncGauge() {
	if m.metrics != nil {
		m.metrics.SessionsActive.Set(float64(m.registry.Len()))
	}
}
