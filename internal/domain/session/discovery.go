package session

import (
	"context"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/logging"
	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/monitoring"
)

// vncPortPattern matches the x11vnc startup line in container logs. The
// log line is the authoritative source for the port a container actually
// bound, as opposed to the port the launch requested.
var vncPortPattern = regexp.MustCompile(`Listening for VNC connections on TCP port (\d+)`)

// ParseVNCPort extracts the VNC port from container log output.
func ParseVNCPort(logs string) (int, bool) {
	m := vncPortPattern.FindStringSubmatch(logs)
	if m == nil {
		return 0, false
	}
	port, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return port, true
}

// Discoverer rebuilds session state from the container runtime.
type Discoverer struct {
	runtime ContainerRuntime
	image   string
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewDiscoverer creates a discoverer for containers of the given image.
func NewDiscoverer(runtime ContainerRuntime, image string, logger *logging.Logger) *Discoverer {
	return &Discoverer{
		runtime: runtime,
		image:   image,
		logger:  logger.Named("discovery"),
	}
}

// WithMetrics adds metrics tracking to the discoverer.
func (d *Discoverer) WithMetrics(metrics *monitoring.Metrics) *Discoverer {
	d.metrics = metrics
	return d
}

// Discover returns the live container-to-port mapping.
//
// Derived entirely from the runtime, never from registry state. A failure
// on an individual container skips that container; a failure listing
// containers at all degrades to an empty result rather than an error, so
// callers treat "runtime unreachable" the same as "no sessions".
func (d *Discoverer) Discover(ctx context.Context) map[string]int {
	if d.metrics != nil {
		d.metrics.DiscoveryRuns.Inc()
	}

	discovered := make(map[string]int)

	ids, err := d.runtime.List(ctx, d.image)
	if err != nil {
		d.logger.Warn("Failed to list containers", zap.Error(err))
		return discovered
	}

	for _, id := range ids {
		// The listing is a point-in-time view; re-verify before trusting it.
		running, err := d.runtime.IsRunning(ctx, id)
		if err != nil {
			d.logger.Warn("Failed to inspect container, skipping",
				zap.String("container_id", short(id)), zap.Error(err))
			d.skip()
			continue
		}
		if !running {
			d.logger.Debug("Container stopped since listing, skipping",
				zap.String("container_id", short(id)))
			d.skip()
			continue
		}

		logs, err := d.runtime.Logs(ctx, id)
		if err != nil {
			d.logger.Warn("Failed to fetch container logs, skipping",
				zap.String("container_id", short(id)), zap.Error(err))
			d.skip()
			continue
		}

		port, ok := ParseVNCPort(logs)
		if !ok {
			d.logger.Warn("No VNC port in container logs, skipping",
				zap.String("container_id", short(id)))
			d.skip()
			continue
		}

		discovered[id] = port
		d.logger.Info("Discovered session",
			zap.String("container_id", short(id)), zap.Int("vnc_port", port))
	}

	return discovered
}

func (d *Discoverer) skip() {
	if d.metrics != nil {
		d.metrics.DiscoverySkipped.Inc()
	}
}

// short truncates container IDs for log output.
func short(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
