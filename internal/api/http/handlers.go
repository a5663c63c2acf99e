package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xweng-opaida/agent-viewer/internal/domain/session"
	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/logging"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	manager  *session.Manager
	registry *session.Registry
	logger   *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(manager *session.Manager, registry *session.Registry, logger *logging.Logger) *Handlers {
	return &Handlers{
		manager:  manager,
		registry: registry,
		logger:   logger.Named("api"),
	}
}

// Health handles liveness checks
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "agent-viewer",
		"sessions": h.registry.Len(),
	})
}

// ListSessions rediscovers running containers and returns the result.
// The registry is replaced wholesale, not merged; see the package doc.
func (h *Handlers) ListSessions(c *gin.Context) {
	discovered := h.manager.Refresh(c.Request.Context())

	sessions := make(map[string]gin.H, len(discovered))
	for id, port := range discovered {
		sessions[id] = gin.H{"vncPort": port}
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// StartSession launches a new container session
func (h *Handlers) StartSession(c *gin.Context) {
	sess, err := h.manager.Launch(c.Request.Context())
	if err != nil {
		h.logger.Error("Launch request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "launch_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, sess)
}

// StopSession stops a container and removes its session.
// Responds 200 even when the container was already gone: the caller's
// goal (session no longer tracked) is met either way.
func (h *Handlers) StopSession(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session id"})
		return
	}

	h.manager.Stop(c.Request.Context(), id)

	c.JSON(http.StatusOK, gin.H{"stopped": id})
}

// CleanupSessions drops registry entries for containers no longer running
func (h *Handlers) CleanupSessions(c *gin.Context) {
	removed, err := h.manager.Cleanup(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "cleanup_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
