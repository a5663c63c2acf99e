package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xweng-opaida/agent-viewer/internal/domain/bridge"
	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // viewer runs on a different origin than the API
	},
}

// Handler upgrades inbound connections and hands them to the bridge.
type Handler struct {
	bridge *bridge.Bridge
	logger *logging.Logger
}

// NewHandler creates a websocket handler over the given bridge.
func NewHandler(b *bridge.Bridge, logger *logging.Logger) *Handler {
	return &Handler{
		bridge: b,
		logger: logger.Named("ws"),
	}
}

// HandleVNC serves GET /vnc/:id.
func (h *Handler) HandleVNC(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session id, use /vnc/{sessionId}"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	h.bridge.Relay(conn, sessionID)
}

// Router builds the bridge listener's gin engine.
func Router(h *Handler, development bool) *gin.Engine {
	if !development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/vnc/:id", h.HandleVNC)
	return router
}
