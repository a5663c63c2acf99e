package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xweng-opaida/agent-viewer/internal/domain/session"
	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/logging"
)

type stubRuntime struct {
	ids     []string
	listErr error
	logs    map[string]string
	running map[string]bool
	stopped []string
}

func (s *stubRuntime) List(ctx context.Context, image string) ([]string, error) {
	return s.ids, s.listErr
}

func (s *stubRuntime) IsRunning(ctx context.Context, id string) (bool, error) {
	return s.running[id], nil
}

func (s *stubRuntime) Logs(ctx context.Context, id string) (string, error) {
	return s.logs[id], nil
}

func (s *stubRuntime) Stop(ctx context.Context, id string) error {
	s.stopped = append(s.stopped, id)
	return nil
}

type stubLauncher struct {
	desc *session.LaunchDescriptor
	err  error
}

func (s *stubLauncher) Launch(ctx context.Context, debugPort, vncPort int, display string) (*session.LaunchDescriptor, error) {
	return s.desc, s.err
}

func newTestRouter(rt *stubRuntime, l *stubLauncher) (*gin.Engine, *session.Registry) {
	gin.SetMode(gin.TestMode)
	logger := logging.NewNop()

	registry := session.NewRegistry()
	disc := session.NewDiscoverer(rt, "chrome-gui", logger)
	manager := session.NewManager(registry, rt, l, disc, session.ManagerConfig{
		Image:          "chrome-gui",
		DebugPortStart: 9222,
		VNCPortStart:   5900,
	}, logger)

	h := NewHandlers(manager, registry, logger)
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/api/sessions", h.ListSessions)
	router.POST("/api/sessions", h.StartSession)
	router.POST("/api/sessions/:id/stop", h.StopSession)
	router.POST("/api/sessions/cleanup", h.CleanupSessions)
	return router, registry
}

func do(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(&stubRuntime{}, &stubLauncher{})

	w := do(router, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestListSessionsReplacesRegistry(t *testing.T) {
	rt := &stubRuntime{
		ids:     []string{"abc123"},
		running: map[string]bool{"abc123": true},
		logs:    map[string]string{"abc123": "Listening for VNC connections on TCP port 5901"},
	}
	router, registry := newTestRouter(rt, &stubLauncher{})
	registry.Upsert("stale", 5999)

	w := do(router, http.MethodGet, "/api/sessions")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Sessions map[string]map[string]int `json:"sessions"`
		Count    int                       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, 5901, body.Sessions["abc123"]["vncPort"])

	_, ok := registry.Lookup("stale")
	assert.False(t, ok, "stale entry must be replaced by discovery")
}

func TestStartSessionFailureReturns500(t *testing.T) {
	router, registry := newTestRouter(&stubRuntime{}, &stubLauncher{err: errors.New("script blew up")})

	w := do(router, http.MethodPost, "/api/sessions")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "launch_failed", body["error"])
	assert.Contains(t, body["message"], "script blew up")
	assert.Equal(t, 0, registry.Len())
}

func TestStopSessionAlwaysSucceeds(t *testing.T) {
	rt := &stubRuntime{running: map[string]bool{}}
	router, registry := newTestRouter(rt, &stubLauncher{})
	registry.Upsert("abc123", 5901)

	w := do(router, http.MethodPost, "/api/sessions/abc123/stop")
	require.Equal(t, http.StatusOK, w.Code)

	_, ok := registry.Lookup("abc123")
	assert.False(t, ok)

	// Stopping the same session again is still a success.
	w = do(router, http.MethodPost, "/api/sessions/abc123/stop")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCleanupReportsRemoved(t *testing.T) {
	rt := &stubRuntime{ids: []string{"alive"}}
	router, registry := newTestRouter(rt, &stubLauncher{})
	registry.Upsert("alive", 5901)
	registry.Upsert("dead", 5902)

	w := do(router, http.MethodPost, "/api/sessions/cleanup")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Removed []string `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"dead"}, body.Removed)
}

func TestCleanupFailureReturns500(t *testing.T) {
	rt := &stubRuntime{listErr: errors.New("daemon down")}
	router, _ := newTestRouter(rt, &stubLauncher{})

	w := do(router, http.MethodPost, "/api/sessions/cleanup")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
