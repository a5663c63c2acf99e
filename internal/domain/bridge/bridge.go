package bridge

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xweng-opaida/agent-viewer/internal/domain/session"
	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/logging"
	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/monitoring"
)

const (
	// tcpChunkSize bounds a single read from the VNC socket.
	tcpChunkSize = 4096

	// closeWriteWait bounds how long a close frame write may block.
	closeWriteWait = 5 * time.Second
)

// Bridge resolves session IDs against the registry and relays traffic.
type Bridge struct {
	registry *session.Registry
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	// dial is injectable for tests; defaults to net.Dial.
	dial func(addr string) (net.Conn, error)
}

// New creates a bridge over the given registry.
func New(registry *session.Registry, logger *logging.Logger) *Bridge {
	return &Bridge{
		registry: registry,
		logger:   logger.Named("bridge"),
		dial: func(addr string) (net.Conn, error) {
			return net.Dial("tcp", addr)
		},
	}
}

// WithMetrics adds metrics tracking to the bridge.
func (b *Bridge) WithMetrics(metrics *monitoring.Metrics) *Bridge {
	b.metrics = metrics
	return b
}

// Relay bridges ws to the session's VNC port until both directions end.
//
// An unknown session closes the websocket with a policy-violation close
// code before any TCP dial; a dial failure closes it with an internal
// error code. Relay always closes ws before returning.
func (b *Bridge) Relay(ws *websocket.Conn, sessionID string) {
	vncPort, ok := b.registry.Lookup(sessionID)
	if !ok {
		b.logger.Info("Rejected bridge for unknown session", zap.String("session_id", sessionID))
		b.record("not_found")
		closeWith(ws, websocket.ClosePolicyViolation, fmt.Sprintf("session %s not found", sessionID))
		return
	}

	addr := fmt.Sprintf("127.0.0.1:%d", vncPort)
	tcp, err := b.dial(addr)
	if err != nil {
		// The container died between lookup and connect.
		b.logger.Warn("VNC endpoint unreachable",
			zap.String("session_id", sessionID), zap.String("addr", addr), zap.Error(err))
		b.record("unreachable")
		closeWith(ws, websocket.CloseInternalServerErr, "vnc endpoint unreachable")
		return
	}

	bridgeID := uuid.NewString()[:8]
	log := b.logger.With(
		zap.String("bridge_id", bridgeID),
		zap.String("session_id", sessionID),
		zap.Int("vnc_port", vncPort),
	)
	log.Info("Bridge established")
	b.record("relayed")
	if b.metrics != nil {
		b.metrics.BridgesActive.Inc()
		defer b.metrics.BridgesActive.Dec()
	}

	var wg sync.WaitGroup
	wg.Add(2)

	// ws -> tcp. Text frames carry their UTF-8 bytes; binary frames are
	// written as-is. Closing the TCP side on exit unblocks the other loop.
	go func() {
		defer wg.Done()
		defer tcp.Close()
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				log.Debug("Websocket read ended", zap.Error(err))
				return
			}
			if _, err := tcp.Write(data); err != nil {
				log.Debug("VNC write failed", zap.Error(err))
				return
			}
			b.countBytes("ws_to_tcp", len(data))
		}
	}()

	// tcp -> ws. A zero-byte read is a graceful VNC close. Closing the
	// websocket on exit unblocks the other loop's ReadMessage.
	go func() {
		defer wg.Done()
		defer closeWith(ws, websocket.CloseNormalClosure, "")
		buf := make([]byte, tcpChunkSize)
		for {
			n, err := tcp.Read(buf)
			if n > 0 {
				if werr := ws.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
					log.Debug("Websocket write failed", zap.Error(werr))
					return
				}
				b.countBytes("tcp_to_ws", n)
			}
			if err != nil {
				log.Debug("VNC read ended", zap.Error(err))
				return
			}
		}
	}()

	wg.Wait()
	log.Info("Bridge closed")
}

func (b *Bridge) record(outcome string) {
	if b.metrics != nil {
		b.metrics.RecordBridge(outcome)
	}
}

func (b *Bridge) countBytes(direction string, n int) {
	if b.metrics != nil {
		b.metrics.BridgedBytes.WithLabelValues(direction).Add(float64(n))
	}
}

// closeWith sends a close frame with the given code and closes the
// connection. Both steps are best-effort; the peer may already be gone.
func closeWith(ws *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(closeWriteWait)
	_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = ws.Close()
}
