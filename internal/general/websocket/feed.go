package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"crewsite/internal/domain/worker"
	"crewsite/internal/general/jwt"
	"crewsite/internal/general/logger"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout   = 5 * time.Second
	wsCloseAckWindow = 2 * time.Second
	ctrlTimeout      = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Feed pushes live attendance events to connected manager dashboards over
// WebSocket with JWT auth.
type Feed struct {
	logger       *logger.Logger
	jwtMgr       *jwt.Manager
	writeLocks   sync.Map // key: *websocket.Conn -> *sync.Mutex
	managerConns sync.Map // key: managerID(string) -> *websocket.Conn
}

// NewFeed creates a live-feed hub with JWT auth.
func NewFeed(logger *logger.Logger, jwtMgr *jwt.Manager) *Feed {
	return &Feed{
		logger: logger,
		jwtMgr: jwtMgr,
	}
}

// ConnectManager handles WebSocket connections from managers with JWT auth.
// The feed is outbound-only: after the auth frame the client is not expected
// to send anything but pongs.
func (feed *Feed) ConnectManager(w http.ResponseWriter, r *http.Request) {
	// 1) Upgrade HTTP -> WS
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		feed.logger.Error(r.Context(), "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}
	// Teardown order (LIFO on return):
	defer conn.Close()                 // close the socket last
	defer feed.writeLocks.Delete(conn) // forget per-connection mutex (idempotent)

	// 2) Set auth deadline
	conn.SetReadLimit(1 << 20) // 1 MiB
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		feed.logger.Error(r.Context(), "ws_set_deadline_failed", "Failed to set initial read deadline", err, nil)
		feed.sendAuthError(conn, "internal server error")
		return
	}

	// 3) Auth frame
	msgType, firstFrame, err := conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			feed.logger.Error(r.Context(), "ws_auth_timeout", "Client disconnected before authentication", err, nil)
		} else {
			feed.logger.Error(r.Context(), "ws_auth_read_failed", "Failed to read auth message", err, nil)
		}
		feed.sendAuthError(conn, "authentication timeout: please send auth message within 5 seconds")
		return
	}

	if msgType != websocket.TextMessage {
		feed.logger.Error(r.Context(), "ws_auth_invalid_format", "Auth message must be text format", nil, nil)
		feed.sendAuthError(conn, "auth message must be in text format")
		return
	}

	res, err := jwt.ValidateWSAuth(firstFrame, feed.jwtMgr, worker.RoleManager)
	if err != nil {
		feed.logger.Error(r.Context(), "ws_auth_failed", "Invalid auth message or token", err, nil)
		feed.sendAuthError(conn, "authentication failed: invalid token")
		return
	}

	// 4) Path param must match the subject in claims
	if mgrID := r.PathValue("manager_id"); mgrID != "" && mgrID != res.Claims.Subject {
		feed.logger.Error(r.Context(), "ws_auth_failed", "Manager ID mismatch", nil, map[string]any{
			"path_manager_id": mgrID,
			"token_subject":   res.Claims.Subject,
		})
		feed.sendAuthError(conn, "manager ID mismatch")
		return
	}
	managerID := res.Claims.Subject

	// 5) Send authentication success message
	if err := feed.sendAuthSuccess(conn, managerID); err != nil {
		feed.logger.Error(r.Context(), "ws_auth_success_failed", "Failed to send auth success message", err, nil)
		return
	}

	feed.logger.Info(r.Context(), "ws_connected", "Manager WebSocket connected",
		map[string]any{"manager_id": managerID})

	// 6) Reset read deadline after auth
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	// 7) Start ping loop (every 30s) using the per-connection writer lock
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			mu := feed.lockOf(conn)
			mu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(ctrlTimeout))
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctrlTimeout))
			mu.Unlock()
			if err != nil {
				// Close socket to unblock reader; goroutine exits.
				_ = conn.Close()
				feed.logger.Error(r.Context(), "ws_ping_failed", "Failed to send ping", err, nil)
				return
			}
		}
	}()

	// 8) Register this manager for outbound events; unregister on exit
	feed.managerConns.Store(managerID, conn)
	defer feed.removeManagerConn(managerID)

	// 9) Read loop: the feed has no inbound commands, so everything except a
	// clean close is answered with an error frame.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				feed.logger.Error(r.Context(), "ws_unexpected_close", "Manager connection closed unexpectedly", err, map[string]any{
					"manager_id": managerID,
				})
				feed.wsWriteClose(conn, websocket.CloseInternalServerErr, "internal error")
			} else {
				feed.logger.Info(r.Context(), "ws_connection_closed", "Manager connection closed normally", map[string]any{
					"manager_id": managerID,
				})
				feed.wsWriteClose(conn, websocket.CloseNormalClosure, "bye")
			}
			break
		}

		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			_ = feed.wsWriteMessage(conn, websocket.TextMessage, []byte(`{"type":"error","error":"bad json"}`))
			continue
		}

		_ = feed.wsWriteMessage(conn, websocket.TextMessage, []byte(`{"type":"error","error":"unknown message type"}`))
	}
}

// Broadcast pushes one attendance event to every connected manager. Dead
// connections are dropped from the registry on write failure.
func (feed *Feed) Broadcast(event any) {
	envelope := map[string]any{
		"type": "attendance_event",
		"data": event,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		feed.logger.Error(feedLogCtx(), "feed_marshal_failed", "Failed to marshal feed event", err, nil)
		return
	}

	feed.managerConns.Range(func(key, value any) bool {
		managerID, _ := key.(string)
		conn, ok := value.(*websocket.Conn)
		if !ok || conn == nil {
			return true
		}
		if err := feed.wsWriteMessage(conn, websocket.TextMessage, payload); err != nil {
			feed.logger.Error(feedLogCtx(), "feed_send_failed", "Failed to push event to manager", err, map[string]any{
				"manager_id": managerID,
			})
			_ = conn.Close()
			feed.managerConns.Delete(managerID)
		}
		return true
	})
}

// ConnectedManagers returns how many manager dashboards are attached.
func (feed *Feed) ConnectedManagers() int {
	n := 0
	feed.managerConns.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// sendAuthError sends authentication error message to client
func (feed *Feed) sendAuthError(conn *websocket.Conn, message string) error {
	errorMsg := map[string]interface{}{
		"type":    "auth_error",
		"error":   message,
		"success": false,
	}
	msgBytes, err := json.Marshal(errorMsg)
	if err != nil {
		return err
	}
	return feed.wsWriteMessage(conn, websocket.TextMessage, msgBytes)
}

// sendAuthSuccess sends authentication success message to client
func (feed *Feed) sendAuthSuccess(conn *websocket.Conn, managerID string) error {
	successMsg := map[string]interface{}{
		"type":       "auth_success",
		"message":    "Authentication successful",
		"success":    true,
		"manager_id": managerID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	msgBytes, err := json.Marshal(successMsg)
	if err != nil {
		return err
	}
	return feed.wsWriteMessage(conn, websocket.TextMessage, msgBytes)
}
