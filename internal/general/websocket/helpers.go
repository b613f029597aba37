package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

func feedLogCtx() context.Context {
	return context.Background()
}

// wsWriteClose sends a close control frame with the given code and reason.
func (feed *Feed) wsWriteClose(conn *websocket.Conn, code int, reason string) {
	mu := feed.lockOf(conn)
	mu.Lock()
	defer mu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(wsCloseAckWindow),
	)
	feed.writeLocks.Delete(conn)
}

// wsWriteMessage sets a short write deadline and writes a message.
func (feed *Feed) wsWriteMessage(conn *websocket.Conn, mt int, payload []byte) error {
	mu := feed.lockOf(conn)
	mu.Lock()
	defer mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(mt, payload)
}

// lockOf returns the mutex for a specific connection
func (feed *Feed) lockOf(conn *websocket.Conn) *sync.Mutex {
	if v, ok := feed.writeLocks.Load(conn); ok {
		if mu, ok := v.(*sync.Mutex); ok && mu != nil {
			return mu
		}
	}
	mu := &sync.Mutex{}
	actual, _ := feed.writeLocks.LoadOrStore(conn, mu)
	return actual.(*sync.Mutex)
}

// removeManagerConn drops the manager's connection from the registry.
func (feed *Feed) removeManagerConn(managerID string) {
	feed.managerConns.Delete(managerID)
	feed.logger.Info(feedLogCtx(), "manager_ws_removed", "Manager WebSocket connection removed",
		map[string]any{"manager_id": managerID})
}
