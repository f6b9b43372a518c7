package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spiffcs/ghaudit/internal/log"
	"github.com/spiffcs/ghaudit/internal/service"
)

const wsWriteWait = 10 * time.Second

// wsFrame is one event on the WebSocket surface.
type wsFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// wsEmitter writes events as JSON text frames.
type wsEmitter struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func (e *wsEmitter) Emit(ev service.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errStreamClosed
	}
	if err := e.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		e.closed = true
		return err
	}
	if err := e.conn.WriteJSON(wsFrame{Event: ev.Name, Data: ev.Data}); err != nil {
		e.closed = true
		return err
	}
	return nil
}

// Close sends a normal closure frame once.
func (e *wsEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = e.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}
}

// watchClose cancels the request once the peer closes the connection.
// Inbound messages are ignored.
func watchClose(conn *websocket.Conn, cancel context.CancelFunc, requestID string) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Debug("websocket reader done", "request_id", requestID, "error", err)
			cancel()
			return
		}
	}
}
