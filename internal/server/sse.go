package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/spiffcs/ghaudit/internal/service"
)

var errStreamClosed = errors.New("stream closed")

// sseEmitter writes events as text/event-stream frames. Writes after
// close, or after the consumer went away, fail without retry.
type sseEmitter struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
}

func newSSEEmitter(w http.ResponseWriter) *sseEmitter {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	e := &sseEmitter{w: w}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
		f.Flush()
	}
	return e
}

// Emit writes one "event: <name>\ndata: <json>\n\n" frame.
func (e *sseEmitter) Emit(ev service.Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", ev.Name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errStreamClosed
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
		e.closed = true
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

func (e *sseEmitter) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}
