package service

import (
	"context"
	"log/slog"
	"sync"
)

// Event names of the incremental surface.
const (
	EventStatus     = "status"
	EventGitHubData = "github_data"
	EventComplete   = "complete"
	EventError      = "error"
)

// Status steps.
const (
	StepGitHub = "github"
	StepAI     = "ai"
)

// Event is one named message of the incremental surface. Data is
// marshalled to JSON by the transport.
type Event struct {
	Name string
	Data any
}

// Status is the payload of a status event.
type Status struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// Emitter delivers events to a consumer. An error means the consumer is
// gone; it is not retried.
type Emitter interface {
	Emit(Event) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event) error

// Emit calls f(e).
func (f EmitterFunc) Emit(e Event) error {
	return f(e)
}

// stream guards an Emitter for one request: nothing is sent once the
// request context is done or a terminal event went out, and delivery
// errors are swallowed.
type stream struct {
	ctx    context.Context
	out    Emitter
	logger *slog.Logger

	mu       sync.Mutex
	finished bool
}

func newStream(ctx context.Context, out Emitter, logger *slog.Logger) *stream {
	return &stream{ctx: ctx, out: out, logger: logger}
}

func (s *stream) send(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil || s.finished || s.ctx.Err() != nil {
		return
	}
	if err := s.out.Emit(e); err != nil {
		s.logger.Debug("event dropped", "event", e.Name, "error", err)
	}
}

func (s *stream) status(step, message string) {
	s.send(Event{Name: EventStatus, Data: Status{Step: step, Message: message}})
}

// terminal sends e and closes the stream to further events.
func (s *stream) terminal(e Event) {
	s.send(e)
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()
}
