// Package server exposes the analysis service over HTTP: a buffered JSON
// endpoint, a server-sent event stream and a WebSocket stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spiffcs/ghaudit/internal/apperr"
	"github.com/spiffcs/ghaudit/internal/constants"
	"github.com/spiffcs/ghaudit/internal/log"
	"github.com/spiffcs/ghaudit/internal/model"
	"github.com/spiffcs/ghaudit/internal/service"
	"github.com/spiffcs/ghaudit/internal/username"
)

// Analyzer runs analysis requests.
type Analyzer interface {
	Analyze(ctx context.Context, req service.Request, emit service.Emitter) (*model.Response, error)
}

// Options configures a Server.
type Options struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	// Health adds details to the /healthz body. Optional.
	Health func() gin.H
}

// Server is the HTTP surface of the analysis service.
type Server struct {
	svc     Analyzer
	opts    Options
	engine  *gin.Engine
	origins map[string]bool
}

// New builds a Server with routes and middleware registered.
func New(svc Analyzer, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = constants.DefaultListenAddr
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	s := &Server{svc: svc, opts: opts, origins: make(map[string]bool)}
	for _, o := range opts.AllowedOrigins {
		s.origins[o] = true
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		RequestID(),
		Logging(),
		Recovery(),
		CORS(opts.AllowedOrigins),
	)
	engine.GET("/healthz", s.handleHealth)
	api := engine.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/analyze/ws", s.handleAnalyzeWS)

	s.engine = engine
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", s.opts.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) originAllowed(origin string) bool {
	return s.origins["*"] || s.origins[origin]
}

type analyzeRequest struct {
	Username     string `json:"username"`
	ForceRefresh bool   `json:"forceRefresh"`
	Stream       bool   `json:"stream"`
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if s.opts.Health != nil {
		for k, v := range s.opts.Health() {
			body[k] = v
		}
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Payload{Error: "invalid request body", Status: http.StatusBadRequest})
		return
	}

	login, err := username.Parse(body.Username)
	if err != nil {
		writeError(c, err)
		return
	}
	req := service.Request{Username: login, ForceRefresh: body.ForceRefresh, RequestID: RequestIDFromContext(c)}

	if body.Stream {
		s.stream(c, req)
		return
	}

	resp, err := s.svc.Analyze(c.Request.Context(), req, nil)
	if err != nil {
		if c.Request.Context().Err() != nil {
			c.Abort()
			return
		}
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if resp.Mode == model.ModeInsufficientData {
		status = apperr.HTTPStatus(apperr.KindInsufficientData)
	}
	c.JSON(status, resp)
}

// stream runs req with an SSE emitter. Failures are delivered as events;
// the HTTP status is always 200 once the stream is open.
func (s *Server) stream(c *gin.Context, req service.Request) {
	emitter := newSSEEmitter(c.Writer)
	defer emitter.Close()
	_, _ = s.svc.Analyze(c.Request.Context(), req, emitter)
}

func (s *Server) handleAnalyzeWS(c *gin.Context) {
	login, err := username.Parse(c.Query("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	refresh, _ := strconv.ParseBool(c.Query("forceRefresh"))
	requestID := RequestIDFromContext(c)

	conn, err := s.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug("websocket upgrade failed", "request_id", requestID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go watchClose(conn, cancel, requestID)

	emitter := &wsEmitter{conn: conn}
	defer emitter.Close()
	_, _ = s.svc.Analyze(ctx, service.Request{Username: login, ForceRefresh: refresh, RequestID: requestID}, emitter)
}

func writeError(c *gin.Context, err error) {
	status, payload := apperr.Describe(err)
	c.JSON(status, payload)
}
