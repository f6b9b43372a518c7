package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spiffcs/ghaudit/internal/log"
	"github.com/spiffcs/ghaudit/internal/server"
)

// NewCmdServe creates the serve command.
func NewCmdServe(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Starts the HTTP API:

  POST /api/analyze      {"username": "...", "forceRefresh": false, "stream": false}
  GET  /api/analyze/ws   ?username=...&forceRefresh=true
  GET  /healthz

With "stream": true the response is a server-sent event stream of
status, github_data, complete and error events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config, GHAUDIT_ADDR or PORT)")
	cmd.Flags().BoolVar(&opts.JSONLogs, "json-logs", false, "Write logs as JSON lines")
	return cmd
}

func runServe(cmd *cobra.Command, opts *Options) error {
	if opts.JSONLogs {
		log.InitializeJSON(opts.Verbosity, os.Stderr)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, settings, err := loadSettings()
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		settings.ListenAddr = opts.Addr
	}

	a, err := newApp(ctx, settings, opts)
	if err != nil {
		return err
	}

	srv := server.New(a.service, server.Options{
		Addr:            settings.ListenAddr,
		AllowedOrigins:  settings.AllowedOrigins,
		ShutdownTimeout: settings.ShutdownTimeout,
		Health:          a.health,
	})
	return srv.Run(ctx)
}

// health reports cache occupancy and the last seen GitHub quota.
func (a *app) health() gin.H {
	return gin.H{
		"cache":     a.cache.Stats(),
		"rateLimit": a.github.RateLimitStatus(),
	}
}
