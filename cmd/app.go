package cmd

import (
	"context"
	"fmt"

	"github.com/spiffcs/ghaudit/config"
	"github.com/spiffcs/ghaudit/internal/cache"
	"github.com/spiffcs/ghaudit/internal/ghclient"
	"github.com/spiffcs/ghaudit/internal/inference"
	"github.com/spiffcs/ghaudit/internal/log"
	"github.com/spiffcs/ghaudit/internal/model"
	"github.com/spiffcs/ghaudit/internal/service"
)

// app bundles the collaborators shared by analyze and serve.
type app struct {
	settings config.Settings
	github   *ghclient.Client
	cache    *cache.Cache[*model.Response]
	service  *service.Service
}

// loadSettings loads config files and the environment.
func loadSettings() (*config.Config, config.Settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	settings, err := cfg.Resolve()
	if err != nil {
		return nil, config.Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, settings, nil
}

func newGitHubClient(ctx context.Context, settings config.Settings, opts *Options) (*ghclient.Client, error) {
	var ghOpts []ghclient.Option
	if opts.GitHubURL != "" {
		ghOpts = append(ghOpts, ghclient.WithBaseURL(opts.GitHubURL))
	}
	return ghclient.NewClient(ctx, settings.GitHubToken, ghOpts...)
}

// newApp wires the GitHub client, inference client, result cache and
// orchestration service from resolved settings.
func newApp(ctx context.Context, settings config.Settings, opts *Options) (*app, error) {
	gh, err := newGitHubClient(ctx, settings, opts)
	if err != nil {
		return nil, err
	}

	c, err := cache.New[*model.Response](settings.CacheCapacity, settings.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	llm := inference.NewClient(inference.Config{
		URL:       settings.InferenceURL,
		Model:     settings.InferenceModel,
		APIKey:    settings.InferenceAPIKey,
		Timeout:   settings.InferenceTimeout,
		MaxTokens: settings.InferenceMaxTokens,
	})
	log.Debug("inference configured", "url", settings.InferenceURL, "model", llm.Model(), "timeout", settings.InferenceTimeout)

	analyzer := inference.NewAnalyzer(llm, settings.ReadmeChars)
	return &app{
		settings: settings,
		github:   gh,
		cache:    c,
		service:  service.New(gh, analyzer, c),
	}, nil
}
