// Package service orchestrates profile aggregation, caching and analysis
// into a single mode-tagged response.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spiffcs/ghaudit/internal/apperr"
	"github.com/spiffcs/ghaudit/internal/cache"
	"github.com/spiffcs/ghaudit/internal/inference"
	"github.com/spiffcs/ghaudit/internal/log"
	"github.com/spiffcs/ghaudit/internal/model"
	"github.com/spiffcs/ghaudit/internal/username"
)

// Status messages shown to clients.
const (
	msgFetching  = "Fetching GitHub data..."
	msgRoadmap   = "Generating growth roadmap..."
	msgAnalyzing = "AI is analyzing your profile..."
)

// ProfileSource assembles profiles.
type ProfileSource interface {
	Aggregate(ctx context.Context, username string) (*model.Profile, error)
}

// Analyst produces judgments of profiles.
type Analyst interface {
	Analyze(ctx context.Context, p *model.Profile) (inference.Outcome, error)
	Roadmap(ctx context.Context, p *model.Profile) (*model.Roadmap, error)
}

// Service runs analysis requests.
type Service struct {
	source  ProfileSource
	analyst Analyst
	cache   cache.Cacher[*model.Response]
}

// New creates a Service. If c is nil, caching is disabled.
func New(source ProfileSource, analyst Analyst, c cache.Cacher[*model.Response]) *Service {
	return &Service{source: source, analyst: analyst, cache: c}
}

// Request is a single analysis request.
type Request struct {
	// Username is a handle or profile URL; it is normalized before use.
	Username     string
	ForceRefresh bool
	RequestID    string
}

// Analyze runs req to a terminal state.
//
// With a nil emit the call is buffered: only the return values matter.
// Otherwise events are pushed to emit as they become available, ending in
// exactly one complete or error event unless ctx is canceled first, in
// which case nothing further is sent.
//
// The insufficient-data outcome is not an error: it is returned as a
// response with ModeInsufficientData.
func (s *Service) Analyze(ctx context.Context, req Request, emit Emitter) (*model.Response, error) {
	logger := log.With("request_id", req.RequestID, "username", req.Username)
	st := newStream(ctx, emit, logger)
	m := newMachine(logger)
	start := time.Now()

	resp, err := s.run(ctx, req, st, m, logger)
	if err != nil {
		m.to(StateError)
		if ctx.Err() != nil {
			logger.Info("analysis canceled", "duration", time.Since(start))
			return nil, err
		}
		_, payload := apperr.Describe(err)
		logFailure(logger, err)
		st.terminal(Event{Name: EventError, Data: payload})
		return nil, err
	}

	logger.Info("analysis finished", "mode", resp.Mode, "cached", resp.Cached, "duration", time.Since(start))
	return resp, nil
}

func (s *Service) run(ctx context.Context, req Request, st *stream, m *machine, logger *slog.Logger) (*model.Response, error) {
	login, err := username.Parse(req.Username)
	if err != nil {
		return nil, err
	}

	m.to(StateFetchingProfile)
	st.status(StepGitHub, msgFetching)
	profile, err := s.source.Aggregate(ctx, login)
	if err != nil {
		return nil, err
	}
	view := profile.View()
	st.send(Event{Name: EventGitHubData, Data: view})

	m.to(StateCacheCheck)
	key := profile.CacheKey()
	if !req.ForceRefresh && s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			logger.Info("cache hit", "key", key)
			resp := cached.WithCached()
			m.to(StateDone)
			st.terminal(Event{Name: EventComplete, Data: resp})
			return resp, nil
		}
	}

	switch {
	case !profile.HasOriginalRepos() && profile.PRStats.Total > 0:
		return s.growth(ctx, profile, view, key, st, m, logger)
	case profile.User.PublicRepos == 0 && !profile.HasOriginalRepos() && profile.PRStats.Total == 0:
		return insufficient(view, st, m), nil
	}
	return s.full(ctx, profile, view, key, st, m)
}

// growth serves subjects with pull requests but no original repositories.
// Roadmap generation is best-effort.
func (s *Service) growth(ctx context.Context, p *model.Profile, view model.ProfileView, key string, st *stream, m *machine, logger *slog.Logger) (*model.Response, error) {
	m.to(StateGrowth)
	st.status(StepAI, msgRoadmap)

	roadmap, err := s.analyst.Roadmap(ctx, p)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("roadmap: %w", ctx.Err())
		}
		logger.Warn("roadmap generation failed, continuing without it", "error", err)
		roadmap = nil
	}

	resp := &model.Response{Mode: model.ModeGrowth, GitHubData: view, Roadmap: roadmap}
	s.store(key, resp)
	m.to(StateDone)
	st.terminal(Event{Name: EventComplete, Data: resp})
	return resp, nil
}

func (s *Service) full(ctx context.Context, p *model.Profile, view model.ProfileView, key string, st *stream, m *machine) (*model.Response, error) {
	m.to(StateAnalyzing)
	st.status(StepAI, msgAnalyzing)

	out, err := s.analyst.Analyze(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	if out.Verdict == inference.VerdictInsufficientData {
		return insufficient(view, st, m), nil
	}

	resp := &model.Response{
		Mode:       model.ModeFull,
		GitHubData: view,
		Analysis:   out.Analysis,
		LowData:    len(p.Readmes) == 0,
	}
	s.store(key, resp)
	m.to(StateDone)
	st.terminal(Event{Name: EventComplete, Data: resp})
	return resp, nil
}

// insufficient ends the request without a judgment. Never cached.
func insufficient(view model.ProfileView, st *stream, m *machine) *model.Response {
	m.to(StateInsufficientData)
	resp := &model.Response{Mode: model.ModeInsufficientData, GitHubData: view}
	st.terminal(Event{Name: EventError, Data: resp})
	m.to(StateDone)
	return resp
}

func (s *Service) store(key string, resp *model.Response) {
	if s.cache != nil {
		s.cache.Set(key, resp)
	}
}

func logFailure(logger *slog.Logger, err error) {
	switch kind := apperr.KindOf(err); kind {
	case apperr.KindInputInvalid, apperr.KindNotFound, apperr.KindRateLimited:
		logger.Info("analysis rejected", "kind", kind, "error", err)
	default:
		logger.Error("analysis failed", "kind", kind, "error", err)
	}
}
