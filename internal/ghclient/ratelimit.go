package ghclient

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spiffcs/ghaudit/internal/constants"
	"github.com/spiffcs/ghaudit/internal/log"
)

// Quota resources tracked separately. GitHub's search quota is far smaller
// than core and resets on its own schedule.
const (
	ResourceCore   = "core"
	ResourceSearch = "search"
)

// RateLimitError reports an exhausted GitHub quota.
type RateLimitError struct {
	Resource string
	ResetAt  time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API %s rate limit exceeded (resets at %s)", e.Resource, e.ResetAt.Format(time.RFC3339))
}

type quota struct {
	limited   bool
	resetAt   time.Time
	remaining int
	limit     int
}

// RateLimitState tracks the quota last reported by GitHub for one client,
// per rate limit resource.
type RateLimitState struct {
	mu     sync.RWMutex
	quotas map[string]*quota
	now    func() time.Time
}

func newRateLimitState(now func() time.Time) *RateLimitState {
	return &RateLimitState{quotas: map[string]*quota{}, now: now}
}

// quotaFor returns the entry for resource, creating it. Callers hold mu.
func (s *RateLimitState) quotaFor(resource string) *quota {
	q, ok := s.quotas[resource]
	if !ok {
		q = &quota{remaining: -1, limit: -1}
		s.quotas[resource] = q
	}
	return q
}

// IsLimited reports whether calls against resource should fail fast, and
// until when.
func (s *RateLimitState) IsLimited(resource string) (bool, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotas[resource]
	if !ok || !q.limited || s.now().After(q.resetAt) {
		return false, time.Time{}
	}
	return true, q.resetAt
}

// SetLimited marks resource exhausted until resetAt.
func (s *RateLimitState) SetLimited(resource string, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.quotaFor(resource)
	q.limited = true
	q.resetAt = resetAt
}

// Update records quota values for resource from response headers.
func (s *RateLimitState) Update(resource string, remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.quotaFor(resource)
	q.remaining = remaining
	q.limit = limit
	q.resetAt = resetAt
	q.limited = remaining == 0
}

// QuotaStatus is a snapshot of one resource's quota.
type QuotaStatus struct {
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"resetAt"`
	Limited   bool      `json:"limited"`
}

// RateLimitStatus maps a resource name to its last seen quota. Resources
// never seen in a response are absent.
type RateLimitStatus map[string]QuotaStatus

// Status returns the current snapshot.
func (s *RateLimitState) Status() RateLimitStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	out := make(RateLimitStatus, len(s.quotas))
	for name, q := range s.quotas {
		out[name] = QuotaStatus{
			Remaining: q.remaining,
			Limit:     q.limit,
			ResetAt:   q.resetAt,
			Limited:   q.limited && now.Before(q.resetAt),
		}
	}
	return out
}

// resourceFor names the quota a request is charged against. The empty
// string means the request is free and never fails fast.
func resourceFor(req *http.Request) string {
	path := strings.TrimPrefix(req.URL.Path, "/api/v3")
	switch {
	case path == "/rate_limit":
		return ""
	case strings.HasPrefix(path, "/search/"):
		return ResourceSearch
	default:
		return ResourceCore
	}
}

// rateLimitTransport fails fast while a quota is exhausted and converts
// responses that exhaust it into RateLimitError.
type rateLimitTransport struct {
	base  http.RoundTripper
	state *RateLimitState
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resource := resourceFor(req)
	if resource != "" {
		if limited, resetAt := t.state.IsLimited(resource); limited {
			log.Debug("rate limited, skipping request", "resource", resource, "url", req.URL.Path, "resets_at", resetAt.Format(time.RFC3339))
			return nil, &RateLimitError{Resource: resource, ResetAt: resetAt}
		}
	}

	log.Debug("github request", "method", req.Method, "url", req.URL.Path)
	resp, err := t.base.RoundTrip(req)
	if err != nil || resource == "" {
		return resp, err
	}

	if r := resp.Header.Get("X-RateLimit-Resource"); r != "" {
		resource = r
	}
	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 {
		t.state.Update(resource, remaining, limit, resetAt)
	}

	if remaining > 0 && remaining <= constants.RateLimitLowWatermark {
		log.Debug("rate limit low", "resource", resource, "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	if remaining == 0 || resp.StatusCode == http.StatusTooManyRequests {
		if resetAt.IsZero() {
			resetAt = retryAfter(resp, t.state.now())
		}
		t.state.SetLimited(resource, resetAt)
		_ = resp.Body.Close()
		log.Warn("GitHub rate limit exhausted", "resource", resource, "status", resp.StatusCode, "resets_at", resetAt.Format(time.RFC3339))
		return nil, &RateLimitError{Resource: resource, ResetAt: resetAt}
	}

	return resp, nil
}

// parseRateLimitHeaders extracts rate limit info from response headers.
// Missing values are reported as -1 / zero time.
func parseRateLimitHeaders(resp *http.Response) (remaining, limit int, resetAt time.Time) {
	remaining = -1
	limit = -1

	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			remaining = n
		}
	}
	if v := resp.Header.Get("X-RateLimit-Limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			resetAt = time.Unix(n, 0)
		}
	}
	return remaining, limit, resetAt
}

func retryAfter(resp *http.Response, now time.Time) time.Time {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return now.Add(time.Duration(secs) * time.Second)
		}
	}
	return now.Add(time.Minute)
}
