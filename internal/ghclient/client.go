// Package ghclient fetches and assembles GitHub profile data.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v60/github"
	"github.com/spiffcs/ghaudit/internal/apperr"
	"github.com/spiffcs/ghaudit/internal/log"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API client
type Client struct {
	client *gh.Client
	state  *RateLimitState
	now    func() time.Time
}

type clientOptions struct {
	baseURL string
	now     func() time.Time
	base    http.RoundTripper
}

// Option configures a Client.
type Option func(*clientOptions)

// WithBaseURL points the client at a different API root, such as a GitHub
// Enterprise host or a test server.
func WithBaseURL(u string) Option {
	return func(o *clientOptions) {
		o.baseURL = u
	}
}

// WithClock overrides the time source used for repository ranking and
// rate limit bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		o.now = now
	}
}

// WithTransport overrides the underlying HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.base = rt
	}
}

// NewClient creates a GitHub client. An empty token yields an
// unauthenticated client with GitHub's much lower quota.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	o := clientOptions{now: time.Now, base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	state := newRateLimitState(o.now)

	var httpClient *http.Client
	if token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: o.base})
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	} else {
		log.Warn("GITHUB_TOKEN not set, using unauthenticated GitHub API")
		httpClient = &http.Client{Transport: o.base}
	}
	httpClient.Transport = &rateLimitTransport{base: httpClient.Transport, state: state}

	client := gh.NewClient(httpClient)
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", o.baseURL, err)
		}
		client.BaseURL = u
	}

	return &Client{client: client, state: state, now: o.now}, nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, classify(err, "failed to get rate limits", "")
	}
	return limits, nil
}

// RateLimitStatus returns the quota last reported by GitHub.
func (c *Client) RateLimitStatus() RateLimitStatus {
	return c.state.Status()
}

// classify converts a go-github error into an apperr kind. notFound is the
// message used for 404s; an empty notFound treats 404 as an upstream error.
func classify(err error, msg, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, err)
	}

	var rl *RateLimitError
	if errors.As(err, &rl) {
		return apperr.RateLimited(rl.ResetAt, err)
	}
	var ghRL *gh.RateLimitError
	if errors.As(err, &ghRL) {
		return apperr.RateLimited(ghRL.Rate.Reset.Time, err)
	}
	var abuse *gh.AbuseRateLimitError
	if errors.As(err, &abuse) {
		reset := time.Now().Add(time.Minute)
		if abuse.RetryAfter != nil {
			reset = time.Now().Add(*abuse.RetryAfter)
		}
		return apperr.RateLimited(reset, err)
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		status := ghErr.Response.StatusCode
		if status == http.StatusNotFound && notFound != "" {
			return apperr.Wrap(apperr.KindNotFound, notFound, err)
		}
		return apperr.Upstream(status, msg, err)
	}

	return apperr.Upstream(http.StatusInternalServerError, msg, err)
}

// repoFromURL extracts owner and repo name from a repository API URL such
// as https://api.github.com/repos/owner/repo.
func repoFromURL(u string) (owner, repo string) {
	parts := strings.Split(strings.TrimSuffix(u, "/"), "/")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}
