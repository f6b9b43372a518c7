package ghclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spiffcs/ghaudit/internal/constants"
	"github.com/spiffcs/ghaudit/internal/log"
	"github.com/spiffcs/ghaudit/internal/model"
	"golang.org/x/sync/errgroup"
)

// Aggregate assembles the full profile of username.
//
// Phase 1 fetches the user, the repository listing and the pull request
// search concurrently; any of those failing fails the aggregation. Phase 2
// fetches READMEs, commits and languages concurrently, each degrading to an
// empty result on failure.
func (c *Client) Aggregate(ctx context.Context, username string) (*model.Profile, error) {
	start := time.Now()

	var (
		user     model.User
		listing  RepoListing
		prs      []model.PullRequest
		userErr  error
		reposErr error
		prsErr   error
	)

	// Siblings are not canceled on failure so that the error reported is
	// decided by the fixed precedence below rather than by timing.
	var g errgroup.Group
	g.Go(func() error {
		user, userErr = c.FetchUser(ctx, username)
		return nil
	})
	g.Go(func() error {
		listing, reposErr = c.ListRepos(ctx, username)
		return nil
	})
	g.Go(func() error {
		prs, prsErr = c.SearchPullRequests(ctx, username)
		return nil
	})
	_ = g.Wait()

	switch {
	case userErr != nil:
		return nil, fmt.Errorf("user: %w", userErr)
	case reposErr != nil:
		return nil, fmt.Errorf("repos: %w", reposErr)
	case prsErr != nil:
		return nil, fmt.Errorf("pull requests: %w", prsErr)
	}
	log.Debug("profile phase 1 complete", "username", username, "duration", time.Since(start))

	profile := &model.Profile{
		User:         user,
		TopRepos:     head(listing.Original, constants.TopRepoLimit),
		ForkedRepos:  head(listing.Forked, constants.ForkedRepoLimit),
		PullRequests: prs,
		PRStats:      ComputePRStats(prs, username),
	}

	readmeRepos := head(profile.TopRepos, constants.ReadmeRepoLimit)
	langRepos := head(append(append([]model.Repo{}, profile.TopRepos...), profile.ForkedRepos...), constants.LanguageRepoLimit)
	readmes := make([]string, len(readmeRepos))

	p2, p2ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for i, repo := range readmeRepos {
		p2.Go(func() error {
			content := c.FetchReadme(p2ctx, username, repo.Name)
			mu.Lock()
			readmes[i] = content
			mu.Unlock()
			return nil
		})
	}
	p2.Go(func() error {
		commits := c.RecentCommits(p2ctx, username, profile.TopRepos)
		mu.Lock()
		profile.RecentCommits = commits
		mu.Unlock()
		return nil
	})
	p2.Go(func() error {
		langs := c.Languages(p2ctx, username, langRepos)
		mu.Lock()
		profile.LanguageStats = langs
		mu.Unlock()
		return nil
	})
	_ = p2.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", username, err)
	}

	for i, content := range readmes {
		if content != "" {
			profile.Readmes = append(profile.Readmes, model.Readme{RepoName: readmeRepos[i].Name, Content: content})
		}
	}
	for _, r := range profile.TopRepos {
		profile.TotalStars += r.Stars
		profile.TotalForks += r.Forks
	}

	log.Info("profile aggregated",
		"username", username,
		"top_repos", len(profile.TopRepos),
		"forks", len(profile.ForkedRepos),
		"readmes", len(profile.Readmes),
		"commits", len(profile.RecentCommits),
		"pull_requests", len(profile.PullRequests),
		"duration", time.Since(start))
	return profile, nil
}

// fanOut runs fn for 0..n-1 concurrently and waits for all of them.
func fanOut(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(gctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
