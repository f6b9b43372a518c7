package ghclient

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	gh "github.com/google/go-github/v60/github"
	"github.com/spiffcs/ghaudit/internal/constants"
	"github.com/spiffcs/ghaudit/internal/log"
	"github.com/spiffcs/ghaudit/internal/model"
)

// FetchUser fetches the public profile of username.
func (c *Client) FetchUser(ctx context.Context, username string) (model.User, error) {
	u, _, err := c.client.Users.Get(ctx, username)
	if err != nil {
		return model.User{}, classify(err,
			fmt.Sprintf("Failed to fetch user %q", username),
			fmt.Sprintf("User %q not found", username))
	}
	return toUser(u), nil
}

// RepoListing is the owner's repositories split into originals and forks,
// each in ranked order.
type RepoListing struct {
	Original []model.Repo
	Forked   []model.Repo
}

// ListRepos fetches the repositories owned by username and ranks them.
// Originals are ordered by stars plus a recency boost, forks by stars.
func (c *Client) ListRepos(ctx context.Context, username string) (RepoListing, error) {
	opts := &gh.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: constants.RepoListPageSize},
	}
	repos, _, err := c.client.Repositories.ListByUser(ctx, username, opts)
	if err != nil {
		return RepoListing{}, classify(err,
			fmt.Sprintf("Failed to fetch repos for %q", username),
			fmt.Sprintf("User %q not found", username))
	}

	listing := RepoListing{Original: []model.Repo{}, Forked: []model.Repo{}}
	for _, r := range repos {
		if r.GetFork() {
			listing.Forked = append(listing.Forked, toRepo(r))
		} else {
			listing.Original = append(listing.Original, toRepo(r))
		}
	}

	cutoff := c.now().Add(-constants.RecencyWindow)
	score := func(r model.Repo) int {
		if r.PushedAt.After(cutoff) {
			return r.Stars + constants.RecencyBoost
		}
		return r.Stars
	}
	slices.SortStableFunc(listing.Original, func(a, b model.Repo) int {
		return cmp.Compare(score(b), score(a))
	})
	slices.SortStableFunc(listing.Forked, func(a, b model.Repo) int {
		return cmp.Compare(b.Stars, a.Stars)
	})

	log.Debug("listed repositories", "username", username, "original", len(listing.Original), "forked", len(listing.Forked))
	return listing, nil
}

// FetchReadme returns the decoded README of owner/repo, cut to the raw
// character limit. Any failure yields an empty string.
func (c *Client) FetchReadme(ctx context.Context, owner, repo string) string {
	rc, _, err := c.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		log.Debug("readme unavailable", "repo", owner+"/"+repo, "error", err)
		return ""
	}
	content, err := rc.GetContent()
	if err != nil {
		log.Debug("readme undecodable", "repo", owner+"/"+repo, "error", err)
		return ""
	}
	return truncateRaw(content)
}

func truncateRaw(text string) string {
	runes := []rune(text)
	if len(runes) <= constants.ReadmeRawMaxChars {
		return text
	}
	return string(runes[:constants.ReadmeRawMaxChars]) + constants.ReadmeTruncationMarker
}

// RecentCommits fetches commits authored by username in the first few
// repos, merged newest first and capped. Per-repo failures are skipped.
func (c *Client) RecentCommits(ctx context.Context, username string, repos []model.Repo) []model.Commit {
	repos = repos[:min(len(repos), constants.CommitRepoLimit)]
	perRepo := make([][]model.Commit, len(repos))

	fanOut(ctx, len(repos), func(ctx context.Context, i int) {
		opts := &gh.CommitsListOptions{
			Author:      username,
			ListOptions: gh.ListOptions{PerPage: constants.CommitsPerRepo},
		}
		commits, _, err := c.client.Repositories.ListCommits(ctx, username, repos[i].Name, opts)
		if err != nil {
			log.Debug("commits unavailable", "repo", repos[i].Name, "error", err)
			return
		}
		for _, rc := range commits {
			perRepo[i] = append(perRepo[i], toCommit(repos[i].Name, rc))
		}
	})

	var merged []model.Commit
	for _, cs := range perRepo {
		merged = append(merged, cs...)
	}
	slices.SortStableFunc(merged, func(a, b model.Commit) int {
		return b.Date.Compare(a.Date)
	})
	return merged[:min(len(merged), constants.CommitLimit)]
}

// Languages fetches and merges language byte counts for the given repos.
// Per-repo failures contribute nothing.
func (c *Client) Languages(ctx context.Context, owner string, repos []model.Repo) model.LanguageStats {
	perRepo := make([]map[string]int, len(repos))

	fanOut(ctx, len(repos), func(ctx context.Context, i int) {
		langs, _, err := c.client.Repositories.ListLanguages(ctx, owner, repos[i].Name)
		if err != nil {
			log.Debug("languages unavailable", "repo", repos[i].Name, "error", err)
			return
		}
		perRepo[i] = langs
	})

	stats := model.LanguageStats{}
	for _, langs := range perRepo {
		for lang, bytes := range langs {
			stats[lang] += bytes
		}
	}
	return stats
}

// SearchPullRequests fetches the most recent pull requests authored by
// username and attaches the star count of each owning repository.
func (c *Client) SearchPullRequests(ctx context.Context, username string) ([]model.PullRequest, error) {
	opts := &gh.SearchOptions{
		Sort:        "created",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: constants.PullRequestLimit},
	}
	result, _, err := c.client.Search.Issues(ctx, fmt.Sprintf("author:%s type:pr", username), opts)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("Failed to search pull requests for %q", username), "")
	}

	prs := make([]model.PullRequest, 0, len(result.Issues))
	for _, issue := range result.Issues {
		prs = append(prs, toPullRequest(issue))
	}

	stars := c.repoStars(ctx, prs)
	for i := range prs {
		prs[i].RepoStars = stars[prs[i].RepoFullName]
	}
	return prs, nil
}

// repoStars fetches the star count of each distinct repository referenced
// by prs. Failed lookups count as zero.
func (c *Client) repoStars(ctx context.Context, prs []model.PullRequest) map[string]int {
	var unique []model.PullRequest
	seen := make(map[string]bool)
	for _, pr := range prs {
		if !seen[pr.RepoFullName] {
			seen[pr.RepoFullName] = true
			unique = append(unique, pr)
		}
	}

	counts := make([]int, len(unique))
	fanOut(ctx, len(unique), func(ctx context.Context, i int) {
		repo, _, err := c.client.Repositories.Get(ctx, unique[i].RepoOwner, unique[i].RepoName)
		if err != nil {
			log.Debug("repo stars unavailable", "repo", unique[i].RepoFullName, "error", err)
			return
		}
		counts[i] = repo.GetStargazersCount()
	})

	stars := make(map[string]int, len(unique))
	for i, pr := range unique {
		stars[pr.RepoFullName] = counts[i]
	}
	return stars
}

// ComputePRStats derives pull request statistics for username.
func ComputePRStats(prs []model.PullRequest, username string) model.PRStats {
	var s model.PRStats
	s.Total = len(prs)
	for _, pr := range prs {
		if pr.Merged {
			s.Merged++
			if !strings.EqualFold(pr.RepoOwner, username) {
				s.ThirdPartyMerged++
			}
		}
		if pr.State == "open" {
			s.Open++
		}
	}
	s.Closed = s.Total - s.Open
	if s.Closed > 0 {
		s.AcceptanceRate = int(float64(s.Merged)/float64(s.Closed)*100 + 0.5)
	}
	return s
}

func toUser(u *gh.User) model.User {
	return model.User{
		Login:           u.GetLogin(),
		Name:            u.GetName(),
		Bio:             u.GetBio(),
		AvatarURL:       u.GetAvatarURL(),
		HTMLURL:         u.GetHTMLURL(),
		Company:         u.GetCompany(),
		Location:        u.GetLocation(),
		Blog:            u.GetBlog(),
		TwitterUsername: u.GetTwitterUsername(),
		PublicRepos:     u.GetPublicRepos(),
		PublicGists:     u.GetPublicGists(),
		Followers:       u.GetFollowers(),
		Following:       u.GetFollowing(),
		CreatedAt:       u.GetCreatedAt().Time,
		UpdatedAt:       u.GetUpdatedAt().Time,
	}
}

func toRepo(r *gh.Repository) model.Repo {
	license := ""
	if l := r.GetLicense(); l != nil {
		license = cmp.Or(l.GetSPDXID(), l.GetName(), "NOASSERTION")
	}
	return model.Repo{
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		HTMLURL:     r.GetHTMLURL(),
		Homepage:    r.GetHomepage(),
		Language:    r.GetLanguage(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Watchers:    r.GetWatchersCount(),
		OpenIssues:  r.GetOpenIssuesCount(),
		Topics:      r.Topics,
		License:     license,
		Fork:        r.GetFork(),
		HasWiki:     r.GetHasWiki(),
		HasPages:    r.GetHasPages(),
		CreatedAt:   r.GetCreatedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
		PushedAt:    r.GetPushedAt().Time,
	}
}

func toCommit(repoName string, rc *gh.RepositoryCommit) model.Commit {
	message, _, _ := strings.Cut(rc.GetCommit().GetMessage(), "\n")
	sha := rc.GetSHA()
	if len(sha) > constants.ShortSHALength {
		sha = sha[:constants.ShortSHALength]
	}
	return model.Commit{
		RepoName: repoName,
		Message:  message,
		Date:     rc.GetCommit().GetAuthor().GetDate().Time,
		SHA:      sha,
	}
}

func toPullRequest(issue *gh.Issue) model.PullRequest {
	owner, name := repoFromURL(issue.GetRepositoryURL())
	body := []rune(issue.GetBody())
	if len(body) > constants.PRBodyMaxChars {
		body = body[:constants.PRBodyMaxChars]
	}
	merged := issue.PullRequestLinks != nil && issue.PullRequestLinks.MergedAt != nil
	return model.PullRequest{
		Title:        issue.GetTitle(),
		RepoFullName: owner + "/" + name,
		RepoOwner:    owner,
		RepoName:     name,
		State:        issue.GetState(),
		Merged:       merged,
		URL:          issue.GetHTMLURL(),
		CreatedAt:    issue.GetCreatedAt().Time,
		Body:         string(body),
	}
}
