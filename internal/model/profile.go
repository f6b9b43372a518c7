package model

import (
	"strings"
	"time"
)

// User is the identity portion of a profile.
type User struct {
	Login           string    `json:"login"`
	Name            string    `json:"name"`
	Bio             string    `json:"bio"`
	AvatarURL       string    `json:"avatar_url"`
	HTMLURL         string    `json:"html_url"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Blog            string    `json:"blog"`
	TwitterUsername string    `json:"twitter_username"`
	PublicRepos     int       `json:"public_repos"`
	PublicGists     int       `json:"public_gists"`
	Followers       int       `json:"followers"`
	Following       int       `json:"following"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Repo is a repository owned by the profile subject.
type Repo struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Homepage    string    `json:"homepage"`
	Language    string    `json:"language"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Watchers    int       `json:"watchers_count"`
	OpenIssues  int       `json:"open_issues_count"`
	Topics      []string  `json:"topics"`
	License     string    `json:"license,omitempty"`
	Fork        bool      `json:"fork"`
	HasWiki     bool      `json:"has_wiki"`
	HasPages    bool      `json:"has_pages"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PushedAt    time.Time `json:"pushed_at"`
}

// Licensed reports whether the repository declares a license.
func (r Repo) Licensed() bool {
	return r.License != ""
}

// Commit is a recent commit authored by the subject.
type Commit struct {
	RepoName string    `json:"repoName"`
	Message  string    `json:"message"`
	Date     time.Time `json:"date"`
	SHA      string    `json:"sha"`
}

// Readme is the decoded README of a top repository.
type Readme struct {
	RepoName string `json:"repoName"`
	Content  string `json:"content"`
}

// PullRequest is a pull request authored by the subject.
type PullRequest struct {
	Title        string    `json:"title"`
	RepoFullName string    `json:"repoFullName"`
	RepoOwner    string    `json:"repoOwner"`
	RepoName     string    `json:"repoName"`
	State        string    `json:"state"`
	Merged       bool      `json:"merged"`
	RepoStars    int       `json:"repoStars"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
	Body         string    `json:"body"`
}

// PRStats are derived from the pull request list.
type PRStats struct {
	Total            int `json:"total"`
	Merged           int `json:"merged"`
	Open             int `json:"open"`
	Closed           int `json:"closed"`
	AcceptanceRate   int `json:"acceptanceRate"`
	ThirdPartyMerged int `json:"thirdPartyMerged"`
}

// LanguageStats maps a language name to its byte count.
type LanguageStats map[string]int

// Profile is the aggregated snapshot of a subject, built once per request
// and never mutated afterwards.
type Profile struct {
	User          User          `json:"user"`
	TopRepos      []Repo        `json:"topRepos"`
	ForkedRepos   []Repo        `json:"forkedRepos"`
	Readmes       []Readme      `json:"readmes"`
	RecentCommits []Commit      `json:"recentCommits"`
	LanguageStats LanguageStats `json:"languageStats"`
	TotalStars    int           `json:"totalStars"`
	TotalForks    int           `json:"totalForks"`
	PullRequests  []PullRequest `json:"pullRequests"`
	PRStats       PRStats       `json:"prStats"`
}

// ProfileView is the client-safe subset of a Profile. READMEs and commits
// only feed the model and are not sent to clients.
type ProfileView struct {
	User          User          `json:"user"`
	TopRepos      []Repo        `json:"topRepos"`
	ForkedRepos   []Repo        `json:"forkedRepos"`
	LanguageStats LanguageStats `json:"languageStats"`
	TotalStars    int           `json:"totalStars"`
	TotalForks    int           `json:"totalForks"`
	PullRequests  []PullRequest `json:"pullRequests"`
	PRStats       PRStats       `json:"prStats"`
}

// View returns the client-safe subset of the profile.
func (p *Profile) View() ProfileView {
	return ProfileView{
		User:          p.User,
		TopRepos:      p.TopRepos,
		ForkedRepos:   p.ForkedRepos,
		LanguageStats: p.LanguageStats,
		TotalStars:    p.TotalStars,
		TotalForks:    p.TotalForks,
		PullRequests:  p.PullRequests,
		PRStats:       p.PRStats,
	}
}

// HasOriginalRepos reports whether any original repository was found.
func (p *Profile) HasOriginalRepos() bool {
	return len(p.TopRepos) > 0
}

// CacheKey identifies a cached analysis. A change of the upstream update
// timestamp yields a new key.
func CacheKey(login string, updatedAt time.Time) string {
	return strings.ToLower(login) + ":" + updatedAt.UTC().Format(time.RFC3339)
}

// CacheKey returns the result cache key for this profile.
func (p *Profile) CacheKey() string {
	return CacheKey(p.User.Login, p.User.UpdatedAt)
}
