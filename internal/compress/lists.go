package compress

import (
	"fmt"
	"strings"
	"time"

	"github.com/spiffcs/ghaudit/internal/constants"
	"github.com/spiffcs/ghaudit/internal/model"
)

// Repos renders one line per repository:
// "- name: description (★stars, Lang:x, Forks:n, Licensed, [topics])".
// Absent or zero fields are left out.
func Repos(repos []model.Repo) string {
	lines := make([]string, 0, len(repos))
	for _, r := range repos {
		var b strings.Builder
		b.WriteString("- ")
		b.WriteString(r.Name)
		if r.Description != "" {
			b.WriteString(": ")
			b.WriteString(r.Description)
		}

		var meta []string
		if r.Stars > 0 {
			meta = append(meta, fmt.Sprintf("★%d", r.Stars))
		}
		if r.Language != "" {
			meta = append(meta, "Lang:"+r.Language)
		}
		if r.Forks > 0 {
			meta = append(meta, fmt.Sprintf("Forks:%d", r.Forks))
		}
		if r.Licensed() {
			meta = append(meta, "Licensed")
		}
		if len(r.Topics) > 0 {
			meta = append(meta, "["+strings.Join(r.Topics, ",")+"]")
		}
		if len(meta) > 0 {
			b.WriteString(" (")
			b.WriteString(strings.Join(meta, ", "))
			b.WriteString(")")
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// PullRequests renders one line per pull request:
// "- title → owner/repo (✓merged|open, ★stars)".
func PullRequests(prs []model.PullRequest) string {
	lines := make([]string, 0, len(prs))
	for _, pr := range prs {
		status := "open"
		if pr.Merged {
			status = "✓merged"
		}
		lines = append(lines, fmt.Sprintf("- %s → %s (%s, ★%d)", pr.Title, pr.RepoFullName, status, pr.RepoStars))
	}
	return strings.Join(lines, "\n")
}

// Commits renders one line per commit: "- [YYYY-MM-DD] repo: message".
// Messages are cut to 80 characters.
func Commits(commits []model.Commit) string {
	lines := make([]string, 0, len(commits))
	for _, c := range commits {
		date := ""
		if !c.Date.IsZero() {
			date = c.Date.UTC().Format(time.DateOnly)
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", date, c.RepoName, Truncate(c.Message, constants.CommitMessageChars)))
	}
	return strings.Join(lines, "\n")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
