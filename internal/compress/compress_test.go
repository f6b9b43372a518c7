package compress

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/spiffcs/ghaudit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripReadme(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "html comments and tags",
			raw:  "# Tool\n<!-- hidden -->\n<p align=\"center\">Fast <b>CLI</b></p>",
			want: "# Tool\n\nFast CLI",
		},
		{
			name: "badges",
			raw:  "# Tool ![build](https://ci/badge.svg) ![cov](x)\nUsage here",
			want: "# Tool  \nUsage here",
		},
		{
			name: "linked badges",
			raw:  "# Tool [![ci](https://ci/badge.svg)](https://ci/run) [ ](x)\nSee [docs](https://docs)",
			want: "# Tool  \nSee [docs](https://docs)",
		},
		{
			name: "license section through next heading",
			raw:  "# Tool\nIntro\n## License\nMIT blah\nmore\n## Usage\nrun it",
			want: "# Tool\nIntro\n## Usage\nrun it",
		},
		{
			name: "trailing contributors section to end",
			raw:  "# Tool\nIntro\n### contributors\n- alice\n- bob",
			want: "# Tool\nIntro",
		},
		{
			name: "authorization heading is kept",
			raw:  "# Tool\n## Authorization\nuse a token",
			want: "# Tool\n## Authorization\nuse a token",
		},
		{
			name: "blank line runs collapse",
			raw:  "a\n\n\n\n\nb",
			want: "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripReadme(tt.raw, 800))
		})
	}
}

func TestStripReadmeTruncatesAtWordBoundary(t *testing.T) {
	raw := "alpha beta gamma delta"

	got := StripReadme(raw, 13)

	assert.Equal(t, "alpha beta…", got)
}

func TestStripReadmeBudget(t *testing.T) {
	raw := strings.Repeat("word ", 500) + strings.Repeat("é", 900)

	for _, budget := range []int{10, 100, 800} {
		got := StripReadme(raw, budget)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), budget+utf8.RuneCountInString("…"))
	}
}

func TestStripReadmeSingleLongWordKeepsBudget(t *testing.T) {
	got := StripReadme(strings.Repeat("x", 50), 10)
	assert.Equal(t, strings.Repeat("x", 10)+"…", got)
}

func TestStripReadmeIdempotentOnCleanText(t *testing.T) {
	clean := "# Tool\n\nA small tool that does one thing.\n\n## Usage\nRun it."

	once := StripReadme(clean, 800)
	twice := StripReadme(once, 800)

	assert.Equal(t, clean, once)
	assert.Equal(t, once, twice)
}

func TestStripReadmeDefaultBudget(t *testing.T) {
	got := StripReadme(strings.Repeat("a ", 1000), 0)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 801)
}

func TestStripEmpty(t *testing.T) {
	in := Fields{
		{"user", "octocat"},
		{"name", nil},
		{"bio", "   "},
		{"repos", 0},
		{"topics", []string{}},
		{"nested", map[string]any{"a": "", "b": []any{nil, "x"}, "c": false}},
	}

	got := JSON(in)

	assert.Equal(t, `{"user":"octocat","repos":0,"nested":{"b":["x"],"c":false}}`, got)
}

func TestStripEmptyPreservesScalars(t *testing.T) {
	assert.Equal(t, 3, StripEmpty(3))
	assert.Equal(t, "x", StripEmpty("x"))
	assert.Nil(t, StripEmpty(nil))
}

func TestFieldsMarshalKeepsOrder(t *testing.T) {
	data, err := json.Marshal(Fields{{"z", 1}, {"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"b"}`, string(data))
}

func TestRepos(t *testing.T) {
	repos := []model.Repo{
		{Name: "ghaudit", Description: "Profile audits", Stars: 12, Language: "Go", Forks: 3, License: "MIT", Topics: []string{"cli", "github"}},
		{Name: "dotfiles"},
		{Name: "notes", Language: "Markdown"},
	}

	want := strings.Join([]string{
		"- ghaudit: Profile audits (★12, Lang:Go, Forks:3, Licensed, [cli,github])",
		"- dotfiles",
		"- notes (Lang:Markdown)",
	}, "\n")

	assert.Equal(t, want, Repos(repos))
	assert.Empty(t, Repos(nil))
}

func TestPullRequests(t *testing.T) {
	prs := []model.PullRequest{
		{Title: "Fix race", RepoFullName: "golang/go", Merged: true, RepoStars: 120000},
		{Title: "Add docs", RepoFullName: "octocat/hello", RepoStars: 0},
	}

	want := "- Fix race → golang/go (✓merged, ★120000)\n- Add docs → octocat/hello (open, ★0)"
	assert.Equal(t, want, PullRequests(prs))
}

func TestCommits(t *testing.T) {
	commits := []model.Commit{
		{RepoName: "ghaudit", Message: strings.Repeat("m", 100), Date: time.Date(2024, 5, 6, 23, 0, 0, 0, time.UTC)},
	}

	got := Commits(commits)

	assert.Equal(t, "- [2024-05-06] ghaudit: "+strings.Repeat("m", 80), got)
}
