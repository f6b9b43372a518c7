package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spiffcs/ghaudit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func sampleView() model.ProfileView {
	return model.ProfileView{
		User: model.User{
			Login:       "octocat",
			Name:        "The Octocat",
			Bio:         "Building things",
			HTMLURL:     "https://github.com/octocat",
			Followers:   42,
			PublicRepos: 8,
		},
		TopRepos: []model.Repo{
			{Name: "hello-world", HTMLURL: "https://github.com/octocat/hello-world", Language: "Go", Stars: 120, Forks: 4, PushedAt: now.Add(-3 * 24 * time.Hour)},
			{Name: "spoon-knife", Stars: 3},
		},
		PullRequests: []model.PullRequest{
			{Title: "Fix typo in docs", RepoFullName: "golang/go", State: "closed", Merged: true, URL: "https://github.com/golang/go/pull/1"},
			{Title: "Add flag", RepoFullName: "spf13/cobra", State: "open"},
		},
		TotalStars: 123,
		TotalForks: 4,
		PRStats:    model.PRStats{Total: 2, Merged: 1, Open: 1, AcceptanceRate: 50},
	}
}

func fullResponse() *model.Response {
	return &model.Response{
		Mode:       model.ModeFull,
		GitHubData: sampleView(),
		Analysis: &model.Analysis{
			ProfileScore: 78,
			ScoreBreakdown: model.ScoreBreakdown{
				Professionalism: 80, Documentation: 60, TechnicalBreadth: 70, CommunityEngagement: 40, CodeQuality: 90,
			},
			SuggestedBio:    "Go engineer building developer tools",
			TopImprovements: []string{"Pin repositories", "Add a profile README"},
			ActionItems: []model.ActionItem{
				{Title: "Add licenses", Description: "License your repos", Priority: model.PriorityLow, Category: model.CategoryRepository},
				{Title: "Write a bio", Description: "Say what you do", Priority: model.PriorityHigh, Category: model.CategoryProfile},
			},
			LanguageConfidence: []model.LanguageConfidence{{Language: "Go", Percentage: 90, Confidence: model.ConfidenceExpert}},
			Summary:            "A solid profile.",
			ReadmeCritiques:    []model.ReadmeCritique{{RepoName: "hello-world", Score: 70, Strengths: []string{"clear"}, Improvements: []string{"add examples"}}},
			HiringInsights: model.HiringInsights{
				Headline:        "Tooling-focused Go developer",
				PortfolioHealth: model.PortfolioHealth{HighImpact: []string{"hello-world"}, Clutter: []string{"spoon-knife"}},
				Roadmap:         []model.RoadmapStep{{Step: 1, Title: "Ship a CLI", Description: "Publish one"}},
			},
		},
	}
}

func growthResponse(roadmap *model.Roadmap) *model.Response {
	view := sampleView()
	view.TopRepos = nil
	return &model.Response{Mode: model.ModeGrowth, GitHubData: view, Roadmap: roadmap}
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &TableFormatter{}, NewFormatter(FormatTable))
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON))
	assert.IsType(t, &MarkdownFormatter{}, NewFormatter(FormatMarkdown))
	assert.IsType(t, &TableFormatter{}, NewFormatter(""))
}

func TestFormatValid(t *testing.T) {
	for _, f := range Formats {
		assert.True(t, f.Valid(), f)
	}
	assert.False(t, Format("yaml").Valid())
	assert.False(t, Format("").Valid())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(fullResponse(), &buf))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "full", got["mode"])
	assert.Contains(t, got, "analysis")
	assert.NotContains(t, got, "cached")
}

func TestJSONFormatterInsufficient(t *testing.T) {
	var buf bytes.Buffer
	resp := &model.Response{Mode: model.ModeInsufficientData, GitHubData: sampleView()}
	require.NoError(t, (&JSONFormatter{Pretty: true}).Format(resp, &buf))
	assert.Contains(t, buf.String(), `"error": "insufficient_data"`)
}

func TestTableFormatterFull(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	f := &TableFormatter{Width: 80, Now: func() time.Time { return now }}
	require.NoError(t, f.Format(fullResponse(), &buf))
	out := buf.String()

	assert.Contains(t, out, "octocat (The Octocat)")
	assert.Contains(t, out, "42 followers · 8 repos · ★ 123 · 4 forks · 2 PRs (50% merged)")
	assert.Contains(t, out, "hello-world")
	assert.Contains(t, out, "3d")
	assert.Contains(t, out, "Overall")
	assert.Contains(t, out, "Go engineer building developer tools")
	assert.Contains(t, out, "1. Pin repositories")
	assert.Contains(t, out, "Tooling-focused Go developer")
	assert.NotContains(t, out, "[cached]")
	assert.NotContains(t, out, "limited data")

	high := strings.Index(out, "Write a bio")
	low := strings.Index(out, "Add licenses")
	require.NotEqual(t, -1, high)
	require.NotEqual(t, -1, low)
	assert.Less(t, high, low, "high priority items are listed first")
}

func TestTableFormatterFlags(t *testing.T) {
	disableColor(t)
	resp := fullResponse()
	resp.LowData = true
	resp = resp.WithCached()

	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{Width: 80}).Format(resp, &buf))
	assert.Contains(t, buf.String(), "[cached]")
	assert.Contains(t, buf.String(), "limited data")
}

func TestTableFormatterGrowth(t *testing.T) {
	disableColor(t)
	roadmap := &model.Roadmap{
		ExpertiseAreas: []model.ExpertiseArea{{Title: "Compilers", Description: "Merged fixes in golang/go"}},
		ProjectIdea:    model.ProjectIdea{Title: "Lint tool", Description: "A linter", TechStack: []string{"Go", "SSA"}},
	}

	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{Width: 80}).Format(growthResponse(roadmap), &buf))
	out := buf.String()
	assert.Contains(t, out, "Pull requests")
	assert.Contains(t, out, "merged")
	assert.Contains(t, out, "golang/go")
	assert.Contains(t, out, "Compilers")
	assert.Contains(t, out, "Project idea: Lint tool")
	assert.Contains(t, out, "Stack: Go, SSA")
	assert.NotContains(t, out, "Top repositories")
}

func TestTableFormatterGrowthWithoutRoadmap(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{Width: 80}).Format(growthResponse(nil), &buf))
	assert.Contains(t, buf.String(), roadmapUnavailable)
}

func TestTableFormatterInsufficient(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	resp := &model.Response{Mode: model.ModeInsufficientData, GitHubData: model.ProfileView{User: model.User{Login: "ghost"}}}
	require.NoError(t, (&TableFormatter{Width: 80}).Format(resp, &buf))
	assert.Contains(t, buf.String(), "ghost")
	assert.Contains(t, buf.String(), insufficientMessage)
}

func TestFormattersRejectUnknownMode(t *testing.T) {
	resp := &model.Response{Mode: "bogus"}
	var buf bytes.Buffer
	assert.Error(t, (&TableFormatter{Width: 80}).Format(resp, &buf))
	assert.Error(t, (&MarkdownFormatter{}).Format(resp, &buf))
	assert.Error(t, (&TableFormatter{}).Format(nil, &buf))
}

func TestMarkdownFormatterFull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownFormatter{}).Format(fullResponse(), &buf))
	out := buf.String()

	assert.Contains(t, out, "# GitHub Profile Report: [octocat](https://github.com/octocat)")
	assert.Contains(t, out, "## Profile Score: 78/100 (fair)")
	assert.Contains(t, out, "| Community engagement | 40 |")
	assert.Contains(t, out, "| [hello-world](https://github.com/octocat/hello-world) | Go | 120 | 4 |")
	assert.Contains(t, out, "| [spoon-knife]() | - | 3 | 0 |")
	assert.Contains(t, out, "- 🔴 **Write a bio** (`profile`): Say what you do")
	assert.Contains(t, out, "### hello-world (70/100)")
	assert.Contains(t, out, "| Go | 90% | expert |")
	assert.Contains(t, out, "- **Clutter:** `spoon-knife`")
	assert.Contains(t, out, "1. **Ship a CLI** - Publish one")
}

func TestMarkdownFormatterGrowth(t *testing.T) {
	roadmap := &model.Roadmap{
		ExpertiseAreas: []model.ExpertiseArea{{Title: "Compilers", Description: "Merged fixes"}},
		ProjectIdea:    model.ProjectIdea{Title: "Lint tool", Description: "A linter", TechStack: []string{"Go"}},
	}

	var buf bytes.Buffer
	require.NoError(t, (&MarkdownFormatter{}).Format(growthResponse(roadmap), &buf))
	out := buf.String()
	assert.Contains(t, out, "## Growth Roadmap")
	assert.Contains(t, out, "- **Compilers** - Merged fixes")
	assert.Contains(t, out, "### Project Idea: Lint tool")
	assert.Contains(t, out, "**Tech stack:** `Go`")
	assert.NotContains(t, out, "## Top Repositories")

	buf.Reset()
	require.NoError(t, (&MarkdownFormatter{}).Format(growthResponse(nil), &buf))
	assert.Contains(t, buf.String(), roadmapUnavailable)
}

func TestMarkdownFormatterInsufficient(t *testing.T) {
	var buf bytes.Buffer
	resp := &model.Response{Mode: model.ModeInsufficientData, GitHubData: model.ProfileView{User: model.User{Login: "ghost"}}}
	require.NoError(t, (&MarkdownFormatter{}).Format(resp, &buf))
	assert.Contains(t, buf.String(), "(https://github.com/ghost)")
	assert.Contains(t, buf.String(), "## Insufficient Data")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "one two\nthree", wrap("one two three", 8))
	assert.Equal(t, "short", wrap("short", 80))
	assert.Equal(t, "", wrap("", 10))
	assert.Equal(t, "unbreakableword", wrap("unbreakableword", 4))
}

func TestSortedActionItemsStable(t *testing.T) {
	items := []model.ActionItem{
		{Title: "a", Priority: model.PriorityLow},
		{Title: "b", Priority: model.PriorityHigh},
		{Title: "c", Priority: model.PriorityMedium},
		{Title: "d", Priority: model.PriorityHigh},
	}
	got := sortedActionItems(items)
	titles := make([]string, len(got))
	for i, it := range got {
		titles[i] = it.Title
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, titles)
	assert.Equal(t, "a", items[0].Title, "input is not reordered")
}
