package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/ghaudit/internal/format"
	"github.com/spiffcs/ghaudit/internal/model"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct{}

// Format outputs the response as a Markdown report
func (f *MarkdownFormatter) Format(resp *model.Response, w io.Writer) error {
	if resp == nil {
		return fmt.Errorf("no response to format")
	}
	u := resp.GitHubData.User

	fmt.Fprintf(w, "# GitHub Profile Report: [%s](%s)\n\n", u.Login, profileURL(u))
	if resp.Cached {
		fmt.Fprintln(w, "*Served from cache*")
		fmt.Fprintln(w)
	}
	f.formatProfile(resp.GitHubData, w)

	switch resp.Mode {
	case model.ModeFull:
		f.formatAnalysis(resp.Analysis, resp.LowData, w)
	case model.ModeGrowth:
		f.formatRoadmap(resp.Roadmap, w)
	case model.ModeInsufficientData:
		fmt.Fprintf(w, "## Insufficient Data\n\n%s\n", insufficientMessage)
	default:
		return fmt.Errorf("unknown response mode %q", resp.Mode)
	}
	return nil
}

func (f *MarkdownFormatter) formatProfile(v model.ProfileView, w io.Writer) {
	u := v.User
	if u.Name != "" {
		fmt.Fprintf(w, "- **Name:** %s\n", u.Name)
	}
	if u.Bio != "" {
		fmt.Fprintf(w, "- **Bio:** %s\n", u.Bio)
	}
	fmt.Fprintf(w, "- **Followers:** %d\n", u.Followers)
	fmt.Fprintf(w, "- **Public repos:** %d\n", u.PublicRepos)
	fmt.Fprintf(w, "- **Stars:** %d\n", v.TotalStars)
	if v.PRStats.Total > 0 {
		fmt.Fprintf(w, "- **Pull requests:** %d (%d merged, %d%% accepted)\n",
			v.PRStats.Total, v.PRStats.Merged, v.PRStats.AcceptanceRate)
	}
	fmt.Fprintln(w)

	if len(v.TopRepos) > 0 {
		fmt.Fprintln(w, "## Top Repositories")
		fmt.Fprintln(w, "| Repository | Language | Stars | Forks |")
		fmt.Fprintln(w, "|------------|----------|-------|-------|")
		for _, r := range v.TopRepos {
			fmt.Fprintf(w, "| [%s](%s) | %s | %d | %d |\n", r.Name, r.HTMLURL, orDash(r.Language), r.Stars, r.Forks)
		}
		fmt.Fprintln(w)
	}
}

func (f *MarkdownFormatter) formatAnalysis(a *model.Analysis, lowData bool, w io.Writer) {
	if a == nil {
		return
	}
	fmt.Fprintf(w, "## Profile Score: %d/100 (%s)\n\n", a.ProfileScore, format.ScoreBand(int(a.ProfileScore)))
	if lowData {
		fmt.Fprintln(w, "> No README files were found, so this analysis is based on limited data.")
		fmt.Fprintln(w)
	}
	if a.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", a.Summary)
	}

	fmt.Fprintln(w, "| Dimension | Score |")
	fmt.Fprintln(w, "|-----------|-------|")
	for _, d := range breakdownRows(a.ScoreBreakdown) {
		fmt.Fprintf(w, "| %s | %d |\n", d.label, d.score)
	}
	fmt.Fprintln(w)

	if a.SuggestedBio != "" {
		fmt.Fprintln(w, "## Suggested Bio")
		fmt.Fprintf(w, "> %s\n\n", a.SuggestedBio)
	}

	if len(a.TopImprovements) > 0 {
		fmt.Fprintln(w, "## Top Improvements")
		for i, imp := range a.TopImprovements {
			fmt.Fprintf(w, "%d. %s\n", i+1, imp)
		}
		fmt.Fprintln(w)
	}

	if len(a.ActionItems) > 0 {
		fmt.Fprintln(w, "## Action Items")
		for _, item := range sortedActionItems(a.ActionItems) {
			fmt.Fprintf(w, "- %s **%s** (`%s`): %s\n", priorityEmoji(item.Priority), item.Title, item.Category, item.Description)
		}
		fmt.Fprintln(w)
	}

	if len(a.ReadmeCritiques) > 0 {
		fmt.Fprintln(w, "## README Critiques")
		for _, c := range a.ReadmeCritiques {
			fmt.Fprintf(w, "### %s (%d/100)\n\n", c.RepoName, c.Score)
			for _, s := range c.Strengths {
				fmt.Fprintf(w, "- ✅ %s\n", s)
			}
			for _, s := range c.Improvements {
				fmt.Fprintf(w, "- 🔧 %s\n", s)
			}
			fmt.Fprintln(w)
		}
	}

	if len(a.LanguageConfidence) > 0 {
		fmt.Fprintln(w, "## Languages")
		fmt.Fprintln(w, "| Language | Share | Confidence |")
		fmt.Fprintln(w, "|----------|-------|------------|")
		for _, l := range a.LanguageConfidence {
			fmt.Fprintf(w, "| %s | %d%% | %s |\n", l.Language, l.Percentage, l.Confidence)
		}
		fmt.Fprintln(w)
	}

	if len(a.SuggestedSkills) > 0 {
		fmt.Fprintf(w, "**Suggested skills:** %s\n\n", formatLabels(a.SuggestedSkills))
	}

	f.formatHiringInsights(a.HiringInsights, w)
}

func (f *MarkdownFormatter) formatHiringInsights(h model.HiringInsights, w io.Writer) {
	if h.Headline == "" && len(h.Roadmap) == 0 && len(h.ProjectEnhancements) == 0 &&
		len(h.PortfolioHealth.HighImpact) == 0 && len(h.PortfolioHealth.Clutter) == 0 {
		return
	}
	fmt.Fprintln(w, "## Hiring Insights")
	if h.Headline != "" {
		fmt.Fprintf(w, "**%s**\n\n", h.Headline)
	}
	if len(h.PortfolioHealth.HighImpact) > 0 {
		fmt.Fprintf(w, "- **High impact:** %s\n", formatLabels(h.PortfolioHealth.HighImpact))
	}
	if len(h.PortfolioHealth.Clutter) > 0 {
		fmt.Fprintf(w, "- **Clutter:** %s\n", formatLabels(h.PortfolioHealth.Clutter))
	}
	for _, e := range h.ProjectEnhancements {
		fmt.Fprintf(w, "- **%s:** %s\n", e.RepoName, strings.Join(e.Suggestions, "; "))
	}
	if len(h.Roadmap) > 0 {
		fmt.Fprintln(w, "\n### Roadmap")
		for _, s := range h.Roadmap {
			fmt.Fprintf(w, "%d. **%s** - %s\n", s.Step, s.Title, s.Description)
		}
	}
	fmt.Fprintln(w)
}

func (f *MarkdownFormatter) formatRoadmap(r *model.Roadmap, w io.Writer) {
	fmt.Fprintln(w, "## Growth Roadmap")
	if r == nil {
		fmt.Fprintf(w, "%s\n", roadmapUnavailable)
		return
	}
	fmt.Fprintln(w)
	if len(r.ExpertiseAreas) > 0 {
		fmt.Fprintln(w, "### Expertise Areas")
		for _, a := range r.ExpertiseAreas {
			fmt.Fprintf(w, "- **%s** - %s\n", a.Title, a.Description)
		}
		fmt.Fprintln(w)
	}
	if r.ProjectIdea.Title != "" {
		fmt.Fprintf(w, "### Project Idea: %s\n\n%s\n\n", r.ProjectIdea.Title, r.ProjectIdea.Description)
		if len(r.ProjectIdea.TechStack) > 0 {
			fmt.Fprintf(w, "**Tech stack:** %s\n", formatLabels(r.ProjectIdea.TechStack))
		}
	}
}

func priorityEmoji(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityMedium:
		return "🟡"
	case model.PriorityLow:
		return "🟢"
	default:
		return "📋"
	}
}

func formatLabels(labels []string) string {
	formatted := make([]string, len(labels))
	for i, l := range labels {
		formatted[i] = "`" + l + "`"
	}
	return strings.Join(formatted, " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
