package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spiffcs/ghaudit/internal/format"
	"github.com/spiffcs/ghaudit/internal/model"
	"golang.org/x/term"
)

const (
	defaultWidth = 100
	minWidth     = 60
	barWidth     = 20
)

// TableFormatter formats output for a terminal
type TableFormatter struct {
	// Width overrides the detected terminal width. Zero means detect.
	Width int
	// Now is used for repository ages. Defaults to time.Now.
	Now func() time.Time
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(w io.Writer, text, url string) string {
	if url == "" || !isTerminal(w) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (f *TableFormatter) width(w io.Writer) int {
	if f.Width > 0 {
		return f.Width
	}
	if file, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(file.Fd())); err == nil && cols > 0 {
			return max(cols, minWidth)
		}
	}
	return defaultWidth
}

func (f *TableFormatter) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// Format outputs the response as terminal sections
func (f *TableFormatter) Format(resp *model.Response, w io.Writer) error {
	if resp == nil {
		return fmt.Errorf("no response to format")
	}
	width := f.width(w)

	f.printHeader(resp, w, width)

	switch resp.Mode {
	case model.ModeFull:
		f.printRepos(resp.GitHubData.TopRepos, w, width)
		f.printAnalysis(resp.Analysis, resp.LowData, w, width)
	case model.ModeGrowth:
		f.printPullRequests(resp.GitHubData.PullRequests, w, width)
		f.printRoadmap(resp.Roadmap, w, width)
	case model.ModeInsufficientData:
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", color.YellowString("!"), insufficientMessage)
	default:
		return fmt.Errorf("unknown response mode %q", resp.Mode)
	}
	return nil
}

func (f *TableFormatter) printHeader(resp *model.Response, w io.Writer, width int) {
	v := resp.GitHubData
	u := v.User

	title := color.New(color.Bold).Sprint(u.Login)
	if u.Name != "" {
		title += " (" + u.Name + ")"
	}
	fmt.Fprint(w, hyperlink(w, title, profileURL(u)))
	if resp.Cached {
		fmt.Fprint(w, color.HiBlackString("  [cached]"))
	}
	fmt.Fprintln(w)

	stats := fmt.Sprintf("%d followers · %d repos · ★ %d · %d forks", u.Followers, u.PublicRepos, v.TotalStars, v.TotalForks)
	if v.PRStats.Total > 0 {
		stats += fmt.Sprintf(" · %d PRs (%d%% merged)", v.PRStats.Total, v.PRStats.AcceptanceRate)
	}
	fmt.Fprintln(w, color.New(color.FgHiBlack).Sprint(stats))
	if u.Bio != "" {
		bio, _ := format.TruncateToWidth(u.Bio, width)
		fmt.Fprintln(w, bio)
	}
}

func (f *TableFormatter) printSection(title string, w io.Writer, width int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, color.New(color.Bold).Sprint(title))
	fmt.Fprintln(w, strings.Repeat("━", min(width, 60)))
}

func (f *TableFormatter) printRepos(repos []model.Repo, w io.Writer, width int) {
	if len(repos) == 0 {
		return
	}
	const (
		colLang  = 12
		colStars = 6
		colAge   = 7
	)
	colName := min(30, width-colLang-colStars-colAge-6)

	f.printSection("Top repositories", w, width)
	fmt.Fprintf(w, "%-*s  %-*s  %*s  %s\n", colName, "Name", colLang, "Language", colStars, "Stars", "Updated")
	for _, r := range repos {
		name, _ := format.TruncateToWidth(r.Name, colName)
		name = format.PadRight(hyperlink(w, name, r.HTMLURL), colName)
		lang, _ := format.TruncateToWidth(orDash(r.Language), colLang)
		age := "-"
		if !r.PushedAt.IsZero() {
			age = format.Age(f.now().Sub(r.PushedAt))
		}
		fmt.Fprintf(w, "%s  %s  %*d  %s\n", name, format.PadRight(lang, colLang), colStars, r.Stars, age)
	}
}

func (f *TableFormatter) printPullRequests(prs []model.PullRequest, w io.Writer, width int) {
	if len(prs) == 0 {
		return
	}
	const colState = 8
	colRepo := min(30, width/3)
	colTitle := max(10, width-colRepo-colState-4)

	f.printSection("Pull requests", w, width)
	for _, pr := range prs {
		repo, _ := format.TruncateToWidth(pr.RepoFullName, colRepo)
		title, _ := format.TruncateToWidth(pr.Title, colTitle)
		fmt.Fprintf(w, "%s  %s  %s\n",
			format.PadRight(prState(pr), colState),
			format.PadRight(repo, colRepo),
			hyperlink(w, title, pr.URL))
	}
}

func prState(pr model.PullRequest) string {
	switch {
	case pr.Merged:
		return color.MagentaString("merged")
	case pr.State == "open":
		return color.GreenString("open")
	}
	return color.RedString("closed")
}

func (f *TableFormatter) printAnalysis(a *model.Analysis, lowData bool, w io.Writer, width int) {
	if a == nil {
		return
	}

	f.printSection("Profile score", w, width)
	score := int(a.ProfileScore)
	fmt.Fprintf(w, "%-22s %s %s\n", "Overall", colorScore(score, format.ScoreBar(score, barWidth)), colorScore(score, fmt.Sprintf("%3d", score)))
	for _, row := range breakdownRows(a.ScoreBreakdown) {
		fmt.Fprintf(w, "  %-20s %s %3d\n", row.label, colorScore(row.score, format.ScoreBar(row.score, barWidth)), row.score)
	}
	if lowData {
		fmt.Fprintf(w, "\n%s No README files were found, so this analysis is based on limited data.\n", color.YellowString("!"))
	}
	if a.Summary != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, wrap(a.Summary, width))
	}

	if a.SuggestedBio != "" {
		f.printSection("Suggested bio", w, width)
		fmt.Fprintln(w, wrap(a.SuggestedBio, width))
	}

	if len(a.TopImprovements) > 0 {
		f.printSection("Top improvements", w, width)
		for i, imp := range a.TopImprovements {
			fmt.Fprintf(w, "%d. %s\n", i+1, imp)
		}
	}

	if len(a.ActionItems) > 0 {
		const (
			colPriority = 8
			colCategory = 14
		)
		colTitle := max(10, width-colPriority-colCategory-4)
		f.printSection("Action items", w, width)
		for _, item := range sortedActionItems(a.ActionItems) {
			prio := format.PadRight(colorPriority(item.Priority), colPriority)
			title, _ := format.TruncateToWidth(item.Title, colTitle)
			fmt.Fprintf(w, "%s  %-*s  %s\n", prio, colCategory, item.Category, title)
		}
	}

	if len(a.LanguageConfidence) > 0 {
		f.printSection("Languages", w, width)
		for _, l := range a.LanguageConfidence {
			fmt.Fprintf(w, "%-16s %3d%%  %s\n", l.Language, l.Percentage, l.Confidence)
		}
	}

	h := a.HiringInsights
	if h.Headline != "" || len(h.Roadmap) > 0 {
		f.printSection("Hiring insights", w, width)
		if h.Headline != "" {
			fmt.Fprintln(w, wrap(h.Headline, width))
		}
		if len(h.PortfolioHealth.HighImpact) > 0 {
			fmt.Fprintf(w, "%s %s\n", color.GreenString("High impact:"), strings.Join(h.PortfolioHealth.HighImpact, ", "))
		}
		if len(h.PortfolioHealth.Clutter) > 0 {
			fmt.Fprintf(w, "%s %s\n", color.YellowString("Clutter:"), strings.Join(h.PortfolioHealth.Clutter, ", "))
		}
		for _, s := range h.Roadmap {
			fmt.Fprintf(w, "%d. %s\n", s.Step, s.Title)
		}
	}
}

func (f *TableFormatter) printRoadmap(r *model.Roadmap, w io.Writer, width int) {
	f.printSection("Growth roadmap", w, width)
	if r == nil {
		fmt.Fprintln(w, roadmapUnavailable)
		return
	}
	for _, a := range r.ExpertiseAreas {
		fmt.Fprintf(w, "%s %s\n", color.CyanString("●"), color.New(color.Bold).Sprint(a.Title))
		if a.Description != "" {
			fmt.Fprintln(w, "  "+wrap(a.Description, width-2))
		}
	}
	if r.ProjectIdea.Title != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Project idea: %s\n", color.New(color.Bold).Sprint(r.ProjectIdea.Title))
		if r.ProjectIdea.Description != "" {
			fmt.Fprintln(w, wrap(r.ProjectIdea.Description, width))
		}
		if len(r.ProjectIdea.TechStack) > 0 {
			fmt.Fprintf(w, "Stack: %s\n", strings.Join(r.ProjectIdea.TechStack, ", "))
		}
	}
}

var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
)

func colorPriority(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return red.Sprint(p)
	case model.PriorityMedium:
		return yellow.Sprint(p)
	case model.PriorityLow:
		return green.Sprint(p)
	}
	return string(p)
}

func colorScore(score int, s string) string {
	switch format.ScoreBand(score) {
	case "strong":
		return green.Sprint(s)
	case "fair":
		return yellow.Sprint(s)
	}
	return red.Sprint(s)
}

// wrap breaks text on spaces so no line exceeds width columns.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 || width <= 0 {
		return text
	}
	var b strings.Builder
	lineWidth := 0
	for _, word := range words {
		ww := format.DisplayWidth(word)
		if lineWidth > 0 && lineWidth+1+ww > width {
			b.WriteString("\n")
			lineWidth = 0
		}
		if lineWidth > 0 {
			b.WriteString(" ")
			lineWidth++
		}
		b.WriteString(word)
		lineWidth += ww
	}
	return b.String()
}
