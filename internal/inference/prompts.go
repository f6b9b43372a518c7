package inference

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spiffcs/ghaudit/internal/compress"
	"github.com/spiffcs/ghaudit/internal/constants"
	"github.com/spiffcs/ghaudit/internal/model"
)

const (
	analysisSystemPrompt = "Expert technical recruiter. Respond with valid JSON only."
	roadmapSystemPrompt  = "Career coach. Respond with valid JSON only."
)

const analysisSchema = `{"profileScore":<0-100>,"scoreBreakdown":{"professionalism":<0-100>,"documentation":<0-100>,"technicalBreadth":<0-100>,"communityEngagement":<0-100>,"codeQuality":<0-100>},"currentBio":"<bio>","suggestedBio":"<suggestion>","readmeCritiques":[{"repoName":"<name>","score":<0-100>,"strengths":["..."],"improvements":["..."]}],"suggestedSkills":["..."],"actionItems":[{"title":"<title>","description":"<action>","priority":"high|medium|low","category":"profile|repository|documentation|community"}],"languageConfidence":[{"language":"<name>","percentage":<0-100>,"confidence":"expert|proficient|familiar|beginner"}],"topImprovements":["<1>","<2>","<3>"],"summary":"<2-3 sentences>","contributionScore":<0-100>,"hiringInsights":{"headline":"<2-sentence recruiter impression>","portfolioHealth":{"highImpact":["<repo1>","<repo2>"],"clutter":["<repo3>"]},"projectEnhancements":[{"repoName":"<topRepo>","suggestions":["<tech-tip1>","<tech-tip2>"]}],"roadmap":[{"step":1,"title":"<milestone>","description":"<details>"}]}}`

const scoringRubric = `SCORING:
prof(0-100): bio+20 avatar+10 location+10 company+15 blog+15 naming+10 social+10 2yr+10
doc(0-100): readme/repo+20(max60) descriptions+15 commits+15 wiki+10
tech(0-100): 3+langs+30 5+langs+50 topics+20 complexity+15 modern+15
comm(0-100): stars_log(100+→30,10+→15) forks+15 ratio>1+15 recent+20 extPR+20
code(0-100): msgs+25 org+25 license+20 style+15 ci+15
profileScore=prof*.15+doc*.25+tech*.20+comm*.20+code*.20
contribScore: +10/merged_ext(cap60) +5/open_ext(cap20) rate>70%+20`

const roadmapSchema = `{"expertiseAreas":[{"title":"<area>","description":"<why, cite PRs>"}],"projectIdea":{"title":"<idea>","description":"<why>","techStack":["<tech>"]}}`

// BuildAnalysisPrompt renders the full-analysis prompt for p. READMEs are
// compressed to readmeChars each. The output is identical for identical
// profiles regardless of the order lists arrive in.
func BuildAnalysisPrompt(p *model.Profile, readmeChars int) string {
	repos := slices.Clone(p.TopRepos)
	slices.SortStableFunc(repos, func(a, b model.Repo) int { return strings.Compare(a.Name, b.Name) })

	readmes := slices.Clone(p.Readmes)
	slices.SortStableFunc(readmes, func(a, b model.Readme) int { return strings.Compare(a.RepoName, b.RepoName) })

	commits := slices.Clone(p.RecentCommits)
	slices.SortStableFunc(commits, func(a, b model.Commit) int { return b.Date.Compare(a.Date) })
	commits = commits[:min(len(commits), constants.CommitLimit)]

	prs := newestPullRequests(p.PullRequests)
	prs = prs[:min(len(prs), constants.PromptPullRequestLimit)]

	profile := compress.JSON(compress.Fields{
		{Key: "user", Value: p.User.Login},
		{Key: "name", Value: p.User.Name},
		{Key: "bio", Value: p.User.Bio},
		{Key: "company", Value: p.User.Company},
		{Key: "location", Value: p.User.Location},
		{Key: "blog", Value: p.User.Blog},
		{Key: "twitter", Value: p.User.TwitterUsername},
		{Key: "repos", Value: p.User.PublicRepos},
		{Key: "followers", Value: p.User.Followers},
		{Key: "following", Value: p.User.Following},
		{Key: "created", Value: timestamp(p.User.CreatedAt)},
	})

	prStats := compress.JSON(compress.Fields{
		{Key: "total", Value: p.PRStats.Total},
		{Key: "merged", Value: p.PRStats.Merged},
		{Key: "open", Value: p.PRStats.Open},
		{Key: "rate", Value: p.PRStats.AcceptanceRate},
		{Key: "extMerged", Value: p.PRStats.ThirdPartyMerged},
	})

	readmeBlocks := make([]string, 0, len(readmes))
	for _, r := range readmes {
		readmeBlocks = append(readmeBlocks, fmt.Sprintf("### %s\n%s", r.RepoName, compress.StripReadme(r.Content, readmeChars)))
	}

	var sb strings.Builder
	sb.WriteString("GitHub profile audit. Analyze data. Return JSON. Score 0-100.\n\n")
	fmt.Fprintf(&sb, "PROFILE: %s\n\n", profile)
	fmt.Fprintf(&sb, "REPOS (%d, ★%d total, %d forks):\n%s\n\n", len(repos), p.TotalStars, p.TotalForks, orNone(compress.Repos(repos)))
	fmt.Fprintf(&sb, "LANGUAGES: %s\n\n", orNone(languageLine(p.LanguageStats)))
	fmt.Fprintf(&sb, "READMES:\n%s\n\n", orNone(strings.Join(readmeBlocks, "\n\n")))
	fmt.Fprintf(&sb, "RECENT COMMITS:\n%s\n\n", orNone(compress.Commits(commits)))
	fmt.Fprintf(&sb, "PR ACTIVITY (%s):\n%s\n\n", prStats, orNone(compress.PullRequests(prs)))
	sb.WriteString("Respond with ONLY valid JSON. No markdown fences. Exact schema:\n")
	sb.WriteString(analysisSchema)
	sb.WriteString("\n\n")
	sb.WriteString(scoringRubric)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, `Reference actual repos. No invented data. If empty data return {"error":"%s"}.`, constants.InsufficientDataSentinel)
	return sb.String()
}

// BuildRoadmapPrompt renders the growth-roadmap prompt for p.
func BuildRoadmapPrompt(p *model.Profile) string {
	var prLines []string
	for _, pr := range newestPullRequests(p.PullRequests) {
		status := "open"
		if pr.Merged {
			status = "merged"
		}
		line := fmt.Sprintf("- %s → %s (%s, ★%d)", pr.Title, pr.RepoFullName, status, pr.RepoStars)
		if pr.Body != "" {
			line += " | " + compress.Truncate(pr.Body, constants.RoadmapBodySnippetChars)
		}
		prLines = append(prLines, line)
	}

	var forkLines []string
	for _, r := range p.ForkedRepos {
		forkLines = append(forkLines, fmt.Sprintf("- %s (%s, ★%d)", r.Name, cmp.Or(r.Language, "?"), r.Stars))
	}

	stats := compress.JSON(compress.Fields{
		{Key: "total", Value: p.PRStats.Total},
		{Key: "merged", Value: p.PRStats.Merged},
		{Key: "open", Value: p.PRStats.Open},
		{Key: "closed", Value: p.PRStats.Closed},
		{Key: "acceptanceRate", Value: p.PRStats.AcceptanceRate},
		{Key: "thirdPartyMerged", Value: p.PRStats.ThirdPartyMerged},
	})

	who := p.User.Login
	if p.User.Name != "" {
		who += " (" + p.User.Name + ")"
	}
	if p.User.Bio != "" {
		who += " | " + p.User.Bio
	}

	var sb strings.Builder
	sb.WriteString("Career coach analysis. Analyze PR history. Return JSON.\n\n")
	fmt.Fprintf(&sb, "USER: %s\n", who)
	fmt.Fprintf(&sb, "PR STATS: %s\n\n", stats)
	fmt.Fprintf(&sb, "PRS:\n%s\n\n", orNone(strings.Join(prLines, "\n")))
	fmt.Fprintf(&sb, "FORKED REPOS:\n%s\n\n", orNone(strings.Join(forkLines, "\n")))
	sb.WriteString("Respond with ONLY valid JSON:\n")
	sb.WriteString(roadmapSchema)
	sb.WriteString("\n\nReturn exactly 3 expertise areas. Project idea must be specific.")
	return sb.String()
}

// languageLine renders "Lang:share%" pairs, largest share first.
func languageLine(stats model.LanguageStats) string {
	type share struct {
		lang  string
		bytes int
	}
	var total int
	var shares []share
	for lang, n := range stats {
		if n <= 0 {
			continue
		}
		total += n
		shares = append(shares, share{lang, n})
	}
	slices.SortFunc(shares, func(a, b share) int {
		if c := cmp.Compare(b.bytes, a.bytes); c != 0 {
			return c
		}
		return strings.Compare(a.lang, b.lang)
	})

	parts := make([]string, 0, len(shares))
	for _, s := range shares {
		pct := int(float64(s.bytes)/float64(total)*100 + 0.5)
		parts = append(parts, fmt.Sprintf("%s:%d%%", s.lang, pct))
	}
	return strings.Join(parts, ", ")
}

func newestPullRequests(prs []model.PullRequest) []model.PullRequest {
	out := slices.Clone(prs)
	slices.SortStableFunc(out, func(a, b model.PullRequest) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
