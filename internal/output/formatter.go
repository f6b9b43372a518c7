// Package output renders analysis responses for the terminal.
package output

import (
	"io"
	"sort"

	"github.com/spiffcs/ghaudit/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported formats in flag-help order.
var Formats = []Format{FormatTable, FormatJSON, FormatMarkdown}

// Valid reports whether f names a supported format.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(resp *model.Response, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// insufficientMessage is shown for profiles without enough public activity.
const insufficientMessage = "Not enough public activity to analyze this profile. Publish a repository or open a pull request, then try again."

// profileURL returns the subject's profile URL.
func profileURL(u model.User) string {
	if u.HTMLURL != "" {
		return u.HTMLURL
	}
	return "https://github.com/" + u.Login
}

// roadmapUnavailable is shown when growth-mode roadmap generation failed.
const roadmapUnavailable = "The growth roadmap could not be generated this time. Try again later."

type breakdownRow struct {
	label string
	score int
}

func breakdownRows(b model.ScoreBreakdown) []breakdownRow {
	return []breakdownRow{
		{"Professionalism", int(b.Professionalism)},
		{"Documentation", int(b.Documentation)},
		{"Technical breadth", int(b.TechnicalBreadth)},
		{"Community engagement", int(b.CommunityEngagement)},
		{"Code quality", int(b.CodeQuality)},
	}
}

func priorityRank(p model.Priority) int {
	switch p {
	case model.PriorityHigh:
		return 0
	case model.PriorityMedium:
		return 1
	case model.PriorityLow:
		return 2
	}
	return 3
}

// sortedActionItems orders items high to low priority, keeping the
// model's order within a priority.
func sortedActionItems(items []model.ActionItem) []model.ActionItem {
	sorted := make([]model.ActionItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return priorityRank(sorted[i].Priority) < priorityRank(sorted[j].Priority)
	})
	return sorted
}
