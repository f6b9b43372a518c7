// Package compress shrinks profile data into compact text for bounded
// model prompts. All transforms are pure and never fail.
package compress

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/spiffcs/ghaudit/internal/constants"
)

var (
	htmlCommentRe   = regexp.MustCompile(`(?s)<!--.*?-->`)
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
	imageRe         = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	emptyLinkRe     = regexp.MustCompile(`\[\s*\]\([^)]*\)`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
	headingRe       = regexp.MustCompile(`^#+\s`)
	boilerplateHdRe = regexp.MustCompile(`(?i)^#+\s*(licen[cs]e|contributors?|contributing|acknowledge?ments?|authors?)\b`)
)

// StripReadme removes markup and boilerplate from README text and cuts it
// to at most maxChars characters plus the ellipsis. A non-positive maxChars
// selects the default budget.
func StripReadme(raw string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = constants.ReadmeCompressedChars
	}

	text := htmlCommentRe.ReplaceAllString(raw, "")
	text = htmlTagRe.ReplaceAllString(text, "")
	text = stripBoilerplateSections(text)
	text = imageRe.ReplaceAllString(text, "")
	// Linked badges leave an empty link behind once the image is gone.
	text = emptyLinkRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	return truncateAtWord(text, maxChars)
}

// stripBoilerplateSections drops each license/contributors/authors section,
// from its heading through the line before the next heading.
func stripBoilerplateSections(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	skipping := false
	for _, line := range lines {
		if headingRe.MatchString(line) || boilerplateHdRe.MatchString(line) {
			skipping = boilerplateHdRe.MatchString(line)
		}
		if !skipping {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// truncateAtWord cuts text to maxChars runes, drops the trailing partial
// word and appends the ellipsis.
func truncateAtWord(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	cut := runes[:maxChars]
	end := len(cut)
	for end > 0 && !unicode.IsSpace(cut[end-1]) {
		end--
	}
	if end > 0 {
		for end > 0 && unicode.IsSpace(cut[end-1]) {
			end--
		}
		cut = cut[:end]
	}
	return string(cut) + constants.Ellipsis
}
