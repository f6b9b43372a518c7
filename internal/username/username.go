// Package username turns free-form user input into a validated GitHub login.
package username

import (
	"regexp"
	"strings"

	"github.com/spiffcs/ghaudit/internal/apperr"
)

// MaxLength is the longest login GitHub allows.
const MaxLength = 39

var (
	githubURLRe = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?github\.com/([^/\s?#]+)/?(?:[?#].*)?$`)
	schemeRe    = regexp.MustCompile(`(?i)^https?://`)
	whitespace  = regexp.MustCompile(`\s+`)
	// RE2 has no lookahead, so hyphen placement is checked separately.
	loginCharsRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// Parse extracts a login from a raw handle or a github.com profile URL.
func Parse(raw string) (string, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return "", apperr.New(apperr.KindInputInvalid, "Username is required")
	}

	if m := githubURLRe.FindStringSubmatch(input); m != nil {
		extracted := strings.TrimSpace(strings.Trim(m[1], "/"))
		if extracted == "" {
			return "", apperr.New(apperr.KindInputInvalid, "Could not extract a username from that URL.")
		}
		return Validate(extracted)
	}

	if schemeRe.MatchString(input) || strings.Contains(input, ".com/") || strings.Contains(input, ".org/") {
		return "", apperr.New(apperr.KindInputInvalid, "Please provide a valid GitHub profile URL.")
	}

	sanitized := whitespace.ReplaceAllString(strings.Trim(input, "/"), "")
	if sanitized == "" || strings.Contains(sanitized, "/") {
		return "", apperr.New(apperr.KindInputInvalid, "That doesn't look like a valid GitHub username.")
	}

	return Validate(sanitized)
}

// Validate checks a login against GitHub's naming rules.
func Validate(login string) (string, error) {
	switch {
	case len(login) > MaxLength:
		return "", apperr.New(apperr.KindInputInvalid, "GitHub usernames cannot exceed 39 characters.")
	case strings.HasPrefix(login, "-") || strings.HasSuffix(login, "-"):
		return "", apperr.New(apperr.KindInputInvalid, "GitHub usernames cannot start or end with a hyphen.")
	case strings.Contains(login, "--"):
		return "", apperr.New(apperr.KindInputInvalid, "GitHub usernames cannot contain consecutive hyphens.")
	case !loginCharsRe.MatchString(login):
		return "", apperr.New(apperr.KindInputInvalid, "GitHub usernames can only contain letters, numbers, and single hyphens.")
	}
	return login, nil
}
