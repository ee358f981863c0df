package common

import (
	"regexp"
	"strings"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugSeparators = regexp.MustCompile(`[\s_]+`)
	slugStrip      = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes     = regexp.MustCompile(`-{2,}`)
)

// NormalizeSlug lowercases the slug and turns whitespace/underscores into dashes.
// Characters outside [a-z0-9-] are dropped.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugSeparators.ReplaceAllString(s, "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsValidSlug checks the canonical slug format (e.g. "startup-week-2024")
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
