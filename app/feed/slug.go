package feed

import (
	"regexp"
	"strings"
)

var (
	slugStripRe     = regexp.MustCompile(`[^\w\s-]`)
	slugSeparatorRe = regexp.MustCompile(`[\s_-]+`)
	slugTrimRe      = regexp.MustCompile(`^-+|-+$`)
)

// Slugify derives a URL-safe slug from a podcast title. The slug is a pure
// function of the title and is not required to be unique.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = slugSeparatorRe.ReplaceAllString(slug, "-")
	return slugTrimRe.ReplaceAllString(slug, "")
}
