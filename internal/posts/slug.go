package posts

import (
	"regexp"
	"strings"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// Slugify derives a URL-safe identifier from a post title: lowercase,
// with every run of whitespace collapsed to a single underscore.
func Slugify(title string) string {
	return strings.ToLower(whitespaceRuns.ReplaceAllString(title, "_"))
}
