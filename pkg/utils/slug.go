package utils

import (
	"regexp"
	"strings"
)

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9\s_-]`)
	slugSpacing = regexp.MustCompile(`[\s_]+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Slugify 根据名称生成URL slug
// "Blog Posts!!" -> "blog-posts"
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpacing.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
