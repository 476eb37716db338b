package assistant

import (
	"regexp"
	"strings"
)

// The dashboard renders replies as plain text with a typing animation, so
// any markdown the model emits has to be stripped server-side.

var markdownRules = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`), ""},            // images
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},         // links → text
	{regexp.MustCompile("(?s)```.*?```"), ""},                   // code fences
	{regexp.MustCompile("`([^`]*)`"), "$1"},                     // inline code
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},                 // bold
	{regexp.MustCompile(`__(.*?)__`), "$1"},                     // bold
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},                     // italic
	{regexp.MustCompile(`_(.*?)_`), "$1"},                       // italic
	{regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s*`), ""},           // headings
	{regexp.MustCompile(`(?m)^\s{0,3}>\s?`), ""},                // blockquotes
	{regexp.MustCompile(`(?m)^\s*\*\s+`), ""},                   // list bullets
	{regexp.MustCompile(`(?m)^-{3,}$`), ""},                     // rules
	{regexp.MustCompile(`(?m)[ \t]+$`), ""},                     // trailing space
	{regexp.MustCompile(`\n{3,}`), "\n\n"},                      // blank runs
}

// StripMarkdown flattens a markdown reply into displayable plain text.
func StripMarkdown(text string) string {
	for _, rule := range markdownRules {
		text = rule.re.ReplaceAllString(text, rule.with)
	}
	return strings.TrimSpace(text)
}
