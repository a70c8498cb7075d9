package common

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
)

// StripMarkup returns the visible text of an HTML fragment with whitespace collapsed.
// Plain text passes through unchanged apart from whitespace.
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return CollapseWhitespace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CollapseWhitespace(s)
	}
	doc.Find("script, style").Remove()
	return CollapseWhitespace(doc.Text())
}

// CollapseWhitespace trims s and folds runs of whitespace into single spaces
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// SanitizeQuery keeps letters, digits and spaces. Some aggregators reject operators and quotes.
func SanitizeQuery(q string) string {
	return CollapseWhitespace(nonAlnumRe.ReplaceAllString(q, " "))
}

// IsPlaceholderTitle reports whether a headline is empty or the provider placeholder "No title"
func IsPlaceholderTitle(title string) bool {
	t := strings.TrimSpace(title)
	return t == "" || strings.EqualFold(t, "no title")
}

// EnsureTerminalPunctuation appends a period unless s already ends a sentence
func EnsureTerminalPunctuation(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}

// TruncateWords returns the first n words of s, with "..." appended when words were dropped
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
