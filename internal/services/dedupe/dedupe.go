// Package dedupe removes near-duplicate articles by headline similarity
package dedupe

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/bobmcallan/newsdesk/internal/models"
)

// Threshold is the similarity ratio above which two headlines are the same story
const Threshold = 0.9

// Normalize lower-cases a headline, strips punctuation and collapses whitespace
func Normalize(title string) string {
	var sb strings.Builder
	sb.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Similarity returns the Ratcliff/Obershelp ratio of two normalized titles, in [0, 1]
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// Dedupe keeps each article whose normalized title is not similar to any already kept one.
// Order is preserved and articles with an empty normalized title are dropped.
func Dedupe(articles []models.Article) []models.Article {
	kept := make([]models.Article, 0, len(articles))
	keys := make([]string, 0, len(articles))

outer:
	for _, a := range articles {
		key := Normalize(a.Title)
		if key == "" {
			continue
		}
		for _, k := range keys {
			if Similarity(key, k) > Threshold {
				continue outer
			}
		}
		kept = append(kept, a)
		keys = append(keys, key)
	}

	return kept
}
