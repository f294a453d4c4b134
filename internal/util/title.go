package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var articles = map[string]struct{}{"the": {}, "a": {}, "an": {}}

// NormalizeTitle canonicalizes a title for equality and matching: lowercase,
// whole-word articles dropped, punctuation removed, whitespace collapsed.
// A word is a run of letters and digits, so "a" in "A-Team" is an article.
// Articles are dropped once more after punctuation goes, since "t.he" only
// becomes a word then; this keeps the function idempotent.
func NormalizeTitle(title string) string {
	lowered := cases.Lower(language.Und).String(title)

	stripped := strings.Builder{}
	stripped.Grow(len(lowered))
	for _, run := range splitWords(lowered) {
		if _, ok := articles[run]; ok {
			continue
		}
		for _, r := range run {
			switch {
			case isWordRune(r):
				stripped.WriteRune(r)
			case unicode.IsSpace(r):
				stripped.WriteRune(' ')
			}
		}
	}

	words := strings.Fields(stripped.String())
	kept := words[:0]
	for _, w := range words {
		if _, ok := articles[w]; ok {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// splitWords cuts s into alternating runs of word and non-word runes.
func splitWords(s string) []string {
	var (
		out   []string
		start int
		word  bool
	)
	for i, r := range s {
		w := isWordRune(r)
		if i > start && w != word {
			out = append(out, s[start:i])
			start = i
		}
		word = w
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
