package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reCitation = regexp.MustCompile(`\[(?:\d+|[a-z]|edit|note \d+)\]`)
	reSpaces   = regexp.MustCompile(`\s+`)
)

// CleanText drops footnote and edit markers and collapses whitespace.
func CleanText(input string) string {
	s := strings.ReplaceAll(input, "\u00a0", " ")
	s = reCitation.ReplaceAllString(s, "")
	return NormalizeSpaces(s)
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// Ordinal renders 1 -> "1st", 12 -> "12th", 96 -> "96th".
func Ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 10 && n%100 <= 20:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

func ContainsFold(haystack string, needles []string) bool {
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

func StringPtr(v string) *string { return &v }

func IntPtr(v int) *int { return &v }

func Int64Ptr(v int64) *int64 { return &v }


func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
