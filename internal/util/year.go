package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yearPattern    = regexp.MustCompile(`(?:^|[^0-9])(1[89]\d{2}|20\d{2})(?:[^0-9]|$)`)
	ordinalPattern = regexp.MustCompile(`(?i)\(\s*(\d{1,3})\s*(?:st|nd|rd|th)\s*\)`)
	monthDayYear   = regexp.MustCompile(`(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),\s*(\d{4})`)
	dayMonthYear   = regexp.MustCompile(`(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`)
	isoDatePattern = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

// ParsedYear is what a row header such as "1927/28 (1st)" yields.
type ParsedYear struct {
	Year     *int
	Ceremony *int
}

func (p ParsedYear) Valid() bool {
	return p.Year != nil || p.Ceremony != nil
}

func ParseYearToken(input string) ParsedYear {
	text := strings.TrimSpace(strings.ReplaceAll(input, "\u00a0", " "))
	if text == "" {
		return ParsedYear{}
	}

	out := ParsedYear{}
	if m := yearPattern.FindStringSubmatch(text); len(m) > 1 {
		if y, err := strconv.Atoi(m[1]); err == nil {
			out.Year = IntPtr(y)
		}
	}
	if m := ordinalPattern.FindStringSubmatch(text); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			out.Ceremony = IntPtr(n)
		}
	}
	return out
}

// ParseCeremonyDate finds the first calendar date in an infobox value and
// returns it as an ISO-8601 date.
func ParseCeremonyDate(input string) *string {
	text := NormalizeSpaces(strings.ReplaceAll(input, "\u00a0", " "))
	if text == "" {
		return nil
	}

	if m := monthDayYear.FindStringSubmatch(text); len(m) == 4 {
		if t, err := time.Parse("January 2 2006", m[1]+" "+m[2]+" "+m[3]); err == nil {
			return StringPtr(t.Format("2006-01-02"))
		}
	}
	if m := dayMonthYear.FindStringSubmatch(text); len(m) == 4 {
		if t, err := time.Parse("2 January 2006", m[1]+" "+m[2]+" "+m[3]); err == nil {
			return StringPtr(t.Format("2006-01-02"))
		}
	}
	if m := isoDatePattern.FindString(text); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return StringPtr(t.Format("2006-01-02"))
		}
	}
	return nil
}
