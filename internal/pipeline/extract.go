package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"filmawards/internal/util"
)

// Link is one hyperlink of an entry, in document order.
type Link struct {
	Text   string
	Href   string
	Italic bool
}

// Usable links carry text and point somewhere other than the same page.
func (l Link) Usable() bool {
	return l.Text != "" && !strings.HasPrefix(l.Href, "#")
}

// Entry is one nominee row or list item before it becomes a record.
type Entry struct {
	RawText      string
	Links        []Link
	StyleSignals []string
}

// RowEntry reads a table row. Links come from the first cell; signals come
// from the row and its first cell.
func RowEntry(row *goquery.Selection) (Entry, bool) {
	cells := row.ChildrenFiltered("td, th")
	if cells.Length() == 0 {
		return Entry{}, false
	}
	first := cells.First()

	e := Entry{
		RawText: util.CleanText(row.Text()),
		Links:   collectLinks(first),
	}
	if row.Find("b, strong").Length() > 0 || hasBoldStyle(row) {
		e.StyleSignals = append(e.StyleSignals, signalEmphasis)
	}
	e.StyleSignals = append(e.StyleSignals, markupSignals(row)...)
	e.StyleSignals = append(e.StyleSignals, markupSignals(first)...)
	return e, true
}

// ItemEntry reads a list item, ignoring any list nested inside it.
func ItemEntry(item *goquery.Selection) (Entry, bool) {
	clone := item.Clone()
	clone.Find(listSelector).Remove()

	text := util.CleanText(clone.Text())
	if len([]rune(text)) < 3 {
		return Entry{}, false
	}
	e := Entry{
		RawText: text,
		Links:   collectLinks(clone),
	}
	if clone.Find("b, strong").Length() > 0 || hasBoldStyle(clone) {
		e.StyleSignals = append(e.StyleSignals, signalEmphasis)
	}
	e.StyleSignals = append(e.StyleSignals, markupSignals(item)...)
	return e, true
}

func collectLinks(s *goquery.Selection) []Link {
	var links []Link
	s.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		links = append(links, Link{
			Text:   util.CleanText(a.Text()),
			Href:   strings.TrimSpace(href),
			Italic: a.ParentsFiltered("i, em").Length() > 0 || a.ChildrenFiltered("i, em").Length() > 0,
		})
	})
	return links
}

func markupSignals(s *goquery.Selection) []string {
	var out []string
	if style := strings.ToLower(strings.TrimSpace(s.AttrOr("style", ""))); style != "" {
		out = append(out, signalStylePrefix+style)
	}
	if class := strings.ToLower(strings.TrimSpace(s.AttrOr("class", ""))); class != "" {
		out = append(out, signalClassPrefix+class)
	}
	return out
}

func hasBoldStyle(s *goquery.Selection) bool {
	found := false
	s.Find("span[style]").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		style := strings.ReplaceAll(strings.ToLower(span.AttrOr("style", "")), " ", "")
		found = strings.Contains(style, "font-weight:bold")
		return !found
	})
	return found
}
