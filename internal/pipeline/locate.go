package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"filmawards/internal/util"
)

const (
	headingSelector = "h2, h3, h4"
	listSelector    = "ul, ol, dl"
	dataTableClass  = "table.wikitable"
)

// Section pairs a content region with the heading that governs it. Content
// may hold several blocks; Lead is the first block reached before any other
// heading and may be empty.
type Section struct {
	Heading string
	Level   int
	Content *goquery.Selection
	Lead    *goquery.Selection
}

// LocatePreceding pairs every block matching selector with the nearest
// heading before it in document order. Blocks with no heading before them
// are skipped.
func LocatePreceding(doc *goquery.Document, selector string) []Section {
	var (
		out     []Section
		heading string
		level   int
	)
	doc.Find(headingSelector + ", " + selector).Each(func(_ int, s *goquery.Selection) {
		if lvl := headingLevel(s); lvl > 0 {
			heading, level = HeadingText(s), lvl
			return
		}
		if level == 0 {
			return
		}
		out = append(out, Section{Heading: heading, Level: level, Content: s, Lead: s})
	})
	return out
}

// LocateUnderHeadings walks every heading and collects the tables and lists
// among its following siblings, up to the next heading of the same or a
// higher level.
func LocateUnderHeadings(doc *goquery.Document) []Section {
	var out []Section
	doc.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
		level := headingLevel(h)
		anchor := h
		if parent := h.Parent(); parent.Is("div.mw-heading") {
			anchor = parent
		}

		blocks := h.Slice(0, 0)
		lead := h.Slice(0, 0)
		subheading := false
		anchor.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			if lvl := siblingHeadingLevel(sib); lvl > 0 {
				if lvl <= level {
					return false
				}
				subheading = true
				return true
			}

			block := contentBlock(sib)
			if block.Length() == 0 {
				return true
			}
			blocks = blocks.AddSelection(block)
			if !subheading && lead.Length() == 0 {
				lead = block
			}
			return true
		})

		out = append(out, Section{Heading: HeadingText(h), Level: level, Content: blocks, Lead: lead})
	})
	return out
}

// HeadingText reads a heading without its edit links.
func HeadingText(h *goquery.Selection) string {
	clone := h.Clone()
	clone.Find(".mw-editsection").Remove()
	if headline := clone.Find("span.mw-headline"); headline.Length() > 0 {
		return util.CleanText(headline.First().Text())
	}
	return util.CleanText(clone.Text())
}

func headingLevel(s *goquery.Selection) int {
	switch goquery.NodeName(s) {
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	default:
		return 0
	}
}

func siblingHeadingLevel(s *goquery.Selection) int {
	if lvl := headingLevel(s); lvl > 0 {
		return lvl
	}
	if s.Is("div.mw-heading") {
		return headingLevel(s.ChildrenFiltered("h2, h3, h4, h5, h6").First())
	}
	return 0
}

// contentBlock returns sib when it is a table or list, or the first such
// block wrapped inside a plain container such as a column div.
func contentBlock(sib *goquery.Selection) *goquery.Selection {
	if sib.Is("table") || sib.Is(listSelector) {
		return sib
	}
	if goquery.NodeName(sib) == "div" && !strings.Contains(sib.AttrOr("class", ""), "navbox") {
		return sib.Find("table, " + listSelector).First()
	}
	return sib.Slice(0, 0)
}
