package pipeline

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"filmawards/internal"
	"filmawards/internal/util"
)

// yearCursor is the ceremony year in force while walking history rows. Rows
// without a readable year keep the previous value.
type yearCursor struct {
	year int
	set  bool
}

func (c yearCursor) advance(row *goquery.Selection, b RecordBuilder) yearCursor {
	header := row.ChildrenFiltered("th").First()
	if header.Length() == 0 {
		return c
	}
	parsed := util.ParseYearToken(util.CleanText(header.Text()))
	switch {
	case parsed.Ceremony != nil:
		return yearCursor{year: b.YearForCeremony(*parsed.Ceremony), set: true}
	case parsed.Year != nil:
		// Film years precede the ceremony by one.
		return yearCursor{year: *parsed.Year + 1, set: true}
	default:
		return c
	}
}

type historyState struct {
	cursor yearCursor
	awards []internal.Award
}

func (p *Parser) ParseCategoryHistoryHTML(raw []byte, category string) ([]internal.Award, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse history page %q: %w", category, err)
	}
	return p.ParseCategoryHistory(doc, category), nil
}

// ParseCategoryHistory reads a per-category history page where the year
// header spans the rows of one ceremony. The year is threaded through the
// rows as a fold; rows before the first year are dropped.
func (p *Parser) ParseCategoryHistory(doc *goquery.Document, category string) []internal.Award {
	state := historyState{}
	doc.Find(dataTableClass).Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			state = p.historyStep(state, row, category)
		})
	})
	p.log.Info("category history parsed", "category", category, "awards", len(state.awards))
	return state.awards
}

func (p *Parser) historyStep(state historyState, row *goquery.Selection, category string) historyState {
	next := historyState{cursor: state.cursor.advance(row, p.builder), awards: state.awards}
	if !next.cursor.set || row.ChildrenFiltered("td").Length() == 0 {
		return next
	}

	nominee := row.Find("b").First()
	if nominee.Length() == 0 {
		nominee = row.ChildrenFiltered("td").First()
	}
	var person *string
	if name := util.CleanText(nominee.Text()); name != "" {
		person = util.StringPtr(name)
	}
	var movie *string
	if film := row.Find("i").First(); film.Length() > 0 {
		if title := util.CleanText(film.Text()); title != "" {
			movie = util.StringPtr(title)
		}
	}
	if person != nil && movie != nil && *person == *movie {
		person = nil
	}

	entry, _ := RowEntry(row)
	ceremony := p.builder.Ceremony(next.cursor.year, nil)
	if award, ok := p.builder.Build(ceremony, category, movie, person, p.winners.IsWinner(entry)); ok {
		next.awards = append(next.awards, award)
	}
	return next
}
