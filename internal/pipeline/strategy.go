package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"filmawards/internal"
	"filmawards/internal/config"
	"filmawards/internal/logging"
	"filmawards/internal/util"
)

// categorizedEntry is an entry plus the category heading it was found under.
type categorizedEntry struct {
	Category string
	Entry    Entry
}

type strategy struct {
	name        internal.Strategy
	italicFilms bool
	entries     func(p *Parser, doc *goquery.Document) []categorizedEntry
}

// strategyChain runs in order; the first strategy that yields any record
// decides the page.
var strategyChain = []strategy{
	{name: internal.StrategyTable, entries: (*Parser).tableEntries},
	{name: internal.StrategySection, entries: (*Parser).sectionEntries},
	{name: internal.StrategyList, entries: (*Parser).listEntries},
	{name: internal.StrategyGrid, italicFilms: true, entries: (*Parser).gridEntries},
}

type ParseResult struct {
	Ceremony Ceremony
	Strategy internal.Strategy
	Awards   []internal.Award
}

type Parser struct {
	classifier Classifier
	winners    WinnerDetector
	builder    RecordBuilder
	log        *slog.Logger
}

func NewParser(cfg config.Config, log *slog.Logger) *Parser {
	return &Parser{
		classifier: NewClassifier(cfg),
		winners:    NewWinnerDetector(cfg),
		builder:    NewRecordBuilder(cfg),
		log:        logging.OrDefault(log),
	}
}

func (p *Parser) Builder() RecordBuilder {
	return p.builder
}

// ParseCeremonyHTML parses one ceremony page held in year.
func (p *Parser) ParseCeremonyHTML(raw []byte, year int) (ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ParseResult{}, fmt.Errorf("parse ceremony page %d: %w", year, err)
	}
	return p.ParseCeremony(doc, year), nil
}

func (p *Parser) ParseCeremony(doc *goquery.Document, year int) ParseResult {
	ceremony := p.builder.Ceremony(year, CeremonyDate(doc))
	result := ParseResult{Ceremony: ceremony, Strategy: internal.StrategyNone}

	for _, s := range strategyChain {
		awards := p.build(ceremony, s, s.entries(p, doc))
		if len(awards) > 0 {
			result.Strategy = s.name
			result.Awards = awards
			p.log.Info("ceremony parsed", "year", year, "strategy", s.name, "awards", len(awards))
			return result
		}
		p.log.Debug("strategy found nothing", "year", year, "strategy", s.name)
	}

	p.log.Warn("no awards found on page", "year", year)
	return result
}

func (p *Parser) build(c Ceremony, s strategy, entries []categorizedEntry) []internal.Award {
	awards := make([]internal.Award, 0, len(entries))
	for _, ce := range entries {
		award, ok := p.builder.FromEntry(c, ce.Category, ce.Entry, p.winners.IsWinner(ce.Entry), s.italicFilms)
		if !ok {
			continue
		}
		awards = append(awards, award)
	}
	return awards
}

func (p *Parser) tableEntries(doc *goquery.Document) []categorizedEntry {
	var out []categorizedEntry
	for _, sec := range LocatePreceding(doc, dataTableClass) {
		if !p.classifier.IsMajorCategory(sec.Heading) {
			continue
		}
		out = append(out, tableRows(sec.Heading, sec.Content)...)
	}
	return out
}

func (p *Parser) sectionEntries(doc *goquery.Document) []categorizedEntry {
	var out []categorizedEntry
	for _, sec := range LocateUnderHeadings(doc) {
		if sec.Lead.Length() == 0 || !p.classifier.IsMajorCategory(sec.Heading) {
			continue
		}
		block := sec.Lead.First()
		if block.Is("table") {
			out = append(out, tableRows(sec.Heading, block)...)
			continue
		}
		block.Find("li, dd").Each(func(_ int, item *goquery.Selection) {
			if e, ok := ItemEntry(item); ok {
				out = append(out, categorizedEntry{Category: sec.Heading, Entry: e})
			}
		})
	}
	return out
}

func (p *Parser) listEntries(doc *goquery.Document) []categorizedEntry {
	var out []categorizedEntry
	for _, sec := range LocatePreceding(doc, listSelector) {
		if !p.classifier.IsMajorCategory(sec.Heading) {
			continue
		}
		// Nested lists are located on their own, so only direct items here.
		sec.Content.ChildrenFiltered("li, dd").Each(func(_ int, item *goquery.Selection) {
			if e, ok := ItemEntry(item); ok {
				out = append(out, categorizedEntry{Category: sec.Heading, Entry: e})
			}
		})
	}
	return out
}

// gridEntries reads the layout where each table cell holds a category label
// followed by its nominee list.
func (p *Parser) gridEntries(doc *goquery.Document) []categorizedEntry {
	var out []categorizedEntry
	doc.Find(dataTableClass+" td, "+dataTableClass+" th").Each(func(_ int, cell *goquery.Selection) {
		list := cell.ChildrenFiltered("ul").First()
		if list.Length() == 0 {
			return
		}
		label := cell.Clone()
		label.Find(listSelector).Remove()
		category := util.CleanText(label.Text())
		if !p.classifier.IsMajorCategory(category) {
			return
		}
		list.ChildrenFiltered("li").Each(func(_ int, item *goquery.Selection) {
			if e, ok := ItemEntry(item); ok {
				out = append(out, categorizedEntry{Category: category, Entry: e})
			}
		})
	})
	return out
}

func tableRows(category string, table *goquery.Selection) []categorizedEntry {
	var out []categorizedEntry
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return nil
	}
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		if e, ok := RowEntry(row); ok {
			out = append(out, categorizedEntry{Category: category, Entry: e})
		}
	})
	return out
}

// CeremonyDate reads the "Date" row of the page infobox.
func CeremonyDate(doc *goquery.Document) *string {
	var date *string
	doc.Find("table.infobox tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := util.CleanText(row.ChildrenFiltered("th").First().Text())
		if !strings.EqualFold(label, "date") {
			return true
		}
		date = util.ParseCeremonyDate(row.ChildrenFiltered("td").First().Text())
		return false
	})
	return date
}
