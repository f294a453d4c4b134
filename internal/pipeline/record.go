package pipeline

import (
	"strings"

	"filmawards/internal"
	"filmawards/internal/config"
	"filmawards/internal/util"
)

// Ceremony is the per-page context every record of that page shares.
type Ceremony struct {
	AwardName string
	Year      int
	Number    int
	Date      *string
}

type RecordBuilder struct {
	awardName  string
	founding   int
	classifier Classifier
}

func NewRecordBuilder(cfg config.Config) RecordBuilder {
	return RecordBuilder{
		awardName:  cfg.AwardName,
		founding:   cfg.FoundingCeremonyYear,
		classifier: NewClassifier(cfg),
	}
}

// CeremonyNumber is the ordinal of the ceremony held in year; the founding
// year is ceremony 1.
func (b RecordBuilder) CeremonyNumber(year int) int {
	return year - b.founding + 1
}

// YearForCeremony inverts CeremonyNumber.
func (b RecordBuilder) YearForCeremony(number int) int {
	return b.founding + number - 1
}

func (b RecordBuilder) Ceremony(year int, date *string) Ceremony {
	return Ceremony{
		AwardName: b.awardName,
		Year:      year,
		Number:    b.CeremonyNumber(year),
		Date:      date,
	}
}

// Build assembles one record. It reports false when there is no film title,
// since such a record carries nothing worth keeping.
func (b RecordBuilder) Build(c Ceremony, category string, movie, person *string, won bool) (internal.Award, bool) {
	movie = trimmedPtr(movie)
	if movie == nil {
		return internal.Award{}, false
	}

	award := internal.Award{
		AwardName:      c.AwardName,
		CeremonyYear:   c.Year,
		CeremonyNumber: c.Number,
		Category:       category,
		MovieTitle:     movie,
		Won:            won,
		Nominated:      true,
		CeremonyDate:   c.Date,
	}
	if person = trimmedPtr(person); person != nil && b.classifier.IsPersonCategory(category) {
		award.PersonName = person
		award.PersonRole = util.StringPtr(RoleForCategory(category))
	}
	return award, true
}

// FromEntry assigns link roles and builds the record. The first usable link
// is the film; for person categories the next usable link is the nominee.
// With italicFilms the first italic link is preferred as the film.
func (b RecordBuilder) FromEntry(c Ceremony, category string, e Entry, won, italicFilms bool) (internal.Award, bool) {
	movie, person := assignLinks(e.Links, b.classifier.IsPersonCategory(category), italicFilms)
	return b.Build(c, category, movie, person, won)
}

func assignLinks(links []Link, personCategory, italicFilms bool) (movie, person *string) {
	usable := make([]Link, 0, len(links))
	for _, l := range links {
		if l.Usable() {
			usable = append(usable, l)
		}
	}
	if len(usable) == 0 {
		return nil, nil
	}

	movieIdx := 0
	if italicFilms {
		for i, l := range usable {
			if l.Italic {
				movieIdx = i
				break
			}
		}
	}
	movie = util.StringPtr(usable[movieIdx].Text)
	if !personCategory {
		return movie, nil
	}

	for i, l := range usable {
		if i == movieIdx || (!italicFilms && i < movieIdx) {
			continue
		}
		if italicFilms && l.Italic {
			continue
		}
		return movie, util.StringPtr(l.Text)
	}
	return movie, nil
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
