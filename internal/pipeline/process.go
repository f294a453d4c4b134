package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"filmawards/internal"
	"filmawards/internal/catalog"
	"filmawards/internal/config"
	"filmawards/internal/logging"
	"filmawards/internal/source"
	"filmawards/internal/storage"
	"filmawards/internal/util"
)

type ProcessingService struct {
	db      *storage.DB
	cfg     config.Config
	fetcher source.Fetcher
	pages   *source.PageStore
	parser  *Parser
	log     *slog.Logger
}

func NewProcessingService(db *storage.DB, cfg config.Config, fetcher source.Fetcher, log *slog.Logger) *ProcessingService {
	log = logging.OrDefault(log)
	return &ProcessingService{
		db:      db,
		cfg:     cfg,
		fetcher: fetcher,
		pages:   source.NewPageStore(db, cfg.RawPageDir),
		parser:  NewParser(cfg, log),
		log:     log,
	}
}

type YearResult struct {
	Year     int
	Number   int
	URL      string
	Strategy internal.Strategy
	Awards   int
	Won      int
	Linked   int
}

type YearFailure struct {
	Year int
	Err  error
}

// ScrapeReport summarises a range run. Failed years were logged and skipped.
type ScrapeReport struct {
	RunID  string
	Years  []YearResult
	Failed []YearFailure
}

func (r ScrapeReport) TotalAwards() int {
	total := 0
	for _, y := range r.Years {
		total += y.Awards
	}
	return total
}

// ScrapeRange processes every ceremony year in [start, end]. A year that
// fails to fetch or store is recorded in the report and does not stop the
// range; only cancellation does.
func (s *ProcessingService) ScrapeRange(ctx context.Context, start, end int) (ScrapeReport, error) {
	if end < start {
		return ScrapeReport{}, fmt.Errorf("invalid year range %d-%d", start, end)
	}
	report := ScrapeReport{RunID: uuid.NewString()}
	started := time.Now()

	for year := start; year <= end; year++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := s.ScrapeYear(ctx, year)
		if err != nil {
			// Only the range's own context ends the run; a request timeout
			// is a failure of this year.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			s.log.Error("ceremony year skipped", "year", year, "error", err)
			report.Failed = append(report.Failed, YearFailure{Year: year, Err: err})
			continue
		}
		report.Years = append(report.Years, res)
	}

	_ = s.db.InsertRun(report.RunID, "scrape_range",
		map[string]float64{"totalMs": float64(time.Since(started).Milliseconds())},
		map[string]int{"years": len(report.Years), "failed": len(report.Failed), "awards": report.TotalAwards()})
	s.log.Info("scrape range done", "run_id", report.RunID, "years", len(report.Years), "failed", len(report.Failed), "awards", report.TotalAwards())
	return report, nil
}

func (s *ProcessingService) ScrapeYear(ctx context.Context, year int) (YearResult, error) {
	start := time.Now()
	number := s.parser.Builder().CeremonyNumber(year)
	if number < 1 {
		return YearResult{}, fmt.Errorf("year %d predates the first ceremony", year)
	}
	url := source.CeremonyURL(s.cfg.CeremonyURLTemplate, number)

	raw, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return YearResult{}, err
	}
	page, err := s.pages.Store(internal.FetchedPage{AwardName: s.cfg.AwardName, CeremonyYear: year, URL: url, Raw: raw})
	if err != nil {
		return YearResult{}, fmt.Errorf("store page %d: %w", year, err)
	}
	fetchMs := time.Since(start).Milliseconds()

	res, err := s.processPage(page, raw)
	if err != nil {
		return YearResult{}, err
	}
	res.URL = url

	_ = s.db.InsertRun(uuid.NewString(), "scrape",
		map[string]float64{"fetchMs": float64(fetchMs), "totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"year": year, "awards": res.Awards, "won": res.Won, "linked": res.Linked})
	return res, nil
}

// ParseStored re-parses pages already on disk that are still in the
// fetched state.
func (s *ProcessingService) ParseStored(limit int) (int, error) {
	pending, err := s.db.ListPagesByStatus(source.PageStatusFetched, limit)
	if err != nil {
		return 0, err
	}
	parsed := 0
	for _, page := range pending {
		raw, err := s.pages.Load(page)
		if err != nil {
			s.log.Error("stored page unreadable", "year", page.CeremonyYear, "path", page.RawRef, "error", err)
			_ = s.pages.MarkStatus(page, source.PageStatusFailed)
			continue
		}
		if _, err := s.processPage(page, raw); err != nil {
			return parsed, err
		}
		parsed++
	}
	return parsed, nil
}

func (s *ProcessingService) processPage(page internal.PageRow, raw []byte) (YearResult, error) {
	result, err := s.parser.ParseCeremonyHTML(raw, page.CeremonyYear)
	if err != nil {
		_ = s.pages.MarkStatus(page, source.PageStatusFailed)
		return YearResult{}, err
	}

	films, err := s.db.ListFilms()
	if err != nil {
		return YearResult{}, err
	}
	enriched := NewEnricher(films, s.cfg.MatchThreshold, s.log).Enrich(result.Awards)
	if err := s.db.ReplaceAwards(page.AwardName, page.CeremonyYear, enriched); err != nil {
		return YearResult{}, fmt.Errorf("store awards %d: %w", page.CeremonyYear, err)
	}

	status := source.PageStatusParsed
	if len(enriched) == 0 {
		status = source.PageStatusEmpty
	}
	_ = s.pages.MarkStatus(page, status)

	res := YearResult{
		Year:     page.CeremonyYear,
		Number:   result.Ceremony.Number,
		URL:      page.URL,
		Strategy: result.Strategy,
		Awards:   len(enriched),
	}
	for _, a := range enriched {
		if a.Won {
			res.Won++
		}
		if a.MovieCatalogID != nil {
			res.Linked++
		}
	}
	return res, nil
}

// EnrichStored re-links stored awards against the current catalog. Only the
// link columns change. A zero year means every year.
func (s *ProcessingService) EnrichStored(year int) (int, error) {
	stored, err := s.db.ListAwards(storage.AwardFilter{AwardName: s.cfg.AwardName, CeremonyYear: year})
	if err != nil {
		return 0, err
	}
	films, err := s.db.ListFilms()
	if err != nil {
		return 0, err
	}

	awards := make([]internal.Award, 0, len(stored))
	for _, a := range stored {
		awards = append(awards, a.Award)
	}
	enriched := NewEnricher(films, s.cfg.MatchThreshold, s.log).Enrich(awards)

	changed := 0
	for i, e := range enriched {
		prev := stored[i]
		if sameLink(prev.MovieCatalogID, e.MovieCatalogID) && util.Deref(prev.MovieExternalID) == util.Deref(e.MovieExternalID) {
			continue
		}
		if err := s.db.UpdateAwardLinks(prev.ID, e.MovieCatalogID, e.MovieExternalID); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// UnlinkedTitles lists film titles of stored awards that have no catalog
// link, with the release year expected for that ceremony.
func (s *ProcessingService) UnlinkedTitles(year int) ([]catalog.TitleQuery, error) {
	stored, err := s.db.ListAwards(storage.AwardFilter{AwardName: s.cfg.AwardName, CeremonyYear: year, Unlinked: true})
	if err != nil {
		return nil, err
	}
	out := make([]catalog.TitleQuery, 0, len(stored))
	for _, a := range stored {
		out = append(out, catalog.TitleQuery{Title: util.Deref(a.MovieTitle), Year: a.CeremonyYear - 1})
	}
	return out, nil
}

func sameLink(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
