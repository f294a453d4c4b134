package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"filmawards/internal/catalog"
	"filmawards/internal/config"
	"filmawards/internal/logging"
	"filmawards/internal/pipeline"
	"filmawards/internal/source"
	"filmawards/internal/storage"
)

// Resolver looks up films the catalog does not hold yet.
type Resolver interface {
	ResolveMissing(ctx context.Context, queries []catalog.TitleQuery) (int, error)
}

// Service re-scrapes the watched ceremony on an interval so late-published
// winners land in the database.
type Service struct {
	db        *storage.DB
	cfg       config.Config
	processor *pipeline.ProcessingService
	resolver  Resolver
	log       *slog.Logger
	now       func() time.Time
}

// NewService wires a watcher. A nil resolver skips catalog lookups.
func NewService(db *storage.DB, cfg config.Config, fetcher source.Fetcher, resolver Resolver, log *slog.Logger) *Service {
	log = logging.OrDefault(log)
	return &Service{
		db:        db,
		cfg:       cfg,
		processor: pipeline.NewProcessingService(db, cfg, fetcher, log),
		resolver:  resolver,
		log:       log,
		now:       time.Now,
	}
}

type CycleResult struct {
	Year       int
	Published  bool
	Awards     int
	Resolved   int
	Relinked   int
	ExportPath string
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Hour
	}
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error("watch cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunCycle scrapes the watched year once, resolves films that did not link,
// and exports the year when auto export is on. A ceremony page that does not
// exist yet is not an error.
func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	year := s.cfg.WatchYear
	if year <= 0 {
		year = s.now().Year()
	}
	result := CycleResult{Year: year}

	scraped, err := s.processor.ScrapeYear(ctx, year)
	if errors.Is(err, source.ErrNotFound) {
		s.log.Info("ceremony page not published yet", "year", year)
		return result, nil
	}
	if err != nil {
		return result, err
	}
	result.Published = true
	result.Awards = scraped.Awards

	if s.resolver != nil && scraped.Linked < scraped.Awards {
		missing, err := s.processor.UnlinkedTitles(year)
		if err != nil {
			return result, err
		}
		result.Resolved, err = s.resolver.ResolveMissing(ctx, missing)
		if err != nil {
			return result, err
		}
		if result.Resolved > 0 {
			if result.Relinked, err = s.processor.EnrichStored(year); err != nil {
				return result, err
			}
		}
	}

	if s.cfg.WatchAutoExport && result.Awards > 0 {
		path, err := s.exportYear(year)
		if err != nil {
			return result, err
		}
		result.ExportPath = path
	}

	s.log.Info("watch cycle done",
		"year", year, "awards", result.Awards, "resolved", result.Resolved,
		"relinked", result.Relinked, "export", result.ExportPath)
	return result, nil
}

func (s *Service) exportYear(year int) (string, error) {
	stored, err := s.db.ListAwards(storage.AwardFilter{AwardName: s.cfg.AwardName, CeremonyYear: year})
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%d.xlsx", sanitizeName(s.cfg.AwardName), year)
	outputPath := filepath.Join(s.cfg.OutputDir, "watch", filename)
	if err := pipeline.ExportAwardsToXLSX(pipeline.EnrichedRows(stored), outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

func sanitizeName(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(strings.TrimSpace(input))
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
