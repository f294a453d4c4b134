package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"filmawards/internal"
	"filmawards/internal/config"
	"filmawards/internal/logging"
	"filmawards/internal/storage"
	"filmawards/internal/util"
)

// TitleQuery is a film title to resolve, with the release year to prefer.
type TitleQuery struct {
	Title string
	Year  int
}

type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
	log    *slog.Logger
}

func NewSyncService(db *storage.DB, cfg config.Config, log *slog.Logger) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg, log: logging.OrDefault(log)}
}

// SyncYears stores the discover results for every release year in
// [start, end]. A failing year is logged and skipped.
func (s *SyncService) SyncYears(ctx context.Context, start, end int) (int, error) {
	if err := s.cfg.Require("TMDB_API_KEY", s.cfg.TMDBAPIKey); err != nil {
		return 0, err
	}
	if end < start {
		return 0, fmt.Errorf("invalid year range %d-%d", start, end)
	}

	total := 0
	for year := start; year <= end; year++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		films, err := s.client.DiscoverMovies(ctx, year, s.cfg.TMDBMinVoteCount, s.cfg.TMDBMaxPages)
		if err != nil {
			s.log.Error("catalog discover failed", "year", year, "error", err)
			continue
		}
		if err := s.db.UpsertFilms(films); err != nil {
			return total, err
		}
		s.log.Info("catalog year synced", "year", year, "films", len(films))
		total += len(films)
	}
	_ = s.db.SetMetadata("catalog.last_sync", time.Now().UTC().Format(time.RFC3339))
	return total, nil
}

// ResolveMissing searches the catalog for titles that no stored film carries
// under the same normalized title, and stores the details of the first hit.
func (s *SyncService) ResolveMissing(ctx context.Context, queries []TitleQuery) (int, error) {
	if err := s.cfg.Require("TMDB_API_KEY", s.cfg.TMDBAPIKey); err != nil {
		return 0, err
	}
	films, err := s.db.ListFilms()
	if err != nil {
		return 0, err
	}
	idx := BuildIndex(films)

	resolved := 0
	seen := map[string]struct{}{}
	for _, q := range queries {
		norm := util.NormalizeTitle(q.Title)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		if _, ok := idx.Get(norm); ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return resolved, err
		}

		film, ok, err := s.resolve(ctx, q)
		if err != nil {
			s.log.Warn("catalog resolve failed", "title", q.Title, "error", err)
			continue
		}
		if !ok {
			s.log.Debug("catalog has no match", "title", q.Title)
			continue
		}
		if err := s.db.UpsertFilms([]internal.Film{film}); err != nil {
			return resolved, err
		}
		resolved++
	}
	s.log.Info("catalog resolve done", "queries", len(queries), "resolved", resolved)
	return resolved, nil
}

func (s *SyncService) resolve(ctx context.Context, q TitleQuery) (internal.Film, bool, error) {
	title := strings.TrimSpace(q.Title)
	results, err := s.client.SearchMovie(ctx, title, q.Year)
	if err != nil {
		return internal.Film{}, false, err
	}
	if len(results) == 0 && q.Year > 0 {
		results, err = s.client.SearchMovie(ctx, title, 0)
		if err != nil {
			return internal.Film{}, false, err
		}
	}
	if len(results) == 0 {
		return internal.Film{}, false, nil
	}
	film, err := s.client.GetMovieDetails(ctx, results[0].CatalogID)
	if err != nil {
		return results[0], true, nil
	}
	return film, true, nil
}
