package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmawards/internal"
	"filmawards/internal/catalog"
	"filmawards/internal/config"
	"filmawards/internal/source"
	"filmawards/internal/storage"
)

const ceremonyPage = `<html><body>
<h3>Best Picture</h3>
<table class="wikitable">
<tr><th>Film</th></tr>
<tr><td><b><a href="/wiki/Oppenheimer_(film)">Oppenheimer</a></b></td></tr>
<tr><td><a href="/wiki/Maestro_(2023_film)">Maestro</a></td></tr>
</table>
</body></html>`

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	raw, ok := m[url]
	if !ok {
		return nil, fmt.Errorf("%s: %w", url, source.ErrNotFound)
	}
	return raw, nil
}

type fakeResolver struct {
	db      *storage.DB
	queries []catalog.TitleQuery
}

func (r *fakeResolver) ResolveMissing(_ context.Context, queries []catalog.TitleQuery) (int, error) {
	r.queries = append(r.queries, queries...)
	return len(queries), r.db.UpsertFilms([]internal.Film{{CatalogID: 523607, Title: "Maestro", RawJSON: "{}"}})
}

func setup(t *testing.T) (config.Config, *storage.DB) {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	dir := t.TempDir()
	cfg.DBPath = filepath.Join(dir, "awards.db")
	cfg.RawPageDir = filepath.Join(dir, "raw")
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.WatchYear = 2024
	cfg.WatchAutoExport = true

	db, err := storage.Open(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.UpsertFilms([]internal.Film{{CatalogID: 872585, Title: "Oppenheimer", RawJSON: "{}"}}))
	return cfg, db
}

func TestRunCycleResolvesAndExports(t *testing.T) {
	cfg, db := setup(t)
	fetcher := mapFetcher{source.CeremonyURL(cfg.CeremonyURLTemplate, 96): []byte(ceremonyPage)}
	resolver := &fakeResolver{db: db}

	res, err := NewService(db, cfg, fetcher, resolver, nil).RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Published)
	assert.Equal(t, 2024, res.Year)
	assert.Equal(t, 2, res.Awards)
	assert.Equal(t, 1, res.Resolved)
	assert.Equal(t, 1, res.Relinked)
	assert.Equal(t, []catalog.TitleQuery{{Title: "Maestro", Year: 2023}}, resolver.queries)

	require.NotEmpty(t, res.ExportPath)
	assert.Equal(t, "Academy_Awards_2024.xlsx", filepath.Base(res.ExportPath))
	_, err = os.Stat(res.ExportPath)
	require.NoError(t, err)

	stored, err := db.ListAwards(storage.AwardFilter{AwardName: cfg.AwardName, Unlinked: true})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRunCycleBeforePublication(t *testing.T) {
	cfg, db := setup(t)
	cfg.WatchYear = 0
	svc := NewService(db, cfg, mapFetcher{}, nil, nil)
	svc.now = func() time.Time { return time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC) }

	res, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Published)
	assert.Equal(t, 2030, res.Year)
	assert.Empty(t, res.ExportPath)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg, db := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- NewService(db, cfg, mapFetcher{}, nil, nil).Run(ctx) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Golden_Globe_Awards", sanitizeName(" Golden Globe Awards "))
	assert.Equal(t, "a_b_c", sanitizeName("a/b:c"))
}
