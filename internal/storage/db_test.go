package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmawards/internal"
	"filmawards/internal/util"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "awards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func award(year int, category, title string, won bool) internal.EnrichedAward {
	return internal.EnrichedAward{Award: internal.Award{
		AwardName:      "Academy Awards",
		CeremonyYear:   year,
		CeremonyNumber: year - 1929 + 1,
		Category:       category,
		MovieTitle:     util.StringPtr(title),
		Won:            won,
		Nominated:      true,
	}}
}

func TestUpsertFilmsKeepsExternalID(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.UpsertFilms([]internal.Film{
		{CatalogID: 872585, ExternalID: util.StringPtr("tt15398776"), Title: "Oppenheimer", RawJSON: "{}"},
		{CatalogID: 346698, Title: "Barbie", RawJSON: "{}"},
	}))
	// A discover payload carries no external id; it must not wipe the stored one.
	require.NoError(t, db.UpsertFilms([]internal.Film{
		{CatalogID: 872585, Title: "Oppenheimer", VoteCount: 9000, RawJSON: "{}"},
	}))

	films, err := db.ListFilms()
	require.NoError(t, err)
	require.Len(t, films, 2)
	assert.Equal(t, int64(346698), films[0].CatalogID)
	assert.Equal(t, int64(872585), films[1].CatalogID)
	require.NotNil(t, films[1].ExternalID)
	assert.Equal(t, "tt15398776", *films[1].ExternalID)
	assert.Equal(t, int64(9000), films[1].VoteCount)

	missing, err := db.GetFilm(1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReplaceAwardsIsIdempotentPerCeremony(t *testing.T) {
	db := openTestDB(t)

	batch := []internal.EnrichedAward{
		award(2024, "Best Picture", "Oppenheimer", true),
		award(2024, "Best Picture", "Barbie", false),
	}
	require.NoError(t, db.ReplaceAwards("Academy Awards", 2024, batch))
	require.NoError(t, db.ReplaceAwards("Academy Awards", 2024, batch))
	require.NoError(t, db.ReplaceAwards("Academy Awards", 2023, []internal.EnrichedAward{
		award(2023, "Best Picture", "Everything Everywhere All at Once", true),
	}))

	rows, err := db.ListAwards(AwardFilter{AwardName: "Academy Awards", CeremonyYear: 2024})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Oppenheimer", *rows[0].MovieTitle)
	assert.True(t, rows[0].Won)
	assert.Equal(t, 96, rows[0].CeremonyNumber)

	won, err := db.ListAwards(AwardFilter{AwardName: "Academy Awards", WonOnly: true})
	require.NoError(t, err)
	assert.Len(t, won, 2)

	years, err := db.CeremonyYears("Academy Awards")
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024}, years)
}

func TestReplaceAwardsRejectsForeignCeremony(t *testing.T) {
	db := openTestDB(t)
	err := db.ReplaceAwards("Academy Awards", 2024, []internal.EnrichedAward{award(2023, "Best Picture", "X", true)})
	require.Error(t, err)

	rows, err := db.ListAwards(AwardFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdateAwardLinksAndCounts(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.ReplaceAwards("Academy Awards", 2024, []internal.EnrichedAward{
		award(2024, "Best Picture", "Oppenheimer", true),
		award(2024, "Best Picture", "Barbie", false),
		award(2024, "Best Director", "Oppenheimer", true),
	}))

	unlinked, err := db.ListAwards(AwardFilter{Unlinked: true})
	require.NoError(t, err)
	require.Len(t, unlinked, 3)

	require.NoError(t, db.UpdateAwardLinks(unlinked[0].ID, util.Int64Ptr(872585), util.StringPtr("tt15398776")))

	unlinked, err = db.ListAwards(AwardFilter{Unlinked: true})
	require.NoError(t, err)
	assert.Len(t, unlinked, 2)

	counts, err := db.CategoryCounts("Academy Awards", 2024)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, internal.CategoryCount{CeremonyYear: 2024, Category: "Best Director", Nominations: 1, Wins: 1, Linked: 0}, counts[0])
	assert.Equal(t, internal.CategoryCount{CeremonyYear: 2024, Category: "Best Picture", Nominations: 2, Wins: 1, Linked: 1}, counts[1])
}

func TestPagesRunsAndMetadata(t *testing.T) {
	db := openTestDB(t)

	page, err := db.UpsertPage("Academy Awards", 2024, "https://example.test/96th", "abc", "/raw/abc.html", "fetched")
	require.NoError(t, err)
	assert.Equal(t, "fetched", page.Status)

	again, err := db.UpsertPage("Academy Awards", 2024, "https://example.test/96th", "def", "/raw/def.html", "fetched")
	require.NoError(t, err)
	assert.Equal(t, page.ID, again.ID)
	assert.Equal(t, "def", again.Hash)

	require.NoError(t, db.UpdatePageStatus(page.ID, "parsed"))
	fetched, err := db.ListPagesByStatus("fetched", 10)
	require.NoError(t, err)
	assert.Empty(t, fetched)

	require.NoError(t, db.InsertRun("run-1", "scrape", map[string]float64{"total_ms": 12}, map[string]int{"awards": 3}))
	n, err := db.CountRuns("scrape")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	missing, err := db.GetMetadata("catalog.last_sync")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, db.SetMetadata("catalog.last_sync", "2024-03-10"))
	require.NoError(t, db.SetMetadata("catalog.last_sync", "2024-03-11"))
	value, err := db.GetMetadata("catalog.last_sync")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "2024-03-11", *value)
}
