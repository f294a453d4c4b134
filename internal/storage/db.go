package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"filmawards/internal"
)

type DB struct {
	conn *sql.DB
}

// AwardFilter narrows ListAwards. Zero fields match everything.
type AwardFilter struct {
	AwardName    string
	CeremonyYear int
	WonOnly      bool
	Unlinked     bool
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS films (
  catalogId INTEGER PRIMARY KEY,
  externalId TEXT,
  title TEXT NOT NULL,
  originalTitle TEXT,
  releaseDate TEXT,
  overview TEXT,
  popularity REAL,
  voteAverage REAL,
  voteCount INTEGER,
  raw_json TEXT NOT NULL,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_films_title ON films(title);
CREATE INDEX IF NOT EXISTS idx_films_externalId ON films(externalId);

CREATE TABLE IF NOT EXISTS awards (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  awardName TEXT NOT NULL,
  ceremonyYear INTEGER NOT NULL,
  ceremonyNumber INTEGER NOT NULL,
  category TEXT NOT NULL,
  movieTitle TEXT,
  personName TEXT,
  personRole TEXT,
  won INTEGER NOT NULL,
  nominated INTEGER NOT NULL,
  announcementDate TEXT,
  ceremonyDate TEXT,
  notes TEXT NOT NULL DEFAULT '',
  movieCatalogId INTEGER,
  movieExternalId TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_awards_ceremony ON awards(awardName, ceremonyYear);
CREATE INDEX IF NOT EXISTS idx_awards_catalog ON awards(movieCatalogId);

CREATE TABLE IF NOT EXISTS pages (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  awardName TEXT NOT NULL,
  ceremonyYear INTEGER NOT NULL,
  url TEXT NOT NULL,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  fetchedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(awardName, ceremonyYear)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  kind TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertFilms(films []internal.Film) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO films (
  catalogId, externalId, title, originalTitle, releaseDate,
  overview, popularity, voteAverage, voteCount, raw_json, lastSeenAt
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(catalogId) DO UPDATE SET
  externalId=COALESCE(excluded.externalId, films.externalId),
  title=excluded.title,
  originalTitle=excluded.originalTitle,
  releaseDate=excluded.releaseDate,
  overview=excluded.overview,
  popularity=excluded.popularity,
  voteAverage=excluded.voteAverage,
  voteCount=excluded.voteCount,
  raw_json=excluded.raw_json,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range films {
		if _, err := stmt.Exec(
			f.CatalogID, f.ExternalID, f.Title, f.OriginalTitle, f.ReleaseDate,
			f.Overview, f.Popularity, f.VoteAverage, f.VoteCount, f.RawJSON,
		); err != nil {
			return fmt.Errorf("upsert film %d: %w", f.CatalogID, err)
		}
	}

	return tx.Commit()
}

// ListFilms returns the catalog ordered by id, so index building sees the
// same order on every run.
func (d *DB) ListFilms() ([]internal.Film, error) {
	rows, err := d.conn.Query(`
SELECT catalogId, externalId, title, originalTitle, releaseDate,
       overview, popularity, voteAverage, voteCount, raw_json
FROM films ORDER BY catalogId ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Film
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (d *DB) GetFilm(catalogID int64) (*internal.Film, error) {
	row := d.conn.QueryRow(`
SELECT catalogId, externalId, title, originalTitle, releaseDate,
       overview, popularity, voteAverage, voteCount, raw_json
FROM films WHERE catalogId = ?`, catalogID)
	f, err := scanFilm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFilm(s scanner) (internal.Film, error) {
	var f internal.Film
	var originalTitle, overview sql.NullString
	err := s.Scan(
		&f.CatalogID, &f.ExternalID, &f.Title, &originalTitle, &f.ReleaseDate,
		&overview, &f.Popularity, &f.VoteAverage, &f.VoteCount, &f.RawJSON,
	)
	f.OriginalTitle = originalTitle.String
	f.Overview = overview.String
	return f, err
}

// ReplaceAwards swaps every stored award of one ceremony for the given set,
// so re-scraping a year never duplicates rows.
func (d *DB) ReplaceAwards(awardName string, ceremonyYear int, awards []internal.EnrichedAward) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM awards WHERE awardName = ? AND ceremonyYear = ?`, awardName, ceremonyYear); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO awards (
  awardName, ceremonyYear, ceremonyNumber, category, movieTitle, personName, personRole,
  won, nominated, announcementDate, ceremonyDate, notes, movieCatalogId, movieExternalId
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range awards {
		if a.AwardName != awardName || a.CeremonyYear != ceremonyYear {
			return fmt.Errorf("award %q/%d does not belong to ceremony %q/%d", a.AwardName, a.CeremonyYear, awardName, ceremonyYear)
		}
		if _, err := stmt.Exec(
			a.AwardName, a.CeremonyYear, a.CeremonyNumber, a.Category, a.MovieTitle, a.PersonName, a.PersonRole,
			a.Won, a.Nominated, a.AnnouncementDate, a.CeremonyDate, a.Notes, a.MovieCatalogID, a.MovieExternalID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListAwards(filter AwardFilter) ([]internal.StoredAward, error) {
	query := `
SELECT id, awardName, ceremonyYear, ceremonyNumber, category, movieTitle, personName, personRole,
       won, nominated, announcementDate, ceremonyDate, notes, movieCatalogId, movieExternalId
FROM awards WHERE 1=1`
	var args []any
	if filter.AwardName != "" {
		query += ` AND awardName = ?`
		args = append(args, filter.AwardName)
	}
	if filter.CeremonyYear != 0 {
		query += ` AND ceremonyYear = ?`
		args = append(args, filter.CeremonyYear)
	}
	if filter.WonOnly {
		query += ` AND won = 1`
	}
	if filter.Unlinked {
		query += ` AND movieCatalogId IS NULL AND movieTitle IS NOT NULL`
	}
	query += ` ORDER BY ceremonyYear ASC, id ASC`

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.StoredAward
	for rows.Next() {
		var a internal.StoredAward
		if err := rows.Scan(
			&a.ID, &a.AwardName, &a.CeremonyYear, &a.CeremonyNumber, &a.Category, &a.MovieTitle, &a.PersonName, &a.PersonRole,
			&a.Won, &a.Nominated, &a.AnnouncementDate, &a.CeremonyDate, &a.Notes, &a.MovieCatalogID, &a.MovieExternalID,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (d *DB) UpdateAwardLinks(id int64, catalogID *int64, externalID *string) error {
	_, err := d.conn.Exec(`
UPDATE awards SET movieCatalogId = ?, movieExternalId = ?, updatedAt = CURRENT_TIMESTAMP
WHERE id = ?`, catalogID, externalID, id)
	return err
}

func (d *DB) CeremonyYears(awardName string) ([]int, error) {
	rows, err := d.conn.Query(`SELECT DISTINCT ceremonyYear FROM awards WHERE awardName = ? ORDER BY ceremonyYear`, awardName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

func (d *DB) CategoryCounts(awardName string, ceremonyYear int) ([]internal.CategoryCount, error) {
	query := `
SELECT ceremonyYear, category, COUNT(*), SUM(won), SUM(CASE WHEN movieCatalogId IS NULL THEN 0 ELSE 1 END)
FROM awards WHERE awardName = ?`
	args := []any{awardName}
	if ceremonyYear != 0 {
		query += ` AND ceremonyYear = ?`
		args = append(args, ceremonyYear)
	}
	query += ` GROUP BY ceremonyYear, category ORDER BY ceremonyYear ASC, category ASC`

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CategoryCount
	for rows.Next() {
		var c internal.CategoryCount
		if err := rows.Scan(&c.CeremonyYear, &c.Category, &c.Nominations, &c.Wins, &c.Linked); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) UpsertPage(awardName string, ceremonyYear int, url, hash, rawRef, status string) (internal.PageRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO pages (awardName, ceremonyYear, url, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(awardName, ceremonyYear) DO UPDATE SET
  url=excluded.url,
  hash=excluded.hash,
  status=excluded.status,
  rawRef=excluded.rawRef,
  fetchedAt=CURRENT_TIMESTAMP
`, awardName, ceremonyYear, url, hash, status, rawRef)
	if err != nil {
		return internal.PageRow{}, err
	}

	row, err := d.GetPage(awardName, ceremonyYear)
	if err != nil {
		return internal.PageRow{}, err
	}
	if row == nil {
		return internal.PageRow{}, errors.New("failed to upsert page")
	}
	return *row, nil
}

func (d *DB) GetPage(awardName string, ceremonyYear int) (*internal.PageRow, error) {
	var row internal.PageRow
	err := d.conn.QueryRow(`
SELECT id, awardName, ceremonyYear, url, hash, status, rawRef, fetchedAt
FROM pages WHERE awardName = ? AND ceremonyYear = ?
`, awardName, ceremonyYear).Scan(
		&row.ID, &row.AwardName, &row.CeremonyYear, &row.URL, &row.Hash, &row.Status, &row.RawRef, &row.FetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListPagesByStatus(status string, limit int) ([]internal.PageRow, error) {
	rows, err := d.conn.Query(`
SELECT id, awardName, ceremonyYear, url, hash, status, rawRef, fetchedAt
FROM pages WHERE status = ? ORDER BY ceremonyYear ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.PageRow
	for rows.Next() {
		var row internal.PageRow
		if err := rows.Scan(&row.ID, &row.AwardName, &row.CeremonyYear, &row.URL, &row.Hash, &row.Status, &row.RawRef, &row.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdatePageStatus(pageID int, status string) error {
	_, err := d.conn.Exec(`UPDATE pages SET status = ? WHERE id = ?`, status, pageID)
	return err
}

func (d *DB) InsertRun(runID, kind string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (runId, kind, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, runID, kind, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) CountRuns(kind string) (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM runs WHERE kind = ?`, kind).Scan(&n)
	return n, err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
