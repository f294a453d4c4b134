package source

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"filmawards/internal"
	"filmawards/internal/storage"
)

const (
	PageStatusFetched = "fetched"
	PageStatusParsed  = "parsed"
	PageStatusEmpty   = "empty"
	PageStatusFailed  = "failed"
)

// PageStore keeps raw pages on disk, content addressed, and records them in
// the pages table.
type PageStore struct {
	db         *storage.DB
	rawPageDir string
}

func NewPageStore(db *storage.DB, rawPageDir string) *PageStore {
	return &PageStore{db: db, rawPageDir: rawPageDir}
}

func (s *PageStore) Store(page internal.FetchedPage) (internal.PageRow, error) {
	hashBytes := sha256.Sum256(page.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawPageDir, 0o755); err != nil {
		return internal.PageRow{}, err
	}

	rawPath := filepath.Join(s.rawPageDir, hash+".html")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, page.Raw, 0o644); err != nil {
			return internal.PageRow{}, err
		}
	}

	return s.db.UpsertPage(page.AwardName, page.CeremonyYear, page.URL, hash, rawPath, PageStatusFetched)
}

func (s *PageStore) Load(row internal.PageRow) ([]byte, error) {
	return os.ReadFile(row.RawRef)
}

func (s *PageStore) MarkStatus(row internal.PageRow, status string) error {
	return s.db.UpdatePageStatus(row.ID, status)
}
