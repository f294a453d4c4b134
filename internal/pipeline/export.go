package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"filmawards/internal"
)

var exportHeaders = []string{
	"award_name", "ceremony_year", "ceremony_number", "category",
	"movie_title", "movie_catalog_id", "movie_external_id",
	"person_name", "person_role", "won", "nominated",
	"announcement_date", "ceremony_date", "notes",
}

func ExportAwardsToXLSX(rows []internal.EnrichedAward, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.AwardName)
		set(2, row.CeremonyYear)
		set(3, row.CeremonyNumber)
		set(4, row.Category)
		set(5, derefString(row.MovieTitle))
		set(6, derefInt64(row.MovieCatalogID))
		set(7, derefString(row.MovieExternalID))
		set(8, derefString(row.PersonName))
		set(9, derefString(row.PersonRole))
		set(10, row.Won)
		set(11, row.Nominated)
		set(12, derefString(row.AnnouncementDate))
		set(13, derefString(row.CeremonyDate))
		set(14, row.Notes)
	}

	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// ExportAwardsToJSON writes the records as a JSON array; absent values are
// null and dates are ISO calendar dates.
func ExportAwardsToJSON(rows []internal.EnrichedAward, outputPath string) error {
	if rows == nil {
		rows = []internal.EnrichedAward{}
	}
	blob, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, blob, 0o644)
}

// EnrichedRows drops the storage ids.
func EnrichedRows(stored []internal.StoredAward) []internal.EnrichedAward {
	out := make([]internal.EnrichedAward, 0, len(stored))
	for _, s := range stored {
		out = append(out, s.EnrichedAward)
	}
	return out
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt64(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}
