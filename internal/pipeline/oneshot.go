package pipeline

import (
	"fmt"
	"log/slog"

	"filmawards/internal"
	"filmawards/internal/config"
	"filmawards/internal/source"
)

// ParseFile parses a saved page without touching the database. With a
// category it is read as that category's history page, otherwise as the
// ceremony page of year.
func ParseFile(cfg config.Config, path string, year int, category string, log *slog.Logger) (ParseResult, error) {
	raw, err := source.ReadPageFile(path)
	if err != nil {
		return ParseResult{}, err
	}
	parser := NewParser(cfg, log)

	if category != "" {
		awards, err := parser.ParseCategoryHistoryHTML(raw, category)
		if err != nil {
			return ParseResult{}, err
		}
		return ParseResult{Strategy: internal.StrategyHistory, Awards: awards}, nil
	}
	if year <= 0 {
		return ParseResult{}, fmt.Errorf("ceremony year required to parse %s", path)
	}
	return parser.ParseCeremonyHTML(raw, year)
}
