package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultMatchThreshold is the Jaccard score two titles need to match.
const DefaultMatchThreshold = 0.8

var (
	DefaultMajorCategories = []string{
		"Best Picture",
		"Best Director",
		"Best Actor",
		"Best Actress",
		"Best Supporting Actor",
		"Best Supporting Actress",
		"Best Original Screenplay",
		"Best Adapted Screenplay",
		"Best Cinematography",
		"Best Film Editing",
		"Best Original Score",
		"Best Original Song",
		"Best Animated Feature",
		"Best International Feature Film",
		"Best Documentary Feature",
	}
	DefaultWinnerHighlightColors = []string{"#faeb86", "#ffc", "gold", "yellow", "winner"}
	DefaultWinnerGlyphs          = []string{"🏆", "‡"}
	DefaultPersonKeywords        = []string{"actor", "actress", "director", "writer", "screenplay"}
)

type Config struct {
	DBPath     string
	RawPageDir string
	OutputDir  string
	LogLevel   string
	LogFormat  string

	AwardName            string
	FoundingCeremonyYear int
	CeremonyURLTemplate  string
	SnapshotDir          string

	MajorCategories       []string
	WinnerHighlightColors []string
	WinnerGlyphs          []string
	PersonKeywords        []string
	MatchThreshold        float64

	FetchUserAgent string
	FetchTimeoutMs int
	FetchRetries   int
	FetchDelayMs   int

	TMDBAPIKey       string
	TMDBBaseURL      string
	TMDBLanguage     string
	TMDBRateLimitRPS int
	TMDBTimeoutMs    int
	TMDBMinVoteCount int
	TMDBMaxPages     int

	WatchYear        int
	WatchIntervalSec int
	WatchAutoExport  bool
}

// fileOverlay is the YAML shape of AWARDS_CONFIG_FILE. Zero values leave the
// env/default value untouched.
type fileOverlay struct {
	AwardName             string   `yaml:"award_name"`
	FoundingCeremonyYear  int      `yaml:"founding_ceremony_year"`
	CeremonyURLTemplate   string   `yaml:"ceremony_url_template"`
	MajorCategories       []string `yaml:"major_categories"`
	WinnerHighlightColors []string `yaml:"winner_highlight_colors"`
	WinnerGlyphs          []string `yaml:"winner_glyphs"`
	PersonKeywords        []string `yaml:"person_keywords"`
	MatchThreshold        *float64 `yaml:"match_threshold"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "awards.db")),
		RawPageDir: getEnv("RAW_PAGE_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),

		AwardName:            getEnv("AWARD_NAME", "Academy Awards"),
		FoundingCeremonyYear: getEnvInt("FOUNDING_CEREMONY_YEAR", 1929),
		CeremonyURLTemplate:  getEnv("CEREMONY_URL_TEMPLATE", "https://en.wikipedia.org/wiki/%s_Academy_Awards"),
		SnapshotDir:          getEnv("SNAPSHOT_DIR", ""),

		MajorCategories:       getEnvList("MAJOR_CATEGORIES", DefaultMajorCategories),
		WinnerHighlightColors: getEnvList("WINNER_HIGHLIGHT_COLORS", DefaultWinnerHighlightColors),
		WinnerGlyphs:          getEnvList("WINNER_GLYPHS", DefaultWinnerGlyphs),
		PersonKeywords:        getEnvList("PERSON_KEYWORDS", DefaultPersonKeywords),
		MatchThreshold:        getEnvFloat("MATCH_THRESHOLD", DefaultMatchThreshold),

		FetchUserAgent: getEnv("FETCH_USER_AGENT", "MovieAwardsResearchBot/1.0 (Educational/Research Purpose)"),
		FetchTimeoutMs: getEnvInt("FETCH_TIMEOUT_MS", 30000),
		FetchRetries:   getEnvInt("FETCH_RETRIES", 3),
		FetchDelayMs:   getEnvInt("FETCH_DELAY_MS", 1000),

		TMDBAPIKey:       getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL:      getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBLanguage:     getEnv("TMDB_LANGUAGE", "en-US"),
		TMDBRateLimitRPS: getEnvInt("TMDB_RATE_LIMIT_RPS", 4),
		TMDBTimeoutMs:    getEnvInt("TMDB_TIMEOUT_MS", 30000),
		TMDBMinVoteCount: getEnvInt("TMDB_MIN_VOTE_COUNT", 50),
		TMDBMaxPages:     getEnvInt("TMDB_MAX_PAGES", 5),

		WatchYear:        getEnvInt("WATCH_YEAR", 0),
		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 3600),
		WatchAutoExport:  getEnvBool("WATCH_AUTO_EXPORT", true),
	}

	if path := strings.TrimSpace(getEnv("AWARDS_CONFIG_FILE", "")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read awards config: %w", err)
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse awards config %s: %w", path, err)
	}

	if strings.TrimSpace(overlay.AwardName) != "" {
		c.AwardName = strings.TrimSpace(overlay.AwardName)
	}
	if overlay.FoundingCeremonyYear != 0 {
		c.FoundingCeremonyYear = overlay.FoundingCeremonyYear
	}
	if strings.TrimSpace(overlay.CeremonyURLTemplate) != "" {
		c.CeremonyURLTemplate = strings.TrimSpace(overlay.CeremonyURLTemplate)
	}
	if list := cleanList(overlay.MajorCategories); len(list) > 0 {
		c.MajorCategories = list
	}
	if list := cleanList(overlay.WinnerHighlightColors); len(list) > 0 {
		c.WinnerHighlightColors = list
	}
	if list := cleanList(overlay.WinnerGlyphs); len(list) > 0 {
		c.WinnerGlyphs = list
	}
	if list := cleanList(overlay.PersonKeywords); len(list) > 0 {
		c.PersonKeywords = list
	}
	if overlay.MatchThreshold != nil {
		c.MatchThreshold = *overlay.MatchThreshold
	}
	return nil
}

func (c Config) Validate() error {
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("MATCH_THRESHOLD must be within [0,1], got %v", c.MatchThreshold)
	}
	if c.FoundingCeremonyYear <= 0 {
		return fmt.Errorf("FOUNDING_CEREMONY_YEAR must be positive")
	}
	if len(c.MajorCategories) == 0 {
		return fmt.Errorf("MAJOR_CATEGORIES must contain at least one category")
	}
	if !strings.Contains(c.CeremonyURLTemplate, "%s") {
		return fmt.Errorf("CEREMONY_URL_TEMPLATE must contain %%s for the ceremony ordinal")
	}
	return nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := getEnv(key, "")
	if strings.TrimSpace(value) == "" {
		return append([]string(nil), fallback...)
	}
	list := cleanList(strings.Split(value, ","))
	if len(list) == 0 {
		return append([]string(nil), fallback...)
	}
	return list
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
