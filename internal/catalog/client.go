package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"filmawards/internal"
	"filmawards/internal/config"
	"filmawards/internal/util"
)

// Client talks to the TMDB v3 API.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *util.RateLimiter
}

// movieResult is the shape shared by discover, search and details payloads.
type movieResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Overview      string  `json:"overview"`
	Popularity    float64 `json:"popularity"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int64   `json:"vote_count"`
	IMDBID        string  `json:"imdb_id"`
	ExternalIDs   *struct {
		IMDBID string `json:"imdb_id"`
	} `json:"external_ids"`
}

type pagedResponse struct {
	Page         int               `json:"page"`
	Results      []json.RawMessage `json:"results"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TMDBTimeoutMs) * time.Millisecond},
		limiter:    util.PerSecond(cfg.TMDBRateLimitRPS),
	}
}

// DiscoverMovies pages through /discover/movie for one release year, most
// popular first, stopping at maxPages or the last page.
func (c *Client) DiscoverMovies(ctx context.Context, year, minVoteCount, maxPages int) ([]internal.Film, error) {
	if maxPages <= 0 {
		maxPages = 1
	}
	var all []internal.Film
	seen := map[int64]struct{}{}

	for page := 1; page <= maxPages; page++ {
		params := map[string]string{
			"sort_by":        "popularity.desc",
			"vote_count.gte": strconv.Itoa(minVoteCount),
			"page":           strconv.Itoa(page),
		}
		if year > 0 {
			params["primary_release_year"] = strconv.Itoa(year)
		}

		films, totalPages, err := c.fetchPage(ctx, "discover/movie", params)
		if err != nil {
			return nil, err
		}
		for _, f := range films {
			if _, ok := seen[f.CatalogID]; ok {
				continue
			}
			seen[f.CatalogID] = struct{}{}
			all = append(all, f)
		}
		if len(films) == 0 || page >= totalPages {
			break
		}
	}
	return all, nil
}

func (c *Client) SearchMovie(ctx context.Context, query string, year int) ([]internal.Film, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := map[string]string{"query": query}
	if year > 0 {
		params["primary_release_year"] = strconv.Itoa(year)
	}
	films, _, err := c.fetchPage(ctx, "search/movie", params)
	return films, err
}

// GetMovieDetails fetches one film with its external ids attached.
func (c *Client) GetMovieDetails(ctx context.Context, id int64) (internal.Film, error) {
	body, err := c.fetchJSON(ctx, "movie/"+strconv.FormatInt(id, 10), map[string]string{
		"append_to_response": "external_ids",
	})
	if err != nil {
		return internal.Film{}, err
	}
	return toFilm(body)
}

func (c *Client) fetchPage(ctx context.Context, endpoint string, params map[string]string) ([]internal.Film, int, error) {
	body, err := c.fetchJSON(ctx, endpoint, params)
	if err != nil {
		return nil, 0, err
	}
	var payload pagedResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, 0, fmt.Errorf("decode tmdb %s: %w", endpoint, err)
	}
	films := make([]internal.Film, 0, len(payload.Results))
	for _, raw := range payload.Results {
		film, err := toFilm(raw)
		if err != nil {
			continue
		}
		films = append(films, film)
	}
	return films, payload.TotalPages, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.TMDBAPIKey) == "" {
		return nil, errors.New("missing TMDB_API_KEY")
	}

	baseURL := strings.TrimRight(c.cfg.TMDBBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("api_key", c.cfg.TMDBAPIKey)
	if c.cfg.TMDBLanguage != "" {
		q.Set("language", c.cfg.TMDBLanguage)
	}
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}
				lastErr = fmt.Errorf("tmdb status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("tmdb api error: status=%d body=%s", resp.StatusCode, string(body))
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("tmdb request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toFilm(raw []byte) (internal.Film, error) {
	var m movieResult
	if err := json.Unmarshal(raw, &m); err != nil {
		return internal.Film{}, err
	}
	title := strings.TrimSpace(m.Title)
	if title == "" {
		return internal.Film{}, errors.New("empty title")
	}
	if m.ID == 0 {
		return internal.Film{}, errors.New("missing id")
	}

	film := internal.Film{
		CatalogID:     m.ID,
		Title:         title,
		OriginalTitle: strings.TrimSpace(m.OriginalTitle),
		Overview:      m.Overview,
		Popularity:    m.Popularity,
		VoteAverage:   m.VoteAverage,
		VoteCount:     m.VoteCount,
		RawJSON:       string(raw),
	}
	if d := strings.TrimSpace(m.ReleaseDate); d != "" {
		film.ReleaseDate = util.StringPtr(d)
	}
	imdb := strings.TrimSpace(m.IMDBID)
	if m.ExternalIDs != nil && strings.TrimSpace(m.ExternalIDs.IMDBID) != "" {
		imdb = strings.TrimSpace(m.ExternalIDs.IMDBID)
	}
	if imdb != "" {
		film.ExternalID = util.StringPtr(imdb)
	}
	return film, nil
}
