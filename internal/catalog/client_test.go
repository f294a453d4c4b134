package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmawards/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, payload any) *http.Response {
	blob, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(string(blob))),
		Header:     make(http.Header),
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.TMDBAPIKey = "test"
	cfg.TMDBBaseURL = "https://example.test/3"
	cfg.TMDBRateLimitRPS = 1000
	return cfg
}

func TestDiscoverMoviesWithRetry(t *testing.T) {
	attempt := 0

	client := NewClient(testConfig(t))
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/3/discover/movie" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			q := r.URL.Query()
			assert.Equal(t, "test", q.Get("api_key"))
			assert.Equal(t, "2023", q.Get("primary_release_year"))
			assert.Equal(t, "50", q.Get("vote_count.gte"))

			attempt++
			if attempt == 1 {
				return jsonResponse(http.StatusTooManyRequests, map[string]any{"status_message": "slow down"}), nil
			}

			switch q.Get("page") {
			case "1":
				return jsonResponse(http.StatusOK, map[string]any{
					"page":        1,
					"total_pages": 2,
					"results": []map[string]any{
						{"id": 872585, "title": "Oppenheimer", "release_date": "2023-07-19", "vote_count": 9000},
						{"id": 0, "title": "broken"},
					},
				}), nil
			case "2":
				return jsonResponse(http.StatusOK, map[string]any{
					"page":        2,
					"total_pages": 2,
					"results": []map[string]any{
						{"id": 346698, "title": "Barbie", "release_date": "2023-07-19"},
						{"id": 872585, "title": "Oppenheimer"},
					},
				}), nil
			}
			t.Fatalf("unexpected page %s", q.Get("page"))
			return nil, nil
		}),
	}

	films, err := client.DiscoverMovies(context.Background(), 2023, 50, 5)
	require.NoError(t, err)
	require.Len(t, films, 2)
	assert.Equal(t, int64(872585), films[0].CatalogID)
	assert.Equal(t, "Oppenheimer", films[0].Title)
	require.NotNil(t, films[0].ReleaseDate)
	assert.Equal(t, "2023-07-19", *films[0].ReleaseDate)
	assert.Equal(t, int64(346698), films[1].CatalogID)
	assert.Equal(t, 3, attempt)
}

func TestGetMovieDetailsReadsExternalIDs(t *testing.T) {
	client := NewClient(testConfig(t))
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, "/3/movie/872585", r.URL.Path)
			assert.Equal(t, "external_ids", r.URL.Query().Get("append_to_response"))
			return jsonResponse(http.StatusOK, map[string]any{
				"id":           872585,
				"title":        "Oppenheimer",
				"external_ids": map[string]any{"imdb_id": "tt15398776"},
			}), nil
		}),
	}

	film, err := client.GetMovieDetails(context.Background(), 872585)
	require.NoError(t, err)
	require.NotNil(t, film.ExternalID)
	assert.Equal(t, "tt15398776", *film.ExternalID)
}

func TestFetchRequiresAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.TMDBAPIKey = ""
	client := NewClient(cfg)

	_, err := client.SearchMovie(context.Background(), "Oppenheimer", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TMDB_API_KEY")
}

func TestNonRetryableStatusFailsFast(t *testing.T) {
	calls := 0
	client := NewClient(testConfig(t))
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return jsonResponse(http.StatusUnauthorized, map[string]any{"status_message": "invalid key"}), nil
		}),
	}

	_, err := client.SearchMovie(context.Background(), "Oppenheimer", 2023)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
