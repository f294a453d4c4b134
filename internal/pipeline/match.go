package pipeline

import (
	"log/slog"
	"strings"

	"filmawards/internal"
	"filmawards/internal/catalog"
	"filmawards/internal/logging"
	"filmawards/internal/util"
)

type MatchTier int

const (
	TierNone MatchTier = iota
	TierJaccard
	TierSubstring
	TierExact
)

func (t MatchTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierSubstring:
		return "substring"
	case TierJaccard:
		return "jaccard"
	default:
		return "none"
	}
}

// MatchScore describes how two titles relate after normalization.
type MatchScore struct {
	Tier    MatchTier
	Jaccard float64
}

func (s MatchScore) betterThan(o MatchScore) bool {
	if s.Tier != o.Tier {
		return s.Tier > o.Tier
	}
	return s.Jaccard > o.Jaccard
}

// Matches reports whether two titles name the same film: exact equality of
// the normalized forms, then containment either way, then token Jaccard
// against threshold.
func Matches(a, b string, threshold float64) bool {
	return Score(a, b, threshold).Tier != TierNone
}

func Score(a, b string, threshold float64) MatchScore {
	return scoreNormalized(util.NormalizeTitle(a), util.NormalizeTitle(b), threshold)
}

func scoreNormalized(na, nb string, threshold float64) MatchScore {
	jac := TokenJaccard(na, nb)
	if na == nb {
		return MatchScore{Tier: TierExact, Jaccard: jac}
	}
	// An empty title is contained in everything; it only matches itself.
	if na != "" && nb != "" && (strings.Contains(nb, na) || strings.Contains(na, nb)) {
		return MatchScore{Tier: TierSubstring, Jaccard: jac}
	}
	if jac >= threshold && jac > 0 {
		return MatchScore{Tier: TierJaccard, Jaccard: jac}
	}
	return MatchScore{Tier: TierNone, Jaccard: jac}
}

// TokenJaccard is |A∩B| / |A∪B| over whitespace-separated word sets, 0 when
// both sets are empty.
func TokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	union := len(setA)
	inter := 0
	for t := range setB {
		if _, ok := setA[t]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func JaccardMatch(a, b string, threshold float64) bool {
	return TokenJaccard(a, b) >= threshold
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}

// Enricher joins awards against a film catalog.
type Enricher struct {
	index     *catalog.Index
	threshold float64
	log       *slog.Logger
}

func NewEnricher(films []internal.Film, threshold float64, log *slog.Logger) *Enricher {
	return &Enricher{
		index:     catalog.BuildIndex(films),
		threshold: threshold,
		log:       logging.OrDefault(log),
	}
}

// EnrichAwards returns one record per input award, in input order. Only the
// catalog link fields are ever set.
func EnrichAwards(awards []internal.Award, films []internal.Film, threshold float64) []internal.EnrichedAward {
	return NewEnricher(films, threshold, nil).Enrich(awards)
}

func (e *Enricher) Enrich(awards []internal.Award) []internal.EnrichedAward {
	out := make([]internal.EnrichedAward, 0, len(awards))
	linked := 0
	for _, item := range NormalizeAwards(awards) {
		enriched := internal.EnrichedAward{Award: item.Award}
		if film, ok := e.lookupNormalized(item.NormalizedTitle, util.Deref(item.MovieTitle)); ok {
			enriched.MovieCatalogID = util.Int64Ptr(film.CatalogID)
			if film.ExternalID != nil {
				enriched.MovieExternalID = util.StringPtr(*film.ExternalID)
			}
			linked++
		}
		out = append(out, enriched)
	}
	e.log.Info("enrichment done", "awards", len(awards), "linked", linked, "films", e.index.Len())
	return out
}

// Lookup resolves a raw award title to a film: direct hit on the normalized
// title first, otherwise the best fuzzy match across the whole index. Ties go
// to the higher Jaccard score and then to the lower catalog id.
func (e *Enricher) Lookup(title string) (internal.Film, bool) {
	return e.lookupNormalized(util.NormalizeTitle(title), title)
}

func (e *Enricher) lookupNormalized(normalized, raw string) (internal.Film, bool) {
	if strings.TrimSpace(raw) == "" {
		return internal.Film{}, false
	}
	if film, ok := e.index.Get(normalized); ok {
		return film, true
	}

	var (
		best      internal.Film
		bestScore MatchScore
		found     bool
	)
	for _, key := range e.index.Keys() {
		film, _ := e.index.Get(key)
		score := scoreNormalized(key, normalized, e.threshold)
		if score.Tier == TierNone {
			continue
		}
		if !found || score.betterThan(bestScore) || (!bestScore.betterThan(score) && film.CatalogID < best.CatalogID) {
			best, bestScore, found = film, score, true
		}
	}
	return best, found
}
