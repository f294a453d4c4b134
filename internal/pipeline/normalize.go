package pipeline

import (
	"filmawards/internal"
	"filmawards/internal/util"
)

type NormalizedAward struct {
	internal.Award
	NormalizedTitle string
}

func NormalizeAwards(awards []internal.Award) []NormalizedAward {
	out := make([]NormalizedAward, 0, len(awards))
	for _, award := range awards {
		out = append(out, NormalizedAward{
			Award:           award,
			NormalizedTitle: util.NormalizeTitle(util.Deref(award.MovieTitle)),
		})
	}
	return out
}
