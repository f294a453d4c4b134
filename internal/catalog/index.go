package catalog

import (
	"sort"

	"filmawards/internal"
	"filmawards/internal/util"
)

// Index maps normalized titles to films. When two films share a normalized
// title the later one in the input wins.
type Index struct {
	ByTitle map[string]internal.Film
	keys    []string
}

func BuildIndex(films []internal.Film) *Index {
	idx := &Index{
		ByTitle: map[string]internal.Film{},
	}

	for _, f := range films {
		norm := util.NormalizeTitle(f.Title)
		if norm == "" {
			continue
		}
		idx.ByTitle[norm] = f
	}

	idx.keys = make([]string, 0, len(idx.ByTitle))
	for k := range idx.ByTitle {
		idx.keys = append(idx.keys, k)
	}
	sort.Strings(idx.keys)
	return idx
}

func (i *Index) Get(normalized string) (internal.Film, bool) {
	f, ok := i.ByTitle[normalized]
	return f, ok
}

// Keys returns the normalized titles in sorted order.
func (i *Index) Keys() []string {
	return i.keys
}

func (i *Index) Len() int {
	return len(i.ByTitle)
}
