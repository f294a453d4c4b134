package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"filmawards/internal"
)

func TestBuildIndex(t *testing.T) {
	idx := BuildIndex([]internal.Film{
		{CatalogID: 3, Title: "The Zone of Interest"},
		{CatalogID: 1, Title: "Oppenheimer"},
		{CatalogID: 2, Title: "OPPENHEIMER!"},
		{CatalogID: 4, Title: "  "},
	})

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"oppenheimer", "zone of interest"}, idx.Keys())

	film, ok := idx.Get("oppenheimer")
	assert.True(t, ok)
	assert.Equal(t, int64(2), film.CatalogID)

	_, ok = idx.Get("barbie")
	assert.False(t, ok)
}
