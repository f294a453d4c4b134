package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"filmawards/internal"
)

func TestRenderSummary(t *testing.T) {
	out := renderSummary([]internal.CategoryCount{
		{CeremonyYear: 2024, Category: "Best Actor", Nominations: 5, Wins: 1, Linked: 4},
		{CeremonyYear: 2024, Category: "Best Picture", Nominations: 10, Wins: 1, Linked: 10},
	})
	assert.Contains(t, out, "Best Picture")
	assert.Contains(t, out, "2024")
	assert.Contains(t, strings.ToUpper(out), "TOTAL")
	assert.Contains(t, out, "15")
	assert.Contains(t, out, "14")
}
