package pipeline

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinnerDetectorSingleSignals(t *testing.T) {
	d := NewWinnerDetector(testConfig(t))
	base := Entry{
		RawText:      "Barbie – David Heyman",
		Links:        []Link{{Text: "Barbie", Href: "/wiki/Barbie_(film)"}},
		StyleSignals: []string{"style:vertical-align:top", "class:nominee"},
	}
	require.False(t, d.IsWinner(base))

	with := func(mutate func(e *Entry)) Entry {
		e := base
		e.StyleSignals = append([]string(nil), base.StyleSignals...)
		mutate(&e)
		return e
	}

	cases := []struct {
		name  string
		entry Entry
		want  bool
	}{
		{"emphasis", with(func(e *Entry) { e.StyleSignals = append(e.StyleSignals, signalEmphasis) }), true},
		{"highlight background", with(func(e *Entry) { e.StyleSignals = append(e.StyleSignals, "style:background:#faeb86") }), true},
		{"gold background", with(func(e *Entry) { e.StyleSignals = append(e.StyleSignals, "style:background-color: gold;") }), true},
		{"unknown background", with(func(e *Entry) { e.StyleSignals = append(e.StyleSignals, "style:background:#eeeeee") }), false},
		{"color without background", with(func(e *Entry) { e.StyleSignals = append(e.StyleSignals, "style:color:gold") }), false},
		{"trophy", with(func(e *Entry) { e.RawText += " 🏆" }), true},
		{"double dagger", with(func(e *Entry) { e.RawText += " ‡" }), true},
		{"winner word", with(func(e *Entry) { e.RawText += " (Winner)" }), true},
		{"winner class", with(func(e *Entry) { e.StyleSignals = append(e.StyleSignals, "class:award-winner") }), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, d.IsWinner(tc.entry))
		})
	}
}

func TestRowEntrySignals(t *testing.T) {
	html := `<table>
<tr style="Background: Gold"><td><a href="/wiki/A">A</a></td></tr>
<tr><td class="Winner"><a href="/wiki/B">B</a></td></tr>
<tr><td><span style="font-weight: bold"><a href="/wiki/C">C</a></span></td></tr>
<tr><td><a href="/wiki/D">D</a> <a href="#cite_note-2">[2]</a></td></tr>
</table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	d := NewWinnerDetector(testConfig(t))

	var got []bool
	var links [][]Link
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		e, ok := RowEntry(row)
		require.True(t, ok)
		got = append(got, d.IsWinner(e))
		links = append(links, e.Links)
	})
	assert.Equal(t, []bool{true, true, true, false}, got)
	require.Len(t, links[3], 2)
	assert.False(t, links[3][1].Usable())
}
