package pipeline

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestHeadingText(t *testing.T) {
	doc := mustDoc(t, `<h3><span class="mw-headline">Best Picture</span><span class="mw-editsection">[edit]</span></h3>
<h3>Best Director <span class="mw-editsection">[edit]</span></h3>`)
	var got []string
	doc.Find("h3").Each(func(_ int, h *goquery.Selection) {
		got = append(got, HeadingText(h))
	})
	assert.Equal(t, []string{"Best Picture", "Best Director"}, got)
}

func TestLocatePreceding(t *testing.T) {
	doc := mustDoc(t, `<ul><li>before any heading</li></ul>
<h2>Winners</h2>
<h3>Best Picture</h3><ul><li>a</li></ul><ul><li>b</li></ul>
<h3>Best Actor</h3><p>no list</p><ol><li>c</li></ol>`)

	sections := LocatePreceding(doc, listSelector)
	require.Len(t, sections, 3)
	assert.Equal(t, "Best Picture", sections[0].Heading)
	assert.Equal(t, 3, sections[0].Level)
	assert.Equal(t, "Best Picture", sections[1].Heading)
	assert.Equal(t, "Best Actor", sections[2].Heading)
	assert.True(t, sections[2].Content.Is("ol"))
}

func TestLocateUnderHeadings(t *testing.T) {
	doc := mustDoc(t, `<div class="mw-heading mw-heading2"><h2>Awards</h2></div>
<p>intro</p>
<div class="mw-heading mw-heading3"><h3>Best Picture</h3></div>
<div class="div-col"><ul><li>one</li></ul></div>
<h4>Notes</h4>
<table><tr><td>note</td></tr></table>
<div class="navbox"><ul><li>nav</li></ul></div>
<h3>Best Actor</h3>
<ul><li>two</li></ul>
<h2>References</h2>`)

	sections := LocateUnderHeadings(doc)
	require.Len(t, sections, 5)

	awards := sections[0]
	assert.Equal(t, "Awards", awards.Heading)
	assert.Equal(t, 2, awards.Level)
	assert.Equal(t, 0, awards.Lead.Length())
	assert.Equal(t, 3, awards.Content.Length())

	picture := sections[1]
	assert.Equal(t, "Best Picture", picture.Heading)
	assert.Equal(t, 2, picture.Content.Length())
	require.Equal(t, 1, picture.Lead.Length())
	assert.True(t, picture.Lead.Is("ul"))

	actor := sections[3]
	assert.Equal(t, "Best Actor", actor.Heading)
	assert.Equal(t, 1, actor.Content.Length())

	assert.Equal(t, 0, sections[4].Content.Length())
}
