package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"filmawards/internal"
)

func renderSummary(counts []internal.CategoryCount) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Year", "Category", "Nominations", "Wins", "Linked"})

	var nominations, wins, linked int
	for _, c := range counts {
		tw.AppendRow(table.Row{strconv.Itoa(c.CeremonyYear), c.Category, c.Nominations, c.Wins, c.Linked})
		nominations += c.Nominations
		wins += c.Wins
		linked += c.Linked
	}
	tw.AppendFooter(table.Row{"", "Total", nominations, wins, linked})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}
