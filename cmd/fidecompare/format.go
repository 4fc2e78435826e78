/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mikeb26/fidecompare/compare"
	"github.com/mikeb26/fidecompare/fide"
	"github.com/mikeb26/fidecompare/ratings"
)

const noValue = "-"

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	return tbl
}

func searchTable(players []fide.SearchPlayer) string {
	if len(players) == 0 {
		return "No players found.\n"
	}
	tbl := newTable()
	tbl.AppendHeader(table.Row{"FIDE ID", "Name", "Title", "Fed", "Std", "Rapid", "Blitz", "B-Year"})
	for _, p := range players {
		title := p.Title
		if p.TrainerTitle != "" {
			title = strings.TrimSpace(title + " " + p.TrainerTitle)
		}
		tbl.AppendRow(table.Row{p.ID, p.Name, title, p.Federation, orDash(p.Standard),
			orDash(p.Rapid), orDash(p.Blitz), orDash(p.BirthYear)})
	}
	return tbl.Render() + "\n"
}

func historyTable(hist []ratings.RatingPoint, rt ratings.RatingType) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Period", rt.Label(), "Games"})
	for _, pt := range hist {
		tbl.AppendRow(table.Row{pt.PeriodKey, intOrDash(pt.Rating.Get(rt)),
			intOrDash(pt.Games.Get(rt))})
	}
	if peak, ok := ratings.FindPeak(hist, rt); ok {
		tbl.AppendFooter(table.Row{"Peak", peak.Rating, peak.Period})
	}
	return tbl.Render() + "\n"
}

func peakTable(d compare.Dashboard) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Player", "Latest", "Peak", "Peak Period"})
	for _, s := range d.Series {
		if s.Err != "" {
			tbl.AppendRow(table.Row{playerLabel(s.Player), "error: " + s.Err, "", ""})
			continue
		}
		latest := noValue
		for i := len(s.Ratings) - 1; i >= 0; i-- {
			if s.Ratings[i] != nil {
				latest = fmt.Sprint(*s.Ratings[i])
				break
			}
		}
		if s.Peak == nil {
			tbl.AppendRow(table.Row{playerLabel(s.Player), latest, noValue, noValue})
			continue
		}
		tbl.AppendRow(table.Row{playerLabel(s.Player), latest, s.Peak.Rating, s.Peak.Period})
	}
	return tbl.Render() + "\n"
}

func breakdownTable(b ratings.Breakdown) string {
	if b.Total() <= 0 {
		return "No games between these players.\n"
	}
	tbl := newTable()
	tbl.AppendHeader(table.Row{"", "Games", "Win", "Draw", "Lose"})
	for _, row := range []struct {
		label string
		side  ratings.SideResult
	}{
		{"As White", b.White},
		{"As Black", b.Black},
	} {
		tbl.AppendRow(table.Row{row.label, row.side.Total, row.side.Win, row.side.Draw,
			row.side.Lose})
	}
	all := b.Combined()
	tbl.AppendFooter(table.Row{"Overall", all.Total, all.Win, all.Draw, all.Lose})
	return tbl.Render() + "\n"
}

// dashboardSummary is the shell's textual stand-in for the charts.
func dashboardSummary(d compare.Dashboard) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v ratings, %v periods\n", d.Type.Label(), len(d.Axis))
	sb.WriteString(peakTable(d))
	if len(d.Pairs) == 0 {
		return sb.String()
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Pair", "Games", "Win", "Draw", "Lose", "Note"})
	for _, pv := range d.Pairs {
		pair := playerLabel(pv.A) + " vs " + playerLabel(pv.B)
		switch {
		case pv.Err != "":
			tbl.AppendRow(table.Row{pair, "", "", "", "", "unavailable"})
		case !pv.Available || !pv.HasGames():
			tbl.AppendRow(table.Row{pair, 0, "", "", "", "no games"})
		default:
			all := pv.Breakdown.Combined()
			tbl.AppendRow(table.Row{pair, all.Total, all.Win, all.Draw, all.Lose, pv.Anomaly})
		}
	}
	sb.WriteString(tbl.Render())
	sb.WriteString("\n")
	return sb.String()
}

func playerLabel(p compare.Player) string {
	if p.Name == "" || p.Name == p.ID {
		return p.ID
	}
	return p.Name
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return noValue
	}
	return s
}

func intOrDash(v *int) string {
	if v == nil {
		return noValue
	}
	return fmt.Sprint(*v)
}
