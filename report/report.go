/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/mikeb26/fidecompare/compare"
	"github.com/mikeb26/fidecompare/ratings"
)

const (
	// CandidateMasterRating is drawn as a reference line on rating charts.
	CandidateMasterRating = 2000

	chartWidth  = "100%"
	chartHeight = "420px"
	pieSize     = "360px"
	pieRadius   = "60%"
)

var segmentColors = map[string]string{
	"Win":  "#10b981",
	"Draw": "#9ca3af",
	"Lose": "#ef4444",
}

type Options struct {
	Title    string
	ShareURL string
}

// RenderDashboard writes d as a standalone HTML page of charts.
func RenderDashboard(w io.Writer, d compare.Dashboard, options Options) error {
	if options.Title == "" {
		options.Title = "FIDE Compare"
	}

	page := components.NewPage()
	page.PageTitle = options.Title
	page.AddCharts(RatingChart(d), GamesChart(d))
	for _, pv := range d.Pairs {
		for _, pie := range PairCharts(pv) {
			page.AddCharts(pie)
		}
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("report.render: %w", err)
	}

	var header bytes.Buffer
	if err := headerTmpl.Execute(&header, headerData(d, options)); err != nil {
		return fmt.Errorf("report.render: header: %w", err)
	}

	html := buf.String()
	if i := strings.Index(html, "<body>"); i >= 0 {
		i += len("<body>")
		html = html[:i] + header.String() + html[i:]
	} else {
		html = header.String() + html
	}

	if _, err := io.WriteString(w, html); err != nil {
		return fmt.Errorf("report.render: writing: %w", err)
	}
	return nil
}

// RatingChart plots each player's rating. Periods without a rating are gaps,
// and each player's peak is enlarged and marked.
func RatingChart(d compare.Dashboard) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Player Rating Progress",
			Subtitle: d.Type.Label(),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "5px"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rating"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100},
			opts.DataZoom{Type: "inside"}),
	)
	line.SetXAxis(d.Axis)

	for i, s := range d.Series {
		data := make([]opts.LineData, len(s.Ratings))
		for j, v := range s.Ratings {
			switch {
			case v == nil:
				data[j] = opts.LineData{Value: "-"}
			case j == s.PeakIndex:
				data[j] = opts.LineData{Value: *v, Symbol: "circle", SymbolSize: 14}
			default:
				data[j] = opts.LineData{Value: *v}
			}
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Player.Color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: s.Player.Color, Width: 2}),
		}
		if s.Peak != nil && s.PeakIndex >= 0 {
			seriesOpts = append(seriesOpts, charts.WithMarkPointNameCoordItemOpts(
				opts.MarkPointNameCoordItem{
					Name:       "Peak",
					Coordinate: []interface{}{d.Axis[s.PeakIndex], s.Peak.Rating},
					Value:      strconv.Itoa(s.Peak.Rating),
				}))
		}
		if i == 0 {
			seriesOpts = append(seriesOpts, charts.WithMarkLineNameYAxisItemOpts(
				opts.MarkLineNameYAxisItem{Name: "CM", YAxis: CandidateMasterRating}))
		}
		line.AddSeries(seriesName(s.Player), data, seriesOpts...)
	}

	return line
}

// GamesChart shows games played per period; a period without a record
// counts as zero games.
func GamesChart(d compare.Dashboard) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Games Played",
			Subtitle: d.Type.Label() + " games per month",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "5px"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Games"}),
	)
	bar.SetXAxis(d.Axis)

	for _, s := range d.Series {
		data := make([]opts.BarData, len(s.Games))
		for j, n := range s.Games {
			data[j] = opts.BarData{Value: n}
		}
		bar.AddSeries(seriesName(s.Player), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Player.Color}))
	}

	return bar
}

// PairCharts returns the result pies of one pair: as white, as black and
// overall. Sides without games produce no chart.
func PairCharts(pv compare.PairView) []*charts.Pie {
	title := seriesName(pv.A) + " vs " + seriesName(pv.B)

	var pies []*charts.Pie
	for _, side := range []struct {
		name string
		segs []ratings.Segment
	}{
		{"As White", pv.White},
		{"As Black", pv.Black},
		{"Overall", pv.Combined},
	} {
		if len(side.segs) == 0 {
			continue
		}
		pies = append(pies, resultPie(title, side.name, side.segs))
	}
	return pies
}

func resultPie(title, side string, segs []ratings.Segment) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: pieSize, Height: pieSize}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: side}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	data := make([]opts.PieData, len(segs))
	for i, seg := range segs {
		data[i] = opts.PieData{
			Name:      seg.Label,
			Value:     seg.Count,
			ItemStyle: &opts.ItemStyle{Color: segmentColors[seg.Label]},
		}
	}
	pie.AddSeries(side, data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
			charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius}),
		)

	return pie
}

func seriesName(p compare.Player) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

type headerPair struct {
	Title   string
	Total   int
	Note    string
	Anomaly string
}

type headerView struct {
	Title    string
	ShareURL string
	Type     string
	Errors   []string
	Pairs    []headerPair
}

func headerData(d compare.Dashboard, options Options) headerView {
	hv := headerView{Title: options.Title, ShareURL: options.ShareURL, Type: d.Type.Label()}
	for _, s := range d.Series {
		if s.Err != "" {
			hv.Errors = append(hv.Errors, seriesName(s.Player)+": rating history unavailable")
		}
	}
	for _, pv := range d.Pairs {
		hp := headerPair{
			Title:   seriesName(pv.A) + " vs " + seriesName(pv.B),
			Total:   pv.Breakdown.Total(),
			Anomaly: pv.Anomaly,
		}
		switch {
		case pv.Err != "":
			hp.Note = "Comparison data unavailable"
		case !pv.HasGames():
			hp.Note = "No comparison data"
		}
		hv.Pairs = append(hv.Pairs, hp)
	}
	return hv
}

var headerTmpl = template.Must(template.New("header").Parse(`
<header style="font-family:sans-serif;margin:12px">
<h1>{{.Title}} <small>({{.Type}})</small></h1>
{{with .ShareURL}}<p>Share: <a href="{{.}}">{{.}}</a></p>{{end}}
{{range .Errors}}<p style="color:#ef4444">{{.}}</p>{{end}}
{{range .Pairs}}<p><b>{{.Title}}</b>: {{if .Note}}{{.Note}}{{else}}{{.Total}} games{{end}}{{with .Anomaly}} <i style="color:#f59e42">inconsistent totals: {{.}}</i>{{end}}</p>
{{end}}</header>
`))
