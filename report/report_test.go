/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mikeb26/fidecompare/compare"
	"github.com/mikeb26/fidecompare/ratings"
)

func rating(v int) *int {
	return &v
}

func sampleDashboard() compare.Dashboard {
	alice := compare.Player{ID: "1", Name: "Alice Example", Color: "#6366f1"}
	bob := compare.Player{ID: "2", Name: "Bob Example", Color: "#fbbf24"}
	carol := compare.Player{ID: "3", Name: "Carol Example", Color: "#ef4444"}

	histories := []compare.PlayerHistory{
		{Player: alice, History: []ratings.RatingPoint{
			{PeriodKey: "2024-01", Rating: ratings.ByType{Standard: rating(2010)},
				Games: ratings.ByType{Standard: rating(4)}},
			{PeriodKey: "2024-03", Rating: ratings.ByType{Standard: rating(2055)}},
		}},
		{Player: bob, History: []ratings.RatingPoint{
			{PeriodKey: "2024-02", Rating: ratings.ByType{Standard: rating(1890)}},
		}},
	}
	pairs := []compare.PairStats{
		{A: alice, B: bob, Stats: ratings.ComparisonStats{
			"white_total_std": "3", "white_win_num_std": "2", "white_draw_num_std": "1",
			"black_total_std": "0",
		}},
		{A: alice, B: carol},
		{A: bob, B: carol},
	}
	return compare.BuildDashboard([]compare.Player{alice, bob, carol}, histories, pairs,
		ratings.Standard)
}

func TestRenderDashboard(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDashboard(&buf, sampleDashboard(), Options{ShareURL: "http://localhost:8080/?id=1,2,3"})
	if err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"Player Rating Progress",
		"Games Played",
		"Alice Example",
		"Bob Example",
		"As White",
		"Overall",
		"id=1,2,3",
		"No comparison data",
		"FIDE Compare",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page is missing %q", want)
		}
	}
	if strings.Contains(html, "As Black") {
		t.Errorf("a side without games was charted")
	}
	if i, j := strings.Index(html, "<header"), strings.Index(html, "<body>"); i < j {
		t.Errorf("header not placed inside body")
	}
}

func TestPairChartsSkipEmpty(t *testing.T) {
	if pies := PairCharts(compare.PairView{}); len(pies) != 0 {
		t.Errorf("empty pair produced %d pies", len(pies))
	}

	d := sampleDashboard()
	if pies := PairCharts(d.Pairs[0]); len(pies) != 2 {
		t.Errorf("alice/bob produced %d pies, want white and overall", len(pies))
	}
}

func TestRatingChartGapsAndPeak(t *testing.T) {
	d := sampleDashboard()
	line := RatingChart(d)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"-"`) {
		t.Errorf("missing gap marker for absent ratings")
	}
	if !strings.Contains(out, "2055") {
		t.Errorf("peak value missing")
	}
	if !strings.Contains(out, "2000") {
		t.Errorf("CM reference line missing")
	}
}

func TestHeaderNotes(t *testing.T) {
	d := sampleDashboard()
	d.Series[1].Err = "boom"
	d.Pairs[1].Err = "timeout"
	d.Pairs[0].Anomaly = "derived loss count is negative"

	hv := headerData(d, Options{Title: "t"})
	if len(hv.Errors) != 1 || !strings.HasPrefix(hv.Errors[0], "Bob Example") {
		t.Errorf("errors=%v", hv.Errors)
	}
	if hv.Pairs[0].Total != 3 || hv.Pairs[0].Note != "" || hv.Pairs[0].Anomaly == "" {
		t.Errorf("alice/bob=%+v", hv.Pairs[0])
	}
	if hv.Pairs[1].Note != "Comparison data unavailable" {
		t.Errorf("alice/carol=%+v", hv.Pairs[1])
	}
	if hv.Pairs[2].Note != "No comparison data" {
		t.Errorf("bob/carol=%+v", hv.Pairs[2])
	}
}
