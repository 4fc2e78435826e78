/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestComparisonStatsRecord(t *testing.T) {
	var stats ComparisonStats
	err := json.Unmarshal([]byte(`{
		"white_total_std":"10","white_win_num_std":"6","white_draw_num_std":"2",
		"black_total_std":7,"black_win_num_std":1,"black_draw_num_std":3,
		"white_total_rpd":"4","white_win_num_rpd":"x"
	}`), &stats)
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}

	std := stats.Record(Standard)
	want := ComparisonRecord{WhiteTotal: 10, WhiteWins: 6, WhiteDraws: 2,
		BlackTotal: 7, BlackWins: 1, BlackDraws: 3}
	if std != want {
		t.Errorf("standard=%+v want %+v", std, want)
	}

	rpd := stats.Record(Rapid)
	if rpd != (ComparisonRecord{WhiteTotal: 4}) {
		t.Errorf("rapid=%+v", rpd)
	}
	if blz := stats.Record(Blitz); blz != (ComparisonRecord{}) {
		t.Errorf("blitz=%+v", blz)
	}
}

func TestBreakdown(t *testing.T) {
	rec := ComparisonRecord{WhiteTotal: 10, WhiteWins: 6, WhiteDraws: 2,
		BlackTotal: 4, BlackWins: 0, BlackDraws: 4}

	b, err := rec.Breakdown()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.White.Lose != 2 {
		t.Errorf("white lose=%d want 2", b.White.Lose)
	}
	if b.Black.Lose != 0 {
		t.Errorf("black lose=%d want 0", b.Black.Lose)
	}
	if b.Total() != 14 {
		t.Errorf("total=%d", b.Total())
	}

	combined := b.Combined()
	if combined != (SideResult{Total: 14, Win: 6, Draw: 6, Lose: 2}) {
		t.Errorf("combined=%+v", combined)
	}

	segs := b.Black.Segments()
	if len(segs) != 1 || segs[0] != (Segment{"Draw", 4}) {
		t.Errorf("black segments=%+v", segs)
	}
	if segs := b.White.Segments(); len(segs) != 3 {
		t.Errorf("white segments=%+v", segs)
	}
}

func TestBreakdownNoGames(t *testing.T) {
	b, err := ComparisonRecord{}.Breakdown()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Total() != 0 {
		t.Errorf("total=%d", b.Total())
	}
	if len(b.White.Segments()) != 0 || len(b.Black.Segments()) != 0 {
		t.Errorf("zero total produced segments")
	}
	if len(b.Combined().Segments()) != 0 {
		t.Errorf("combined zero total produced segments")
	}
}

func TestBreakdownNegativeLosses(t *testing.T) {
	rec := ComparisonRecord{WhiteTotal: 3, WhiteWins: 3, WhiteDraws: 1}

	b, err := rec.Breakdown()
	if !errors.Is(err, ErrNegativeLosses) {
		t.Fatalf("err=%v want ErrNegativeLosses", err)
	}
	var ie *IntegrityError
	if !errors.As(err, &ie) || ie.Side != "white" {
		t.Errorf("integrity error=%+v", ie)
	}
	if b.White.Lose != -1 {
		t.Errorf("lose=%d, negative value must not be clamped", b.White.Lose)
	}
	for _, seg := range b.White.Segments() {
		if seg.Label == "Lose" {
			t.Errorf("negative lose segment rendered")
		}
	}
}
