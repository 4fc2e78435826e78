/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"errors"
	"fmt"
)

// ComparisonStats is the provider's raw head-to-head record for a pair of
// players, covering every rating type.
type ComparisonStats map[string]any

// ComparisonRecord is the head-to-head tally for one rating type, seen from
// the first player of the pair.
type ComparisonRecord struct {
	WhiteTotal int `json:"whiteTotal"`
	WhiteWins  int `json:"whiteWins"`
	WhiteDraws int `json:"whiteDraws"`
	BlackTotal int `json:"blackTotal"`
	BlackWins  int `json:"blackWins"`
	BlackDraws int `json:"blackDraws"`
}

// Record extracts the tally for rt. Missing or non-numeric fields count as 0.
func (s ComparisonStats) Record(rt RatingType) ComparisonRecord {
	suffix := rt.Suffix()
	get := func(name string) int {
		if v := numberField(RawRecord(s), name+suffix); v != nil {
			return *v
		}
		return 0
	}
	return ComparisonRecord{
		WhiteTotal: get("white_total"),
		WhiteWins:  get("white_win_num"),
		WhiteDraws: get("white_draw_num"),
		BlackTotal: get("black_total"),
		BlackWins:  get("black_win_num"),
		BlackDraws: get("black_draw_num"),
	}
}

// ErrNegativeLosses marks provider totals smaller than wins plus draws.
var ErrNegativeLosses = errors.New("derived loss count is negative")

// IntegrityError describes an inconsistent side of a ComparisonRecord.
type IntegrityError struct {
	Side  string
	Total int
	Win   int
	Draw  int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%v: %v total=%d win=%d draw=%d", ErrNegativeLosses, e.Side,
		e.Total, e.Win, e.Draw)
}

func (e *IntegrityError) Unwrap() error {
	return ErrNegativeLosses
}

type SideResult struct {
	Total int `json:"total"`
	Win   int `json:"win"`
	Draw  int `json:"draw"`
	Lose  int `json:"lose"`
}

// Segment is one displayable slice of a result chart.
type Segment struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Segments returns the non-zero Win/Draw/Lose slices. A side without games,
// or whose counts are all zero, has no segments and should not be drawn.
func (s SideResult) Segments() []Segment {
	if s.Total <= 0 {
		return nil
	}
	var segs []Segment
	for _, seg := range []Segment{{"Win", s.Win}, {"Draw", s.Draw}, {"Lose", s.Lose}} {
		if seg.Count > 0 {
			segs = append(segs, seg)
		}
	}
	return segs
}

type Breakdown struct {
	White SideResult `json:"white"`
	Black SideResult `json:"black"`
}

// Total is the number of games between the pair, both colours together.
func (b Breakdown) Total() int {
	return b.White.Total + b.Black.Total
}

// Combined merges both colours into one result.
func (b Breakdown) Combined() SideResult {
	return SideResult{
		Total: b.White.Total + b.Black.Total,
		Win:   b.White.Win + b.Black.Win,
		Draw:  b.White.Draw + b.Black.Draw,
		Lose:  b.White.Lose + b.Black.Lose,
	}
}

// Breakdown derives losses per colour as total - win - draw. Inconsistent
// provider data is not clamped: the breakdown still carries the negative
// value and the returned error (an *IntegrityError, or two joined) says so.
func (c ComparisonRecord) Breakdown() (Breakdown, error) {
	b := Breakdown{
		White: SideResult{Total: c.WhiteTotal, Win: c.WhiteWins, Draw: c.WhiteDraws,
			Lose: c.WhiteTotal - c.WhiteWins - c.WhiteDraws},
		Black: SideResult{Total: c.BlackTotal, Win: c.BlackWins, Draw: c.BlackDraws,
			Lose: c.BlackTotal - c.BlackWins - c.BlackDraws},
	}

	var errs []error
	if b.White.Lose < 0 {
		errs = append(errs, &IntegrityError{Side: "white", Total: c.WhiteTotal,
			Win: c.WhiteWins, Draw: c.WhiteDraws})
	}
	if b.Black.Lose < 0 {
		errs = append(errs, &IntegrityError{Side: "black", Total: c.BlackTotal,
			Win: c.BlackWins, Draw: c.BlackDraws})
	}
	return b, errors.Join(errs...)
}
