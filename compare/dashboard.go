/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package compare

import (
	"errors"

	"github.com/mikeb26/fidecompare/ratings"
)

// Series is one player's chart data aligned to Dashboard.Axis.
type Series struct {
	Player  Player        `json:"player"`
	Ratings []*int        `json:"ratings"`
	Games   []int         `json:"games"`
	Peak    *ratings.Peak `json:"peak,omitempty"`

	// PeakIndex is the axis position of Peak, or -1.
	PeakIndex int    `json:"peakIndex"`
	Err       string `json:"error,omitempty"`
}

// PairView is the head-to-head chart data of one pair.
type PairView struct {
	A         Player            `json:"a"`
	B         Player            `json:"b"`
	Available bool              `json:"available"`
	Breakdown ratings.Breakdown `json:"breakdown"`
	White     []ratings.Segment `json:"white,omitempty"`
	Black     []ratings.Segment `json:"black,omitempty"`
	Combined  []ratings.Segment `json:"combined,omitempty"`

	// Anomaly describes inconsistent provider totals; the breakdown is
	// left unclamped.
	Anomaly string `json:"anomaly,omitempty"`
	Err     string `json:"error,omitempty"`
}

// HasGames reports whether any segment can be drawn for the pair.
func (pv PairView) HasGames() bool {
	return len(pv.White) > 0 || len(pv.Black) > 0
}

type Dashboard struct {
	Type   ratings.RatingType `json:"-"`
	Axis   []string           `json:"axis"`
	Series []Series           `json:"series"`
	Pairs  []PairView         `json:"pairs"`
}

// BuildDashboard shapes loaded data for one rating type. Histories are
// matched to players by id; a player without a loaded history still gets an
// all-gap series.
func BuildDashboard(players []Player, histories []PlayerHistory,
	pairs []PairStats, rt ratings.RatingType) Dashboard {

	byID := make(map[string]PlayerHistory, len(histories))
	for _, h := range histories {
		byID[h.Player.ID] = h
	}

	ordered := make([][]ratings.RatingPoint, len(players))
	for i, p := range players {
		ordered[i] = byID[p.ID].History
	}
	rec := ratings.Reconcile(ordered...)
	rs := rec.Ratings(rt)
	games := rec.Games(rt)

	d := Dashboard{Type: rt, Axis: rec.Axis}
	for i, p := range players {
		s := Series{Player: p, Ratings: rs[i], Games: games[i], PeakIndex: -1}
		if err := byID[p.ID].Err; err != nil {
			s.Err = err.Error()
		}
		if peak, ok := ratings.FindPeak(ordered[i], rt); ok {
			s.Peak = &peak
			s.PeakIndex = peak.Index(rec.Axis)
		}
		d.Series = append(d.Series, s)
	}

	for _, ps := range pairs {
		d.Pairs = append(d.Pairs, buildPair(ps, rt))
	}
	return d
}

func buildPair(ps PairStats, rt ratings.RatingType) PairView {
	pv := PairView{A: ps.A, B: ps.B}
	if ps.Err != nil {
		pv.Err = ps.Err.Error()
		return pv
	}
	if ps.Stats == nil {
		return pv
	}

	b, err := ps.Stats.Record(rt).Breakdown()
	if err != nil {
		if !errors.Is(err, ratings.ErrNegativeLosses) {
			pv.Err = err.Error()
			return pv
		}
		pv.Anomaly = err.Error()
	}
	pv.Available = true
	pv.Breakdown = b
	pv.White = b.White.Segments()
	pv.Black = b.Black.Segments()
	pv.Combined = b.Combined().Segments()
	return pv
}
