/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"sort"
)

// Reconciled aligns several players' histories onto one shared period axis.
type Reconciled struct {
	// Axis is the sorted, de-duplicated union of every history's periods.
	Axis []string

	// byPeriod[i] maps a period to player i's point.
	byPeriod []map[string]RatingPoint
}

// Reconcile builds the shared axis for the given histories, in player order.
// A player with several points for one period is represented by the first.
func Reconcile(histories ...[]RatingPoint) *Reconciled {
	r := &Reconciled{byPeriod: make([]map[string]RatingPoint, len(histories))}
	seen := make(map[string]struct{})

	for i, history := range histories {
		idx := make(map[string]RatingPoint, len(history))
		for _, pt := range history {
			if _, dup := idx[pt.PeriodKey]; !dup {
				idx[pt.PeriodKey] = pt
			}
			if _, ok := seen[pt.PeriodKey]; !ok {
				seen[pt.PeriodKey] = struct{}{}
				r.Axis = append(r.Axis, pt.PeriodKey)
			}
		}
		r.byPeriod[i] = idx
	}
	sort.Strings(r.Axis)

	return r
}

// Players returns the number of aligned histories.
func (r *Reconciled) Players() int {
	return len(r.byPeriod)
}

// Point returns player i's point at the given period, if any.
func (r *Reconciled) Point(i int, period string) (RatingPoint, bool) {
	if i < 0 || i >= len(r.byPeriod) {
		return RatingPoint{}, false
	}
	pt, ok := r.byPeriod[i][period]
	return pt, ok
}

// Ratings returns, per player, the rating of the given type at each axis
// point. Periods the player has no record for, or no published rating, are
// nil. Nothing is interpolated or carried forward.
func (r *Reconciled) Ratings(rt RatingType) [][]*int {
	out := make([][]*int, len(r.byPeriod))
	for i := range r.byPeriod {
		series := make([]*int, len(r.Axis))
		for j, period := range r.Axis {
			if pt, ok := r.byPeriod[i][period]; ok {
				series[j] = pt.Rating.Get(rt)
			}
		}
		out[i] = series
	}
	return out
}

// Games returns, per player, the number of games of the given type played in
// each axis period. Unlike ratings, an absent count is 0.
func (r *Reconciled) Games(rt RatingType) [][]int {
	out := make([][]int, len(r.byPeriod))
	for i := range r.byPeriod {
		series := make([]int, len(r.Axis))
		for j, period := range r.Axis {
			if pt, ok := r.byPeriod[i][period]; ok {
				if g := pt.Games.Get(rt); g != nil {
					series[j] = *g
				}
			}
		}
		out[i] = series
	}
	return out
}
