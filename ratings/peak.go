/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"slices"
)

// Peak is a player's highest published rating of one type.
type Peak struct {
	Rating int    `json:"rating"`
	Period string `json:"period"`
}

// FindPeak scans the player's own history (not a reconciled axis) for the
// maximum non-nil rating of the given type. Ties resolve to the earliest
// period. ok is false when no rating of that type was ever published.
func FindPeak(history []RatingPoint, rt RatingType) (Peak, bool) {
	var peak Peak
	found := false
	for _, pt := range history {
		v := pt.Rating.Get(rt)
		if v == nil {
			continue
		}
		if !found || *v > peak.Rating ||
			(*v == peak.Rating && pt.PeriodKey < peak.Period) {
			peak = Peak{Rating: *v, Period: pt.PeriodKey}
			found = true
		}
	}
	return peak, found
}

// Index returns the position of the peak period on axis, or -1.
func (p Peak) Index(axis []string) int {
	return slices.Index(axis, p.Period)
}
