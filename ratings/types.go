/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"fmt"
	"strings"
)

type RatingType int

const (
	Standard RatingType = iota
	Rapid
	Blitz
)

var AllTypes = []RatingType{Standard, Rapid, Blitz}

func (rt RatingType) String() string {
	switch rt {
	case Standard:
		return "standard"
	case Rapid:
		return "rapid"
	case Blitz:
		return "blitz"
	default:
		return "?"
	}
}

// Label is the human readable name used in chart titles.
func (rt RatingType) Label() string {
	switch rt {
	case Standard:
		return "Standard"
	case Rapid:
		return "Rapid"
	case Blitz:
		return "Blitz"
	default:
		return "?"
	}
}

// Suffix selects the head-to-head statistics fields for this rating type.
func (rt RatingType) Suffix() string {
	switch rt {
	case Rapid:
		return "_rpd"
	case Blitz:
		return "_blz"
	default:
		return "_std"
	}
}

// ParseRatingType accepts the short names plus the provider's field names.
func ParseRatingType(s string) (RatingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "std", "rating":
		return Standard, nil
	case "rapid", "rpd", "rapid_rtng":
		return Rapid, nil
	case "blitz", "blz", "blitz_rtng":
		return Blitz, nil
	}
	return Standard, fmt.Errorf("unknown rating type %q", s)
}

// ByType holds one optional value per rating type. A nil entry means the
// provider published nothing for that period, which is not the same as 0.
type ByType struct {
	Standard *int `json:"standard"`
	Rapid    *int `json:"rapid"`
	Blitz    *int `json:"blitz"`
}

func (b ByType) Get(rt RatingType) *int {
	switch rt {
	case Rapid:
		return b.Rapid
	case Blitz:
		return b.Blitz
	default:
		return b.Standard
	}
}

// RatingPoint is one player's rating snapshot for one reporting period.
type RatingPoint struct {
	// PeriodKey is "YYYY-MM" (or whatever unrecognized label the provider sent).
	PeriodKey  string `json:"period"`
	Rating     ByType `json:"rating"`
	Games      ByType `json:"games"`
	PlayerName string `json:"name"`
	Federation string `json:"federation"`
}

// RawRecord is one decoded element of the provider's rating history array.
type RawRecord map[string]any

func intPtr(v int) *int {
	return &v
}
