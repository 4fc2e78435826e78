/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"testing"
)

func TestFindPeakTieBreak(t *testing.T) {
	history := []RatingPoint{
		point("2024-01", intPtr(2100), nil),
		point("2024-02", intPtr(2050), nil),
		point("2024-03", nil, nil),
		point("2024-05", intPtr(2100), nil),
	}

	peak, ok := FindPeak(history, Standard)
	if !ok {
		t.Fatalf("no peak found")
	}
	if peak.Rating != 2100 || peak.Period != "2024-01" {
		t.Errorf("peak=%+v want 2100@2024-01", peak)
	}

	axis := []string{"2023-12", "2024-01", "2024-02"}
	if idx := peak.Index(axis); idx != 1 {
		t.Errorf("index=%d want 1", idx)
	}
	if idx := (Peak{Period: "1999-01"}).Index(axis); idx != -1 {
		t.Errorf("missing period index=%d", idx)
	}
}

func TestFindPeakUnsorted(t *testing.T) {
	history := []RatingPoint{
		point("2024-05", intPtr(2100), nil),
		point("2024-01", intPtr(2100), nil),
	}
	peak, _ := FindPeak(history, Standard)
	if peak.Period != "2024-01" {
		t.Errorf("peak period=%v want earliest", peak.Period)
	}
}

func TestFindPeakNone(t *testing.T) {
	history := []RatingPoint{point("2024-01", intPtr(1800), nil)}
	if _, ok := FindPeak(history, Blitz); ok {
		t.Errorf("blitz peak found without any blitz rating")
	}
	if _, ok := FindPeak(nil, Standard); ok {
		t.Errorf("peak found in empty history")
	}
}
