/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	monthLabelRe = regexp.MustCompile(`^(\d{4})-(\w{3})$`)
	yearLabelRe  = regexp.MustCompile(`^\d{4}$`)
)

var monthNumbers = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04", "May": "05", "Jun": "06",
	"Jul": "07", "Aug": "08", "Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// NormalizePeriod converts the provider's period labels into "YYYY-MM" so
// that string order matches chronological order:
//
//	"2025-May" -> "2025-05"
//	"2025"     -> "2025-01"
//
// An unknown month abbreviation maps to "01"; any other label is returned
// unchanged.
func NormalizePeriod(label string) string {
	if m := monthLabelRe.FindStringSubmatch(label); m != nil {
		month, ok := monthNumbers[m[2]]
		if !ok {
			month = "01"
		}
		return m[1] + "-" + month
	}
	if yearLabelRe.MatchString(label) {
		return label + "-01"
	}
	return label
}

// provider field names
const (
	fieldPeriod      = "date_2"
	fieldName        = "name"
	fieldCountry     = "country"
	fieldStdRating   = "rating"
	fieldStdGames    = "period_games"
	fieldRapidRating = "rapid_rtng"
	fieldRapidGames  = "rapid_games"
	fieldBlitzRating = "blitz_rtng"
	fieldBlitzGames  = "blitz_games"
)

// Normalize maps a raw provider record into a RatingPoint. It never fails:
// missing, null or malformed values become nil or "".
func Normalize(rec RawRecord) RatingPoint {
	return RatingPoint{
		PeriodKey: NormalizePeriod(stringField(rec, fieldPeriod)),
		Rating: ByType{
			Standard: numberField(rec, fieldStdRating),
			Rapid:    numberField(rec, fieldRapidRating),
			Blitz:    numberField(rec, fieldBlitzRating),
		},
		Games: ByType{
			Standard: numberField(rec, fieldStdGames),
			Rapid:    numberField(rec, fieldRapidGames),
			Blitz:    numberField(rec, fieldBlitzGames),
		},
		PlayerName: strings.TrimSpace(stringField(rec, fieldName)),
		Federation: strings.TrimSpace(stringField(rec, fieldCountry)),
	}
}

// NormalizeHistory normalizes every record and orders the result by period.
// Records sharing a period keep their provider order.
func NormalizeHistory(recs []RawRecord) []RatingPoint {
	points := make([]RatingPoint, 0, len(recs))
	for _, rec := range recs {
		points = append(points, Normalize(rec))
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].PeriodKey < points[j].PeriodKey
	})
	return points
}

func stringField(rec RawRecord, key string) string {
	v, ok := rec[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func numberField(rec RawRecord, key string) *int {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		return intPtr(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return intPtr(int(math.Round(f)))
}
