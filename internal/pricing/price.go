// Package pricing turns scraped price strings into whole peso amounts.
package pricing

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Func normalizes a raw price string. Implementations never fail:
// malformed or empty input yields 0.
type Func func(raw string) int64

// Normalize keeps only the digits of raw and parses them.
// "$ 12.345" -> 12345, "" -> 0. Amounts too large for int64 saturate.
func Normalize(raw string) int64 {
	var sb strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(sb.String(), 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64
	}
	if err != nil {
		return 0
	}
	return n
}

// NormalizeBeforeComma drops everything from the first comma on before
// normalizing, so "45,670 aprox" -> 45.
func NormalizeBeforeComma(raw string) int64 {
	head, _, _ := strings.Cut(raw, ",")
	return Normalize(head)
}

// ForSite returns the normalizer variant a site needs.
func ForSite(siteID string) Func {
	if siteID == "cafam_co" {
		return NormalizeBeforeComma
	}
	return Normalize
}

// DigitCount counts ASCII digits in s.
func DigitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
