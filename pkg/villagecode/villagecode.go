// Package villagecode canonicalizes Kemendagri administrative codes.
//
// Sources spell the same hierarchical code differently ("11.01.01.2001",
// "11-01-01-2001", "1101012001"). Every join in the system happens on the
// digits-only form returned by Normalize.
package villagecode

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Level is the administrative depth implied by a code's digit count.
type Level int

// Levels of the Kemendagri hierarchy.
const (
	LevelUnknown Level = iota
	LevelProvince
	LevelRegency
	LevelDistrict
	LevelVillage
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelProvince:
		return "province"
	case LevelRegency:
		return "regency"
	case LevelDistrict:
		return "district"
	case LevelVillage:
		return "village"
	default:
		return "unknown"
	}
}

// Normalize strips every non-digit rune from s.
// "11.01.01.2001" becomes "1101012001"; an empty input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeAny normalizes a decoded JSON value. nil and values of
// unsupported types yield "". Integral numbers are formatted without a
// fractional part first, so 1101012001 and "1101012001" agree.
func NormalizeAny(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return Normalize(t)
	case json.Number:
		return Normalize(t.String())
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) || t < 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', 0, 64)
	case int:
		if t < 0 {
			return ""
		}
		return strconv.Itoa(t)
	case int64:
		if t < 0 {
			return ""
		}
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// IsValid reports whether code is a non-empty digit string.
func IsValid(code string) bool {
	return code != "" && Normalize(code) == code
}

// LevelOf classifies a normalized code by its length.
func LevelOf(code string) Level {
	if !IsValid(code) {
		return LevelUnknown
	}
	switch len(code) {
	case 2:
		return LevelProvince
	case 4:
		return LevelRegency
	case 6:
		return LevelDistrict
	case 10:
		return LevelVillage
	default:
		return LevelUnknown
	}
}
