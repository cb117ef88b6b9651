// Package core provides the household ledger domain model.
//
// This file contains the lenient amount type. User input and persisted
// amounts that are not numeric coerce to 0 instead of failing.
package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary value. Decoding never fails: numbers and numeric
// strings are taken at face value, anything else becomes 0.
type Amount float64

// Float returns the amount as float64, mapping NaN and infinities to 0.
func (a Amount) Float() float64 {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Float())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		*a = Amount(ParseAmount(s))
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

// ParseAmount converts free-form input to a number.
//
// A decimal comma is accepted when no dot is present ("12,5" -> 12.5).
// Trailing garbage is ignored the way a leading-number parse would
// ("120 NIS" -> 120). Input without a leading number yields 0.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34
//	ParseAmount("12,34") -> 12.34
//	ParseAmount("abc")   -> 0
//	ParseAmount("")      -> 0
func ParseAmount(s string) float64 {
	f, ok := parseLeadingNumber(s)
	if !ok {
		return 0
	}
	return f
}

// ParseOptionalAmount is ParseAmount for fields where "not set" matters.
// Blank or non-numeric input returns nil.
func ParseOptionalAmount(s string) *float64 {
	f, ok := parseLeadingNumber(s)
	if !ok {
		return nil
	}
	return &f
}

func parseLeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return finite(f)
	}
	// Longest numeric prefix: optional sign, digits, optional fraction.
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Round2 rounds to cents for display purposes.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// FormatAmount renders a whole-shekel display string such as "₪1,234".
// Amounts are rounded; calculations never use the formatted value.
func FormatAmount(f float64) string {
	n := int64(math.Round(f))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-₪" + b.String()
	}
	return "₪" + b.String()
}
