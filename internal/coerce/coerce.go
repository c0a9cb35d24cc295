// Package coerce turns raw text cells into nullable numbers and formats them
// back the way pandas writes them.
package coerce

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// pandas read_csv default na_values.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNA reports whether s is one of the missing-value markers a CSV reader
// treats as null.
func IsNA(s string) bool {
	_, ok := naValues[strings.TrimSpace(s)]
	return ok
}

// Null is the invalid NullDecimal.
var Null = decimal.NullDecimal{}

// Valid wraps d as a present value.
func Valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// Number parses s as a plain number. Missing markers and anything that does
// not parse yield an invalid NullDecimal; ok is false only for a parse
// failure, so callers can count data-quality losses separately from blanks.
func Number(s string) (n decimal.NullDecimal, ok bool) {
	s = strings.TrimSpace(s)
	if IsNA(s) {
		return Null, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Null, false
	}
	return Valid(d), true
}

// SeparatedNumber is Number after removing thousands separators, so "1,234"
// and "1234" give the same value.
func SeparatedNumber(s string) (decimal.NullDecimal, bool) {
	return Number(strings.ReplaceAll(s, ",", ""))
}

// Float formats n as pandas does when writing a float column: empty for
// null, Python float repr otherwise.
func Float(n decimal.NullDecimal) string {
	if !n.Valid {
		return ""
	}
	return PythonFloat(n.Decimal.InexactFloat64())
}

// PythonFloat matches Python's repr(float): shortest round-trip digits,
// always a decimal point, scientific notation outside [1e-4, 1e16).
func PythonFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
