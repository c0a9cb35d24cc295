// Package gdp reshapes the World Bank style wide GDP table (one column per
// year) into one record per country and year.
package gdp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"paytrends/internal/coerce"
	"paytrends/internal/table"
)

const (
	ColCountryName = "Country Name"
	ColCountryCode = "Country Code"

	colYear  = "Year"
	colValue = "GDP"
)

var reDigits = regexp.MustCompile(`[0-9]+`)

// Record is one country's GDP for one year. GDP is null for cells such as
// the World Bank ".." placeholder.
type Record struct {
	CountryName string
	CountryCode string
	Year        int
	GDP         decimal.NullDecimal
}

// Stats counts cells dropped for lacking a year and values nulled for not
// being numeric.
type Stats struct {
	Cells         int
	DroppedCells  int
	ParseFailures int
}

// ExtractYear returns the first run of digits in a column label: "2019" and
// "2019 [YR2019]" both give 2019. ok is false when the label has no digits.
func ExtractYear(label string) (int, bool) {
	m := reDigits.FindString(label)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}

// Normalize melts every non-country column into long form for all countries
// in the table. Cells whose column label carries no year are discarded.
func Normalize(t *table.Table) ([]Record, Stats, error) {
	long, err := table.Melt(t, []string{ColCountryName, ColCountryCode}, nil, colYear, colValue)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("gdp: %w", err)
	}
	st := Stats{Cells: len(long)}
	out := make([]Record, 0, len(long))
	for _, row := range long {
		year, ok := ExtractYear(row[colYear])
		if !ok {
			st.DroppedCells++
			continue
		}
		v, ok := coerce.Number(row[colValue])
		if !ok {
			st.ParseFailures++
		}
		out = append(out, Record{
			CountryName: strings.TrimSpace(row[ColCountryName]),
			CountryCode: strings.TrimSpace(row[ColCountryCode]),
			Year:        year,
			GDP:         v,
		})
	}
	return out, st, nil
}

// FilterCountry keeps the records whose country name or code equals country.
func FilterCountry(records []Record, country string) []Record {
	var out []Record
	for _, r := range records {
		if r.CountryName == country || r.CountryCode == country {
			out = append(out, r)
		}
	}
	return out
}
