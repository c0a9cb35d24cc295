// Package inclusion normalizes the financial-inclusion indicator table: a
// fixed set of descriptive columns followed by one column per survey year.
package inclusion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"paytrends/internal/coerce"
	"paytrends/internal/table"
)

// Canonical names of the leading columns, assigned by position.
const (
	ColCountryName = "Country Name"
	ColCountryCode = "Country Code"
	ColIndicator   = "Indicator"
	ColSeriesCode  = "Series Code"

	colYear  = "Year"
	colValue = "Financial Inclusion"
)

var fixedColumns = []string{ColCountryName, ColCountryCode, ColIndicator, ColSeriesCode}

// Indicator is one wide row kept for charting: the label, its cleaned form
// and one value per configured year, in the order of those years.
type Indicator struct {
	CountryName string
	CountryCode string
	Label       string
	CleanLabel  string
	SeriesCode  string
	Values      []decimal.NullDecimal
}

// Record is one indicator observation for one year.
type Record struct {
	CountryName string
	CountryCode string
	Indicator   string
	SeriesCode  string
	Year        int
	Percentage  decimal.NullDecimal
}

// Stats counts rows dropped for missing year values and values nulled
// because they were not numeric.
type Stats struct {
	Rows          int
	DroppedRows   int
	ParseFailures int
}

// CleanLabel removes every occurrence of prefix from label and trims commas
// and blanks from both ends. A label that does not contain prefix is only
// trimmed.
func CleanLabel(label, prefix string) string {
	if prefix != "" {
		label = strings.ReplaceAll(label, prefix, "")
	}
	return strings.Trim(label, ", ")
}

// Normalize maps the table's columns by position onto the four fixed fields
// followed by years, drops every row missing any year value, coerces the
// rest and melts them into one Record per (row, year).
func Normalize(t *table.Table, years []int, prefix string) ([]Indicator, []Record, Stats, error) {
	if len(years) == 0 {
		return nil, nil, Stats{}, fmt.Errorf("inclusion: no year columns configured")
	}
	yearCols := make([]string, len(years))
	for i, y := range years {
		yearCols[i] = strconv.Itoa(y)
	}
	renamed, err := t.Rename(append(append([]string(nil), fixedColumns...), yearCols...))
	if err != nil {
		return nil, nil, Stats{}, fmt.Errorf("inclusion: %w", err)
	}

	st := Stats{Rows: len(renamed.Rows)}
	kept := &table.Table{Header: renamed.Header}
	for _, rec := range renamed.Rows {
		if missingAny(rec[len(fixedColumns):]) {
			st.DroppedRows++
			continue
		}
		kept.Rows = append(kept.Rows, rec)
	}

	indicators := make([]Indicator, 0, len(kept.Rows))
	for _, rec := range kept.Rows {
		ind := Indicator{
			CountryName: strings.TrimSpace(rec[0]),
			CountryCode: strings.TrimSpace(rec[1]),
			Label:       strings.TrimSpace(rec[2]),
			SeriesCode:  strings.TrimSpace(rec[3]),
			Values:      make([]decimal.NullDecimal, len(years)),
		}
		ind.CleanLabel = CleanLabel(ind.Label, prefix)
		for i, cell := range rec[len(fixedColumns):] {
			v, ok := coerce.Number(cell)
			if !ok {
				st.ParseFailures++
			}
			ind.Values[i] = v
		}
		indicators = append(indicators, ind)
	}

	long, err := table.Melt(kept, fixedColumns, yearCols, colYear, colValue)
	if err != nil {
		return nil, nil, st, fmt.Errorf("inclusion: %w", err)
	}
	records := make([]Record, 0, len(long))
	for _, row := range long {
		year, _ := strconv.Atoi(row[colYear])
		v, _ := coerce.Number(row[colValue])
		records = append(records, Record{
			CountryName: strings.TrimSpace(row[ColCountryName]),
			CountryCode: strings.TrimSpace(row[ColCountryCode]),
			Indicator:   strings.TrimSpace(row[ColIndicator]),
			SeriesCode:  strings.TrimSpace(row[ColSeriesCode]),
			Year:        year,
			Percentage:  v,
		})
	}
	return indicators, records, st, nil
}

func missingAny(cells []string) bool {
	for _, c := range cells {
		if coerce.IsNA(c) {
			return true
		}
	}
	return false
}
