// Package transactions normalizes the monthly payment-product statistics:
// two-digit years are corrected, volume and value are coerced to nullable
// decimals and the records are aggregated per year or pivoted per month.
package transactions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"paytrends/internal/coerce"
	"paytrends/internal/table"
)

// Column names of the flattened statistics table.
const (
	ColProduct   = "Product"
	ColMonth     = "Month"
	ColYear      = "Year"
	ColVolume    = "Volume"
	ColValue     = "Value"
	ColBanksLive = "NoOfBankslive"
	ColMonthID   = "MonthId"
)

// YearBase is added to the two-digit year offset of every row.
const YearBase = 2000

// Raw is one row as it appears in the source table.
type Raw struct {
	Product    string
	Month      string
	YearOffset string
	Volume     string
	Value      string
	BanksLive  string
	MonthID    string
}

// Record is a normalized transaction row. Volume and Value are null when the
// source cell could not be read as a non-negative number.
type Record struct {
	Product   string
	Month     string
	Year      int
	Volume    decimal.NullDecimal
	Value     decimal.NullDecimal
	BanksLive string
	MonthID   string
}

// Stats counts the data-quality losses of a normalization pass.
type Stats struct {
	Rows          int
	ParseFailures int
}

// ReadRaw maps table columns onto Raw rows. Month, Year, Volume and Value are
// required; the descriptive columns may be absent.
func ReadRaw(t *table.Table) ([]Raw, error) {
	idx, err := t.Require(ColMonth, ColYear, ColVolume, ColValue)
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	product, banks, monthID := t.Index(ColProduct), t.Index(ColBanksLive), t.Index(ColMonthID)
	out := make([]Raw, 0, len(t.Rows))
	for _, rec := range t.Rows {
		out = append(out, Raw{
			Product:    cell(rec, product),
			Month:      strings.TrimSpace(rec[idx[ColMonth]]),
			YearOffset: rec[idx[ColYear]],
			Volume:     rec[idx[ColVolume]],
			Value:      rec[idx[ColValue]],
			BanksLive:  cell(rec, banks),
			MonthID:    cell(rec, monthID),
		})
	}
	return out, nil
}

// Normalize reads and normalizes the statistics table.
func Normalize(t *table.Table) ([]Record, Stats, error) {
	raws, err := ReadRaw(t)
	if err != nil {
		return nil, Stats{}, err
	}
	return NormalizeRaw(raws)
}

// NormalizeRaw corrects the year of every row and coerces its metrics. A year
// offset that is not an integer in [0, 99] makes the whole input malformed;
// unreadable metrics only null the field.
func NormalizeRaw(raws []Raw) ([]Record, Stats, error) {
	st := Stats{Rows: len(raws)}
	out := make([]Record, 0, len(raws))
	for i, r := range raws {
		offset, err := strconv.Atoi(strings.TrimSpace(r.YearOffset))
		if err != nil {
			return nil, st, fmt.Errorf("transactions: row %d: year %q: %w", i+2, r.YearOffset, table.ErrMalformedInput)
		}
		if offset < 0 || offset > 99 {
			return nil, st, fmt.Errorf("transactions: row %d: year offset %d outside 0-99: %w", i+2, offset, table.ErrMalformedInput)
		}
		vol, ok := metric(r.Volume)
		if !ok {
			st.ParseFailures++
		}
		val, ok := metric(r.Value)
		if !ok {
			st.ParseFailures++
		}
		out = append(out, Record{
			Product:   r.Product,
			Month:     r.Month,
			Year:      offset + YearBase,
			Volume:    vol,
			Value:     val,
			BanksLive: r.BanksLive,
			MonthID:   r.MonthID,
		})
	}
	return out, st, nil
}

func metric(s string) (decimal.NullDecimal, bool) {
	n, ok := coerce.SeparatedNumber(s)
	if !ok {
		return coerce.Null, false
	}
	if n.Valid && n.Decimal.IsNegative() {
		return coerce.Null, false
	}
	return n, true
}

func cell(rec []string, i int) string {
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
