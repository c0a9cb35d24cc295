package merge

import (
	"database/sql"
	"slices"

	"github.com/shopspring/decimal"

	"paytrends/internal/coerce"
	"paytrends/internal/gdp"
	"paytrends/internal/inclusion"
	"paytrends/internal/transactions"
)

// Columns is the summary table header, in output order.
var Columns = []string{"year", "totalVolume", "totalValue", "gdp", "percentage", "seriesCode"}

// SummaryRecord is one row of the merged summary table. Every field except
// Year is null when its source had no row for the year.
type SummaryRecord struct {
	Year        int
	TotalVolume decimal.NullDecimal
	TotalValue  decimal.NullDecimal
	GDP         decimal.NullDecimal
	Percentage  decimal.NullDecimal
	SeriesCode  sql.NullString
}

// Joined is one output of the two joins before projection.
type Joined struct {
	Year      int
	Aggregate *transactions.YearlyAggregate
	GDP       *gdp.Record
	Inclusion *inclusion.Record
}

type economic struct {
	year int
	agg  *transactions.YearlyAggregate
	gdp  *gdp.Record
}

// Join outer-joins the yearly aggregates with GDP, then the result with the
// inclusion records, all on year. Rows come out ascending by year.
func Join(aggs []transactions.YearlyAggregate, gdps []gdp.Record, incl []inclusion.Record) []Joined {
	first := OuterJoin(
		NewIndex(aggs, func(a transactions.YearlyAggregate) int { return a.Year }),
		NewIndex(gdps, func(g gdp.Record) int { return g.Year }),
		func(y int, a *transactions.YearlyAggregate, g *gdp.Record) economic {
			return economic{year: y, agg: a, gdp: g}
		},
	)
	second := OuterJoin(
		first,
		NewIndex(incl, func(r inclusion.Record) int { return r.Year }),
		func(y int, e *economic, r *inclusion.Record) Joined {
			j := Joined{Year: y, Inclusion: r}
			if e != nil {
				j.Aggregate, j.GDP = e.agg, e.gdp
			}
			return j
		},
	)
	return second.Values()
}

// Project keeps the summary fields of a joined row. Country name and code
// of the joined sources are dropped here.
func Project(j Joined) SummaryRecord {
	s := SummaryRecord{Year: j.Year}
	if j.Aggregate != nil {
		s.TotalVolume = coerce.Valid(j.Aggregate.Volume)
		s.TotalValue = coerce.Valid(j.Aggregate.Value)
	}
	if j.GDP != nil {
		s.GDP = j.GDP.GDP
	}
	if j.Inclusion != nil {
		s.Percentage = j.Inclusion.Percentage
		s.SeriesCode = sql.NullString{String: j.Inclusion.SeriesCode, Valid: true}
	}
	return s
}

// Summarize joins the three sources and projects every joined row.
func Summarize(aggs []transactions.YearlyAggregate, gdps []gdp.Record, incl []inclusion.Record) []SummaryRecord {
	joined := Join(aggs, gdps, incl)
	out := make([]SummaryRecord, len(joined))
	for i, j := range joined {
		out[i] = Project(j)
	}
	return out
}

// FilterYears keeps rows with from <= Year <= to.
func FilterYears(rows []SummaryRecord, from, to int) []SummaryRecord {
	out := make([]SummaryRecord, 0, len(rows))
	for _, r := range rows {
		if r.Year >= from && r.Year <= to {
			out = append(out, r)
		}
	}
	return out
}

// SortDescending orders rows by year, newest first. Rows sharing a year
// keep their relative order.
func SortDescending(rows []SummaryRecord) {
	slices.SortStableFunc(rows, func(a, b SummaryRecord) int { return b.Year - a.Year })
}
