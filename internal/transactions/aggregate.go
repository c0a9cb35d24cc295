package transactions

import (
	"slices"

	"github.com/shopspring/decimal"

	"paytrends/internal/calendar"
	"paytrends/internal/coerce"
)

// YearlyAggregate is the sum of all records sharing a year.
type YearlyAggregate struct {
	Year   int
	Volume decimal.Decimal
	Value  decimal.Decimal
}

// AggregateByYear sums Volume and Value per year, ascending by year. Null
// metrics count as zero, so a year whose cells are all unreadable still
// appears with a zero total rather than disappearing or becoming null.
func AggregateByYear(records []Record) []YearlyAggregate {
	sums := make(map[int]*YearlyAggregate)
	for _, r := range records {
		agg, ok := sums[r.Year]
		if !ok {
			agg = &YearlyAggregate{Year: r.Year}
			sums[r.Year] = agg
		}
		if r.Volume.Valid {
			agg.Volume = agg.Volume.Add(r.Volume.Decimal)
		}
		if r.Value.Valid {
			agg.Value = agg.Value.Add(r.Value.Decimal)
		}
	}
	out := make([]YearlyAggregate, 0, len(sums))
	for _, agg := range sums {
		out = append(out, *agg)
	}
	slices.SortFunc(out, func(a, b YearlyAggregate) int { return a.Year - b.Year })
	return out
}

// Metric selects which measure a pivot sums.
type Metric int

const (
	Volume Metric = iota
	Value
)

func (m Metric) String() string {
	if m == Value {
		return "Value"
	}
	return "Volume"
}

func (m Metric) of(r Record) decimal.NullDecimal {
	if m == Value {
		return r.Value
	}
	return r.Volume
}

// Pivot is a month-by-year table of summed metric values. Cells[i][j] is the
// total for Months[i] in Years[j]; it is null when no record contributed.
type Pivot struct {
	Metric Metric
	Months []string
	Years  []int
	Cells  [][]decimal.NullDecimal
}

// MonthlyPivot sums metric per (month, year). Rows follow order exactly:
// months missing from the data get an all-null row and months not in order
// are left out. Years ascend.
func MonthlyPivot(records []Record, metric Metric, order []string) Pivot {
	var years []int
	for _, r := range records {
		if !slices.Contains(years, r.Year) {
			years = append(years, r.Year)
		}
	}
	slices.Sort(years)

	p := Pivot{
		Metric: metric,
		Months: append([]string(nil), order...),
		Years:  years,
		Cells:  make([][]decimal.NullDecimal, len(order)),
	}
	for i := range p.Cells {
		p.Cells[i] = make([]decimal.NullDecimal, len(years))
	}
	for _, r := range records {
		mi := calendar.Index(order, r.Month)
		if mi < 0 {
			continue
		}
		yi, _ := slices.BinarySearch(years, r.Year)
		c := &p.Cells[mi][yi]
		if !c.Valid {
			*c = coerce.Valid(decimal.Zero)
		}
		if v := metric.of(r); v.Valid {
			c.Decimal = c.Decimal.Add(v.Decimal)
		}
	}
	return p
}

// Series returns the column of one year in month order, or nil when the
// year is not in the pivot.
func (p Pivot) Series(year int) []decimal.NullDecimal {
	yi, ok := slices.BinarySearch(p.Years, year)
	if !ok {
		return nil
	}
	out := make([]decimal.NullDecimal, len(p.Months))
	for i := range p.Months {
		out[i] = p.Cells[i][yi]
	}
	return out
}
