// Package report builds the exploratory profile of the transaction
// statistics as a markdown document.
package report

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"paytrends/internal/coerce"
	"paytrends/internal/transactions"
)

// Summary describes one numeric column. Nulls are excluded.
type Summary struct {
	Count  int
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Mean   float64
	Max    float64
}

// Summarize computes a Summary of xs. The zero Summary is returned for an
// empty input.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	s := slices.Clone(xs)
	slices.Sort(s)
	sum := 0.0
	for _, x := range s {
		sum += x
	}
	return Summary{
		Count:  len(s),
		Min:    s[0],
		Q1:     Quantile(s, 0.25),
		Median: Quantile(s, 0.5),
		Q3:     Quantile(s, 0.75),
		Mean:   sum / float64(len(s)),
		Max:    s[len(s)-1],
	}
}

// Quantile returns the q-th quantile of sorted by linear interpolation
// between the two nearest ranks, position (n-1)*q.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := float64(n-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Fences returns the 1.5*IQR outlier bounds of s.
func (s Summary) Fences() (lower, upper float64) {
	iqr := s.Q3 - s.Q1
	return s.Q1 - 1.5*iqr, s.Q3 + 1.5*iqr
}

type numericColumn struct {
	name string
	get  func(transactions.Record) (float64, bool)
}

var numericColumns = []numericColumn{
	{transactions.ColVolume, func(r transactions.Record) (float64, bool) {
		return r.Volume.Decimal.InexactFloat64(), r.Volume.Valid
	}},
	{transactions.ColValue, func(r transactions.Record) (float64, bool) {
		return r.Value.Decimal.InexactFloat64(), r.Value.Valid
	}},
	{transactions.ColMonthID, func(r transactions.Record) (float64, bool) {
		n, ok := coerce.Number(r.MonthID)
		if !ok || !n.Valid {
			return 0, false
		}
		return n.Decimal.InexactFloat64(), true
	}},
	{transactions.ColYear, func(r transactions.Record) (float64, bool) {
		return float64(r.Year), true
	}},
}

var categoricalColumns = []struct {
	name string
	get  func(transactions.Record) string
}{
	{transactions.ColProduct, func(r transactions.Record) string { return r.Product }},
	{transactions.ColMonth, func(r transactions.Record) string { return r.Month }},
	{transactions.ColBanksLive, func(r transactions.Record) string { return r.BanksLive }},
}

// Values gathers the non-null values of a numeric column by name.
func Values(records []transactions.Record, column string) []float64 {
	for _, c := range numericColumns {
		if c.name == column {
			return gather(records, c)
		}
	}
	return nil
}

func gather(records []transactions.Record, c numericColumn) []float64 {
	var out []float64
	for _, r := range records {
		if v, ok := c.get(r); ok {
			out = append(out, v)
		}
	}
	return out
}

// Profile renders value counts, missingness, numeric summaries and IQR
// outliers of records.
func Profile(records []transactions.Record, st transactions.Stats) string {
	lines := []string{
		"# Transaction statistics profile",
		"",
		"## Dataset shape",
		fmt.Sprintf("- Rows: %s", fmtInt(len(records))),
		fmt.Sprintf("- Unreadable metric cells set to null: %s", fmtInt(st.ParseFailures)),
		"",
		"## Missing values",
	}
	for _, c := range categoricalColumns {
		n := 0
		for _, r := range records {
			if coerce.IsNA(c.get(r)) {
				n++
			}
		}
		lines = append(lines, missingLine(c.name, n, len(records)))
	}
	for _, c := range numericColumns {
		lines = append(lines, missingLine(c.name, len(records)-len(gather(records, c)), len(records)))
	}
	lines = append(lines, "")

	lines = append(lines, "## Numeric summaries")
	for _, c := range numericColumns {
		s := Summarize(gather(records, c))
		if s.Count == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("- `%s`: count=%s, min=%s, median=%s, mean=%s, max=%s",
			c.name, fmtInt(s.Count), fmt4g(s.Min), fmt4g(s.Median), fmt4g(s.Mean), fmt4g(s.Max)))
	}
	lines = append(lines, "")

	lines = append(lines, "## Value counts (top 20)")
	for _, c := range categoricalColumns {
		counts := map[string]int{}
		for _, r := range records {
			k := "<NA>"
			if v := c.get(r); !coerce.IsNA(v) {
				k = v
			}
			counts[k]++
		}
		type kv struct {
			k string
			v int
		}
		var items []kv
		for k, v := range counts {
			items = append(items, kv{k, v})
		}
		if len(items) == 0 {
			continue
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].v == items[j].v {
				return items[i].k < items[j].k
			}
			return items[i].v > items[j].v
		})
		lines = append(lines, fmt.Sprintf("### `%s`", c.name))
		for i := 0; i < len(items) && i < 20; i++ {
			lines = append(lines, fmt.Sprintf("- %s: %s", items[i].k, fmtInt(items[i].v)))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "## Outliers (1.5 IQR)")
	for _, c := range numericColumns {
		s := Summarize(gather(records, c))
		if s.Count == 0 {
			continue
		}
		lower, upper := s.Fences()
		var hits []transactions.Record
		for _, r := range records {
			if v, ok := c.get(r); ok && (v < lower || v > upper) {
				hits = append(hits, r)
			}
		}
		lines = append(lines, fmt.Sprintf("### `%s`: %s outside [%s, %s]", c.name, fmtInt(len(hits)), fmt4g(lower), fmt4g(upper)))
		for i := 0; i < len(hits) && i < 10; i++ {
			v, _ := c.get(hits[i])
			lines = append(lines, fmt.Sprintf("- %s %s %d: %s", hits[i].Product, hits[i].Month, hits[i].Year, fmt4g(v)))
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func missingLine(col string, n, total int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(n) * 100 / float64(total)
	}
	return fmt.Sprintf("- `%s`: %s null (%.1f%%)", col, fmtInt(n), pct)
}

func fmtInt(v int) string {
	s := strconv.Itoa(v)
	if v < 0 {
		return "-" + fmtInt(-v)
	}
	n := len(s)
	if n <= 3 {
		return s
	}
	var parts []string
	for n > 3 {
		parts = append([]string{s[n-3:]}, parts...)
		s = s[:n-3]
		n = len(s)
	}
	if s != "" {
		parts = append([]string{s}, parts...)
	}
	return strings.Join(parts, ",")
}

func fmt4g(v float64) string { return strconv.FormatFloat(v, 'g', 4, 64) }
