package report

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paytrends/internal/coerce"
	"paytrends/internal/transactions"
)

func TestQuantile_Linear(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, Quantile(xs, 0.25), 1e-12)
	assert.InDelta(t, 2.5, Quantile(xs, 0.5), 1e-12)
	assert.InDelta(t, 3.25, Quantile(xs, 0.75), 1e-12)
	assert.Equal(t, 1.0, Quantile(xs, 0))
	assert.Equal(t, 4.0, Quantile(xs, 1))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{10, 1, 3, 2})
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 10.0, s.Max)
	assert.InDelta(t, 4.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.5, s.Median, 1e-12)

	lower, upper := Summarize([]float64{1, 2, 3, 4}).Fences()
	assert.InDelta(t, -0.5, lower, 1e-12)
	assert.InDelta(t, 5.5, upper, 1e-12)

	assert.Zero(t, Summarize(nil).Count)
}

func rec(product, month string, year int, volume string) transactions.Record {
	r := transactions.Record{Product: product, Month: month, Year: year, MonthID: "1", BanksLive: "200"}
	if volume != "" {
		r.Volume = coerce.Valid(decimal.RequireFromString(volume))
	}
	return r
}

func TestProfile(t *testing.T) {
	records := []transactions.Record{
		rec("UPI", "Jan", 2021, "10"),
		rec("UPI", "Feb", 2021, "11"),
		rec("UPI", "Mar", 2021, "12"),
		rec("IMPS", "Jan", 2021, "13"),
		rec("IMPS", "Feb", 2021, "500"),
		rec("IMPS", "Mar", 2021, ""),
	}
	out := Profile(records, transactions.Stats{Rows: 6, ParseFailures: 1})

	assert.True(t, strings.HasPrefix(out, "# Transaction statistics profile\n"))
	assert.Contains(t, out, "- Rows: 6")
	assert.Contains(t, out, "- `Volume`: 1 null (16.7%)")
	assert.Contains(t, out, "- `Value`: 6 null (100.0%)")
	assert.Contains(t, out, "### `Product`\n- IMPS: 3\n- UPI: 3")
	assert.Contains(t, out, "- `Volume`: count=5, min=10, median=12, mean=109.2, max=500")
	assert.Contains(t, out, "### `Volume`: 1 outside")
	assert.Contains(t, out, "- IMPS Feb 2021: 500")
	assert.NotContains(t, out, "### `Value`:")
}

func TestValues(t *testing.T) {
	records := []transactions.Record{rec("UPI", "Jan", 2021, "1"), rec("UPI", "Feb", 2021, "")}
	assert.Equal(t, []float64{1}, Values(records, transactions.ColVolume))
	assert.Equal(t, []float64{2021, 2021}, Values(records, transactions.ColYear))
	assert.Nil(t, Values(records, "nope"))
}

func TestFmtInt(t *testing.T) {
	require.Equal(t, "1,234,567", fmtInt(1234567))
	require.Equal(t, "999", fmtInt(999))
	require.Equal(t, "-1,000", fmtInt(-1000))
}
