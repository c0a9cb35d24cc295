package merge

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paytrends/internal/coerce"
	"paytrends/internal/gdp"
	"paytrends/internal/inclusion"
	"paytrends/internal/transactions"
)

func dec(s string) decimal.NullDecimal { return coerce.Valid(decimal.RequireFromString(s)) }

func TestOuterJoin_OneToManyAndMissingSides(t *testing.T) {
	type pair struct {
		k    string
		l, r string
	}
	left := NewIndex([]string{"a1", "b1", "b2"}, func(s string) string { return s[:1] })
	right := NewIndex([]string{"bX", "bY", "cX"}, func(s string) string { return s[:1] })

	joined := OuterJoin(left, right, func(k string, l, r *string) pair {
		p := pair{k: k}
		if l != nil {
			p.l = *l
		}
		if r != nil {
			p.r = *r
		}
		return p
	})

	assert.Equal(t, []string{"a", "b", "c"}, joined.Keys())
	assert.Equal(t, 6, joined.Len())
	assert.Equal(t, []pair{
		{"a", "a1", ""},
		{"b", "b1", "bX"}, {"b", "b1", "bY"},
		{"b", "b2", "bX"}, {"b", "b2", "bY"},
		{"c", "", "cX"},
	}, joined.Values())
}

func TestIndex_Grouped(t *testing.T) {
	ix := NewIndex([]int{3, 1, 3, 2}, func(v int) int { return v })
	g := Grouped(ix)
	assert.Equal(t, []int{1, 2, 3}, g.Keys())
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, [][]int{{3, 3}}, g.Get(3))
}

func TestSummarize_TrueOuterJoin(t *testing.T) {
	aggs := []transactions.YearlyAggregate{
		{Year: 2019, Volume: decimal.RequireFromString("10"), Value: decimal.RequireFromString("20")},
	}
	gdps := []gdp.Record{
		{CountryName: "India", CountryCode: "IND", Year: 2018, GDP: dec("2.7e12")},
		{CountryName: "India", CountryCode: "IND", Year: 2019, GDP: dec("2.8e12")},
	}
	incl := []inclusion.Record{
		{SeriesCode: "fin1.f", Year: 2021, Percentage: dec("9.8")},
	}

	rows := Summarize(aggs, gdps, incl)
	require.Len(t, rows, 3)

	// GDP-only year survives with null metrics.
	assert.Equal(t, 2018, rows[0].Year)
	assert.False(t, rows[0].TotalVolume.Valid)
	assert.False(t, rows[0].TotalValue.Valid)
	assert.True(t, rows[0].GDP.Valid)
	assert.False(t, rows[0].SeriesCode.Valid)

	assert.Equal(t, 2019, rows[1].Year)
	assert.True(t, rows[1].TotalVolume.Decimal.Equal(decimal.RequireFromString("10")))
	assert.True(t, rows[1].GDP.Decimal.Equal(decimal.RequireFromString("2.8e12")))

	assert.Equal(t, SummaryRecord{
		Year:       2021,
		Percentage: dec("9.8"),
		SeriesCode: sql.NullString{String: "fin1.f", Valid: true},
	}, rows[2])
}

func TestSummarize_ManyIndicatorsPerYear(t *testing.T) {
	aggs := []transactions.YearlyAggregate{{Year: 2021, Volume: decimal.NewFromInt(1), Value: decimal.NewFromInt(2)}}
	incl := []inclusion.Record{
		{SeriesCode: "a", Year: 2021, Percentage: dec("1")},
		{SeriesCode: "b", Year: 2021, Percentage: dec("2")},
	}
	rows := Summarize(aggs, nil, incl)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].SeriesCode.String)
	assert.Equal(t, "b", rows[1].SeriesCode.String)
	for _, r := range rows {
		assert.True(t, r.TotalVolume.Valid)
		assert.False(t, r.GDP.Valid)
	}
}

func TestFilterYears_Inclusive(t *testing.T) {
	var rows []SummaryRecord
	for y := 2016; y <= 2023; y++ {
		rows = append(rows, SummaryRecord{Year: y})
	}
	got := FilterYears(rows, 2017, 2022)
	require.Len(t, got, 6)
	assert.Equal(t, 2017, got[0].Year)
	assert.Equal(t, 2022, got[len(got)-1].Year)
}

func TestSortDescending_Stable(t *testing.T) {
	rows := []SummaryRecord{
		{Year: 2017},
		{Year: 2020, SeriesCode: sql.NullString{String: "first", Valid: true}},
		{Year: 2019},
		{Year: 2020, SeriesCode: sql.NullString{String: "second", Valid: true}},
	}
	SortDescending(rows)

	years := make([]int, len(rows))
	for i, r := range rows {
		years[i] = r.Year
	}
	assert.Equal(t, []int{2020, 2020, 2019, 2017}, years)
	assert.Equal(t, "first", rows[0].SeriesCode.String)
	assert.Equal(t, "second", rows[1].SeriesCode.String)
}
