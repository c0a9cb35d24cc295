package inclusion

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paytrends/internal/table"
)

const prefix = "Used a mobile phone or the internet to buy something online"

const wideCSV = `Country,Code,Series,SCode,2017 [YR2017],2021 [YR2021]
India,IND,"Used a mobile phone or the internet to buy something online, female (% age 15+)",fin1.f,2.9,9.8
India,IND,"Used a mobile phone or the internet to buy something online, male (% age 15+)",fin1.m,,12.1
India,IND,"Used a mobile phone or the internet to buy something online (% age 15+)",fin1,4.0,..
India,IND,Account (% age 15+),acc,79.9,77.5
`

func TestCleanLabel(t *testing.T) {
	assert.Equal(t, "extra", CleanLabel("ABC, extra", "ABC"))
	assert.Equal(t, "XYZ, extra", CleanLabel("XYZ, extra", "ABC"))
	assert.Equal(t, "XYZ, extra", CleanLabel(" XYZ, extra, ", "ABC"))
	assert.Equal(t, "", CleanLabel("ABC", "ABC"))
	assert.Equal(t, "a, b", CleanLabel("a, b", ""))
	assert.Equal(t, "female (% age 15+)", CleanLabel(prefix+", female (% age 15+)", prefix))
}

func TestNormalize_DropsRowsMissingAYear(t *testing.T) {
	tbl, err := table.Read(strings.NewReader(wideCSV))
	require.NoError(t, err)

	indicators, records, st, err := Normalize(tbl, []int{2017, 2021}, prefix)
	require.NoError(t, err)

	assert.Equal(t, 4, st.Rows)
	assert.Equal(t, 1, st.DroppedRows)
	assert.Equal(t, 1, st.ParseFailures, "the '..' cell is not a missing marker, it is coerced to null")

	require.Len(t, indicators, 3)
	for _, ind := range indicators {
		assert.NotEqual(t, "fin1.m", ind.SeriesCode)
	}
	assert.Equal(t, "female (% age 15+)", indicators[0].CleanLabel)
	assert.Equal(t, "(% age 15+)", indicators[1].CleanLabel)
	assert.Equal(t, "Account (% age 15+)", indicators[2].CleanLabel)
	assert.True(t, indicators[0].Values[0].Decimal.Equal(decimal.RequireFromString("2.9")))
	assert.False(t, indicators[1].Values[1].Valid)

	require.Len(t, records, 6)
	for _, r := range records {
		assert.NotEqual(t, "fin1.m", r.SeriesCode)
	}
	assert.Equal(t, Record{
		CountryName: "India", CountryCode: "IND",
		Indicator:  prefix + ", female (% age 15+)",
		SeriesCode: "fin1.f", Year: 2017,
		Percentage: decimal.NullDecimal{Decimal: decimal.RequireFromString("2.9"), Valid: true},
	}, records[0])
	assert.Equal(t, 2017, records[2].Year)
	assert.Equal(t, "acc", records[2].SeriesCode)
	assert.Equal(t, 2021, records[3].Year)
	assert.Equal(t, "fin1.f", records[3].SeriesCode)
	assert.False(t, records[4].Percentage.Valid)
}

func TestNormalize_ConfigurableYears(t *testing.T) {
	content := "a,b,c,d,x,y,z\nIndia,IND,L,s1,1,2,3\n"
	tbl, err := table.Read(strings.NewReader(content))
	require.NoError(t, err)

	_, records, _, err := Normalize(tbl, []int{2011, 2014, 2017}, "")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []int{2011, 2014, 2017}, []int{records[0].Year, records[1].Year, records[2].Year})
}

func TestNormalize_ColumnCountMismatch(t *testing.T) {
	tbl, err := table.Read(strings.NewReader("a,b,c,d,x\nIndia,IND,L,s1,1\n"))
	require.NoError(t, err)

	_, _, _, err = Normalize(tbl, []int{2017, 2021}, prefix)
	require.Error(t, err)
	assert.True(t, errors.Is(err, table.ErrMalformedInput))

	_, _, _, err = Normalize(tbl, nil, prefix)
	assert.Error(t, err)
}
