package gdp

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paytrends/internal/table"
)

func TestExtractYear(t *testing.T) {
	y, ok := ExtractYear("2019")
	assert.True(t, ok)
	assert.Equal(t, 2019, y)

	y, ok = ExtractYear("2019 [YR2019]")
	assert.True(t, ok)
	assert.Equal(t, 2019, y)

	_, ok = ExtractYear("Country Name")
	assert.False(t, ok)

	_, ok = ExtractYear("Series Code")
	assert.False(t, ok)
}

const wideCSV = `Series Name,Series Code,Country Name,Country Code,2016 [YR2016],2017 [YR2017],2018
GDP (current US$),NY.GDP.MKTP.CD,India,IND,2294797980509.12,2651472946375.15,..
GDP (current US$),NY.GDP.MKTP.CD,Nepal,NPL,21316000000,24880000000,
`

func TestNormalize_AllCountriesLongForm(t *testing.T) {
	tbl, err := table.Read(strings.NewReader(wideCSV))
	require.NoError(t, err)

	records, st, err := Normalize(tbl)
	require.NoError(t, err)

	// 2 rows x 5 melted columns, of which the two series columns carry no year.
	assert.Equal(t, 10, st.Cells)
	assert.Equal(t, 4, st.DroppedCells)
	assert.Equal(t, 1, st.ParseFailures)
	require.Len(t, records, 6)

	for _, r := range records {
		assert.NotZero(t, r.Year, "no record may default to year 0")
	}

	assert.Equal(t, Record{CountryName: "India", CountryCode: "IND", Year: 2016,
		GDP: decimal.NullDecimal{Decimal: decimal.RequireFromString("2294797980509.12"), Valid: true}}, records[0])
	assert.Equal(t, "Nepal", records[1].CountryName)
	assert.Equal(t, 2016, records[1].Year)

	india2018 := records[4]
	assert.Equal(t, 2018, india2018.Year)
	assert.False(t, india2018.GDP.Valid)

	nepal2018 := records[5]
	assert.False(t, nepal2018.GDP.Valid)
}

func TestNormalize_MissingCountryColumns(t *testing.T) {
	tbl, err := table.Read(strings.NewReader("Name,2019\nIndia,1\n"))
	require.NoError(t, err)

	_, _, err = Normalize(tbl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, table.ErrMalformedInput))
}

func TestFilterCountry(t *testing.T) {
	records := []Record{
		{CountryName: "India", CountryCode: "IND", Year: 2019},
		{CountryName: "Nepal", CountryCode: "NPL", Year: 2019},
		{CountryName: "India", CountryCode: "IND", Year: 2020},
	}

	assert.Len(t, FilterCountry(records, "India"), 2)
	assert.Len(t, FilterCountry(records, "NPL"), 1)
	assert.Empty(t, FilterCountry(records, "Chad"))
}
