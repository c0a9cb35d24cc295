package sink

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xuri/excelize/v2"

	"paytrends/internal/calendar"
	"paytrends/internal/coerce"
	"paytrends/internal/merge"
	"paytrends/internal/transactions"
)

func dec(s string) decimal.NullDecimal { return coerce.Valid(decimal.RequireFromString(s)) }

func fixture() []merge.SummaryRecord {
	return []merge.SummaryRecord{
		{Year: 2021, TotalVolume: dec("4595.94"), TotalValue: dec("856344.65"), GDP: dec("3150306834279.65"),
			Percentage: dec("9.8"), SeriesCode: sql.NullString{String: "fin1.f", Valid: true}},
		{Year: 2018, GDP: dec("2702929639711.22")},
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, fixture()))
	assert.Equal(t,
		"year,totalVolume,totalValue,gdp,percentage,seriesCode\n"+
			"2021,4595.94,856344.65,3150306834279.65,9.8,fin1.f\n"+
			"2018,,,2702929639711.22,,\n",
		buf.String())
}

func TestWriteCSV_ReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "merged_summary_table.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, WriteCSV(path, fixture()))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "year,totalVolume")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file may remain")
}

func TestWriteSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.sqlite")
	require.NoError(t, WriteSQLite(path, fixture()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT year, totalVolume, gdp, seriesCode FROM merged_summary ORDER BY rowid`)
	require.NoError(t, err)
	defer rows.Close()

	type got struct {
		year   int
		volume sql.NullFloat64
		gdp    sql.NullFloat64
		series sql.NullString
	}
	var all []got
	for rows.Next() {
		var g got
		require.NoError(t, rows.Scan(&g.year, &g.volume, &g.gdp, &g.series))
		all = append(all, g)
	}
	require.NoError(t, rows.Err())
	require.Len(t, all, 2)
	assert.Equal(t, 2021, all[0].year)
	assert.InDelta(t, 4595.94, all[0].volume.Float64, 1e-9)
	assert.Equal(t, "fin1.f", all[0].series.String)
	assert.False(t, all[1].volume.Valid)
	assert.False(t, all[1].series.Valid)
	assert.True(t, all[1].gdp.Valid)

	// Rerunning replaces rather than appends.
	require.NoError(t, WriteSQLite(path, fixture()[:1]))
	db2, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db2.Close()
	var n int
	require.NoError(t, db2.QueryRow(`SELECT COUNT(*) FROM merged_summary`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	records := []transactions.Record{
		{Month: "Feb", Year: 2021, Volume: dec("2"), Value: dec("20")},
		{Month: "Jan", Year: 2021, Volume: dec("1"), Value: dec("10")},
	}
	pivot := transactions.MonthlyPivot(records, transactions.Volume, calendar.Months)
	require.NoError(t, WriteXLSX(path, fixture(), pivot))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, "Monthly Volume"}, f.GetSheetList())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, merge.Columns, rows[0])
	assert.Equal(t, "2021", rows[1][0])
	assert.Equal(t, "fin1.f", rows[1][5])

	month, err := f.GetCellValue("Monthly Volume", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Feb", month)
	v, err := f.GetCellValue("Monthly Volume", "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.parquet")
	require.NoError(t, WriteParquet(path, fixture()))

	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(ParquetRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.EqualValues(t, 2, pr.GetNumRows())
	got := make([]ParquetRow, 2)
	require.NoError(t, pr.Read(&got))

	assert.EqualValues(t, 2021, got[0].Year)
	require.NotNil(t, got[0].SeriesCode)
	assert.Equal(t, "fin1.f", *got[0].SeriesCode)
	require.NotNil(t, got[0].TotalVolume)
	assert.InDelta(t, 4595.94, *got[0].TotalVolume, 1e-9)
	assert.Nil(t, got[1].TotalVolume)
	assert.Nil(t, got[1].SeriesCode)
	require.NotNil(t, got[1].GDP)
}
