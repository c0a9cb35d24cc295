package sink

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"paytrends/internal/atomicfile"
	"paytrends/internal/merge"
)

// SQLiteTable is the table WriteSQLite creates.
const SQLiteTable = "merged_summary"

var sqliteTypes = map[string]string{
	"year":        "INTEGER",
	"totalVolume": "REAL",
	"totalValue":  "REAL",
	"gdp":         "REAL",
	"percentage":  "REAL",
	"seriesCode":  "TEXT",
}

// WriteSQLite replaces the database at path with one holding the summary
// rows in output order. Nulls stay NULL.
func WriteSQLite(path string, rows []merge.SummaryRecord) error {
	return atomicfile.WritePath(path, func(tmp string) error {
		return writeSQLite(tmp, rows)
	})
}

func writeSQLite(path string, rows []merge.SummaryRecord) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var defs, qCols []string
	for _, c := range merge.Columns {
		defs = append(defs, fmt.Sprintf("%q %s", c, sqliteTypes[c]))
		qCols = append(qCols, fmt.Sprintf("%q", c))
	}
	if _, err := db.Exec(`DROP TABLE IF EXISTS "` + SQLiteTable + `"`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE "` + SQLiteTable + `" (` + strings.Join(defs, ",") + `)`); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ph := strings.TrimRight(strings.Repeat("?,", len(merge.Columns)), ",")
	stmt, err := tx.Prepare(`INSERT INTO "` + SQLiteTable + `" (` + strings.Join(qCols, ",") + `) VALUES (` + ph + `)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		var series any
		if r.SeriesCode.Valid {
			series = r.SeriesCode.String
		}
		if _, err := stmt.Exec(r.Year, sqliteValue(r.TotalVolume), sqliteValue(r.TotalValue),
			sqliteValue(r.GDP), sqliteValue(r.Percentage), series); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_merged_summary_year ON ` + SQLiteTable + `(year)`)
	return err
}

func sqliteValue(n decimal.NullDecimal) any {
	if !n.Valid {
		return nil
	}
	return n.Decimal.InexactFloat64()
}
