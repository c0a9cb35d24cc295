// Package sink writes the merged summary table. Every writer goes through
// atomicfile, so a destination holds either the previous file or the
// complete new one.
package sink

import (
	"io"
	"strconv"

	"paytrends/internal/atomicfile"
	"paytrends/internal/coerce"
	"paytrends/internal/merge"
	"paytrends/internal/table"
)

// Fields renders one summary row as CSV cells.
func Fields(r merge.SummaryRecord) []string {
	series := ""
	if r.SeriesCode.Valid {
		series = r.SeriesCode.String
	}
	return []string{
		strconv.Itoa(r.Year),
		coerce.Float(r.TotalVolume),
		coerce.Float(r.TotalValue),
		coerce.Float(r.GDP),
		coerce.Float(r.Percentage),
		series,
	}
}

// EncodeCSV writes the header and rows to w.
func EncodeCSV(w io.Writer, rows []merge.SummaryRecord) error {
	recs := make([][]string, len(rows))
	for i, r := range rows {
		recs[i] = Fields(r)
	}
	return table.WriteCSV(w, merge.Columns, recs)
}

// WriteCSV replaces path with the summary table.
func WriteCSV(path string, rows []merge.SummaryRecord) error {
	return atomicfile.Write(path, func(w io.Writer) error {
		return EncodeCSV(w, rows)
	})
}
