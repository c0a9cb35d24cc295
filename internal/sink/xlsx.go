package sink

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"paytrends/internal/atomicfile"
	"paytrends/internal/merge"
	"paytrends/internal/transactions"
)

// SummarySheet is the first sheet of the workbook.
const SummarySheet = "Summary"

// PivotSheet names the sheet holding a monthly pivot.
func PivotSheet(m transactions.Metric) string {
	return "Monthly " + m.String()
}

// WriteXLSX replaces path with a workbook holding the summary table and one
// sheet per monthly pivot. Null cells are left empty.
func WriteXLSX(path string, rows []merge.SummaryRecord, pivots ...transactions.Pivot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if err := setRow(f, SummarySheet, 1, toAny(merge.Columns)); err != nil {
		return err
	}
	for i, r := range rows {
		vals := []any{r.Year, cellValue(r.TotalVolume), cellValue(r.TotalValue), cellValue(r.GDP), cellValue(r.Percentage), nil}
		if r.SeriesCode.Valid {
			vals[5] = r.SeriesCode.String
		}
		if err := setRow(f, SummarySheet, i+2, vals); err != nil {
			return err
		}
	}
	for i := range merge.Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SummarySheet, col, col, 18); err != nil {
			return err
		}
	}

	for _, p := range pivots {
		if err := writePivotSheet(f, p); err != nil {
			return err
		}
	}

	return atomicfile.Write(path, func(w io.Writer) error {
		return f.Write(w)
	})
}

func writePivotSheet(f *excelize.File, p transactions.Pivot) error {
	sheet := PivotSheet(p.Metric)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	header := []any{"Month"}
	for _, y := range p.Years {
		header = append(header, strconv.Itoa(y))
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, m := range p.Months {
		vals := []any{m}
		for _, c := range p.Cells[i] {
			vals = append(vals, cellValue(c))
		}
		if err := setRow(f, sheet, i+2, vals); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &vals)
}

func cellValue(n decimal.NullDecimal) any {
	if !n.Valid {
		return nil
	}
	return n.Decimal.InexactFloat64()
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
