package sink

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"paytrends/internal/atomicfile"
	"paytrends/internal/merge"
)

// ParquetRow is the on-disk schema of the summary table. Pointer fields are
// OPTIONAL columns; nil is a null.
type ParquetRow struct {
	Year        int32    `parquet:"name=year, type=INT32"`
	TotalVolume *float64 `parquet:"name=totalVolume, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalValue  *float64 `parquet:"name=totalValue, type=DOUBLE, repetitiontype=OPTIONAL"`
	GDP         *float64 `parquet:"name=gdp, type=DOUBLE, repetitiontype=OPTIONAL"`
	Percentage  *float64 `parquet:"name=percentage, type=DOUBLE, repetitiontype=OPTIONAL"`
	SeriesCode  *string  `parquet:"name=seriesCode, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// ToParquet converts one summary row.
func ToParquet(r merge.SummaryRecord) ParquetRow {
	pr := ParquetRow{
		Year:        int32(r.Year),
		TotalVolume: optional(r.TotalVolume),
		TotalValue:  optional(r.TotalValue),
		GDP:         optional(r.GDP),
		Percentage:  optional(r.Percentage),
	}
	if r.SeriesCode.Valid {
		s := r.SeriesCode.String
		pr.SeriesCode = &s
	}
	return pr
}

// WriteParquet replaces path with a SNAPPY-compressed parquet file.
func WriteParquet(path string, rows []merge.SummaryRecord) error {
	return atomicfile.Write(path, func(w io.Writer) error {
		fw := writerfile.NewWriterFile(w)
		pw, err := writer.NewParquetWriter(fw, new(ParquetRow), 1)
		if err != nil {
			return fmt.Errorf("parquet schema: %w", err)
		}
		pw.CompressionType = parquet.CompressionCodec_SNAPPY
		for _, r := range rows {
			pr := ToParquet(r)
			if err := pw.Write(&pr); err != nil {
				pw.WriteStop()
				return fmt.Errorf("parquet write: %w", err)
			}
		}
		if err := pw.WriteStop(); err != nil {
			return fmt.Errorf("parquet flush: %w", err)
		}
		return nil
	})
}

func optional(n decimal.NullDecimal) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Decimal.InexactFloat64()
	return &f
}
