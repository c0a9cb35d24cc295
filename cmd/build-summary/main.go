package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"paytrends/internal/logger"
	"paytrends/internal/pipeline"
	"paytrends/internal/publish"
)

var defaults = pipeline.DefaultConfig()

var (
	transactionsPath = flag.String("transactions", defaults.TransactionsPath, "Flattened transaction statistics CSV")
	gdpPath          = flag.String("gdp", defaults.GDPPath, "GDP CSV (one column per year)")
	inclusionPath    = flag.String("inclusion", defaults.InclusionPath, "Financial inclusion CSV")
	fromYear         = flag.Int("from-year", defaults.FromYear, "First year kept in the summary")
	toYear           = flag.Int("to-year", defaults.ToYear, "Last year kept in the summary")
	inclusionYears   = flag.String("inclusion-years", joinInts(defaults.InclusionYears), "Comma-separated year columns of the inclusion CSV")
	labelPrefix      = flag.String("label-prefix", defaults.LabelPrefix, "Prefix removed from inclusion indicator labels")
	csvPath          = flag.String("csv", defaults.Outputs.CSVPath, "Summary CSV output path")
	sqlitePath       = flag.String("sqlite", "", "Optional SQLite output path")
	xlsxPath         = flag.String("xlsx", "", "Optional XLSX output path")
	parquetPath      = flag.String("parquet", "", "Optional Parquet output path")
	gcsBucket        = flag.String("gcs-bucket", "", "If set, upload the outputs to this GCS bucket")
	gcsPrefix        = flag.String("gcs-prefix", "", "Object name prefix for -gcs-bucket")
)

func main() {
	flag.Parse()

	cfg, err := configFromFlags()
	if err != nil {
		fatalf("flags: %v", err)
	}

	ctx := logger.WithContext(context.Background(), logger.New())
	state, err := pipeline.Run(ctx, cfg)
	if err != nil {
		fatalf("build summary: %v", err)
	}

	if *gcsBucket != "" {
		uris, err := publish.Upload(ctx, *gcsBucket, *gcsPrefix, state.WrittenPaths...)
		if err != nil {
			fatalf("publish: %v", err)
		}
		for _, u := range uris {
			fmt.Printf("Published: %s\n", u)
		}
	}

	fmt.Printf("Run: %s\n", state.RunID)
	fmt.Printf("Transactions rows: %d (unreadable metrics: %d)\n", state.TransactionStats.Rows, state.TransactionStats.ParseFailures)
	fmt.Printf("GDP records: %d\n", len(state.GDP))
	fmt.Printf("Inclusion records: %d (rows dropped: %d)\n", len(state.Inclusion), state.InclusionStats.DroppedRows)
	fmt.Printf("Summary rows: %d\n", len(state.Summary))
	for _, p := range state.WrittenPaths {
		fmt.Printf("Wrote: %s\n", p)
	}
}

func configFromFlags() (pipeline.Config, error) {
	years, err := parseInts(*inclusionYears)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("-inclusion-years: %w", err)
	}
	cfg := pipeline.DefaultConfig()
	cfg.TransactionsPath = *transactionsPath
	cfg.GDPPath = *gdpPath
	cfg.InclusionPath = *inclusionPath
	cfg.FromYear = *fromYear
	cfg.ToYear = *toYear
	cfg.InclusionYears = years
	cfg.LabelPrefix = *labelPrefix
	cfg.Outputs = pipeline.Outputs{
		CSVPath:     *csvPath,
		SQLitePath:  *sqlitePath,
		XLSXPath:    *xlsxPath,
		ParquetPath: *parquetPath,
	}
	return cfg, nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func fatalf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}
