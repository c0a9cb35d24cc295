package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"paytrends/internal/atomicfile"
	"paytrends/internal/charts"
	"paytrends/internal/gdp"
	"paytrends/internal/logger"
	"paytrends/internal/pipeline"
	"paytrends/internal/report"
	"paytrends/internal/transactions"
)

var defaults = pipeline.DefaultConfig()

var (
	transactionsPath = flag.String("transactions", defaults.TransactionsPath, "Flattened transaction statistics CSV")
	gdpPath          = flag.String("gdp", defaults.GDPPath, "GDP CSV (one column per year)")
	inclusionPath    = flag.String("inclusion", defaults.InclusionPath, "Financial inclusion CSV")
	inclusionYears   = flag.String("inclusion-years", joinInts(defaults.InclusionYears), "Comma-separated year columns of the inclusion CSV")
	labelPrefix      = flag.String("label-prefix", defaults.LabelPrefix, "Prefix removed from inclusion indicator labels")
	country          = flag.String("country", "India", "Country name or code for the GDP chart")
	outputDir        = flag.String("out-dir", "outputs/charts", "Output directory")
	format           = flag.String("format", "png", "Image format (png, svg, pdf)")
	withProfile      = flag.Bool("profile", false, "Also write the transaction profile report and histograms")
)

func main() {
	flag.Parse()

	cfg, err := configFromFlags()
	if err != nil {
		fatalf("%v", err)
	}

	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)
	state, err := pipeline.Load(ctx, cfg)
	if err != nil {
		fatalf("load: %v", err)
	}

	written, err := render(state, *outputDir, *format, *country, *withProfile, log)
	if err != nil {
		fatalf("render: %v", err)
	}
	for _, p := range written {
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
	cfg.InclusionYears = years
	cfg.LabelPrefix = *labelPrefix
	return cfg, nil
}

type chartJob struct {
	path string
	draw func(path string) error
}

// render writes every chart that has data. A chart without data is skipped
// with a warning; any other failure stops the run.
func render(state *pipeline.State, dir, format, country string, profile bool, log zerolog.Logger) ([]string, error) {
	path := func(name string) string { return filepath.Join(dir, name+"."+format) }
	var written []string
	add := func(p string, err error) error {
		if errors.Is(err, charts.ErrNoData) {
			log.Warn().Str("chart", p).Msg("no data, skipped")
			return nil
		}
		if err != nil {
			return err
		}
		written = append(written, p)
		return nil
	}

	jobs := []chartJob{
		{path("monthly_volume"), func(p string) error {
			return charts.MonthlyLines(state.VolumePivot, "Monthly transaction volume", "Volume (Mn)", p)
		}},
		{path("monthly_value"), func(p string) error {
			return charts.MonthlyLines(state.ValuePivot, "Monthly transaction value", "Value (Cr)", p)
		}},
		{path("gdp_trend"), func(p string) error {
			return charts.GDPTrend(gdp.FilterCountry(state.GDP, country), "GDP of "+country, p)
		}},
		{path("financial_inclusion"), func(p string) error {
			return charts.InclusionBars(state.Indicators, state.Config.InclusionYears, p)
		}},
	}
	if profile {
		for _, m := range []transactions.Metric{transactions.Volume, transactions.Value} {
			values := metricValues(state.Transactions, m)
			name := "hist_" + m.String()
			title := m.String() + " distribution"
			jobs = append(jobs, chartJob{path(name), func(p string) error {
				return charts.Histogram(values, title, 20, p)
			}})
		}
	}
	for _, j := range jobs {
		if err := add(j.path, j.draw(j.path)); err != nil {
			return written, err
		}
	}

	if profile {
		md := report.Profile(state.Transactions, state.TransactionStats)
		p := filepath.Join(dir, "transactions_profile.md")
		if err := atomicfile.Write(p, func(w io.Writer) error {
			_, err := io.WriteString(w, md)
			return err
		}); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

func metricValues(records []transactions.Record, m transactions.Metric) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(records))
	for i, r := range records {
		if m == transactions.Value {
			out[i] = r.Value
		} else {
			out[i] = r.Volume
		}
	}
	return out
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
