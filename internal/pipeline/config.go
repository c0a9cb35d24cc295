package pipeline

import (
	"errors"
	"fmt"
	"slices"

	"paytrends/internal/calendar"
)

// Config is everything a run needs. The core packages read no flags or
// environment; the commands fill a Config and hand it to Run.
type Config struct {
	TransactionsPath string
	GDPPath          string
	InclusionPath    string

	// Inclusive year range kept in the summary table.
	FromYear int
	ToYear   int

	// InclusionYears names the year columns of the inclusion table, in
	// file order after the four descriptive columns.
	InclusionYears []int
	LabelPrefix    string
	MonthOrder     []string

	Outputs Outputs
}

// Outputs lists the sinks of a run. CSVPath is required; an empty path
// disables the other sinks.
type Outputs struct {
	CSVPath     string
	SQLitePath  string
	XLSXPath    string
	ParquetPath string
}

// Paths returns the configured output paths, CSV first.
func (o Outputs) Paths() []string {
	var out []string
	for _, p := range []string{o.CSVPath, o.SQLitePath, o.XLSXPath, o.ParquetPath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DefaultConfig mirrors the layout of the published datasets.
func DefaultConfig() Config {
	return Config{
		TransactionsPath: "./Data/TransactionsData/MonthlyProductStatistics_flattened.csv",
		GDPPath:          "./Data/GDP_data/GDPIndia.csv",
		InclusionPath:    "./Data/FinancialInclusionData/financialInclusionIndia.csv",
		FromYear:         2017,
		ToYear:           2022,
		InclusionYears:   []int{2017, 2021},
		LabelPrefix:      "Used a mobile phone or the internet to buy something online",
		MonthOrder:       slices.Clone(calendar.Months),
		Outputs: Outputs{
			CSVPath: "merged_summary_table.csv",
		},
	}
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var errs []error
	for _, f := range []struct{ name, path string }{
		{"transactions path", c.TransactionsPath},
		{"gdp path", c.GDPPath},
		{"inclusion path", c.InclusionPath},
		{"csv output path", c.Outputs.CSVPath},
	} {
		if f.path == "" {
			errs = append(errs, fmt.Errorf("%s is empty", f.name))
		}
	}
	if c.FromYear > c.ToYear {
		errs = append(errs, fmt.Errorf("year range %d-%d is inverted", c.FromYear, c.ToYear))
	}
	if len(c.InclusionYears) == 0 {
		errs = append(errs, errors.New("no inclusion years"))
	}
	seen := make(map[int]bool, len(c.InclusionYears))
	for _, y := range c.InclusionYears {
		if seen[y] {
			errs = append(errs, fmt.Errorf("inclusion year %d listed twice", y))
		}
		seen[y] = true
	}
	if len(c.MonthOrder) == 0 {
		errs = append(errs, errors.New("empty month order"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
