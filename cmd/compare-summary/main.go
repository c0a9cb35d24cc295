package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"paytrends/internal/atomicfile"
	"paytrends/internal/coerce"
	"paytrends/internal/merge"
	"paytrends/internal/table"
)

type yearDiff struct {
	Year             int      `json:"year"`
	ReferenceRows    int      `json:"reference_rows"`
	CandidateRows    int      `json:"candidate_rows"`
	MissingRows      []string `json:"missing_in_candidate,omitempty"`
	UnexpectedRows   []string `json:"unexpected_in_candidate,omitempty"`
	OrderOnlyChanged bool     `json:"order_only_changed,omitempty"`
}

type reportPayload struct {
	Status            string     `json:"status"`
	ReferenceCSV      string     `json:"reference_csv"`
	CandidateCSV      string     `json:"candidate_csv"`
	ReferenceRows     int        `json:"reference_rows"`
	CandidateRows     int        `json:"candidate_rows"`
	MatchedRows       int        `json:"matched_rows"`
	CoverageReference float64    `json:"coverage_reference"`
	MissingColumns    []string   `json:"missing_columns,omitempty"`
	ExtraColumns      []string   `json:"extra_columns,omitempty"`
	ByteIdentical     bool       `json:"byte_identical"`
	YearDiffs         []yearDiff `json:"year_diffs,omitempty"`
}

type summaryRow struct {
	year int
	key  string
}

func main() {
	reference := flag.String("reference", "merged_summary_table.csv", "Reference summary CSV")
	candidate := flag.String("candidate", "outputs/merged_summary_table.csv", "Candidate summary CSV to evaluate")
	outputJSON := flag.String("output-json", "", "Optional path to write JSON report")
	flag.Parse()

	report, err := compareSummaryFiles(*reference, *candidate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compare error: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON != "" {
		if err := writeReport(*outputJSON, report); err != nil {
			fmt.Fprintf(os.Stderr, "write report error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote JSON report: %s\n", *outputJSON)
		fmt.Printf("Status: %s\n", report.Status)
		fmt.Printf("Matched rows: %d / %d\n", report.MatchedRows, report.ReferenceRows)
	} else {
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(payload))
	}
	if report.Status != "ok" {
		os.Exit(2)
	}
}

// writeReport replaces path with the indented JSON report.
func writeReport(path string, report reportPayload) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(path, func(w io.Writer) error {
		_, err := w.Write(append(payload, '\n'))
		return err
	})
}

// compareSummaryFiles compares two summary tables row by row within each
// year. Numbers are compared by value, so "2000" and "2000.0" match.
func compareSummaryFiles(referenceCSV, candidateCSV string) (reportPayload, error) {
	refBytes, err := os.ReadFile(referenceCSV)
	if err != nil {
		return reportPayload{}, err
	}
	candBytes, err := os.ReadFile(candidateCSV)
	if err != nil {
		return reportPayload{}, err
	}
	ref, err := table.Load(referenceCSV)
	if err != nil {
		return reportPayload{}, err
	}
	cand, err := table.Load(candidateCSV)
	if err != nil {
		return reportPayload{}, err
	}

	report := reportPayload{
		ReferenceCSV:  referenceCSV,
		CandidateCSV:  candidateCSV,
		ReferenceRows: len(ref.Rows),
		CandidateRows: len(cand.Rows),
		ByteIdentical: string(refBytes) == string(candBytes),
	}
	for _, c := range merge.Columns {
		if cand.Index(c) < 0 {
			report.MissingColumns = append(report.MissingColumns, c)
		}
	}
	for _, h := range cand.Header {
		if !contains(merge.Columns, h) {
			report.ExtraColumns = append(report.ExtraColumns, h)
		}
	}

	refRows, err := canonicalRows(ref)
	if err != nil {
		return reportPayload{}, fmt.Errorf("%s: %w", referenceCSV, err)
	}
	candRows, err := canonicalRows(cand)
	if err != nil {
		return reportPayload{}, fmt.Errorf("%s: %w", candidateCSV, err)
	}
	refIdx := merge.NewIndex(refRows, func(r summaryRow) int { return r.year })
	candIdx := merge.NewIndex(candRows, func(r summaryRow) int { return r.year })

	diffs := merge.OuterJoin(merge.Grouped(refIdx), merge.Grouped(candIdx), func(year int, r, c *[]summaryRow) yearDiff {
		var rs, cs []string
		if r != nil {
			rs = keysOf(*r)
		}
		if c != nil {
			cs = keysOf(*c)
		}
		d := diffYear(year, rs, cs)
		report.MatchedRows += len(rs) - len(d.MissingRows)
		return d
	})
	for _, d := range diffs.Values() {
		if len(d.MissingRows) > 0 || len(d.UnexpectedRows) > 0 || d.OrderOnlyChanged {
			report.YearDiffs = append(report.YearDiffs, d)
		}
	}
	sort.SliceStable(report.YearDiffs, func(i, j int) bool { return report.YearDiffs[i].Year > report.YearDiffs[j].Year })

	if report.ReferenceRows > 0 {
		report.CoverageReference = float64(report.MatchedRows) / float64(report.ReferenceRows)
	}
	report.Status = "ok"
	switch {
	case len(report.MissingColumns) > 0:
		report.Status = "missing_columns"
	case report.MatchedRows != report.ReferenceRows || report.CandidateRows != report.ReferenceRows:
		report.Status = "mismatch"
	}
	return report, nil
}

func diffYear(year int, ref, cand []string) yearDiff {
	d := yearDiff{Year: year, ReferenceRows: len(ref), CandidateRows: len(cand)}
	remaining := make(map[string]int, len(cand))
	for _, k := range cand {
		remaining[k]++
	}
	for _, k := range ref {
		if remaining[k] > 0 {
			remaining[k]--
			continue
		}
		d.MissingRows = append(d.MissingRows, k)
	}
	for _, k := range cand {
		if remaining[k] > 0 {
			remaining[k]--
			d.UnexpectedRows = append(d.UnexpectedRows, k)
		}
	}
	if len(d.MissingRows) == 0 && len(d.UnexpectedRows) == 0 && strings.Join(ref, "\n") != strings.Join(cand, "\n") {
		d.OrderOnlyChanged = true
	}
	return d
}

func keysOf(rows []summaryRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.key
	}
	return out
}

func canonicalRows(t *table.Table) ([]summaryRow, error) {
	yi := t.Index("year")
	if yi < 0 {
		return nil, fmt.Errorf("%w: no year column", table.ErrMalformedInput)
	}
	var out []summaryRow
	for n, rec := range t.Rows {
		year, err := strconv.Atoi(strings.TrimSpace(rec[yi]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: year %q", table.ErrMalformedInput, n+2, rec[yi])
		}
		parts := make([]string, 0, len(merge.Columns))
		for _, c := range merge.Columns {
			i := t.Index(c)
			if i < 0 {
				parts = append(parts, "")
				continue
			}
			parts = append(parts, canonicalScalar(rec[i]))
		}
		out = append(out, summaryRow{year: year, key: strings.Join(parts, ",")})
	}
	return out, nil
}

func canonicalScalar(v string) string {
	if coerce.IsNA(v) {
		return ""
	}
	if n, ok := coerce.Number(v); ok && n.Valid {
		return n.Decimal.String()
	}
	return strings.TrimSpace(v)
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
