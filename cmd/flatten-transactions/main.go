package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"paytrends/internal/atomicfile"
	"paytrends/internal/table"
	"paytrends/internal/transactions"
)

var (
	inputPath  = flag.String("input", "./Data/TransactionsData/MonthlyProductStatistics.json", "Input JSON document")
	field      = flag.String("field", "data", "Top-level field holding the record array")
	outputPath = flag.String("output", "", "Output CSV path (default: input with .json replaced by _flattened.csv)")
	headRows   = flag.Int("head", 5, "Number of rows to print after writing")
)

func main() {
	flag.Parse()

	out := *outputPath
	if out == "" {
		out = defaultOutput(*inputPath)
	}
	header, rows, err := flattenFile(*inputPath, *field, out)
	if err != nil {
		fatalf("flatten: %v", err)
	}

	fmt.Printf("Input:   %s\n", *inputPath)
	fmt.Printf("Output:  %s\n", out)
	fmt.Printf("Rows:    %d\n", len(rows))
	fmt.Printf("Columns: %d\n", len(header))
	if err := table.WriteRecord(os.Stdout, header); err != nil {
		fatalf("print: %v", err)
	}
	for i := 0; i < len(rows) && i < *headRows; i++ {
		if err := table.WriteRecord(os.Stdout, rows[i]); err != nil {
			fatalf("print: %v", err)
		}
	}
}

func defaultOutput(input string) string {
	if strings.HasSuffix(input, ".json") {
		return strings.TrimSuffix(input, ".json") + "_flattened.csv"
	}
	return input + "_flattened.csv"
}

func flattenFile(input, field, output string) ([]string, [][]string, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	header, rows, err := transactions.Flatten(f, field)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", input, err)
	}
	if err := atomicfile.Write(output, func(w io.Writer) error {
		return table.WriteCSV(w, header, rows)
	}); err != nil {
		return nil, nil, err
	}
	return header, rows, nil
}

func fatalf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}
