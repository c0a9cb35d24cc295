package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"

	"paytrends/internal/atomicfile"
	"paytrends/internal/table"
)

const (
	defaultInput  = "./Data/TransactionsData/MonthlyProductStatistics_flattened.csv"
	defaultOutput = "outputs/MonthlyProductStatistics_shuffled.csv"
	defaultSeed   = int64(20260224)
)

func main() {
	inPath := flag.String("input", defaultInput, "Input CSV path")
	outPath := flag.String("output", defaultOutput, "Output CSV path")
	seed := flag.Int64("seed", defaultSeed, "Deterministic shuffle seed")
	sampleRows := flag.Int("sample-rows", 0, "If > 0, keep only this many rows after shuffling")
	flag.Parse()

	t, err := table.Load(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load csv error: %v\n", err)
		os.Exit(1)
	}

	rows := shuffleRows(t.Rows, *seed, *sampleRows)
	if err := atomicfile.Write(*outPath, func(w io.Writer) error {
		return table.WriteCSV(w, t.Header, rows)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "write csv error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Input:  %s\n", *inPath)
	fmt.Printf("Output: %s\n", *outPath)
	fmt.Printf("Seed:   %d\n", *seed)
	fmt.Printf("Rows:   %d\n", len(rows))
	fmt.Printf("Cols:   %d\n", len(t.Header))
}

// shuffleRows returns a reordered copy of rows. Columns keep their order,
// since the inclusion table is mapped by position. The same seed always
// gives the same order.
func shuffleRows(rows [][]string, seed int64, sample int) [][]string {
	rng := rand.New(rand.NewSource(seed))
	out := append([][]string(nil), rows...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if sample > 0 && sample < len(out) {
		out = out[:sample]
	}
	return out
}
