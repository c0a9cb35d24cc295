package table

import (
	"io"
	"strings"
)

// WriteCSV writes header and rows the way pandas' to_csv does by default:
// minimal quoting, "\n" terminators, no BOM and no index column.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	if err := WriteRecord(w, header); err != nil {
		return err
	}
	for _, rec := range rows {
		if err := WriteRecord(w, rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecord writes one line with Python csv module quoting rules.
func WriteRecord(w io.Writer, rec []string) error {
	for i, field := range rec {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if needsQuote(field) {
			if _, err := io.WriteString(w, `"`+strings.ReplaceAll(field, `"`, `""`)+`"`); err != nil {
				return err
			}
			continue
		}
		if _, err := io.WriteString(w, field); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func needsQuote(s string) bool {
	return strings.ContainsAny(s, ",\"\n\r")
}
