// Package table holds the row-oriented form every source is loaded into
// before normalization, plus the wide-to-long reshape and the CSV writer
// shared by the tools.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMalformedInput marks input that cannot be normalized at all. It is
// fatal for a run, unlike per-cell coercion failures which become nulls.
var ErrMalformedInput = errors.New("malformed input")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a delimited file read fully into memory. Every row has exactly
// len(Header) cells; short rows are padded with empty strings.
type Table struct {
	Header []string
	Rows   [][]string
}

// Load opens path, reads it completely and closes it before returning.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Read(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Read parses CSV content. A leading UTF-8 BOM is ignored and rows may have
// a varying number of fields.
func Read(r io.Reader) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, utf8BOM)
	cr := csv.NewReader(bytes.NewReader(b))
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMalformedInput)
		}
		return nil, err
	}
	t := &Table{Header: trimAll(header)}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		row := make([]string, len(t.Header))
		for i := range row {
			if i < len(rec) {
				row[i] = normalizeField(rec[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Require resolves the named columns, failing with ErrMalformedInput when
// any is absent.
func (t *Table) Require(names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	var missing []string
	for _, n := range names {
		i := t.Index(n)
		if i < 0 {
			missing = append(missing, n)
			continue
		}
		idx[n] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing column(s) %s", ErrMalformedInput, strings.Join(missing, ", "))
	}
	return idx, nil
}

// Rename returns a shallow copy of t with its header replaced by names. The
// column count must match.
func (t *Table) Rename(names []string) (*Table, error) {
	if len(names) != len(t.Header) {
		return nil, fmt.Errorf("%w: expected %d columns, file has %d", ErrMalformedInput, len(names), len(t.Header))
	}
	return &Table{Header: append([]string(nil), names...), Rows: t.Rows}, nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func normalizeField(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}
