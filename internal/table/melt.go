package table

import "fmt"

// Row is one long-form record keyed by column name.
type Row map[string]string

// Melt reshapes t from wide to long form. Every output row carries the idVars
// columns, the name of the melted column under varName and its cell under
// valueName. When valueVars is empty every non-id column is melted. Output is
// column-major: all rows for the first value column, then the next.
func Melt(t *Table, idVars, valueVars []string, varName, valueName string) ([]Row, error) {
	ids, err := t.Require(idVars...)
	if err != nil {
		return nil, err
	}
	if len(valueVars) == 0 {
		isID := make(map[string]bool, len(idVars))
		for _, v := range idVars {
			isID[v] = true
		}
		for _, h := range t.Header {
			if !isID[h] {
				valueVars = append(valueVars, h)
			}
		}
	}
	vals, err := t.Require(valueVars...)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{varName, valueName} {
		if _, clash := ids[name]; clash {
			return nil, fmt.Errorf("melt: output column %q collides with an id column", name)
		}
	}

	out := make([]Row, 0, len(t.Rows)*len(valueVars))
	for _, col := range valueVars {
		ci := vals[col]
		for _, rec := range t.Rows {
			row := make(Row, len(idVars)+2)
			for _, id := range idVars {
				row[id] = rec[ids[id]]
			}
			row[varName] = col
			row[valueName] = rec[ci]
			out = append(out, row)
		}
	}
	return out, nil
}
