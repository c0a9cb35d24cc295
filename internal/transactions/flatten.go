package transactions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"paytrends/internal/table"
)

// member keeps JSON object keys in document order, which encoding/json maps
// would lose.
type member struct {
	key   string
	value any
}

type object []member

// Flatten reads a JSON document, takes the array stored under field and
// flattens every element into one row. Nested objects become dotted column
// names ("a.b"); the header lists keys in first-seen order across all
// elements. Scalars keep their literal text, booleans are written True/False
// and null as an empty cell.
func Flatten(r io.Reader, field string) ([]string, [][]string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	doc, err := decodeValue(dec)
	if err != nil {
		return nil, nil, fmt.Errorf("flatten: %w", err)
	}
	root, ok := doc.(object)
	if !ok {
		return nil, nil, fmt.Errorf("flatten: top level is not an object: %w", table.ErrMalformedInput)
	}
	var items []any
	found := false
	for _, m := range root {
		if m.key == field {
			items, ok = m.value.([]any)
			if !ok {
				return nil, nil, fmt.Errorf("flatten: field %q is not an array: %w", field, table.ErrMalformedInput)
			}
			found = true
			break
		}
	}
	if !found {
		return nil, nil, fmt.Errorf("flatten: field %q not found: %w", field, table.ErrMalformedInput)
	}

	var header []string
	seen := map[string]int{}
	flat := make([]map[string]string, 0, len(items))
	for i, it := range items {
		obj, ok := it.(object)
		if !ok {
			return nil, nil, fmt.Errorf("flatten: element %d is not an object: %w", i, table.ErrMalformedInput)
		}
		row := map[string]string{}
		var cols []member
		flattenObject("", obj, &cols)
		for _, c := range cols {
			if _, ok := seen[c.key]; !ok {
				seen[c.key] = len(header)
				header = append(header, c.key)
			}
			row[c.key] = c.value.(string)
		}
		flat = append(flat, row)
	}

	rows := make([][]string, len(flat))
	for i, row := range flat {
		rec := make([]string, len(header))
		for j, h := range header {
			rec[j] = row[h]
		}
		rows[i] = rec
	}
	return header, rows, nil
}

func flattenObject(prefix string, obj object, out *[]member) {
	for _, m := range obj {
		key := m.key
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := m.value.(object); ok && len(nested) > 0 {
			flattenObject(key, nested, out)
			continue
		}
		*out = append(*out, member{key: key, value: scalarText(m.value)})
	}
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		var buf bytes.Buffer
		writeJSON(&buf, t)
		return buf.String()
	}
}

func writeJSON(buf *bytes.Buffer, v any) {
	switch t := v.(type) {
	case object:
		buf.WriteByte('{')
		for i, m := range t {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(strconv.Quote(m.key))
			buf.WriteString(": ")
			writeJSON(buf, m.value)
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteString(", ")
			}
			writeJSON(buf, e)
		}
		buf.WriteByte(']')
	case string:
		buf.WriteString(strconv.Quote(t))
	case nil:
		buf.WriteString("null")
	default:
		buf.WriteString(scalarText(t))
	}
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("unexpected end of document: %w", table.ErrMalformedInput)
		}
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := object{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := kt.(string)
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, member{key: key, value: val})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q: %w", delim, table.ErrMalformedInput)
}
