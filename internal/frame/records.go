package frame

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
)

// FromRecords builds a frame from row objects. Nested objects are flattened
// into dotted column names ("home.team.name"); arrays stay as cell values.
// Columns are the union of all keys, sorted; absent cells are NA.
func FromRecords(records []map[string]any) *Frame {
	flat := make([]map[string]any, len(records))
	seen := make(map[string]struct{})
	for i, rec := range records {
		row := make(map[string]any)
		flatten("", rec, row)
		for k := range row {
			seen[k] = struct{}{}
		}
		flat[i] = row
	}

	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)

	f := New()
	for _, name := range names {
		vals := make([]any, len(flat))
		for i, row := range flat {
			if v, ok := row[name]; ok {
				vals[i] = v
			} else {
				vals[i] = NA
			}
		}
		_ = f.AddColumn(name, vals)
	}
	return f
}

func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			flatten(name, nested, out)
			continue
		}
		out[name] = v
	}
}

// DecodeRecords decodes a JSON array of objects, keeping numbers as
// json.Number so integers survive without float rounding.
func DecodeRecords(raw []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var out []map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return out, nil
}

// columnPayload is the column-oriented table shape written by the R bridge:
// ordered column names, factor levels per factor column, and the data as
// one array per column. Factor cells are 1-based level codes.
type columnPayload struct {
	Columns []string        `json:"columns"`
	Factors json.RawMessage `json:"factors"`
	Data    json.RawMessage `json:"data"`
}

// DecodeColumns reads a column-oriented table.
func DecodeColumns(r io.Reader) (*Frame, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var p columnPayload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}

	data := map[string][]any{}
	if isObject(p.Data) {
		d := json.NewDecoder(bytes.NewReader(p.Data))
		d.UseNumber()
		if err := d.Decode(&data); err != nil {
			return nil, fmt.Errorf("decode table data: %w", err)
		}
	}

	levels := map[string][]string{}
	if isObject(p.Factors) {
		if err := json.Unmarshal(p.Factors, &levels); err != nil {
			return nil, fmt.Errorf("decode factor levels: %w", err)
		}
	}

	names := p.Columns
	if len(names) == 0 {
		for k := range data {
			names = append(names, k)
		}
		sort.Strings(names)
	}

	f := New()
	for _, name := range names {
		vals, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("column %q listed but has no data", name)
		}
		if lv, isFactor := levels[name]; isFactor {
			vals = factorColumn(vals, lv)
		}
		if err := f.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func factorColumn(codes []any, levels []string) []any {
	out := make([]any, len(codes))
	for i, c := range codes {
		n, ok := c.(json.Number)
		if !ok {
			out[i] = Factor{Code: -1, Levels: levels}
			continue
		}
		code, err := n.Int64()
		if err != nil {
			out[i] = Factor{Code: -1, Levels: levels}
			continue
		}
		out[i] = Factor{Code: int(code) - 1, Levels: levels}
	}
	return out
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// MarshalTable encodes the frame in the shape DecodeColumns reads, with
// values normalised (factors become their labels). Used to persist frames.
func MarshalTable(f *Frame) ([]byte, error) {
	p := struct {
		Columns []string         `json:"columns"`
		Data    map[string][]any `json:"data"`
	}{
		Columns: f.Names(),
		Data:    make(map[string][]any, f.NCol()),
	}
	for _, name := range p.Columns {
		col, _ := f.Column(name)
		vals := make([]any, len(col))
		for i, v := range col {
			vals[i] = Normalize(v)
		}
		p.Data[name] = vals
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode table: %w", err)
	}
	return b, nil
}
