package metard

import "strings"

// TSVRenderer lays out a normalized batch as tab-separated rows.
type TSVRenderer struct {
	fields []string
	batch  []Record
}

// NewTSV returns a TSV renderer with one column per field, in order.
func NewTSV(fields []string, batch []Record) *TSVRenderer {
	return &TSVRenderer{fields: fields, batch: batch}
}

// Lines renders the header line followed by one line per record. The header
// is emitted even when there are no fields.
func (t *TSVRenderer) Lines() ([]string, error) {
	lines := make([]string, 0, len(t.batch)+1)
	lines = append(lines, strings.Join(t.fields, "\t"))
	for _, rec := range t.batch {
		values := make([]string, len(t.fields))
		for i, name := range t.fields {
			v, ok := rec.Lookup(name)
			if !ok {
				return nil, missingField(name, rec)
			}
			values[i] = v
		}
		lines = append(lines, strings.Join(values, "\t"))
	}
	return lines, nil
}
