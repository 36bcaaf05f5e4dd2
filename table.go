package metard

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const columnSep = " | "

// cellWidth measures text in terminal cells. Ambiguous-width characters are
// always one cell wide, so layout does not depend on the process locale.
var cellWidth = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

// Field is the layout of one table column.
type Field struct {
	Name  string
	Width int
}

// TableRenderer lays out a normalized batch as a fixed-width grid.
type TableRenderer struct {
	fields []Field
	batch  []Record
}

// NewTable returns a table over batch with one column per field, in the
// given order. Each column is as wide as its longest name or value, capped
// at maxWidth when maxWidth > 0. Widths are display cells, not runes or
// bytes: ASCII takes one cell per character and CJK ideographs take two.
func NewTable(fields []string, batch []Record, maxWidth int) *TableRenderer {
	layout := make([]Field, len(fields))
	for i, name := range fields {
		layout[i] = computeField(name, batch, maxWidth)
	}
	return &TableRenderer{fields: layout, batch: batch}
}

func computeField(name string, batch []Record, maxWidth int) Field {
	width := cellWidth.StringWidth(name)
	for _, rec := range batch {
		if w := cellWidth.StringWidth(rec.Get(name)); w > width {
			width = w
		}
	}
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
	}
	return Field{Name: name, Width: width}
}

// Layout returns the computed column layout.
func (t *TableRenderer) Layout() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Lines renders the header, the rule and one line per record. Header and
// rule are omitted when there are no fields.
func (t *TableRenderer) Lines() ([]string, error) {
	lines := make([]string, 0, len(t.batch)+2)
	if len(t.fields) > 0 {
		cells := make([]string, len(t.fields))
		for i, f := range t.fields {
			cells[i] = fitCell(f.Name, f.Width)
		}
		header := strings.Join(cells, columnSep)
		lines = append(lines, header, strings.Repeat("-", cellWidth.StringWidth(header)))
	}
	for _, rec := range t.batch {
		line, err := t.row(rec)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (t *TableRenderer) row(rec Record) (string, error) {
	cells := make([]string, len(t.fields))
	for i, f := range t.fields {
		v, ok := rec.Lookup(f.Name)
		if !ok {
			return "", missingField(f.Name, rec)
		}
		cells[i] = fitCell(v, f.Width)
	}
	return strings.Join(cells, columnSep), nil
}

// fitCell cuts s to width display cells or pads it with spaces up to width.
func fitCell(s string, width int) string {
	if cellWidth.StringWidth(s) > width {
		s = cellWidth.Truncate(s, width, "")
	}
	return cellWidth.FillRight(s, width)
}
