package metard

// FieldListRenderer lays out one raw record as aligned "name: value" lines
// clipped to a display width.
type FieldListRenderer struct {
	rec          Record
	displayWidth int
}

// NewFieldList returns a renderer for rec on a display displayWidth cells
// wide.
func NewFieldList(rec Record, displayWidth int) *FieldListRenderer {
	return &FieldListRenderer{rec: rec, displayWidth: displayWidth}
}

// Lines renders one line per field in the record's key order.
func (f *FieldListRenderer) Lines() ([]string, error) {
	keys := f.rec.Keys()
	nameWidth := 0
	for _, k := range keys {
		if w := cellWidth.StringWidth(k); w > nameWidth {
			nameWidth = w
		}
	}
	clip := max(f.displayWidth-nameWidth-1, 0)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		v := f.rec.Get(k)
		if cellWidth.StringWidth(v) > clip {
			v = cellWidth.Truncate(v, clip, "")
		}
		lines = append(lines, fitCell(k, nameWidth)+": "+v)
	}
	return lines, nil
}
