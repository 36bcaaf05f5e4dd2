// Package metard reads the "label: value" metadata header at the top of
// plain-text files and renders it for one file or a whole folder.
//
// # Extraction
//
// A [Reader] turns a file into a [Record]. Each line is NFC-composed,
// transliterated (see [Transliterate]) and split on the divider. The label
// is everything before the first divider; the value is the rest, with any
// further dividers kept, so "Start: 12:30:00" yields Start = "12:30:00".
// Reading stops after the line whose label is the terminator ("scenario",
// any case). Every record carries a synthetic fileName field.
//
//	r, err := metard.NewReader(metard.DefaultConfig())
//	rec, err := r.Read("story.lgst")
//
// # Normalization
//
// Files rarely share the same fields. [Normalize] computes the union of
// field names as a [FieldSet] and back-fills each record with the
// placeholder from [Config.Undefined], so every record has every field:
//
//	fields, batch, err := r.LoadNormalized(ctx, "stories/")
//
// # Rendering
//
// A [Renderer] produces output lines; [Write] and [Marshal] add a newline
// after each.
//
//   - [TableRenderer] — aligned columns joined by " | " with a dashed rule
//     under the header; columns can be capped with [Config.MaxColumn]
//   - [TSVRenderer] — tab-separated header and rows
//   - [FieldListRenderer] — one raw record as "name: value" lines clipped to
//     the display width
//
// [NewRenderer] picks a batch renderer by [Format], which also covers JSON
// and YAML.
//
// # Errors
//
// The package exports sentinel errors for programmatic handling:
//
//   - [ErrUnsupportedFormat] — unknown format string
//   - [ErrMissingField] — a batch renderer was given a record without one of
//     its fields; the batch was not normalized
//   - [ErrInvalidEncoding] — a file is not valid UTF-8
//   - [ErrInvalidConfig] — a setting is out of range
package metard
