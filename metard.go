package metard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMissingField      = errors.New("missing field")
	ErrInvalidEncoding   = errors.New("invalid encoding")
	ErrInvalidConfig     = errors.New("invalid config")
)

// Format represents a batch output format.
type Format string

const (
	Table Format = "tbl"
	TSV   Format = "tsv"
	JSON  Format = "json"
	YAML  Format = "yaml"
)

var formats = []Format{Table, TSV, JSON, YAML}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Formats returns all supported format names.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// ParseFormat parses a format string.
func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Renderer produces output as an ordered sequence of lines. Rendering is a
// pure function of the values the renderer was built from.
type Renderer interface {
	Lines() ([]string, error)
}

// NewRenderer returns the batch renderer for f. Fields are displayed in the
// set's order; batch should be the output of [Normalize].
func NewRenderer(f Format, fields FieldSet, batch []Record, cfg Config) (Renderer, error) {
	switch f {
	case Table:
		return NewTable(fields.Names(), batch, cfg.MaxColumn), nil
	case TSV:
		return NewTSV(fields.Names(), batch), nil
	case JSON:
		return &encodedRenderer{batch: batch, encode: encodeJSON}, nil
	case YAML:
		return &encodedRenderer{batch: batch, encode: encodeYAML}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Write renders r and writes each line to w followed by a newline.
func Write(w io.Writer, r Renderer) error {
	lines, err := r.Lines()
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Marshal renders r and returns the bytes.
func Marshal(r Renderer) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func missingField(name string, rec Record) error {
	return fmt.Errorf("%w: %q in record %q", ErrMissingField, name, rec.FileName())
}
