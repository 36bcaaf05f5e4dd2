package metard

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// FileNameField is the synthetic field every extracted record carries.
const FileNameField = "fileName"

// Record maps field names to values for one source file. Keys keep the
// order in which they were first set; overwriting a key keeps its position.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord returns a record holding only the fileName field.
func NewRecord(fileName string) Record {
	r := Record{values: make(map[string]string)}
	r.Set(FileNameField, fileName)
	return r
}

// RecordOf builds a record from alternating name/value pairs. A trailing
// name without a value gets an empty value.
func RecordOf(pairs ...string) Record {
	r := Record{values: make(map[string]string, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		v := ""
		if i+1 < len(pairs) {
			v = pairs[i+1]
		}
		r.Set(pairs[i], v)
	}
	return r
}

// Set assigns value to name.
func (r *Record) Set(name, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = value
}

// Get returns the value for name, or "" if it is absent.
func (r Record) Get(name string) string { return r.values[name] }

// Lookup returns the value for name and whether it is present.
func (r Record) Lookup(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Has reports whether name is present.
func (r Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Keys returns the field names in first-seen order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.keys) }

// FileName returns the fileName field.
func (r Record) FileName() string { return r.values[FileNameField] }

// Map returns a copy of the fields as a plain map.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy.
func (r Record) Clone() Record {
	c := Record{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]string, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Equal reports whether both records hold the same fields and values.
// Key order is ignored.
func (r Record) Equal(o Record) bool {
	if len(r.values) != len(o.values) {
		return false
	}
	for k, v := range r.values {
		if ov, ok := o.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the record as an object in key order. HTML
// characters in names and values are written as is.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(enc, &buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeString(enc, &buf, r.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeString appends s to buf as a JSON string without the newline the
// encoder adds after each value.
func encodeString(enc *json.Encoder, buf *bytes.Buffer, s string) error {
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// MarshalYAML encodes the record as a mapping in key order.
func (r Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range r.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.values[k]},
		)
	}
	return node, nil
}

// FieldSet is the union of field names across a batch, in first-seen order.
type FieldSet struct {
	names []string
	index map[string]struct{}
}

// NewFieldSet builds a set from names, dropping duplicates.
func NewFieldSet(names ...string) FieldSet {
	var fs FieldSet
	for _, n := range names {
		fs.add(n)
	}
	return fs
}

func (fs *FieldSet) add(name string) {
	if fs.index == nil {
		fs.index = make(map[string]struct{})
	}
	if _, ok := fs.index[name]; ok {
		return
	}
	fs.index[name] = struct{}{}
	fs.names = append(fs.names, name)
}

// Contains reports whether name is in the set.
func (fs FieldSet) Contains(name string) bool {
	_, ok := fs.index[name]
	return ok
}

// Len returns the number of names.
func (fs FieldSet) Len() int { return len(fs.names) }

// Names returns the names in first-seen order.
func (fs FieldSet) Names() []string {
	out := make([]string, len(fs.names))
	copy(out, fs.names)
	return out
}
