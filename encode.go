package metard

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// encodedRenderer serializes a whole batch and splits the document into
// lines so it goes through the same writer as the text formats.
type encodedRenderer struct {
	batch  []Record
	encode func([]Record) ([]byte, error)
}

func (e *encodedRenderer) Lines() ([]string, error) {
	data, err := e.encode(e.batch)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n"), nil
}

func encodeJSON(batch []Record) ([]byte, error) {
	if batch == nil {
		batch = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(batch); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeYAML(batch []Record) ([]byte, error) {
	if batch == nil {
		batch = []Record{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(batch); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
