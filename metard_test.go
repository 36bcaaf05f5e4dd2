package metard_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/metard"
)

// --- Helpers ---

type errWriter struct{}

func (e *errWriter) Write([]byte) (int, error) {
	return 0, errWriteFailed
}

var errWriteFailed = errors.New("write failed")

// cells measures the way the renderers do, independent of the locale.
var cells = &runewidth.Condition{}

type staticRenderer struct {
	lines []string
	err   error
}

func (s staticRenderer) Lines() ([]string, error) { return s.lines, s.err }

// twoFiles is the batch {fileName:a, X:1} + {fileName:b, Y:22}.
func twoFiles() []metard.Record {
	return []metard.Record{
		metard.RecordOf("fileName", "a", "X", "1"),
		metard.RecordOf("fileName", "b", "Y", "22"),
	}
}

func render(t *testing.T, r metard.Renderer) []string {
	t.Helper()
	lines, err := r.Lines()
	require.NoError(t, err)
	return lines
}

// ============================================================
// Tests
// ============================================================

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input   string
		want    metard.Format
		wantErr require.ErrorAssertionFunc
	}{
		"tbl":     {input: "tbl", want: metard.Table, wantErr: require.NoError},
		"tsv":     {input: "tsv", want: metard.TSV, wantErr: require.NoError},
		"json":    {input: "json", want: metard.JSON, wantErr: require.NoError},
		"yaml":    {input: "yaml", want: metard.YAML, wantErr: require.NoError},
		"unknown": {input: "csv", wantErr: require.Error},
		"empty":   {input: "", wantErr: require.Error},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := metard.ParseFormat(tc.input)
			tc.wantErr(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseFormatSentinel(t *testing.T) {
	t.Parallel()
	_, err := metard.ParseFormat("xml")
	assert.ErrorIs(t, err, metard.ErrUnsupportedFormat)
}

func TestFormats(t *testing.T) {
	t.Parallel()
	got := metard.Formats()
	assert.Equal(t, []metard.Format{metard.Table, metard.TSV, metard.JSON, metard.YAML}, got)
	got[0] = "changed"
	assert.Equal(t, metard.Table, metard.Formats()[0])
}

func TestFormatString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "tsv", metard.TSV.String())
}

func TestAggregate(t *testing.T) {
	t.Parallel()
	fs := metard.Aggregate(twoFiles()...)
	assert.Equal(t, []string{"fileName", "X", "Y"}, fs.Names())
	assert.True(t, fs.Contains("Y"))
	assert.False(t, fs.Contains("Z"))
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()
	fs := metard.Aggregate()
	assert.Equal(t, 0, fs.Len())
	assert.Empty(t, fs.Names())
}

func TestFill(t *testing.T) {
	t.Parallel()
	rec := metard.RecordOf("fileName", "a", "X", "1")
	keys := metard.NewFieldSet("fileName", "X", "Y")

	got := metard.Fill(rec, keys, "?")
	assert.Equal(t, map[string]string{"fileName": "a", "X": "1", "Y": "?"}, got.Map())
	assert.False(t, rec.Has("Y"), "input record must not change")
}

func TestFillIdempotent(t *testing.T) {
	t.Parallel()
	keys := metard.NewFieldSet("fileName", "X", "Y")
	once := metard.Fill(metard.RecordOf("fileName", "a"), keys, "")
	twice := metard.Fill(once, keys, "")
	assert.True(t, once.Equal(twice))
	assert.Equal(t, once.Keys(), twice.Keys())
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	fs, batch := metard.Normalize(twoFiles(), "")
	require.Len(t, batch, 2)
	assert.Equal(t, []string{"fileName", "X", "Y"}, fs.Names())
	assert.Equal(t, map[string]string{"fileName": "a", "X": "1", "Y": ""}, batch[0].Map())
	assert.Equal(t, map[string]string{"fileName": "b", "X": "", "Y": "22"}, batch[1].Map())
}

func TestNormalizeEveryRecordHasExactlyTheFieldSet(t *testing.T) {
	t.Parallel()
	records := []metard.Record{
		metard.RecordOf("fileName", "a", "Title", "Foo"),
		metard.RecordOf("fileName", "b", "Author", "Bob", "Year", "1999"),
		metard.RecordOf("fileName", "c"),
		metard.RecordOf("fileName", "d", "Title", "Bar", "Scenario", "x"),
	}
	fs, batch := metard.Normalize(records, "-")
	for _, rec := range batch {
		assert.Equal(t, fs.Len(), rec.Len(), rec.FileName())
		for _, k := range fs.Names() {
			assert.True(t, rec.Has(k), "%s lacks %s", rec.FileName(), k)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	t.Parallel()
	fs, batch := metard.Normalize(nil, "")
	assert.Equal(t, 0, fs.Len())
	assert.Empty(t, batch)
}

func TestTable(t *testing.T) {
	t.Parallel()
	fs, batch := metard.Normalize(twoFiles(), "")
	table := metard.NewTable(fs.Names(), batch, 0)

	assert.Equal(t, []metard.Field{
		{Name: "fileName", Width: 8},
		{Name: "X", Width: 1},
		{Name: "Y", Width: 2},
	}, table.Layout())

	lines := render(t, table)
	assert.Equal(t, []string{
		"fileName | X | Y ",
		"-----------------",
		"a        | 1 |   ",
		"b        |   | 22",
	}, lines)
}

func TestTableAlignment(t *testing.T) {
	t.Parallel()
	records := []metard.Record{
		metard.RecordOf("fileName", "first.lgst", "Title", "A rather long title", "Author", "Bob"),
		metard.RecordOf("fileName", "b.lgst", "Title", "", "Year", "2024"),
		metard.RecordOf("fileName", "日本語.lgst", "Author", "Ødegård"),
	}
	fs, batch := metard.Normalize(records, "")
	for _, limit := range []int{0, 3, 10, 100} {
		lines := render(t, metard.NewTable(fs.Names(), batch, limit))
		require.Len(t, lines, len(batch)+2)
		width := cells.StringWidth(lines[0])
		assert.Equal(t, width, len(lines[1]), "rule width, cap %d", limit)
		for _, line := range lines[2:] {
			assert.Equal(t, width, cells.StringWidth(line), "cap %d: %q", limit, line)
		}
	}
}

// Not parallel: switches the package-level runewidth condition to the one an
// East Asian locale (LC_ALL=ja_JP.UTF-8) would select at init.
func TestTableSameUnderEastAsianLocale(t *testing.T) {
	saved := *runewidth.DefaultCondition
	runewidth.DefaultCondition.EastAsianWidth = true
	t.Cleanup(func() { *runewidth.DefaultCondition = saved })

	batch := []metard.Record{metard.RecordOf("fileName", "a", "Автор", "Иван")}
	lines := render(t, metard.NewTable([]string{"fileName", "Автор"}, batch, 0))
	assert.Equal(t, []string{
		"fileName | Автор",
		"----------------",
		"a        | Иван ",
	}, lines)
	for _, line := range lines {
		assert.Equal(t, 16, utf8.RuneCountInString(line), "%q", line)
	}

	fields := render(t, metard.NewFieldList(metard.RecordOf("fileName", "a", "Автор", "Иван Петров"), 14))
	assert.Equal(t, []string{
		"fileName: a",
		"Автор   : Иван ",
	}, fields)
}

func TestTableTruncated(t *testing.T) {
	t.Parallel()
	batch := []metard.Record{metard.RecordOf("fileName", "abcdefgh", "Title", "Hello")}
	lines := render(t, metard.NewTable([]string{"fileName", "Title"}, batch, 4))
	assert.Equal(t, []string{
		"file | Titl",
		"-----------",
		"abcd | Hell",
	}, lines)
}

func TestTableNoFields(t *testing.T) {
	t.Parallel()
	batch := []metard.Record{metard.RecordOf("fileName", "a")}
	lines := render(t, metard.NewTable(nil, batch, 0))
	assert.Equal(t, []string{""}, lines)
}

func TestTableEmpty(t *testing.T) {
	t.Parallel()
	lines := render(t, metard.NewTable(nil, nil, 0))
	assert.Empty(t, lines)
}

func TestTableHeaderOnly(t *testing.T) {
	t.Parallel()
	lines := render(t, metard.NewTable([]string{"fileName"}, nil, 0))
	assert.Equal(t, []string{"fileName", "--------"}, lines)
}

func TestTableMissingField(t *testing.T) {
	t.Parallel()
	_, err := metard.NewTable([]string{"fileName", "X"}, twoFiles(), 0).Lines()
	require.ErrorIs(t, err, metard.ErrMissingField)
	assert.Contains(t, err.Error(), `"X" in record "b"`)
}

func TestTSV(t *testing.T) {
	t.Parallel()
	fs, batch := metard.Normalize(twoFiles(), "")
	lines := render(t, metard.NewTSV(fs.Names(), batch))
	assert.Equal(t, []string{
		"fileName\tX\tY",
		"a\t1\t",
		"b\t\t22",
	}, lines)
}

func TestTSVOneValuePerField(t *testing.T) {
	t.Parallel()
	records := []metard.Record{
		metard.RecordOf("fileName", "a", "Time", "12:30:00"),
		metard.RecordOf("fileName", "b", "Note", "has | pipe"),
	}
	fs, batch := metard.Normalize(records, "")
	lines := render(t, metard.NewTSV(fs.Names(), batch))
	header := strings.Split(lines[0], "\t")
	for i, line := range lines[1:] {
		values := strings.Split(line, "\t")
		require.Len(t, values, len(header))
		for j, name := range header {
			assert.Equal(t, batch[i].Get(name), values[j])
		}
	}
}

func TestTSVEmptyFieldSet(t *testing.T) {
	t.Parallel()
	lines := render(t, metard.NewTSV(nil, nil))
	assert.Equal(t, []string{""}, lines)
}

func TestTSVMissingField(t *testing.T) {
	t.Parallel()
	_, err := metard.NewTSV([]string{"fileName", "Y"}, twoFiles()).Lines()
	assert.ErrorIs(t, err, metard.ErrMissingField)
}

func TestFieldList(t *testing.T) {
	t.Parallel()
	rec := metard.RecordOf("fileName", "story.lgst", "Title", "Foo", "Author", "Bob")
	lines := render(t, metard.NewFieldList(rec, 80))
	assert.Equal(t, []string{
		"fileName: story.lgst",
		"Title   : Foo",
		"Author  : Bob",
	}, lines)
}

func TestFieldListClipped(t *testing.T) {
	t.Parallel()
	rec := metard.RecordOf("fileName", "story.lgst", "Summary", "abcdefghij")
	tests := map[string]struct {
		width int
		want  []string
	}{
		"fits":            {width: 40, want: []string{"fileName: story.lgst", "Summary : abcdefghij"}},
		"clips value":     {width: 14, want: []string{"fileName: story", "Summary : abcde"}},
		"narrower":        {width: 5, want: []string{"fileName: ", "Summary : "}},
		"exactly names+1": {width: 9, want: []string{"fileName: ", "Summary : "}},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, render(t, metard.NewFieldList(rec, tc.width)))
		})
	}
}

func TestFieldListKeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()
	rec := metard.NewRecord("a.lgst")
	rec.Set("Z", "1")
	rec.Set("A", "2")
	rec.Set("Z", "3")
	lines := render(t, metard.NewFieldList(rec, 80))
	assert.Equal(t, []string{"fileName: a.lgst", "Z       : 3", "A       : 2"}, lines)
}

func TestNewRenderer(t *testing.T) {
	t.Parallel()
	fs, batch := metard.Normalize(twoFiles(), "")
	cfg := metard.DefaultConfig()

	tests := map[string]struct {
		format metard.Format
		want   []string
	}{
		"table": {format: metard.Table, want: []string{
			"fileName | X | Y ",
			"-----------------",
			"a        | 1 |   ",
			"b        |   | 22",
		}},
		"tsv": {format: metard.TSV, want: []string{"fileName\tX\tY", "a\t1\t", "b\t\t22"}},
		"json": {format: metard.JSON, want: []string{
			"[",
			"  {",
			`    "fileName": "a",`,
			`    "X": "1",`,
			`    "Y": ""`,
			"  },",
			"  {",
			`    "fileName": "b",`,
			`    "Y": "22",`,
			`    "X": ""`,
			"  }",
			"]",
		}},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r, err := metard.NewRenderer(tc.format, fs, batch, cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.want, render(t, r))
		})
	}
}

func TestNewRendererJSONKeepsHTML(t *testing.T) {
	t.Parallel()
	batch := []metard.Record{metard.RecordOf("fileName", "a&b.lgst", "<Title>", "a<b>&c")}
	fs := metard.Aggregate(batch...)
	r, err := metard.NewRenderer(metard.JSON, fs, batch, metard.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"[",
		"  {",
		`    "fileName": "a&b.lgst",`,
		`    "<Title>": "a<b>&c"`,
		"  }",
		"]",
	}, render(t, r))
}

func TestRecordMarshalJSONKeepsHTML(t *testing.T) {
	t.Parallel()
	data, err := metard.RecordOf("fileName", "a", "Q", `a<b>&c "x"`).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"fileName":"a","Q":"a<b>&c \"x\""}`, string(data))
}

func TestNewRendererYAML(t *testing.T) {
	t.Parallel()
	fs, batch := metard.Normalize(twoFiles(), "")
	r, err := metard.NewRenderer(metard.YAML, fs, batch, metard.DefaultConfig())
	require.NoError(t, err)
	lines := render(t, r)
	assert.Equal(t, "- fileName: a", lines[0])

	var got []map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &got))
	assert.Equal(t, []map[string]string{
		{"fileName": "a", "X": "1", "Y": ""},
		{"fileName": "b", "X": "", "Y": "22"},
	}, got)
}

func TestNewRendererEmptyBatch(t *testing.T) {
	t.Parallel()
	for _, f := range []metard.Format{metard.JSON, metard.YAML} {
		r, err := metard.NewRenderer(f, metard.FieldSet{}, nil, metard.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, []string{"[]"}, render(t, r), f.String())
	}
}

func TestNewRendererUnsupported(t *testing.T) {
	t.Parallel()
	_, err := metard.NewRenderer("html", metard.FieldSet{}, nil, metard.DefaultConfig())
	assert.ErrorIs(t, err, metard.ErrUnsupportedFormat)
}

func TestWrite(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := metard.Write(&buf, staticRenderer{lines: []string{"one", "", "three"}})
	require.NoError(t, err)
	assert.Equal(t, "one\n\nthree\n", buf.String())
}

func TestWriteErrors(t *testing.T) {
	t.Parallel()
	renderErr := errors.New("render failed")
	err := metard.Write(&bytes.Buffer{}, staticRenderer{err: renderErr})
	assert.ErrorIs(t, err, renderErr)

	err = metard.Write(&errWriter{}, staticRenderer{lines: []string{"x"}})
	assert.ErrorIs(t, err, errWriteFailed)
}

func TestMarshal(t *testing.T) {
	t.Parallel()
	fs, batch := metard.Normalize(twoFiles(), "")
	data, err := metard.Marshal(metard.NewTSV(fs.Names(), batch))
	require.NoError(t, err)
	assert.Equal(t, "fileName\tX\tY\na\t1\t\nb\t\t22\n", string(data))
}

func TestMarshalError(t *testing.T) {
	t.Parallel()
	_, err := metard.Marshal(metard.NewTSV([]string{"missing"}, twoFiles()))
	assert.ErrorIs(t, err, metard.ErrMissingField)
}

func TestRecord(t *testing.T) {
	t.Parallel()
	rec := metard.NewRecord("a.lgst")
	rec.Set("Title", "Foo")

	assert.Equal(t, "a.lgst", rec.FileName())
	assert.Equal(t, []string{"fileName", "Title"}, rec.Keys())
	v, ok := rec.Lookup("Title")
	assert.True(t, ok)
	assert.Equal(t, "Foo", v)
	_, ok = rec.Lookup("Author")
	assert.False(t, ok)
	assert.Equal(t, "", rec.Get("Author"))

	clone := rec.Clone()
	clone.Set("Author", "Bob")
	assert.False(t, rec.Has("Author"))
	assert.False(t, rec.Equal(clone))
}

func TestRecordOfOddPairs(t *testing.T) {
	t.Parallel()
	rec := metard.RecordOf("fileName", "a", "Flag")
	assert.Equal(t, map[string]string{"fileName": "a", "Flag": ""}, rec.Map())
}

func TestZeroRecordSet(t *testing.T) {
	t.Parallel()
	var rec metard.Record
	rec.Set("k", "v")
	assert.Equal(t, "v", rec.Get("k"))
}
