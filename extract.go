package metard

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a header line. Lines after the terminator are not
// buffered whole and have no limit.
const maxLineSize = 16 << 20

// Reader extracts metadata records from files.
type Reader struct {
	cfg           Config
	transliterate Transliterator
	cache         *recordCache
	logger        *slog.Logger
}

// NewReader returns a Reader for cfg. It fails if cfg is invalid.
func NewReader(cfg Config, opts ...Option) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	r := &Reader{cfg: cfg, transliterate: o.transliterate, logger: o.logger}
	if o.cacheSize > 0 {
		c, err := newRecordCache(o.cacheSize)
		if err != nil {
			return nil, err
		}
		r.cache = c
	}
	return r, nil
}

// Config returns the configuration the Reader was built with.
func (r *Reader) Config() Config { return r.cfg }

// Read extracts the record of the file at path.
func (r *Reader) Read(path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()

	var key cacheKey
	if r.cache != nil {
		info, err := f.Stat()
		if err != nil {
			return Record{}, err
		}
		key = keyFor(path, info)
		if rec, ok := r.cache.get(key); ok {
			r.debug("cache hit", "path", path)
			return rec, nil
		}
	}

	rec, err := Parse(filepath.Base(path), f, r.cfg, r.transliterate)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", path, err)
	}
	if r.cache != nil {
		r.cache.add(key, rec)
	}
	r.debug("extracted", "path", path, "fields", rec.Len())
	return rec, nil
}

// ReadAll extracts every path, running at most Config.Jobs reads at once.
// Records come back in the order of paths. The first failure cancels the
// remaining reads and is returned; no partial batch is produced.
func (r *Reader) ReadAll(ctx context.Context, paths []string) ([]Record, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Jobs)

	results := make([]Record, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := r.Read(path)
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// LoadNormalized extracts every target file in dir and back-fills the
// records against their combined field set.
func (r *Reader) LoadNormalized(ctx context.Context, dir string) (FieldSet, []Record, error) {
	paths, err := Discover(dir, r.cfg.Suffix)
	if err != nil {
		return FieldSet{}, nil, err
	}
	r.debug("discovered", "dir", dir, "files", len(paths))
	records, err := r.ReadAll(ctx, paths)
	if err != nil {
		return FieldSet{}, nil, err
	}
	fs, batch := Normalize(records, r.cfg.Undefined)
	return fs, batch, nil
}

func (r *Reader) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

// Parse extracts a record from src. name becomes the fileName field. Lines
// are read up to and including the first terminator line; the rest of src is
// only checked for valid UTF-8, however long its lines are.
func Parse(name string, src io.Reader, cfg Config, t Transliterator) (Record, error) {
	rec := NewRecord(name)
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	done := false
	sc.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		if done && len(data) > 0 {
			return len(data), data, nil
		}
		return scanLines(data, atEOF)
	})

	var body utf8Checker
	n := 0
	for sc.Scan() {
		if done {
			if _, err := body.Write(sc.Bytes()); err != nil {
				return Record{}, fmt.Errorf("%w: text after line %d", ErrInvalidEncoding, n)
			}
			continue
		}
		n++
		raw := sc.Text()
		if !utf8.ValidString(raw) {
			return Record{}, fmt.Errorf("%w: line %d is not valid UTF-8", ErrInvalidEncoding, n)
		}
		if n == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		if label, value, ok := parseLine(NormalizeLine(raw, t), cfg.Divider); ok {
			rec.Set(label, value)
		}
		done = isTerminator(raw, cfg.Divider, cfg.Terminator)
	}
	if err := sc.Err(); err != nil {
		return Record{}, err
	}
	if err := body.Close(); err != nil {
		return Record{}, fmt.Errorf("%w: text after line %d", ErrInvalidEncoding, n)
	}
	return rec, nil
}

var errBadUTF8 = errors.New("not valid UTF-8")

// utf8Checker validates a byte stream as UTF-8. A rune split across two
// writes is held back until the rest of it arrives.
type utf8Checker struct {
	tail []byte
}

func (c *utf8Checker) Write(p []byte) (int, error) {
	n := len(p)
	for len(c.tail) > 0 && len(p) > 0 {
		c.tail = append(c.tail, p[0])
		p = p[1:]
		if utf8.FullRune(c.tail) {
			if r, size := utf8.DecodeRune(c.tail); r == utf8.RuneError && size <= 1 {
				return 0, errBadUTF8
			}
			c.tail = c.tail[:0]
		}
	}
	cut := len(p)
	for i := len(p) - 1; i >= 0 && i > len(p)-utf8.UTFMax; i-- {
		if utf8.RuneStart(p[i]) {
			if !utf8.FullRune(p[i:]) {
				cut = i
			}
			break
		}
	}
	if !utf8.Valid(p[:cut]) {
		return 0, errBadUTF8
	}
	c.tail = append(c.tail, p[cut:]...)
	return n, nil
}

// Close reports a rune left incomplete at the end of the stream.
func (c *utf8Checker) Close() error {
	if len(c.tail) > 0 {
		return errBadUTF8
	}
	return nil
}

// parseLine splits on every divider; divider characters inside the value
// are put back when the remaining parts are rejoined.
func parseLine(line, divider string) (label, value string, ok bool) {
	parts := strings.Split(strings.TrimSpace(line), divider)
	label = strings.TrimSpace(parts[0])
	if label == "" {
		return "", "", false
	}
	return label, strings.TrimSpace(strings.Join(parts[1:], divider)), true
}

func isTerminator(raw, divider, terminator string) bool {
	if terminator == "" {
		return false
	}
	first, _, _ := strings.Cut(raw, divider)
	return strings.ToLower(strings.TrimSpace(first)) == strings.ToLower(terminator)
}

// scanLines ends lines at "\n", "\r\n" or a lone "\r".
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
