package metard

import "log/slog"

// Option configures a [Reader].
//
// Example:
//
//	r, err := metard.NewReader(cfg,
//	    metard.WithCache(256),
//	    metard.WithLogger(slog.Default()),
//	)
type Option func(*readerOptions)

type readerOptions struct {
	transliterate Transliterator
	cacheSize     int // 0 = no cache
	logger        *slog.Logger
}

func defaultOptions() *readerOptions {
	return &readerOptions{
		transliterate: Transliterate,
	}
}

// WithTransliterator replaces the default glyph mapping applied to every
// line before it is parsed. Passing nil disables transliteration; lines are
// still NFC-composed.
func WithTransliterator(t Transliterator) Option {
	return func(o *readerOptions) {
		o.transliterate = t
	}
}

// WithCache keeps up to size extracted records in memory. A file is parsed
// again only when its size or modification time changes.
//
// Use this when a long-lived Reader re-reads the same directory.
func WithCache(size int) Option {
	return func(o *readerOptions) {
		o.cacheSize = size
	}
}

// WithLogger sets the logger for per-file debug output. By default the
// Reader does not log.
func WithLogger(l *slog.Logger) Option {
	return func(o *readerOptions) {
		o.logger = l
	}
}
