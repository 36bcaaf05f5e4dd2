package metard

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Transliterator maps foreign glyphs in a line to their Latin equivalents.
// It must be pure and must leave the divider and punctuation alone.
type Transliterator func(string) string

// NormalizeLine returns line in NFC form with t applied. A nil t only
// composes.
func NormalizeLine(line string, t Transliterator) string {
	s := norm.NFC.String(line)
	if t == nil {
		return s
	}
	return t(s)
}

// Transliterate is the default [Transliterator]. Every Unicode decimal digit
// becomes its ASCII digit and fullwidth Latin letters become ASCII letters.
// Anything else, including fullwidth punctuation, is returned unchanged.
func Transliterate(s string) string {
	return strings.Map(latinRune, s)
}

func latinRune(r rune) rune {
	if r < 0x80 {
		return r
	}
	if d, ok := digitValue(r); ok {
		return '0' + rune(d)
	}
	if unicode.IsLetter(r) {
		p := width.LookupRune(r)
		if p.Kind() == width.EastAsianFullwidth {
			if n := p.Narrow(); n != 0 && n < 0x80 {
				return n
			}
		}
	}
	return r
}

// digitValue relies on Nd code points being allocated in contiguous runs
// of ten starting at zero.
func digitValue(r rune) (int, bool) {
	if !unicode.Is(unicode.Nd, r) {
		return 0, false
	}
	start := r
	for unicode.Is(unicode.Nd, start-1) {
		start--
	}
	return int(r-start) % 10, true
}
