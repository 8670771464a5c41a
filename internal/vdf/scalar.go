package vdf

import (
	"fmt"
	"strings"
)

// Span is the byte range [Start, End) of a value's text, excluding quotes.
type Span struct {
	Start int
	End   int
}

// Locate finds the scalar "key" "value" pair that is a direct child of b and
// returns the span of the value text. A same-named key in a nested block is
// never matched, nor is a key that opens a block.
func Locate(doc string, b Block, key string) (Span, bool, error) {
	entry, ok, _, err := child(doc, b, key, false)
	if err != nil || !ok {
		return Span{}, false, err
	}

	return Span{Start: entry.Value.Pos + 1, End: entry.Value.End - 1}, true, nil
}

// Read returns the raw value of the scalar key directly inside b. Escape
// sequences are returned as written. Structural errors are reported as
// absent; use [Locate] to tell them apart.
func Read(doc string, b Block, key string) (string, bool) {
	span, ok, err := Locate(doc, b, key)
	if err != nil || !ok {
		return "", false
	}

	return doc[span.Start:span.End], true
}

// Write sets key to value inside b and returns the new document.
//
// If the key exists only the bytes between its quotes are replaced. If it
// is absent a new line is inserted right after the block's opening brace:
//
//	<Depth+1 tabs>"key"		"value"
//
// value is stored verbatim. It must already be escaped: it may not contain
// an unescaped '"', a line break, or end in a lone backslash.
func Write(doc string, b Block, key, value string) (string, error) {
	if err := validateValue(value); err != nil {
		return "", fmt.Errorf("writing %q: %w", key, err)
	}

	entry, ok, shadowed, err := child(doc, b, key, false)
	if err != nil {
		return "", fmt.Errorf("writing %q: %w", key, err)
	}

	if ok {
		start, end := entry.Value.Pos+1, entry.Value.End-1

		return doc[:start] + value + doc[end:], nil
	}

	if shadowed {
		return "", fmt.Errorf("writing %q: %w", key, ErrNotScalar)
	}

	if b.IsRoot() {
		return "", fmt.Errorf("writing %q: %w", key, ErrRootBlock)
	}

	return insertScalar(doc, b, key, value), nil
}

// insertScalar adds a new pair on its own line after b's opening brace,
// following the line ending the document already uses.
func insertScalar(doc string, b Block, key, value string) string {
	indent := strings.Repeat(IndentUnit, b.Depth+1)
	line := indent + `"` + key + `"` + IndentUnit + IndentUnit + `"` + value + `"`

	after := doc[b.Start+1:]

	switch {
	case strings.HasPrefix(after, "\r\n"):
		at := b.Start + 3
		return doc[:at] + line + "\r\n" + doc[at:]
	case strings.HasPrefix(after, "\n"):
		at := b.Start + 2
		return doc[:at] + line + "\n" + doc[at:]
	default:
		// "{" shares its line with other tokens; break it.
		at := b.Start + 1
		return doc[:at] + "\n" + line + "\n" + doc[at:]
	}
}

func validateValue(value string) error {
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '\\':
			if i == len(value)-1 {
				return fmt.Errorf("%w: trailing backslash", ErrInvalidValue)
			}

			if next := value[i+1]; next == '\n' || next == '\r' {
				return fmt.Errorf("%w: line break", ErrInvalidValue)
			}

			i++
		case '"':
			return fmt.Errorf("%w: unescaped quote at %d", ErrInvalidValue, i)
		case '\n', '\r':
			return fmt.Errorf("%w: line break", ErrInvalidValue)
		}
	}

	return nil
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)

// Escape prepares s for storage as a value using KeyValues escapes:
// backslash, double quote, newline and tab.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses [Escape]. Unknown escapes yield the escaped byte.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			i++

			switch s[i] {
			case 'n':
				c = '\n'
			case 't':
				c = '\t'
			default:
				c = s[i]
			}
		}

		sb.WriteByte(c)
	}

	return sb.String()
}
