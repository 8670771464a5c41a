package steam

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ChangeRecord lists the lines that differ between two versions of a
// document, line endings stripped.
type ChangeRecord struct {
	Removed []string
	Added   []string
}

// Empty reports whether the two documents were identical line by line.
func (c ChangeRecord) Empty() bool {
	return len(c.Removed) == 0 && len(c.Added) == 0
}

// Diff compares before and after line by line. Only the window between the
// longest shared head and tail is handed to the matcher.
func Diff(before, after string) ChangeRecord {
	a := difflib.SplitLines(before)
	b := difflib.SplitLines(after)

	head := 0
	for head < len(a) && head < len(b) && a[head] == b[head] {
		head++
	}

	tail := 0
	for tail < len(a)-head && tail < len(b)-head && a[len(a)-1-tail] == b[len(b)-1-tail] {
		tail++
	}

	a, b = a[head:len(a)-tail], b[head:len(b)-tail]

	var rec ChangeRecord

	if len(a) == 0 || len(b) == 0 {
		rec.Removed = appendLines(rec.Removed, a)
		rec.Added = appendLines(rec.Added, b)

		return rec
	}

	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'r':
			rec.Removed = appendLines(rec.Removed, a[op.I1:op.I2])
			rec.Added = appendLines(rec.Added, b[op.J1:op.J2])
		case 'd':
			rec.Removed = appendLines(rec.Removed, a[op.I1:op.I2])
		case 'i':
			rec.Added = appendLines(rec.Added, b[op.J1:op.J2])
		}
	}

	return rec
}

func appendLines(dst, lines []string) []string {
	for _, l := range lines {
		dst = append(dst, strings.TrimRight(l, "\r\n"))
	}

	return dst
}

// Verify accepts a change only if it touches at most one line on each side
// and every touched line holds the quoted key.
func (c ChangeRecord) Verify(key string) error {
	if len(c.Removed) > 1 || len(c.Added) > 1 {
		return fmt.Errorf("%w: %d lines removed and %d added, want at most one each",
			ErrUnsafeDiff, len(c.Removed), len(c.Added))
	}

	quoted := `"` + key + `"`

	for _, l := range c.Removed {
		if !strings.Contains(l, quoted) {
			return fmt.Errorf("%w: removed line %q does not hold %s", ErrUnsafeDiff, l, quoted)
		}
	}

	for _, l := range c.Added {
		if !strings.Contains(l, quoted) {
			return fmt.Errorf("%w: added line %q does not hold %s", ErrUnsafeDiff, l, quoted)
		}
	}

	return nil
}
