package vdf

import (
	"fmt"
	"strings"
)

// KeyPath is an ordered chain of keys from the top of a document down to a
// target block, e.g. UserLocalConfigStore/Software/Valve/Steam/apps/<id>.
type KeyPath []string

func (p KeyPath) String() string {
	return strings.Join(p, "/")
}

// Append returns a new path with keys added. p is not modified.
func (p KeyPath) Append(keys ...string) KeyPath {
	out := make(KeyPath, 0, len(p)+len(keys))
	out = append(out, p...)

	return append(out, keys...)
}

// FindKey returns the offset of the opening quote of the first "key" in
// key position within [start, end), at any nesting depth. Values that happen
// to equal key are skipped, as are longer keys containing it.
//
// start must be a token boundary.
func FindKey(doc, key string, start, end int) (int, bool, error) {
	end = min(end, len(doc))
	s := NewScanner(doc, start)
	expectKey := true

	for {
		tok, err := s.Next()
		if err != nil {
			return 0, false, err
		}

		if tok.Kind == TokenEOF || tok.End > end {
			return 0, false, nil
		}

		switch tok.Kind {
		case TokenString:
			if expectKey && tok.Text(doc) == key {
				return tok.Pos, true, nil
			}

			expectKey = !expectKey
		case TokenOpen, TokenClose:
			expectKey = true
		case TokenEOF:
		}
	}
}

// Navigate follows path from the document root, one direct child block per
// key, using brace matching only.
//
// It returns (block, true, nil) when every key resolves. When only the last
// key is missing it returns ok=false and a nil error: the target simply does
// not exist. A missing earlier key is [ErrMissingAncestor], since it means
// the document does not have the expected shape.
func Navigate(doc string, path KeyPath) (Block, bool, error) {
	return NavigateFrom(doc, Root(doc), path)
}

// NavigateFrom is [Navigate] starting at from instead of the document root.
func NavigateFrom(doc string, from Block, path KeyPath) (Block, bool, error) {
	if len(path) == 0 {
		return Block{}, false, fmt.Errorf("%w: empty key path", ErrNotFound)
	}

	current := from

	for i, key := range path {
		entry, ok, _, err := child(doc, current, key, true)
		if err != nil {
			return Block{}, false, fmt.Errorf("navigating to %q: %w", key, err)
		}

		if !ok {
			if i == len(path)-1 {
				return Block{}, false, nil
			}

			return Block{}, false, fmt.Errorf("%w: %q (path %s)", ErrMissingAncestor, key, path[:i+1])
		}

		current = *entry.Block
	}

	return current, true, nil
}

// NavigateIndented follows path the way Steam lays files out: for each key
// it takes the first occurrence in the current window, then looks for the
// next line made of exactly the brace line's tabs followed by '}'.
//
// The indentation result is only trusted after brace matching confirms it.
// If the two disagree the document's indentation is inconsistent and the
// error wraps [ErrMalformed]. Missing keys behave as in [Navigate].
func NavigateIndented(doc string, path KeyPath) (Block, bool, error) {
	if len(path) == 0 {
		return Block{}, false, fmt.Errorf("%w: empty key path", ErrNotFound)
	}

	start, end := 0, len(doc)

	var blk Block

	for i, key := range path {
		pos, ok, err := FindKey(doc, key, start, end)
		if err != nil {
			return Block{}, false, fmt.Errorf("navigating to %q: %w", key, err)
		}

		if !ok {
			if i == len(path)-1 {
				return Block{}, false, nil
			}

			return Block{}, false, fmt.Errorf("%w: %q (path %s)", ErrMissingAncestor, key, path[:i+1])
		}

		blk, err = indentedBlock(doc, key, pos)
		if err != nil {
			return Block{}, false, err
		}

		start, end = blk.interiorStart(), blk.End-1
	}

	return blk, true, nil
}

func indentedBlock(doc, key string, keyPos int) (Block, error) {
	balanced, err := MatchBlock(doc, keyPos)
	if err != nil {
		return Block{}, fmt.Errorf("block for %q: %w", key, err)
	}

	closing := "\n" + strings.Repeat(IndentUnit, balanced.Depth) + "}"

	idx := strings.Index(doc[balanced.Start+1:], closing)
	if idx < 0 {
		return Block{}, fmt.Errorf("%w: no closing brace at depth %d for %q", ErrMalformed, balanced.Depth, key)
	}

	end := balanced.Start + 1 + idx + len(closing)
	if end != balanced.End {
		return Block{}, fmt.Errorf("%w: indentation of %q ends at offset %d but braces end at %d",
			ErrMalformed, key, end, balanced.End)
	}

	return balanced, nil
}
