package vdf

import (
	"fmt"
	"strings"
)

// IndentUnit is one level of indentation in Steam-written documents.
const IndentUnit = "\t"

// Block is the half-open byte range [Start, End) of one brace-delimited
// block: Start is the offset of '{' and End is one past the matching '}'.
//
// Depth is the number of leading tabs on the line holding the opening
// brace. Steam puts the brace on its own line at the key's indentation, so
// this is also the key's depth.
type Block struct {
	Start int
	End   int
	Depth int
}

// Root returns a pseudo-block covering the whole document. Its children are
// the top-level keys. Root has no braces, so nothing can be inserted into it.
func Root(doc string) Block {
	return Block{Start: -1, End: len(doc), Depth: -1}
}

// IsRoot reports whether b was returned by [Root].
func (b Block) IsRoot() bool {
	return b.Start < 0
}

// Body returns the block interior, without the braces.
func (b Block) Body(doc string) string {
	if b.IsRoot() {
		return doc
	}

	return doc[b.Start+1 : b.End-1]
}

// Text returns the block including its braces.
func (b Block) Text(doc string) string {
	if b.IsRoot() {
		return doc
	}

	return doc[b.Start:b.End]
}

func (b Block) interiorStart() int {
	return b.Start + 1
}

// LineDepth returns the number of leading tabs on the line containing offset.
func LineDepth(doc string, offset int) int {
	offset = min(max(offset, 0), len(doc))
	lineStart := strings.LastIndexByte(doc[:offset], '\n') + 1

	depth := 0
	for lineStart+depth < len(doc) && doc[lineStart+depth] == '\t' {
		depth++
	}

	return depth
}

// MatchBlock finds the first '{' at or after from (outside quotes) and
// returns the block it opens, counting braces until the depth returns to
// zero. It does not look at indentation.
//
// from must be a token boundary, typically the offset of the key's opening
// quote. Returns [ErrNotFound] if no '{' follows, or [ErrMalformed] if the
// document ends before the block closes.
func MatchBlock(doc string, from int) (Block, error) {
	s := NewScanner(doc, from)

	for {
		tok, err := s.Next()
		if err != nil {
			return Block{}, err
		}

		switch tok.Kind {
		case TokenOpen:
			return s.skipBlock(tok)
		case TokenEOF:
			return Block{}, fmt.Errorf("%w: no '{' after offset %d", ErrNotFound, from)
		case TokenString, TokenClose:
		}
	}
}

// Entry is one direct child of a block: either a scalar pair
// ("key" "value") or a nested block ("key" { ... }).
type Entry struct {
	Key   Token
	Value Token // set when Block is nil
	Block *Block
}

// Name returns the raw key text.
func (e Entry) Name(doc string) string {
	return e.Key.Text(doc)
}

// IsBlock reports whether the entry opens a nested block.
func (e Entry) IsBlock() bool {
	return e.Block != nil
}

// Children calls fn for every direct child of b, in document order, until
// fn returns false. Nested blocks are skipped over as a whole, so a key
// inside a grandchild is never reported.
func Children(doc string, b Block, fn func(Entry) bool) error {
	start := 0
	if !b.IsRoot() {
		start = b.interiorStart()
	}

	s := NewScanner(doc, start)

	for {
		key, err := s.Next()
		if err != nil {
			return err
		}

		switch key.Kind {
		case TokenEOF:
			if b.IsRoot() {
				return nil
			}

			return fmt.Errorf("%w: block at offset %d is never closed", ErrMalformed, b.Start)
		case TokenClose:
			if b.IsRoot() {
				return fmt.Errorf("%w: unexpected '}' at offset %d", ErrMalformed, key.Pos)
			}

			return nil
		case TokenOpen:
			return fmt.Errorf("%w: '{' without a key at offset %d", ErrMalformed, key.Pos)
		case TokenString:
		}

		val, err := s.Next()
		if err != nil {
			return err
		}

		entry := Entry{Key: key}

		switch val.Kind {
		case TokenString:
			entry.Value = val
		case TokenOpen:
			nested, err := s.skipBlock(val)
			if err != nil {
				return err
			}

			entry.Block = &nested
		case TokenEOF, TokenClose:
			return fmt.Errorf("%w: key %q at offset %d has no value", ErrMalformed, key.Text(doc), key.Pos)
		}

		if !fn(entry) {
			return nil
		}
	}
}

// child returns the first direct child of b named key whose kind matches
// wantBlock. shadowed reports a same-named child of the other kind.
func child(doc string, b Block, key string, wantBlock bool) (found Entry, ok bool, shadowed bool, err error) {
	err = Children(doc, b, func(e Entry) bool {
		if e.Name(doc) != key {
			return true
		}

		if e.IsBlock() != wantBlock {
			shadowed = true
			return true
		}

		found, ok = e, true

		return false
	})
	if err != nil {
		return Entry{}, false, false, err
	}

	return found, ok, shadowed, nil
}

// FindChild returns the offset of the opening quote of key when it is a
// direct child of parent, scalar or block. Keys inside nested blocks are
// not considered.
func FindChild(doc string, parent Block, key string) (int, bool, error) {
	pos, ok := 0, false

	err := Children(doc, parent, func(e Entry) bool {
		if e.Name(doc) != key {
			return true
		}

		pos, ok = e.Key.Pos, true

		return false
	})
	if err != nil {
		return 0, false, err
	}

	return pos, ok, nil
}
