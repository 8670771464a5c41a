// Package vdf locates and rewrites single values inside Valve KeyValues
// text documents (localconfig.vdf and friends) without parsing them into a
// tree.
//
// The format it understands:
//
//	"UserLocalConfigStore"
//	{
//		"apps"
//		{
//			"2357570"
//			{
//				"LaunchOptions"		"--lobbyMap=0x0800000000000D95"
//			}
//		}
//	}
//
// Keys and values are double-quoted. A backslash inside quotes escapes the
// next byte. Blocks are delimited by braces and children are tab-indented.
// Anything else outside quotes (whitespace, stray bytes) is skipped.
//
// All operations work on byte offsets into the original string and return
// new strings; a document is never modified in place. Only the bytes of the
// targeted value change on write, so everything else round-trips
// byte-for-byte.
package vdf

import "fmt"

// TokenKind identifies what the [Scanner] found.
type TokenKind uint8

// TokenKind values.
const (
	TokenEOF TokenKind = iota
	TokenString
	TokenOpen
	TokenClose
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of document"
	case TokenString:
		return "string"
	case TokenOpen:
		return "'{'"
	case TokenClose:
		return "'}'"
	default:
		return fmt.Sprintf("TokenKind(%d)", k)
	}
}

// Token is a lexical unit with its byte range [Pos, End) in the document.
// For strings the range includes both quotes.
type Token struct {
	Kind TokenKind
	Pos  int
	End  int
}

// Text returns the raw bytes between the quotes of a string token, escapes
// left as written. For other kinds it returns the token bytes.
func (t Token) Text(doc string) string {
	if t.Kind == TokenString {
		return doc[t.Pos+1 : t.End-1]
	}

	return doc[t.Pos:t.End]
}

type scanState uint8

const (
	stateNormal scanState = iota
	stateInQuotes
)

// Scanner is a two-state machine (normal / in quotes) over a byte cursor.
// Braces only count in the normal state, so a value like "a{b}c" never
// changes nesting depth.
//
// A Scanner must start at a token boundary: an offset that is not inside a
// quoted string.
type Scanner struct {
	doc      string
	pos      int
	state    scanState
	tokStart int
}

// NewScanner returns a scanner positioned at offset.
func NewScanner(doc string, offset int) *Scanner {
	return &Scanner{doc: doc, pos: min(max(offset, 0), len(doc))}
}

// Offset returns the cursor position.
func (s *Scanner) Offset() int {
	return s.pos
}

// Next returns the next token. At the end of the document it returns a
// [TokenEOF] token; an unterminated string is [ErrMalformed].
func (s *Scanner) Next() (Token, error) {
	for s.pos < len(s.doc) {
		c := s.doc[s.pos]

		switch s.state {
		case stateNormal:
			switch c {
			case '"':
				s.state = stateInQuotes
				s.tokStart = s.pos
				s.pos++
			case '{':
				s.pos++
				return Token{Kind: TokenOpen, Pos: s.pos - 1, End: s.pos}, nil
			case '}':
				s.pos++
				return Token{Kind: TokenClose, Pos: s.pos - 1, End: s.pos}, nil
			default:
				s.pos++
			}

		case stateInQuotes:
			switch c {
			case '\\':
				s.pos = min(s.pos+2, len(s.doc))
			case '"':
				s.pos++
				s.state = stateNormal

				return Token{Kind: TokenString, Pos: s.tokStart, End: s.pos}, nil
			default:
				s.pos++
			}
		}
	}

	if s.state == stateInQuotes {
		return Token{}, fmt.Errorf("%w: unterminated string at offset %d", ErrMalformed, s.tokStart)
	}

	return Token{Kind: TokenEOF, Pos: len(s.doc), End: len(s.doc)}, nil
}

// skipBlock consumes tokens up to the '}' matching open, which must be the
// token just returned by Next.
func (s *Scanner) skipBlock(open Token) (Block, error) {
	depth := 1

	for {
		tok, err := s.Next()
		if err != nil {
			return Block{}, err
		}

		switch tok.Kind {
		case TokenOpen:
			depth++
		case TokenClose:
			depth--
			if depth == 0 {
				return Block{Start: open.Pos, End: tok.End, Depth: LineDepth(s.doc, open.Pos)}, nil
			}
		case TokenEOF:
			return Block{}, fmt.Errorf("%w: '{' at offset %d is never closed", ErrMalformed, open.Pos)
		case TokenString:
		}
	}
}
