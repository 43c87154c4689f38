package lexer

import (
	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/token"
)

// Stream lexes a file range eagerly and serves tokens through a cursor that
// supports the save/restore/discard contract used by speculative parsing.
// Restoring a saved position rewinds the stream with no observable side
// effect; discarding simply forgets the save point.
type Stream struct {
	toks []token.Token
	pos  int
}

// NewStream lexes the whole file.
func NewStream(f *source.File, strings *source.Interner, reporter diag.Reporter) *Stream {
	return newStream(New(f, strings, reporter))
}

// NewStreamAt lexes only the byte range of span (a saved body position).
func NewStreamAt(f *source.File, span source.Span, strings *source.Interner, reporter diag.Reporter) *Stream {
	return newStream(NewAt(f, span, strings, reporter))
}

func newStream(lx *Lexer) *Stream {
	s := &Stream{}
	for {
		t := lx.Next()
		s.toks = append(s.toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return s
}

// Pos is a saved stream position.
type Pos int

func (s *Stream) Save() Pos {
	return Pos(s.pos)
}

func (s *Stream) Restore(p Pos) {
	s.pos = int(p)
}

// Discard is a no-op kept for contract symmetry: a successful speculative
// parse abandons its save point instead of restoring it.
func (s *Stream) Discard(Pos) {}

// Peek returns the current token without consuming it.
func (s *Stream) Peek() token.Token {
	return s.toks[s.index(s.pos)]
}

// PeekAt returns the token n positions ahead.
func (s *Stream) PeekAt(n int) token.Token {
	return s.toks[s.index(s.pos+n)]
}

// Next consumes and returns the current token.
func (s *Stream) Next() token.Token {
	t := s.toks[s.index(s.pos)]
	if t.Kind != token.EOF {
		s.pos++
	}
	return t
}

// Eat consumes the current token when it has the wanted kind.
func (s *Stream) Eat(kind token.Kind) (token.Token, bool) {
	t := s.Peek()
	if t.Kind != kind {
		return token.Token{}, false
	}
	return s.Next(), true
}

func (s *Stream) index(i int) int {
	if i >= len(s.toks) {
		return len(s.toks) - 1
	}
	return i
}
