package lexer

import (
	"testing"

	"quartz/internal/source"
	"quartz/internal/token"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.qz", []byte(src))
	strs := source.NewInterner()
	lx := New(fs.Get(id), strs, nil)
	var out []token.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestLexTemplateArgumentList(t *testing.T) {
	toks := lexAll(t, "Box<int*, 4>")
	want := []token.Kind{
		token.Ident, token.Lt, token.Ident, token.Star,
		token.Comma, token.Int, token.Gt, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("token count = %d, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("tok[%d].Kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestNestedAnglesNotFused(t *testing.T) {
	toks := lexAll(t, "Box<Box<int>>")
	gts := 0
	for _, tok := range toks {
		if tok.Kind == token.Gt {
			gts++
		}
		if tok.Kind == token.Shr {
			t.Fatalf("'>>' must lex as two '>' tokens")
		}
	}
	if gts != 2 {
		t.Fatalf("got %d '>' tokens, want 2", gts)
	}
}

func TestEllipsisAndFoldOperators(t *testing.T) {
	toks := lexAll(t, "(args + ...)")
	want := []token.Kind{
		token.LParen, token.Ident, token.Plus, token.Ellipsis, token.RParen, token.EOF,
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("tok[%d].Kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestStreamSaveRestore(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.qz", []byte("a b c"))
	strs := source.NewInterner()
	s := NewStream(fs.Get(id), strs, nil)

	s.Next()
	save := s.Save()
	s.Next()
	s.Next()
	s.Restore(save)
	got := s.Peek()
	if name, _ := strs.Lookup(got.Text); name != "b" {
		t.Fatalf("after restore, Peek = %q, want b", name)
	}
}

func TestStreamAtSubRange(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("ignored { x + 1 } ignored")
	id := fs.AddVirtual("t.qz", content)
	strs := source.NewInterner()
	span := source.Span{File: id, Start: 10, End: 15} // "x + 1"
	s := NewStreamAt(fs.Get(id), span, strs, nil)
	first := s.Next()
	if name, _ := strs.Lookup(first.Text); name != "x" {
		t.Fatalf("sub-range lexing starts at %q, want x", name)
	}
}

func TestLineCommentsSkipped(t *testing.T) {
	toks := lexAll(t, "a // comment\nb /* block */ c")
	idents := 0
	for _, tok := range toks {
		if tok.Kind == token.Ident {
			idents++
		}
	}
	if idents != 3 {
		t.Fatalf("got %d idents, want 3", idents)
	}
}
