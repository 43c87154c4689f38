package token

import (
	"quartz/internal/source"
)

type Kind uint8

const (
	EOF Kind = iota
	Invalid
	Ident
	Int
	String

	// Keywords.
	KwTrue
	KwFalse
	KwConst
	KwVolatile
	KwSizeof
	KwReturn
	KwIf
	KwElse
	KwWhile
	KwRequires

	// Punctuation and operators.
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Lt
	Gt
	Le
	Ge
	Shl
	Shr
	Comma
	Semicolon
	Colon
	ColonColon
	Dot
	Arrow
	Ellipsis
	Star
	Amp
	AmpAmp
	Pipe
	PipePipe
	Caret
	Plus
	Minus
	Slash
	Percent
	Bang
	Tilde
	Assign
	Eq
	Ne
)

// Token is one lexed token. Text is interned for identifiers and strings;
// IntVal carries the value of integer literals.
type Token struct {
	Kind   Kind
	Span   source.Span
	Text   source.StringID
	IntVal int64
}

var keywords = map[string]Kind{
	"true":     KwTrue,
	"false":    KwFalse,
	"const":    KwConst,
	"volatile": KwVolatile,
	"sizeof":   KwSizeof,
	"return":   KwReturn,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"requires": KwRequires,
}

// KeywordKind returns the keyword kind for s, if s is a keyword.
func KeywordKind(s string) (Kind, bool) {
	k, ok := keywords[s]
	return k, ok
}
