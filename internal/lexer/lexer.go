package lexer

import (
	"strconv"

	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/token"
)

// Lexer scans one file (or a sub-range of one file) into tokens.
type Lexer struct {
	cur      Cursor
	strings  *source.Interner
	reporter diag.Reporter
}

func New(f *source.File, strings *source.Interner, reporter diag.Reporter) *Lexer {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Lexer{cur: NewCursor(f), strings: strings, reporter: reporter}
}

// NewAt scans only the byte range of span; used to re-lex deferred bodies.
func NewAt(f *source.File, span source.Span, strings *source.Interner, reporter diag.Reporter) *Lexer {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Lexer{cur: NewCursorAt(f, span), strings: strings, reporter: reporter}
}

// Next scans and returns the next token.
func (lx *Lexer) Next() token.Token {
	lx.skipTrivia()
	m := lx.cur.Mark()
	if lx.cur.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.cur.SpanFrom(m)}
	}
	b := lx.cur.Bump()
	switch {
	case isIdentStart(b):
		return lx.scanIdent(m)
	case b >= '0' && b <= '9':
		return lx.scanNumber(m, b)
	case b == '"':
		return lx.scanString(m)
	}
	return lx.scanOperator(m, b)
}

func (lx *Lexer) skipTrivia() {
	for !lx.cur.EOF() {
		b := lx.cur.Peek()
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			lx.cur.Bump()
		case b == '/':
			b0, b1, ok := lx.cur.Peek2()
			if !ok || b0 != '/' {
				return
			}
			switch b1 {
			case '/':
				for !lx.cur.EOF() && lx.cur.Peek() != '\n' {
					lx.cur.Bump()
				}
			case '*':
				lx.cur.Bump()
				lx.cur.Bump()
				for !lx.cur.EOF() {
					if lx.cur.Bump() == '*' && lx.cur.Eat('/') {
						break
					}
				}
			default:
				return
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdent(m Mark) token.Token {
	for !lx.cur.EOF() && isIdentPart(lx.cur.Peek()) {
		lx.cur.Bump()
	}
	span := lx.cur.SpanFrom(m)
	text := string(lx.cur.File.Content[span.Start:span.End])
	if kw, ok := token.KeywordKind(text); ok {
		return token.Token{Kind: kw, Span: span}
	}
	return token.Token{Kind: token.Ident, Span: span, Text: lx.strings.Intern(text)}
}

func (lx *Lexer) scanNumber(m Mark, _ byte) token.Token {
	for !lx.cur.EOF() {
		b := lx.cur.Peek()
		if (b >= '0' && b <= '9') || b == '_' || b == 'x' || b == 'X' ||
			(b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') {
			lx.cur.Bump()
			continue
		}
		break
	}
	span := lx.cur.SpanFrom(m)
	text := string(lx.cur.File.Content[span.Start:span.End])
	val, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		lx.reporter.Report(diag.LexBadNumber, diag.SevError, span, "malformed integer literal", nil)
		return token.Token{Kind: token.Invalid, Span: span}
	}
	return token.Token{Kind: token.Int, Span: span, IntVal: val}
}

func (lx *Lexer) scanString(m Mark) token.Token {
	var buf []byte
	for {
		if lx.cur.EOF() {
			span := lx.cur.SpanFrom(m)
			lx.reporter.Report(diag.LexUnterminatedString, diag.SevError, span, "unterminated string literal", nil)
			return token.Token{Kind: token.Invalid, Span: span}
		}
		b := lx.cur.Bump()
		if b == '"' {
			break
		}
		if b == '\\' && !lx.cur.EOF() {
			b = lx.cur.Bump()
			switch b {
			case 'n':
				b = '\n'
			case 't':
				b = '\t'
			}
		}
		buf = append(buf, b)
	}
	span := lx.cur.SpanFrom(m)
	return token.Token{Kind: token.String, Span: span, Text: lx.strings.InternBytes(buf)}
}

func (lx *Lexer) scanOperator(m Mark, b byte) token.Token {
	kind := token.Invalid
	switch b {
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case ',':
		kind = token.Comma
	case ';':
		kind = token.Semicolon
	case '^':
		kind = token.Caret
	case '+':
		kind = token.Plus
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '~':
		kind = token.Tilde
	case '*':
		kind = token.Star
	case ':':
		if lx.cur.Eat(':') {
			kind = token.ColonColon
		} else {
			kind = token.Colon
		}
	case '.':
		b0, b1, ok := lx.cur.Peek2()
		if ok && b0 == '.' && b1 == '.' {
			lx.cur.Bump()
			lx.cur.Bump()
			kind = token.Ellipsis
		} else {
			kind = token.Dot
		}
	case '-':
		if lx.cur.Eat('>') {
			kind = token.Arrow
		} else {
			kind = token.Minus
		}
	case '<':
		switch {
		case lx.cur.Eat('='):
			kind = token.Le
		case lx.cur.Eat('<'):
			kind = token.Shl
		default:
			kind = token.Lt
		}
	case '>':
		// Note: '>>' is never fused; nested template argument lists need the
		// parser to close two angles from two separate tokens.
		if lx.cur.Eat('=') {
			kind = token.Ge
		} else {
			kind = token.Gt
		}
	case '&':
		if lx.cur.Eat('&') {
			kind = token.AmpAmp
		} else {
			kind = token.Amp
		}
	case '|':
		if lx.cur.Eat('|') {
			kind = token.PipePipe
		} else {
			kind = token.Pipe
		}
	case '!':
		if lx.cur.Eat('=') {
			kind = token.Ne
		} else {
			kind = token.Bang
		}
	case '=':
		if lx.cur.Eat('=') {
			kind = token.Eq
		} else {
			kind = token.Assign
		}
	}
	span := lx.cur.SpanFrom(m)
	if kind == token.Invalid {
		lx.reporter.Report(diag.LexUnknownChar, diag.SevError, span, "unknown character", nil)
	}
	return token.Token{Kind: kind, Span: span}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
