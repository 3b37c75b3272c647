package smtlib

import (
	"strings"

	"github.com/cespio/omtmzn/internal/ir"
)

// tokenKind categorizes lexical tokens.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokSymbol
	tokKeyword
	tokNumeral
	tokDecimal
	tokBinary
	tokHex
	tokString
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lexer splits SMT-LIB text into tokens. Comments start with ';' and run to
// the end of the line.
type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}

	start := l.pos
	line := l.line
	ch := l.src[l.pos]

	switch {
	case ch == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", line: line}, nil
	case ch == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", line: line}, nil
	case ch == '"':
		return l.lexString()
	case ch == '|':
		end := strings.IndexByte(l.src[l.pos+1:], '|')
		if end < 0 {
			return token{}, parseErrorf(line, "unterminated quoted symbol")
		}
		text := l.src[l.pos+1 : l.pos+1+end]
		l.line += strings.Count(text, "\n")
		l.pos += end + 2
		return token{kind: tokSymbol, text: text, line: line}, nil
	case ch == ':':
		l.pos++
		l.scanSymbolChars()
		return token{kind: tokKeyword, text: l.src[start:l.pos], line: line}, nil
	case ch == '#':
		if l.pos+1 >= len(l.src) {
			return token{}, parseErrorf(line, "dangling '#'")
		}
		switch l.src[l.pos+1] {
		case 'b':
			l.pos += 2
			digits := l.scanWhile(func(c byte) bool { return c == '0' || c == '1' })
			if digits == "" {
				return token{}, parseErrorf(line, "empty binary literal")
			}
			return token{kind: tokBinary, text: digits, line: line}, nil
		case 'x':
			l.pos += 2
			digits := l.scanWhile(isHexDigit)
			if digits == "" {
				return token{}, parseErrorf(line, "empty hexadecimal literal")
			}
			return token{kind: tokHex, text: digits, line: line}, nil
		}
		return token{}, parseErrorf(line, "unsupported literal %q", l.src[l.pos:l.pos+2])
	case isDigit(ch):
		l.scanWhile(isDigit)
		if l.pos < len(l.src) && l.src[l.pos] == '.' {
			l.pos++
			if frac := l.scanWhile(isDigit); frac == "" {
				return token{}, parseErrorf(line, "malformed decimal %q", l.src[start:l.pos])
			}
			return token{kind: tokDecimal, text: l.src[start:l.pos], line: line}, nil
		}
		return token{kind: tokNumeral, text: l.src[start:l.pos], line: line}, nil
	case isSymbolChar(ch):
		l.scanSymbolChars()
		return token{kind: tokSymbol, text: l.src[start:l.pos], line: line}, nil
	}

	return token{}, parseErrorf(line, "unexpected character %q", ch)
}

func (l *lexer) lexString() (token, error) {
	line := l.line
	var b strings.Builder
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == '"' {
			// "" is an escaped quote
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '"' {
				b.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			return token{kind: tokString, text: b.String(), line: line}, nil
		}
		if ch == '\n' {
			l.line++
		}
		b.WriteByte(ch)
		l.pos++
	}
	return token{}, parseErrorf(line, "unterminated string literal")
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		switch {
		case ch == '\n':
			l.line++
			l.pos++
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.pos++
		case ch == ';':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) scanSymbolChars() {
	l.scanWhile(isSymbolChar)
}

func (l *lexer) scanWhile(pred func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.src) && pred(l.src[l.pos]) {
		l.pos++
	}
	return l.src[start:l.pos]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// isSymbolChar accepts the SMT-LIB simple-symbol alphabet. Bytes >= 0x80 are
// allowed so that UTF-8 identifiers pass through untouched.
func isSymbolChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', isDigit(c), c >= 0x80:
		return true
	}
	return strings.IndexByte("~!@$%^&*_-+=<>.?/", c) >= 0
}

func parseErrorf(line int, format string, args ...any) *ir.TranslateError {
	err := ir.NewError(ir.ErrCodeParse, nil, format, args...)
	err.Line = line
	return err
}
