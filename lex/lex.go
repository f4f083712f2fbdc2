// Package lex implements a streaming lexer over PDF- and PostScript-
// CMap-flavored syntax; within this module its caller is the cmap
// package's CMap reader. Grounded on pdfcpu's lexical
// rules for delimiters, numbers, names, and strings (pkg/pdfcpu/types
// string/name escaping plus the EOL handling in pkg/pdfcpu/scan/scan.go)
// but reshaped as a genuine incremental token reader over an io.Reader
// rather than pdfcpu's whole-buffer string scanning, since a streaming
// tokenizer needs to read one token at a time from an open stream
// rather than a buffer already held fully in memory.
package lex

import (
	"bufio"
	"io"

	"github.com/inkfathom/pdfcore/pdferr"
	"github.com/inkfathom/pdfcore/pdfval"
)

// TokenType names the shape of a lexed token.
type TokenType int

const (
	TokEOF TokenType = iota
	TokInteger
	TokReal
	TokName       // /Foo, decoded bytes available via Bytes
	TokLiteralString // (...)
	TokHexString     // <...>
	TokKeyword       // bare identifier: true, false, null, obj, R, or a CMap operator
	TokArrayStart    // [
	TokArrayEnd      // ]
	TokDictStart     // <<
	TokDictEnd       // >>
)

// Token is one lexed unit, with whichever payload field its Type uses.
type Token struct {
	Type    TokenType
	Int     int64
	Real    float64
	Bytes   []byte // decoded bytes for TokName/TokLiteralString/TokHexString
	Literal string // raw source text for TokKeyword
}

// Tokenizer reads a byte stream one token at a time, with a one-token
// look-ahead so callers can peek before deciding how to parse a
// construct (e.g. distinguishing "12 0 R" from a bare integer).
type Tokenizer struct {
	r      *bufio.Reader
	peeked *Token
	peekedErr error
}

// New wraps r for token-at-a-time reading.
func New(r io.Reader) *Tokenizer {
	return &Tokenizer{r: bufio.NewReader(r)}
}

// Peek returns the next token without consuming it.
func (t *Tokenizer) Peek() (Token, error) {
	if t.peeked == nil && t.peekedErr == nil {
		tok, err := t.lex()
		t.peeked = &tok
		t.peekedErr = err
	}
	if t.peekedErr != nil {
		return Token{}, t.peekedErr
	}
	return *t.peeked, nil
}

// Next consumes and returns the next token.
func (t *Tokenizer) Next() (Token, error) {
	if t.peeked != nil || t.peekedErr != nil {
		tok, err := *t.peeked, t.peekedErr
		t.peeked, t.peekedErr = nil, nil
		return tok, err
	}
	return t.lex()
}

func isWhitespace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (t *Tokenizer) skipWhitespaceAndComments() error {
	for {
		b, err := t.r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if isWhitespace(b) {
			continue
		}
		if b == '%' {
			for {
				c, err := t.r.ReadByte()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				if c == '\n' || c == '\r' {
					break
				}
			}
			continue
		}
		return t.r.UnreadByte()
	}
}

func (t *Tokenizer) lex() (Token, error) {
	if err := t.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}
	b, err := t.r.ReadByte()
	if err == io.EOF {
		return Token{Type: TokEOF}, nil
	}
	if err != nil {
		return Token{}, err
	}

	switch b {
	case '/':
		return t.lexName()
	case '(':
		return t.lexLiteralString()
	case '[':
		return Token{Type: TokArrayStart}, nil
	case ']':
		return Token{Type: TokArrayEnd}, nil
	case '<':
		next, err := t.r.ReadByte()
		if err != nil && err != io.EOF {
			return Token{}, err
		}
		if err == nil && next == '<' {
			return Token{Type: TokDictStart}, nil
		}
		if err == nil {
			t.r.UnreadByte()
		}
		return t.lexHexString()
	case '>':
		next, err := t.r.ReadByte()
		if err != nil && err != io.EOF {
			return Token{}, err
		}
		if err == nil && next == '>' {
			return Token{Type: TokDictEnd}, nil
		}
		return Token{}, pdferr.New(pdferr.UnexpectedEOF, "lone '>' outside a hex string or dict close")
	}

	if b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9') {
		return t.lexNumber(b)
	}

	return t.lexKeyword(b)
}

func (t *Tokenizer) lexName() (Token, error) {
	var raw []byte
	for {
		b, err := t.r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Token{}, err
		}
		if isWhitespace(b) || isDelimiter(b) {
			t.r.UnreadByte()
			break
		}
		raw = append(raw, b)
	}
	decoded, err := pdfval.DecodeName(string(raw))
	if err != nil {
		return Token{}, err
	}
	return Token{Type: TokName, Bytes: decoded}, nil
}

func (t *Tokenizer) lexLiteralString() (Token, error) {
	depth := 1
	var raw []byte
	for depth > 0 {
		b, err := t.r.ReadByte()
		if err != nil {
			return Token{}, pdferr.Wrap(pdferr.UnexpectedEOF, err, "unterminated literal string")
		}
		switch b {
		case '(':
			depth++
			raw = append(raw, b)
		case ')':
			depth--
			if depth > 0 {
				raw = append(raw, b)
			}
		case '\\':
			next, err := t.r.ReadByte()
			if err != nil {
				return Token{}, pdferr.Wrap(pdferr.UnexpectedEOF, err, "unterminated escape in literal string")
			}
			raw = append(raw, '\\', next)
		default:
			raw = append(raw, b)
		}
	}
	decoded, err := pdfval.DecodeLiteral(string(raw))
	if err != nil {
		return Token{}, err
	}
	return Token{Type: TokLiteralString, Bytes: decoded}, nil
}

func (t *Tokenizer) lexHexString() (Token, error) {
	var raw []byte
	for {
		b, err := t.r.ReadByte()
		if err != nil {
			return Token{}, pdferr.Wrap(pdferr.UnexpectedEOF, err, "unterminated hex string")
		}
		if b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		raw = append(raw, b)
	}
	if len(raw)%2 == 1 {
		raw = append(raw, '0')
	}
	out := make([]byte, len(raw)/2)
	for i := 0; i < len(out); i++ {
		hi, err := hexDigit(raw[2*i])
		if err != nil {
			return Token{}, err
		}
		lo, err := hexDigit(raw[2*i+1])
		if err != nil {
			return Token{}, err
		}
		out[i] = hi<<4 | lo
	}
	return Token{Type: TokHexString, Bytes: out}, nil
}

func hexDigit(b byte) (byte, error) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', nil
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, nil
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, nil
	}
	return 0, pdferr.Newf(pdferr.InvalidStream, "invalid hex digit %q", b)
}

func (t *Tokenizer) lexNumber(first byte) (Token, error) {
	raw := []byte{first}
	isReal := first == '.'
	for {
		b, err := t.r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Token{}, err
		}
		if b >= '0' && b <= '9' {
			raw = append(raw, b)
			continue
		}
		if b == '.' && !isReal {
			isReal = true
			raw = append(raw, b)
			continue
		}
		t.r.UnreadByte()
		break
	}
	if isReal {
		f, err := parseFloat(raw)
		if err != nil {
			return Token{}, pdferr.Wrap(pdferr.NoNumber, err, "malformed real number")
		}
		return Token{Type: TokReal, Real: f}, nil
	}
	i, err := parseInt(raw)
	if err != nil {
		return Token{}, pdferr.Wrap(pdferr.NoNumber, err, "malformed integer")
	}
	return Token{Type: TokInteger, Int: i}, nil
}

func (t *Tokenizer) lexKeyword(first byte) (Token, error) {
	raw := []byte{first}
	for {
		b, err := t.r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Token{}, err
		}
		if isWhitespace(b) || isDelimiter(b) {
			t.r.UnreadByte()
			break
		}
		raw = append(raw, b)
	}
	return Token{Type: TokKeyword, Literal: string(raw)}, nil
}
