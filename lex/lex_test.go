package lex

import (
	"strings"
	"testing"
)

func TestPeekDoesNotConsume(t *testing.T) {
	tk := New(strings.NewReader("/Foo 42"))
	p1, err := tk.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	p2, err := tk.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if p1.Type != TokName || p2.Type != TokName || string(p1.Bytes) != string(p2.Bytes) {
		t.Fatalf("repeated Peek should return the same token, got %v and %v", p1, p2)
	}
	n, err := tk.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if n.Type != TokName || string(n.Bytes) != "Foo" {
		t.Fatalf("got %v", n)
	}
	n2, err := tk.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if n2.Type != TokInteger || n2.Int != 42 {
		t.Fatalf("got %v", n2)
	}
}

func TestNameWithHexEscape(t *testing.T) {
	tk := New(strings.NewReader("/A#20B"))
	tok, err := tk.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Type != TokName || string(tok.Bytes) != "A B" {
		t.Fatalf("got %q", tok.Bytes)
	}
}

func TestHexStringOddLengthPadsWithZero(t *testing.T) {
	tk := New(strings.NewReader("<1>"))
	tok, err := tk.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Type != TokHexString || len(tok.Bytes) != 1 || tok.Bytes[0] != 0x10 {
		t.Fatalf("got %v", tok)
	}
}

func TestHexStringIgnoresWhitespace(t *testing.T) {
	tk := New(strings.NewReader("<48 65 6C 6C 6F>"))
	tok, err := tk.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(tok.Bytes) != "Hello" {
		t.Fatalf("got %q", tok.Bytes)
	}
}

func TestLiteralStringWithEscapesAndNestedParens(t *testing.T) {
	tk := New(strings.NewReader(`(a \(nested\) b\n)`))
	tok, err := tk.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Type != TokLiteralString || string(tok.Bytes) != "a (nested) b\n" {
		t.Fatalf("got %q", tok.Bytes)
	}
}

func TestDictAndArrayDelimiters(t *testing.T) {
	tk := New(strings.NewReader("<< [ ] >>"))
	want := []TokenType{TokDictStart, TokArrayStart, TokArrayEnd, TokDictEnd, TokEOF}
	for _, w := range want {
		tok, err := tk.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tok.Type != w {
			t.Fatalf("got %v, want %v", tok.Type, w)
		}
	}
}

func TestRealNumberAndKeyword(t *testing.T) {
	tk := New(strings.NewReader("-3.14 true"))
	tok, err := tk.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Type != TokReal || tok.Real != -3.14 {
		t.Fatalf("got %v", tok)
	}
	tok2, err := tk.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok2.Type != TokKeyword || tok2.Literal != "true" {
		t.Fatalf("got %v", tok2)
	}
}

func TestIndirectReferenceShapeTokenizes(t *testing.T) {
	tk := New(strings.NewReader("12 0 R"))
	var types []TokenType
	for {
		tok, err := tk.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tok.Type == TokEOF {
			break
		}
		types = append(types, tok.Type)
	}
	want := []TokenType{TokInteger, TokInteger, TokKeyword}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("got %v, want %v", types, want)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	tk := New(strings.NewReader("1 %this is a comment\n2"))
	tok, err := tk.Next()
	if err != nil || tok.Type != TokInteger || tok.Int != 1 {
		t.Fatalf("got %v, %v", tok, err)
	}
	tok2, err := tk.Next()
	if err != nil || tok2.Type != TokInteger || tok2.Int != 2 {
		t.Fatalf("got %v, %v", tok2, err)
	}
}

func TestEmptyInputYieldsEOF(t *testing.T) {
	tk := New(strings.NewReader(""))
	tok, err := tk.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Type != TokEOF {
		t.Fatalf("got %v", tok)
	}
}
