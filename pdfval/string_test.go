package pdfval

import "testing"

func TestLiteralStringEscapeRoundTrip(t *testing.T) {
	raw := []byte("a (nested) string with a \\ backslash and a\nnewline")
	encoded := EncodeLiteral(raw)
	decoded, err := DecodeLiteral(encoded)
	if err != nil {
		t.Fatalf("DecodeLiteral: %v", err)
	}
	if string(decoded) != string(raw) {
		t.Fatalf("round trip got %q, want %q", decoded, raw)
	}
}

func TestDecodeLiteralOctalEscape(t *testing.T) {
	decoded, err := DecodeLiteral(`\101\102\103`)
	if err != nil {
		t.Fatalf("DecodeLiteral: %v", err)
	}
	if string(decoded) != "ABC" {
		t.Fatalf("got %q, want ABC", decoded)
	}
}

func TestStringTextFromPDFDocBytes(t *testing.T) {
	s := NewStringFromBytes([]byte("Hello"), PresentLiteral)
	text, err := s.Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "Hello" {
		t.Fatalf("got %q", text)
	}
}

func TestStringTextFromUTF16BE(t *testing.T) {
	// "Hi" as UTF-16BE with BOM: FE FF 00 48 00 69
	raw := []byte{0xFE, 0xFF, 0x00, 0x48, 0x00, 0x69}
	s := NewStringFromBytes(raw, PresentLiteral)
	text, err := s.Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "Hi" {
		t.Fatalf("got %q, want Hi", text)
	}
}

func TestNewStringFromTextRoundTrip(t *testing.T) {
	s := NewStringFromText("Hi", PresentLiteral)
	text, err := s.Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "Hi" {
		t.Fatalf("got %q, want Hi", text)
	}
}

func TestStringHexPresentation(t *testing.T) {
	s := NewStringFromBytes([]byte{0xDE, 0xAD, 0xBE, 0xEF}, PresentHex)
	if got := s.PDFString(); got != "<DEADBEEF>" {
		t.Fatalf("PDFString() = %q", got)
	}
}

func TestReverseReversesRuneOrder(t *testing.T) {
	if got := Reverse("abc"); got != "cba" {
		t.Fatalf("got %q", got)
	}
}

func TestReverseKeepsCombiningMarksWithTheirBase(t *testing.T) {
	// "e" + combining acute accent (U+0301), decomposed form.
	decomposed := "ébc"
	got := Reverse(decomposed)
	// After NFC normalization the accented "e" becomes one rune (U+00E9),
	// so it must appear intact, as a single unit, at the end of the output.
	want := "cbé"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
