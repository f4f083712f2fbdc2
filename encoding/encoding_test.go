package encoding

import (
	"testing"

	"github.com/inkfathom/pdfcore/charcode"
	"github.com/inkfathom/pdfcore/encmap"
)

func TestConvertToUTF8UsesPrimaryWithNoToUnicode(t *testing.T) {
	e := New(encmap.WinAnsiEncoding)
	got, err := e.ConvertToUTF8([]byte("Hi"))
	if err != nil {
		t.Fatalf("ConvertToUTF8: %v", err)
	}
	if got != "Hi" {
		t.Fatalf("got %q", got)
	}
}

func TestConvertToEncodedRoundTripsThroughUTF8(t *testing.T) {
	e := New(encmap.WinAnsiEncoding)
	encoded, err := e.ConvertToEncoded("Hello")
	if err != nil {
		t.Fatalf("ConvertToEncoded: %v", err)
	}
	decoded, err := e.ConvertToUTF8(encoded)
	if err != nil {
		t.Fatalf("ConvertToUTF8: %v", err)
	}
	if decoded != "Hello" {
		t.Fatalf("got %q", decoded)
	}
}

func TestToUnicodeTakesPrecedenceOverPrimary(t *testing.T) {
	diff := encmap.NewDifference(encmap.WinAnsiEncoding)
	if err := diff.Set(charcode.NewCharCode('A', 1), []rune{'Z'}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	e := New(encmap.WinAnsiEncoding).WithToUnicode(diff)

	got, err := e.ConvertToUTF8([]byte("A"))
	if err != nil {
		t.Fatalf("ConvertToUTF8: %v", err)
	}
	if got != "Z" {
		t.Fatalf("expected the ToUnicode override to win, got %q", got)
	}
}

func TestConvertToCIDsUsesIdentity(t *testing.T) {
	e := New(encmap.Identity{})
	cids, err := e.ConvertToCIDs([]byte{0x00, 0x41, 0x12, 0x34})
	if err != nil {
		t.Fatalf("ConvertToCIDs: %v", err)
	}
	if len(cids) != 2 || cids[0] != 0x41 || cids[1] != 0x1234 {
		t.Fatalf("got %v", cids)
	}
}

func TestConvertToUTF8FailsOnUnmappedCode(t *testing.T) {
	e := New(encmap.Dummy{})
	if _, err := e.ConvertToUTF8([]byte("x")); err == nil {
		t.Fatal("expected an error for an unmapped code")
	}
}

func TestExportToDictionaryPrefersToUnicode(t *testing.T) {
	diff := encmap.NewDifference(encmap.WinAnsiEncoding)
	if err := diff.Set(charcode.NewCharCode(0x41, 1), []rune{0x5A}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	e := New(encmap.WinAnsiEncoding).WithToUnicode(diff)
	out, err := e.ExportToDictionary()
	if err != nil {
		t.Fatalf("ExportToDictionary: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected a non-empty CMap body")
	}
}
