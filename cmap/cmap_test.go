package cmap

import (
	"strings"
	"testing"

	"github.com/inkfathom/pdfcore/charcode"
)

func TestParseCodeSpaceRange(t *testing.T) {
	src := "1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n"
	res, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.CodeSpace) != 1 {
		t.Fatalf("expected one codespace range, got %d", len(res.CodeSpace))
	}
	r := res.CodeSpace[0]
	if r.Size != 2 || r.Lo != 0 || r.Hi != 0xFFFF {
		t.Fatalf("got %+v", r)
	}
}

func TestParseBfCharHexDestination(t *testing.T) {
	src := "1 beginbfchar\n<0041> <0042>\nendbfchar\n"
	res, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cp, ok := res.ToUnicode.TryGetCodePoints(charcode.NewCharCode(0x0041, 2))
	if !ok || len(cp) != 1 || cp[0] != 'B' {
		t.Fatalf("got %v, %v", cp, ok)
	}
}

func TestParseBfRangeHexDestinationIncrementsLastCodepoint(t *testing.T) {
	src := "1 beginbfrange\n<0000> <0002> <0041>\nendbfrange\n"
	res, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i, want := range []rune{'A', 'B', 'C'} {
		cp, ok := res.ToUnicode.TryGetCodePoints(charcode.NewCharCode(uint32(i), 2))
		if !ok || cp[0] != want {
			t.Fatalf("code %d: got %v, want %q", i, cp, want)
		}
	}
}

func TestParseBfRangeArrayDestination(t *testing.T) {
	src := "1 beginbfrange\n<0000> <0002> [<0041> <0058> <005A>]\nendbfrange\n"
	res, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i, want := range []rune{'A', 'X', 'Z'} {
		cp, ok := res.ToUnicode.TryGetCodePoints(charcode.NewCharCode(uint32(i), 2))
		if !ok || cp[0] != want {
			t.Fatalf("code %d: got %v, want %q", i, cp, want)
		}
	}
}

func TestParseCidChar(t *testing.T) {
	src := "1 begincidchar\n<0041> 100\nendcidchar\n"
	res, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cid, ok := res.ToCID[charcode.NewCharCode(0x0041, 2)]
	if !ok || cid != 100 {
		t.Fatalf("got %v, %v", cid, ok)
	}
}

func TestParseCidRange(t *testing.T) {
	src := "1 begincidrange\n<0000> <0002> 50\nendcidrange\n"
	res, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i, want := range []uint32{50, 51, 52} {
		cid, ok := res.ToCID[charcode.NewCharCode(uint32(i), 2)]
		if !ok || cid != want {
			t.Fatalf("code %d: got %v, want %d", i, cid, want)
		}
	}
}

func TestParseIgnoresUnrelatedKeywords(t *testing.T) {
	src := "/CIDInit /ProcSet findresource begin\n12 dict begin\nbegincmap\nendcmap\n"
	if _, err := Parse(strings.NewReader(src)); err != nil {
		t.Fatalf("Parse should tolerate surrounding CMap boilerplate: %v", err)
	}
}
