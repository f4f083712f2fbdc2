// Package cmap implements the CMap parser: the PostScript-style
// resource format Adobe Technical Note #5014 defines for mapping byte
// codes to CIDs or Unicode codepoints. Grounded conceptually on
// seehuhn-go-pdf's font/cmap reader (read.go, tu-read.go) for the
// overall bfchar/bfrange/cidrange block structure, but hand-written
// against this core's own lex.Tokenizer rather than adding
// seehuhn.de/go/postscript as a dependency: a CMap's operand syntax is a
// small enough subset of PostScript that the tokenizer this package
// already needs for PDF object syntax covers it directly.
package cmap

import (
	"io"
	"unicode/utf16"

	"github.com/inkfathom/pdfcore/charcode"
	"github.com/inkfathom/pdfcore/lex"
	"github.com/inkfathom/pdfcore/pdferr"
)

// Result is everything Parse extracts from a CMap stream: the codespace
// ranges (which determine how many bytes to read per code), a
// codepoint table (from bfchar/bfrange, for ToUnicode-shaped CMaps), and
// a CID table (from cidchar/cidrange, for font /Encoding CMaps). A CMap
// in practice populates one of the latter two, not both.
type Result struct {
	CodeSpace []CodeSpaceRange
	ToUnicode *charcode.CharCodeMap
	ToCID     map[charcode.CharCode]uint32
}

// CodeSpaceRange is one "<lo><hi>" pair from a begincodespacerange
// block; its byte width comes from the hex string length.
type CodeSpaceRange struct {
	Size   int
	Lo, Hi uint32
}

// Parse reads a full CMap stream body (the decoded bytes of a
// /Encoding or /ToUnicode stream) and extracts its mapping blocks.
func Parse(r io.Reader) (*Result, error) {
	t := lex.New(r)
	res := &Result{ToUnicode: charcode.NewCharCodeMap(), ToCID: make(map[charcode.CharCode]uint32)}

	for {
		tok, err := t.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == lex.TokEOF {
			break
		}
		if tok.Type != lex.TokKeyword {
			continue
		}
		switch tok.Literal {
		case "begincodespacerange":
			if err := parseCodeSpaceRange(t, res); err != nil {
				return nil, err
			}
		case "beginbfchar":
			if err := parseBfChar(t, res); err != nil {
				return nil, err
			}
		case "beginbfrange":
			if err := parseBfRange(t, res); err != nil {
				return nil, err
			}
		case "begincidchar":
			if err := parseCidChar(t, res); err != nil {
				return nil, err
			}
		case "begincidrange":
			if err := parseCidRange(t, res); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

func hexCode(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

func codepointsFromHex(b []byte) []rune {
	// A bfchar/bfrange destination is UTF-16BE text, per TN#5014 ss.6;
	// a surrogate pair is recombined into one codepoint, and an unpaired
	// surrogate decodes to U+FFFD.
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return utf16.Decode(units)
}

func parseCodeSpaceRange(t *lex.Tokenizer, res *Result) error {
	for {
		tok, err := t.Next()
		if err != nil {
			return err
		}
		if tok.Type == lex.TokKeyword && tok.Literal == "endcodespacerange" {
			return nil
		}
		if tok.Type != lex.TokHexString {
			return pdferr.New(pdferr.InvalidStream, "begincodespacerange: expected hex string")
		}
		lo := tok
		hiTok, err := t.Next()
		if err != nil {
			return err
		}
		if hiTok.Type != lex.TokHexString {
			return pdferr.New(pdferr.InvalidStream, "begincodespacerange: expected hi hex string")
		}
		res.CodeSpace = append(res.CodeSpace, CodeSpaceRange{
			Size: len(lo.Bytes),
			Lo:   hexCode(lo.Bytes),
			Hi:   hexCode(hiTok.Bytes),
		})
	}
}

func parseBfChar(t *lex.Tokenizer, res *Result) error {
	for {
		tok, err := t.Next()
		if err != nil {
			return err
		}
		if tok.Type == lex.TokKeyword && tok.Literal == "endbfchar" {
			return nil
		}
		if tok.Type != lex.TokHexString {
			return pdferr.New(pdferr.InvalidStream, "beginbfchar: expected source hex string")
		}
		src := tok
		dst, err := t.Next()
		if err != nil {
			return err
		}
		var codepoints []rune
		switch dst.Type {
		case lex.TokHexString:
			codepoints = codepointsFromHex(dst.Bytes)
		case lex.TokName:
			codepoints = []rune(string(dst.Bytes))
		default:
			return pdferr.New(pdferr.InvalidStream, "beginbfchar: expected hex string or name destination")
		}
		code := charcode.NewCharCode(hexCode(src.Bytes), len(src.Bytes))
		if err := res.ToUnicode.PushMapping(code, codepoints); err != nil {
			return err
		}
	}
}

func parseBfRange(t *lex.Tokenizer, res *Result) error {
	for {
		tok, err := t.Next()
		if err != nil {
			return err
		}
		if tok.Type == lex.TokKeyword && tok.Literal == "endbfrange" {
			return nil
		}
		if tok.Type != lex.TokHexString {
			return pdferr.New(pdferr.InvalidStream, "beginbfrange: expected lo hex string")
		}
		lo := tok
		hiTok, err := t.Next()
		if err != nil {
			return err
		}
		if hiTok.Type != lex.TokHexString {
			return pdferr.New(pdferr.InvalidStream, "beginbfrange: expected hi hex string")
		}
		dst, err := t.Next()
		if err != nil {
			return err
		}
		loCode := hexCode(lo.Bytes)
		hiCode := hexCode(hiTok.Bytes)
		size := len(lo.Bytes)

		switch dst.Type {
		case lex.TokHexString:
			base := codepointsFromHex(dst.Bytes)
			for code := loCode; code <= hiCode; code++ {
				cp := append([]rune(nil), base...)
				if len(cp) > 0 {
					cp[len(cp)-1] += rune(code - loCode)
				}
				if err := res.ToUnicode.PushMapping(charcode.NewCharCode(code, size), cp); err != nil {
					return err
				}
			}
		case lex.TokArrayStart:
			for code := loCode; ; code++ {
				item, err := t.Next()
				if err != nil {
					return err
				}
				if item.Type == lex.TokArrayEnd {
					break
				}
				if item.Type != lex.TokHexString {
					return pdferr.New(pdferr.InvalidStream, "beginbfrange: array destination must be hex strings")
				}
				if err := res.ToUnicode.PushMapping(charcode.NewCharCode(code, size), codepointsFromHex(item.Bytes)); err != nil {
					return err
				}
			}
		default:
			return pdferr.New(pdferr.InvalidStream, "beginbfrange: unsupported destination shape")
		}
	}
}

func parseCidChar(t *lex.Tokenizer, res *Result) error {
	for {
		tok, err := t.Next()
		if err != nil {
			return err
		}
		if tok.Type == lex.TokKeyword && tok.Literal == "endcidchar" {
			return nil
		}
		if tok.Type != lex.TokHexString {
			return pdferr.New(pdferr.InvalidStream, "begincidchar: expected source hex string")
		}
		cidTok, err := t.Next()
		if err != nil {
			return err
		}
		if cidTok.Type != lex.TokInteger {
			return pdferr.New(pdferr.InvalidStream, "begincidchar: expected integer CID")
		}
		code := charcode.NewCharCode(hexCode(tok.Bytes), len(tok.Bytes))
		res.ToCID[code] = uint32(cidTok.Int)
	}
}

func parseCidRange(t *lex.Tokenizer, res *Result) error {
	for {
		tok, err := t.Next()
		if err != nil {
			return err
		}
		if tok.Type == lex.TokKeyword && tok.Literal == "endcidrange" {
			return nil
		}
		if tok.Type != lex.TokHexString {
			return pdferr.New(pdferr.InvalidStream, "begincidrange: expected lo hex string")
		}
		lo := tok
		hiTok, err := t.Next()
		if err != nil {
			return err
		}
		if hiTok.Type != lex.TokHexString {
			return pdferr.New(pdferr.InvalidStream, "begincidrange: expected hi hex string")
		}
		cidTok, err := t.Next()
		if err != nil {
			return err
		}
		if cidTok.Type != lex.TokInteger {
			return pdferr.New(pdferr.InvalidStream, "begincidrange: expected integer base CID")
		}
		loCode := hexCode(lo.Bytes)
		hiCode := hexCode(hiTok.Bytes)
		size := len(lo.Bytes)
		for code := loCode; code <= hiCode; code++ {
			res.ToCID[charcode.NewCharCode(code, size)] = uint32(cidTok.Int) + (code - loCode)
		}
	}
}
