// Package encoding implements the Encoding façade: a font's
// primary EncodingMap plus an optional ToUnicode override map, bound
// together the way a PDF font dictionary binds /Encoding and
// /ToUnicode. Grounded on pdfmm's split between a font's base encoding
// and its optional ToUnicode CMap (PdfEncodingMap.cpp / PdfEncoding-
// adjacent classes in pdfmm), reshaped here as a
// plain composition of two encmap.Map values rather than a class
// hierarchy.
package encoding

import (
	"github.com/inkfathom/pdfcore/charcode"
	"github.com/inkfathom/pdfcore/encmap"
	"github.com/inkfathom/pdfcore/pdferr"
)

// Encoding binds a font's code-to-glyph map with an optional separate
// code-to-Unicode map. When ToUnicode is nil, text extraction falls back
// to Primary's own codepoints.
type Encoding struct {
	Primary   encmap.Map
	ToUnicode encmap.Map // optional
}

// New builds an Encoding with no ToUnicode override.
func New(primary encmap.Map) *Encoding {
	return &Encoding{Primary: primary}
}

// WithToUnicode attaches an explicit ToUnicode map.
func (e *Encoding) WithToUnicode(toUnicode encmap.Map) *Encoding {
	e.ToUnicode = toUnicode
	return e
}

// ConvertToUTF8 decodes data (a content-stream string operand) to a Go
// string, consuming one CharCode at a time. Resolution order per code:
// ToUnicode first (if present and it has an entry for this exact code
// width), else Primary.
func (e *Encoding) ConvertToUTF8(data []byte) (string, error) {
	var out []rune
	for len(data) > 0 {
		var cp []rune
		var n int
		var ok bool
		if e.ToUnicode != nil {
			cp, n, ok = e.ToUnicode.TryGetNextCodePoints(data)
		}
		if !ok {
			cp, n, ok = e.Primary.TryGetNextCodePoints(data)
		}
		if !ok {
			return "", pdferr.New(pdferr.InvalidFontFile, "no mapping for code at current position")
		}
		out = append(out, cp...)
		data = data[n:]
	}
	return string(out), nil
}

// ConvertToEncoded is the reverse of ConvertToUTF8: render text as a
// sequence of CharCodes, encoded as raw bytes in big-endian order per
// each code's byte width. Ligature-aware: a multi-rune span bound to one
// CharCode (e.g. "ffi") is matched before falling back to individual
// runes, via Primary's TryGetCharCode greedily tried on shrinking
// prefixes.
func (e *Encoding) ConvertToEncoded(text string) ([]byte, error) {
	runes := []rune(text)
	var out []byte
	for len(runes) > 0 {
		code, span, ok := tryLongestCharCode(e.Primary, runes)
		if !ok {
			return nil, pdferr.Newf(pdferr.InvalidFontFile, "no code for rune %q", runes[0])
		}
		out = append(out, encodeCode(code)...)
		runes = runes[span:]
	}
	return out, nil
}

func tryLongestCharCode(m encmap.Map, runes []rune) (charcode.CharCode, int, bool) {
	maxSpan := len(runes)
	if maxSpan > 8 {
		maxSpan = 8
	}
	for span := maxSpan; span >= 1; span-- {
		if code, ok := m.TryGetCharCode(runes[:span]); ok {
			return code, span, true
		}
	}
	return charcode.CharCode{}, 0, false
}

func encodeCode(code charcode.CharCode) []byte {
	out := make([]byte, code.Size)
	v := code.Code
	for i := code.Size - 1; i >= 0; i-- {
		out[i] = byte(v & 0xFF)
		v >>= 8
	}
	return out
}

// ConvertToCIDs decodes data to the sequence of CIDs a composite font's
// content stream operand resolves to, one CharCode at a time.
func (e *Encoding) ConvertToCIDs(data []byte) ([]uint32, error) {
	var out []uint32
	for len(data) > 0 {
		cp, n, ok := e.Primary.TryGetNextCodePoints(data)
		if !ok {
			return nil, pdferr.New(pdferr.InvalidFontFile, "no mapping for code at current position")
		}
		code, ok := e.Primary.TryGetCharCode(cp)
		if !ok {
			return nil, pdferr.New(pdferr.InvalidFontFile, "inconsistent encoding map: code has no corresponding CharCode")
		}
		cid, ok := e.GetCID(code)
		if !ok {
			return nil, pdferr.Newf(pdferr.InvalidFontFile, "no CID for code %v", code)
		}
		out = append(out, cid)
		data = data[n:]
	}
	return out, nil
}

// GetCID resolves a single CharCode to its CID through Primary.
func (e *Encoding) GetCID(code charcode.CharCode) (uint32, bool) {
	return e.Primary.TryGetNextCID(code)
}

// ExportToDictionary renders the ToUnicode CMap stream body this
// Encoding would write into a font dictionary's /ToUnicode entry,
// preferring the explicit ToUnicode map when present.
func (e *Encoding) ExportToDictionary() ([]byte, error) {
	if e.ToUnicode != nil {
		return e.ToUnicode.WriteToUnicodeCMap()
	}
	return e.Primary.WriteToUnicodeCMap()
}
