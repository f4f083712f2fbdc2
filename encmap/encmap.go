// Package encmap implements the EncodingMap variants: the
// pluggable strategies that translate between CharCodes and Unicode
// codepoints, grounded on pdfmm's PdfEncodingMap hierarchy (original
// implementation: src/pdfmm/base/PdfEncodingMap.cpp) — its
// TryGetNextCharCode/TryGetCharCode/TryGetNextCID/WriteToUnicodeCMap
// shape is reproduced here as the Map interface, with charcode.CharCodeMap
// standing in for pdfmm's PdfCharCodeMap as the shared forward/inverse
// table every non-dummy variant delegates to.
package encmap

import (
	"bytes"
	"fmt"
	"sort"

	"golang.org/x/text/encoding/charmap"

	"github.com/inkfathom/pdfcore/charcode"
	"github.com/inkfathom/pdfcore/pdferr"
)

// Map is the capability every encoding-map variant implements.
type Map interface {
	// TryGetNextCodePoints decodes the longest valid code at the front of
	// data, returning the codepoints it maps to and how many bytes were
	// consumed.
	TryGetNextCodePoints(data []byte) (codepoints []rune, consumed int, ok bool)
	// TryGetCharCode finds the CharCode (if any) whose codepoints exactly
	// match codepoints, for the reverse (text -> code) direction.
	TryGetCharCode(codepoints []rune) (charcode.CharCode, bool)
	// TryGetNextCID resolves code to a CID, falling back to
	// code-minus-FirstChar when the map carries no explicit CID table,
	// per pdfmm's TryGetNextCID fallback rule.
	TryGetNextCID(code charcode.CharCode) (cid uint32, ok bool)
	// Limits reports the code-space bounds this map has observed.
	Limits() charcode.EncodingLimits
	// WriteToUnicodeCMap renders a ToUnicode CMap stream body for this
	// map's forward table.
	WriteToUnicodeCMap() ([]byte, error)
}

///////////////////////////////////////////////////////////////////////////
// predefined one-byte maps

// Predefined wraps a fixed byte<->codepoint table seeded from a
// golang.org/x/text/encoding/charmap.Charmap, for the handful of
// standard single-byte PDF text encodings (WinAnsiEncoding backed by
// Windows-1252, MacRomanEncoding backed by Macintosh) that are byte-for-
// byte identical or near-identical to an existing 8-bit code page.
type Predefined struct {
	table *charcode.CharCodeMap
}

// NewPredefinedFromCharmap builds a Predefined map covering every byte
// value cm can decode.
func NewPredefinedFromCharmap(cm *charmap.Charmap) (*Predefined, error) {
	table := charcode.NewCharCodeMap()
	dec := cm.NewDecoder()
	for b := 0; b < 256; b++ {
		out, err := dec.Bytes([]byte{byte(b)})
		if err != nil || len(out) == 0 {
			continue
		}
		runes := []rune(string(out))
		if len(runes) != 1 || runes[0] == 0xFFFD {
			continue
		}
		if err := table.PushMapping(charcode.NewCharCode(uint32(b), 1), runes); err != nil {
			return nil, err
		}
	}
	return &Predefined{table: table}, nil
}

var (
	// WinAnsiEncoding is the stock 8-bit encoding used by most PDF viewer
	// default fonts, backed by Windows-1252 since the two agree on every
	// printable code point that matters to text extraction.
	WinAnsiEncoding *Predefined
	// MacRomanEncoding is the Macintosh-native equivalent.
	MacRomanEncoding *Predefined
)

func init() {
	WinAnsiEncoding, _ = NewPredefinedFromCharmap(charmap.Windows1252)
	MacRomanEncoding, _ = NewPredefinedFromCharmap(charmap.Macintosh)
}

func (p *Predefined) TryGetNextCodePoints(data []byte) ([]rune, int, bool) {
	if len(data) == 0 {
		return nil, 0, false
	}
	cp, ok := p.table.TryGetCodePoints(charcode.NewCharCode(uint32(data[0]), 1))
	if !ok {
		return nil, 0, false
	}
	return cp, 1, true
}

func (p *Predefined) TryGetCharCode(codepoints []rune) (charcode.CharCode, bool) {
	return p.table.TryGetCharCode(codepoints)
}

func (p *Predefined) TryGetNextCID(code charcode.CharCode) (uint32, bool) {
	return defaultCID(p.table, code)
}

func (p *Predefined) Limits() charcode.EncodingLimits { return p.table.Limits() }

func (p *Predefined) WriteToUnicodeCMap() ([]byte, error) {
	return writeToUnicodeCMap(p.table)
}

///////////////////////////////////////////////////////////////////////////
// identity map

// Identity is the Identity-H/Identity-V 2-byte code space, where every
// code maps directly onto the CID of the same numeric value and has no
// meaningful codepoint mapping of its own (text extraction for an
// Identity-encoded composite font instead goes through the font's own
// ToUnicode map, per 9.7.6.2 of the ISO spec).
type Identity struct{}

func (Identity) TryGetNextCodePoints(data []byte) ([]rune, int, bool) {
	if len(data) < 2 {
		return nil, 0, false
	}
	code := uint32(data[0])<<8 | uint32(data[1])
	return []rune{rune(code)}, 2, true
}

func (Identity) TryGetCharCode(codepoints []rune) (charcode.CharCode, bool) {
	if len(codepoints) != 1 {
		return charcode.CharCode{}, false
	}
	return charcode.NewCharCode(uint32(codepoints[0]), 2), true
}

func (Identity) TryGetNextCID(code charcode.CharCode) (uint32, bool) {
	return code.Code, true
}

func (Identity) Limits() charcode.EncodingLimits {
	l := charcode.NewEncodingLimits()
	l.Update(charcode.NewCharCode(0, 2))
	l.Update(charcode.NewCharCode(0xFFFF, 2))
	return l
}

func (Identity) WriteToUnicodeCMap() ([]byte, error) {
	return nil, pdferr.New(pdferr.NotImplemented, "Identity has no meaningful ToUnicode table of its own")
}

///////////////////////////////////////////////////////////////////////////
// difference map

// Difference overlays explicit code->codepoint overrides on top of a
// base Map, implementing a font dictionary's /Differences array once the
// caller has resolved each difference's glyph name to a codepoint
// (glyph-name resolution belongs to the encoding façade, not here, since
// it needs the Adobe Glyph List rather than anything code/codepoint
// specific).
type Difference struct {
	base    Map
	overlay *charcode.CharCodeMap
}

// NewDifference builds a Difference over base with an initially empty
// overlay; call Set for each code the /Differences array redefines.
func NewDifference(base Map) *Difference {
	return &Difference{base: base, overlay: charcode.NewCharCodeMap()}
}

// Set records that code now maps to codepoints, shadowing base.
func (d *Difference) Set(code charcode.CharCode, codepoints []rune) error {
	return d.overlay.PushMapping(code, codepoints)
}

func (d *Difference) TryGetNextCodePoints(data []byte) ([]rune, int, bool) {
	if len(data) == 0 {
		return nil, 0, false
	}
	// Differences arrays are always single-byte overrides over a
	// single-byte base encoding.
	if cp, ok := d.overlay.TryGetCodePoints(charcode.NewCharCode(uint32(data[0]), 1)); ok {
		return cp, 1, true
	}
	return d.base.TryGetNextCodePoints(data)
}

func (d *Difference) TryGetCharCode(codepoints []rune) (charcode.CharCode, bool) {
	if code, ok := d.overlay.TryGetCharCode(codepoints); ok {
		return code, true
	}
	return d.base.TryGetCharCode(codepoints)
}

func (d *Difference) TryGetNextCID(code charcode.CharCode) (uint32, bool) {
	return d.base.TryGetNextCID(code)
}

func (d *Difference) Limits() charcode.EncodingLimits {
	l := d.base.Limits()
	ol := d.overlay.Limits()
	l.Update(ol.FirstChar)
	l.Update(ol.LastChar)
	return l
}

func (d *Difference) WriteToUnicodeCMap() ([]byte, error) {
	// The overlay alone is usually sufficient: a /Differences array only
	// needs ToUnicode entries for the codes it actually redefines, since
	// a conforming reader already knows the base encoding's mapping for
	// everything else. Exporting just the overlay matches pdfmm's
	// PdfEncodingMapSimple::appendBaseFontEntries, which only emits
	// entries for codes present in its own table.
	return writeToUnicodeCMap(d.overlay)
}

///////////////////////////////////////////////////////////////////////////
// CMap-derived map

// FromCMap wraps a charcode.CharCodeMap built by the cmap package's
// parser (a font's /Encoding CMap stream, or a ToUnicode CMap being read
// back in).
type FromCMap struct {
	table *charcode.CharCodeMap
	cids  map[charcode.CharCode]uint32
}

// NewFromCMap builds a FromCMap over an already-populated codepoint
// table and an optional CID table (nil if this CMap never assigns CIDs,
// e.g. a ToUnicode map).
func NewFromCMap(table *charcode.CharCodeMap, cids map[charcode.CharCode]uint32) *FromCMap {
	return &FromCMap{table: table, cids: cids}
}

func (f *FromCMap) TryGetNextCodePoints(data []byte) ([]rune, int, bool) {
	limits := f.table.Limits()
	for size := limits.MaxCodeSize; size >= limits.MinCodeSize && size >= 1; size-- {
		if len(data) < size {
			continue
		}
		var v uint32
		for i := 0; i < size; i++ {
			v = v<<8 | uint32(data[i])
		}
		if cp, ok := f.table.TryGetCodePoints(charcode.NewCharCode(v, size)); ok {
			return cp, size, true
		}
	}
	return nil, 0, false
}

func (f *FromCMap) TryGetCharCode(codepoints []rune) (charcode.CharCode, bool) {
	return f.table.TryGetCharCode(codepoints)
}

func (f *FromCMap) TryGetNextCID(code charcode.CharCode) (uint32, bool) {
	if f.cids != nil {
		if cid, ok := f.cids[code]; ok {
			return cid, true
		}
	}
	return defaultCID(f.table, code)
}

func (f *FromCMap) Limits() charcode.EncodingLimits { return f.table.Limits() }

func (f *FromCMap) WriteToUnicodeCMap() ([]byte, error) {
	return writeToUnicodeCMap(f.table)
}

///////////////////////////////////////////////////////////////////////////
// Type1 font-program map

// FromType1FontProgram wraps a code->glyph-name->codepoint table already
// extracted from a Type1 font program's built-in /Encoding array. Full
// Type1 charstring parsing (interpreting the font program itself) is
// out of scope here; callers that have such a table
// (e.g. from a separate font-subsetting tool) hand it to NewFromType1FontProgram,
// which is otherwise identical to FromCMap apart from its name, kept
// distinct so the provenance of the table is visible at call sites,
// matching pdfmm's separate PdfEncodingMap subclass for this source.
type FromType1FontProgram struct {
	*FromCMap
}

// NewFromType1FontProgram builds the map from an already-populated
// table.
func NewFromType1FontProgram(table *charcode.CharCodeMap) *FromType1FontProgram {
	return &FromType1FontProgram{FromCMap: NewFromCMap(table, nil)}
}

///////////////////////////////////////////////////////////////////////////
// dummy map

// Dummy maps nothing, for a font whose encoding this core could not
// determine: every lookup reports failure, Limits is the empty sentinel,
// and WriteToUnicodeCMap returns NotImplemented, matching pdfmm's
// PdfDummyEncodingMap (pdfmm's PdfEncodingMap.cpp).
type Dummy struct{}

func (Dummy) TryGetNextCodePoints(data []byte) ([]rune, int, bool) { return nil, 0, false }

func (Dummy) TryGetCharCode(codepoints []rune) (charcode.CharCode, bool) {
	return charcode.CharCode{}, false
}

func (Dummy) TryGetNextCID(code charcode.CharCode) (uint32, bool) { return 0, false }

func (Dummy) Limits() charcode.EncodingLimits { return charcode.NewEncodingLimits() }

func (Dummy) WriteToUnicodeCMap() ([]byte, error) {
	return nil, pdferr.New(pdferr.NotImplemented, "dummy encoding map cannot export a ToUnicode CMap")
}

///////////////////////////////////////////////////////////////////////////
// shared helpers

// defaultCID implements pdfmm's TryGetNextCID fallback: when a map
// carries no explicit CID table, the CID is the code's numeric value
// minus the map's FirstChar; a code below FirstChar has no CID and
// reports false.
func defaultCID(table *charcode.CharCodeMap, code charcode.CharCode) (uint32, bool) {
	limits := table.Limits()
	if code.Code < limits.FirstChar.Code {
		return 0, false
	}
	return code.Code - limits.FirstChar.Code, true
}

// writeToUnicodeCMap renders the ToUnicode CMap stream template shared
// by pdfcpu's toUnicodeCMap (pkg/pdfcpu/font/fontDict.go) and pdfmm's
// WriteToUnicodeCMap (PdfEncodingMap.cpp): a CIDInit ProcSet preamble,
// one codespacerange line sized to the map's observed code width, and
// bfchar blocks of up to 100 entries each (single-codepoint mappings;
// bfrange compaction of contiguous runs is left to a future pass).
func writeToUnicodeCMap(table *charcode.CharCodeMap) ([]byte, error) {
	codes := table.Codes()
	sort.Slice(codes, func(i, j int) bool { return codes[i].Code < codes[j].Code })

	limits := table.Limits()
	size := limits.MaxCodeSize
	if size == 0 {
		size = 1
	}

	var buf bytes.Buffer
	buf.WriteString("/CIDInit /ProcSet findresource begin\n")
	buf.WriteString("12 dict begin\nbegincmap\n")
	buf.WriteString("/CMapType 2 def\n1 begincodespacerange\n")
	fmt.Fprintf(&buf, "<%0*x><%0*x>\n", size*2, 0, size*2, (uint64(1)<<uint(8*size))-1)
	buf.WriteString("endcodespacerange\n")

	const chunk = 100
	for i := 0; i < len(codes); i += chunk {
		end := i + chunk
		if end > len(codes) {
			end = len(codes)
		}
		fmt.Fprintf(&buf, "%d beginbfchar\n", end-i)
		for _, c := range codes[i:end] {
			cp, _ := table.TryGetCodePoints(c)
			fmt.Fprintf(&buf, "<%0*x>", c.Size*2, c.Code)
			buf.WriteString("<")
			for _, r := range cp {
				fmt.Fprintf(&buf, "%04x", r)
			}
			buf.WriteString(">\n")
		}
		buf.WriteString("endbfchar\n")
	}

	buf.WriteString("endcmap\nCMapName currentdict /CMapName get def\ncurrentdict end end\n")
	return buf.Bytes(), nil
}
