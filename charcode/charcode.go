// Package charcode implements the bidirectional code/codepoint map
// at the heart of every encoding: a forward map from CharCode to
// one or more Unicode codepoints (to support ligatures, e.g. "ffi" bound
// to a single code) and a longest-match inverse lookup from codepoints
// back to a CharCode, grounded on pdfmm's PdfCharCodeMap (original
// implementation: src/pdfmm/base/PdfCharCodeMap.h), whose CUMap plus a
// ligature-chained CPMapNode BST this package collapses into two Go
// maps keyed by code and by codepoint-string respectively.
package charcode

import (
	"github.com/inkfathom/pdfcore/pdferr"
)

// CharCode is a code value together with the byte width it was read
// with (1 to 4 bytes), since two encodings can use the same numeric
// value at different widths to mean different things.
type CharCode struct {
	Code uint32
	Size int
}

// NewCharCode builds a CharCode of the given byte width.
func NewCharCode(code uint32, size int) CharCode {
	return CharCode{Code: code, Size: size}
}

// EncodingLimits tracks the smallest/largest code byte-width and the
// first/last CharCode seen by a map, used to drive codespacerange
// export. The zero value is NOT a valid "empty" sentinel: callers must
// start from NewEncodingLimits, whose inverted range (MinCodeSize at 4,
// the largest real size, MaxCodeSize at 0) lets the first real Update
// call establish both size bounds; FirstChar/LastChar are taken from
// that first call as well. Grounded on pdfmm's PdfEncodingLimits
// default constructor, which seeds MinCodeSize to its maximum possible
// value and MaxCodeSize to zero for the same reason.
type EncodingLimits struct {
	MinCodeSize int
	MaxCodeSize int
	FirstChar   CharCode
	LastChar    CharCode

	seen bool
}

// NewEncodingLimits returns the inverted-range sentinel.
func NewEncodingLimits() EncodingLimits {
	return EncodingLimits{MinCodeSize: 4, MaxCodeSize: 0}
}

// Update folds code into the running limits.
func (l *EncodingLimits) Update(code CharCode) {
	if code.Size < l.MinCodeSize {
		l.MinCodeSize = code.Size
	}
	if code.Size > l.MaxCodeSize {
		l.MaxCodeSize = code.Size
	}
	if !l.seen || code.Code < l.FirstChar.Code {
		l.FirstChar = code
	}
	if !l.seen || code.Code > l.LastChar.Code {
		l.LastChar = code
	}
	l.seen = true
}

// CharCodeMap is the bidirectional map a predefined, difference, or
// CMap-derived encoding holds internally.
type CharCodeMap struct {
	forward map[CharCode][]rune
	inverse map[string]CharCode // keyed by string(codepoints), for exact + prefix scanning
	limits  EncodingLimits
}

// NewCharCodeMap builds an empty map.
func NewCharCodeMap() *CharCodeMap {
	return &CharCodeMap{
		forward: make(map[CharCode][]rune),
		inverse: make(map[string]CharCode),
		limits:  NewEncodingLimits(),
	}
}

// PushMapping records code -> codepoints. A later call for the same
// code overwrites the earlier mapping, matching pdfmm's PushMapping
// (last write wins, used when a CMap redefines a code within its own
// bfrange blocks).
func (m *CharCodeMap) PushMapping(code CharCode, codepoints []rune) error {
	if len(codepoints) == 0 {
		return pdferr.New(pdferr.InvalidDataType, "a mapping must carry at least one codepoint")
	}
	cp := append([]rune(nil), codepoints...)
	m.forward[code] = cp
	m.inverse[string(cp)] = code
	m.limits.Update(code)
	return nil
}

// Limits reports the running EncodingLimits.
func (m *CharCodeMap) Limits() EncodingLimits {
	return m.limits
}

// TryGetCodePoints returns the codepoints mapped to code, if any.
func (m *CharCodeMap) TryGetCodePoints(code CharCode) ([]rune, bool) {
	cp, ok := m.forward[code]
	return cp, ok
}

// TryGetCharCode returns the CharCode whose codepoints exactly match
// codepoints (a ligature lookup), per pdfmm's TryGetCharCode(codepoints).
func (m *CharCodeMap) TryGetCharCode(codepoints []rune) (CharCode, bool) {
	code, ok := m.inverse[string(codepoints)]
	return code, ok
}

// TryGetNextCharCode finds the CharCode for the longest prefix of
// codepoints that this map has a mapping for, returning that CharCode
// and how many runes of the prefix it consumed. This is the ligature-
// aware lookup pdfmm's tryGetNextCodePoints performs when building a
// ToUnicode export or converting text to codes: a span like "ffi" must
// be tried as a whole before falling back to its individual runes.
func (m *CharCodeMap) TryGetNextCharCode(codepoints []rune) (CharCode, int, bool) {
	maxSpan := len(codepoints)
	if maxSpan > 8 {
		maxSpan = 8 // no real ligature binds more than a handful of codepoints
	}
	for span := maxSpan; span >= 1; span-- {
		if code, ok := m.inverse[string(codepoints[:span])]; ok {
			return code, span, true
		}
	}
	return CharCode{}, 0, false
}

// Len reports how many code->codepoints mappings are recorded.
func (m *CharCodeMap) Len() int {
	return len(m.forward)
}

// Codes returns every CharCode with a mapping, in no particular order;
// callers that need determinism sort the result themselves.
func (m *CharCodeMap) Codes() []CharCode {
	out := make([]CharCode, 0, len(m.forward))
	for c := range m.forward {
		out = append(out, c)
	}
	return out
}
