package pdfval

import (
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/inkfathom/pdfcore/pdferr"
)

// stringState tracks which decoded form a String currently holds, so
// repeated conversions don't redo work. Equal does not consult it.
type stringState int

const (
	stateRaw stringState = iota
	statePdfDoc
	stateUnicode
)

// presentation controls how a String serializes: as a literal "(...)"
// or as a hex "<...>" object. Both forms decode to the same bytes; the
// presentation is purely a round-trip-fidelity hint, matching pdfcpu's
// separate StringLiteral/HexLiteral types collapsed here into one flag.
type Presentation int

const (
	PresentLiteral Presentation = iota
	PresentHex
)

// String is a PDF string object: raw on-disk bytes plus the decoded text
// view appropriate to the context it is used in (a plain byte string or
// a PDF text string carrying either PDFDocEncoding or UTF-16BE text, per
// 7.9.2.2 of the ISO spec). The two decoded views must agree once both
// are computed; String caches whichever has been requested so far.
type String struct {
	raw          []byte
	presentation Presentation

	state stringState
	text  string // valid once state != stateRaw
}

// NewStringFromBytes builds a String from raw on-disk bytes as read by
// the tokenizer, not yet interpreted as text.
func NewStringFromBytes(raw []byte, p Presentation) *String {
	s := &String{presentation: p, state: stateRaw}
	s.raw = make([]byte, len(raw))
	copy(s.raw, raw)
	return s
}

// NewStringFromText builds a String from a Go (UTF-8) string, encoding
// it as a PDF text string: PDFDocEncoding when every rune fits in
// Windows-1252 (pdfcpu's own stand-in for PDFDocEncoding, since the two
// differ only in a handful of rarely used glyphs), else UTF-16BE with
// the standard 0xFE 0xFF byte-order mark.
func NewStringFromText(text string, p Presentation) *String {
	s := &String{presentation: p, state: stateUnicode, text: text}
	if raw, ok := encodeWindows1252(text); ok {
		s.raw = raw
		return s
	}
	s.raw = encodeUTF16BEWithBOM(text)
	return s
}

func (s *String) Clone() Object {
	c := &String{presentation: s.presentation, state: s.state, text: s.text}
	c.raw = make([]byte, len(s.raw))
	copy(c.raw, s.raw)
	return c
}

func (s *String) String() string {
	text, err := s.Text()
	if err != nil {
		return EncodeLiteral(s.raw)
	}
	return text
}

// PDFString renders the on-disk form, honoring the Presentation flag.
func (s *String) PDFString() string {
	if s.presentation == PresentHex {
		return "<" + strings.ToUpper(hexString(s.raw)) + ">"
	}
	return "(" + EncodeLiteral(s.raw) + ")"
}

// Raw returns the on-disk bytes exactly as lexed or last set.
func (s *String) Raw() []byte {
	return s.raw
}

// Presentation reports the literal-vs-hex serialization hint.
func (s *String) Presentation() Presentation {
	return s.presentation
}

// Text decodes the raw bytes to a Go string, detecting the UTF-16BE BOM
// per the PDF text-string convention and otherwise treating the bytes as
// Windows-1252 (pdfcpu's own stand-in for PDFDocEncoding). The result is
// cached; repeated calls are free.
func (s *String) Text() (string, error) {
	if s.state != stateRaw {
		return s.text, nil
	}
	if len(s.raw) >= 2 && s.raw[0] == 0xFE && s.raw[1] == 0xFF {
		text, err := decodeUTF16BE(s.raw[2:])
		if err != nil {
			return "", pdferr.Wrap(pdferr.InvalidDataType, err, "malformed UTF-16BE text string")
		}
		s.text = text
		s.state = stateUnicode
		return s.text, nil
	}
	s.text = decodeWindows1252(s.raw)
	s.state = statePdfDoc
	return s.text, nil
}

// Equal compares two Strings by their raw on-disk bytes; decoded text
// is derived and is not part of identity.
func (s *String) Equal(o *String) bool {
	return string(s.raw) == string(o.raw)
}

// AsString is the fallible typed accessor for *String.
func AsString(o Object) (*String, error) {
	s, ok := o.(*String)
	if !ok {
		return nil, wrongType(TypeString, o)
	}
	return s, nil
}

func encodeWindows1252(text string) ([]byte, bool) {
	enc := charmap.Windows1252.NewEncoder()
	out, err := enc.String(text)
	if err != nil {
		return nil, false
	}
	return []byte(out), true
}

func decodeWindows1252(raw []byte) string {
	dec := charmap.Windows1252.NewDecoder()
	out, err := dec.String(string(raw))
	if err != nil {
		// Fall back to a lossy byte-for-rune mapping rather than failing;
		// pdfcpu's CP1252ToUTF8 takes the same permissive stance.
		return string(raw)
	}
	return out
}

func encodeUTF16BEWithBOM(text string) []byte {
	units := utf16.Encode([]rune(text))
	out := make([]byte, 2+2*len(units))
	out[0], out[1] = 0xFE, 0xFF
	for i, u := range units {
		out[2+2*i] = byte(u >> 8)
		out[2+2*i+1] = byte(u)
	}
	return out
}

func decodeUTF16BE(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", pdferr.New(pdferr.InvalidDataType, "odd-length UTF-16BE payload")
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return string(utf16.Decode(units)), nil
}

// EncodeLiteral backslash-escapes raw bytes for "(...)" literal string
// syntax: balanced parens pass through unescaped, unmatched '(' or ')'
// and every '\\' are escaped, \n \r \t use the short named escapes, and
// all other bytes are written as is, grounded on pdfcpu's types.Escape
// (pkg/pdfcpu/types/string.go).
func EncodeLiteral(raw []byte) string {
	balanced := make([]bool, len(raw))
	var open []int
	for i, b := range raw {
		switch b {
		case '(':
			open = append(open, i)
		case ')':
			if len(open) > 0 {
				balanced[open[len(open)-1]], balanced[i] = true, true
				open = open[:len(open)-1]
			}
		}
	}
	var sb strings.Builder
	for i, b := range raw {
		switch b {
		case '(', ')':
			if !balanced[i] {
				sb.WriteByte('\\')
			}
			sb.WriteByte(b)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

// DecodeLiteral reverses EncodeLiteral, including octal escapes \ddd of
// one to three digits, a line-continuation backslash-newline, and the
// short named escapes \n \r \t \b \f, per 7.3.4.2 of the ISO spec.
func DecodeLiteral(s string) ([]byte, error) {
	var out []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		if i+1 >= len(s) {
			return nil, pdferr.New(pdferr.InvalidDataType, "trailing backslash in literal string")
		}
		i++
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '(', ')', '\\':
			out = append(out, s[i])
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\n':
			// line continuation, contributes no byte
		default:
			if s[i] >= '0' && s[i] <= '7' {
				val := int(s[i] - '0')
				digits := 1
				for digits < 3 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7' {
					i++
					val = val*8 + int(s[i]-'0')
					digits++
				}
				out = append(out, byte(val))
			} else {
				out = append(out, s[i])
			}
		}
	}
	return out, nil
}

// Reverse returns the text content with its runes in reverse order,
// after first normalizing to NFC so a base letter and its combining
// marks move together as one unit. Used for right-to-left text strings
// (e.g. /Lang-tagged Hebrew/Arabic) where the logical reading order is
// the reverse of storage order. Grounded on pdfcpu's types.Reverse
// (pkg/pdfcpu/types/string.go).
func Reverse(s string) string {
	runes := []rune(norm.NFC.String(s))
	out := make([]rune, len(runes))
	last := len(runes) - 1
	for i, r := range runes {
		out[last-i] = r
	}
	return string(out)
}

func hexString(raw []byte) string {
	const digits = "0123456789abcdef"
	var sb strings.Builder
	for _, b := range raw {
		sb.WriteByte(digits[b>>4])
		sb.WriteByte(digits[b&0xF])
	}
	return sb.String()
}
