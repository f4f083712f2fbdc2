package pdfval

import (
	"encoding/hex"
	"strings"
	"sync"

	"github.com/inkfathom/pdfcore/pdferr"
)

// Name is an interned byte sequence usable as a dictionary key or a
// bare name value. It carries its bytes in the on-disk "PdfDocEncoded"
// form (raw bytes as they appear between the leading '/' and the next
// delimiter, after #XX unescaping) and computes a UTF-8 view lazily on
// first request.
//
// Equality is always on the raw byte form, which is why Name keeps
// a value receiver over []byte rather than exposing the cache directly:
// two Names built from the same bytes compare equal regardless of
// whether either has materialized its UTF-8 view yet.
type Name struct {
	raw []byte

	once sync.Once
	utf8 string
}

// NewName builds a Name from its raw PdfDocEncoded bytes.
func NewName(raw []byte) Name {
	n := Name{raw: make([]byte, len(raw))}
	copy(n.raw, raw)
	return n
}

// NewNameFromString is a convenience for the common case where the
// caller already has a plain ASCII/UTF-8 Go string.
func NewNameFromString(s string) Name {
	return NewName([]byte(s))
}

// Raw returns the raw PdfDocEncoded bytes.
func (n Name) Raw() []byte {
	return n.raw
}

// UTF8 returns the lazily-expanded UTF-8 view. For names built from this
// package's constructors the raw bytes already are taken to be UTF-8 (as
// PDF names in practice almost always are ASCII), so expansion here is
// an identity conversion; the hook exists so an alternate constructor
// backed by a non-UTF-8 source encoding can populate this field without
// changing the equality contract.
func (n *Name) UTF8() string {
	n.once.Do(func() {
		n.utf8 = string(n.raw)
	})
	return n.utf8
}

// Equal compares the raw byte form.
func (n Name) Equal(o Name) bool {
	return string(n.raw) == string(o.raw)
}

func (n Name) Clone() Object {
	return NewName(n.raw)
}

func (n Name) String() string {
	return n.UTF8()
}

// PDFString renders "/name" with #XX escaping of any non-regular byte,
// per the PDF lexical rules. Grounded on pdfcpu's
// types.EncodeName (pkg/pdfcpu/types/string.go), which walks the byte
// string and hex-escapes delimiter/whitespace/non-printable bytes.
func (n Name) PDFString() string {
	return "/" + EncodeName(n.raw)
}

// AsName is the fallible typed accessor for Name.
func AsName(o Object) (Name, error) {
	n, ok := o.(Name)
	if !ok {
		return Name{}, wrongType(TypeName, o)
	}
	return n, nil
}

// needsHexSequence reports whether b must be #XX-escaped per "7.3.5 Name
// Objects": delimiters, '#' itself, and anything outside the regular
// printable range.
func needsHexSequence(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%', '#':
		return true
	}
	return b < '!' || b > '~'
}

// EncodeName applies #XX escaping to raw name bytes for on-wire output.
func EncodeName(raw []byte) string {
	var sb strings.Builder
	for _, b := range raw {
		if needsHexSequence(b) {
			sb.WriteByte('#')
			sb.WriteString(hex.EncodeToString([]byte{b}))
		} else {
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

// DecodeName reverses #XX escaping, returning the raw on-disk bytes for
// a lexed name token (without its leading '/'). A null byte, whether
// literal or the result of decoding "#00", is rejected per pdfcpu's
// DecodeName.
func DecodeName(s string) ([]byte, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == 0 {
			return nil, pdferr.New(pdferr.InvalidName, "a name may not contain a null byte")
		}
		if c != '#' {
			b.WriteByte(c)
			continue
		}
		if len(s) < i+3 {
			return nil, pdferr.New(pdferr.InvalidName, "not enough characters after #")
		}
		decoded, err := hex.DecodeString(s[i+1 : i+3])
		if err != nil {
			return nil, pdferr.Wrap(pdferr.InvalidName, err, "invalid hex escape in name")
		}
		if decoded[0] == 0 {
			return nil, pdferr.New(pdferr.InvalidName, "a name may not contain a null byte")
		}
		b.WriteByte(decoded[0])
		i += 2
	}
	return []byte(b.String()), nil
}
