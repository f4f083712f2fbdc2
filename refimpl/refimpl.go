// Package refimpl holds small reference implementations of capabilities
// this core leaves to its callers (font metrics, encryption, storage
// backends): just enough of each to drive this module's own tests
// end-to-end, not production-grade implementations of those concerns.
// Grounded on pdfcpu's font.TTFLight
// (pkg/font/metrics.go) for the font-metrics shape and on pdfmm's RC4
// usage for the encryption shape; storage is this package's own minimal
// io.ReaderAt/io.WriterAt pair.
package refimpl

import (
	"crypto/md5"
	"crypto/rc4"
	"io"
	"os"
	"sync"

	"github.com/inkfathom/pdfcore/pdferr"
)

// StaticFontMetrics is a fixed-table stand-in for a real font program's
// metrics, shaped after pdfcpu's font.TTFLight: a glyph-width table
// keyed by Unicode codepoint plus font-wide ascent/descent/units-per-em,
// enough for a test to exercise width-dependent code (e.g. text layout
// math) without parsing an actual TTF/Type1 font file.
type StaticFontMetrics struct {
	UnitsPerEm int
	Ascent     int
	Descent    int
	Widths     map[rune]int
	Default    int
}

// NewStaticFontMetrics builds a StaticFontMetrics with a fixed default
// glyph width for runes not present in widths.
func NewStaticFontMetrics(unitsPerEm, ascent, descent, defaultWidth int, widths map[rune]int) *StaticFontMetrics {
	return &StaticFontMetrics{
		UnitsPerEm: unitsPerEm,
		Ascent:     ascent,
		Descent:    descent,
		Widths:     widths,
		Default:    defaultWidth,
	}
}

// WidthOf returns the glyph width for r in font design units.
func (m *StaticFontMetrics) WidthOf(r rune) int {
	if w, ok := m.Widths[r]; ok {
		return w
	}
	return m.Default
}

// RC4Encrypt is a minimal stand-in for PDF standard security handler
// encryption, combining an MD5-derived key (the same key-derivation
// shape pdfmm's encryption support uses, simplified to a single round
// with no padding-string/permission mixing) with crypto/rc4 stream
// encryption. It exists so object-store and stream round-trip tests can
// exercise an "encrypted stream" code path without this core itself
// carrying real PDF encryption.
type RC4Encrypt struct {
	key []byte
}

// NewRC4Encrypt derives a key from password via a single MD5 pass.
func NewRC4Encrypt(password []byte) *RC4Encrypt {
	sum := md5.Sum(password)
	return &RC4Encrypt{key: sum[:]}
}

// Encrypt returns the RC4 keystream applied to plaintext. RC4 is
// symmetric, so Decrypt is the same operation.
func (e *RC4Encrypt) Encrypt(plaintext []byte) ([]byte, error) {
	c, err := rc4.NewCipher(e.key)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.InternalLogic, err, "RC4 cipher init")
	}
	out := make([]byte, len(plaintext))
	c.XORKeyStream(out, plaintext)
	return out, nil
}

// Decrypt is RC4's own inverse.
func (e *RC4Encrypt) Decrypt(ciphertext []byte) ([]byte, error) {
	return e.Encrypt(ciphertext)
}

// Device is a random-access byte store, the capability a file-backed
// Stream variant needs.
type Device interface {
	io.ReaderAt
	io.WriterAt
	Truncate(size int64) error
	Close() error
}

// MemoryDevice is an in-memory Device, for tests that want file-backed-
// stream semantics without touching disk.
type MemoryDevice struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryDevice builds an empty MemoryDevice.
func NewMemoryDevice() *MemoryDevice {
	return &MemoryDevice{}
}

func (m *MemoryDevice) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemoryDevice) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := off + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[off:], p)
	return len(p), nil
}

func (m *MemoryDevice) Truncate(size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size < int64(len(m.data)) {
		m.data = m.data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, m.data)
	m.data = grown
	return nil
}

func (m *MemoryDevice) Close() error { return nil }

// Bytes returns a copy of the device's current content, for test
// assertions.
func (m *MemoryDevice) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// FileDevice is a Device backed by an *os.File.
type FileDevice struct {
	f *os.File
}

// OpenFileDevice opens (creating if necessary) path for random-access
// read/write.
func OpenFileDevice(path string) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.InternalLogic, err, "opening file device")
	}
	return &FileDevice{f: f}, nil
}

func (d *FileDevice) ReadAt(p []byte, off int64) (int, error)  { return d.f.ReadAt(p, off) }
func (d *FileDevice) WriteAt(p []byte, off int64) (int, error) { return d.f.WriteAt(p, off) }
func (d *FileDevice) Truncate(size int64) error                { return d.f.Truncate(size) }
func (d *FileDevice) Close() error                              { return d.f.Close() }
