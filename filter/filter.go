// Package filter implements the stream filter chain: a
// composable encode/decode pipeline over the standard PDF filters,
// adapted from pdfcpu's pkg/filter package (same filter set, same
// Encode/Decode io.Reader contract). There is no chain type here:
// package stream builds a []Filter from a stream's /Filter names and
// runs each step as a whole-buffer Encode or Decode call.
package filter

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"io"

	"github.com/hhrutter/lzw"
	"github.com/pkg/errors"

	"github.com/inkfathom/pdfcore/corelog"
	"github.com/inkfathom/pdfcore/pdferr"
)

// Name constants for the /Filter dictionary entry, matching pdfcpu's
// pkg/filter name constants.
const (
	ASCII85  = "ASCII85Decode"
	ASCIIHex = "ASCIIHexDecode"
	RunLen   = "RunLengthDecode"
	LZW      = "LZWDecode"
	Flate    = "FlateDecode"
)

// Params carries a filter's optional /DecodeParms entries.
type Params map[string]int

// Filter is a single step of a filter chain: whole-buffer Encode/Decode,
// the same contract pdfcpu's Filter interface uses.
type Filter interface {
	Encode(r io.Reader) (*bytes.Buffer, error)
	Decode(r io.Reader) (*bytes.Buffer, error)
}

// NewFilter is the factory pdfcpu's own filter.NewFilter mirrors: given
// a /Filter name and its /DecodeParms, return the concrete Filter, or
// NotImplemented for anything this core doesn't carry. That includes
// the image filters (DCTDecode/CCITTFaxDecode/JBIG2Decode/JPXDecode):
// no Filter is returned for them, so a stream using one cannot be
// encoded or decoded through this package.
func NewFilter(name string, parms Params) (Filter, error) {
	switch name {
	case ASCII85:
		return ascii85Filter{}, nil
	case ASCIIHex:
		return asciiHexFilter{}, nil
	case RunLen:
		return runLengthFilter{}, nil
	case LZW:
		return lzwFilter{parms: parms}, nil
	case Flate:
		return flateFilter{parms: parms}, nil
	default:
		return nil, pdferr.Newf(pdferr.NotImplemented, "unsupported filter %q", name)
	}
}

// List names every filter this core implements, for validating a
// /Filter array before committing it to a Stream.
func List() []string {
	return []string{ASCII85, ASCIIHex, RunLen, LZW, Flate}
}

///////////////////////////////////////////////////////////////////////////
// ASCII85

type ascii85Filter struct{}

const eodASCII85 = "~>"

func (ascii85Filter) Encode(r io.Reader) (*bytes.Buffer, error) {
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := ascii85.NewEncoder(&buf)
	if _, err := enc.Write(p); err != nil {
		return nil, err
	}
	enc.Close()
	buf.WriteString(eodASCII85)
	return &buf, nil
}

func (ascii85Filter) Decode(r io.Reader) (*bytes.Buffer, error) {
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !bytes.HasSuffix(p, []byte(eodASCII85)) {
		return nil, pdferr.New(pdferr.InvalidStream, "ASCII85Decode: missing eod marker")
	}
	p = p[:len(p)-2]
	dec := ascii85.NewDecoder(bytes.NewReader(p))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, dec); err != nil {
		return nil, err
	}
	return &buf, nil
}

///////////////////////////////////////////////////////////////////////////
// ASCIIHex

type asciiHexFilter struct{}

const eodHex = '>'

func (asciiHexFilter) Encode(r io.Reader) (*bytes.Buffer, error) {
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dst := make([]byte, hex.EncodedLen(len(p)))
	hex.Encode(dst, p)
	dst = append(dst, eodHex)
	return bytes.NewBuffer(dst), nil
}

func (asciiHexFilter) Decode(r io.Reader) (*bytes.Buffer, error) {
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var clean []byte
	for _, b := range p {
		if b == eodHex {
			break
		}
		switch b {
		case 0x09, 0x0A, 0x0C, 0x0D, 0x20:
			// whitespace permitted between digits, skipped
		default:
			clean = append(clean, b)
		}
	}
	if len(clean)%2 == 1 {
		clean = append(clean, '0')
	}
	dst := make([]byte, hex.DecodedLen(len(clean)))
	if _, err := hex.Decode(dst, clean); err != nil {
		return nil, pdferr.Wrap(pdferr.InvalidStream, err, "ASCIIHexDecode: bad hex digit")
	}
	return bytes.NewBuffer(dst), nil
}

///////////////////////////////////////////////////////////////////////////
// RunLength

type runLengthFilter struct{}

const eodRunLength = 0x80

func (runLengthFilter) Encode(r io.Reader) (*bytes.Buffer, error) {
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	encodeRunLength(&b, p)
	return &b, nil
}

func (runLengthFilter) Decode(r io.Reader) (*bytes.Buffer, error) {
	var b bytes.Buffer
	br, ok := r.(io.ByteReader)
	if !ok {
		br = newByteReader(r)
	}
	if err := decodeRunLength(&b, br); err != nil {
		return nil, err
	}
	return &b, nil
}

func decodeRunLength(w *bytes.Buffer, src io.ByteReader) error {
	for {
		b, err := src.ReadByte()
		if err != nil {
			return pdferr.Wrap(pdferr.InvalidStream, err, "RunLengthDecode: missing eod marker")
		}
		if b == eodRunLength {
			return nil
		}
		if b < 0x80 {
			n := int(b) + 1
			for j := 0; j < n; j++ {
				c, err := src.ReadByte()
				if err != nil {
					return pdferr.Wrap(pdferr.InvalidStream, err, "RunLengthDecode: truncated literal run")
				}
				w.WriteByte(c)
			}
			continue
		}
		n := 257 - int(b)
		c, err := src.ReadByte()
		if err != nil {
			return pdferr.Wrap(pdferr.InvalidStream, err, "RunLengthDecode: truncated repeat run")
		}
		for j := 0; j < n; j++ {
			w.WriteByte(c)
		}
	}
}

func encodeRunLength(w *bytes.Buffer, src []byte) {
	const maxLen = 0x80
	if len(src) == 0 {
		w.WriteByte(eodRunLength)
		return
	}
	i := 0
	b := src[i]
	start := i
	for {
		for i < len(src) && src[i] == b && (i-start < maxLen) {
			i++
		}
		c := i - start
		if c > 1 {
			w.WriteByte(byte(257 - c))
			w.WriteByte(b)
			if i == len(src) {
				w.WriteByte(eodRunLength)
				return
			}
			b = src[i]
			start = i
			continue
		}
		for i < len(src) && src[i] != b && (i-start < maxLen) {
			b = src[i]
			i++
		}
		if i == len(src) || i-start == maxLen {
			c = i - start
			w.WriteByte(byte(c - 1))
			w.Write(src[start : start+c])
			if i == len(src) {
				w.WriteByte(eodRunLength)
				return
			}
		} else {
			c = i - 1 - start
			w.WriteByte(byte(c - 1))
			w.Write(src[start : start+c])
			i--
		}
		b = src[i]
		start = i
	}
}

func newByteReader(r io.Reader) io.ByteReader { return &bufByteReader{r: r} }

type bufByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *bufByteReader) ReadByte() (byte, error) {
	_, err := io.ReadFull(b.r, b.buf[:])
	return b.buf[0], err
}

///////////////////////////////////////////////////////////////////////////
// LZW

type lzwFilter struct{ parms Params }

func (f lzwFilter) Encode(r io.Reader) (*bytes.Buffer, error) {
	if corelog.Trace != nil {
		corelog.Trace.Println("EncodeLZW begin")
	}
	ec, ok := f.parms["EarlyChange"]
	if !ok {
		ec = 1
	}
	var b bytes.Buffer
	wc := lzw.NewWriter(&b, ec == 1)
	if _, err := io.Copy(wc, r); err != nil {
		return nil, err
	}
	wc.Close()
	return &b, nil
}

func (f lzwFilter) Decode(r io.Reader) (*bytes.Buffer, error) {
	if p, found := f.parms["Predictor"]; found && p > 1 {
		return nil, pdferr.Newf(pdferr.InvalidStream, "LZWDecode: unsupported predictor %d", p)
	}
	ec, ok := f.parms["EarlyChange"]
	if !ok {
		ec = 1
	}
	rc := lzw.NewReader(r, ec == 1)
	defer rc.Close()
	var b bytes.Buffer
	if _, err := io.Copy(&b, rc); err != nil {
		return nil, err
	}
	return &b, nil
}

///////////////////////////////////////////////////////////////////////////
// Flate

type flateFilter struct{ parms Params }

func (f flateFilter) Encode(r io.Reader) (*bytes.Buffer, error) {
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	if _, err := io.Copy(w, r); err != nil {
		return nil, err
	}
	w.Close()
	return &b, nil
}

func (f flateFilter) Decode(r io.Reader) (*bytes.Buffer, error) {
	rc, err := zlib.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "FlateDecode")
	}
	defer rc.Close()
	var b bytes.Buffer
	if _, err := io.Copy(&b, rc); err != nil {
		return nil, err
	}
	return applyPredictor(&b, f.parms)
}
