package filter

import (
	"bytes"
	"io"

	"github.com/inkfathom/pdfcore/pdferr"
)

// Predictor algorithm identifiers, per the /DecodeParms /Predictor entry
// for FlateDecode and LZWDecode (adapted from pdfcpu's flateDecode.go
// predictor constants).
const (
	PredictorNo      = 1
	PredictorTIFF    = 2
	PredictorNone    = 10
	PredictorSub     = 11
	PredictorUp      = 12
	PredictorAverage = 13
	PredictorPaeth   = 14
	PredictorOptimum = 15
)

const (
	pngNone    = 0x00
	pngSub     = 0x01
	pngUp      = 0x02
	pngAverage = 0x03
	pngPaeth   = 0x04
)

func applyPredictor(r io.Reader, parms Params) (*bytes.Buffer, error) {
	predictor, found := parms["Predictor"]
	if !found || predictor == PredictorNo {
		var b bytes.Buffer
		if rb, ok := r.(*bytes.Buffer); ok {
			return rb, nil
		}
		if _, err := io.Copy(&b, r); err != nil {
			return nil, err
		}
		return &b, nil
	}

	colors := intParam(parms, "Colors", 1)
	bpc := intParam(parms, "BitsPerComponent", 8)
	columns := intParam(parms, "Columns", 1)
	bytesPerPixel := (bpc*colors + 7) / 8

	rowSize := bpc * colors * columns / 8
	if predictor != PredictorTIFF {
		rowSize++
	}
	if rowSize <= 0 {
		return nil, pdferr.New(pdferr.InvalidStream, "predictor: non-positive row size")
	}

	cr := make([]byte, rowSize)
	pr := make([]byte, rowSize)
	var out bytes.Buffer

	rb, ok := r.(*bytes.Buffer)
	if !ok {
		rb = &bytes.Buffer{}
		if _, err := io.Copy(rb, r); err != nil {
			return nil, err
		}
	}

	for {
		n, err := io.ReadFull(rb, cr)
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				return nil, err
			}
			if n == 0 {
				break
			}
		}
		if n != rowSize {
			return nil, pdferr.Newf(pdferr.InvalidStream, "predictor: expected %d row bytes, got %d", rowSize, n)
		}
		d, err := processRow(pr, cr, predictor, colors, bytesPerPixel)
		if err != nil {
			return nil, err
		}
		out.Write(d)
		pr, cr = cr, pr
	}

	return &out, nil
}

func intParam(parms Params, key string, dflt int) int {
	if v, ok := parms[key]; ok {
		return v
	}
	return dflt
}

func processRow(pr, cr []byte, predictor, colors, bytesPerPixel int) ([]byte, error) {
	if predictor == PredictorTIFF {
		for i := 1; i < len(cr)/colors; i++ {
			for j := 0; j < colors; j++ {
				cr[i*colors+j] += cr[(i-1)*colors+j]
			}
		}
		return cr, nil
	}

	cdat := cr[1:]
	pdat := pr[1:]
	f := int(cr[0])

	switch f {
	case pngNone:
	case pngSub:
		for i := bytesPerPixel; i < len(cdat); i++ {
			cdat[i] += cdat[i-bytesPerPixel]
		}
	case pngUp:
		for i, p := range pdat {
			cdat[i] += p
		}
	case pngAverage:
		for i := 0; i < bytesPerPixel; i++ {
			cdat[i] += pdat[i] / 2
		}
		for i := bytesPerPixel; i < len(cdat); i++ {
			cdat[i] += byte((int(cdat[i-bytesPerPixel]) + int(pdat[i])) / 2)
		}
	case pngPaeth:
		for i := 0; i < bytesPerPixel; i++ {
			cdat[i] += paeth(0, pdat[i], 0)
		}
		for i := bytesPerPixel; i < len(cdat); i++ {
			cdat[i] += paeth(cdat[i-bytesPerPixel], pdat[i], pdat[i-bytesPerPixel])
		}
	default:
		return nil, pdferr.Newf(pdferr.InvalidStream, "predictor: unknown PNG row filter #%02x", f)
	}

	return cdat, nil
}

// paeth is the PNG Paeth predictor (RFC 2083 ss.6.6), adapted from
// pdfcpu's flateDecode.go filterPaeth.
func paeth(a, b, c byte) byte {
	pa := abs(int(b) - int(c))
	pb := abs(int(a) - int(c))
	pc := abs(int(a) + int(b) - 2*int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
