// Package xref implements the two cross-reference table encodings: the
// classic plain-text table and the compact cross-reference
// stream introduced in PDF 1.5, both built from the same ordered list
// of entries handed to them by the writer.
package xref

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/inkfathom/pdfcore/pdferr"
)

// EntryType distinguishes a free slot, an in-use direct object, and (for
// the stream form only) an object compressed inside an object stream.
type EntryType int

const (
	EntryFree EntryType = iota
	EntryInUse
	EntryCompressed
)

// Entry is one cross-reference record. Offset is the byte offset for
// EntryInUse, the next free object number for EntryFree, and the
// containing object-stream's object number for EntryCompressed (with
// Generation repurposed as the index within that stream, per the
// stream-form field 3 semantics of 7.5.8.3 in the ISO spec).
type Entry struct {
	Type       EntryType
	ObjectNum  uint32
	Generation uint16
	Offset     int64
}

// XRef is the ordered set of entries being built up for a single
// incremental or full write.
type XRef struct {
	entries map[uint32]*Entry
	order   []uint32
}

// New builds an empty XRef.
func New() *XRef {
	return &XRef{entries: make(map[uint32]*Entry)}
}

// AddInUse records objectNum as a live object at offset.
func (x *XRef) AddInUse(objectNum uint32, generation uint16, offset int64) {
	x.set(&Entry{Type: EntryInUse, ObjectNum: objectNum, Generation: generation, Offset: offset})
}

// AddFree records objectNum as free, pointing at nextFree (the next
// entry in the free list chain; 0 terminates it).
func (x *XRef) AddFree(objectNum uint32, generation uint16, nextFree uint32) {
	x.set(&Entry{Type: EntryFree, ObjectNum: objectNum, Generation: generation, Offset: int64(nextFree)})
}

// AddCompressed records objectNum as living at index within the object
// stream identified by streamObjectNum.
func (x *XRef) AddCompressed(objectNum uint32, streamObjectNum uint32, index int) {
	x.set(&Entry{Type: EntryCompressed, ObjectNum: objectNum, Generation: uint16(index), Offset: int64(streamObjectNum)})
}

func (x *XRef) set(e *Entry) {
	if _, exists := x.entries[e.ObjectNum]; !exists {
		x.order = append(x.order, e.ObjectNum)
	}
	x.entries[e.ObjectNum] = e
}

// ShouldSkipWrite reports whether objectNum has no entry at all, i.e.
// nothing the writer should emit for it. A present entry is always
// written, free entries included; numbers with no entry are left out,
// and Write starts a new subsection after each such gap.
func (x *XRef) ShouldSkipWrite(objectNum uint32) bool {
	_, ok := x.entries[objectNum]
	return !ok
}

func (x *XRef) sortedNumbers() []uint32 {
	nums := append([]uint32(nil), x.order...)
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

// subsection is a maximal run of consecutive object numbers, the unit
// the classic table groups entries into.
type subsection struct {
	start int
	nums  []uint32
}

func (x *XRef) subsections() []subsection {
	nums := x.sortedNumbers()
	var out []subsection
	i := 0
	for i < len(nums) {
		j := i + 1
		for j < len(nums) && nums[j] == nums[j-1]+1 {
			j++
		}
		out = append(out, subsection{start: int(nums[i]), nums: nums[i:j]})
		i = j
	}
	return out
}

// Write renders the classic "xref\n...\ntrailer\n<<...>>" table, one
// subsection per maximal run of consecutive object numbers. Always
// coalesces consecutive numbers into the fewest subsections rather than
// preserving original insertion-order chunking, since a reader must
// accept either grouping and a fully coalesced table is the smaller
// write.
func (x *XRef) Write(trailer string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("xref\n")
	for _, sub := range x.subsections() {
		fmt.Fprintf(&buf, "%d %d\n", sub.start, len(sub.nums))
		for _, num := range sub.nums {
			e := x.entries[num]
			if err := writeClassicEntry(&buf, e); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteString("trailer\n")
	buf.WriteString(trailer)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// writeClassicEntry emits the fixed 20-byte classic entry: a 10-digit
// offset/next-free, a 5-digit generation, 'n' or 'f', and "\r\n", per
// 7.5.4 of the ISO spec.
func writeClassicEntry(buf *bytes.Buffer, e *Entry) error {
	switch e.Type {
	case EntryInUse:
		if e.Offset < 0 || e.Offset > 9999999999 {
			return pdferr.Newf(pdferr.InvalidXRefType, "offset %d out of range for classic entry", e.Offset)
		}
		fmt.Fprintf(buf, "%010d %05d n\r\n", e.Offset, e.Generation)
	case EntryFree:
		fmt.Fprintf(buf, "%010d %05d f\r\n", e.Offset, e.Generation)
	case EntryCompressed:
		return pdferr.New(pdferr.InvalidXRefType, "compressed entries are not representable in a classic table")
	default:
		return pdferr.Newf(pdferr.InvalidXRefType, "unknown entry type %d", e.Type)
	}
	return nil
}

// StreamFields packs every entry into the (type, field2, field3) record
// format a cross-reference stream uses, with widths w1, w2, w3 (the
// /W array), per 7.5.8.2. A caller with no free or compressed entries
// may pass w1=0, in which case type 1 (in use) is implied for every
// entry omitted from the stream's own classification and w1 must still
// be at least 1 if any free or compressed entry is present.
func (x *XRef) StreamFields(w1, w2, w3 int) ([]byte, error) {
	if w1 < 0 || w2 < 0 || w3 < 0 {
		return nil, pdferr.New(pdferr.InvalidXRefStream, "negative /W field width")
	}
	var buf bytes.Buffer
	for _, num := range x.sortedNumbers() {
		e := x.entries[num]
		var typ, f2, f3 int64
		switch e.Type {
		case EntryFree:
			typ, f2, f3 = 0, e.Offset, int64(e.Generation)
		case EntryInUse:
			typ, f2, f3 = 1, e.Offset, int64(e.Generation)
		case EntryCompressed:
			typ, f2, f3 = 2, e.Offset, int64(e.Generation)
		}
		if w1 > 0 {
			if err := writeBigEndian(&buf, typ, w1); err != nil {
				return nil, err
			}
		}
		if err := writeBigEndian(&buf, f2, w2); err != nil {
			return nil, err
		}
		if err := writeBigEndian(&buf, f3, w3); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeBigEndian(buf *bytes.Buffer, v int64, width int) error {
	if width == 0 {
		return nil
	}
	if v < 0 {
		return pdferr.Newf(pdferr.InvalidXRefStream, "negative field value %d", v)
	}
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v & 0xFF)
		v >>= 8
	}
	if v != 0 {
		return pdferr.Newf(pdferr.InvalidXRefStream, "field value overflows width %d", width)
	}
	buf.Write(out)
	return nil
}

// ParseStreamFields is the inverse of StreamFields, decoding a
// cross-reference stream's raw decoded byte payload back into entries
// given the same w1, w2, w3 widths and the index base/count pairs from
// /Index (or the implicit [0 Size] when /Index is absent).
func ParseStreamFields(data []byte, w1, w2, w3 int, index [][2]int) (*XRef, error) {
	if w1 < 0 || w2 < 0 || w3 < 0 {
		return nil, pdferr.New(pdferr.InvalidXRefStream, "negative /W field width")
	}
	width := w1 + w2 + w3
	if width == 0 {
		return nil, pdferr.New(pdferr.InvalidXRefStream, "/W entries sum to zero")
	}
	x := New()
	pos := 0
	for _, pair := range index {
		base, count := pair[0], pair[1]
		for i := 0; i < count; i++ {
			if pos+width > len(data) {
				return nil, pdferr.New(pdferr.InvalidXRefStream, "truncated cross-reference stream")
			}
			typ := int64(1)
			if w1 > 0 {
				typ = readBigEndian(data[pos : pos+w1])
			}
			pos += w1
			f2 := readBigEndian(data[pos : pos+w2])
			pos += w2
			f3 := readBigEndian(data[pos : pos+w3])
			pos += w3

			num := uint32(base + i)
			switch typ {
			case 0:
				x.AddFree(num, uint16(f3), uint32(f2))
			case 1:
				x.AddInUse(num, uint16(f3), f2)
			case 2:
				x.AddCompressed(num, uint32(f2), int(f3))
			default:
				return nil, pdferr.Newf(pdferr.InvalidXRefType, "unknown xref stream entry type %d", typ)
			}
		}
	}
	return x, nil
}

func readBigEndian(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

// Entries returns every recorded entry, sorted by object number.
func (x *XRef) Entries() []*Entry {
	nums := x.sortedNumbers()
	out := make([]*Entry, len(nums))
	for i, n := range nums {
		out[i] = x.entries[n]
	}
	return out
}

// Size is the highest object number plus one, the /Size trailer value.
func (x *XRef) Size() int {
	max := 0
	for _, n := range x.order {
		if int(n)+1 > max {
			max = int(n) + 1
		}
	}
	return max
}
