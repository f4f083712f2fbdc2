package pdfval

import "fmt"

// FreeHeadGeneration is the predefined generation number for the head of
// the free list: the (0, 65535) reference is reserved and never
// addresses a real object. Named the same way pdfcpu names its
// equivalent constant (types.FreeHeadGeneration).
const FreeHeadGeneration = 65535

// MaxGeneration is the first generation number considered "never
// reusable".
const MaxGeneration = 65535

// Reference is an ordered (object number, generation) pair identifying
// an indirect object.
type Reference struct {
	ObjectNumber     uint32
	GenerationNumber uint16
}

// NewReference builds a Reference from plain ints, as most call sites
// construct one ad hoc.
func NewReference(objectNumber uint32, generation uint16) Reference {
	return Reference{ObjectNumber: objectNumber, GenerationNumber: generation}
}

// FreeListHead is the reserved (0, 65535) reference.
func FreeListHead() Reference {
	return Reference{ObjectNumber: 0, GenerationNumber: FreeHeadGeneration}
}

// IsNull reports whether r is the (0,0) "direct value" placeholder
// reference used transiently by objects that aren't indirect.
func (r Reference) IsNull() bool {
	return r.ObjectNumber == 0 && r.GenerationNumber == 0
}

// Less orders references by (object number, generation), the stable
// sort order a cross-reference table requires for its entries.
func (r Reference) Less(o Reference) bool {
	if r.ObjectNumber != o.ObjectNumber {
		return r.ObjectNumber < o.ObjectNumber
	}
	return r.GenerationNumber < o.GenerationNumber
}

func (r Reference) Clone() Object { return r }

func (r Reference) String() string {
	return fmt.Sprintf("(%s)", r.PDFString())
}

// PDFString renders "N G R", the on-wire indirect reference syntax.
func (r Reference) PDFString() string {
	return fmt.Sprintf("%d %d R", r.ObjectNumber, r.GenerationNumber)
}

// AsReference is the fallible typed accessor for Reference.
func AsReference(o Object) (Reference, error) {
	r, ok := o.(Reference)
	if !ok {
		return Reference{}, wrongType(TypeReference, o)
	}
	return r, nil
}
