// Package pdfval implements the tagged union of PDF primitive values:
// booleans, numbers, names, strings, references, and raw data. Arrays
// and dictionaries are defined in the sibling container package so they
// can hold an owner back-pointer without this package importing it.
//
// Every variant satisfies Object: a Clone for detached copies, a
// PDFString for on-disk syntax, and the fmt.Stringer contract pdfcpu's
// own Object interface uses for debug/log output.
package pdfval

import (
	"fmt"
	"strconv"

	"github.com/inkfathom/pdfcore/pdferr"
)

// Object is the capability every PDF value variant implements. Modeled
// directly on pdfcpu's types.Object interface: an open sum type realized
// through dynamic dispatch rather than an explicit tag field, which is
// the idiomatic Go shape for this kind of extensible union.
type Object interface {
	fmt.Stringer
	Clone() Object
	PDFString() string
}

// DataType names a Value's variant, for error messages and lenient
// numeric queries that accept either Integer or Real.
type DataType int

const (
	TypeNull DataType = iota
	TypeBool
	TypeInteger
	TypeReal
	TypeName
	TypeString
	TypeArray
	TypeDictionary
	TypeReference
	TypeRawData
)

func (t DataType) String() string {
	switch t {
	case TypeNull:
		return "Null"
	case TypeBool:
		return "Bool"
	case TypeInteger:
		return "Integer"
	case TypeReal:
		return "Real"
	case TypeName:
		return "Name"
	case TypeString:
		return "String"
	case TypeArray:
		return "Array"
	case TypeDictionary:
		return "Dictionary"
	case TypeReference:
		return "Reference"
	case TypeRawData:
		return "RawData"
	default:
		return "Unknown"
	}
}

// KindOf reports the dynamic variant of an Object. Any type this package
// does not define, Array and Dictionary alike, is reported as
// TypeDictionary; container.KindOf tells those two apart.
func KindOf(o Object) DataType {
	switch o.(type) {
	case nil:
		return TypeNull
	case Null:
		return TypeNull
	case Bool:
		return TypeBool
	case Integer:
		return TypeInteger
	case Real:
		return TypeReal
	case Name:
		return TypeName
	case *String:
		return TypeString
	case Reference:
		return TypeReference
	case RawData:
		return TypeRawData
	default:
		// Array/Dictionary live in package container; they implement
		// Object but aren't known here. Callers that need to
		// distinguish those two call container.KindOf first.
		return TypeDictionary
	}
}

// wrongType builds the InvalidDataType error typed accessors return when
// called against a mismatched variant.
func wrongType(want DataType, got Object) error {
	return pdferr.Newf(pdferr.InvalidDataType, "expected %s, got %T", want, got)
}

///////////////////////////////////////////////////////////////////////////
// Null

// Null represents the PDF null object.
type Null struct{}

func (Null) Clone() Object     { return Null{} }
func (Null) String() string    { return "null" }
func (Null) PDFString() string { return "null" }

///////////////////////////////////////////////////////////////////////////
// Bool

// Bool represents a PDF boolean object.
type Bool bool

func (b Bool) Clone() Object     { return b }
func (b Bool) String() string    { return strconv.FormatBool(bool(b)) }
func (b Bool) PDFString() string { return b.String() }
func (b Bool) Value() bool       { return bool(b) }

// AsBool is the fallible typed accessor: fails with InvalidDataType when
// o is not a Bool.
func AsBool(o Object) (bool, error) {
	b, ok := o.(Bool)
	if !ok {
		return false, wrongType(TypeBool, o)
	}
	return bool(b), nil
}

///////////////////////////////////////////////////////////////////////////
// Integer

// Integer represents a PDF integer object, held as a 64-bit value.
type Integer int64

func (i Integer) Clone() Object     { return i }
func (i Integer) String() string    { return strconv.FormatInt(int64(i), 10) }
func (i Integer) PDFString() string { return i.String() }
func (i Integer) Value() int64      { return int64(i) }

// AsInteger is the fallible typed accessor for Integer.
func AsInteger(o Object) (int64, error) {
	i, ok := o.(Integer)
	if !ok {
		return 0, wrongType(TypeInteger, o)
	}
	return int64(i), nil
}

// AsNumber is the lenient numeric accessor: it accepts either Integer or
// Real and converts either to a float64.
func AsNumber(o Object) (float64, error) {
	switch v := o.(type) {
	case Integer:
		return float64(v), nil
	case Real:
		return float64(v), nil
	default:
		return 0, pdferr.Newf(pdferr.InvalidDataType, "expected a number, got %T", o)
	}
}

///////////////////////////////////////////////////////////////////////////
// Real

// Real represents a PDF real (floating point) object. Real is strictly
// floating point: it is never conflated with Integer at the type level,
// only at the AsNumber lenient accessor.
type Real float64

func (f Real) Clone() Object  { return f }
func (f Real) String() string { return strconv.FormatFloat(float64(f), 'f', -1, 64) }

// PDFString renders with a locale-independent decimal representation:
// strconv is always '.'-radix regardless of process locale, matching
// pdfcpu's own choice of strconv.FormatFloat over fmt verbs for on-wire
// float serialization.
func (f Real) PDFString() string {
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}

func (f Real) Value() float64 { return float64(f) }

// AsReal is the fallible typed accessor for Real.
func AsReal(o Object) (float64, error) {
	f, ok := o.(Real)
	if !ok {
		return 0, wrongType(TypeReal, o)
	}
	return float64(f), nil
}

///////////////////////////////////////////////////////////////////////////
// RawData

// RawData is an opaque byte payload carried as a Value variant, used for
// content that must survive round-trips without reinterpretation.
type RawData []byte

func (r RawData) Clone() Object {
	c := make(RawData, len(r))
	copy(c, r)
	return c
}
func (r RawData) String() string    { return fmt.Sprintf("<%d bytes>", len(r)) }
func (r RawData) PDFString() string { return string(r) }

// AsRawData is the fallible typed accessor for RawData.
func AsRawData(o Object) (RawData, error) {
	r, ok := o.(RawData)
	if !ok {
		return nil, wrongType(TypeRawData, o)
	}
	return r, nil
}
