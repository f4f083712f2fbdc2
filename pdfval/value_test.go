package pdfval

import "testing"

func TestKindOf(t *testing.T) {
	cases := []struct {
		v    Object
		want DataType
	}{
		{Null{}, TypeNull},
		{Bool(true), TypeBool},
		{Integer(5), TypeInteger},
		{Real(1.5), TypeReal},
		{NewNameFromString("Foo"), TypeName},
		{NewReference(1, 0), TypeReference},
		{RawData{1, 2, 3}, TypeRawData},
	}
	for _, c := range cases {
		if got := KindOf(c.v); got != c.want {
			t.Errorf("KindOf(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestAsNumberAcceptsIntegerOrReal(t *testing.T) {
	if v, err := AsNumber(Integer(3)); err != nil || v != 3 {
		t.Fatalf("AsNumber(Integer) = %v, %v", v, err)
	}
	if v, err := AsNumber(Real(3.5)); err != nil || v != 3.5 {
		t.Fatalf("AsNumber(Real) = %v, %v", v, err)
	}
	if _, err := AsNumber(Bool(true)); err == nil {
		t.Fatal("expected an error for a non-numeric value")
	}
}

func TestRealPDFStringIsLocaleIndependent(t *testing.T) {
	if got := Real(3.14).PDFString(); got != "3.14" {
		t.Fatalf("PDFString() = %q", got)
	}
}

func TestReferencePDFString(t *testing.T) {
	r := NewReference(12, 0)
	if got := r.PDFString(); got != "12 0 R" {
		t.Fatalf("PDFString() = %q", got)
	}
}

func TestReferenceLess(t *testing.T) {
	a := NewReference(1, 0)
	b := NewReference(2, 0)
	if !a.Less(b) || b.Less(a) {
		t.Fatal("reference ordering by object number is broken")
	}
}
