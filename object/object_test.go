package object

import (
	"testing"

	"github.com/inkfathom/pdfcore/container"
	"github.com/inkfathom/pdfcore/pdfval"
)

func TestMutatingOwnedDictionaryMarksObjectDirty(t *testing.T) {
	dict := container.NewDictionary()
	o := New(pdfval.NewReference(1, 0), dict)
	o.ClearDirty()

	dict.Insert("Type", pdfval.NewNameFromString("Catalog"))
	if !o.IsDirty() {
		t.Fatal("mutating the owned dictionary should mark the object dirty")
	}
}

func TestMutatingNestedArrayTwoLevelsDeepMarksObjectDirty(t *testing.T) {
	dict := container.NewDictionary()
	resources := container.NewDictionary()
	dict.Insert("Resources", resources)
	o := New(pdfval.NewReference(1, 0), dict)
	o.ClearDirty()

	kids := container.NewArray()
	resources.Insert("Kids", kids)
	o.ClearDirty()

	kids.Append(pdfval.Integer(1))
	if !o.IsDirty() {
		t.Fatal("mutating an array nested two levels inside the owned dictionary should mark the object dirty")
	}
}

func TestSetValueFailsOnImmutable(t *testing.T) {
	o := New(pdfval.NewReference(1, 0), pdfval.Null{})
	o.Seal()
	if err := o.SetValue(pdfval.Integer(1)); err == nil {
		t.Fatal("expected ChangeOnImmutable error")
	}
}

func TestDelayedLoadResolvesOnce(t *testing.T) {
	calls := 0
	o := NewDelayed(pdfval.NewReference(1, 0), func() (pdfval.Object, error) {
		calls++
		return pdfval.Integer(42), nil
	})
	v1, err := o.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	v2, err := o.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if calls != 1 {
		t.Fatalf("loader should run exactly once, ran %d times", calls)
	}
	i1, _ := pdfval.AsInteger(v1)
	i2, _ := pdfval.AsInteger(v2)
	if i1 != 42 || i2 != 42 {
		t.Fatalf("got %d, %d", i1, i2)
	}
}

func TestPDFStringRendersIndirectObjectSyntax(t *testing.T) {
	o := New(pdfval.NewReference(3, 0), pdfval.Integer(7))
	want := "3 0 obj\n7\nendobj"
	if got := o.PDFString(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
