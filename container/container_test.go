package container

import (
	"testing"

	"github.com/inkfathom/pdfcore/pdfval"
)

type fakeOwner struct{ dirty bool }

func (f *fakeOwner) MarkDirty() { f.dirty = true }

func TestArrayMutationMarksOwnerDirty(t *testing.T) {
	a := NewArray()
	owner := &fakeOwner{}
	a.SetOwner(owner)

	a.Append(pdfval.Integer(1))
	if !owner.dirty {
		t.Fatal("Append should mark the owner dirty")
	}

	owner.dirty = false
	if err := a.Set(0, pdfval.Integer(2)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !owner.dirty {
		t.Fatal("Set should mark the owner dirty")
	}
}

func TestArrayCloneIsDetached(t *testing.T) {
	a := NewArray()
	owner := &fakeOwner{}
	a.SetOwner(owner)
	a.Append(pdfval.Integer(1))

	clone, ok := a.Clone().(*Array)
	if !ok {
		t.Fatal("Clone should return an *Array")
	}
	owner.dirty = false
	clone.Append(pdfval.Integer(2))
	if owner.dirty {
		t.Fatal("mutating a clone should not affect the original's owner")
	}
	if a.Len() != 1 {
		t.Fatalf("original array should be unaffected, got len %d", a.Len())
	}
}

func TestDictionaryFindAndInsert(t *testing.T) {
	d := NewDictionary()
	owner := &fakeOwner{}
	d.SetOwner(owner)

	d.Insert("Type", pdfval.NewNameFromString("Catalog"))
	if !owner.dirty {
		t.Fatal("Insert should mark the owner dirty")
	}

	v, ok := d.Find("Type")
	if !ok {
		t.Fatal("expected to find Type entry")
	}
	name, err := pdfval.AsName(v)
	if err != nil {
		t.Fatalf("AsName: %v", err)
	}
	if name.UTF8() != "Catalog" {
		t.Fatalf("got %q", name.UTF8())
	}
}

func TestFindKeyParentWalksChain(t *testing.T) {
	root := NewDictionary()
	root.Insert("Resources", pdfval.NewNameFromString("RootResources"))

	rootRef := pdfval.NewReference(1, 0)
	pages := map[pdfval.Reference]*Dictionary{rootRef: root}

	child := NewDictionary()
	child.Insert("Parent", rootRef)

	resolve := func(ref pdfval.Reference) (*Dictionary, bool) {
		d, ok := pages[ref]
		return d, ok
	}

	v, ok := child.FindKeyParent("Resources", resolve)
	if !ok {
		t.Fatal("expected to find Resources through the parent chain")
	}
	name, err := pdfval.AsName(v)
	if err != nil || name.UTF8() != "RootResources" {
		t.Fatalf("got %v, %v", name, err)
	}
}

func TestDictionaryFindKeyResolvesReferenceOnce(t *testing.T) {
	targetRef := pdfval.NewReference(7, 0)
	target := pdfval.NewNameFromString("Target")
	resolve := func(ref pdfval.Reference) (Object, bool) {
		if ref == targetRef {
			return target, true
		}
		return nil, false
	}

	d := NewDictionary()
	d.Insert("Direct", pdfval.Integer(1))
	d.Insert("Indirect", targetRef)

	v, ok := d.FindKey("Direct", resolve)
	if !ok {
		t.Fatal("expected to find Direct")
	}
	if i, err := pdfval.AsInteger(v); err != nil || i != 1 {
		t.Fatalf("got %v, %v", i, err)
	}

	v, ok = d.FindKey("Indirect", resolve)
	if !ok {
		t.Fatal("expected FindKey to resolve Indirect through resolve")
	}
	name, err := pdfval.AsName(v)
	if err != nil || name.UTF8() != "Target" {
		t.Fatalf("expected resolved Target name, got %v, %v", name, err)
	}

	if _, ok := d.FindKey("Missing", resolve); ok {
		t.Fatal("expected Missing key to report not found")
	}
}

func TestArrayFindAtResolvesReferenceAndDistinguishesOutOfRange(t *testing.T) {
	targetRef := pdfval.NewReference(9, 0)
	target := pdfval.Integer(42)
	resolve := func(ref pdfval.Reference) (Object, bool) {
		if ref == targetRef {
			return target, true
		}
		return nil, false
	}

	a := NewArray()
	a.Append(targetRef)
	a.Append(pdfval.Null{})

	v, ok := a.FindAt(0, resolve)
	if !ok {
		t.Fatal("expected index 0 to resolve")
	}
	if i, err := pdfval.AsInteger(v); err != nil || i != 42 {
		t.Fatalf("got %v, %v", i, err)
	}

	v, ok = a.FindAt(1, resolve)
	if !ok {
		t.Fatal("expected index 1 (a present null) to report found")
	}
	if _, isNull := v.(pdfval.Null); !isNull {
		t.Fatalf("expected Null at index 1, got %T", v)
	}

	if _, ok := a.FindAt(5, resolve); ok {
		t.Fatal("expected an out-of-range index to report not found")
	}
}

func TestNestedContainerOwnerPropagatesWhenParentIsAttached(t *testing.T) {
	owner := &fakeOwner{}
	outer := NewDictionary()
	inner := NewArray()
	outer.Insert("Kids", inner)
	outer.SetOwner(owner)

	owner.dirty = false
	inner.Append(pdfval.Integer(1))
	if !owner.dirty {
		t.Fatal("appending to a nested array should mark the enclosing dictionary's owner dirty")
	}
}

func TestNestedContainerOwnerPropagatesOnInsertAfterAttachment(t *testing.T) {
	owner := &fakeOwner{}
	outer := NewDictionary()
	outer.SetOwner(owner)

	inner := NewArray()
	owner.dirty = false
	outer.Insert("Kids", inner)
	if !owner.dirty {
		t.Fatal("Insert itself should mark the owner dirty")
	}

	owner.dirty = false
	inner.Append(pdfval.Integer(1))
	if !owner.dirty {
		t.Fatal("mutating a freshly inserted nested array should mark the enclosing owner dirty")
	}
}

func TestKindOfDistinguishesContainers(t *testing.T) {
	if KindOf(NewArray()) != TypeArray {
		t.Fatal("expected TypeArray")
	}
	if KindOf(NewDictionary()) != TypeDictionary {
		t.Fatal("expected TypeDictionary")
	}
	if KindOf(pdfval.Integer(1)) != pdfval.TypeInteger {
		t.Fatal("expected delegation to pdfval.KindOf for non-container values")
	}
}
