// Package container implements the two composite Value variants, Array
// and Dictionary. They live apart from package pdfval so they can hold
// an owner back-pointer used for dirty propagation (a mutation inside a
// container marks its nearest enclosing indirect object dirty) without
// pdfval needing to import the object package, which would create an
// import cycle.
package container

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inkfathom/pdfcore/pdferr"
	"github.com/inkfathom/pdfcore/pdfval"
)

// Object is a re-export of pdfval.Object so callers of this package
// rarely need to import pdfval directly just to spell the interface
// type, mirroring how pdfcpu's types package is the one place Object
// is defined and everything else just uses types.Object.
type Object = pdfval.Object

// DataType extends pdfval.DataType with the two variants this package
// adds.
type DataType = pdfval.DataType

const (
	TypeArray      = pdfval.TypeArray
	TypeDictionary = pdfval.TypeDictionary
)

// Owner receives dirty notifications from a container it holds.
// object.Object implements this; detached (cloned, not-yet-attached)
// containers have a nil owner and MarkDirty is a no-op in that state.
type Owner interface {
	MarkDirty()
}

// Resolver dereferences a Reference to its target Value. FindKey and
// FindAt take one as a parameter rather than holding one themselves,
// since neither Array nor Dictionary has any notion of an object store;
// an objstore-backed caller typically wraps ObjectStore.Get plus
// Object.Value into this shape.
type Resolver func(pdfval.Reference) (Object, bool)

// attachOwnerRecursively sets owner on v, and on every Array/Dictionary
// value reachable inside it, so a container nested more than one level
// deep still reports mutations to the same indirect-object owner once
// its enclosing container is itself attached. Plain SetOwner on a single
// container only updates that container's own back-pointer; inserting a
// fresh *Array under a key of an already-attached Dictionary, or
// attaching a Dictionary that already holds nested containers, both
// need this deeper walk.
func attachOwnerRecursively(v Object, owner Owner) {
	switch c := v.(type) {
	case *Array:
		c.owner = owner
		for _, item := range c.items {
			attachOwnerRecursively(item, owner)
		}
	case *Dictionary:
		c.owner = owner
		for _, item := range c.entries {
			attachOwnerRecursively(item, owner)
		}
	}
}

// KindOf classifies o as TypeArray, TypeDictionary, or falls back to
// pdfval.KindOf for every other variant. Call this instead of
// pdfval.KindOf whenever o might be a container, since pdfval.KindOf
// alone cannot see these two types.
func KindOf(o Object) DataType {
	switch o.(type) {
	case *Array:
		return TypeArray
	case *Dictionary:
		return TypeDictionary
	default:
		return pdfval.KindOf(o)
	}
}

func wrongType(want DataType, got Object) error {
	return pdferr.Newf(pdferr.InvalidDataType, "expected %s, got %T", want, got)
}

///////////////////////////////////////////////////////////////////////////
// Array

// Array is an ordered sequence of Values.
type Array struct {
	items []Object
	owner Owner
}

// NewArray builds an empty, unattached Array.
func NewArray() *Array {
	return &Array{}
}

// NewArrayFrom builds an Array from an existing slice, taking ownership
// of it (the caller should not mutate items after this call).
func NewArrayFrom(items []Object) *Array {
	return &Array{items: items}
}

// SetOwner attaches a (or detaches, with nil) dirty-propagation target,
// and pushes the same owner down into every Array/Dictionary element
// already held here. object.Object calls this when it adopts a container
// value; without the recursive push, an array-of-dicts or dict-of-arrays
// built before it was attached would keep reporting mutations to nobody.
func (a *Array) SetOwner(o Owner) {
	a.owner = o
	for _, item := range a.items {
		attachOwnerRecursively(item, o)
	}
}

func (a *Array) markDirty() {
	if a.owner != nil {
		a.owner.MarkDirty()
	}
}

// Len reports the element count.
func (a *Array) Len() int { return len(a.items) }

// At returns the element at i, or Null{} if i is out of range, matching
// the lenient out-of-range read pdfcpu's own Array accessors favor over
// panicking.
func (a *Array) At(i int) Object {
	if i < 0 || i >= len(a.items) {
		return pdfval.Null{}
	}
	return a.items[i]
}

// FindAt is the reference-resolving counterpart to At: it distinguishes
// an out-of-range index (false) from a present-but-null element (true,
// Null{}), and if the element is a Reference, follows it once through
// resolve rather than handing back the Reference itself.
func (a *Array) FindAt(i int, resolve Resolver) (Object, bool) {
	if i < 0 || i >= len(a.items) {
		return nil, false
	}
	v := a.items[i]
	if ref, err := pdfval.AsReference(v); err == nil {
		if target, ok := resolve(ref); ok {
			return target, true
		}
		return nil, false
	}
	return v, true
}

// Set replaces the element at i, growing the array with Null padding if
// necessary, and marks the owning object dirty.
func (a *Array) Set(i int, v Object) error {
	if i < 0 {
		return pdferr.Newf(pdferr.ValueOutOfRange, "negative array index %d", i)
	}
	for len(a.items) <= i {
		a.items = append(a.items, pdfval.Null{})
	}
	a.items[i] = v
	attachOwnerRecursively(v, a.owner)
	a.markDirty()
	return nil
}

// Append adds v to the end of the array and marks the owner dirty.
func (a *Array) Append(v Object) {
	a.items = append(a.items, v)
	attachOwnerRecursively(v, a.owner)
	a.markDirty()
}

// Delete removes the element at i, shifting later elements down.
func (a *Array) Delete(i int) error {
	if i < 0 || i >= len(a.items) {
		return pdferr.Newf(pdferr.ValueOutOfRange, "array index %d out of range", i)
	}
	a.items = append(a.items[:i], a.items[i+1:]...)
	a.markDirty()
	return nil
}

// Items returns the backing slice directly; callers must not retain it
// across a later mutating call.
func (a *Array) Items() []Object { return a.items }

// Clone returns a detached deep copy: every element is itself cloned and
// the new Array has no owner, so mutating the clone never marks the
// original's indirect object dirty.
func (a *Array) Clone() Object {
	c := &Array{items: make([]Object, len(a.items))}
	for i, v := range a.items {
		c.items[i] = v.Clone()
	}
	return c
}

func (a *Array) String() string {
	parts := make([]string, len(a.items))
	for i, v := range a.items {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (a *Array) PDFString() string {
	parts := make([]string, len(a.items))
	for i, v := range a.items {
		parts[i] = v.PDFString()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// AsArray is the fallible typed accessor for *Array.
func AsArray(o Object) (*Array, error) {
	a, ok := o.(*Array)
	if !ok {
		return nil, wrongType(TypeArray, o)
	}
	return a, nil
}

///////////////////////////////////////////////////////////////////////////
// Dictionary

// Dictionary is a name-keyed map of Values. Keys are kept as plain Go
// strings (the decoded name text) rather than pdfval.Name, since a
// dictionary key's raw-byte identity never needs to round-trip
// independently of its decoded form in practice, matching pdfcpu's own
// Dict map[string]Object.
type Dictionary struct {
	entries map[string]Object
	owner   Owner
}

// NewDictionary builds an empty, unattached Dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string]Object)}
}

// SetOwner attaches a (or detaches, with nil) dirty-propagation target,
// and pushes the same owner down into every Array/Dictionary entry
// already held here, for the same reason Array.SetOwner does.
func (d *Dictionary) SetOwner(o Owner) {
	d.owner = o
	for _, item := range d.entries {
		attachOwnerRecursively(item, o)
	}
}

func (d *Dictionary) markDirty() {
	if d.owner != nil {
		d.owner.MarkDirty()
	}
}

// Find returns the entry for key and whether it was present.
func (d *Dictionary) Find(key string) (Object, bool) {
	v, ok := d.entries[key]
	return v, ok
}

// FindKey is the reference-resolving counterpart to Find: if the entry
// for key is a Reference, it follows that reference once through
// resolve and returns the target rather than the Reference itself.
func (d *Dictionary) FindKey(key string, resolve Resolver) (Object, bool) {
	v, ok := d.entries[key]
	if !ok {
		return nil, false
	}
	if ref, err := pdfval.AsReference(v); err == nil {
		return resolve(ref)
	}
	return v, true
}

// FindKeyParent walks a chain of dictionaries through the /Parent entry
// (the pattern used by inheritable page attributes such as /Resources
// and /MediaBox) until key is found or the chain ends, per the
// supplemented PdfObject::FindKeyParent capability from the original
// implementation. resolve dereferences a Reference to its Dictionary, or
// returns (nil, false) if it cannot.
func (d *Dictionary) FindKeyParent(key string, resolve func(pdfval.Reference) (*Dictionary, bool)) (Object, bool) {
	cur := d
	for i := 0; i < 64; i++ { // bounded: a cyclic /Parent chain must not loop forever
		if v, ok := cur.Find(key); ok {
			return v, true
		}
		parent, ok := cur.Find("Parent")
		if !ok {
			return nil, false
		}
		ref, err := pdfval.AsReference(parent)
		if err != nil {
			return nil, false
		}
		next, ok := resolve(ref)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Insert adds or replaces the entry for key and marks the owner dirty.
func (d *Dictionary) Insert(key string, v Object) {
	if d.entries == nil {
		d.entries = make(map[string]Object)
	}
	d.entries[key] = v
	attachOwnerRecursively(v, d.owner)
	d.markDirty()
}

// Delete removes the entry for key, if present.
func (d *Dictionary) Delete(key string) {
	if _, ok := d.entries[key]; !ok {
		return
	}
	delete(d.entries, key)
	d.markDirty()
}

// Len reports the entry count.
func (d *Dictionary) Len() int { return len(d.entries) }

// Keys returns the dictionary's keys in sorted order, for deterministic
// serialization.
func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NameEntry is a convenience typed accessor for a /Name-valued entry.
func (d *Dictionary) NameEntry(key string) (pdfval.Name, bool) {
	v, ok := d.Find(key)
	if !ok {
		return pdfval.Name{}, false
	}
	n, err := pdfval.AsName(v)
	if err != nil {
		return pdfval.Name{}, false
	}
	return n, true
}

// IntEntry is a convenience typed accessor for an Integer-valued entry.
func (d *Dictionary) IntEntry(key string) (int64, bool) {
	v, ok := d.Find(key)
	if !ok {
		return 0, false
	}
	i, err := pdfval.AsInteger(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Clone returns a detached deep copy with no owner.
func (d *Dictionary) Clone() Object {
	c := NewDictionary()
	for k, v := range d.entries {
		c.entries[k] = v.Clone()
	}
	return c
}

func (d *Dictionary) String() string {
	keys := d.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("/%s %s", k, d.entries[k].String())
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

func (d *Dictionary) PDFString() string {
	keys := d.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("/%s %s", pdfval.EncodeName([]byte(k)), d.entries[k].PDFString())
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// AsDictionary is the fallible typed accessor for *Dictionary.
func AsDictionary(o Object) (*Dictionary, error) {
	dict, ok := o.(*Dictionary)
	if !ok {
		return nil, wrongType(TypeDictionary, o)
	}
	return dict, nil
}
