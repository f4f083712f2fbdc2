// Package object implements the indirect object node: the unit the
// cross-reference table addresses, wrapping a Value with identity, dirty
// tracking, an optional attached Stream, and delayed loading.
package object

import (
	"fmt"

	"github.com/inkfathom/pdfcore/container"
	"github.com/inkfathom/pdfcore/pdferr"
	"github.com/inkfathom/pdfcore/pdfval"
)

// Loader defers materializing an object's Value until first access, for
// entries read from an object stream or a lazily-parsed body.
type Loader func() (pdfval.Object, error)

// StreamAttachment is the capability a Stream needs to participate in an
// Object's dirty tracking and to keep its dictionary's /Length entry in
// sync, implemented in package stream. Kept as an interface here (rather
// than importing package stream, which imports package filter and would
// otherwise be free to import object back) purely to keep the
// dependency graph a DAG; object never needs to call into stream beyond
// this.
type StreamAttachment interface {
	SetOwner(o container.Owner)
	BindDictionary(d *container.Dictionary)
}

// Object is an indirect object: a stable (object number, generation)
// identity bound to a Value, with dirty tracking that propagates up from
// any Array/Dictionary it owns.
type Object struct {
	ref pdfval.Reference

	value  pdfval.Object
	stream StreamAttachment

	dirty     bool
	immutable bool

	loader Loader
	loaded bool
}

// New wraps value under ref, immediately attaching container ownership
// so later mutations inside value mark this Object dirty.
func New(ref pdfval.Reference, value pdfval.Object) *Object {
	o := &Object{ref: ref, loaded: true}
	o.setValue(value)
	return o
}

// NewDelayed builds an Object whose Value is not materialized until the
// first call to Value(), so a reader can register objects without
// parsing them up front. ObjectStore itself does not create delayed
// objects; it only stores what it is given.
func NewDelayed(ref pdfval.Reference, loader Loader) *Object {
	return &Object{ref: ref, loader: loader}
}

func (o *Object) setValue(value pdfval.Object) {
	o.detachOwnership(o.value)
	o.value = value
	o.attachOwnership(value)
}

func (o *Object) attachOwnership(value pdfval.Object) {
	switch v := value.(type) {
	case *container.Array:
		v.SetOwner(o)
	case *container.Dictionary:
		v.SetOwner(o)
	}
}

func (o *Object) detachOwnership(value pdfval.Object) {
	switch v := value.(type) {
	case *container.Array:
		v.SetOwner(nil)
	case *container.Dictionary:
		v.SetOwner(nil)
	}
}

// Reference reports this object's stable identity.
func (o *Object) Reference() pdfval.Reference { return o.ref }

// Renumber rewrites this object's own identity to ref, used by a
// garbage collector that compacts surviving objects into a contiguous
// run of object numbers. It does not touch any other object's
// references to this one; the caller is responsible for rewriting
// those separately.
func (o *Object) Renumber(ref pdfval.Reference) { o.ref = ref }

// Value resolves the delayed loader on first access and returns the
// current Value.
func (o *Object) Value() (pdfval.Object, error) {
	if !o.loaded {
		if o.loader == nil {
			return nil, pdferr.New(pdferr.InternalLogic, "object has no value and no loader")
		}
		v, err := o.loader()
		if err != nil {
			return nil, err
		}
		o.loaded = true
		o.setValue(v)
	}
	return o.value, nil
}

// SetValue replaces the object's Value, failing with ChangeOnImmutable
// if the object has been sealed.
func (o *Object) SetValue(value pdfval.Object) error {
	if o.immutable {
		return pdferr.Newf(pdferr.ChangeOnImmutable, "object %s is immutable", o.ref.PDFString())
	}
	o.loaded = true
	o.setValue(value)
	o.MarkDirty()
	return nil
}

// AttachStream binds s as this object's stream body, lets s report
// dirtiness back through this Object, and, if the Object's current
// Value is a Dictionary, hands s that dictionary so it can keep /Length
// synchronized as the stream's filtered content changes.
func (o *Object) AttachStream(s StreamAttachment) {
	o.stream = s
	if s == nil {
		return
	}
	s.SetOwner(o)
	if dict, ok := o.value.(*container.Dictionary); ok {
		s.BindDictionary(dict)
	}
}

// Stream returns the attached stream capability, or nil if this object
// carries no stream body.
func (o *Object) Stream() StreamAttachment { return o.stream }

// MarkDirty satisfies container.Owner: any mutation inside a
// Array/Dictionary this Object owns calls back here.
func (o *Object) MarkDirty() { o.dirty = true }

// IsDirty reports whether this object has unwritten changes.
func (o *Object) IsDirty() bool { return o.dirty }

// ClearDirty resets the dirty flag, called by the writer once the
// object's current state has been serialized.
func (o *Object) ClearDirty() { o.dirty = false }

// Seal marks the object immutable; further SetValue calls fail.
func (o *Object) Seal() { o.immutable = true }

// IsImmutable reports whether Seal has been called.
func (o *Object) IsImmutable() bool { return o.immutable }

// PDFString renders "N G obj\n...\nendobj", the on-disk indirect object
// syntax. Callers needing the stream body appended use the stream
// package's own writer, since Object itself doesn't know the filter
// chain's on-wire form.
func (o *Object) PDFString() string {
	v := o.value
	if v == nil {
		v = pdfval.Null{}
	}
	return fmt.Sprintf("%d %d obj\n%s\nendobj", o.ref.ObjectNumber, o.ref.GenerationNumber, v.PDFString())
}
