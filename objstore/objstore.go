// Package objstore implements the ObjectStore: the indexed
// collection of every indirect Object in a document, with a free list
// for number reuse, a deferred-removal "unavailable" set, and a garbage
// collector grounded on pdfmm's two-pass mark-and-sweep approach to
// orphaned indirect objects.
package objstore

import (
	"sort"

	"github.com/inkfathom/pdfcore/container"
	"github.com/inkfathom/pdfcore/object"
	"github.com/inkfathom/pdfcore/pdferr"
	"github.com/inkfathom/pdfcore/pdfval"
)

// MaxObjectCount is the largest object number this store will allocate,
// the PDF spec's implementation limit for indirect object numbers.
const MaxObjectCount = 8388607

// Observer is notified once per object creation or removal, with
// defensive snapshots of the value before and after the change (nil for
// the side that does not exist), so callers (an undo stack, a change
// log) never hold the live Object, which would otherwise keep changing
// under them after the notification fires.
type Observer interface {
	ObjectChanged(ref pdfval.Reference, before, after pdfval.Object)
}

// ObjectStore owns every Object in a document by (object number,
// generation) identity.
type ObjectStore struct {
	objects map[uint32]*object.Object
	order   []uint32 // insertion order of object numbers currently in use

	freeList []pdfval.Reference // deque of reusable (number, generation) slots
	unavailable map[uint32]bool

	nextObjectNumber uint32

	observers []Observer
}

// New builds an empty ObjectStore. Object number 0 is reserved for the
// free-list head and is never handed out.
func New() *ObjectStore {
	return &ObjectStore{
		objects:          make(map[uint32]*object.Object),
		unavailable:      make(map[uint32]bool),
		nextObjectNumber: 1,
	}
}

// AddObserver registers o to receive ObjectChanged notifications.
func (s *ObjectStore) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *ObjectStore) notify(ref pdfval.Reference, before, after pdfval.Object) {
	if before != nil {
		before = before.Clone()
	}
	if after != nil {
		after = after.Clone()
	}
	for _, o := range s.observers {
		o.ObjectChanged(ref, before, after)
	}
}

// Get returns the Object for ref, or (nil, false) if ref does not
// resolve. A dangling reference is not treated as an error at this
// layer; callers decide whether that's expected.
func (s *ObjectStore) Get(ref pdfval.Reference) (*object.Object, bool) {
	if s.unavailable[ref.ObjectNumber] {
		return nil, false
	}
	o, ok := s.objects[ref.ObjectNumber]
	if !ok || o.Reference().GenerationNumber != ref.GenerationNumber {
		return nil, false
	}
	return o, true
}

// MustGet is Get's fatal counterpart, for call sites where a dangling
// reference indicates a broken document rather than an expected miss.
func (s *ObjectStore) MustGet(ref pdfval.Reference) (*object.Object, error) {
	o, ok := s.Get(ref)
	if !ok {
		return nil, pdferr.Newf(pdferr.NoObject, "no object for reference %s", ref.PDFString())
	}
	return o, nil
}

// allocate pops a reusable slot off the free list (its generation was
// already bumped by Remove), or else mints the next object number.
func (s *ObjectStore) allocate() pdfval.Reference {
	if len(s.freeList) > 0 {
		ref := s.freeList[0]
		s.freeList = s.freeList[1:]
		return ref
	}
	ref := pdfval.NewReference(s.nextObjectNumber, 0)
	s.nextObjectNumber++
	return ref
}

// CreateDictionary allocates a new indirect object wrapping an empty
// Dictionary and registers it in the store.
func (s *ObjectStore) CreateDictionary() (*object.Object, error) {
	return s.CreateFromValue(container.NewDictionary())
}

// CreateFromValue allocates a new indirect object wrapping value.
func (s *ObjectStore) CreateFromValue(value pdfval.Object) (*object.Object, error) {
	if s.nextObjectNumber > MaxObjectCount {
		return nil, pdferr.Newf(pdferr.ValueOutOfRange, "object count exceeds %d", MaxObjectCount)
	}
	ref := s.allocate()
	o := object.New(ref, value)
	s.objects[ref.ObjectNumber] = o
	s.order = append(s.order, ref.ObjectNumber)
	s.notify(ref, nil, value)
	return o, nil
}

// PushExisting registers an already-constructed Object (e.g. one read
// back from a file with a known object number) without reallocating its
// identity. It fails if the object number is already occupied.
func (s *ObjectStore) PushExisting(o *object.Object) error {
	num := o.Reference().ObjectNumber
	if _, exists := s.objects[num]; exists {
		return pdferr.Newf(pdferr.InternalLogic, "object number %d already registered", num)
	}
	s.objects[num] = o
	s.order = append(s.order, num)
	if num >= s.nextObjectNumber {
		s.nextObjectNumber = num + 1
	}
	return nil
}

// Remove retires ref: its object number goes onto the free list with
// its generation bumped for reuse. A number whose bumped generation
// would reach pdfval.MaxGeneration is not reused; it is marked
// unavailable instead, so Get never resolves it again.
func (s *ObjectStore) Remove(ref pdfval.Reference) error {
	o, ok := s.Get(ref)
	if !ok {
		return pdferr.Newf(pdferr.NoObject, "no object for reference %s", ref.PDFString())
	}
	before, _ := o.Value()
	s.notify(ref, before, nil)

	delete(s.objects, ref.ObjectNumber)
	for i, n := range s.order {
		if n == ref.ObjectNumber {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	nextGen := int(ref.GenerationNumber) + 1
	if nextGen >= pdfval.MaxGeneration {
		s.unavailable[ref.ObjectNumber] = true
		return nil
	}
	s.freeList = append(s.freeList, pdfval.NewReference(ref.ObjectNumber, uint16(nextGen)))
	return nil
}

// MarkUnavailable hides an object number from Get without removing it,
// for the window between deciding to delete an object and actually
// retiring its number.
func (s *ObjectStore) MarkUnavailable(objectNumber uint32) {
	s.unavailable[objectNumber] = true
}

// ClearUnavailable reverses MarkUnavailable.
func (s *ObjectStore) ClearUnavailable(objectNumber uint32) {
	delete(s.unavailable, objectNumber)
}

// Len reports how many objects are currently registered.
func (s *ObjectStore) Len() int { return len(s.objects) }

// References returns every live reference in ascending object-number
// order, the stable enumeration order the writer relies on.
func (s *ObjectStore) References() []pdfval.Reference {
	nums := append([]uint32(nil), s.order...)
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	refs := make([]pdfval.Reference, len(nums))
	for i, n := range nums {
		refs[i] = s.objects[n].Reference()
	}
	return refs
}

// reachable walks value collecting every Reference it contains,
// directly or through nested Array/Dictionary entries.
func reachable(value pdfval.Object, out map[uint32]bool) {
	switch v := value.(type) {
	case pdfval.Reference:
		out[v.ObjectNumber] = true
	case *container.Array:
		for _, item := range v.Items() {
			reachable(item, out)
		}
	case *container.Dictionary:
		for _, k := range v.Keys() {
			item, _ := v.Find(k)
			reachable(item, out)
		}
	}
}

// rewriteReferences replaces every Reference inside value (at any
// nesting depth through Array/Dictionary) whose object number is a key
// of remap with remap's replacement, in place.
func rewriteReferences(value pdfval.Object, remap map[uint32]pdfval.Reference) {
	switch v := value.(type) {
	case *container.Array:
		for i, item := range v.Items() {
			if ref, ok := item.(pdfval.Reference); ok {
				if newRef, found := remap[ref.ObjectNumber]; found {
					v.Set(i, newRef)
				}
				continue
			}
			rewriteReferences(item, remap)
		}
	case *container.Dictionary:
		for _, k := range v.Keys() {
			item, _ := v.Find(k)
			if ref, ok := item.(pdfval.Reference); ok {
				if newRef, found := remap[ref.ObjectNumber]; found {
					v.Insert(k, newRef)
				}
				continue
			}
			rewriteReferences(item, remap)
		}
	}
}

// CollectGarbage removes every object not reachable from roots, in two
// passes: first mark every object transitively reachable from roots,
// then sweep everything else. It then compacts survivors into a
// contiguous run of object numbers starting at 1, rewriting every
// in-memory Reference that pointed at a renumbered object so the
// document's internal structure still resolves correctly; the caller
// is responsible for updating any reference it holds outside the store
// itself (e.g. a document's own trailer root) using the returned remap.
// Grounded on pdfmm's approach to detached object cleanup
// (PdfObjectStreamParser-era two-pass collection in the original
// implementation) for the mark-and-sweep shape, generalized here with
// the renumbering pass a real compaction pass requires.
func (s *ObjectStore) CollectGarbage(roots []pdfval.Reference) ([]pdfval.Reference, map[pdfval.Reference]pdfval.Reference, error) {
	marked := make(map[uint32]bool)
	queue := append([]pdfval.Reference(nil), roots...)
	for _, r := range roots {
		marked[r.ObjectNumber] = true
	}
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		o, ok := s.Get(ref)
		if !ok {
			continue
		}
		value, err := o.Value()
		if err != nil {
			return nil, nil, err
		}
		found := make(map[uint32]bool)
		reachable(value, found)
		for num := range found {
			if marked[num] {
				continue
			}
			marked[num] = true
			if child, ok := s.objects[num]; ok {
				queue = append(queue, child.Reference())
			}
		}
	}

	var collected []pdfval.Reference
	for _, num := range append([]uint32(nil), s.order...) {
		if marked[num] {
			continue
		}
		ref := s.objects[num].Reference()
		if err := s.Remove(ref); err != nil {
			return nil, nil, err
		}
		collected = append(collected, ref)
	}

	renumber := make(map[uint32]pdfval.Reference, len(s.order))
	nextNumber := uint32(1)
	for _, num := range s.order {
		if _, ok := s.objects[num]; !ok {
			continue
		}
		renumber[num] = pdfval.NewReference(nextNumber, 0)
		nextNumber++
	}

	for _, num := range s.order {
		o, ok := s.objects[num]
		if !ok {
			continue
		}
		value, err := o.Value()
		if err != nil {
			return nil, nil, err
		}
		rewriteReferences(value, renumber)
	}

	oldRefToNew := make(map[pdfval.Reference]pdfval.Reference, len(renumber))
	newObjects := make(map[uint32]*object.Object, len(s.objects))
	newOrder := make([]uint32, 0, len(s.order))
	for _, num := range s.order {
		o, ok := s.objects[num]
		if !ok {
			continue
		}
		oldRef := o.Reference()
		newRef := renumber[num]
		o.Renumber(newRef)
		newObjects[newRef.ObjectNumber] = o
		newOrder = append(newOrder, newRef.ObjectNumber)
		oldRefToNew[oldRef] = newRef
	}
	s.objects = newObjects
	s.order = newOrder
	s.nextObjectNumber = nextNumber
	s.freeList = nil

	return collected, oldRefToNew, nil
}
