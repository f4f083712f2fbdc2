package stream

import (
	"bytes"
	"testing"

	"github.com/inkfathom/pdfcore/filter"
)

type fakeOwner struct{ dirty bool }

func (f *fakeOwner) MarkDirty() { f.dirty = true }

func TestStreamSetAndGetDecodedCopy(t *testing.T) {
	s := New()
	if err := s.Set([]byte("hello"), nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.GetDecodedCopy()
	if err != nil {
		t.Fatalf("GetDecodedCopy: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestStreamFilteredRoundTrip(t *testing.T) {
	s := New()
	if err := s.SetFilters([]string{filter.Flate}, nil); err != nil {
		t.Fatalf("SetFilters: %v", err)
	}
	if err := s.Set([]byte("the quick brown fox jumps over the lazy dog"), nil); err != nil {
		t.Fatalf("Set: %v", err)
	}

	raw, err := s.GetFilteredCopy()
	if err != nil {
		t.Fatalf("GetFilteredCopy: %v", err)
	}
	if bytes.Equal(raw, []byte("the quick brown fox jumps over the lazy dog")) {
		t.Fatal("filtered copy should not equal the decoded content when a filter is set")
	}

	s2 := New()
	if err := s2.SetFilters([]string{filter.Flate}, nil); err != nil {
		t.Fatalf("SetFilters: %v", err)
	}
	s2.SetRaw(raw)
	decoded, err := s2.GetDecodedCopy()
	if err != nil {
		t.Fatalf("GetDecodedCopy: %v", err)
	}
	if string(decoded) != "the quick brown fox jumps over the lazy dog" {
		t.Fatalf("got %q", decoded)
	}
}

func TestStreamMutationMarksOwnerDirty(t *testing.T) {
	s := New()
	owner := &fakeOwner{}
	s.SetOwner(owner)
	if err := s.Set([]byte("x"), nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !owner.dirty {
		t.Fatal("Set should mark the owner dirty")
	}
}

func TestAppendSessionLifecycle(t *testing.T) {
	s := New()
	if err := s.BeginAppend(nil, true, false); err != nil {
		t.Fatalf("BeginAppend: %v", err)
	}
	if !s.IsAppending() {
		t.Fatal("expected IsAppending true")
	}
	if err := s.Append([]byte("foo")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append([]byte("bar")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.EndAppend(); err != nil {
		t.Fatalf("EndAppend: %v", err)
	}
	if s.IsAppending() {
		t.Fatal("expected IsAppending false after EndAppend")
	}
	got, err := s.GetDecodedCopy()
	if err != nil {
		t.Fatalf("GetDecodedCopy: %v", err)
	}
	if string(got) != "foobar" {
		t.Fatalf("got %q", got)
	}
}

func TestAppendOutsideSessionFails(t *testing.T) {
	s := New()
	if err := s.Append([]byte("x")); err == nil {
		t.Fatal("expected an error appending outside a session")
	}
}

func TestDoubleBeginAppendFails(t *testing.T) {
	s := New()
	if err := s.BeginAppend(nil, true, false); err != nil {
		t.Fatalf("BeginAppend: %v", err)
	}
	if err := s.BeginAppend(nil, true, false); err == nil {
		t.Fatal("expected an error opening a second append session")
	}
}

func TestBeginAppendExtendsExistingContentByDefault(t *testing.T) {
	s := New()
	if err := s.Set([]byte("foo"), nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.BeginAppend(nil, false, false); err != nil {
		t.Fatalf("BeginAppend: %v", err)
	}
	if err := s.Append([]byte("bar")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.EndAppend(); err != nil {
		t.Fatalf("EndAppend: %v", err)
	}
	got, err := s.GetDecodedCopy()
	if err != nil {
		t.Fatalf("GetDecodedCopy: %v", err)
	}
	if string(got) != "foobar" {
		t.Fatalf("got %q, want %q", got, "foobar")
	}
}

func TestBeginAppendDeleteFiltersClearsChain(t *testing.T) {
	s := New()
	if err := s.SetFilters([]string{filter.Flate}, nil); err != nil {
		t.Fatalf("SetFilters: %v", err)
	}
	if err := s.BeginAppend(nil, true, true); err != nil {
		t.Fatalf("BeginAppend: %v", err)
	}
	if len(s.Filters()) != 0 {
		t.Fatalf("expected an empty filter chain after deleteFilters, got %v", s.Filters())
	}
}

func TestGetLengthMatchesFilteredCopy(t *testing.T) {
	s := New()
	if err := s.Set([]byte("abcdef"), nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	n, err := s.GetLength()
	if err != nil {
		t.Fatalf("GetLength: %v", err)
	}
	raw, err := s.GetFilteredCopy()
	if err != nil {
		t.Fatalf("GetFilteredCopy: %v", err)
	}
	if n != int64(len(raw)) {
		t.Fatalf("got %d, want %d", n, len(raw))
	}
}
