package xref

import (
	"strings"
	"testing"
)

func TestClassicWriteThreeObjectExample(t *testing.T) {
	x := New()
	x.AddFree(0, 65535, 0)
	x.AddInUse(1, 0, 17)
	x.AddInUse(2, 0, 81)

	out, err := x.Write("<< /Size 3 /Root 1 0 R >>")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "xref\n0 3\n") {
		t.Fatalf("expected a single coalesced subsection, got:\n%s", s)
	}
	if !strings.Contains(s, "0000000000 65535 f\r\n") {
		t.Fatalf("missing free head entry:\n%s", s)
	}
	if !strings.Contains(s, "0000000017 00000 n\r\n") {
		t.Fatalf("missing object 1 entry:\n%s", s)
	}
	if !strings.Contains(s, "0000000081 00000 n\r\n") {
		t.Fatalf("missing object 2 entry:\n%s", s)
	}
	if !strings.Contains(s, "trailer\n<< /Size 3 /Root 1 0 R >>\n") {
		t.Fatalf("missing trailer:\n%s", s)
	}
}

func TestClassicWriteCoalescesNonConsecutiveIntoSubsections(t *testing.T) {
	x := New()
	x.AddInUse(1, 0, 10)
	x.AddInUse(2, 0, 20)
	x.AddInUse(5, 0, 50)

	out, err := x.Write("<< >>")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "1 2\n") {
		t.Fatalf("expected a '1 2' subsection header:\n%s", s)
	}
	if !strings.Contains(s, "5 1\n") {
		t.Fatalf("expected a '5 1' subsection header:\n%s", s)
	}
}

func TestStreamFieldsRoundTrip(t *testing.T) {
	x := New()
	x.AddFree(0, 65535, 0)
	x.AddInUse(1, 0, 100)
	x.AddCompressed(2, 1, 3)

	data, err := x.StreamFields(1, 4, 2)
	if err != nil {
		t.Fatalf("StreamFields: %v", err)
	}

	parsed, err := ParseStreamFields(data, 1, 4, 2, [][2]int{{0, 3}})
	if err != nil {
		t.Fatalf("ParseStreamFields: %v", err)
	}

	entries := parsed.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Type != EntryFree {
		t.Fatalf("entry 0 should be free, got %v", entries[0].Type)
	}
	if entries[1].Type != EntryInUse || entries[1].Offset != 100 {
		t.Fatalf("entry 1 mismatch: %+v", entries[1])
	}
	if entries[2].Type != EntryCompressed || entries[2].Offset != 1 || entries[2].Generation != 3 {
		t.Fatalf("entry 2 mismatch: %+v", entries[2])
	}
}

func TestStreamFieldsRejectsNegativeWidth(t *testing.T) {
	x := New()
	if _, err := x.StreamFields(-1, 4, 2); err == nil {
		t.Fatal("expected an error for a negative field width")
	}
}

func TestSizeIsHighestObjectNumberPlusOne(t *testing.T) {
	x := New()
	x.AddInUse(1, 0, 10)
	x.AddInUse(4, 0, 40)
	if got := x.Size(); got != 5 {
		t.Fatalf("Size() = %d, want 5", got)
	}
}
