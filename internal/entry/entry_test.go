package entry_test

import (
	"testing"

	"storagecore/internal/entry"
	"storagecore/internal/recordid"
	"storagecore/internal/testutil"
)

// TestMarshalUnmarshalRoundTrip checks that an Entry survives being
// written into a leaf slot's fixed 12-byte layout and read back, which
// is what btreeindex's leafNode relies on for every insert and scan.
func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	want := entry.New(42, recordid.RecordId{PageNo: 7, SlotNo: 3})
	got := entry.Unmarshal(want.Marshal())
	testutil.CheckEntry(t, got, 42, recordid.RecordId{PageNo: 7, SlotNo: 3})
}

// TestMarshalSizeMatchesConstant checks that Marshal's output length
// never drifts from entry.Size, since leafNode.encodeInto slices exactly
// that many bytes per slot.
func TestMarshalSizeMatchesConstant(t *testing.T) {
	e := entry.New(1, recordid.RecordId{PageNo: 2, SlotNo: 3})
	if len(e.Marshal()) != entry.Size {
		t.Fatalf("expected marshaled entry to be %d bytes, got %d", entry.Size, len(e.Marshal()))
	}
}
