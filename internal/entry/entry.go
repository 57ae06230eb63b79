// Package entry defines the (key, RecordId) pair stored in B+Tree leaf
// slots, grounded on dinodb's pkg/entry.Entry.
package entry

import (
	"encoding/binary"
	"fmt"
	"io"

	"storagecore/internal/recordid"
)

// Size is the fixed on-disk size of a marshaled Entry: a 4-byte key plus
// an 8-byte RecordId.
const Size = 4 + 8

// Entry is a key paired with the RecordId of the tuple it indexes.
type Entry struct {
	Key int32
	RID recordid.RecordId
}

// New constructs an Entry.
func New(key int32, rid recordid.RecordId) Entry {
	return Entry{Key: key, RID: rid}
}

// Marshal serializes the entry into Size bytes.
func (e Entry) Marshal() []byte {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(e.Key))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(e.RID.PageNo))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(e.RID.SlotNo))
	return buf
}

// Unmarshal deserializes Size bytes into an Entry.
func Unmarshal(data []byte) Entry {
	return Entry{
		Key: int32(binary.LittleEndian.Uint32(data[0:4])),
		RID: recordid.RecordId{
			PageNo: int32(binary.LittleEndian.Uint32(data[4:8])),
			SlotNo: int32(binary.LittleEndian.Uint32(data[8:12])),
		},
	}
}

// Print writes the entry to w in "(key, (page, slot))" form.
func (e Entry) Print(w io.Writer) {
	fmt.Fprintf(w, "(%d, (%d, %d))", e.Key, e.RID.PageNo, e.RID.SlotNo)
}
