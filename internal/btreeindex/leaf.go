package btreeindex

import (
	"encoding/binary"
	"sort"

	"storagecore/internal/entry"
	"storagecore/internal/recordid"
)

// leafNode is the decoded form of a leaf page: Entries is left-packed (a
// run of live (key, RecordId) pairs followed by empty-sentinel filler),
// and RightSibling chains leaves left-to-right for range scans. Grounded
// on leaf_node_int in original_source/P3 B+ Tree/btree.h, using
// storagecore/internal/entry.Entry as the slot type the way dinodb's own
// LeafNode.getEntry/modifyEntry treats a slot as one entry.Entry rather
// than two parallel arrays.
type leafNode struct {
	Entries      []entry.Entry
	RightSibling int32
}

// decodeLeaf reads data as a leaf node. Callers must have already
// confirmed data's level discriminator via isLeafPage.
func decodeLeaf(data []byte) *leafNode {
	n := &leafNode{Entries: make([]entry.Entry, leafCapacity)}
	off := levelWidth
	for i := 0; i < leafCapacity; i++ {
		n.Entries[i] = entry.Unmarshal(data[off : off+entry.Size])
		off += entry.Size
	}
	n.RightSibling = int32(binary.LittleEndian.Uint32(data[off : off+4]))
	return n
}

// encodeInto writes n back into data in the leaf page layout.
func (n *leafNode) encodeInto(data []byte) {
	leafLevelVal := int32(leafLevel)
	binary.LittleEndian.PutUint32(data[0:4], uint32(leafLevelVal))
	off := levelWidth
	for i := 0; i < leafCapacity; i++ {
		copy(data[off:off+entry.Size], n.Entries[i].Marshal())
		off += entry.Size
	}
	binary.LittleEndian.PutUint32(data[off:off+4], uint32(n.RightSibling))
}

// newLeafNode builds an empty leaf node (all slots the empty sentinel).
func newLeafNode() *leafNode {
	return &leafNode{Entries: make([]entry.Entry, leafCapacity)}
}

// numKeys returns the count of live entries, relying on the left-packed
// invariant: every live entry's RecordId precedes every empty slot.
// Grounded on BTreeIndex::numInLeaf.
func (n *leafNode) numKeys() int {
	return sort.Search(leafCapacity, func(i int) bool { return n.Entries[i].RID.IsEmpty() })
}

// isFull reports whether every slot is occupied.
func (n *leafNode) isFull() bool {
	return !n.Entries[leafCapacity-1].RID.IsEmpty()
}

// findLarger returns the index of the first of Entries[:length] whose
// key is >= key (includeKey=true) or > key (includeKey=false), or -1 if
// none qualify. Entries[:length] must be sorted ascending by key — it
// always is, since every insertion keeps the live prefix sorted.
// Grounded on BTreeIndex::findLargerInt in
// original_source/P3 B+ Tree/btree.cpp, using sort.Search's binary
// search instead of hand-rolled lower_bound.
func (n *leafNode) findLarger(length int, key int32, includeKey bool) int {
	target := key
	if !includeKey {
		target++
	}
	idx := sort.Search(length, func(i int) bool { return n.Entries[i].Key >= target })
	if idx >= length {
		return -1
	}
	return idx
}

// findInsertionIndex returns where key belongs among the live entries,
// grounded on BTreeIndex::findInsertionIndexLeaf.
func (n *leafNode) findInsertionIndex(key int32) int {
	length := n.numKeys()
	if idx := n.findLarger(length, key, true); idx != -1 {
		return idx
	}
	return length
}

// findIndex returns the index of the first live key satisfying the
// bound (>= key if includeKey, > key otherwise), or -1 if none do.
// Grounded on BTreeIndex::findIndexLeaf.
func (n *leafNode) findIndex(key int32, includeKey bool) int {
	return n.findLarger(n.numKeys(), key, includeKey)
}

// insertAt shifts every slot at or after i one place right and stores
// (key, rid) at i. Grounded on BTreeIndex::insertionLeafNode; Go's copy
// handles the overlapping shift the same way memmove does.
func (n *leafNode) insertAt(i int, key int32, rid recordid.RecordId) {
	copy(n.Entries[i+1:leafCapacity], n.Entries[i:leafCapacity-1])
	n.Entries[i] = entry.New(key, rid)
}

// splitAt moves every slot from index onward into a new leaf node,
// zeroing them out of n, and returns the new node (not yet linked into
// the sibling chain or assigned a page number — the caller does that).
// Grounded on BTreeIndex::splitLeaf.
func (n *leafNode) splitAt(index int) *leafNode {
	next := newLeafNode()
	copy(next.Entries, n.Entries[index:])
	for i := index; i < leafCapacity; i++ {
		n.Entries[i] = entry.Entry{}
	}
	return next
}
