package btreeindex

import (
	"encoding/binary"
	"sort"
)

// internalNode is the decoded form of an internal (non-leaf) page: level
// is 1 directly above a leaf level, 0 otherwise (spec.md §4.2's level
// convention), Keys holds numChildren()-1 separator keys, and Children
// holds numChildren() page numbers, both left-packed. Grounded on
// non_leaf_node_int in original_source/P3 B+ Tree/btree.h.
type internalNode struct {
	Level    int32
	Keys     []int32
	Children []int32
}

func decodeInternal(data []byte) *internalNode {
	n := &internalNode{
		Level:    int32(binary.LittleEndian.Uint32(data[0:4])),
		Keys:     make([]int32, internalCapacity),
		Children: make([]int32, internalCapacity+1),
	}
	off := levelWidth
	for i := 0; i < internalCapacity; i++ {
		n.Keys[i] = int32(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
	}
	for i := 0; i < internalCapacity+1; i++ {
		n.Children[i] = int32(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
	}
	return n
}

func (n *internalNode) encodeInto(data []byte) {
	binary.LittleEndian.PutUint32(data[0:4], uint32(n.Level))
	off := levelWidth
	for i := 0; i < internalCapacity; i++ {
		binary.LittleEndian.PutUint32(data[off:off+4], uint32(n.Keys[i]))
		off += 4
	}
	for i := 0; i < internalCapacity+1; i++ {
		binary.LittleEndian.PutUint32(data[off:off+4], uint32(n.Children[i]))
		off += 4
	}
}

// newInternalNode builds an empty internal node at the given level.
func newInternalNode(level int32) *internalNode {
	return &internalNode{
		Level:    level,
		Keys:     make([]int32, internalCapacity),
		Children: make([]int32, internalCapacity+1),
	}
}

// numChildren counts live child pointers, relying on the invariant that
// page number 0 (the meta page) never appears as a real child pointer,
// so it's safe as the left-packed filler sentinel. Grounded on
// BTreeIndex::numInNonLeaf.
func (n *internalNode) numChildren() int {
	return sort.Search(internalCapacity+1, func(i int) bool { return n.Children[i] == 0 })
}

func (n *internalNode) isFull() bool {
	return n.Children[internalCapacity] != 0
}

// findChildIndex returns which child pointer to descend into to find
// key, grounded on BTreeIndex::findSmallerKeyIndex.
func (n *internalNode) findChildIndex(key int32) int {
	numChildren := n.numChildren()
	if idx := findLarger(n.Keys, numChildren-1, key, true); idx != -1 {
		return idx
	}
	return numChildren - 1
}

// insertAt shifts keys/children at or after the insertion point one
// place right and stores (key, childPageNo) so that childPageNo becomes
// the child immediately to the right of key. Grounded on
// BTreeIndex::insertionNonLeafNode.
func (n *internalNode) insertAt(i int, key int32, childPageNo int32) {
	copy(n.Keys[i+1:internalCapacity], n.Keys[i:internalCapacity-1])
	copy(n.Children[i+2:internalCapacity+1], n.Children[i+1:internalCapacity])
	n.Keys[i] = key
	n.Children[i+1] = childPageNo
}

// splitAt moves the tail starting at index into a new internal node at
// the same level, zeroing it out of n, and returns the new node. When
// keepMidKey is false, the key at index is the one moving up into the
// parent rather than surviving in either split half, so it is dropped
// from both (the caller passes it up to the parent as the middle key).
// Grounded on BTreeIndex::splitNonLeaf.
func (n *internalNode) splitAt(index int, keepMidKey bool) *internalNode {
	next := newInternalNode(n.Level)
	length := internalCapacity - index
	if keepMidKey {
		copy(next.Keys[:length], n.Keys[index:internalCapacity])
	} else {
		copy(next.Keys[:length-1], n.Keys[index+1:internalCapacity])
	}
	copy(next.Children[:length], n.Children[index+1:internalCapacity+1])
	for k := index; k < internalCapacity; k++ {
		n.Keys[k] = 0
	}
	for k := index + 1; k <= internalCapacity; k++ {
		n.Children[k] = 0
	}
	return next
}
