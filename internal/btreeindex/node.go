package btreeindex

import (
	"encoding/binary"
	"sort"
)

// peekLevel reads a node page's level discriminator without decoding the
// rest of it: -1 marks a leaf, >= 0 marks an internal node (1 for a node
// whose children are leaves, 0 otherwise, per spec.md §4.2's level
// convention).
//
// Every page cast in this package goes through this check rather than
// trusting the byte blindly (spec.md §9 open question 8): a corrupted or
// misinterpreted page surfaces ErrBadNodeLevel instead of silently being
// read as whichever type happened to be expected.
func peekLevel(data []byte) int32 {
	return int32(binary.LittleEndian.Uint32(data[0:4]))
}

// isLeafPage reports whether data's level discriminator marks a leaf.
func isLeafPage(data []byte) (bool, error) {
	level := peekLevel(data)
	if level != leafLevel && level < 0 {
		return false, ErrBadNodeLevel
	}
	return level == leafLevel, nil
}

// findLarger returns the index of the first element of keys[:length]
// that is >= key (includeKey=true) or > key (includeKey=false), or -1 if
// every element is smaller. keys[:length] must be sorted ascending — it
// always is, since every insertion keeps the live prefix sorted.
//
// Grounded on BTreeIndex::findLargerInt in
// original_source/P3 B+ Tree/btree.cpp, using sort.Search's binary search
// instead of hand-rolled lower_bound.
func findLarger(keys []int32, length int, key int32, includeKey bool) int {
	target := key
	if !includeKey {
		target++
	}
	idx := sort.Search(length, func(i int) bool { return keys[i] >= target })
	if idx >= length {
		return -1
	}
	return idx
}
