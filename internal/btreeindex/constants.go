package btreeindex

import "storagecore/internal/config"

// Field widths matching spec.md §3/§4.2's sizeof(int)/sizeof(PageId)/
// sizeof(RecordId) used in the capacity formulas below.
const (
	keyWidth    = 4
	pageIDWidth = 4
	ridWidth    = 8
	levelWidth  = 4
)

// leafCapacity (L) is the number of (key, RecordId) slots in a leaf node:
// L = (PageSize - sizeof(PageId)) / (sizeof(int) + sizeof(RecordId)),
// spec.md §4.2's INTARRAYLEAFSIZE. See DESIGN.md for why config.PageSize
// is two directio blocks rather than one: this formula's floor division
// happens to absorb the leaf's own level/rightSibling header fields
// exactly at that size.
const leafCapacity = int((config.PageSize - pageIDWidth) / (keyWidth + ridWidth))

// internalCapacity (M) is the number of keys in an internal node (it
// holds M+1 child pointers): M = (PageSize - sizeof(int) -
// sizeof(PageId)) / (sizeof(int) + sizeof(PageId)), spec.md §4.2's
// INTARRAYNONLEAFSIZE.
const internalCapacity = int((config.PageSize - keyWidth - pageIDWidth) / (keyWidth + pageIDWidth))

// leafLevel is the sentinel level value stamped on every leaf node.
const leafLevel = -1

// leafPageSize / internalPageSize are each node type's total encoded
// size, always equal to config.PageSize by construction. The zero-length
// array declarations below turn that claim into a compile-time check: a
// negative array length is a compile error, so if leafCapacity or
// internalCapacity's formula ever drifts from config.PageSize in either
// direction, the package stops building instead of silently truncating
// encodeInto's output.
const leafPageSize = levelWidth + leafCapacity*(keyWidth+ridWidth) + pageIDWidth
const internalPageSize = levelWidth + internalCapacity*keyWidth + (internalCapacity+1)*pageIDWidth

var _ [int(config.PageSize) - leafPageSize]struct{}
var _ [leafPageSize - int(config.PageSize)]struct{}
var _ [int(config.PageSize) - internalPageSize]struct{}
var _ [internalPageSize - int(config.PageSize)]struct{}
