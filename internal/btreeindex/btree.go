// Package btreeindex implements a disk-resident B+Tree index over a
// fixed-width int32 key, built by scanning a relation once at
// construction time and maintained thereafter by recursive,
// split-on-overflow insertion. It is grounded directly on
// original_source/P3 B+ Tree/btree.{h,cpp} — the BadgerDB BTreeIndex this
// module's design was distilled from — restructured per spec.md §9's
// redesign notes (see DESIGN.md).
package btreeindex

import (
	"encoding/binary"
	"io"

	"storagecore/internal/bufmgr"
	"storagecore/internal/config"
	"storagecore/internal/page"
	"storagecore/internal/recordid"
	"storagecore/internal/relscan"
)

// splitResult is the tagged outcome of a recursive insert: either the
// subtree absorbed the entry without growing (split false), or it split
// and the caller must link middleKey/newPageNo into its own level. This
// replaces the original's "PageId 0 means no split" output-parameter
// convention (spec.md §9 open question 3).
type splitResult struct {
	split     bool
	middleKey int32
	newPageNo int32
}

// BTreeIndex is a B+Tree index over one int32-valued attribute of a
// relation, backed by a page.File and pinned through a bufmgr.BufMgr.
// Supports one scan at a time, no deletion, no concurrency — spec.md §1
// Non-goals.
type BTreeIndex struct {
	file   page.File
	bufMgr *bufmgr.BufMgr
	meta   indexMetaInfo

	scanExecuting bool
	nextEntry     int
	currentPageNo int32
	currentPage   *bufmgr.PinnedPage
	lowVal        int32
	highVal       int32
	lowOp         Operator
	highOp        Operator
}

// New builds a fresh index file over file: it allocates the meta page
// (page 0) and an empty leaf root, then inserts one entry per tuple
// scanner yields, extracting the int32 key at attrByteOffset from each
// record. Grounded on the BTreeIndex constructor in btree.cpp, which
// does the same unconditional build-by-scan.
func New(file page.File, bufMgr *bufmgr.BufMgr, relationName string, attrByteOffset int32, attrType AttrType, scanner relscan.RelationScanner) (*BTreeIndex, error) {
	idx := &BTreeIndex{file: file, bufMgr: bufMgr}

	metaPP, metaPageNo, err := bufMgr.AllocPage(file)
	if err != nil {
		return nil, err
	}
	if metaPageNo != config.MetaPageNo {
		metaPP.Unpin(false)
		return nil, ErrBadIndexInfo
	}

	rootPP, rootPageNo, err := bufMgr.AllocPage(file)
	if err != nil {
		metaPP.Unpin(false)
		return nil, err
	}
	newLeafNode().encodeInto(rootPP.Page.Data())
	if err := rootPP.Unpin(true); err != nil {
		metaPP.Unpin(false)
		return nil, err
	}

	idx.meta = indexMetaInfo{
		RelationName:   relationName,
		AttrByteOffset: attrByteOffset,
		AttrType:       attrType,
		RootPageNo:     rootPageNo,
	}
	idx.meta.encodeInto(metaPP.Page.Data())
	if err := metaPP.Unpin(true); err != nil {
		return nil, err
	}

	for {
		record, rid, err := scanner.ScanNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		key := int32(binary.LittleEndian.Uint32(record[attrByteOffset : attrByteOffset+4]))
		if err := idx.InsertEntry(key, rid); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Open reattaches a BTreeIndex to an index file a prior instance built
// and flushed, validating that its meta page still matches the relation
// name and attribute offset the caller expects to find. Grounded on the
// BTreeIndex constructor overload in btree.cpp that attaches to an
// existing index file rather than building one from scratch.
func Open(file page.File, bufMgr *bufmgr.BufMgr, relationName string, attrByteOffset int32) (*BTreeIndex, error) {
	pp, err := bufMgr.ReadPage(file, config.MetaPageNo)
	if err != nil {
		return nil, err
	}
	meta := decodeMeta(pp.Page.Data())
	if err := pp.Unpin(false); err != nil {
		return nil, err
	}
	if meta.RelationName != relationName || meta.AttrByteOffset != attrByteOffset {
		return nil, ErrBadIndexInfo
	}
	return &BTreeIndex{file: file, bufMgr: bufMgr, meta: meta}, nil
}

// writeMetaPage re-pins the meta page, rewrites it from idx.meta, and
// unpins it dirty. Called every time RootPageNo changes, so a root split
// is never left un-flushed in a frame the buffer pool doesn't know is
// dirty (spec.md §9 open question 6 — decided: fix).
func (idx *BTreeIndex) writeMetaPage() error {
	pp, err := idx.bufMgr.ReadPage(idx.file, config.MetaPageNo)
	if err != nil {
		return err
	}
	idx.meta.encodeInto(pp.Page.Data())
	return pp.Unpin(true)
}

// InsertEntry inserts (key, rid), recursing from the root and splitting
// nodes as needed; a root split grows the tree by one level. Grounded on
// BTreeIndex::insertEntry.
func (idx *BTreeIndex) InsertEntry(key int32, rid recordid.RecordId) error {
	result, err := idx.insert(idx.meta.RootPageNo, key, rid)
	if err != nil {
		return err
	}
	if !result.split {
		return nil
	}
	newRootPageNo, err := idx.splitRoot(result.middleKey, idx.meta.RootPageNo, result.newPageNo)
	if err != nil {
		return err
	}
	idx.meta.RootPageNo = newRootPageNo
	return idx.writeMetaPage()
}

// insert recursively finds the leaf for key, inserting there and
// propagating any split upward. Grounded on BTreeIndex::insert.
func (idx *BTreeIndex) insert(pageNo int32, key int32, rid recordid.RecordId) (splitResult, error) {
	pp, err := idx.bufMgr.ReadPage(idx.file, pageNo)
	if err != nil {
		return splitResult{}, err
	}
	leaf, err := isLeafPage(pp.Page.Data())
	if err != nil {
		pp.Unpin(false)
		return splitResult{}, err
	}
	if leaf {
		return idx.insertToLeaf(pp, key, rid)
	}

	node := decodeInternal(pp.Page.Data())
	childIdx := node.findChildIndex(key)
	childResult, err := idx.insert(node.Children[childIdx], key, rid)
	if err != nil {
		pp.Unpin(false)
		return splitResult{}, err
	}
	if !childResult.split {
		return splitResult{}, pp.Unpin(false)
	}

	insertIdx := node.findChildIndex(childResult.middleKey)
	if !node.isFull() {
		node.insertAt(insertIdx, childResult.middleKey, childResult.newPageNo)
		node.encodeInto(pp.Page.Data())
		return splitResult{}, pp.Unpin(true)
	}

	midIndex := (internalCapacity - 1) / 2
	insertLeft := insertIdx < midIndex
	splitIndex := midIndex
	if insertLeft {
		splitIndex++
	}
	insertionIdx := insertIdx
	if !insertLeft {
		insertionIdx = insertIdx - midIndex
	}
	moveKeyUp := !insertLeft && insertionIdx == 0

	var midVal int32
	if moveKeyUp {
		midVal = childResult.middleKey
	} else {
		midVal = node.Keys[splitIndex]
	}

	newNode := node.splitAt(splitIndex, moveKeyUp)
	if moveKeyUp {
		// The promoted key's right-hand child becomes newNode's first child.
		copy(newNode.Children[1:], newNode.Children[:internalCapacity])
		newNode.Children[0] = childResult.newPageNo
	} else if insertLeft {
		node.insertAt(insertionIdx, childResult.middleKey, childResult.newPageNo)
	} else {
		// newNode's keys start at splitIndex+1, one past insertionIdx's base.
		newNode.insertAt(insertionIdx-1, childResult.middleKey, childResult.newPageNo)
	}

	newPP, newPageNo, err := idx.bufMgr.AllocPage(idx.file)
	if err != nil {
		pp.Unpin(false)
		return splitResult{}, err
	}
	node.encodeInto(pp.Page.Data())
	newNode.encodeInto(newPP.Page.Data())
	if err := pp.Unpin(true); err != nil {
		return splitResult{}, err
	}
	if err := newPP.Unpin(true); err != nil {
		return splitResult{}, err
	}
	return splitResult{split: true, middleKey: midVal, newPageNo: newPageNo}, nil
}

// insertToLeaf inserts (key, rid) into the leaf pinned as pp, splitting
// it if full. Grounded on BTreeIndex::insertToLeafPage.
func (idx *BTreeIndex) insertToLeaf(pp *bufmgr.PinnedPage, key int32, rid recordid.RecordId) (splitResult, error) {
	leaf := decodeLeaf(pp.Page.Data())
	index := leaf.findInsertionIndex(key)

	if !leaf.isFull() {
		leaf.insertAt(index, key, rid)
		leaf.encodeInto(pp.Page.Data())
		return splitResult{}, pp.Unpin(true)
	}

	midIndex := leafCapacity / 2
	insertLeft := index < midIndex
	splitIndex := midIndex
	if insertLeft {
		splitIndex++
	}

	newLeaf := leaf.splitAt(splitIndex)
	if insertLeft {
		leaf.insertAt(index, key, rid)
	} else {
		newLeaf.insertAt(index-midIndex, key, rid)
	}

	newPP, newPageNo, err := idx.bufMgr.AllocPage(idx.file)
	if err != nil {
		pp.Unpin(false)
		return splitResult{}, err
	}
	newLeaf.RightSibling = leaf.RightSibling
	leaf.RightSibling = newPageNo

	leaf.encodeInto(pp.Page.Data())
	newLeaf.encodeInto(newPP.Page.Data())
	midVal := newLeaf.Entries[0].Key

	if err := pp.Unpin(true); err != nil {
		return splitResult{}, err
	}
	if err := newPP.Unpin(true); err != nil {
		return splitResult{}, err
	}
	return splitResult{split: true, middleKey: midVal, newPageNo: newPageNo}, nil
}

// splitRoot allocates a new root page over the two halves of a split
// root, with midVal as its sole separator key. Grounded on
// BTreeIndex::splitRootNode.
func (idx *BTreeIndex) splitRoot(midVal int32, leftPageNo, rightPageNo int32) (int32, error) {
	leftPP, err := idx.bufMgr.ReadPage(idx.file, leftPageNo)
	if err != nil {
		return 0, err
	}
	leftIsLeaf, err := isLeafPage(leftPP.Page.Data())
	if uerr := leftPP.Unpin(false); err == nil {
		err = uerr
	}
	if err != nil {
		return 0, err
	}
	level := int32(0)
	if leftIsLeaf {
		level = 1
	}
	newRoot := newInternalNode(level)
	newRoot.Keys[0] = midVal
	newRoot.Children[0] = leftPageNo
	newRoot.Children[1] = rightPageNo

	pp, newPageNo, err := idx.bufMgr.AllocPage(idx.file)
	if err != nil {
		return 0, err
	}
	newRoot.encodeInto(pp.Page.Data())
	if err := pp.Unpin(true); err != nil {
		return 0, err
	}
	return newPageNo, nil
}

// Close ends any in-progress scan and flushes the index file.
func (idx *BTreeIndex) Close() error {
	if idx.scanExecuting {
		if err := idx.EndScan(); err != nil {
			return err
		}
	}
	return idx.bufMgr.FlushFile(idx.file)
}
