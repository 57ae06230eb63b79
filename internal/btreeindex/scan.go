package btreeindex

import "storagecore/internal/recordid"

// Operator is a scan-range comparison operator, grounded on the
// Operator enum in original_source/P3 B+ Tree/btree.h.
type Operator int

const (
	LT  Operator = iota // less than
	LTE                 // less than or equal to
	GTE                 // greater than or equal to
	GT                  // greater than
)

// StartScan begins a range scan over (lowVal lowOp) .. (highVal highOp).
// If another scan is already executing, it is ended first (spec.md §9
// open question 5 — decided: fix; the original leaves the previous
// scan's leaf pinned forever). Grounded on BTreeIndex::startScan.
func (idx *BTreeIndex) StartScan(lowVal int32, lowOp Operator, highVal int32, highOp Operator) error {
	if lowOp != GT && lowOp != GTE {
		return ErrBadOpcodes
	}
	if highOp != LT && highOp != LTE {
		return ErrBadOpcodes
	}
	if lowVal > highVal {
		return ErrBadScanrange
	}
	if idx.scanExecuting {
		if err := idx.EndScan(); err != nil {
			return err
		}
	}

	idx.lowVal, idx.lowOp = lowVal, lowOp
	idx.highVal, idx.highOp = highVal, highOp
	idx.scanExecuting = true
	idx.currentPageNo = idx.meta.RootPageNo
	idx.currentPage = nil

	if err := idx.setPageScan(); err != nil {
		idx.scanExecuting = false
		return err
	}
	if err := idx.entryScanIndex(); err != nil {
		idx.scanExecuting = false
		return err
	}

	if !idx.withinRange() {
		idx.scanExecuting = false
		if idx.currentPage != nil {
			cp := idx.currentPage
			idx.currentPage = nil
			if err := cp.Unpin(false); err != nil {
				return err
			}
		}
		return ErrNoSuchKeyFound
	}
	return nil
}

// setPageScan walks from currentPageNo down to the leaf that would hold
// lowVal, pinning only the leaf on return. Grounded on
// BTreeIndex::setPageScan (iterative here rather than recursive).
func (idx *BTreeIndex) setPageScan() error {
	pageNo := idx.currentPageNo
	for {
		pp, err := idx.bufMgr.ReadPage(idx.file, pageNo)
		if err != nil {
			return err
		}
		leaf, err := isLeafPage(pp.Page.Data())
		if err != nil {
			pp.Unpin(false)
			return err
		}
		if leaf {
			idx.currentPage = pp
			idx.currentPageNo = pageNo
			return nil
		}
		node := decodeInternal(pp.Page.Data())
		nextPageNo := node.Children[node.findChildIndex(idx.lowVal)]
		if err := pp.Unpin(false); err != nil {
			return err
		}
		pageNo = nextPageNo
	}
}

// entryScanIndex positions nextEntry at the first live entry of the
// current leaf satisfying lowVal/lowOp, advancing to the right sibling
// if none qualifies on this leaf. Grounded on BTreeIndex::entryScanIndex.
func (idx *BTreeIndex) entryScanIndex() error {
	leaf := decodeLeaf(idx.currentPage.Page.Data())
	entryIdx := leaf.findIndex(idx.lowVal, idx.lowOp == GTE)
	if entryIdx == -1 {
		return idx.moveToNext(leaf)
	}
	idx.nextEntry = entryIdx
	return nil
}

// moveToNext unpins the current leaf and advances to its right sibling.
// A sibling page number of 0 is treated as an explicit end-of-scan
// sentinel rather than handed to ReadPage (spec.md §9 open question 8 —
// decided: fix); currentPage becomes nil and withinRange reports false
// from then on.
func (idx *BTreeIndex) moveToNext(leaf *leafNode) error {
	cp := idx.currentPage
	idx.currentPage = nil
	if err := cp.Unpin(false); err != nil {
		return err
	}
	idx.nextEntry = 0
	if leaf.RightSibling == 0 {
		idx.currentPageNo = 0
		return nil
	}
	pp, err := idx.bufMgr.ReadPage(idx.file, leaf.RightSibling)
	if err != nil {
		return err
	}
	isLeaf, err := isLeafPage(pp.Page.Data())
	if err == nil && !isLeaf {
		err = ErrBadNodeLevel
	}
	if err != nil {
		pp.Unpin(false)
		return err
	}
	idx.currentPage = pp
	idx.currentPageNo = leaf.RightSibling
	return nil
}

// withinRange reports whether the entry at nextEntry on the current leaf
// is live and still inside [lowVal.., ..highVal].
func (idx *BTreeIndex) withinRange() bool {
	if idx.currentPage == nil {
		return false
	}
	leaf := decodeLeaf(idx.currentPage.Page.Data())
	if leaf.Entries[idx.nextEntry].RID.IsEmpty() {
		return false
	}
	key := leaf.Entries[idx.nextEntry].Key
	if key > idx.highVal {
		return false
	}
	if key == idx.highVal && idx.highOp == LT {
		return false
	}
	return true
}

// setNextEntry advances nextEntry, moving to the right sibling once the
// current leaf is exhausted. Grounded on BTreeIndex::setNextEntry.
func (idx *BTreeIndex) setNextEntry(leaf *leafNode) error {
	idx.nextEntry++
	if idx.nextEntry >= leafCapacity || leaf.Entries[idx.nextEntry].RID.IsEmpty() {
		return idx.moveToNext(leaf)
	}
	return nil
}

// ScanNext returns the RecordId of the next entry matching the scan
// range, or ErrIndexScanCompleted once exhausted. Grounded on
// BTreeIndex::scanNext.
func (idx *BTreeIndex) ScanNext() (recordid.RecordId, error) {
	if !idx.scanExecuting {
		return recordid.RecordId{}, ErrScanNotInitialized
	}
	if !idx.withinRange() {
		return recordid.RecordId{}, ErrIndexScanCompleted
	}
	leaf := decodeLeaf(idx.currentPage.Page.Data())
	rid := leaf.Entries[idx.nextEntry].RID
	if err := idx.setNextEntry(leaf); err != nil {
		return recordid.RecordId{}, err
	}
	return rid, nil
}

// EndScan terminates the current scan, unpinning whatever leaf is still
// pinned. Grounded on BTreeIndex::endScan.
func (idx *BTreeIndex) EndScan() error {
	if !idx.scanExecuting {
		return ErrScanNotInitialized
	}
	idx.scanExecuting = false
	if idx.currentPage == nil {
		return nil
	}
	cp := idx.currentPage
	idx.currentPage = nil
	return cp.Unpin(false)
}
