package btreeindex

import "errors"

// ErrBadIndexInfo is returned by Open when an existing index file's meta
// page doesn't match the relation name / attribute offset it was opened
// with, and by New if the freshly allocated meta page didn't land on
// page 0.
var ErrBadIndexInfo = errors.New("btreeindex: existing index metadata does not match")

// ErrBadOpcodes is returned by StartScan for a low/high operator outside
// the allowed GT/GTE and LT/LTE pairing.
var ErrBadOpcodes = errors.New("btreeindex: low operator must be GT/GTE, high operator must be LT/LTE")

// ErrBadScanrange is returned by StartScan when lowVal > highVal.
var ErrBadScanrange = errors.New("btreeindex: low value exceeds high value")

// ErrNoSuchKeyFound is returned by StartScan when no key in the tree
// satisfies the requested range.
var ErrNoSuchKeyFound = errors.New("btreeindex: no key satisfies the scan range")

// ErrScanNotInitialized is returned by ScanNext/EndScan when no scan is
// currently executing.
var ErrScanNotInitialized = errors.New("btreeindex: no scan is in progress")

// ErrIndexScanCompleted is returned by ScanNext once the current scan has
// exhausted its range.
var ErrIndexScanCompleted = errors.New("btreeindex: scan has no more matching entries")

// ErrBadNodeLevel is returned whenever a page's level discriminator is
// neither -1 (leaf) nor a valid non-negative internal level, which means
// the page was misinterpreted or corrupted.
var ErrBadNodeLevel = errors.New("btreeindex: page has an invalid node level")
