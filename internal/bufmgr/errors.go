package bufmgr

import "errors"

// ErrBufferExceeded is returned when no frame can be evicted to satisfy a
// ReadPage or AllocPage request: every frame is pinned.
var ErrBufferExceeded = errors.New("bufmgr: no frame available, all frames pinned")

// ErrPageNotPinned is returned by PinnedPage.Unpin when the target page's pin
// count is already zero.
var ErrPageNotPinned = errors.New("bufmgr: page is not pinned")

// ErrPagePinned is returned by FlushFile when one of the file's pages is
// still pinned.
var ErrPagePinned = errors.New("bufmgr: cannot flush, page is pinned")

// ErrBadBuffer is returned by FlushFile when a frame belonging to the
// file being flushed violates the valid/hash-index invariant.
var ErrBadBuffer = errors.New("bufmgr: frame invariant violated")
