// Package bufmgr implements a fixed-size buffer pool over page.File pages,
// using clock (second-chance) replacement. It is grounded on dinodb's
// pkg/pager.Pager and, for the replacement algorithm itself, directly on
// BufMgr::allocBuf in the original BadgerDB buffer.cpp this module's
// design was distilled from.
package bufmgr

import (
	"fmt"
	"io"

	"storagecore/internal/config"
	"storagecore/internal/page"
)

// FrameId identifies a slot in the buffer pool's frame array.
type FrameId int

// frameDescriptor tracks one frame's occupant and replacement state.
type frameDescriptor struct {
	frameNo FrameId
	valid   bool
	dirty   bool
	refBit  bool
	pinCnt  int
	file    page.File
	pageNo  int32
}

func (d *frameDescriptor) clear() {
	d.valid = false
	d.dirty = false
	d.refBit = false
	d.pinCnt = 0
	d.file = nil
	d.pageNo = page.NoPageNo
}

func (d *frameDescriptor) set(file page.File, pageNo int32) {
	d.file = file
	d.pageNo = pageNo
	d.pinCnt = 1
	d.valid = true
	d.refBit = true
	d.dirty = false
}

// BufMgr is a fixed-size pool of page frames shared across any number of
// page.File instances, replacing pages by clock algorithm.
type BufMgr struct {
	frames    []page.Page
	descs     []frameDescriptor
	index     *hashIndex
	clockHand int
	numBufs   int
}

// New builds a BufMgr with numBufs frames.
func New(numBufs int) *BufMgr {
	arena := make([]byte, int64(numBufs)*config.PageSize)
	frames := make([]page.Page, numBufs)
	descs := make([]frameDescriptor, numBufs)
	for i := 0; i < numBufs; i++ {
		lo := int64(i) * config.PageSize
		hi := lo + config.PageSize
		frames[i] = page.NewFrame(arena[lo:hi])
		descs[i].frameNo = FrameId(i)
		descs[i].pageNo = page.NoPageNo
	}
	// Sized the way dinodb's hash.NewHashTable is, roughly 1.2x the frame
	// count, so chains stay short without the pool growing unbounded.
	htsize := (numBufs*12)/10 + 1
	return &BufMgr{
		frames:    frames,
		descs:     descs,
		index:     newHashIndex(htsize),
		clockHand: numBufs - 1,
		numBufs:   numBufs,
	}
}

func (b *BufMgr) advanceClock() {
	b.clockHand = (b.clockHand + 1) % b.numBufs
}

// allocBuf runs the clock algorithm to find or free a frame, returning its
// id. The candidate frame is cleared (but not yet assigned an occupant)
// on return.
//
// The original BadgerDB allocBuf accumulates a pinnedCount across the
// entire search and throws once it reaches numBufs; because a frame whose
// refbit gets cleared is revisited without bumping that counter, an
// adversarial pattern of alternating ref'd and pinned frames can delay the
// exception well past the point where every frame is genuinely pinned.
// This version only declares ErrBufferExceeded once an entire revolution
// completes having cleared no refbits at all (no progress was made) with
// every frame found pinned; a revolution that clears at least one refbit
// gets a fresh pinnedCount and another lap, since that frame may become
// evictable next time around.
func (b *BufMgr) allocBuf() (FrameId, error) {
	pinnedCount := 0
	progressed := false
	step := 0
	for {
		b.advanceClock()
		d := &b.descs[b.clockHand]
		if !d.valid {
			d.clear()
			return d.frameNo, nil
		}
		if d.refBit {
			d.refBit = false
			progressed = true
			step++
		} else if d.pinCnt > 0 {
			pinnedCount++
			step++
		} else {
			b.index.Remove(frameKey{file: d.file, pageNo: d.pageNo})
			if d.dirty {
				if err := d.file.WritePage(b.frames[d.frameNo]); err != nil {
					return 0, err
				}
			}
			d.clear()
			return d.frameNo, nil
		}
		if step%b.numBufs == 0 {
			if !progressed && pinnedCount >= b.numBufs {
				return 0, ErrBufferExceeded
			}
			pinnedCount = 0
			progressed = false
		}
	}
}

// PinnedPage is a scoped handle on a page held pinned in the buffer pool.
// Callers access the page's bytes through Page and release the pin with
// Unpin; it replaces the raw aliased *Page plus separate UnpinPage(file,
// pageNo, dirty) call of the original C++ API with a single owned guard.
type PinnedPage struct {
	mgr    *BufMgr
	file   page.File
	pageNo int32
	Page   *page.Page
}

// Unpin releases the pin. dirty marks the page as needing writeback
// before it is ever evicted or flushed; it is sticky across multiple
// pins, cleared only when the page is written back (on eviction or a
// successful flush) or disposed.
func (p *PinnedPage) Unpin(dirty bool) error {
	return p.mgr.unpin(p.file, p.pageNo, dirty)
}

func (b *BufMgr) unpin(file page.File, pageNo int32, dirty bool) error {
	frame, ok := b.index.Lookup(frameKey{file: file, pageNo: pageNo})
	if !ok {
		return nil
	}
	d := &b.descs[frame]
	if d.pinCnt == 0 {
		return ErrPageNotPinned
	}
	d.pinCnt--
	if dirty {
		d.dirty = true
	}
	return nil
}

// ReadPage returns a pinned handle on file's pageNo, reading it from file
// and installing it in a frame if it isn't already cached.
func (b *BufMgr) ReadPage(file page.File, pageNo int32) (*PinnedPage, error) {
	key := frameKey{file: file, pageNo: pageNo}
	if frame, ok := b.index.Lookup(key); ok {
		d := &b.descs[frame]
		d.refBit = true
		d.pinCnt++
		return &PinnedPage{mgr: b, file: file, pageNo: pageNo, Page: &b.frames[frame]}, nil
	}
	frame, err := b.allocBuf()
	if err != nil {
		return nil, err
	}
	p, err := file.ReadPage(pageNo)
	if err != nil {
		return nil, err
	}
	b.frames[frame].CopyFrom(p)
	b.index.Insert(key, frame)
	b.descs[frame].set(file, pageNo)
	return &PinnedPage{mgr: b, file: file, pageNo: pageNo, Page: &b.frames[frame]}, nil
}

// AllocPage grows file by one page, pins it in a frame, and returns the
// pinned handle alongside the new page number.
func (b *BufMgr) AllocPage(file page.File) (*PinnedPage, int32, error) {
	newPage, err := file.AllocatePage()
	if err != nil {
		return nil, 0, err
	}
	frame, err := b.allocBuf()
	if err != nil {
		return nil, 0, err
	}
	b.frames[frame].CopyFrom(newPage)
	b.index.Insert(frameKey{file: file, pageNo: newPage.PageNo()}, frame)
	b.descs[frame].set(file, newPage.PageNo())
	pp := &PinnedPage{mgr: b, file: file, pageNo: newPage.PageNo(), Page: &b.frames[frame]}
	return pp, newPage.PageNo(), nil
}

// DisposePage evicts pageNo from the buffer pool, if cached, and asks file
// to retire it. The frame is cleared unconditionally per this page
// format's contract: a disposed page's content is never written back,
// pinned or not.
func (b *BufMgr) DisposePage(file page.File, pageNo int32) error {
	key := frameKey{file: file, pageNo: pageNo}
	if frame, ok := b.index.Lookup(key); ok {
		b.descs[frame].clear()
		b.index.Remove(key)
	}
	return file.DeletePage(pageNo)
}

// FlushFile writes back every dirty cached page of file and evicts all of
// file's pages from the pool. It returns ErrPagePinned if any of file's
// pages are still pinned.
//
// The original C++ flushFile treats any frame NOT belonging to the file
// being flushed as a BadBuffer violation, which is really just "this
// frame holds someone else's page" — an ordinary, common state, not an
// invariant violation. This version only raises ErrBadBuffer for a frame
// that actually violates the valid/hash-index invariant: a frame marked
// valid for this file whose hash index entry doesn't agree.
func (b *BufMgr) FlushFile(file page.File) error {
	for i := range b.descs {
		d := &b.descs[i]
		if !d.valid || d.file != file {
			continue
		}
		key := frameKey{file: d.file, pageNo: d.pageNo}
		if frame, ok := b.index.Lookup(key); !ok || frame != d.frameNo {
			return ErrBadBuffer
		}
		if d.pinCnt > 0 {
			return ErrPagePinned
		}
		if d.dirty {
			if err := file.WritePage(b.frames[d.frameNo]); err != nil {
				return err
			}
			d.dirty = false
		}
		b.index.Remove(key)
		d.clear()
	}
	return nil
}

// PrintSelf writes a one-line summary of the pool's occupancy to w:
// how many of its frames currently hold a page, how many of those are
// pinned, and the hash index's bucket occupancy. Grounded on dinodb's
// pager_repl.go HandlePagerPrint, the REPL's pager-state dump.
func (b *BufMgr) PrintSelf(w io.Writer) {
	valid, pinned := 0, 0
	for i := range b.descs {
		if b.descs[i].valid {
			valid++
			if b.descs[i].pinCnt > 0 {
				pinned++
			}
		}
	}
	usedBuckets, totalBuckets := b.index.Occupancy()
	fmt.Fprintf(w, "BufMgr: %d/%d frames valid (%d pinned), hash index %d/%d buckets occupied\n",
		valid, b.numBufs, pinned, usedBuckets, totalBuckets)
}
