package bufmgr

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash"
	"github.com/spaolacci/murmur3"

	"storagecore/internal/page"
)

// frameKey identifies a cached page by its owning file and page number,
// matching spec.md §3's "(file, page_no) → frame_id" mapping.
type frameKey struct {
	file   page.File
	pageNo int32
}

// hashEntry is one link of a hash index bucket's chain.
type hashEntry struct {
	key   frameKey
	frame FrameId
	next  *hashEntry
}

// hashIndex is the buffer pool's auxiliary hash index: unique keys,
// insert/remove/lookup, sized to roughly 1.2x the frame count (spec.md
// §4.1). It is grounded on dinodb's pkg/hash/hashers.go, which combines
// an xxhash.Sum64 hash and a murmur3.Sum64 hash for one key; here the two
// hashes cover the two halves of the composite (file, pageNo) key, and a
// bitset.BitSet tracks which buckets are occupied so callers that only
// need "is anything here" (e.g. diagnostics) can skip empty buckets.
//
// HashNotFound is never thrown: Lookup returns (FrameId, bool), the
// two-variant result spec.md §9's redesign notes ask for.
type hashIndex struct {
	buckets  []*hashEntry
	occupied *bitset.BitSet
	size     uint64
}

// newHashIndex builds a hash index with numBuckets buckets.
func newHashIndex(numBuckets int) *hashIndex {
	if numBuckets < 1 {
		numBuckets = 1
	}
	return &hashIndex{
		buckets:  make([]*hashEntry, numBuckets),
		occupied: bitset.New(uint(numBuckets)),
		size:     uint64(numBuckets),
	}
}

// bucketFor hashes key down to a bucket index, combining an xxhash of the
// page number with a murmur3 hash of the file's name.
func (h *hashIndex) bucketFor(key frameKey) uint {
	var pnBuf [4]byte
	binary.LittleEndian.PutUint32(pnBuf[:], uint32(key.pageNo))
	pnHash := xxhash.Sum64(pnBuf[:])
	fileHash := murmur3.Sum64([]byte(key.file.Name()))
	return uint((pnHash ^ fileHash) % h.size)
}

// Lookup returns the frame holding key, if cached.
func (h *hashIndex) Lookup(key frameKey) (FrameId, bool) {
	b := h.bucketFor(key)
	for e := h.buckets[b]; e != nil; e = e.next {
		if e.key == key {
			return e.frame, true
		}
	}
	return 0, false
}

// Insert records that key is cached in frame. key must not already be
// present.
func (h *hashIndex) Insert(key frameKey, frame FrameId) {
	b := h.bucketFor(key)
	h.buckets[b] = &hashEntry{key: key, frame: frame, next: h.buckets[b]}
	h.occupied.Set(b)
}

// Occupancy reports how many buckets hold at least one chained entry,
// out of the total bucket count, for BufMgr.PrintSelf's diagnostic dump.
// Grounded on dinodb's pager_repl.go HandlePagerPrint, which reports the
// pager's free/pinned/unpinned list sizes the same way.
func (h *hashIndex) Occupancy() (used int, total int) {
	return int(h.occupied.Count()), len(h.buckets)
}

// Remove drops key from the index, if present.
func (h *hashIndex) Remove(key frameKey) {
	b := h.bucketFor(key)
	var prev *hashEntry
	for e := h.buckets[b]; e != nil; e = e.next {
		if e.key == key {
			if prev == nil {
				h.buckets[b] = e.next
			} else {
				prev.next = e.next
			}
			if h.buckets[b] == nil {
				h.occupied.Clear(b)
			}
			return
		}
		prev = e
	}
}
