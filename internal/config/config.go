// Package config holds the tunables shared by the buffer pool and the
// B+Tree index.
package config

import "github.com/ncw/directio"

// PageSize is the size in bytes of every page moved between the buffer
// pool and disk. It is two directio blocks rather than one: a single
// directio.BlockSize undersizes a B+Tree leaf node once the node header
// is accounted for (see DESIGN.md), while staying a multiple of
// directio.BlockSize keeps O_DIRECT alignment happy.
const PageSize int64 = 2 * directio.BlockSize

// DefaultNumFrames is the number of frames a BufMgr is given when a
// caller doesn't have a more specific sizing requirement.
const DefaultNumFrames = 32

// MetaPageNo is the page number of a B+Tree index file's meta page.
const MetaPageNo int32 = 0

// IndexFileSep is the separator of an index file name of the form
// "<relation>,<offset>". Nothing in this module derives such names:
// btreeindex.New takes an already-opened page.File.
const IndexFileSep = ","
