package page

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ncw/directio"

	"storagecore/internal/config"
)

// ErrPageDeleted is returned by ReadPage/WritePage for a page number that
// was previously passed to DeletePage.
var ErrPageDeleted = errors.New("page: page was deleted")

// ErrBadPageNo is returned for a page number outside [0, NumPages).
var ErrBadPageNo = errors.New("page: page number out of range")

// File is the per-file page storage abstraction the buffer pool reads
// and writes through. An implementer may substitute any equivalent type;
// this is the interface the rest of the module consumes (spec.md §6).
type File interface {
	// Name identifies the file, used by the buffer pool's hash index to
	// pick a bucket. Two Files with the same Name are not
	// required to be the same file; Name is a hint, not an identity.
	Name() string
	// AllocatePage grows the file by one page and returns it, carrying
	// its newly assigned page number.
	AllocatePage() (Page, error)
	// ReadPage reads the page with the given number.
	ReadPage(pageNo int32) (Page, error)
	// WritePage writes page back to its own page number.
	WritePage(p Page) error
	// DeletePage retires a page number. A File is not required to reclaim
	// the underlying space; it must reject further reads/writes to the
	// page number.
	DeletePage(pageNo int32) error
	// NumPages returns the number of pages ever allocated in this file
	// (deleted pages still count).
	NumPages() int32
	// Close releases the file's OS resources.
	Close() error
}

// BlobFile is a File backed by a single O_DIRECT-opened OS file, grounded
// on dinodb's pkg/pager.Pager.Open/fillPageFromDisk/FlushPage. Every page
// is page-aligned on disk so direct I/O can address it without going
// through the page cache.
type BlobFile struct {
	name     string
	osFile   *os.File
	numPages int32
	deleted  map[int32]bool
}

// OpenBlobFile opens (or creates, if overwrite or the file doesn't exist)
// a BlobFile at path.
func OpenBlobFile(path string, overwrite bool) (*BlobFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0775); err != nil {
			return nil, err
		}
	}
	flags := os.O_RDWR | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	}
	f, err := directio.OpenFile(path, flags, 0666)
	if err != nil {
		return nil, err
	}
	bf := &BlobFile{name: path, osFile: f, deleted: make(map[int32]bool)}
	if !overwrite {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, err
		}
		if info.Size()%config.PageSize != 0 {
			f.Close()
			return nil, fmt.Errorf("page: file %s is not page-aligned", path)
		}
		bf.numPages = int32(info.Size() / config.PageSize)
	}
	return bf, nil
}

// Name returns the path the BlobFile was opened with.
func (bf *BlobFile) Name() string {
	return bf.name
}

// NumPages returns the number of pages ever allocated.
func (bf *BlobFile) NumPages() int32 {
	return bf.numPages
}

// AllocatePage appends one zeroed, aligned page and returns it.
func (bf *BlobFile) AllocatePage() (Page, error) {
	pageNo := bf.numPages
	data := directio.AlignedBlock(int(config.PageSize))
	if _, err := bf.osFile.WriteAt(data, int64(pageNo)*config.PageSize); err != nil {
		return Page{}, err
	}
	bf.numPages++
	return newPage(pageNo, data), nil
}

// ReadPage reads the page with the given number from disk.
func (bf *BlobFile) ReadPage(pageNo int32) (Page, error) {
	if pageNo < 0 || pageNo >= bf.numPages {
		return Page{}, ErrBadPageNo
	}
	if bf.deleted[pageNo] {
		return Page{}, ErrPageDeleted
	}
	data := directio.AlignedBlock(int(config.PageSize))
	if _, err := bf.osFile.ReadAt(data, int64(pageNo)*config.PageSize); err != nil && err != io.EOF {
		return Page{}, err
	}
	return newPage(pageNo, data), nil
}

// WritePage writes p back to its own page number.
func (bf *BlobFile) WritePage(p Page) error {
	if p.pageNo < 0 || p.pageNo >= bf.numPages {
		return ErrBadPageNo
	}
	if bf.deleted[p.pageNo] {
		return ErrPageDeleted
	}
	_, err := bf.osFile.WriteAt(p.data, int64(p.pageNo)*config.PageSize)
	return err
}

// DeletePage retires pageNo. The space is not reclaimed.
func (bf *BlobFile) DeletePage(pageNo int32) error {
	if pageNo < 0 || pageNo >= bf.numPages {
		return ErrBadPageNo
	}
	bf.deleted[pageNo] = true
	return nil
}

// Close closes the backing OS file.
func (bf *BlobFile) Close() error {
	return bf.osFile.Close()
}
