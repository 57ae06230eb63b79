// Package page defines the Page value type and the File interface the
// buffer pool reads and writes pages through, plus BlobFile, a
// directio-backed concrete File.
//
// Page and File are "external collaborators" per spec.md §1/§6: the
// buffer pool and B+Tree only ever consume the interface below. BlobFile
// is provided so the rest of this module is testable end-to-end.
package page

// NoPageNo is the page number used for a Page that hasn't been assigned
// a real slot yet.
const NoPageNo int32 = -1

// Page is a fixed-size, page-numbered byte block. The buffer pool treats
// it as opaque; the B+Tree reinterprets its bytes as node layouts.
type Page struct {
	pageNo int32
	data   []byte
}

// newPage wraps data (expected to be config.PageSize bytes, already
// allocated by the caller) as a Page with the given page number.
func newPage(pageNo int32, data []byte) Page {
	return Page{pageNo: pageNo, data: data}
}

// NewFrame wraps a frame's own backing buffer as an as-yet-unassigned
// Page, for use by a buffer pool building its frame array.
func NewFrame(data []byte) Page {
	return Page{pageNo: NoPageNo, data: data}
}

// PageNo returns the page's number, readable once it has been allocated.
func (p Page) PageNo() int32 {
	return p.pageNo
}

// Data returns the page's backing bytes. Mutating the returned slice
// mutates the page in place.
func (p Page) Data() []byte {
	return p.data
}

// CopyFrom overwrites p's backing bytes and page number with src's. Used
// by the buffer pool to load file-supplied page content into a
// persistent frame buffer.
func (p *Page) CopyFrom(src Page) {
	p.pageNo = src.pageNo
	copy(p.data, src.data)
}

// WriteAt copies data into p's backing bytes starting at offset.
func (p Page) WriteAt(data []byte, offset int) {
	copy(p.data[offset:offset+len(data)], data)
}
