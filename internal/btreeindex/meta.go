package btreeindex

import "encoding/binary"

// relationNameWidth mirrors indexMetaInfo.relationName's fixed 20-byte
// field in original_source/P3 B+ Tree/btree.h.
const relationNameWidth = 20

// AttrType enumerates the attribute datatypes a BTreeIndex can be built
// over. Only Integer is implemented (spec.md §3/§4.2); the others are
// preserved as named constants so a meta page decoded from a
// differently-typed index is rejected with a clear message rather than
// silently misread as integers.
type AttrType int32

const (
	Integer AttrType = 0
	Double  AttrType = 1
	String  AttrType = 2
)

// indexMetaInfo is the decoded form of the index file's page-0 meta
// page: the relation it indexes, the byte offset of the indexed
// attribute within each tuple, the attribute's type, and the current
// root page number. Grounded on IndexMetaInfo in
// original_source/P3 B+ Tree/btree.h.
type indexMetaInfo struct {
	RelationName   string
	AttrByteOffset int32
	AttrType       AttrType
	RootPageNo     int32
}

func decodeMeta(data []byte) indexMetaInfo {
	nameBytes := data[0:relationNameWidth]
	end := relationNameWidth
	for end > 0 && nameBytes[end-1] == 0 {
		end--
	}
	off := relationNameWidth
	attrByteOffset := int32(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	attrType := AttrType(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	rootPageNo := int32(binary.LittleEndian.Uint32(data[off : off+4]))
	return indexMetaInfo{
		RelationName:   string(nameBytes[:end]),
		AttrByteOffset: attrByteOffset,
		AttrType:       attrType,
		RootPageNo:     rootPageNo,
	}
}

func (m indexMetaInfo) encodeInto(data []byte) {
	for i := range data[:relationNameWidth] {
		data[i] = 0
	}
	copy(data[0:relationNameWidth], m.RelationName)
	off := relationNameWidth
	binary.LittleEndian.PutUint32(data[off:off+4], uint32(m.AttrByteOffset))
	off += 4
	binary.LittleEndian.PutUint32(data[off:off+4], uint32(m.AttrType))
	off += 4
	binary.LittleEndian.PutUint32(data[off:off+4], uint32(m.RootPageNo))
}
