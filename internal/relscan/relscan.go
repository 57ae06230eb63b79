// Package relscan defines the sequential relation scanner a BTreeIndex is
// built from, and a minimal in-memory implementation for tests and
// callers without a real heap file. The external relation itself is out
// of this module's scope; RelationScanner is its interface boundary,
// shaped after ShubhamNegi4-DaemonDB's heap-file row iteration.
package relscan

import (
	"io"

	"storagecore/internal/recordid"
)

// RelationScanner walks a relation's tuples in some fixed order,
// returning io.EOF once exhausted. It never rewinds; a caller needing a
// second pass opens a new scanner.
type RelationScanner interface {
	ScanNext() (record []byte, rid recordid.RecordId, err error)
}

// record pairs a tuple's bytes with its RecordId, as the SliceScanner
// iterates them.
type record struct {
	data []byte
	rid  recordid.RecordId
}

// SliceScanner is a RelationScanner over an in-memory slice of records,
// for tests and any caller that doesn't have a backing heap file.
type SliceScanner struct {
	records []record
	pos     int
}

// NewSliceScanner builds a SliceScanner over the given records, each
// paired with a RecordId.
func NewSliceScanner(data [][]byte, rids []recordid.RecordId) *SliceScanner {
	records := make([]record, len(data))
	for i := range data {
		records[i] = record{data: data[i], rid: rids[i]}
	}
	return &SliceScanner{records: records}
}

// ScanNext returns the next record, or io.EOF once the slice is
// exhausted.
func (s *SliceScanner) ScanNext() ([]byte, recordid.RecordId, error) {
	if s.pos >= len(s.records) {
		return nil, recordid.RecordId{}, io.EOF
	}
	r := s.records[s.pos]
	s.pos++
	return r.data, r.rid, nil
}
