package sortlib

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	sorterrors "github.com/tamirms/sortlib/errors"
)

const (
	// RecordSize is the fixed size of a record: header followed by body.
	RecordSize = 100

	// HeaderSize is the number of leading bytes that define record order.
	HeaderSize = 10

	// KeySize is the number of header bytes decoded into a Key.
	// The remaining HeaderSize-KeySize bytes only break ties.
	KeySize = 8
)

// Key is the 64-bit partitioning key of a record.
type Key uint64

// Record is a single fixed-size record.
//
// Layout:
//
//	Offset  Size  Field
//	0       8     Key     uint64_be
//	8       2     Tie     opaque, compared after the key
//	10      90    Body    opaque
type Record [RecordSize]byte

// Key decodes the first KeySize header bytes as a big-endian integer.
func (r *Record) Key() Key {
	return Key(binary.BigEndian.Uint64(r[:KeySize]))
}

// Header returns the bytes that define the record's position in sort order.
func (r *Record) Header() []byte {
	return r[:HeaderSize]
}

// Compare orders records by a byte-wise comparison of the full header.
// Records with equal keys are ordered by the trailing header bytes.
func Compare(a, b *Record) int {
	return bytes.Compare(a[:HeaderSize], b[:HeaderSize])
}

// Less reports whether a sorts strictly before b.
func Less(a, b *Record) bool {
	return Compare(a, b) < 0
}

// AsRecords returns a []Record view over buf without copying.
// The view borrows buf: buf must outlive it and must not be modified
// through other aliases while the view is in use.
func AsRecords(buf []byte) ([]Record, error) {
	if len(buf)%RecordSize != 0 {
		return nil, sorterrors.ErrRecordAlignment
	}
	if len(buf) == 0 {
		return nil, nil
	}
	return unsafe.Slice((*Record)(unsafe.Pointer(&buf[0])), len(buf)/RecordSize), nil
}

// RecordBytes returns the byte view of records without copying.
func RecordBytes(records []Record) []byte {
	if len(records) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&records[0])), len(records)*RecordSize)
}
