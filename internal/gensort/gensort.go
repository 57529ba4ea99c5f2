// Package gensort generates deterministic pseudo-random 100-byte records in
// the style of the sort benchmark's gensort tool: a 10-byte random header
// followed by a 90-byte body that identifies the record.
//
// It works on raw byte buffers so that it can be used by the sortlib tests
// without an import cycle.
package gensort

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

const (
	// RecordSize is the size of a generated record.
	RecordSize = 100

	// HeaderSize is the size of the random, sort-relevant prefix.
	HeaderSize = 10

	// ctxCheckInterval is how many records a worker fills between context checks.
	ctxCheckInterval = 1 << 14

	hexDigits = "0123456789ABCDEF"
)

// Record writes record number index into dst[:RecordSize].
//
// Layout:
//
//	Offset  Size  Content
//	0       10    xxh3-128(index, seed), big-endian high word then 2 low bytes
//	10      2     "  "
//	12      32    index as 32 upper-case hex digits
//	44      4     "    "
//	48      48    filler letters derived from murmur3(index)
//	96      4     "\r\n\r\n"
func Record(dst []byte, index, seed uint64) {
	_ = dst[RecordSize-1]

	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], index)

	h := xxh3.Hash128Seed(idx[:], seed)
	binary.BigEndian.PutUint64(dst[0:8], h.Hi)
	dst[8] = byte(h.Lo >> 8)
	dst[9] = byte(h.Lo)

	dst[10], dst[11] = ' ', ' '
	for i := 0; i < 32; i++ {
		// 128-bit index with a zero high word.
		shift := uint(124 - 4*i)
		var nibble uint64
		if shift < 64 {
			nibble = (index >> shift) & 0xF
		}
		dst[12+i] = hexDigits[nibble]
	}
	copy(dst[44:48], "    ")

	for block := 0; block < 3; block++ {
		h1, h2 := murmur3.Sum128WithSeed(idx[:], uint32(seed)+uint32(block))
		off := 48 + block*16
		for j := 0; j < 8; j++ {
			dst[off+j] = 'A' + byte((h1>>(8*j))%26)
			dst[off+8+j] = 'A' + byte((h2>>(8*j))%26)
		}
	}
	copy(dst[96:100], "\r\n\r\n")
}

// Fill writes records start, start+1, ... into buf, splitting the work
// across workers goroutines. len(buf) must be a multiple of RecordSize.
func Fill(ctx context.Context, buf []byte, start, seed uint64, workers int) error {
	if len(buf)%RecordSize != 0 {
		return fmt.Errorf("gensort: buffer of %d bytes is not a whole number of records", len(buf))
	}
	n := len(buf) / RecordSize
	if workers < 1 {
		workers = 1
	}
	workers = min(workers, max(n, 1))
	perWorker := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		lo := w * perWorker
		hi := min(lo+perWorker, n)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%ctxCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				Record(buf[i*RecordSize:(i+1)*RecordSize], start+uint64(i), seed)
			}
			return nil
		})
	}
	return g.Wait()
}

// Generate allocates and fills a buffer of n records.
func Generate(ctx context.Context, n int, start, seed uint64, workers int) ([]byte, error) {
	buf := make([]byte, n*RecordSize)
	if err := Fill(ctx, buf, start, seed, workers); err != nil {
		return nil, err
	}
	return buf, nil
}
