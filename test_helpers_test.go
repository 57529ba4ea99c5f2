package sortlib

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/tamirms/sortlib/internal/gensort"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns a PCG generator seeded from the test name, so every
// test gets its own reproducible stream.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// recordWithKey builds a record with the given key and tie-break bytes.
// The body carries tag so that records with equal headers stay
// distinguishable.
func recordWithKey(key Key, tie uint16, tag uint64) Record {
	var r Record
	binary.BigEndian.PutUint64(r[0:8], uint64(key))
	binary.BigEndian.PutUint16(r[8:10], tie)
	binary.LittleEndian.PutUint64(r[HeaderSize:], tag)
	return r
}

// recordsWithKeys builds one record per key with zero tie bytes.
func recordsWithKeys(keys ...Key) []Record {
	recs := make([]Record, len(keys))
	for i, k := range keys {
		recs[i] = recordWithKey(k, 0, uint64(i))
	}
	return recs
}

// randomRecords returns n records with random headers and bodies.
func randomRecords(rng *rand.Rand, n int) []Record {
	recs := make([]Record, n)
	for i := range recs {
		for j := 0; j+8 <= RecordSize; j += 8 {
			binary.LittleEndian.PutUint64(recs[i][j:], rng.Uint64())
		}
		binary.LittleEndian.PutUint32(recs[i][RecordSize-4:], rng.Uint32())
	}
	return recs
}

// generatedRecords returns n gensort records starting at index start.
func generatedRecords(t testing.TB, n int, start uint64) []Record {
	t.Helper()
	buf, err := gensort.Generate(context.Background(), n, start, testSeed1, 4)
	if err != nil {
		t.Fatalf("gensort.Generate: %v", err)
	}
	recs, err := AsRecords(buf)
	if err != nil {
		t.Fatalf("AsRecords: %v", err)
	}
	return recs
}

// sortedCopy returns a sorted copy of recs.
func sortedCopy(recs []Record) []Record {
	out := slices.Clone(recs)
	slices.SortFunc(out, func(a, b Record) int {
		return Compare(&a, &b)
	})
	return out
}

// splitSorted cuts recs into parts sorted runs of random length.
func splitSorted(rng *rand.Rand, recs []Record, parts int) [][]Record {
	recs = slices.Clone(recs)
	rng.Shuffle(len(recs), func(i, j int) { recs[i], recs[j] = recs[j], recs[i] })

	cuts := make([]int, parts-1)
	for i := range cuts {
		cuts[i] = rng.IntN(len(recs) + 1)
	}
	slices.Sort(cuts)

	views := make([][]Record, 0, parts)
	prev := 0
	for _, c := range append(cuts, len(recs)) {
		views = append(views, sortedCopy(recs[prev:c]))
		prev = c
	}
	return views
}

// checkSorted fails the test if recs is not ordered by Compare.
func checkSorted(t testing.TB, recs []Record) {
	t.Helper()
	for i := 1; i < len(recs); i++ {
		if Compare(&recs[i-1], &recs[i]) > 0 {
			t.Fatalf("records not sorted at %d: %x > %x", i, recs[i-1].Header(), recs[i].Header())
		}
	}
}

// checkSameRecords fails the test unless got equals want exactly.
func checkSameRecords(t testing.TB, got, want []Record) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: got header %x, want %x", i, got[i].Header(), want[i].Header())
		}
	}
}

// writeRecordFile writes recs to dir/name and returns the path.
func writeRecordFile(t testing.TB, dir, name string, recs []Record) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, RecordBytes(recs), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// readRecordFile reads a whole record file into a fresh slice.
func readRecordFile(t testing.TB, path string) []Record {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	recs, err := AsRecords(data)
	if err != nil {
		t.Fatalf("AsRecords(%s): %v", path, err)
	}
	return recs
}

// keysOf returns the key of every record.
func keysOf(recs []Record) []Key {
	keys := make([]Key, len(recs))
	for i := range recs {
		keys[i] = recs[i].Key()
	}
	return keys
}
