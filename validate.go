package sortlib

import (
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	sorterrors "github.com/tamirms/sortlib/errors"
)

// Summary describes a record sequence in the manner of gensort's valsort.
type Summary struct {
	Records    int64
	Checksum   uint64 // Order-independent: wrapping sum of xxHash64 per record
	Duplicates int64  // Adjacent records with identical headers
	Sorted     bool
	// FirstUnsorted is the index of the first record that sorts before its
	// predecessor, or -1 when Sorted.
	FirstUnsorted int64
}

// Equivalent reports whether s and other describe the same multiset of
// records (up to hash collisions), regardless of order.
func (s Summary) Equivalent(other Summary) bool {
	return s.Records == other.Records && s.Checksum == other.Checksum
}

// Add folds other into s as if other's records followed s's. Ordering
// across the seam is not checked.
func (s Summary) Add(other Summary) Summary {
	out := Summary{
		Records:       s.Records + other.Records,
		Checksum:      s.Checksum + other.Checksum,
		Duplicates:    s.Duplicates + other.Duplicates,
		Sorted:        s.Sorted && other.Sorted,
		FirstUnsorted: s.FirstUnsorted,
	}
	if out.FirstUnsorted < 0 && other.FirstUnsorted >= 0 {
		out.FirstUnsorted = s.Records + other.FirstUnsorted
	}
	return out
}

// Summarize computes the Summary of records.
func Summarize(records []Record) Summary {
	s := Summary{
		Records:       int64(len(records)),
		Sorted:        true,
		FirstUnsorted: -1,
	}
	for i := range records {
		s.Checksum += xxhash.Sum64(records[i][:])
		if i == 0 {
			continue
		}
		switch c := Compare(&records[i-1], &records[i]); {
		case c == 0:
			s.Duplicates++
		case c > 0 && s.Sorted:
			s.Sorted = false
			s.FirstUnsorted = int64(i)
		}
	}
	return s
}

// ValidateFile memory-maps a record file read-only and summarizes it.
// The file size must be a multiple of RecordSize; an empty file is valid.
func ValidateFile(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return Summary{}, fmt.Errorf("stat %s: %w", path, err)
	}
	size := stat.Size()
	if size%RecordSize != 0 {
		return Summary{}, fmt.Errorf("%w: %s is %d bytes", sorterrors.ErrCorruptFile, path, size)
	}
	if size == 0 {
		// mmap of a zero-length file fails; nothing to scan anyway.
		return Summarize(nil), nil
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return Summary{}, fmt.Errorf("mmap %s: %w", path, err)
	}
	adviseSequential(mm)
	records, err := AsRecords(mm)
	if err != nil {
		return Summary{}, errors.Join(err, mm.Unmap())
	}
	s := Summarize(records)
	if err := mm.Unmap(); err != nil {
		return Summary{}, fmt.Errorf("munmap %s: %w", path, err)
	}
	return s, nil
}
