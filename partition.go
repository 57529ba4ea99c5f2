package sortlib

import "sort"

// Partition is a contiguous range of records, in record units.
type Partition struct {
	Offset int
	Size   int
}

// Slice returns the records covered by p. The result aliases records.
func (p Partition) Slice(records []Record) []Record {
	return records[p.Offset : p.Offset+p.Size : p.Offset+p.Size]
}

// byHeader sorts records in place by Compare.
type byHeader []Record

var _ sort.Interface = byHeader(nil)

func (s byHeader) Len() int           { return len(s) }
func (s byHeader) Less(i, j int) bool { return Compare(&s[i], &s[j]) < 0 }
func (s byHeader) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// SortAndPartition sorts records in place and splits them into one
// partition per boundary. The i-th partition holds the records whose key
// is in [boundaries[i], boundaries[i+1]); the last one holds every key
// >= boundaries[len-1].
//
// Partitions are laid out back to back and cover all of records:
// ret[0].Offset == 0 and ret[i].Offset+ret[i].Size == ret[i+1].Offset.
// An empty partition has Size 0 and shares its offset with the next one.
//
// CPU cost is O(n log n) for the sort plus a single O(n) scan. Nothing is
// allocated besides the returned slice.
func SortAndPartition(records []Record, boundaries []Key) ([]Partition, error) {
	if err := ValidateBoundaries(boundaries); err != nil {
		return nil, err
	}

	sort.Sort(byHeader(records))

	parts := make([]Partition, len(boundaries))
	cur, start := 0, 0
	for i := range records {
		key := records[i].Key()
		// Close every range that ends at or before key. Sorted input means
		// the cursor only moves forward.
		for cur+1 < len(boundaries) && key >= boundaries[cur+1] {
			parts[cur] = Partition{Offset: start, Size: i - start}
			start = i
			cur++
		}
	}
	for ; cur < len(boundaries); cur++ {
		parts[cur] = Partition{Offset: start, Size: len(records) - start}
		start = len(records)
	}
	return parts, nil
}
