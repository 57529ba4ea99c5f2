// Package sortlib is the local engine of a distributed external sort over
// fixed-size 100-byte records.
//
// A record's first 10 bytes are its header: the first 8 form a big-endian
// Key that decides which partition the record lands in, and all 10 decide
// its position in sort order. The remaining 90 bytes are opaque.
//
// # Basic Usage
//
// Mapper side, sorting a block and cutting it into key ranges:
//
//	boundaries, err := sortlib.GetBoundaries(numReducers)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	records, err := sortlib.AsRecords(block)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	parts, err := sortlib.SortAndPartition(records, boundaries)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i, p := range parts {
//	    send(i, p.Slice(records))
//	}
//
// Reducer side, merging sorted runs from disk with bounded memory:
//
//	fm, err := sortlib.NewFileMerger(runFiles, "part-0000", 4<<20, 8192)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	n, err := fm.Run()
//
// In-memory runs can be merged in one call with MergePartitions, or pulled
// batch by batch from a Merger. With WithRefills a Merger pauses whenever
// a run is used up and resumes once the caller supplies the next chunk
// through Refill; this is how FileMerger streams its inputs.
//
// # Memory
//
// Record views returned by AsRecords, Partition.Slice and passed to
// NewMerger or Refill borrow their backing memory. The caller keeps it
// alive and unmodified until the view is no longer used.
//
// # Package Structure
//
//   - Records: record.go (Record, Key, Compare, AsRecords)
//   - Key ranges: boundaries.go (GetBoundaries, PartitionOf), internal/bits
//   - Sorting: partition.go (SortAndPartition)
//   - Merging: merger.go, merge_heap.go (Merger), merge.go (MergePartitions)
//   - Files: file_merger.go (FileMerger), validate.go (Summary, ValidateFile)
//   - Configuration: options.go (MergeOption, FileMergeOption)
//   - Platform: fadvise_*.go, fallocate_*.go, madvise_*.go
//   - Test data: internal/gensort
package sortlib
