package sortlib

// mergeBatchRecords is the batch size MergePartitions pulls from the merger.
const mergeBatchRecords = 4096

// MergePartitions merges sorted partitions into a newly allocated buffer of
// exactly sum(len(views)) records. It is the all-in-memory counterpart of
// driving a Merger by hand; the returned buffer is owned by the caller.
//
// Options are passed to NewMerger. With WithRefills there is no further
// data to feed, so every depleted partition is closed with an empty refill.
func MergePartitions(views [][]Record, opts ...MergeOption) ([]Record, error) {
	total := 0
	for _, v := range views {
		total += len(v)
	}

	m, err := NewMerger(views, opts...)
	if err != nil {
		return nil, err
	}

	out := make([]Record, total)
	written := 0
	// Once out is full only depletion reports can remain, and GetBatch
	// still needs a non-empty buffer to deliver them.
	var spare [1]Record
	for m.State() != StateExhausted {
		if id := m.AwaitingPartition(); id >= 0 {
			if err := m.Refill(nil, id); err != nil {
				return nil, err
			}
			continue
		}

		batch := spare[:]
		if written < total {
			batch = out[written:min(written+mergeBatchRecords, total)]
		}
		n, _, err := m.GetBatch(batch)
		if err != nil {
			return nil, err
		}
		written += n
	}
	return out, nil
}
