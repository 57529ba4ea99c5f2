package sortlib

import (
	"bytes"
	"fmt"

	sorterrors "github.com/tamirms/sortlib/errors"
)

// MergerState is the position of a Merger in its pull/refill protocol.
type MergerState uint8

const (
	// StateActive means GetBatch can make progress.
	StateActive MergerState = iota
	// StateAwaitingRefill means a partition ran dry and Refill must be
	// called for it before GetBatch can continue.
	StateAwaitingRefill
	// StateExhausted means every partition is finished; GetBatch returns
	// (0, -1, nil) from now on.
	StateExhausted
)

func (s MergerState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateAwaitingRefill:
		return "awaiting-refill"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("MergerState(%d)", uint8(s))
	}
}

// Merger merges M sorted partitions and produces the output in batches.
//
// Merger is a pull-based state machine: all progress happens inside
// GetBatch, and the state between calls (heap, per-partition cursors,
// pending refills) is the only thing carried over. There is no background
// work, and abandoning a Merger has no effect beyond dropping it.
//
// Partitions are borrowed: every view passed to NewMerger or Refill must
// stay valid and unmodified until the Merger reports it depleted.
//
// CPU cost: O(Pr * log(M)) where Pr is the total number of records.
//
// Thread Safety: a Merger must not be used from more than one goroutine
// at a time.
type Merger struct {
	cfg *mergeConfig

	views   [][]Record         // Unconsumed records per partition
	last    [][HeaderSize]byte // Header of the last record emitted per partition
	emitted []bool             // Whether last[i] is set
	heap    *mergeHeap

	// Refill mode: initially empty partitions, reported before anything
	// is emitted.
	pending []int

	state    MergerState
	awaiting int // Partition id awaiting a refill, -1 otherwise

	rangeIdx   int // Boundary range of the most recent record considered
	batchRange int // Boundary range of the last returned batch
}

// NewMerger creates a Merger over the given sorted partitions.
// Partition ids are the indices into views.
func NewMerger(views [][]Record, opts ...MergeOption) (*Merger, error) {
	cfg := defaultMergeConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.boundaries != nil {
		if err := ValidateBoundaries(cfg.boundaries); err != nil {
			return nil, err
		}
	}

	m := &Merger{
		cfg:      cfg,
		views:    make([][]Record, len(views)),
		last:     make([][HeaderSize]byte, len(views)),
		emitted:  make([]bool, len(views)),
		heap:     newMergeHeap(len(views)),
		awaiting: -1,
	}
	for i, v := range views {
		if len(v) > 0 {
			m.views[i] = v
			m.heap.push(i, &v[0])
		} else if cfg.askForRefills {
			m.pending = append(m.pending, i)
		}
	}
	m.settle()
	return m, nil
}

// State returns the current protocol state.
func (m *Merger) State() MergerState {
	return m.state
}

// AwaitingPartition returns the partition id that must be refilled next,
// or -1 if the merger is not waiting for a refill.
func (m *Merger) AwaitingPartition() int {
	return m.awaiting
}

// Range returns the boundary range index of the records returned by the
// most recent GetBatch. It is always 0 when no boundaries were configured.
func (m *Merger) Range() int {
	return m.batchRange
}

// GetBatch writes up to len(out) records in merged order into out.
//
// It returns the number of records written and the id of the partition
// that became empty during this call (-1 if none). A batch ends when out
// is full, when a partition runs dry, or, with boundaries, before the
// first record of the next key range.
//
// Without refills a depleted partition is dropped and the next call
// continues with the rest. With refills the merger stops until Refill is
// called for that partition; calling GetBatch earlier returns
// ErrRefillPending.
func (m *Merger) GetBatch(out []Record) (int, int, error) {
	if len(out) == 0 {
		return 0, -1, sorterrors.ErrInvalidBatchSize
	}
	switch m.state {
	case StateExhausted:
		return 0, -1, nil
	case StateAwaitingRefill:
		return 0, -1, fmt.Errorf("%w: partition %d", sorterrors.ErrRefillPending, m.awaiting)
	}

	if len(m.pending) > 0 {
		id := m.pending[0]
		m.pending = m.pending[1:]
		m.state = StateAwaitingRefill
		m.awaiting = id
		return 0, id, nil
	}

	n := 0
	for n < len(out) && m.heap.len() > 0 {
		id, head := m.heap.top()

		if m.cfg.boundaries != nil {
			r := m.advanceRange(head.Key())
			if n == 0 {
				m.batchRange = r
			} else if r != m.batchRange {
				break
			}
		}

		out[n] = *head
		n++
		copy(m.last[id][:], head[:HeaderSize])
		m.emitted[id] = true

		rest := m.views[id][1:]
		if len(rest) > 0 {
			m.views[id] = rest
			m.heap.replaceTop(&rest[0])
			continue
		}

		// Partition ran dry.
		m.views[id] = nil
		m.heap.popTop()
		if m.cfg.askForRefills {
			m.state = StateAwaitingRefill
			m.awaiting = id
		} else {
			m.settle()
		}
		return n, id, nil
	}

	m.settle()
	return n, -1, nil
}

// Refill supplies the next chunk of a depleted partition. view must
// continue the partition's sorted stream: its first record must not sort
// before the last record emitted from that partition. An empty view marks
// the partition as finished for good.
//
// Only the partition reported by the last GetBatch can be refilled; any
// other id returns ErrUnknownPartition. The merger keeps its own copy of
// the last emitted header, so view may reuse the previous chunk's memory.
func (m *Merger) Refill(view []Record, partID int) error {
	if m.state != StateAwaitingRefill || partID != m.awaiting {
		return fmt.Errorf("%w: partition %d", sorterrors.ErrUnknownPartition, partID)
	}

	if len(view) > 0 {
		if m.emitted[partID] && bytes.Compare(view[0][:HeaderSize], m.last[partID][:]) < 0 {
			return fmt.Errorf("%w: partition %d", sorterrors.ErrUnsortedInput, partID)
		}
		m.views[partID] = view
		m.heap.push(partID, &view[0])
	}

	m.awaiting = -1
	m.state = StateActive
	m.settle()
	return nil
}

// settle moves an active merger to StateExhausted once nothing is left.
func (m *Merger) settle() {
	if m.state == StateActive && m.heap.len() == 0 && len(m.pending) == 0 {
		m.state = StateExhausted
	}
}

// advanceRange moves the boundary cursor forward to the range holding key.
// Merged output is non-decreasing, so the cursor never moves back.
func (m *Merger) advanceRange(key Key) int {
	b := m.cfg.boundaries
	for m.rangeIdx+1 < len(b) && key >= b[m.rangeIdx+1] {
		m.rangeIdx++
	}
	return m.rangeIdx
}
