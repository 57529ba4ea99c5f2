package sortlib

// mergeHeap is a min-heap of partitions ordered by their current head record.
// Uses parallel index/head slices for O(log n) push/pop without boxing.
type mergeHeap struct {
	ids   []int     // Partition ids
	heads []*Record // Current head record of the corresponding partition
}

func newMergeHeap(capacity int) *mergeHeap {
	return &mergeHeap{
		ids:   make([]int, 0, capacity),
		heads: make([]*Record, 0, capacity),
	}
}

func (h *mergeHeap) len() int {
	return len(h.ids)
}

// push adds a partition and maintains heap property. O(log n).
func (h *mergeHeap) push(id int, head *Record) {
	h.ids = append(h.ids, id)
	h.heads = append(h.heads, head)
	h.up(len(h.ids) - 1)
}

// top returns the partition holding the smallest head record.
// Precondition: len() > 0.
func (h *mergeHeap) top() (int, *Record) {
	return h.ids[0], h.heads[0]
}

// replaceTop installs a new head for the top partition and restores order.
func (h *mergeHeap) replaceTop(head *Record) {
	h.heads[0] = head
	h.down(0, len(h.ids))
}

// popTop removes the top partition.
func (h *mergeHeap) popTop() {
	n := len(h.ids) - 1
	h.swap(0, n)
	h.down(0, n)
	h.heads[n] = nil
	h.ids = h.ids[:n]
	h.heads = h.heads[:n]
}

func (h *mergeHeap) swap(i, j int) {
	h.ids[i], h.ids[j] = h.ids[j], h.ids[i]
	h.heads[i], h.heads[j] = h.heads[j], h.heads[i]
}

func (h *mergeHeap) less(i, j int) bool {
	if c := Compare(h.heads[i], h.heads[j]); c != 0 {
		return c < 0
	}
	// Deterministic tie-break by partition id
	return h.ids[i] < h.ids[j]
}

func (h *mergeHeap) up(j int) {
	for {
		i := (j - 1) / 2 // parent
		if i == j || !h.less(j, i) {
			break
		}
		h.swap(i, j)
		j = i
	}
}

func (h *mergeHeap) down(i, n int) {
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1 // left child
		if j2 := j1 + 1; j2 < n && h.less(j2, j1) {
			j = j2 // right child
		}
		if !h.less(j, i) {
			break
		}
		h.swap(i, j)
		i = j
	}
}
