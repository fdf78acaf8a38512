// Package heap implements the fixed-capacity min-heap that drives route
// searches.
package heap

import "errors"

var (
	// ErrCapacityExceeded is returned by Insert when the heap is full.
	ErrCapacityExceeded = errors.New("heap capacity exceeded")

	// ErrEmpty is returned by ExtractMin and Peek on an empty heap.
	ErrEmpty = errors.New("heap is empty")
)

// NodeDistHeap is a binary min-heap of (node id, distance) entries stored in
// parallel arrays indexed 1..size, root at index 1.
//
// Ordering uses strict < on float32 distances. On equal children, sift-down
// prefers the left child. DecreaseIfSmaller locates entries by a linear scan
// over the active entries; there is no id-to-slot index.
//
// A NodeDistHeap is not safe for concurrent use.
type NodeDistHeap struct {
	ids     []uint64
	dists   []float32
	size    int
	maxSize int
}

// New creates a heap holding at most capacity entries.
// The backing arrays are allocated once, up front.
func New(capacity int) *NodeDistHeap {
	capacity = max(capacity, 0)
	return &NodeDistHeap{
		ids:   make([]uint64, capacity+1),
		dists: make([]float32, capacity+1),
	}
}

// BytesFor returns the backing memory of a heap with the given capacity.
func BytesFor(capacity int) int64 {
	return int64(max(capacity, 0)+1) * (8 + 4)
}

// Reset empties the heap in O(1). Backing storage is not cleared.
func (h *NodeDistHeap) Reset() {
	h.size = 0
	h.maxSize = 0
}

// Len returns the number of entries.
func (h *NodeDistHeap) Len() int { return h.size }

// IsEmpty reports whether the heap has no entries.
func (h *NodeDistHeap) IsEmpty() bool { return h.size == 0 }

// Cap returns the fixed capacity.
func (h *NodeDistHeap) Cap() int { return len(h.ids) - 1 }

// MaxSize returns the largest size reached since the last Reset.
func (h *NodeDistHeap) MaxSize() int { return h.maxSize }

// Bytes returns the size of the backing arrays.
func (h *NodeDistHeap) Bytes() int64 { return BytesFor(h.Cap()) }

// Insert adds an entry. Returns ErrCapacityExceeded if the heap is full.
func (h *NodeDistHeap) Insert(id uint64, dist float32) error {
	if h.size >= h.Cap() {
		return ErrCapacityExceeded
	}

	h.size++
	h.ids[h.size] = id
	h.dists[h.size] = dist
	if h.size > h.maxSize {
		h.maxSize = h.size
	}

	h.siftUp(h.size)
	return nil
}

// Peek returns the minimum entry without removing it.
func (h *NodeDistHeap) Peek() (uint64, float32, error) {
	if h.size == 0 {
		return 0, 0, ErrEmpty
	}
	return h.ids[1], h.dists[1], nil
}

// ExtractMin removes and returns the minimum entry.
func (h *NodeDistHeap) ExtractMin() (uint64, float32, error) {
	if h.size == 0 {
		return 0, 0, ErrEmpty
	}

	id, dist := h.ids[1], h.dists[1]

	h.ids[1] = h.ids[h.size]
	h.dists[1] = h.dists[h.size]
	h.size--

	h.siftDown(1)
	return id, dist, nil
}

// DecreaseIfSmaller lowers the distance of id to dist if dist is strictly
// smaller than its current distance. Returns false if id is not in the heap
// or dist is not smaller. O(size).
func (h *NodeDistHeap) DecreaseIfSmaller(id uint64, dist float32) bool {
	i := h.find(id)
	if i == 0 || !(dist < h.dists[i]) {
		return false
	}

	h.dists[i] = dist
	h.siftUp(i)
	return true
}

// find returns the slot of id, or 0 if absent.
func (h *NodeDistHeap) find(id uint64) int {
	for i := 1; i <= h.size; i++ {
		if h.ids[i] == id {
			return i
		}
	}
	return 0
}

func (h *NodeDistHeap) siftUp(i int) {
	for i > 1 {
		p := i / 2
		if !(h.dists[i] < h.dists[p]) {
			return
		}
		h.swap(i, p)
		i = p
	}
}

func (h *NodeDistHeap) siftDown(i int) {
	for {
		l := 2 * i
		if l > h.size {
			return
		}
		best := l
		if r := l + 1; r <= h.size && h.dists[r] < h.dists[l] {
			best = r
		}
		if !(h.dists[best] < h.dists[i]) {
			return
		}
		h.swap(i, best)
		i = best
	}
}

func (h *NodeDistHeap) swap(i, j int) {
	h.ids[i], h.ids[j] = h.ids[j], h.ids[i]
	h.dists[i], h.dists[j] = h.dists[j], h.dists[i]
}
