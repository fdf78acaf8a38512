package search

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/navigo/graph"
)

// Discovered is the search state of a node that has been reached.
// Following Pred from the target yields the route back to the start.
type Discovered struct {
	ID   graph.NodeID
	Pred *Discovered
	Dist float32
}

// OpenList maps discovered, not yet finalized nodes to their state.
type OpenList struct {
	m map[graph.NodeID]*Discovered
}

// NewOpenList creates an empty open list.
func NewOpenList() *OpenList {
	return &OpenList{m: make(map[graph.NodeID]*Discovered)}
}

// Put stores d under its id.
func (o *OpenList) Put(d *Discovered) { o.m[d.ID] = d }

// Get returns the state of id.
func (o *OpenList) Get(id graph.NodeID) (*Discovered, bool) {
	d, ok := o.m[id]
	return d, ok
}

// Remove deletes id and returns its state.
func (o *OpenList) Remove(id graph.NodeID) (*Discovered, bool) {
	d, ok := o.m[id]
	if ok {
		delete(o.m, id)
	}
	return d, ok
}

// Len returns the number of open nodes.
func (o *OpenList) Len() int { return len(o.m) }

// Reset empties the list, keeping its allocated buckets.
func (o *OpenList) Reset() { clear(o.m) }

// ClosedSet holds finalized node ids.
type ClosedSet struct {
	bm *roaring64.Bitmap
}

// NewClosedSet creates an empty closed set.
func NewClosedSet() *ClosedSet {
	return &ClosedSet{bm: roaring64.New()}
}

// Add marks id as finalized.
func (c *ClosedSet) Add(id graph.NodeID) { c.bm.Add(id) }

// Contains reports whether id is finalized.
func (c *ClosedSet) Contains(id graph.NodeID) bool { return c.bm.Contains(id) }

// Len returns the number of finalized nodes.
func (c *ClosedSet) Len() int { return int(c.bm.GetCardinality()) }

// Reset empties the set.
func (c *ClosedSet) Reset() { c.bm.Clear() }
