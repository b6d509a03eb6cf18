package hist

import (
	"math"

	"github.com/YuminosukeSato/gbhist/data"
	scigoErrors "github.com/YuminosukeSato/gbhist/pkg/errors"
)

// unregisteredNode marks a node id that has no histogram slot yet.
const unregisteredNode = math.MaxUint32

// Collection maps active tree-node ids to their histogram rows. Node ids are
// small non-negative integers but need not be contiguous. A node must be
// registered with AddHistRow before its row can be allocated or read.
//
// Storage is per-node by default; AllocateAllData switches to one contiguous
// allocation spanning every registered node, which a bulk cross-process
// reduction needs to see all histograms as a single buffer.
type Collection struct {
	// nbins is the number of bins in each histogram row.
	nbins uint32
	// nAdded counts registered nodes.
	nAdded uint32
	// contiguous is set once AllocateAllData promoted storage.
	contiguous bool

	data [][]data.GradientPair

	// rowPtr[nid] is the slot index of node nid, unregisteredNode if free.
	rowPtr []uint32
}

// Init resets node registrations for a new iteration. Allocated storage is
// dropped only when the bin count changed; reusing the buffers across
// boosting iterations avoids repeated large allocations.
func (c *Collection) Init(nbins uint32) {
	if c.nbins != nbins {
		c.nbins = nbins
		c.data = nil
	}
	c.rowPtr = c.rowPtr[:0]
	c.nAdded = 0
	c.contiguous = false
}

// NumBins returns the per-row bin count the collection was initialized with.
func (c *Collection) NumBins() uint32 { return c.nbins }

// RowExists reports whether a histogram row was registered for nid. It is a
// pure query: out-of-range ids return false rather than panicking.
func (c *Collection) RowExists(nid int) bool {
	return nid >= 0 && nid < len(c.rowPtr) && c.rowPtr[nid] != unregisteredNode
}

// AddHistRow registers node nid. Registering the same id twice is a contract
// violation.
func (c *Collection) AddHistRow(nid int) {
	if nid < 0 {
		panic(scigoErrors.NewNodeError("Collection.AddHistRow", nid, "negative node id"))
	}
	for nid >= len(c.rowPtr) {
		c.rowPtr = append(c.rowPtr, unregisteredNode)
	}
	if c.rowPtr[nid] != unregisteredNode {
		panic(scigoErrors.NewNodeError("Collection.AddHistRow", nid, "node already registered"))
	}

	for len(c.data) < nid+1 {
		c.data = append(c.data, nil)
	}

	c.rowPtr[nid] = c.nAdded
	c.nAdded++
}

// AllocateData allocates node nid's backing storage. Allocation is deferred
// until real use is imminent so that nodes which end up empty cost nothing;
// calling it again is a no-op. A buffer left oversized by an earlier
// contiguous pass is kept and reused.
func (c *Collection) AllocateData(nid int) {
	id := c.slot("Collection.AllocateData", nid)
	if len(c.data[id]) < int(c.nbins) {
		c.data[id] = make([]data.GradientPair, c.nbins)
	}
}

// AllocateAllData switches to one contiguous buffer spanning all registered
// nodes, as required before a single bulk all-reduce over every histogram.
// Rows handed out afterwards are slices of that buffer.
func (c *Collection) AllocateAllData() {
	newSize := int(c.nbins) * len(c.data)
	c.contiguous = true
	if len(c.data) == 0 {
		return
	}
	if len(c.data[0]) != newSize {
		c.data[0] = make([]data.GradientPair, newSize)
	}
}

// Row returns node nid's histogram as a borrowed view of exactly nbins
// pairs, whatever the backing buffer's capacity. The node must be registered
// and allocated.
func (c *Collection) Row(nid int) Row {
	id := c.slot("Collection.Row", nid)
	if c.contiguous {
		return Row(c.data[0][c.nbins*id : c.nbins*(id+1)])
	}
	if len(c.data[id]) < int(c.nbins) {
		panic(scigoErrors.NewNodeError("Collection.Row", nid, "node data was never allocated"))
	}
	return Row(c.data[id][:c.nbins:c.nbins])
}

func (c *Collection) slot(op string, nid int) uint32 {
	if nid < 0 || nid >= len(c.rowPtr) {
		panic(scigoErrors.NewNodeError(op, nid, "node was never registered"))
	}
	id := c.rowPtr[nid]
	if id == unregisteredNode {
		panic(scigoErrors.NewNodeError(op, nid, "node was never registered"))
	}
	return id
}
