package hist

import (
	scigoErrors "github.com/YuminosukeSato/gbhist/pkg/errors"
)

const (
	// targetedHist marks a (thread, node) pair that writes directly into the
	// node's final histogram.
	targetedHist int32 = -1
	// unmatchedHist marks a (thread, node) pair outside the pass's work
	// partitioning; querying it is a contract violation.
	unmatchedHist int32 = -2
)

// ParallelBuilder coordinates histogram accumulation across worker threads
// and an arbitrary set of simultaneously active tree nodes. Before the
// parallel region it statically assigns every (thread, node) pair a write
// target: the first thread touching a node writes the node's final histogram
// directly, every later thread gets a private scratch row. Write sets are
// therefore disjoint and the accumulation phase needs no locks; after the
// join barrier, ReduceHist folds the scratch rows back into the targets.
//
// Scratch rows are pooled in an internal Collection and reused across passes
// while the bin count is unchanged; for typical bin and feature counts those
// buffers run to tens of megabytes, so reallocation every pass is the wrong
// tradeoff.
type ParallelBuilder struct {
	nbins    int
	nthreads int
	nodes    int

	// buffer pools the per-thread scratch histograms.
	buffer Collection

	// wasUsed marks (thread, node) pairs whose row was touched this pass and
	// therefore takes part in the reduction.
	wasUsed []bool

	// threadsToNodes marks which threads work on which node this pass.
	threadsToNodes []bool

	// tidNidToHist maps thread*nodes+node to a scratch row index,
	// targetedHist for the direct writer.
	tidNidToHist []int32

	// targeted holds the final histogram of each node, supplied by the
	// caller and already registered in its Collection.
	targeted []Row

	usedBuf    memBuffer[bool]
	threadsBuf memBuffer[bool]
	histBuf    memBuffer[int32]
}

// Init sets the histogram bin count. The scratch pool is cleared only when
// the count actually changed.
func (pb *ParallelBuilder) Init(nbins int) {
	if nbins != pb.nbins {
		pb.buffer.Init(uint32(nbins))
		pb.nbins = nbins
	}
}

// Reset prepares a parallel pass: records the final rows, partitions the
// iteration space across nthreads, and assigns every touched (thread, node)
// pair its write target. targeted must hold one allocated row per node.
func (pb *ParallelBuilder) Reset(nthreads, nodes int, space *BlockedSpace2D, targeted []Row) {
	if pb.nbins == 0 {
		panic(scigoErrors.NewValidationError("nbins", "Init must be called with a positive bin count", pb.nbins))
	}
	if nthreads < 1 {
		panic(scigoErrors.NewValidationError("nthreads", "at least one thread required", nthreads))
	}
	if len(targeted) != nodes {
		panic(scigoErrors.NewDimensionError("ParallelBuilder.Reset", nodes, len(targeted)))
	}
	pb.buffer.Init(uint32(pb.nbins))

	pb.targeted = targeted
	pb.nodes = nodes
	pb.nthreads = nthreads

	pb.matchThreadsToNodes(space)
	pb.allocateAdditionalHistograms()
	pb.matchNodeNidPairToHist()

	pb.wasUsed = pb.usedBuf.get(nthreads * nodes)
}

// GetInitializedHist returns the row thread tid accumulates into for node
// nid, zeroing it on the first touch of this pass. Scratch rows are
// allocated lazily here, so threads that never touch a node cost nothing.
func (pb *ParallelBuilder) GetInitializedHist(tid, nid int) Row {
	if nid < 0 || nid >= pb.nodes {
		panic(scigoErrors.NewRangeError("ParallelBuilder.GetInitializedHist", nid, pb.nodes))
	}
	if tid < 0 || tid >= pb.nthreads {
		panic(scigoErrors.NewRangeError("ParallelBuilder.GetInitializedHist", tid, pb.nthreads))
	}

	idx := pb.tidNidToHist[tid*pb.nodes+nid]
	if idx == unmatchedHist {
		panic(scigoErrors.NewNodeError("ParallelBuilder.GetInitializedHist", nid, "thread does not own this node in the current pass"))
	}

	var hist Row
	if idx == targetedHist {
		hist = pb.targeted[nid]
	} else {
		pb.buffer.AllocateData(int(idx))
		hist = pb.buffer.Row(int(idx))
	}

	if !pb.wasUsed[tid*pb.nodes+nid] {
		FillZero(hist, 0, len(hist))
		pb.wasUsed[tid*pb.nodes+nid] = true
	}

	return hist
}

// ReduceHist folds every thread's contribution for node nid into the node's
// final row over bins [begin, end). A node untouched by any thread (an empty
// partition on a distributed shard) is explicitly zero-filled rather than
// left stale.
func (pb *ParallelBuilder) ReduceHist(nid, begin, end int) {
	if end <= begin {
		panic(scigoErrors.NewValueError("ParallelBuilder.ReduceHist", "zero-size reduction range"))
	}
	if nid < 0 || nid >= pb.nodes {
		panic(scigoErrors.NewRangeError("ParallelBuilder.ReduceHist", nid, pb.nodes))
	}

	dst := pb.targeted[nid]

	updated := false
	for tid := 0; tid < pb.nthreads; tid++ {
		if !pb.wasUsed[tid*pb.nodes+nid] {
			continue
		}
		updated = true

		idx := pb.tidNidToHist[tid*pb.nodes+nid]
		src := dst
		if idx != targetedHist {
			src = pb.buffer.Row(int(idx))
		}
		if &dst[0] != &src[0] {
			IncrementHist(dst, src, begin, end)
		}
	}
	if !updated {
		FillZero(dst, begin, end)
	}
}

// matchThreadsToNodes records which nodes each thread's contiguous block
// chunk touches. The chunking must mirror the accumulation phase's split:
// ceil(space/nthreads) blocks per thread, in thread-id order.
func (pb *ParallelBuilder) matchThreadsToNodes(space *BlockedSpace2D) {
	spaceSize := space.Size()
	chunkSize := spaceSize / pb.nthreads
	if spaceSize%pb.nthreads != 0 {
		chunkSize++
	}

	pb.threadsToNodes = pb.threadsBuf.get(pb.nthreads * pb.nodes)

	for tid := 0; tid < pb.nthreads; tid++ {
		begin := chunkSize * tid
		end := begin + chunkSize
		if end > spaceSize {
			end = spaceSize
		}

		if begin < spaceSize {
			nidBegin := space.FirstDim(begin)
			nidEnd := space.FirstDim(end - 1)
			if nidEnd >= pb.nodes {
				panic(scigoErrors.NewRangeError("ParallelBuilder.matchThreadsToNodes", nidEnd, pb.nodes))
			}

			for nid := nidBegin; nid <= nidEnd; nid++ {
				pb.threadsToNodes[tid*pb.nodes+nid] = true
			}
		}
	}
}

// allocateAdditionalHistograms registers one scratch row per (thread, node)
// pair beyond the first thread of each node; that first thread writes the
// externally allocated target row instead.
func (pb *ParallelBuilder) allocateAdditionalHistograms() {
	allocated := 0

	for nid := 0; nid < pb.nodes; nid++ {
		threadsForNid := 0
		for tid := 0; tid < pb.nthreads; tid++ {
			if pb.threadsToNodes[tid*pb.nodes+nid] {
				threadsForNid++
			}
		}
		if threadsForNid > 1 {
			allocated += threadsForNid - 1
		}
	}

	for i := 0; i < allocated; i++ {
		pb.buffer.AddHistRow(i)
	}
}

// matchNodeNidPairToHist fills the dense (thread, node) target table: the
// first thread of a node gets the sentinel for direct writes, the rest get
// distinct scratch indices.
func (pb *ParallelBuilder) matchNodeNidPairToHist() {
	pb.tidNidToHist = pb.histBuf.get(pb.nthreads * pb.nodes)
	for i := range pb.tidNidToHist {
		pb.tidNidToHist[i] = unmatchedHist
	}

	scratch := int32(0)
	for nid := 0; nid < pb.nodes; nid++ {
		firstHist := true
		for tid := 0; tid < pb.nthreads; tid++ {
			if !pb.threadsToNodes[tid*pb.nodes+nid] {
				continue
			}
			if firstHist {
				pb.tidNidToHist[tid*pb.nodes+nid] = targetedHist
				firstHist = false
			} else {
				pb.tidNidToHist[tid*pb.nodes+nid] = scratch
				scratch++
			}
		}
	}
}
