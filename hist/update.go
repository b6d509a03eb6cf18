package hist

import (
	"log/slog"
	"time"

	"github.com/YuminosukeSato/gbhist/core/parallel"
	"github.com/YuminosukeSato/gbhist/data"
	scigoLog "github.com/YuminosukeSato/gbhist/pkg/log"
)

// buildHistGrain is the block size the iteration space is sliced into. Small
// enough to balance skewed node sizes across threads, large enough that a
// block amortizes its scheduling overhead.
const buildHistGrain = 256

// BuildHistograms runs one full parallel histogram pass: it partitions the
// (node, row range) space over workers, accumulates each worker's rows into
// its assigned target or scratch row with zero synchronization, joins, and
// reduces scratch rows into the final histograms.
//
// rowSets[i] holds the row indices of the i-th active node and targeted[i]
// its final, already allocated histogram row. The result is bin-for-bin
// identical to a sequential accumulation regardless of worker count.
func BuildHistograms(workers int, gpair []data.GradientPair, rowSets [][]uint32,
	gmat *IndexMatrix, builder *Builder, pb *ParallelBuilder, targeted []Row,
) {
	start := time.Now()
	nodes := len(rowSets)

	space := NewBlockedSpace2D(nodes, func(i int) Range {
		return Range{Begin: 0, End: len(rowSets[i])}
	}, buildHistGrain)

	pb.Init(int(builder.NumBins()))
	pb.Reset(workers, nodes, space, targeted)

	// Accumulate. The chunking of ParallelizeIndexed mirrors the partition
	// recorded by Reset, so every (thread, node) query hits an assigned pair.
	parallel.ParallelizeIndexed(workers, space.Size(), func(tid, begin, end int) {
		for i := begin; i < end; i++ {
			nid := space.FirstDim(i)
			r := space.Block(i)
			hist := pb.GetInitializedHist(tid, nid)
			builder.BuildHist(gpair, rowSets[nid][r.Begin:r.End], gmat, hist)
		}
	})

	// Reduce. Nodes are independent, so the per-node reductions run in
	// parallel too; within one node the thread contributions are summed
	// sequentially.
	nbins := int(builder.NumBins())
	parallel.ParallelizeWorkers(workers, nodes, func(begin, end int) {
		for nid := begin; nid < end; nid++ {
			pb.ReduceHist(nid, 0, nbins)
		}
	})

	slog.Debug("histogram build pass finished",
		scigoLog.OperationKey, "build_hist",
		scigoLog.NodesKey, nodes,
		scigoLog.WorkersKey, workers,
		scigoLog.TotalBinsKey, nbins,
		scigoLog.DurationMsKey, time.Since(start).Milliseconds(),
	)
}
