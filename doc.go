// Package gbhist implements the histogram side of gradient-boosted tree
// training: weighted quantile sketching of feature columns into bin
// boundaries, a width-adaptive compressed bin index, and race-free parallel
// accumulation of per-node gradient histograms.
//
// The main entry points live in the subpackages:
//
//   - quantile: streaming weighted quantile summaries and cut finalization
//   - hist: cuts, the compressed bin index, per-node histogram storage and
//     the parallel build/reduce machinery
//   - data: the sparse dataset abstraction the two packages consume
//
// A typical round trip:
//
//	cuts := quantile.SketchDataset(ds, maxBins, nil, workers)
//	gmat := hist.BuildIndexMatrix(ds, cuts, workers)
//	store := &hist.Collection{}
//	store.Init(cuts.TotalBins())
//	// register active nodes, then run hist.BuildHistograms per iteration.
//
// Split-gain evaluation, tree growing and gradient computation are out of
// scope; callers feed precomputed gradient pairs in and read summed
// histograms out.
package gbhist
