package log

// Standard attribute keys used across the histogram core. A hierarchical
// naming convention ("data.rows", "hist.bins") keeps logs filterable when
// several passes interleave.

// Data shape attributes.
const (
	// RowsKey is the number of rows in the dataset or row subset.
	RowsKey = "data.rows"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// BatchesKey is the number of sparse pages streamed.
	BatchesKey = "data.batches"

	// GroupsKey is the number of query groups in ranking data.
	GroupsKey = "data.groups"
)

// Sketch and histogram attributes.
const (
	// MaxBinsKey is the configured per-feature bin budget.
	MaxBinsKey = "sketch.max_bins"

	// TotalBinsKey is the total bin count across all features.
	TotalBinsKey = "hist.bins"

	// NodesKey is the number of active tree nodes in a build pass.
	NodesKey = "hist.nodes"

	// ScratchRowsKey is the number of per-thread scratch histograms a pass
	// allocated beyond the targeted rows.
	ScratchRowsKey = "hist.scratch_rows"
)

// Execution attributes.
const (
	// WorkersKey is the worker goroutine count of a parallel pass.
	WorkersKey = "exec.workers"

	// OperationKey names the operation being performed, e.g. "sketch",
	// "quantize", "build_hist".
	OperationKey = "exec.operation"

	// DurationMsKey is the wall time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
