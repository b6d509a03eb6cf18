package hist

import (
	"github.com/YuminosukeSato/gbhist/data"
	scigoErrors "github.com/YuminosukeSato/gbhist/pkg/errors"
)

// Builder scatter-adds gradient pairs for one node's row subset into one
// histogram row. It is purely additive: zeroing the destination is the
// caller's responsibility (the parallel builder lazily zeroes each row on
// first touch in a pass).
type Builder struct {
	// nbins is the total bin count across all features.
	nbins uint32
}

// NewBuilder returns a row-level accumulator for histograms of nbins bins.
// A zero bin count is a contract violation.
func NewBuilder(nbins uint32) *Builder {
	if nbins == 0 {
		panic(scigoErrors.NewValidationError("nbins", "histogram bin count must be positive", nbins))
	}
	return &Builder{nbins: nbins}
}

// NumBins returns the bin count the builder was created with.
func (b *Builder) NumBins() uint32 { return b.nbins }

// BuildHist adds the gradient pairs of the given rows into hist, one
// scatter-add per stored bin id. Dense matrices take a fixed-stride fast
// path with no per-entry extent lookups; sparse matrices walk each row's
// extent, which naturally skips missing features.
func (b *Builder) BuildHist(gpair []data.GradientPair, rows []uint32, gmat *IndexMatrix, hist Row) {
	if len(hist) != int(b.nbins) {
		panic(scigoErrors.NewDimensionError("Builder.BuildHist", int(b.nbins), len(hist)))
	}
	if gmat.IsDense() {
		b.buildHistDense(gpair, rows, gmat, hist)
	} else {
		b.buildHistSparse(gpair, rows, gmat, hist)
	}
}

func (b *Builder) buildHistDense(gpair []data.GradientPair, rows []uint32, gmat *IndexMatrix, hist Row) {
	stride := gmat.Cols()
	for _, rid := range rows {
		base := int(rid) * stride
		g := gpair[rid]
		for j := 0; j < stride; j++ {
			hist[gmat.Index.At(base+j)].AddPair(g)
		}
	}
}

func (b *Builder) buildHistSparse(gpair []data.GradientPair, rows []uint32, gmat *IndexMatrix, hist Row) {
	for _, rid := range rows {
		begin, end := gmat.RowRange(int(rid))
		g := gpair[rid]
		for pos := begin; pos < end; pos++ {
			hist[gmat.Index.At(pos)].AddPair(g)
		}
	}
}
