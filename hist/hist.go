package hist

import (
	"github.com/YuminosukeSato/gbhist/data"
	scigoErrors "github.com/YuminosukeSato/gbhist/pkg/errors"
)

// Row is a dense histogram for one tree node: one summed gradient pair per
// global bin. A Row is always a view borrowed from a backing allocation
// (Collection or the parallel builder's scratch pool), never owned.
type Row []data.GradientPair

// FillZero zeroes bins [begin, end) of hist.
func FillZero(hist Row, begin, end int) {
	clear(hist[begin:end])
}

// IncrementHist adds bins [begin, end) of add into dst. The operands must be
// rows of the same histogram layout.
func IncrementHist(dst, add Row, begin, end int) {
	if len(dst) != len(add) {
		panic(scigoErrors.NewDimensionError("hist.IncrementHist", len(dst), len(add)))
	}
	for i := begin; i < end; i++ {
		dst[i].AddPair(add[i])
	}
}

// CopyHist copies bins [begin, end) of src into dst.
func CopyHist(dst, src Row, begin, end int) {
	if len(dst) != len(src) {
		panic(scigoErrors.NewDimensionError("hist.CopyHist", len(dst), len(src)))
	}
	copy(dst[begin:end], src[begin:end])
}

// SubtractHist sets bins [begin, end) of dst to src1 - src2. Consumers use
// this for the sibling trick: a child's histogram is the parent's minus the
// other child's.
func SubtractHist(dst, src1, src2 Row, begin, end int) {
	if len(src1) != len(src2) {
		panic(scigoErrors.NewDimensionError("hist.SubtractHist", len(src1), len(src2)))
	}
	for i := begin; i < end; i++ {
		dst[i].Grad = src1[i].Grad - src2[i].Grad
		dst[i].Hess = src1[i].Hess - src2[i].Hess
	}
}
