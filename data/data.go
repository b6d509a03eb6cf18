// Package data holds the dataset abstraction consumed by the quantile and
// hist packages: sparse row batches of (feature index, value) entries,
// per-feature type tags, optional query-group boundaries for ranking data,
// and the gradient pair aggregated into histograms.
package data

import (
	"math"

	"gonum.org/v1/gonum/mat"

	scigoErrors "github.com/YuminosukeSato/gbhist/pkg/errors"
)

// FeatureType tags a column as numerical or categorical. Numerical columns
// get approximate quantile boundaries, categorical columns get one bin per
// distinct category code.
type FeatureType uint8

const (
	// Numerical is the default feature type.
	Numerical FeatureType = iota
	// Categorical marks a column whose values are category codes.
	Categorical
)

// Entry is one cell of a sparse row: the feature index and its raw value.
type Entry struct {
	Index uint32
	Value float64
}

// IsValid reports whether the entry carries a usable value. NaN encodes a
// missing value and is skipped by sketching and quantization.
func (e Entry) IsValid() bool {
	return !math.IsNaN(e.Value)
}

// GradientPair is the (gradient, hessian) statistic for one training row,
// the unit of aggregation in histograms.
type GradientPair struct {
	Grad float64
	Hess float64
}

// Add accumulates another pair into p.
func (p *GradientPair) Add(grad, hess float64) {
	p.Grad += grad
	p.Hess += hess
}

// AddPair accumulates q into p.
func (p *GradientPair) AddPair(q GradientPair) {
	p.Grad += q.Grad
	p.Hess += q.Hess
}

// SparsePage is one CSR batch of rows. Offset has length Rows()+1 and
// delimits each row's entries in Data. Base is the dataset-global index of
// the first row in the page.
type SparsePage struct {
	Offset []int
	Data   []Entry
	Base   int
}

// NewSparsePage returns an empty page starting at global row index base.
func NewSparsePage(base int) *SparsePage {
	return &SparsePage{Offset: []int{0}, Base: base}
}

// Rows returns the number of rows in the page.
func (p *SparsePage) Rows() int {
	return len(p.Offset) - 1
}

// Row returns the entries of the i-th row of the page.
func (p *SparsePage) Row(i int) []Entry {
	return p.Data[p.Offset[i]:p.Offset[i+1]]
}

// Push appends one row to the page.
func (p *SparsePage) Push(row []Entry) {
	p.Data = append(p.Data, row...)
	p.Offset = append(p.Offset, len(p.Data))
}

// Dataset is an in-memory batched sparse dataset. The quantile sketch and
// the quantizer treat it as immutable once built.
type Dataset struct {
	// Types holds one tag per feature; nil means all numerical.
	Types []FeatureType
	// GroupPtr delimits query groups for ranking data (len = groups+1,
	// GroupPtr[0] == 0). Nil for plain row data.
	GroupPtr []int
	// GroupWeights holds one weight per group; used for weighted sketching
	// when per-row hessian weights are absent. Nil means unit weights.
	GroupWeights []float64

	numCol int
	numRow int
	pages  []*SparsePage
}

// New returns an empty dataset with the given number of feature columns.
func New(numCol int) *Dataset {
	return &Dataset{numCol: numCol}
}

// NumCol returns the number of feature columns.
func (d *Dataset) NumCol() int { return d.numCol }

// NumRow returns the total number of rows across all batches.
func (d *Dataset) NumRow() int { return d.numRow }

// Batches returns the dataset's pages in row order.
func (d *Dataset) Batches() []*SparsePage { return d.pages }

// AddBatch appends a page. The page's Base must equal the current row count;
// batches arrive in order and never overlap.
func (d *Dataset) AddBatch(p *SparsePage) {
	if p.Base != d.numRow {
		panic(scigoErrors.NewValidationError("SparsePage.Base", "batches must be contiguous", p.Base))
	}
	d.pages = append(d.pages, p)
	d.numRow += p.Rows()
}

// FeatureType returns the tag for column fid, Numerical when no tags are set.
func (d *Dataset) FeatureType(fid int) FeatureType {
	if d.Types == nil {
		return Numerical
	}
	return d.Types[fid]
}

// UseGroup reports whether group-aware weighting applies: group boundaries
// are present together with per-group weights.
func (d *Dataset) UseGroup() bool {
	return len(d.GroupPtr) > 1 && len(d.GroupWeights) > 0
}

// IsDense reports whether every row stores every column, the precondition
// for the compact offset-table encoding of the bin index.
func (d *Dataset) IsDense() bool {
	for _, p := range d.pages {
		for i := 0; i < p.Rows(); i++ {
			if p.Offset[i+1]-p.Offset[i] != d.numCol {
				return false
			}
		}
	}
	return true
}

// FromRows builds a single-batch dataset from per-row entry slices.
func FromRows(rows [][]Entry, numCol int) *Dataset {
	d := New(numCol)
	page := NewSparsePage(0)
	for _, r := range rows {
		page.Push(r)
	}
	d.AddBatch(page)
	return d
}

// FromMatrix builds a dataset from a dense gonum matrix. NaN cells are
// treated as missing and dropped, so the result may be sparse.
func FromMatrix(x *mat.Dense) *Dataset {
	rows, cols := x.Dims()
	d := New(cols)
	page := NewSparsePage(0)
	row := make([]Entry, 0, cols)
	for i := 0; i < rows; i++ {
		row = row[:0]
		for j := 0; j < cols; j++ {
			v := x.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			row = append(row, Entry{Index: uint32(j), Value: v})
		}
		page.Push(row)
	}
	d.AddBatch(page)
	return d
}
