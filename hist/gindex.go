package hist

import (
	"github.com/YuminosukeSato/gbhist/core/parallel"
	"github.com/YuminosukeSato/gbhist/data"
)

// IndexMatrix is the quantized dataset: for every row entry, the global bin
// id its value falls into under Cut. Dense datasets (every row stores every
// column) use the compact encoding: intra-feature bin ids at the narrowest
// width that fits the largest per-feature bin count, reconstructed through a
// cyclic per-feature offset table. Sparse datasets store global ids at 32
// bits with per-row extents in RowPtr.
type IndexMatrix struct {
	Cut *Cuts

	// Index holds the packed bin ids, in row order.
	Index Index

	// RowPtr delimits each row's ids in Index (len = rows+1). For dense
	// matrices the stride is constant and equal to the column count.
	RowPtr []int

	nrows int
	ncols int
	dense bool
}

// Rows returns the number of quantized rows.
func (m *IndexMatrix) Rows() int { return m.nrows }

// Cols returns the number of feature columns.
func (m *IndexMatrix) Cols() int { return m.ncols }

// IsDense reports whether the matrix uses the compact dense encoding.
func (m *IndexMatrix) IsDense() bool { return m.dense }

// RowRange returns the [begin, end) extent of row r in Index.
func (m *IndexMatrix) RowRange(r int) (int, int) {
	return m.RowPtr[r], m.RowPtr[r+1]
}

// BuildIndexMatrix quantizes a dataset against cut boundaries using the
// given number of workers. Rows are processed in parallel; each row writes a
// disjoint slice of the index, so no synchronization is needed.
//
// Row entries must be sorted by feature index (the data package builders
// guarantee this); the dense encoding relies on slot position to recover the
// feature.
func BuildIndexMatrix(ds *data.Dataset, cuts *Cuts, workers int) *IndexMatrix {
	m := &IndexMatrix{
		Cut:   cuts,
		nrows: ds.NumRow(),
		ncols: ds.NumCol(),
	}

	// Missing values (NaN entries) are dropped, so row extents count valid
	// entries only.
	m.RowPtr = make([]int, 1, m.nrows+1)
	for _, page := range ds.Batches() {
		for i := 0; i < page.Rows(); i++ {
			valid := 0
			for _, e := range page.Row(i) {
				if e.IsValid() {
					valid++
				}
			}
			m.RowPtr = append(m.RowPtr, m.RowPtr[len(m.RowPtr)-1]+valid)
		}
	}
	totalEntries := m.RowPtr[len(m.RowPtr)-1]
	m.dense = totalEntries == m.nrows*m.ncols

	if m.dense {
		// Store intra-feature ids; the offset table restores global ids.
		var maxLocal uint32
		for fid := 0; fid < m.ncols; fid++ {
			if n := cuts.FeatureBins(fid); n > maxLocal {
				maxLocal = n
			}
		}
		m.Index.SetBinTypeSize(BinTypeSizeFor(maxLocal))
		m.Index.Resize(totalEntries * int(m.Index.BinTypeSize()))
		m.Index.ResizeOffset(m.ncols)
		copy(m.Index.Offset(), cuts.Ptrs[:m.ncols])
	} else {
		m.Index.SetBinTypeSize(Uint32BinsTypeSize)
		m.Index.Resize(totalEntries * int(Uint32BinsTypeSize))
	}

	for _, page := range ds.Batches() {
		p := page
		parallel.ParallelizeWorkers(workers, p.Rows(), func(start, end int) {
			for i := start; i < end; i++ {
				pos := m.RowPtr[p.Base+i]
				for _, e := range p.Row(i) {
					if !e.IsValid() {
						continue
					}
					fid := int(e.Index)
					var bin uint32
					if ds.FeatureType(fid) == data.Categorical {
						bin = cuts.SearchCatBin(e.Value, fid)
					} else {
						bin = cuts.SearchBin(e.Value, fid)
					}
					if m.dense {
						m.Index.SetAt(pos, bin-cuts.Ptrs[fid])
					} else {
						m.Index.SetAt(pos, bin)
					}
					pos++
				}
			}
		})
	}
	return m
}
