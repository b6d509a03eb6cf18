// Package hist implements the histogram side of split finding: quantile cut
// boundaries, the width-adaptive compressed bin index, per-node histogram
// storage and the race-free parallel build/reduce machinery.
package hist

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/gbhist/data"
	scigoErrors "github.com/YuminosukeSato/gbhist/pkg/errors"
)

// Cuts is a CSC-style table of histogram cut boundaries. Values holds the
// per-feature boundary lists concatenated; Ptrs (len = features+1,
// Ptrs[0]==0) delimits each feature's slice; MinVals holds a value strictly
// below each feature's minimum. Cut values are upper bounds of bins holding
// approximately equal mass, sorted ascending within each feature.
type Cuts struct {
	Values  []float64
	Ptrs    []uint32
	MinVals []float64
}

// NumFeatures returns the number of feature columns covered by the cuts.
func (c *Cuts) NumFeatures() int {
	if len(c.Ptrs) == 0 {
		return 0
	}
	return len(c.Ptrs) - 1
}

// FeatureBins returns the number of bins of feature fid.
func (c *Cuts) FeatureBins(fid int) uint32 {
	c.checkFeature("Cuts.FeatureBins", fid)
	return c.Ptrs[fid+1] - c.Ptrs[fid]
}

// TotalBins returns the total bin count across all features.
func (c *Cuts) TotalBins() uint32 {
	if len(c.Ptrs) == 0 {
		return 0
	}
	return c.Ptrs[len(c.Ptrs)-1]
}

// SearchBin returns the global bin id of a numerical value for feature fid:
// the index of the first cut strictly greater than value, clipped to the
// feature's last bin when the value exceeds every boundary. The result is
// always inside [Ptrs[fid], Ptrs[fid+1]).
func (c *Cuts) SearchBin(value float64, fid int) uint32 {
	c.checkFeature("Cuts.SearchBin", fid)
	beg := int(c.Ptrs[fid])
	end := int(c.Ptrs[fid+1])
	idx := beg + sort.Search(end-beg, func(i int) bool {
		return c.Values[beg+i] > value
	})
	if idx == end {
		idx--
	}
	return uint32(idx)
}

// SearchBinEntry is SearchBin on a sparse row entry.
func (c *Cuts) SearchBinEntry(e data.Entry) uint32 {
	return c.SearchBin(e.Value, int(e.Index))
}

// SearchCatBin returns the bin of a categorical value for feature fid: the
// exact lower-bound match of the truncated category code among the feature's
// cut values, with the same end-of-range clipping as SearchBin.
func (c *Cuts) SearchCatBin(value float64, fid int) uint32 {
	c.checkFeature("Cuts.SearchCatBin", fid)
	beg := int(c.Ptrs[fid])
	end := int(c.Ptrs[fid+1])
	// Truncate in case the code is not perfectly rounded.
	v := math.Trunc(value)
	idx := beg + sort.Search(end-beg, func(i int) bool {
		return c.Values[beg+i] >= v
	})
	if idx == end {
		idx--
	}
	return uint32(idx)
}

func (c *Cuts) checkFeature(op string, fid int) {
	if fid < 0 || fid+1 >= len(c.Ptrs) {
		panic(scigoErrors.NewRangeError(op, fid, c.NumFeatures()))
	}
}
