package quantile

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gbhist/core/parallel"
	"github.com/YuminosukeSato/gbhist/data"
	"github.com/YuminosukeSato/gbhist/hist"
	scigoErrors "github.com/YuminosukeSato/gbhist/pkg/errors"
	scigoLog "github.com/YuminosukeSato/gbhist/pkg/log"
)

// cutEps pads the synthetic boundaries beyond a feature's observed extremes.
const cutEps = 1e-5

// Container builds per-feature quantile sketches from dataset batches and
// finalizes them into cut boundaries. Parallelism is by column: each worker
// owns a contiguous column range, so sketches need no locking.
type Container struct {
	sketches    []*Sketch
	categories  []map[float64]struct{}
	columnSizes []int
	maxBins     int
	types       []data.FeatureType
	useGroup    bool
	workers     int
}

// NewContainer returns a sketch container. columnSizes holds the number of
// non-missing entries per column (it sizes each column's buffer); types may
// be nil for all-numerical data; useGroup selects per-group weighting for
// ranking-style datasets.
func NewContainer(columnSizes []int, maxBins int, types []data.FeatureType, useGroup bool, workers int) *Container {
	if maxBins < 2 {
		panic(scigoErrors.NewValidationError("maxBins", "at least two bins required", maxBins))
	}
	if workers < 1 {
		workers = 1
	}
	c := &Container{
		sketches:    make([]*Sketch, len(columnSizes)),
		categories:  make([]map[float64]struct{}, len(columnSizes)),
		columnSizes: columnSizes,
		maxBins:     maxBins,
		types:       types,
		useGroup:    useGroup,
		workers:     workers,
	}
	for fid := range c.sketches {
		if c.featureType(fid) == data.Categorical {
			c.categories[fid] = make(map[float64]struct{})
		} else {
			c.sketches[fid] = NewSketch(columnSizes[fid], maxBins)
		}
	}
	return c
}

func (c *Container) featureType(fid int) data.FeatureType {
	if c.types == nil {
		return data.Numerical
	}
	return c.types[fid]
}

// PushPage streams one batch into the per-column sketches. hessian, when
// non-empty, supplies per-row weights (indexed by global row id); otherwise
// group weights apply for grouped data and unit weights for plain data.
func (c *Container) PushPage(page *data.SparsePage, ds *data.Dataset, hessian []float64) {
	ncol := len(c.sketches)
	parallel.ParallelizeWorkers(c.workers, ncol, func(cbeg, cend int) {
		groupHint := 0
		for i := 0; i < page.Rows(); i++ {
			rid := page.Base + i
			w := 1.0
			switch {
			case len(hessian) > 0:
				w = hessian[rid]
			case c.useGroup:
				groupHint = groupOf(ds.GroupPtr, rid, groupHint)
				w = ds.GroupWeights[groupHint]
			}
			for _, e := range page.Row(i) {
				fid := int(e.Index)
				if fid < cbeg || fid >= cend || !e.IsValid() {
					continue
				}
				if c.featureType(fid) == data.Categorical {
					c.categories[fid][math.Trunc(e.Value)] = struct{}{}
				} else {
					c.sketches[fid].Push(e.Value, w)
				}
			}
		}
	})
}

// groupOf advances hint to the query group containing row rid. Rows are
// scanned in ascending order, so the hint only moves forward.
func groupOf(groupPtr []int, rid, hint int) int {
	for hint+1 < len(groupPtr) && rid >= groupPtr[hint+1] {
		hint++
	}
	return hint
}

// MakeCuts finalizes every column's sketch into the Cuts structure:
// approximately equal-mass boundaries for numerical columns, one exact cut
// per distinct category for categorical columns.
func (c *Container) MakeCuts(cuts *hist.Cuts) {
	ncol := len(c.sketches)
	featCuts := make([][]float64, ncol)
	minVals := make([]float64, ncol)

	parallel.ParallelizeWorkers(c.workers, ncol, func(cbeg, cend int) {
		for fid := cbeg; fid < cend; fid++ {
			if c.featureType(fid) == data.Categorical {
				featCuts[fid] = c.categoryCuts(fid)
			} else {
				featCuts[fid], minVals[fid] = c.numericCuts(fid)
			}
		}
	})

	cuts.Ptrs = append(cuts.Ptrs[:0], 0)
	cuts.Values = cuts.Values[:0]
	cuts.MinVals = append(cuts.MinVals[:0], minVals...)
	for fid := 0; fid < ncol; fid++ {
		cuts.Values = append(cuts.Values, featCuts[fid]...)
		cuts.Ptrs = append(cuts.Ptrs, cuts.Ptrs[fid]+uint32(len(featCuts[fid])))
	}
}

// numericCuts selects at most maxBins approximately equal-mass boundaries
// from the column's summary. Duplicate boundary candidates are collapsed,
// so columns with few distinct values get one cut per value. The last cut
// is padded past the observed maximum and serves as the clipping bin.
func (c *Container) numericCuts(fid int) ([]float64, float64) {
	summary := c.sketches[fid].GetSummary()

	var final Summary
	final.SetPrune(summary, c.maxBins+1)
	e := final.Entries

	minVal := 0.0
	var out []float64
	if len(e) > 0 {
		minVal = e[0].Value - math.Abs(e[0].Value) - cutEps
	}

	required := len(e)
	if required > c.maxBins {
		required = c.maxBins
	}
	for i := 1; i < required; i++ {
		cpt := e[i].Value
		if len(out) == 0 || cpt > out[len(out)-1] {
			out = append(out, cpt)
		}
	}

	// Synthetic upper boundary beyond the maximum, so every value binarizes.
	cpt := minVal
	if len(e) > 0 {
		cpt = e[len(e)-1].Value
	}
	out = append(out, cpt+math.Abs(cpt)+cutEps)
	return out, minVal
}

// categoryCuts returns the sorted distinct category codes as exact cuts.
func (c *Container) categoryCuts(fid int) []float64 {
	if len(c.categories[fid]) == 0 {
		return []float64{cutEps}
	}
	out := make([]float64, 0, len(c.categories[fid]))
	for v := range c.categories[fid] {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// CalcColumnSizes counts the non-missing entries of every column across the
// dataset's batches, in parallel over rows with per-worker partial counts.
func CalcColumnSizes(ds *data.Dataset, workers int) []int {
	if workers < 1 {
		workers = 1
	}
	total := make([]int, ds.NumCol())
	for _, page := range ds.Batches() {
		partials := make([][]int, workers)
		parallel.ParallelizeIndexed(workers, page.Rows(), func(w, start, end int) {
			counts := make([]int, ds.NumCol())
			for i := start; i < end; i++ {
				for _, e := range page.Row(i) {
					if e.IsValid() {
						counts[e.Index]++
					}
				}
			}
			partials[w] = counts
		})
		for _, counts := range partials {
			for fid, n := range counts {
				total[fid] += n
			}
		}
	}
	return total
}

// SketchDataset streams the whole dataset through a container and returns
// the finalized cuts. hessian, when non-empty, supplies weighted quantiles
// and must be finite.
func SketchDataset(ds *data.Dataset, maxBins int, hessian []float64, workers int) *hist.Cuts {
	start := time.Now()
	if err := scigoErrors.CheckFinite("quantile.SketchDataset", hessian); err != nil {
		panic(err)
	}

	columnSizes := CalcColumnSizes(ds, workers)
	c := NewContainer(columnSizes, maxBins, ds.Types, ds.UseGroup(), workers)
	for _, page := range ds.Batches() {
		c.PushPage(page, ds, hessian)
	}

	cuts := &hist.Cuts{}
	c.MakeCuts(cuts)

	slog.Debug("quantile sketch finished",
		scigoLog.OperationKey, "sketch",
		scigoLog.RowsKey, ds.NumRow(),
		scigoLog.FeaturesKey, ds.NumCol(),
		scigoLog.MaxBinsKey, maxBins,
		scigoLog.WorkersKey, workers,
		scigoLog.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return cuts
}

// SketchMatrix is SketchDataset over a dense gonum matrix, the convenience
// entry point mirroring matrix-based training APIs. NaN cells count as
// missing.
func SketchMatrix(x *mat.Dense, maxBins, workers int) *hist.Cuts {
	return SketchDataset(data.FromMatrix(x), maxBins, nil, workers)
}
