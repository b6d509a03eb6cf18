package quantile

import (
	"math"

	scigoErrors "github.com/YuminosukeSato/gbhist/pkg/errors"
)

// minSketchLimit keeps tiny bin budgets from degenerating the summary.
const minSketchLimit = 16

// Sketch maintains a bounded-error weighted quantile summary for one
// feature column. Incoming observations are buffered; when the buffer
// fills, its exact batch summary is folded into a stack of per-level
// summaries, binary-counter style: level l holds the merge of 2^l batches,
// and a carry that collides with an occupied level is combined with it,
// pruned once, and promoted. Every entry therefore passes through at most
// one prune per level, so the total rank error stays proportional to
// nlevels/limit of the seen weight no matter how many batches stream in.
//
// A Sketch is not safe for concurrent use; the container assigns each
// column to exactly one worker.
type Sketch struct {
	limit    int
	queueCap int
	queue    []ValueWeight

	levels []Summary

	batch   Summary
	carry   Summary
	merged  Summary
	current Summary
}

// NewSketch returns a sketch for a column of columnSize observations with a
// per-feature bin budget of maxBins. The per-level prune limit is sized
// against the column so that, at eps = 1/(8*maxBins), nlevels merge levels
// cost at most eps of the total weight in rank error: the smallest limit
// with ceil(nlevels/eps) entries whose level stack can cover the column.
// Columns that fit in the buffer stay exact.
func NewSketch(columnSize, maxBins int) *Sketch {
	if maxBins < 2 {
		panic(scigoErrors.NewValidationError("maxBins", "at least two bins required", maxBins))
	}
	eps := 1.0 / float64(8*maxBins)
	maxn := columnSize
	if maxn < 1 {
		maxn = 1
	}

	limit := 0
	for nlevel := 1; ; nlevel++ {
		limit = int(math.Ceil(float64(nlevel)/eps)) + 1
		if limit > maxn {
			limit = maxn
		}
		if limit<<uint(nlevel) >= maxn {
			break
		}
	}
	if limit < minSketchLimit {
		limit = minSketchLimit
	}

	queueCap := 2 * limit
	if columnSize > 0 && columnSize < queueCap {
		queueCap = columnSize
	}
	return &Sketch{
		limit:    limit,
		queueCap: queueCap,
		queue:    make([]ValueWeight, 0, queueCap),
	}
}

// Push adds one weighted observation.
func (s *Sketch) Push(value, weight float64) {
	if weight <= 0 {
		return
	}
	s.queue = append(s.queue, ValueWeight{Value: value, Weight: weight})
	if len(s.queue) >= s.queueCap {
		s.flush()
	}
}

// GetSummary folds any buffered observations and returns the merge of all
// levels. The returned summary stays owned by the sketch.
func (s *Sketch) GetSummary() *Summary {
	s.flush()
	s.current.Entries = s.current.Entries[:0]
	for i := range s.levels {
		if len(s.levels[i].Entries) == 0 {
			continue
		}
		s.merged.SetCombine(&s.current, &s.levels[i])
		s.current.CopyFrom(&s.merged)
	}
	return &s.current
}

func (s *Sketch) flush() {
	if len(s.queue) == 0 {
		return
	}
	s.batch.SetSorted(s.queue)
	s.queue = s.queue[:0]

	s.carry.SetPrune(&s.batch, s.limit)
	for l := 0; ; l++ {
		if l == len(s.levels) {
			s.levels = append(s.levels, Summary{})
		}
		if len(s.levels[l].Entries) == 0 {
			s.levels[l].CopyFrom(&s.carry)
			return
		}
		s.merged.SetCombine(&s.carry, &s.levels[l])
		s.carry.SetPrune(&s.merged, s.limit)
		s.levels[l].Entries = s.levels[l].Entries[:0]
	}
}
