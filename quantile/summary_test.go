package quantile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exactSummary(values ...float64) *Summary {
	batch := make([]ValueWeight, len(values))
	for i, v := range values {
		batch[i] = ValueWeight{Value: v, Weight: 1}
	}
	var s Summary
	s.SetSorted(batch)
	return &s
}

func TestSummarySetSorted(t *testing.T) {
	var s Summary
	s.SetSorted([]ValueWeight{
		{Value: 3, Weight: 1},
		{Value: 1, Weight: 1},
		{Value: 2, Weight: 2},
		{Value: 2, Weight: 1},
	})

	require.Len(t, s.Entries, 3, "duplicates folded")
	assert.Equal(t, Entry{RMin: 0, RMax: 1, Weight: 1, Value: 1}, s.Entries[0])
	assert.Equal(t, Entry{RMin: 1, RMax: 4, Weight: 3, Value: 2}, s.Entries[1])
	assert.Equal(t, Entry{RMin: 4, RMax: 5, Weight: 1, Value: 3}, s.Entries[2])

	assert.Equal(t, 5.0, s.TotalWeight())
	assert.Equal(t, 0.0, s.MaxRankError(), "batch summaries are exact")

	s.SetSorted(nil)
	assert.Empty(t, s.Entries)
	assert.Equal(t, 0.0, s.TotalWeight())
}

func TestSummarySetCombine(t *testing.T) {
	t.Run("merging exact summaries stays exact", func(t *testing.T) {
		a := exactSummary(1, 3)
		b := exactSummary(2, 3)

		var m Summary
		m.SetCombine(a, b)

		// Same entries as summarizing {1, 2, 3, 3} in one batch.
		assert.Equal(t, exactSummary(1, 2, 3, 3).Entries, m.Entries)
		assert.Equal(t, 0.0, m.MaxRankError())
	})

	t.Run("empty operands", func(t *testing.T) {
		a := exactSummary(1, 2)
		var empty, m Summary

		m.SetCombine(a, &empty)
		assert.Equal(t, a.Entries, m.Entries)
		m.SetCombine(&empty, a)
		assert.Equal(t, a.Entries, m.Entries)
	})

	t.Run("disjoint ranges concatenate", func(t *testing.T) {
		var m Summary
		m.SetCombine(exactSummary(1, 2), exactSummary(10, 20))
		assert.Equal(t, exactSummary(1, 2, 10, 20).Entries, m.Entries)
	})
}

func TestSummarySetPrune(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}
	src := exactSummary(values...)

	t.Run("small summaries are copied verbatim", func(t *testing.T) {
		var p Summary
		p.SetPrune(src, 200)
		assert.Equal(t, src.Entries, p.Entries)
	})

	t.Run("pruning bounds size and rank error", func(t *testing.T) {
		const maxSize = 11
		var p Summary
		p.SetPrune(src, maxSize)

		require.LessOrEqual(t, len(p.Entries), maxSize)
		assert.Equal(t, src.Entries[0], p.Entries[0], "minimum kept")
		assert.Equal(t, src.Entries[len(src.Entries)-1], p.Entries[len(p.Entries)-1], "maximum kept")
		assert.Equal(t, src.TotalWeight(), p.TotalWeight())
		assert.LessOrEqual(t, p.MaxRankError(), 2*src.TotalWeight()/float64(maxSize-1))
	})

	t.Run("entries stay strictly increasing", func(t *testing.T) {
		var p Summary
		p.SetPrune(src, 7)
		for i := 1; i < len(p.Entries); i++ {
			assert.Greater(t, p.Entries[i].Value, p.Entries[i-1].Value)
		}
	})
}

func TestSummaryQuery(t *testing.T) {
	s := exactSummary(10, 20, 30)

	assert.Equal(t, 0.0, s.Query(5))
	assert.Equal(t, 1.5, s.Query(20), "rank midpoint of a present value")
	assert.Equal(t, 2.0, s.Query(25), "between two entries")
	assert.Equal(t, 3.0, s.Query(35), "past the maximum")
}

func TestSketchSmallColumnStaysExact(t *testing.T) {
	s := NewSketch(100, 16)
	for i := 100; i > 0; i-- {
		s.Push(float64(i), 1)
	}
	sum := s.GetSummary()
	assert.Len(t, sum.Entries, 100)
	assert.Equal(t, 0.0, sum.MaxRankError())
	assert.Equal(t, 100.0, sum.TotalWeight())
}

func TestSketchBoundedError(t *testing.T) {
	const n = 10000
	s := NewSketch(n, 16)
	// Shuffle-free adversarial order: interleave low and high halves.
	for i := 0; i < n/2; i++ {
		s.Push(float64(i), 1)
		s.Push(float64(n-1-i), 1)
	}
	sum := s.GetSummary()

	assert.Equal(t, float64(n), sum.TotalWeight())
	// Errors do not compound across batches: every entry passes at most one
	// prune per merge level, so the total rank error stays under one bin's
	// mass at maxBins=16 however many buffer folds the stream takes.
	assert.Less(t, sum.MaxRankError(), float64(n)/16)

	// Query ranks track true ranks for uniform data.
	for _, v := range []float64{1000, 5000, 9000} {
		assert.InDelta(t, v, sum.Query(v), float64(n)/10)
	}
}

func TestSketchErrorDoesNotCompoundAcrossBatches(t *testing.T) {
	// A long stream forces many buffer folds; the merge levels must keep the
	// error near one prune's worth, not one per fold.
	const n = 50000
	s := NewSketch(n, 8)
	for i := 0; i < n; i++ {
		s.Push(float64(i%1000), 1)
	}
	sum := s.GetSummary()
	assert.Equal(t, float64(n), sum.TotalWeight())
	assert.Less(t, sum.MaxRankError(), float64(n)/8)
}

func TestSketchSkipsNonPositiveWeights(t *testing.T) {
	s := NewSketch(10, 4)
	s.Push(1, 0)
	s.Push(2, -1)
	s.Push(3, 2)
	sum := s.GetSummary()
	require.Len(t, sum.Entries, 1)
	assert.Equal(t, 3.0, sum.Entries[0].Value)
	assert.Equal(t, 2.0, sum.TotalWeight())
}

func TestNewSketchRejectsTinyBudget(t *testing.T) {
	assert.Panics(t, func() { NewSketch(10, 1) })
}
