package hist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/YuminosukeSato/gbhist/data"
)

func TestRowOps(t *testing.T) {
	mk := func(vals ...float64) Row {
		r := make(Row, len(vals))
		for i, v := range vals {
			r[i] = data.GradientPair{Grad: v, Hess: v / 2}
		}
		return r
	}

	t.Run("FillZero over a subrange", func(t *testing.T) {
		r := mk(1, 2, 3, 4)
		FillZero(r, 1, 3)
		assert.Equal(t, mk(1, 0, 0, 4), r)
	})

	t.Run("IncrementHist", func(t *testing.T) {
		dst := mk(1, 1, 1)
		IncrementHist(dst, mk(1, 2, 3), 0, 3)
		assert.Equal(t, mk(2, 3, 4), dst)
	})

	t.Run("IncrementHist on a subrange", func(t *testing.T) {
		dst := mk(1, 1, 1)
		IncrementHist(dst, mk(1, 2, 3), 2, 3)
		assert.Equal(t, mk(1, 1, 4), dst)
	})

	t.Run("CopyHist", func(t *testing.T) {
		dst := mk(9, 9, 9)
		CopyHist(dst, mk(1, 2, 3), 0, 2)
		assert.Equal(t, mk(1, 2, 9), dst)
	})

	t.Run("SubtractHist", func(t *testing.T) {
		dst := make(Row, 3)
		SubtractHist(dst, mk(5, 5, 5), mk(1, 2, 3), 0, 3)
		assert.Equal(t, mk(4, 3, 2), dst)
	})

	t.Run("mismatched lengths are rejected", func(t *testing.T) {
		assert.Panics(t, func() { IncrementHist(mk(1, 2), mk(1), 0, 1) })
		assert.Panics(t, func() { CopyHist(mk(1), mk(1, 2), 0, 1) })
		assert.Panics(t, func() { SubtractHist(mk(1, 2), mk(1, 2), mk(1), 0, 1) })
	})
}
