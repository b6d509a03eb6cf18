package data

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSparsePage(t *testing.T) {
	t.Run("push and row access", func(t *testing.T) {
		p := NewSparsePage(0)
		p.Push([]Entry{{Index: 0, Value: 1.5}, {Index: 2, Value: -3}})
		p.Push(nil)
		p.Push([]Entry{{Index: 1, Value: 7}})

		assert.Equal(t, 3, p.Rows())
		assert.Len(t, p.Row(0), 2)
		assert.Empty(t, p.Row(1))
		assert.Equal(t, Entry{Index: 1, Value: 7}, p.Row(2)[0])
	})
}

func TestDataset(t *testing.T) {
	t.Run("batches must be contiguous", func(t *testing.T) {
		d := New(2)
		p := NewSparsePage(5)
		p.Push([]Entry{{Index: 0, Value: 1}})
		assert.Panics(t, func() { d.AddBatch(p) })
	})

	t.Run("row count across batches", func(t *testing.T) {
		d := New(1)
		p1 := NewSparsePage(0)
		p1.Push([]Entry{{Index: 0, Value: 1}})
		p1.Push([]Entry{{Index: 0, Value: 2}})
		d.AddBatch(p1)

		p2 := NewSparsePage(2)
		p2.Push([]Entry{{Index: 0, Value: 3}})
		d.AddBatch(p2)

		assert.Equal(t, 3, d.NumRow())
		assert.Len(t, d.Batches(), 2)
	})

	t.Run("density check", func(t *testing.T) {
		dense := FromRows([][]Entry{
			{{Index: 0, Value: 1}, {Index: 1, Value: 2}},
			{{Index: 0, Value: 3}, {Index: 1, Value: 4}},
		}, 2)
		assert.True(t, dense.IsDense())

		sparse := FromRows([][]Entry{
			{{Index: 0, Value: 1}},
			{{Index: 0, Value: 3}, {Index: 1, Value: 4}},
		}, 2)
		assert.False(t, sparse.IsDense())
	})

	t.Run("feature type defaults to numerical", func(t *testing.T) {
		d := New(2)
		assert.Equal(t, Numerical, d.FeatureType(1))
		d.Types = []FeatureType{Numerical, Categorical}
		assert.Equal(t, Categorical, d.FeatureType(1))
	})
}

func TestFromMatrix(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 2,
		math.NaN(), 4,
		5, 6,
	})
	d := FromMatrix(x)

	require.Equal(t, 3, d.NumRow())
	require.Equal(t, 2, d.NumCol())
	assert.False(t, d.IsDense(), "NaN cell should be dropped")

	page := d.Batches()[0]
	assert.Len(t, page.Row(1), 1)
	assert.Equal(t, Entry{Index: 1, Value: 4}, page.Row(1)[0])
}

func TestGradientPair(t *testing.T) {
	var p GradientPair
	p.Add(1, 0.5)
	p.AddPair(GradientPair{Grad: 2, Hess: 0.5})
	assert.Equal(t, GradientPair{Grad: 3, Hess: 1}, p)
}

func TestEntryIsValid(t *testing.T) {
	assert.True(t, Entry{Value: 0}.IsValid())
	assert.False(t, Entry{Value: math.NaN()}.IsValid())
}
