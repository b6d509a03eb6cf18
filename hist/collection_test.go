package hist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gbhist/data"
)

func TestCollectionRegistration(t *testing.T) {
	var c Collection
	c.Init(4)

	t.Run("RowExists flips on registration", func(t *testing.T) {
		assert.False(t, c.RowExists(2))
		c.AddHistRow(2)
		assert.True(t, c.RowExists(2))
	})

	t.Run("re-registering is rejected", func(t *testing.T) {
		assert.Panics(t, func() { c.AddHistRow(2) })
	})

	t.Run("out of range ids are a plain false", func(t *testing.T) {
		assert.False(t, c.RowExists(-1))
		assert.False(t, c.RowExists(100))
	})

	t.Run("unregistered access panics", func(t *testing.T) {
		assert.Panics(t, func() { c.Row(0) })
		assert.Panics(t, func() { c.Row(99) })
		assert.Panics(t, func() { c.AllocateData(0) })
	})
}

func TestCollectionAllocation(t *testing.T) {
	t.Run("deferred per-node allocation", func(t *testing.T) {
		var c Collection
		c.Init(3)
		c.AddHistRow(0)
		c.AllocateData(0)

		row := c.Row(0)
		require.Len(t, row, 3)
		row[1].Add(1, 2)

		// Idempotent: a second allocation keeps the data.
		c.AllocateData(0)
		assert.Equal(t, data.GradientPair{Grad: 1, Hess: 2}, c.Row(0)[1])
	})

	t.Run("non-contiguous node ids", func(t *testing.T) {
		var c Collection
		c.Init(2)
		c.AddHistRow(5)
		c.AddHistRow(1)
		c.AllocateData(5)
		c.AllocateData(1)

		c.Row(5)[0].Add(1, 1)
		c.Row(1)[0].Add(2, 2)
		assert.Equal(t, data.GradientPair{Grad: 1, Hess: 1}, c.Row(5)[0])
		assert.Equal(t, data.GradientPair{Grad: 2, Hess: 2}, c.Row(1)[0])
	})

	t.Run("contiguous allocation spans all nodes", func(t *testing.T) {
		var c Collection
		c.Init(2)
		c.AddHistRow(0)
		c.AddHistRow(1)
		c.AddHistRow(2)
		c.AllocateAllData()

		r0, r1, r2 := c.Row(0), c.Row(1), c.Row(2)
		r0[0].Add(1, 0)
		r1[1].Add(2, 0)
		r2[0].Add(3, 0)

		assert.Equal(t, 1.0, c.Row(0)[0].Grad)
		assert.Equal(t, 2.0, c.Row(1)[1].Grad)
		assert.Equal(t, 3.0, c.Row(2)[0].Grad)

		// Rows are adjacent slices of one backing buffer.
		backing := c.data[0]
		assert.Same(t, &backing[2], &r1[0])
		assert.Same(t, &backing[4], &r2[0])
	})

	t.Run("per-node rows after a contiguous pass keep the row width", func(t *testing.T) {
		var c Collection
		c.Init(3)
		c.AddHistRow(0)
		c.AddHistRow(1)
		c.AllocateAllData()
		backing := &c.Row(0)[0]

		// The next iteration reuses the oversized buffer of node 0 but must
		// still hand out exactly nbins pairs.
		c.Init(3)
		c.AddHistRow(0)
		c.AllocateData(0)
		row := c.Row(0)
		require.Len(t, row, 3)
		assert.Same(t, backing, &row[0], "oversized buffer reused")
		assert.Panics(t, func() { _ = row[:4] }, "view capped at the row width")
	})

	t.Run("reading an unallocated row panics", func(t *testing.T) {
		var c Collection
		c.Init(3)
		c.AddHistRow(0)
		assert.Panics(t, func() { c.Row(0) })
	})

	t.Run("Init keeps storage when bin count is unchanged", func(t *testing.T) {
		var c Collection
		c.Init(4)
		c.AddHistRow(0)
		c.AllocateData(0)
		ptr := &c.Row(0)[0]

		c.Init(4)
		assert.False(t, c.RowExists(0), "registrations reset")
		c.AddHistRow(0)
		c.AllocateData(0)
		assert.Same(t, ptr, &c.Row(0)[0], "backing buffer reused")

		c.Init(8)
		c.AddHistRow(0)
		c.AllocateData(0)
		assert.Len(t, c.Row(0), 8)
	})
}
