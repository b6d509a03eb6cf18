package hist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinTypeSizeFor(t *testing.T) {
	assert.Equal(t, Uint8BinsTypeSize, BinTypeSizeFor(0))
	assert.Equal(t, Uint8BinsTypeSize, BinTypeSizeFor(255))
	assert.Equal(t, Uint16BinsTypeSize, BinTypeSizeFor(256))
	assert.Equal(t, Uint16BinsTypeSize, BinTypeSizeFor(65535))
	assert.Equal(t, Uint32BinsTypeSize, BinTypeSizeFor(65536))
}

func TestIndexRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		width BinTypeSize
		vals  []uint32
	}{
		{"uint8", Uint8BinsTypeSize, []uint32{0, 1, 127, 255}},
		{"uint16", Uint16BinsTypeSize, []uint32{0, 256, 40000, 65535}},
		{"uint32", Uint32BinsTypeSize, []uint32{0, 70000, 1 << 30, 1<<32 - 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var idx Index
			idx.SetBinTypeSize(tc.width)
			idx.Resize(len(tc.vals) * int(tc.width))
			require.Equal(t, len(tc.vals), idx.Size())

			for i, v := range tc.vals {
				idx.SetAt(i, v)
			}
			for i, v := range tc.vals {
				assert.Equal(t, v, idx.At(i))
			}
		})

		t.Run(tc.name+" with offset table", func(t *testing.T) {
			var idx Index
			idx.SetBinTypeSize(tc.width)
			idx.Resize(len(tc.vals) * int(tc.width))
			idx.ResizeOffset(2)
			idx.Offset()[0] = 10
			idx.Offset()[1] = 1000

			for i, v := range tc.vals {
				idx.SetAt(i, v)
			}
			for i, v := range tc.vals {
				want := v + idx.Offset()[i%2]
				assert.Equal(t, want, idx.At(i))
			}
		})
	}
}

func TestIndexInvalidWidth(t *testing.T) {
	var idx Index
	assert.Panics(t, func() { idx.SetBinTypeSize(3) })
	assert.Panics(t, func() { idx.SetBinTypeSize(0) })
}

func TestIndexDefaults(t *testing.T) {
	var idx Index
	assert.Equal(t, Uint8BinsTypeSize, idx.BinTypeSize())
	assert.Nil(t, idx.Offset())
	assert.Equal(t, 0, idx.OffsetSize())
}
