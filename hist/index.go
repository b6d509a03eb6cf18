package hist

import (
	scigoErrors "github.com/YuminosukeSato/gbhist/pkg/errors"
)

// BinTypeSize selects the storage width of one bin id in the compressed
// index, in bytes.
type BinTypeSize uint8

const (
	// Uint8BinsTypeSize stores bin ids in one byte.
	Uint8BinsTypeSize BinTypeSize = 1
	// Uint16BinsTypeSize stores bin ids in two bytes.
	Uint16BinsTypeSize BinTypeSize = 2
	// Uint32BinsTypeSize stores bin ids in four bytes.
	Uint32BinsTypeSize BinTypeSize = 4
)

// BinTypeSizeFor returns the narrowest width able to represent maxBin.
func BinTypeSizeFor(maxBin uint32) BinTypeSize {
	switch {
	case maxBin < 1<<8:
		return Uint8BinsTypeSize
	case maxBin < 1<<16:
		return Uint16BinsTypeSize
	default:
		return Uint32BinsTypeSize
	}
}

// Index is the byte-packed array of per-row, per-feature bin ids. Entries
// are fixed-width little-endian unsigned integers; an optional offset table
// (one entry per feature, applied cyclically across flat positions) lets a
// dense matrix store only intra-feature bin ids at a narrow width.
//
// The byte buffer and the offset table are owned exclusively by the Index;
// all access goes through bounds-checked element methods. An Index is meant
// to be populated once and then shared read-only, never copied.
type Index struct {
	data        []byte
	offset      []uint32
	binTypeSize BinTypeSize
}

// SetBinTypeSize selects the storage width. Widths other than 1, 2 or 4
// bytes are a contract violation.
func (idx *Index) SetBinTypeSize(s BinTypeSize) {
	switch s {
	case Uint8BinsTypeSize, Uint16BinsTypeSize, Uint32BinsTypeSize:
		idx.binTypeSize = s
	default:
		panic(scigoErrors.NewBinWidthError(int(s)))
	}
}

// BinTypeSize returns the configured storage width.
func (idx *Index) BinTypeSize() BinTypeSize {
	if idx.binTypeSize == 0 {
		return Uint8BinsTypeSize
	}
	return idx.binTypeSize
}

// Resize allocates the backing buffer to nBytes bytes.
func (idx *Index) Resize(nBytes int) {
	idx.data = make([]byte, nBytes)
}

// ResizeOffset installs an offset table of length n. The table is applied
// cyclically: element i gains offset[i%n].
func (idx *Index) ResizeOffset(n int) {
	if n == 0 {
		idx.offset = nil
		return
	}
	idx.offset = make([]uint32, n)
}

// Offset returns the offset table, nil when none is configured.
func (idx *Index) Offset() []uint32 { return idx.offset }

// OffsetSize returns the length of the offset table.
func (idx *Index) OffsetSize() int { return len(idx.offset) }

// Size returns the number of stored elements.
func (idx *Index) Size() int {
	return len(idx.data) / int(idx.BinTypeSize())
}

// At returns the logical bin id at flat position i: the stored integer plus
// the cyclic offset when an offset table is configured.
func (idx *Index) At(i int) uint32 {
	v := idx.raw(i)
	if len(idx.offset) > 0 {
		v += idx.offset[i%len(idx.offset)]
	}
	return v
}

// SetAt stores the raw integer v at flat position i. The caller must keep v
// within the configured width's range; widths are chosen once from the total
// bin count, so overflow here is a quantizer bug, not a data condition.
func (idx *Index) SetAt(i int, v uint32) {
	switch idx.BinTypeSize() {
	case Uint8BinsTypeSize:
		idx.data[i] = byte(v)
	case Uint16BinsTypeSize:
		idx.data[2*i] = byte(v)
		idx.data[2*i+1] = byte(v >> 8)
	default:
		idx.data[4*i] = byte(v)
		idx.data[4*i+1] = byte(v >> 8)
		idx.data[4*i+2] = byte(v >> 16)
		idx.data[4*i+3] = byte(v >> 24)
	}
}

func (idx *Index) raw(i int) uint32 {
	switch idx.BinTypeSize() {
	case Uint8BinsTypeSize:
		return uint32(idx.data[i])
	case Uint16BinsTypeSize:
		return uint32(idx.data[2*i]) | uint32(idx.data[2*i+1])<<8
	default:
		return uint32(idx.data[4*i]) | uint32(idx.data[4*i+1])<<8 |
			uint32(idx.data[4*i+2])<<16 | uint32(idx.data[4*i+3])<<24
	}
}
