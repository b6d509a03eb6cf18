package hist

import (
	scigoErrors "github.com/YuminosukeSato/gbhist/pkg/errors"
)

// Range is a half-open [Begin, End) row range.
type Range struct {
	Begin int
	End   int
}

// Size returns the number of rows in the range.
func (r Range) Size() int { return r.End - r.Begin }

// BlockedSpace2D is the 2D iteration space of one build pass: the cross
// product of active nodes (first dimension) and their row ranges (second
// dimension), sliced into blocks of at most grainSize rows. Blocks are
// ordered node-major, so a contiguous span of blocks touches a contiguous
// span of nodes; the thread partitioner relies on that.
//
// The space is rebuilt for every pass from the current row partitioning and
// discarded afterwards.
type BlockedSpace2D struct {
	firstDim []int
	ranges   []Range
}

// NewBlockedSpace2D slices each of dim1 node ranges into grain-sized blocks.
// rangeFor returns the row range of node i.
func NewBlockedSpace2D(dim1 int, rangeFor func(i int) Range, grainSize int) *BlockedSpace2D {
	if grainSize < 1 {
		panic(scigoErrors.NewValidationError("grainSize", "must be positive", grainSize))
	}
	s := &BlockedSpace2D{}
	for i := 0; i < dim1; i++ {
		r := rangeFor(i)
		if r.End < r.Begin {
			panic(scigoErrors.NewValidationError("rangeFor", "range end before begin", r))
		}
		for begin := r.Begin; begin < r.End; begin += grainSize {
			end := begin + grainSize
			if end > r.End {
				end = r.End
			}
			s.firstDim = append(s.firstDim, i)
			s.ranges = append(s.ranges, Range{Begin: begin, End: end})
		}
	}
	return s
}

// Size returns the number of blocks.
func (s *BlockedSpace2D) Size() int { return len(s.ranges) }

// FirstDim returns the node index of block i.
func (s *BlockedSpace2D) FirstDim(i int) int { return s.firstDim[i] }

// Block returns the row range of block i.
func (s *BlockedSpace2D) Block(i int) Range { return s.ranges[i] }
