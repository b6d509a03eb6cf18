package hist

import "math"

// BinSequence is the read-only view BinarySearchBin needs over a row's bin
// ids. *Index satisfies it.
type BinSequence interface {
	At(i int) uint32
}

// BinarySearchBin locates a feature's global bin id inside a row stored as
// sorted, globally-indexed entries: it searches positions [begin, end) of
// data for a value inside [fidxBegin, fidxEnd) and returns that value, or -1
// when the row has no entry for the feature. The feature range maps to
// Cuts.Ptrs[fid] and Cuts.Ptrs[fid+1].
//
// The probe index is compared against the previous one so the search
// terminates in O(log n) even when the shrinking interval would otherwise
// revisit the same middle.
func BinarySearchBin(begin, end int, data BinSequence, fidxBegin, fidxEnd uint32) int32 {
	previousMiddle := math.MaxInt
	for end != begin {
		middle := begin + (end-begin)/2
		if middle == previousMiddle {
			break
		}
		previousMiddle = middle

		gidx := data.At(middle)

		switch {
		case gidx >= fidxBegin && gidx < fidxEnd:
			return int32(gidx)
		case gidx < fidxBegin:
			begin = middle
		default:
			end = middle
		}
	}
	// Value is missing.
	return -1
}
