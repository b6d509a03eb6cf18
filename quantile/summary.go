// Package quantile implements weighted streaming quantile summaries and the
// multi-thread sketch container that turns a dataset's columns into
// histogram cut boundaries.
//
// The summary representation follows the classic weighted GK scheme: each
// retained value carries its minimum rank, maximum rank and exact weight
// (RMin, RMax, Weight). Merging two summaries keeps both operands' error;
// pruning a summary of total weight W down to k entries adds at most W/k
// rank error. Sketches fold batches through a stack of merge levels with a
// prune limit sized against the column, so the maintained rank error stays
// near 1/(8*maxBins) of the total weight regardless of batch count.
package quantile

import (
	"sort"
)

// Entry is one retained value of a summary together with its rank bounds:
// RMin and RMax bound the total weight of values strictly smaller (resp. not
// larger) than Value, and Weight is the exact total weight of Value itself.
type Entry struct {
	RMin   float64
	RMax   float64
	Weight float64
	Value  float64
}

// RMinNext returns the lower rank bound of the next value after e.
func (e Entry) RMinNext() float64 { return e.RMin + e.Weight }

// RMaxPrev returns the upper rank bound of the value preceding e.
func (e Entry) RMaxPrev() float64 { return e.RMax - e.Weight }

// ValueWeight is one incoming observation.
type ValueWeight struct {
	Value  float64
	Weight float64
}

// Summary is a weighted quantile summary: entries sorted by strictly
// increasing value with consistent rank bounds.
type Summary struct {
	Entries []Entry
}

// TotalWeight returns the summarized weight.
func (s *Summary) TotalWeight() float64 {
	if len(s.Entries) == 0 {
		return 0
	}
	return s.Entries[len(s.Entries)-1].RMax
}

// MaxRankError returns the largest rank uncertainty of any query against the
// summary. Zero for an exact summary.
func (s *Summary) MaxRankError() float64 {
	if len(s.Entries) == 0 {
		return 0
	}
	res := s.Entries[0].RMax - s.Entries[0].RMin - s.Entries[0].Weight
	for i := 1; i < len(s.Entries); i++ {
		if gap := s.Entries[i].RMaxPrev() - s.Entries[i-1].RMinNext(); gap > res {
			res = gap
		}
		if self := s.Entries[i].RMax - s.Entries[i].RMin - s.Entries[i].Weight; self > res {
			res = self
		}
	}
	return res
}

// SetSorted rebuilds the summary exactly from a batch of observations. The
// batch is sorted in place; duplicate values are folded into one entry.
func (s *Summary) SetSorted(batch []ValueWeight) {
	s.Entries = s.Entries[:0]
	if len(batch) == 0 {
		return
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Value < batch[j].Value })

	sum := 0.0
	for i := 0; i < len(batch); {
		j := i
		w := 0.0
		for ; j < len(batch) && batch[j].Value == batch[i].Value; j++ {
			w += batch[j].Weight
		}
		s.Entries = append(s.Entries, Entry{
			RMin:   sum,
			RMax:   sum + w,
			Weight: w,
			Value:  batch[i].Value,
		})
		sum += w
		i = j
	}
}

// CopyFrom replaces s with a copy of src.
func (s *Summary) CopyFrom(src *Summary) {
	s.Entries = append(s.Entries[:0], src.Entries...)
}

// SetPrune shrinks src to at most maxSize entries, keeping the extreme
// values and interior entries closest to equally spaced rank positions. The
// result's additional rank error is bounded by src.TotalWeight()/maxSize.
func (s *Summary) SetPrune(src *Summary, maxSize int) {
	if len(src.Entries) <= maxSize {
		s.CopyFrom(src)
		return
	}
	e := src.Entries
	begin := e[0].RMax
	rrange := e[len(e)-1].RMin - begin
	n := maxSize - 1

	s.Entries = append(s.Entries[:0], e[0])
	i := 1
	lastIdx := 0
	for k := 1; k < n; k++ {
		dx2 := 2 * (float64(k)*rrange/float64(n) + begin)
		for i < len(e)-1 && dx2 >= e[i+1].RMax+e[i+1].RMin {
			i++
		}
		if i == len(e)-1 {
			break
		}
		if dx2 < e[i].RMinNext()+e[i+1].RMaxPrev() {
			if i != lastIdx {
				s.Entries = append(s.Entries, e[i])
				lastIdx = i
			}
		} else {
			if i+1 != lastIdx {
				s.Entries = append(s.Entries, e[i+1])
				lastIdx = i + 1
			}
		}
	}
	if lastIdx != len(e)-1 {
		s.Entries = append(s.Entries, e[len(e)-1])
	}
}

// SetCombine merges two summaries into s. The merge is a single pass over
// both entry lists; rank bounds of entries present in only one operand are
// widened by the other operand's neighboring bounds, so the combined error
// never exceeds the sum of the operands' errors.
func (s *Summary) SetCombine(sa, sb *Summary) {
	if len(sa.Entries) == 0 {
		s.CopyFrom(sb)
		return
	}
	if len(sb.Entries) == 0 {
		s.CopyFrom(sa)
		return
	}

	a := sa.Entries
	b := sb.Entries
	s.Entries = s.Entries[:0]

	aprevRMin := 0.0
	bprevRMin := 0.0
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		switch {
		case a[ai].Value == b[bi].Value:
			s.Entries = append(s.Entries, Entry{
				RMin:   a[ai].RMin + b[bi].RMin,
				RMax:   a[ai].RMax + b[bi].RMax,
				Weight: a[ai].Weight + b[bi].Weight,
				Value:  a[ai].Value,
			})
			aprevRMin = a[ai].RMinNext()
			bprevRMin = b[bi].RMinNext()
			ai++
			bi++
		case a[ai].Value < b[bi].Value:
			s.Entries = append(s.Entries, Entry{
				RMin:   a[ai].RMin + bprevRMin,
				RMax:   a[ai].RMax + b[bi].RMaxPrev(),
				Weight: a[ai].Weight,
				Value:  a[ai].Value,
			})
			aprevRMin = a[ai].RMinNext()
			ai++
		default:
			s.Entries = append(s.Entries, Entry{
				RMin:   b[bi].RMin + aprevRMin,
				RMax:   b[bi].RMax + a[ai].RMaxPrev(),
				Weight: b[bi].Weight,
				Value:  b[bi].Value,
			})
			bprevRMin = b[bi].RMinNext()
			bi++
		}
	}
	for ; ai < len(a); ai++ {
		brmax := b[len(b)-1].RMax
		s.Entries = append(s.Entries, Entry{
			RMin:   a[ai].RMin + bprevRMin,
			RMax:   a[ai].RMax + brmax,
			Weight: a[ai].Weight,
			Value:  a[ai].Value,
		})
	}
	for ; bi < len(b); bi++ {
		armax := a[len(a)-1].RMax
		s.Entries = append(s.Entries, Entry{
			RMin:   b[bi].RMin + aprevRMin,
			RMax:   b[bi].RMax + armax,
			Weight: b[bi].Weight,
			Value:  b[bi].Value,
		})
	}
}

// Query estimates the rank of value as the midpoint of its rank bounds.
func (s *Summary) Query(value float64) float64 {
	e := s.Entries
	idx := sort.Search(len(e), func(i int) bool { return e[i].Value >= value })
	if idx == len(e) {
		return s.TotalWeight()
	}
	if e[idx].Value == value {
		return (e[idx].RMin + e[idx].RMax) / 2
	}
	if idx == 0 {
		return 0
	}
	return (e[idx-1].RMinNext() + e[idx].RMaxPrev()) / 2
}
