package hist

// memBufferInline is the element count kept in the inline array before a
// request spills to the heap.
const memBufferInline = 128

// memBuffer hands out zeroed scratch slices, serving small requests from an
// inline array and larger ones from a reusable heap allocation. The parallel
// builder uses it for the per-pass (thread, node) tables, which are rebuilt
// every pass and usually tiny.
type memBuffer[T any] struct {
	stack [memBufferInline]T
	heap  []T
}

// get returns a zeroed slice of length n backed by the buffer. The slice is
// only valid until the next get call.
func (b *memBuffer[T]) get(n int) []T {
	var s []T
	if n <= memBufferInline {
		s = b.stack[:n]
	} else {
		if cap(b.heap) < n {
			b.heap = make([]T, n)
		}
		s = b.heap[:n]
	}
	clear(s)
	return s
}
