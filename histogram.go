package apftune

import (
	"golang.org/x/exp/constraints"
)

// countedHistogram is a mapping from small non-negative integer keys to
// accumulating non-negative integer counts (spec §4.1). Keys are expected
// to be dense, monotonically increasing, small integers (timestamps), so
// the backing store is a growable dense slice indexed directly by key,
// the same "dense and growable" trade the teacher's ring buffer makes for
// its own dense, append-mostly integer sequence: get on an unwritten key
// reads 0, and the slice doubles in size whenever a write lands past its
// current length.
type countedHistogram[V constraints.Integer] struct {
	s []V
}

// inc adds 1 to the stored value at k.
func (h *countedHistogram[V]) inc(k int) {
	h.add(k, 1)
}

// add adds v to the stored value at k. v is expected non-negative, per
// spec §4.1; negative v is accepted (no bounds check) since nothing in
// this package ever calls add with a negative value.
func (h *countedHistogram[V]) add(k int, v V) {
	h.grow(k)
	h.s[k] += v
}

// get returns the stored value at k, or the zero value if k has never been
// written.
func (h *countedHistogram[V]) get(k int) V {
	if k < 0 || k >= len(h.s) {
		return 0
	}
	return h.s[k]
}

// size returns the number of distinct keys the histogram has capacity for,
// i.e. the number of keys that have been written at least indirectly (via
// a grow). This over-reports "ever written" slightly in exchange for O(1)
// cost, which is the dense-array trade spec §4.1 explicitly endorses.
func (h *countedHistogram[V]) size() int {
	return len(h.s)
}

// grow ensures the backing slice is large enough to index k directly,
// doubling (from a length-1 base) rather than growing exactly to k+1, the
// same amortization strategy catrate.ringBuffer.Insert uses when its
// backing slice overflows.
func (h *countedHistogram[V]) grow(k int) {
	if k < len(h.s) {
		return
	}
	need := k + 1
	size := len(h.s)
	if size == 0 {
		size = 1
	}
	for size < need {
		size <<= 1
	}
	grown := make([]V, size)
	copy(grown, h.s)
	h.s = grown
}
