package apftune

import "golang.org/x/exp/slices"

// ReuseCounter owns a Trace during a sampling burst, reduces it into a
// cached reuse table R(k) when the burst completes, then hibernates until
// the next burst starts (spec §4.4). The burst/hibernate cycle bounds
// sampling overhead: Alloc/Free are silently discarded while hibernating,
// which is the backpressure mechanism spec §4.4 calls out explicitly.
type ReuseCounter struct {
	burstLength       int
	hibernationPeriod int

	n int // current timer, within the active phase

	trace *Trace // non-nil iff sampling

	reuseTable map[int]float64
	haveBurst  bool
}

// NewReuseCounter returns a ReuseCounter starting in the sampling state,
// with an empty trace of the given initial capacity.
func NewReuseCounter(burstLength, hibernationPeriod, initialTraceCapacity int) *ReuseCounter {
	return &ReuseCounter{
		burstLength:       burstLength,
		hibernationPeriod: hibernationPeriod,
		trace:             NewTrace(initialTraceCapacity),
	}
}

// Sampling reports whether the counter is currently collecting a burst.
func (r *ReuseCounter) Sampling() bool {
	return r.trace != nil
}

// Alloc records an allocation of slot in the active trace. A no-op while
// hibernating.
func (r *ReuseCounter) Alloc(slot Slot) {
	if r.trace != nil {
		r.trace.Add(Event{Kind: Alloc, Slot: slot})
	}
}

// Free records a free of slot in the active trace. A no-op while
// hibernating.
func (r *ReuseCounter) Free(slot Slot) {
	if r.trace != nil {
		r.trace.Add(Event{Kind: Free, Slot: slot})
	}
}

// Tick advances the counter's internal timer by 1, driving the
// sampling/hibernation state machine (spec §4.4): a sampling burst that
// reaches burstLength is reduced into the cached reuse table and the
// counter hibernates; a hibernation that reaches hibernationPeriod starts a
// fresh sampling burst.
func (r *ReuseCounter) Tick() {
	r.n++
	if r.trace != nil {
		if r.n >= r.burstLength {
			r.reuseTable = reduceReuse(r.trace)
			r.haveBurst = true
			r.trace = nil
			r.n = 0
		}
		return
	}
	if r.n >= r.hibernationPeriod {
		r.n = 0
		r.trace = NewTrace(InitialTraceCapacity)
	}
}

// Reuse returns the cached R(k) from the most recently completed burst. ok
// is false if no burst has completed yet (spec §4.4); if a burst has
// completed but k was never a key in the reduced table, Reuse returns
// (0, true).
func (r *ReuseCounter) Reuse(k int) (value float64, ok bool) {
	if !r.haveBurst {
		return 0, false
	}
	return r.reuseTable[k], true
}

// reduceReuse computes the offline reuse reduction (spec §4.4): for each k
// in 1..n, R(k) is the average, over all n-k+1 windows of length k on the
// allocation clock, of the number of free intervals fully contained in the
// window. Computed via the X/Y/Z predicate decomposition in O(n) total,
// using scratch arrays released on return.
//
// Based on the allocation-clock reduction in the original source
// (eliasnd/apf-tuning-rust, src/reuse_counter.rs's free function `reuse`).
// Windows cover allocation positions 1..n, so an interval of length at most
// k fits windows starting in [max(e-k+1, 1), min(s, n-k+1)]: the start term
// uses min(s, n-k+1) and subtracts intervals with s >= n-k+2, and the end
// term adds intervals with e <= k-1. With these bounds every R(k) equals a
// direct count over all windows. endIndexCounts is sized n+1, not n, since
// a free interval's end index (post-increment alloc count at the matching
// alloc) can equal n itself. That extra bucket is never read by the
// k-indexed prefix pass below (it only ever reads indices 0..n-1), so
// sizing it to n+1 changes no R(k) value; it only avoids an out-of-range
// panic on a trace whose last free interval ends at the final allocation.
func reduceReuse(t *Trace) map[int]float64 {
	intervals := t.FreeIntervals(AllocationClock)
	n := t.AllocLength()

	result := make(map[int]float64, n)
	if n == 0 {
		return result
	}

	// Sort by start then end so the scratch-array population below runs in
	// a fixed, reproducible order (the sums it accumulates are order
	// independent, but a deterministic pass makes the reduction easier to
	// reason about and to diff against the naive reference).
	slices.SortFunc(intervals, func(a, b FreeInterval) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})

	startIndexCounts := make([]int64, n)
	endIndexCounts := make([]int64, n+1)
	lenCounts := make([]int64, n)
	startIndicesSums := make([]int64, n)
	startIndicesMinSums := make([]int64, n)
	endIndicesSums := make([]int64, n)
	endIndicesMaxSums := make([]int64, n)

	nn := int64(n)
	for _, iv := range intervals {
		s, e := int64(iv.Start), int64(iv.End)
		length := e - s + 1

		startIndexCounts[iv.Start]++
		endIndexCounts[iv.End]++
		lenCounts[length-1]++
		startIndicesSums[length-1] += s
		startIndicesMinSums[length-1] += min(nn-length+1, s)
		endIndicesSums[length-1] += e
		endIndicesMaxSums[length-1] += max(length, e)
	}

	startIndexNK := make([]int64, n)
	endIndexK1 := make([]int64, n)
	lenLeqK := make([]int64, n)

	lenLeqK[0] = lenCounts[0]
	for i := 1; i < n; i++ {
		startIndexNK[i] = startIndexNK[i-1] + startIndexCounts[n-i]
		endIndexK1[i] = endIndexK1[i-1] + endIndexCounts[i]
		lenLeqK[i] = lenLeqK[i-1] + lenCounts[i]
	}

	x := make([]int64, n)
	y := make([]int64, n)
	z := make([]int64, n)

	x[0] = startIndicesSums[0]
	y[0] = endIndicesSums[0]
	z[0] = lenCounts[0]

	for i := 1; i < n; i++ {
		k := int64(i + 1)
		x[i] = x[i-1] + startIndicesMinSums[i] - startIndexNK[i-1]
		y[i] = y[i-1] + endIndexK1[i] + endIndicesMaxSums[i]
		z[i] = z[i-1] + lenLeqK[i-1] + k*lenCounts[i]
	}

	for k := 1; k <= n; k++ {
		result[k] = float64(x[k-1]+z[k-1]-y[k-1]) / float64(n-k+1)
	}

	return result
}
