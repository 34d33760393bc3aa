package apftune

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLivenessCounter_Baseline(t *testing.T) {
	// spec §8: tick; alloc; tick; alloc; tick; alloc, starting fresh ->
	// liveness(1) == 2.0.
	l := NewLivenessCounter()
	l.Tick()
	l.Alloc()
	l.Tick()
	l.Alloc()
	l.Tick()
	l.Alloc()

	assert.Equal(t, 2.0, l.Liveness(1))
}

func TestLivenessCounter_EmptyWindowIsZero(t *testing.T) {
	l := NewLivenessCounter()
	assert.Equal(t, 0.0, l.Liveness(1))

	l.Tick()
	l.Alloc()
	// window longer than observed history: i <= 0
	assert.Equal(t, 0.0, l.Liveness(5))
}

func TestLivenessCounter_RunningTotalInvariant(t *testing.T) {
	l := NewLivenessCounter()

	// Mirror spec §3's running-total invariant directly: alloc/free write
	// at the current timer; tick densely copies the prior timer forward.
	// This exercises the same discipline as LivenessCounter itself, but
	// against independent slices, to pin the documented semantics.
	allocCounts := []int64{0}
	freeCounts := []int64{0}
	allocSum := []int64{0}
	freeSum := []int64{0}
	n := 0

	do := func(kind string) {
		switch kind {
		case "tick":
			n++
			allocCounts = append(allocCounts, allocCounts[n-1])
			freeCounts = append(freeCounts, freeCounts[n-1])
			allocSum = append(allocSum, allocSum[n-1])
			freeSum = append(freeSum, freeSum[n-1])
			l.Tick()
		case "alloc":
			allocCounts[n]++
			allocSum[n] += int64(n)
			l.Alloc()
		case "free":
			freeCounts[n]++
			freeSum[n] += int64(n)
			l.Free()
		}
	}

	for _, kind := range []string{
		"tick", "alloc", "tick", "alloc", "tick", "free",
		"tick", "alloc", "tick", "free", "tick", "free",
	} {
		do(kind)
	}

	for ti := 0; ti <= n; ti++ {
		assert.Equal(t, allocCounts[ti], l.allocCounts.get(ti), "alloc_counts at t=%d", ti)
		assert.Equal(t, freeCounts[ti], l.freeCounts.get(ti), "free_counts at t=%d", ti)
		assert.Equal(t, allocSum[ti], l.allocSum.get(ti), "alloc_sum at t=%d", ti)
		assert.Equal(t, freeSum[ti], l.freeSum.get(ti), "free_sum at t=%d", ti)
	}
}
