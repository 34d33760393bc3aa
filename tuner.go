package apftune

import "math"

// ClassID identifies a size class to the host allocator's callbacks.
type ClassID = int

// CheckFunc returns the current count of blocks on the local free list for
// the given size class (spec §6).
type CheckFunc func(id ClassID) int

// GetFunc asks the host to fetch n blocks from the central reserve into the
// local free list for the given size class. Its boolean result is not
// inspected by Tuner: callback failure is the host's own recovery concern
// (spec §7).
type GetFunc func(id ClassID, n int) bool

// ReturnFunc asks the host to move n blocks from the local free list back
// to the central reserve. Its boolean result is not inspected by Tuner, for
// the same reason as GetFunc.
type ReturnFunc func(id ClassID, n int) bool

// Tuner is the per-size-class controller: it wires a LivenessCounter and a
// ReuseCounter to the allocator's malloc/free events, computes demand, and
// invokes the host's fetch/return hooks (spec §4.5).
type Tuner struct {
	id ClassID

	liveness *LivenessCounter
	reuse    *ReuseCounter

	time       int
	fetchCount int

	check CheckFunc
	get   GetFunc
	ret   ReturnFunc
}

// NewTuner constructs a Tuner for the given size class. SetTargetAPF must
// already have been called exactly once; constructing a Tuner before that
// is a fatal configuration error and panics (spec §4.5, §7).
func NewTuner(id ClassID, check CheckFunc, get GetFunc, ret ReturnFunc) *Tuner {
	_ = targetAPF() // panics if not yet configured

	return &Tuner{
		id:       id,
		liveness: NewLivenessCounter(),
		reuse:    NewReuseCounter(ReuseBurstLength, ReuseHibernationPeriod, InitialTraceCapacity),
		check:    check,
		get:      get,
		ret:      ret,
	}
}

// SetID reassigns the size class this Tuner serves.
func (t *Tuner) SetID(id ClassID) {
	t.id = id
}

// FetchCount returns the total number of batch fetches issued so far.
func (t *Tuner) FetchCount() int {
	return t.fetchCount
}

// Time returns the total number of operations observed so far.
func (t *Tuner) Time() int {
	return t.time
}

// Malloc processes an allocation event. ptr is an opaque identity used only
// as a slot key for reuse sampling; any stable integer suffices. It returns
// false only as a soft failure signal: the free list was drained and demand
// could not yet be estimated (no reuse burst has completed, or dapf exceeds
// the observed time), leaving the fetch decision to the host's default path (spec §4.5, §7).
func (t *Tuner) Malloc(ptr Slot) bool {
	t.time++

	if !UseAllocationClock {
		t.liveness.Tick()
		t.liveness.Alloc()
	}

	t.reuse.Alloc(ptr)
	t.reuse.Tick()

	if t.check(t.id) == 0 {
		d, ok := t.demand(t.dapf())
		if !ok {
			return false
		}
		t.get(t.id, int(math.Ceil(d)))
		t.fetchCount++
	}

	return true
}

// Free processes a free event. It returns false only as a soft failure
// signal: demand could not yet be estimated, or the estimate was negative
// (spec §4.5, §9 treats negative demand as "do nothing" on free).
func (t *Tuner) Free(ptr Slot) bool {
	t.reuse.Free(ptr)

	if !UseAllocationClock {
		t.reuse.Tick()
		t.time++
		t.liveness.Tick()
		t.liveness.Free()
	}

	d, ok := t.demand(t.dapf())
	if !ok || d < 0 {
		return false
	}

	if float64(t.check(t.id)) >= 2*d+1 {
		t.ret(t.id, int(math.Ceil(d))+1)
	}

	return true
}

// dapf is the dynamic APF: the residual window length before the next
// target fetch (spec §4.5). Per Open Question 3, time == T*(fetchCount+1)
// uses >=, yielding a plateau at T rather than 0.
func (t *Tuner) dapf() int {
	T := targetAPF()
	next := T * (t.fetchCount + 1)
	if t.time >= next {
		return T
	}
	return next - t.time
}

// demand predicts the number of fetches over the next k operations (spec
// §4.5). ok is false if the reuse counter has no cached table yet, or if k
// exceeds the observed time.
func (t *Tuner) demand(k int) (value float64, ok bool) {
	if k > t.time {
		return 0, false
	}

	r, ok := t.reuse.Reuse(k)
	if !ok {
		return 0, false
	}

	if UseAllocationClock {
		return float64(k) - r, true
	}
	return t.liveness.Liveness(k) - t.liveness.Liveness(0) - r, true
}
