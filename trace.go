package apftune

// EventKind distinguishes the two operations a Trace records.
type EventKind int

const (
	// Alloc marks a slot as allocated.
	Alloc EventKind = iota
	// Free marks a slot as freed.
	Free
)

// Slot identifies a reusable block address or index within the owning size
// class. Equal slots across different events denote the same block. Any
// stable integer suffices; the Tuner uses pointer identity.
type Slot = int64

// Event is the primitive record of a single allocation or free (spec §3).
type Event struct {
	Kind EventKind
	Slot Slot
}

// Clock selects the time basis free intervals are reported in.
type Clock int

const (
	// EventClock indexes intervals by position in the trace's event
	// sequence (accesses).
	EventClock Clock = iota
	// AllocationClock indexes intervals by alloc-count: the number of
	// Alloc events observed so far. The reuse reduction uses this clock.
	AllocationClock
)

// FreeInterval is a pair (Start, End) derived from a trace: the block sits
// "free" on [Start, End] under the clock it was derived with (spec §3).
type FreeInterval struct {
	Start int
	End   int
}

// Trace is an append-only ordered sequence of Events, with derived counts
// kept in sync as events are added (spec §3).
type Trace struct {
	accesses   []Event
	allocCount int
}

// NewTrace returns an empty Trace with the given preallocated capacity.
func NewTrace(capacity int) *Trace {
	return &Trace{accesses: make([]Event, 0, capacity)}
}

// Add appends an event to the trace.
func (t *Trace) Add(e Event) {
	t.accesses = append(t.accesses, e)
	if e.Kind == Alloc {
		t.allocCount++
	}
}

// Length returns the total number of events added.
func (t *Trace) Length() int {
	return len(t.accesses)
}

// AllocLength returns the number of Alloc events added.
func (t *Trace) AllocLength() int {
	return t.allocCount
}

// Get returns the event at index i.
func (t *Trace) Get(i int) Event {
	return t.accesses[i]
}

// ObjectCount returns the number of distinct slots referenced in the trace.
func (t *Trace) ObjectCount() int {
	seen := make(map[Slot]struct{}, len(t.accesses))
	for _, e := range t.accesses {
		seen[e.Slot] = struct{}{}
	}
	return len(seen)
}

// Subtrace returns the half-open sub-sequence [start, end) as a new Trace,
// or nil if the indices are invalid. Not required by any operation in
// spec.md, but present in the original Rust source (eliasnd/apf-tuning-rust,
// src/trace.rs) as a cheap, complete small-value-type view; carried here for
// the same reason.
func (t *Trace) Subtrace(start, end int) *Trace {
	if start > end || end > t.Length() || start < 0 {
		return nil
	}
	sub := NewTrace(end - start)
	for i := start; i < end; i++ {
		sub.Add(t.accesses[i])
	}
	return sub
}

// Valid reports whether the trace is well-formed: every Free(s) is preceded
// by an Alloc(s) with no intervening unmatched Alloc(s), and no slot is
// allocated twice without an intervening free (spec §3). Validity is not
// required for FreeIntervals or the offline reuse reduction to run.
func (t *Trace) Valid() bool {
	allocated := make(map[Slot]bool, t.ObjectCount())
	for _, e := range t.accesses {
		switch e.Kind {
		case Alloc:
			if allocated[e.Slot] {
				return false
			}
			allocated[e.Slot] = true
		case Free:
			if !allocated[e.Slot] {
				return false
			}
			allocated[e.Slot] = false
		}
	}
	return true
}

// FreeIntervals derives the list of free intervals under the given clock
// (spec §4.2). It iterates the trace once, tracking the most recent Free
// timestamp per slot under both clock bases, and emits an interval at each
// Alloc event whose slot is currently recorded as freed. A Free with no
// matching Alloc in the trace contributes no interval (invalid, unmatched
// tail frees are silently dropped, per spec §7).
func (t *Trace) FreeIntervals(clock Clock) []FreeInterval {
	type freeMark struct {
		eventIndex int
		allocCount int
	}
	lastFree := make(map[Slot]freeMark)
	intervals := make([]FreeInterval, 0)

	allocCount := 0
	for i, e := range t.accesses {
		switch e.Kind {
		case Free:
			lastFree[e.Slot] = freeMark{eventIndex: i, allocCount: allocCount}
		case Alloc:
			// alloc_time advances only on Alloc events, and is the
			// post-increment value (spec §4.2).
			allocCount++
			if mark, ok := lastFree[e.Slot]; ok {
				var interval FreeInterval
				if clock == EventClock {
					interval = FreeInterval{Start: mark.eventIndex, End: i}
				} else {
					interval = FreeInterval{Start: mark.allocCount, End: allocCount}
				}
				intervals = append(intervals, interval)
				delete(lastFree, e.Slot)
			}
		}
	}
	return intervals
}
