// Package apftune implements an online controller that tunes the number of
// free blocks cached in a per-size-class local free list of a slab-style
// memory allocator.
//
// For each size class, a Tuner observes every allocation and deallocation,
// maintains a LivenessCounter and a ReuseCounter, and derives a running
// estimate of demand: the number of blocks expected to be requested over the
// next window of operations (expressed in allocations-per-fetch, APF). When
// the host's local free list empties, the Tuner asks it to fetch a
// demand-sized batch from a shared central reserve; when the free list grows
// beyond roughly twice the demand, the Tuner asks the host to return the
// excess.
//
// apftune owns none of the allocator's block layout, central reserve, or
// cross-thread coordination. It is a pure statistical engine, embedded into
// the host's malloc/free fast path via three callbacks (check, get, return)
// supplied at construction. See Tuner.
package apftune
