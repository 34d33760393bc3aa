package apftune

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Compile-time tunables (spec §4.6). Only targetAPF has a runtime setter;
// the rest are fixed at build time.
const (
	// InitialTraceCapacity is the backing capacity a sampling Trace
	// preallocates.
	InitialTraceCapacity = 1 << 14

	// ReuseBurstLength is the default number of timer ticks a ReuseCounter
	// samples for before reducing the burst into a reuse table.
	ReuseBurstLength = 3000

	// ReuseHibernationPeriod is the default number of timer ticks a
	// ReuseCounter remains idle for between bursts.
	ReuseHibernationPeriod = 6000

	// UseAllocationClock selects the Tuner's clock. When true, the
	// ReuseCounter ticks only on allocations and demand is k - R(k); the
	// LivenessCounter is then neither updated nor consulted. When false,
	// both counters tick on every operation and demand also uses liveness.
	UseAllocationClock = true

	// DefaultTargetAPF is the process-wide allocations-per-fetch target,
	// used if SetTargetAPF is never called explicitly... except it must
	// be called explicitly: constructing a Tuner before SetTargetAPF is a
	// fatal configuration error (spec §4.5), so this constant documents
	// the value a host would typically pass, it is not applied implicitly.
	DefaultTargetAPF = 2500
)

// targetAPF is the process-wide tuning knob, set exactly once before any
// Tuner is constructed. Guarded the way catrate.Limiter guards its worker
// start: an atomic fast-path flag plus a mutex for the rare, must-not-race
// set path, rather than sync.Once, which cannot itself report "already
// set" for a panic-grade double-set check.
var (
	targetAPFSet   atomic.Bool
	targetAPFMu    sync.Mutex
	targetAPFValue int
)

// SetTargetAPF sets the process-wide target allocations-per-fetch. It must
// be called exactly once, before any Tuner is constructed. Calling it twice
// is a fatal configuration error and panics.
func SetTargetAPF(value int) {
	targetAPFMu.Lock()
	defer targetAPFMu.Unlock()

	if targetAPFSet.Load() {
		panic(fmt.Errorf("apftune: target apf already set"))
	}

	targetAPFValue = value
	targetAPFSet.Store(true)
}

// targetAPF returns the configured target APF, panicking if it has not yet
// been set (constructing a Tuner before SetTargetAPF is itself a fatal
// configuration error, per spec §4.5).
func targetAPF() int {
	if !targetAPFSet.Load() {
		panic(fmt.Errorf("apftune: target apf not configured, call SetTargetAPF first"))
	}
	return targetAPFValue
}

// resetTargetAPFForTest clears the one-shot target APF. Test-only: exported
// via an internal hook rather than a public API, since spec.md describes a
// single process-wide set-once value with no runtime reconfiguration.
func resetTargetAPFForTest() {
	targetAPFMu.Lock()
	defer targetAPFMu.Unlock()
	targetAPFSet.Store(false)
	targetAPFValue = 0
}
