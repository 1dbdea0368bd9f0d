package parsim

import (
	"runtime"
	"sync/atomic"
)

// Frame barrier. After a unit exhausts its claimable jobs it calls
// SignalDone; the unit whose increment brings the finished counter to
// the participant total performs the reset for everyone: job cursor and
// counter back to zero, halt request latched, generation advanced. The
// atomic add guarantees exactly one unit observes the threshold value,
// so the reset runs exactly once per phase without a lock.
//
// Units then spin in AwaitGeneration until the generation moves. The
// generation counter is what lets a unit whose own clock runs hot wait
// out the reset instead of burning claim attempts against a stale
// cursor.

// SignalDone reports this unit's phase completion.
//
// Returns:
//   - true if this call performed the barrier reset, false otherwise.
func (s *SharedState) SignalDone() bool {
	finished := atomic.AddInt32(&s.Sync[syncFinished], 1)
	if finished != s.Sync[syncWorkers] {
		return false
	}
	// Last unit in: reset for the next phase. Stores published before
	// the generation increment are visible to every unit that observes
	// the new generation.
	atomic.StoreInt32(&s.Jobs[jobCursor], 0)
	atomic.StoreInt32(&s.Sync[syncFinished], 0)
	// Halt requests latch only on resets that close a frame (odd
	// generation going even), so a mid-frame request never strands the
	// final work phase's pairs undispatched.
	if atomic.LoadInt32(&s.Sync[syncGeneration])%2 == 1 &&
		atomic.LoadInt32(&s.Sync[syncHaltReq]) != 0 {
		atomic.StoreInt32(&s.Sync[syncHalt], 1)
	}
	gen := atomic.AddInt32(&s.Sync[syncGeneration], 1)
	// Two phases per frame; the frame word is informational.
	atomic.StoreInt32(&s.Sync[syncFrame], gen/2)
	return true
}

// requestHalt asks every unit to stop. The request only takes effect
// when a frame-closing barrier reset latches it into the halt word, so
// every unit observes the same stopping frame and every recorded pair
// is dispatched before the exit.
func (s *SharedState) requestHalt() {
	atomic.StoreInt32(&s.Sync[syncHaltReq], 1)
}

// Halted reports whether the halt request has been latched.
func (s *SharedState) Halted() bool {
	return atomic.LoadInt32(&s.Sync[syncHalt]) != 0
}

// Generation returns the current barrier generation. It advances once
// per completed phase, twice per frame.
func (s *SharedState) Generation() int32 {
	return atomic.LoadInt32(&s.Sync[syncGeneration])
}

// Frame returns the number of fully completed frames.
func (s *SharedState) Frame() int32 {
	return atomic.LoadInt32(&s.Sync[syncFrame])
}

// AwaitGeneration spins until the barrier generation advances past gen
// and returns the new value. Phase work is short; there is no blocking
// primitive on the hot path.
func (s *SharedState) AwaitGeneration(gen int32) int32 {
	for {
		g := atomic.LoadInt32(&s.Sync[syncGeneration])
		if g != gen {
			return g
		}
		runtime.Gosched()
	}
}
