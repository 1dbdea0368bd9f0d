package parsim

import "sync/atomic"

// Claim atomically reserves the next unclaimed job index and returns
// the pre-increment cursor value. A return value >= TotalJobs() means
// no work remains this frame; any smaller value is an exclusive claim
// of that job's range. Atomicity, not locking, guarantees that no two
// claims observe the same index.
//
// Returns:
//   - The claimed job index, or a value >= TotalJobs() when the pool
//     is exhausted.
func (s *SharedState) Claim() int32 {
	return atomic.AddInt32(&s.Jobs[jobCursor], 1) - 1
}

// recordPair appends an a<b collision pair to the shared buffer,
// silently dropping it once capacity is reached. Only the physics
// unit's work phase calls this, so a plain increment suffices.
func (s *SharedState) recordPair(a, b int32) {
	n := s.Pairs[pairCount]
	if n >= s.maxPairs {
		return
	}
	s.Pairs[1+2*n] = a
	s.Pairs[2+2*n] = b
	s.Pairs[pairCount] = n + 1
}

// resetPairs clears the collision buffer for the next work phase.
func (s *SharedState) resetPairs() {
	s.Pairs[pairCount] = 0
}
