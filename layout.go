package parsim

import "fmt"

// Shared buffer layouts. Every execution unit sees the same flat integer
// buffers; coordination happens through atomic operations on individual
// words, never through locks.

// Job table buffer word offsets: [cursor, totalJobs, start0, end0, ...].
const (
	jobCursor = 0
	jobTotal  = 1
	jobRanges = 2
)

// Frame sync buffer word offsets:
// [frame, finished, totalWorkers, generation, halt, haltRequest].
const (
	syncFrame = iota
	syncFinished
	syncWorkers
	syncGeneration
	syncHalt
	syncHaltReq
	syncWords
)

// Collision pair buffer word offsets: [pairCount, a0, b0, a1, b1, ...].
const pairCount = 0

// SharedState is the arena of fixed-capacity buffers shared by all
// execution units for one simulation. All buffers are globally readable;
// write ownership is frame-scoped: position slabs by claimed job range,
// the collision buffer by the physics unit's work phase only.
type SharedState struct {
	// Jobs holds [cursor, totalJobs, start0, end0, start1, end1, ...].
	Jobs []int32
	// Sync holds [frame, finished, totalWorkers, generation, halt,
	// haltRequest].
	Sync []int32
	// Pairs holds [pairCount, a0, b0, ...] with room for maxPairs pairs.
	Pairs []int32
	// Neighbors holds one stride of [count, idx0..idxMax-1] per entity.
	Neighbors []int32
	// Distances mirrors Neighbors with squared distances per slot.
	Distances []float32

	maxPairs int32
	stride   int32
}

// newSharedState lays out every shared buffer for the given dimensions.
// The job table partitions [0, entityCount) into totalJobs contiguous
// near-equal ranges; granularity deliberately exceeds the worker count
// so early finishers pick up extra ranges.
func newSharedState(entityCount, logicWorkers, jobsPerWorker, maxNeighbors, maxPairs int) *SharedState {
	totalJobs := logicWorkers * jobsPerWorker
	stride := 1 + maxNeighbors
	s := &SharedState{
		Jobs:      make([]int32, jobRanges+2*totalJobs),
		Sync:      make([]int32, syncWords),
		Pairs:     make([]int32, 1+2*maxPairs),
		Neighbors: make([]int32, entityCount*stride),
		Distances: make([]float32, entityCount*stride),
		maxPairs:  int32(maxPairs),
		stride:    int32(stride),
	}
	s.Jobs[jobTotal] = int32(totalJobs)
	s.Sync[syncWorkers] = int32(logicWorkers) + 1 // logic units plus the physics unit

	// Balanced split: the first rem ranges carry one extra entity.
	base := entityCount / totalJobs
	rem := entityCount % totalJobs
	start := 0
	for j := 0; j < totalJobs; j++ {
		size := base
		if j < rem {
			size++
		}
		s.Jobs[jobRanges+2*j] = int32(start)
		s.Jobs[jobRanges+2*j+1] = int32(start + size)
		start += size
	}
	return s
}

// TotalJobs returns the fixed number of claimable ranges per frame.
func (s *SharedState) TotalJobs() int32 {
	return s.Jobs[jobTotal]
}

// JobRange returns the half-open entity index range of job j.
func (s *SharedState) JobRange(j int32) (start, end int32) {
	return s.Jobs[jobRanges+2*j], s.Jobs[jobRanges+2*j+1]
}

// Stride returns the per-entity width of the neighbor and distance
// buffers, 1 + maxNeighbors.
func (s *SharedState) Stride() int32 {
	return s.stride
}

// MaxPairs returns the collision buffer capacity in pairs.
func (s *SharedState) MaxPairs() int32 {
	return s.maxPairs
}

// PairCount returns the number of pairs recorded this frame. A value
// equal to MaxPairs signals saturation: pairs past capacity were
// silently dropped.
func (s *SharedState) PairCount() int32 {
	return s.Pairs[pairCount]
}

// NeighborView slices the neighbor and squared-distance buffers for one
// entity index. The returned slices alias the shared buffers; they are
// valid for the current frame only.
func (s *SharedState) NeighborView(index int32) (neighbors []int32, distSq []float32) {
	base := index * s.stride
	n := s.Neighbors[base]
	return s.Neighbors[base+1 : base+1+n], s.Distances[base+1 : base+1+n]
}

// validate asserts the startup invariants: job ranges must cover
// [0, entityCount) exactly with no gaps or overlaps, and the barrier
// must have participants. These are configuration errors, never
// runtime-recoverable conditions.
func (s *SharedState) validate(entityCount int) error {
	if s.Sync[syncWorkers] < 2 {
		return fmt.Errorf("parsim: barrier requires at least one logic and one physics unit, have %d", s.Sync[syncWorkers])
	}
	total := int(s.TotalJobs())
	if total <= 0 {
		return fmt.Errorf("parsim: job table is empty")
	}
	next := int32(0)
	for j := 0; j < total; j++ {
		start, end := s.JobRange(int32(j))
		if start != next {
			return fmt.Errorf("parsim: job %d starts at %d, want %d (gap or overlap)", j, start, next)
		}
		if end < start {
			return fmt.Errorf("parsim: job %d has negative range [%d,%d)", j, start, end)
		}
		next = end
	}
	if next != int32(entityCount) {
		return fmt.Errorf("parsim: job table covers [0,%d), want [0,%d)", next, entityCount)
	}
	return nil
}
