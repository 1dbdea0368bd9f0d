package parsim

// NeighborSource fills the shared neighbor and squared-distance
// buffers once per frame, before the integrator runs. How neighbors
// are found is the spatial index's business; the engine only consumes
// the buffers.
type NeighborSource interface {
	Refresh(pool *Pool, state *SharedState)
}

// BruteForceNeighbors is the O(n²) reference source: every active
// entity within Range becomes a neighbor, up to the buffer's capacity.
// Suitable for tests and small scenes; production wires a proper
// spatial index behind the same interface.
type BruteForceNeighbors struct {
	// Range is the neighborhood radius.
	Range float32
}

// Refresh rewrites both buffers from current positions. Neighbor lists
// come out symmetric: if j sees i, i sees j, capacity permitting.
func (s *BruteForceNeighbors) Refresh(pool *Pool, state *SharedState) {
	stride := state.Stride()
	maxN := stride - 1
	rangeSq := s.Range * s.Range
	for i := int32(0); i < int32(pool.capacity); i++ {
		base := i * stride
		if pool.flags[i]&FlagActive == 0 {
			state.Neighbors[base] = 0
			continue
		}
		n := int32(0)
		for j := int32(0); j < int32(pool.capacity) && n < maxN; j++ {
			if j == i || pool.flags[j]&FlagActive == 0 {
				continue
			}
			dx := pool.pos[j].X - pool.pos[i].X
			dy := pool.pos[j].Y - pool.pos[i].Y
			distSq := dx*dx + dy*dy
			if distSq > rangeSq {
				continue
			}
			state.Neighbors[base+1+n] = j
			state.Distances[base+1+n] = distSq
			n++
		}
		state.Neighbors[base] = n
	}
}
