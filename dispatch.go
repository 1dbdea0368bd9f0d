package parsim

// Dispatcher drives entity ticks for claimed job ranges. It is a thin
// loop: inactive slots are skipped with one flag test, active ones get
// their neighbor view sliced out of the shared buffers and their
// archetype's Tick invoked. One dispatcher exists per logic unit so the
// reused TickContext never crosses goroutines.
type Dispatcher struct {
	pool      *Pool
	state     *SharedState
	behaviors *Registry
	ctx       TickContext
}

// NewDispatcher creates a dispatcher over the given pool, shared state
// and behavior registry.
func NewDispatcher(pool *Pool, state *SharedState, behaviors *Registry) *Dispatcher {
	return &Dispatcher{
		pool:      pool,
		state:     state,
		behaviors: behaviors,
		ctx:       TickContext{Pool: pool},
	}
}

// TickRange processes the half-open entity index range [start, end)
// in strict index order. dt is the normalized delta-time ratio passed
// through to the behavior callbacks. Zero heap allocations per entity.
func (d *Dispatcher) TickRange(start, end int32, dt float32) {
	flags := d.pool.flags
	arch := d.pool.archetype
	for i := start; i < end; i++ {
		if flags[i]&FlagActive == 0 {
			continue
		}
		neighbors, distSq := d.state.NeighborView(i)
		d.ctx.Entity = Entity{ID: uint32(i), Version: d.pool.versions[i]}
		d.ctx.Index = i
		d.ctx.Neighbors = neighbors
		d.ctx.DistSq = distSq
		d.ctx.DT = dt
		d.behaviors.Lookup(arch[i]).Tick(&d.ctx)
	}
}

// drainJobs claims and ticks ranges until the scheduler reports no
// work left. This is the logic unit's whole work phase.
func (d *Dispatcher) drainJobs(dt float32) {
	total := d.state.TotalJobs()
	for {
		j := d.state.Claim()
		if j >= total {
			return
		}
		start, end := d.state.JobRange(j)
		d.TickRange(start, end, dt)
	}
}
