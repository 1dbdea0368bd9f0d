package parsim

// Pool is the fixed-capacity entity store. Every per-entity numeric
// field lives in its own preallocated slab, indexed by the entity's
// slot; a slot index is stable for the entity's whole lifetime, so the
// solver and the dispatcher address fields without indirection and
// without allocating. The active flag, not compaction, gates
// processing: despawned slots stay in place until recycled.
type Pool struct {
	pos     []Vec2
	prev    []Vec2
	accel   []Vec2
	vel     []Vec2
	speed   []float32
	heading []float32

	// Per-entity tunables.
	maxSpeed []float32
	damping  []float32
	radius   []float32

	flags     []uint8
	archetype []uint8

	versions []uint32 // 0 while the slot is dead
	freeIDs  []uint32 // stack of recyclable slot indices
	capacity int
	nextVer  uint32
	live     int
}

// NewPool preallocates every field slab for up to capacity entities.
// Capacity is fixed for the pool's lifetime; sizing it is a startup
// decision, so exhaustion at spawn time panics rather than reallocating
// under the feet of concurrently running units.
//
// Parameters:
//   - capacity: The number of entity slots to preallocate.
//
// Returns:
//   - A pointer to the newly created Pool.
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		panic("parsim: pool capacity must be positive")
	}
	p := &Pool{
		pos:       make([]Vec2, capacity),
		prev:      make([]Vec2, capacity),
		accel:     make([]Vec2, capacity),
		vel:       make([]Vec2, capacity),
		speed:     make([]float32, capacity),
		heading:   make([]float32, capacity),
		maxSpeed:  make([]float32, capacity),
		damping:   make([]float32, capacity),
		radius:    make([]float32, capacity),
		flags:     make([]uint8, capacity),
		archetype: make([]uint8, capacity),
		versions:  make([]uint32, capacity),
		freeIDs:   make([]uint32, capacity),
		capacity:  capacity,
		nextVer:   1,
	}
	for i := 0; i < capacity; i++ {
		// fill freeIDs with [capacity-1 .. 0] so slot 0 spawns first
		p.freeIDs[i] = uint32(capacity - 1 - i)
	}
	return p
}

// Spawn activates a free slot under the given behavior archetype and
// returns its handle. Physics fields start zeroed; tunables start at
// damping 1, radius 0 and maxSpeed 0, where a maxSpeed of 0 means the
// speed clamp is off. Panics when the pool is exhausted.
func (p *Pool) Spawn(archetype uint8) Entity {
	if len(p.freeIDs) == 0 {
		panic("parsim: entity capacity exhausted")
	}
	last := len(p.freeIDs) - 1
	id := p.freeIDs[last]
	p.freeIDs = p.freeIDs[:last]

	i := int(id)
	p.pos[i] = Vec2{}
	p.prev[i] = Vec2{}
	p.accel[i] = Vec2{}
	p.vel[i] = Vec2{}
	p.speed[i] = 0
	p.heading[i] = 0
	p.maxSpeed[i] = 0
	p.damping[i] = 1
	p.radius[i] = 0
	p.flags[i] = FlagActive
	p.archetype[i] = archetype
	p.versions[i] = p.nextVer
	ent := Entity{ID: id, Version: p.nextVer}
	p.nextVer++
	p.live++
	return ent
}

// Despawn deactivates the entity's slot and recycles its index. Stale
// or double despawns are ignored.
func (p *Pool) Despawn(e Entity) {
	if !p.IsValid(e) {
		return
	}
	p.flags[e.ID] = 0
	p.versions[e.ID] = 0
	p.freeIDs = append(p.freeIDs, e.ID)
	p.live--
}

// IsValid checks if the entity is currently alive. An entity is valid
// if its ID is within bounds and its version matches the slot's current
// version, which protects against handles that outlived a recycle.
//
// Parameters:
//   - e: The Entity to validate.
//
// Returns:
//   - true if the entity is valid, false otherwise.
func (p *Pool) IsValid(e Entity) bool {
	if int(e.ID) >= p.capacity {
		return false
	}
	v := p.versions[e.ID]
	return v != 0 && v == e.Version
}

// Capacity returns the fixed slot count.
func (p *Pool) Capacity() int {
	return p.capacity
}

// Live returns the number of active entities.
func (p *Pool) Live() int {
	return p.live
}

// Handle rebuilds the Entity handle for a live slot index. The zero
// Entity is returned for dead slots.
func (p *Pool) Handle(index int32) Entity {
	v := p.versions[index]
	if v == 0 {
		return Entity{}
	}
	return Entity{ID: uint32(index), Version: v}
}

// ClearEntities despawns everything and resets version state, reusing
// all slabs. Cheap way to reset a world between scenarios.
func (p *Pool) ClearEntities() {
	for i := range p.flags {
		p.flags[i] = 0
		p.versions[i] = 0
	}
	p.freeIDs = p.freeIDs[:0]
	for i := 0; i < p.capacity; i++ {
		p.freeIDs = append(p.freeIDs, uint32(p.capacity-1-i))
	}
	p.live = 0
}

// --- Field access ---
//
// Entity-handle accessors validate; int32-index accessors are the
// solver's and dispatcher's unchecked hot path, safe because job ranges
// are disjoint and bounded by the startup validation.

// Position returns the entity's current position, or the zero vector
// for stale handles.
func (p *Pool) Position(e Entity) Vec2 {
	if !p.IsValid(e) {
		return Vec2{}
	}
	return p.pos[e.ID]
}

// Place moves the entity to v without imparting velocity: both the
// current and previous positions are set, so the implicit velocity is
// zero on the next integration step.
func (p *Pool) Place(e Entity, v Vec2) {
	if !p.IsValid(e) {
		return
	}
	p.pos[e.ID] = v
	p.prev[e.ID] = v
}

// Velocity returns the entity's derived velocity from the last
// integration step.
func (p *Pool) Velocity(e Entity) Vec2 {
	if !p.IsValid(e) {
		return Vec2{}
	}
	return p.vel[e.ID]
}

// Launch sets the entity's implicit velocity by displacing the
// previous position, the Verlet way of imparting motion.
func (p *Pool) Launch(e Entity, v Vec2) {
	if !p.IsValid(e) {
		return
	}
	p.prev[e.ID].X = p.pos[e.ID].X - v.X
	p.prev[e.ID].Y = p.pos[e.ID].Y - v.Y
}

// Accelerate accumulates acceleration to be consumed and zeroed by the
// next integration step.
func (p *Pool) Accelerate(e Entity, a Vec2) {
	if !p.IsValid(e) {
		return
	}
	p.accel[e.ID].X += a.X
	p.accel[e.ID].Y += a.Y
}

// Speed returns the derived scalar speed.
func (p *Pool) Speed(e Entity) float32 {
	if !p.IsValid(e) {
		return 0
	}
	return p.speed[e.ID]
}

// Heading returns the derived heading in radians. Heading holds its
// last value while the entity is slower than the integrator's minimum
// speed threshold.
func (p *Pool) Heading(e Entity) float32 {
	if !p.IsValid(e) {
		return 0
	}
	return p.heading[e.ID]
}

// SetTunables configures the per-entity physics parameters in one call.
// A maxSpeed of 0 disables the integrator's per-axis speed clamp; there
// is no way to clamp an entity to zero speed, pin it with Place instead.
func (p *Pool) SetTunables(e Entity, maxSpeed, damping, radius float32) {
	if !p.IsValid(e) {
		return
	}
	p.maxSpeed[e.ID] = maxSpeed
	p.damping[e.ID] = damping
	p.radius[e.ID] = radius
}

// EnablePhysics opts the entity into integration and collision solving.
func (p *Pool) EnablePhysics(e Entity) {
	if !p.IsValid(e) {
		return
	}
	p.flags[e.ID] |= FlagPhysics
}

// SetTrigger marks or unmarks the entity as a trigger collider.
func (p *Pool) SetTrigger(e Entity, trigger bool) {
	if !p.IsValid(e) {
		return
	}
	if trigger {
		p.flags[e.ID] |= FlagTrigger
	} else {
		p.flags[e.ID] &^= FlagTrigger
	}
}

// Flags returns the raw flag byte for a slot index.
func (p *Pool) Flags(index int32) uint8 {
	return p.flags[index]
}

// Archetype returns the behavior archetype of a slot index.
func (p *Pool) Archetype(index int32) uint8 {
	return p.archetype[index]
}
