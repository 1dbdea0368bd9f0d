package parsim

// Integrator advances every physics-bearing entity once per frame and
// then runs a fixed number of constraint substeps over boundaries and
// pairwise overlap. It runs on the physics unit only, during the work
// phase, and is the sole writer of the collision pair buffer.
//
// Velocity is implicit: the difference between current and previous
// position. Damping, gravity and accumulated acceleration feed the
// per-frame delta, which is clamped per axis to the entity's max speed.
// The per-axis clamp lets diagonal motion exceed the nominal limit by
// up to sqrt(2); downstream tuning depends on that behavior.
type Integrator struct {
	pool  *Pool
	state *SharedState

	gravity    Vec2
	bounds     Rect
	elasticity float32
	response   float32
	minSpeed   float32
	substeps   int

	rng  uint32
	seen map[int64]struct{} // pairs already recorded this frame
}

// microSeparation is the displacement applied to exactly coincident
// entities before the standard separation path runs.
const microSeparation = 0.05

// NewIntegrator builds an integrator over the pool and shared state.
// Tuning comes from the engine's Config; seed feeds the zero-distance
// separation jitter.
func NewIntegrator(pool *Pool, state *SharedState, cfg *Config, seed uint32) *Integrator {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return &Integrator{
		pool:       pool,
		state:      state,
		gravity:    cfg.Gravity,
		bounds:     cfg.Bounds,
		elasticity: cfg.Elasticity,
		response:   cfg.ResponseStrength,
		minSpeed:   cfg.MinSpeed,
		substeps:   cfg.Substeps,
		rng:        seed,
		seen:       make(map[int64]struct{}, 256),
	}
}

// Step runs one full physics frame: integration, substeps, derived
// state. dt is the normalized delta-time ratio.
func (it *Integrator) Step(dt float32) {
	it.state.resetPairs()
	clear(it.seen)
	it.integrate(dt)
	for s := 0; s < it.substeps; s++ {
		it.constrainBounds()
		it.solveOverlap()
	}
	it.deriveMotion()
}

// integrate applies the implicit-velocity position update to every
// active physics entity and zeroes its accumulated acceleration.
func (it *Integrator) integrate(dt float32) {
	p := it.pool
	for i := 0; i < p.capacity; i++ {
		if p.flags[i]&(FlagActive|FlagPhysics) != FlagActive|FlagPhysics {
			continue
		}
		vx := (p.pos[i].X-p.prev[i].X)*p.damping[i] + (it.gravity.X+p.accel[i].X)*dt
		vy := (p.pos[i].Y-p.prev[i].Y)*p.damping[i] + (it.gravity.Y+p.accel[i].Y)*dt
		limit := p.maxSpeed[i]
		if limit > 0 {
			vx = clamp32(vx, limit)
			vy = clamp32(vy, limit)
		}
		p.prev[i] = p.pos[i]
		p.pos[i].X += vx
		p.pos[i].Y += vy
		p.vel[i] = Vec2{X: vx, Y: vy}
		p.accel[i] = Vec2{}
	}
}

// constrainBounds clamps positions to the world rectangle, reflecting
// the previous position by the elasticity factor so penetration turns
// into a damped bounce.
func (it *Integrator) constrainBounds() {
	p := it.pool
	b := it.bounds
	e := it.elasticity
	for i := 0; i < p.capacity; i++ {
		if p.flags[i]&(FlagActive|FlagPhysics) != FlagActive|FlagPhysics {
			continue
		}
		r := p.radius[i]
		if p.pos[i].X-r < b.MinX {
			vx := p.pos[i].X - p.prev[i].X
			p.pos[i].X = b.MinX + r
			p.prev[i].X = p.pos[i].X + vx*e
		} else if p.pos[i].X+r > b.MaxX {
			vx := p.pos[i].X - p.prev[i].X
			p.pos[i].X = b.MaxX - r
			p.prev[i].X = p.pos[i].X + vx*e
		}
		if p.pos[i].Y-r < b.MinY {
			vy := p.pos[i].Y - p.prev[i].Y
			p.pos[i].Y = b.MinY + r
			p.prev[i].Y = p.pos[i].Y + vy*e
		} else if p.pos[i].Y+r > b.MaxY {
			vy := p.pos[i].Y - p.prev[i].Y
			p.pos[i].Y = b.MaxY - r
			p.prev[i].Y = p.pos[i].Y + vy*e
		}
	}
}

// solveOverlap separates overlapping neighbor pairs and records them
// into the collision buffer. Each unordered pair is handled once per
// substep via the a<b ordering and recorded at most once per frame via
// the seen set. Trigger participants suppress the positional response,
// the zero-distance jitter included, but never the report.
func (it *Integrator) solveOverlap() {
	p := it.pool
	for i := int32(0); i < int32(p.capacity); i++ {
		if p.flags[i]&(FlagActive|FlagPhysics) != FlagActive|FlagPhysics {
			continue
		}
		neighbors, _ := it.state.NeighborView(i)
		for _, j := range neighbors {
			if j <= i {
				continue
			}
			if p.flags[j]&(FlagActive|FlagPhysics) != FlagActive|FlagPhysics {
				continue
			}
			dx := p.pos[j].X - p.pos[i].X
			dy := p.pos[j].Y - p.pos[i].Y
			sum := p.radius[i] + p.radius[j]
			distSq := dx*dx + dy*dy
			if distSq >= sum*sum {
				continue
			}
			it.reportPair(i, j)
			if p.flags[i]&FlagTrigger != 0 || p.flags[j]&FlagTrigger != 0 {
				continue
			}
			if dx == 0 && dy == 0 {
				// Exact overlap has no separation normal; jitter the
				// pair apart at a random angle first.
				sin, cos := sincos32(randAngle(&it.rng))
				p.pos[i].X -= cos * microSeparation
				p.pos[i].Y -= sin * microSeparation
				p.pos[j].X += cos * microSeparation
				p.pos[j].Y += sin * microSeparation
				dx = p.pos[j].X - p.pos[i].X
				dy = p.pos[j].Y - p.pos[i].Y
				distSq = dx*dx + dy*dy
				if distSq >= sum*sum {
					continue
				}
			}
			dist := sqrt32(distSq)
			depth := sum - dist
			push := depth * it.response * 0.5
			nx := dx / dist
			ny := dy / dist
			p.pos[i].X -= nx * push
			p.pos[i].Y -= ny * push
			p.pos[j].X += nx * push
			p.pos[j].Y += ny * push
		}
	}
}

// reportPair records an a<b pair once per frame, dropping silently at
// buffer capacity.
func (it *Integrator) reportPair(a, b int32) {
	k := pairKey(a, b)
	if _, ok := it.seen[k]; ok {
		return
	}
	it.seen[k] = struct{}{}
	it.state.recordPair(a, b)
}

// deriveMotion recomputes speed and heading from the final implicit
// velocity. Heading updates are suppressed below the minimum-speed
// threshold to avoid angular jitter near rest.
func (it *Integrator) deriveMotion() {
	p := it.pool
	for i := 0; i < p.capacity; i++ {
		if p.flags[i]&(FlagActive|FlagPhysics) != FlagActive|FlagPhysics {
			continue
		}
		vx := p.pos[i].X - p.prev[i].X
		vy := p.pos[i].Y - p.prev[i].Y
		p.vel[i] = Vec2{X: vx, Y: vy}
		speed := sqrt32(vx*vx + vy*vy)
		p.speed[i] = speed
		if speed >= it.minSpeed {
			p.heading[i] = atan232(vy, vx)
		}
	}
}
