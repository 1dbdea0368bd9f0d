// Package parsim implements the parallel simulation core of a
// multi-worker entity engine: lock-free job distribution, cross-frame
// barrier synchronization, a Verlet-style constraint solver, and
// stateful collision-transition tracking over shared numeric buffers.
//
// Features:
// - Atomic claim-based job scheduler, no locks on the frame hot path.
// - Frame barrier with generation counter for clean phase hand-off.
// - Implicit-velocity integrator with multi-substep constraint solving.
// - Enter/Stay/Exit collision events keyed by Cantor pairing.
// - Fixed-capacity entity pool with parallel field slabs, zero
//   allocations during simulation.
// - Vtable behavior dispatch per entity archetype.
package parsim

// Entity is a unique ID + version tag. The ID doubles as the entity's
// slot index in the pool for its whole lifetime; the version guards
// against stale handles after the slot is recycled.
type Entity struct {
	ID      uint32
	Version uint32
}

// Entity flag bits stored in the pool's flag slab.
const (
	// FlagActive gates all per-frame processing of the slot.
	FlagActive uint8 = 1 << iota
	// FlagPhysics marks the entity as physics-bearing; the integrator
	// skips slots without it.
	FlagPhysics
	// FlagTrigger marks a trigger collider: overlaps are detected and
	// reported but exert no separation response.
	FlagTrigger
)

// Vec2 is a plain 2D vector used throughout the field slabs.
type Vec2 struct {
	X, Y float32
}

// Rect is an axis-aligned world boundary, min-inclusive, max-exclusive.
type Rect struct {
	MinX, MinY, MaxX, MaxY float32
}
