package parsim

// MaxArchetypes defines the maximum number of behavior archetypes that
// can be registered with an engine. This value is fixed at 256.
const MaxArchetypes = 256

// Behavior is the capability interface an entity archetype implements.
// Tick runs once per frame from whichever logic unit claimed the
// entity's job range; the collision callbacks run from the logic unit
// that owns the pair's partition. Bodies are arbitrary user logic, but
// they must respect the frame-scoped ownership discipline: write only
// to the entity they were invoked for.
type Behavior interface {
	Tick(ctx *TickContext)
	OnCollisionEnter(self, other Entity)
	OnCollisionStay(self, other Entity)
	OnCollisionExit(self, other Entity)
}

// NopBehavior implements Behavior with empty bodies. Embed it to opt
// out of callbacks selectively.
type NopBehavior struct{}

func (NopBehavior) Tick(*TickContext)            {}
func (NopBehavior) OnCollisionEnter(_, _ Entity) {}
func (NopBehavior) OnCollisionStay(_, _ Entity)  {}
func (NopBehavior) OnCollisionExit(_, _ Entity)  {}

// Registry maps archetype IDs to behavior implementations: index in,
// vtable out. Unregistered archetypes resolve to NopBehavior so lookup
// never branches on nil.
type Registry struct {
	behaviors [MaxArchetypes]Behavior
}

// NewRegistry returns a registry with every archetype mapped to
// NopBehavior.
func NewRegistry() *Registry {
	r := &Registry{}
	nop := NopBehavior{}
	for i := range r.behaviors {
		r.behaviors[i] = nop
	}
	return r
}

// Register binds an archetype ID to a behavior implementation.
// Registration happens at setup time, before any unit runs; it is not
// safe to call concurrently with a running engine.
func (r *Registry) Register(archetype uint8, b Behavior) {
	if b == nil {
		panic("parsim: nil behavior")
	}
	r.behaviors[archetype] = b
}

// Lookup returns the behavior bound to an archetype ID.
func (r *Registry) Lookup(archetype uint8) Behavior {
	return r.behaviors[archetype]
}

// TickContext is the per-entity view handed to Behavior.Tick. Its
// neighbor slices alias the shared buffers and are valid only for the
// duration of the call; the context struct itself is reused across
// entities, so callbacks must not retain it.
type TickContext struct {
	// Entity is the handle of the entity being ticked.
	Entity Entity
	// Index is the entity's slot index.
	Index int32
	// Neighbors holds the slot indices produced by the spatial index
	// for this frame.
	Neighbors []int32
	// DistSq holds the squared distance to each neighbor, parallel to
	// Neighbors.
	DistSq []float32
	// DT is the normalized delta-time ratio, 1.0 at the nominal rate.
	DT float32
	// Pool gives access to the entity's own fields.
	Pool *Pool
}
