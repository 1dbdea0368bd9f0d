package parsim

// pairKey maps an ordered pair of non-negative slot indices to a
// single integer with the Cantor pairing function. The encoding is a
// bijection, so two distinct pairs can never share a key, and it keeps
// the transition sets free of string keys and the garbage they drag in.
func pairKey(a, b int32) int64 {
	s := int64(a) + int64(b)
	return s*(s+1)/2 + int64(b)
}

// PairTracker turns the raw overlap pairs reported by the solver into
// Enter/Stay/Exit transitions across frames. Each logic unit owns one
// tracker and processes only the pairs in its partition (a mod the
// logic unit count), so no transition is dispatched twice.
//
// State machine per pair:
//
//	No-Collision --Enter--> Colliding --Stay--> Colliding --Exit--> No-Collision
//
// The current and previous key sets are swapped, never copied, at the
// end of each frame. Exits are resolved through the key→pair cache so
// the participants of a vanished pair are never recomputed.
type PairTracker struct {
	unit     int32
	units    int32
	current  map[int64]struct{}
	previous map[int64]struct{}
	cache    map[int64][2]int32
}

// NewPairTracker creates the tracker for one logic unit's partition.
//
// Parameters:
//   - unit: This unit's partition index, 0 <= unit < units.
//   - units: The total number of logic units sharing the pair stream.
//
// Returns:
//   - A pointer to the newly created PairTracker.
func NewPairTracker(unit, units int32) *PairTracker {
	if units <= 0 || unit < 0 || unit >= units {
		panic("parsim: invalid tracker partition")
	}
	return &PairTracker{
		unit:     unit,
		units:    units,
		current:  make(map[int64]struct{}, 64),
		previous: make(map[int64]struct{}, 64),
		cache:    make(map[int64][2]int32, 64),
	}
}

// Process consumes this frame's collision buffer, dispatches the
// transition callbacks for this unit's partition, and rolls the sets
// over for the next frame. Callbacks go to both participants
// symmetrically; a participant despawned earlier in the frame is
// skipped.
func (t *PairTracker) Process(state *SharedState, pool *Pool, behaviors *Registry) {
	clear(t.current)
	n := state.PairCount()
	for k := int32(0); k < n; k++ {
		a := state.Pairs[1+2*k]
		b := state.Pairs[2+2*k]
		if a%t.units != t.unit {
			continue
		}
		kab := pairKey(a, b)
		kba := pairKey(b, a)
		t.current[kab] = struct{}{}
		t.current[kba] = struct{}{}
		t.cache[kab] = [2]int32{a, b}
		t.cache[kba] = [2]int32{b, a}
		if _, held := t.previous[kab]; held {
			t.dispatchStay(pool, behaviors, a, b)
		} else {
			t.dispatchEnter(pool, behaviors, a, b)
		}
	}
	// Anything held last frame and gone now has exited. Each unordered
	// pair appears under both key orders; the a<b entry dispatches.
	for key := range t.previous {
		if _, held := t.current[key]; held {
			continue
		}
		pair, ok := t.cache[key]
		if !ok {
			continue
		}
		delete(t.cache, key)
		if pair[0] < pair[1] {
			t.dispatchExit(pool, behaviors, pair[0], pair[1])
		}
	}
	t.current, t.previous = t.previous, t.current
}

func (t *PairTracker) dispatchEnter(pool *Pool, behaviors *Registry, a, b int32) {
	ea, eb := pool.Handle(a), pool.Handle(b)
	if ea.Version != 0 {
		behaviors.Lookup(pool.archetype[a]).OnCollisionEnter(ea, eb)
	}
	if eb.Version != 0 {
		behaviors.Lookup(pool.archetype[b]).OnCollisionEnter(eb, ea)
	}
}

func (t *PairTracker) dispatchStay(pool *Pool, behaviors *Registry, a, b int32) {
	ea, eb := pool.Handle(a), pool.Handle(b)
	if ea.Version != 0 {
		behaviors.Lookup(pool.archetype[a]).OnCollisionStay(ea, eb)
	}
	if eb.Version != 0 {
		behaviors.Lookup(pool.archetype[b]).OnCollisionStay(eb, ea)
	}
}

func (t *PairTracker) dispatchExit(pool *Pool, behaviors *Registry, a, b int32) {
	ea, eb := pool.Handle(a), pool.Handle(b)
	if ea.Version != 0 {
		behaviors.Lookup(pool.archetype[a]).OnCollisionExit(ea, eb)
	}
	if eb.Version != 0 {
		behaviors.Lookup(pool.archetype[b]).OnCollisionExit(eb, ea)
	}
}
