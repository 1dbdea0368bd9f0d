package parsim

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Engine wires the pool, the shared execution state, and the execution
// units together and drives frames.
//
// One frame is two barrier-gated phases:
//
//  1. Work: logic units claim job ranges and tick their entities while
//     the physics unit refreshes neighbors, integrates, and writes the
//     collision pair buffer.
//  2. Dispatch: each logic unit walks its pair-tracker partition over
//     the buffer just written and fires Enter/Stay/Exit callbacks.
//
// The barrier between the phases is what makes the single collision
// buffer safe: nobody reads it while the integrator writes it, and
// nobody writes it while the trackers read it.
type Engine struct {
	cfg         Config
	pool        *Pool
	state       *SharedState
	behaviors   *Registry
	bus         *EventBus
	integrator  *Integrator
	dispatchers []*Dispatcher
	trackers    []*PairTracker
	source      NeighborSource

	wg      sync.WaitGroup
	running atomic.Bool
}

// NewEngine validates the configuration and builds every component.
// Misconfiguration that would deadlock the barrier or leave entities
// unprocessed is rejected here; nothing recovers at runtime.
//
// Parameters:
//   - cfg: The validated-at-construction configuration.
//
// Returns:
//   - The engine, or an error describing the configuration defect.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	state := newSharedState(cfg.EntityCount, cfg.LogicWorkers, cfg.JobsPerWorker, cfg.MaxNeighbors, cfg.MaxPairs)
	if err := state.validate(cfg.EntityCount); err != nil {
		return nil, err
	}
	pool := NewPool(cfg.EntityCount)
	behaviors := NewRegistry()
	e := &Engine{
		cfg:         cfg,
		pool:        pool,
		state:       state,
		behaviors:   behaviors,
		bus:         NewEventBus(),
		integrator:  NewIntegrator(pool, state, &cfg, cfg.Seed),
		dispatchers: make([]*Dispatcher, cfg.LogicWorkers),
		trackers:    make([]*PairTracker, cfg.LogicWorkers),
	}
	for i := 0; i < cfg.LogicWorkers; i++ {
		e.dispatchers[i] = NewDispatcher(pool, state, behaviors)
		e.trackers[i] = NewPairTracker(int32(i), int32(cfg.LogicWorkers))
	}
	return e, nil
}

// Pool returns the entity pool for spawning and field access.
func (e *Engine) Pool() *Pool {
	return e.pool
}

// State returns the shared execution state. Read-only for callers; the
// units own the write discipline.
func (e *Engine) State() *SharedState {
	return e.state
}

// Bus returns the telemetry event bus. Subscribe before Run.
func (e *Engine) Bus() *EventBus {
	return e.bus
}

// RegisterBehavior binds an archetype ID to a behavior. Setup-time
// only.
func (e *Engine) RegisterBehavior(archetype uint8, b Behavior) {
	e.behaviors.Register(archetype, b)
}

// SetNeighborSource installs the spatial index collaborator. Without
// one, neighbor lists stay empty and no collisions occur. Setup-time
// only.
func (e *Engine) SetNeighborSource(src NeighborSource) {
	e.source = src
}

// Frame returns the number of fully completed frames.
func (e *Engine) Frame() int64 {
	return int64(e.state.Frame())
}

// Run starts one goroutine per execution unit and returns immediately.
// The units free-run frames until Stop.
func (e *Engine) Run() error {
	if !e.running.CompareAndSwap(false, true) {
		return fmt.Errorf("parsim: engine already running")
	}
	e.wg.Add(e.cfg.LogicWorkers + 1)
	for i := 0; i < e.cfg.LogicWorkers; i++ {
		go e.runLogic(i)
	}
	go e.runPhysics()
	return nil
}

// Stop requests a halt at the next frame boundary. It does not wait;
// pair with Wait. A stalled behavior callback stalls the barrier and
// therefore the halt; there is no mid-frame cancellation.
func (e *Engine) Stop() {
	e.state.requestHalt()
}

// Wait blocks until every unit has exited.
func (e *Engine) Wait() {
	e.wg.Wait()
	e.running.Store(false)
}

// runLogic is the frame loop of logic unit index.
func (e *Engine) runLogic(index int) {
	defer e.wg.Done()
	d := e.dispatchers[index]
	t := e.trackers[index]
	gen := e.state.Generation()
	for {
		// Work phase: tick claimed ranges until the pool is dry.
		d.drainJobs(e.cfg.TimeScale)
		e.state.SignalDone()
		gen = e.state.AwaitGeneration(gen)
		// Dispatch phase: collision transitions for this partition.
		t.Process(e.state, e.pool, e.behaviors)
		e.finishFrame()
		gen = e.state.AwaitGeneration(gen)
		// Halts latch only at frame-closing resets, so this is the one
		// exit point and it always falls on a frame boundary.
		if e.state.Halted() {
			return
		}
	}
}

// runPhysics is the frame loop of the physics unit.
func (e *Engine) runPhysics() {
	defer e.wg.Done()
	gen := e.state.Generation()
	for {
		// Work phase: neighbors, integration, pair reporting.
		if e.source != nil {
			e.source.Refresh(e.pool, e.state)
		}
		e.integrator.Step(e.cfg.TimeScale)
		e.state.SignalDone()
		gen = e.state.AwaitGeneration(gen)
		// Dispatch phase: nothing to dispatch on the physics unit.
		e.finishFrame()
		gen = e.state.AwaitGeneration(gen)
		if e.state.Halted() {
			return
		}
	}
}

// finishFrame signals the dispatch phase done and, on the unit that
// performed the reset, publishes the frame telemetry event. The pair
// count is captured before signaling: after the reset the next work
// phase may already be rewriting the buffer.
func (e *Engine) finishFrame() {
	pairs := e.state.PairCount()
	if e.state.SignalDone() {
		Publish(e.bus, FrameCompleted{
			Frame:     int64(e.state.Frame()),
			PairCount: pairs,
			Saturated: pairs == e.state.MaxPairs(),
		})
	}
}

// Step runs exactly one frame synchronously on the caller's goroutine,
// standing in for every unit itself. Deterministic: ranges tick in
// job order, then physics, then each tracker partition in unit order.
// Must not be mixed with Run.
func (e *Engine) Step() {
	if e.running.Load() {
		panic("parsim: Step while engine is running")
	}
	if e.source != nil {
		e.source.Refresh(e.pool, e.state)
	}
	e.dispatchers[0].drainJobs(e.cfg.TimeScale)
	e.integrator.Step(e.cfg.TimeScale)
	e.signalAll()
	for _, t := range e.trackers {
		t.Process(e.state, e.pool, e.behaviors)
	}
	pairs := e.state.PairCount()
	if e.signalAll() {
		Publish(e.bus, FrameCompleted{
			Frame:     int64(e.state.Frame()),
			PairCount: pairs,
			Saturated: pairs == e.state.MaxPairs(),
		})
	}
}

// signalAll reports phase completion for every unit the barrier
// expects, returning true once the reset ran. Step-mode helper.
func (e *Engine) signalAll() bool {
	reset := false
	workers := int(e.state.Sync[syncWorkers])
	for i := 0; i < workers; i++ {
		if e.state.SignalDone() {
			reset = true
		}
	}
	return reset
}
