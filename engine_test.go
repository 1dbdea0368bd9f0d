package parsim

import (
	"sync/atomic"
	"testing"
	"time"
)

// countingBehavior tallies callbacks with atomics; it runs from
// multiple logic units at once.
type countingBehavior struct {
	ticks  atomic.Int64
	enters atomic.Int64
	stays  atomic.Int64
	exits  atomic.Int64
}

func (b *countingBehavior) Tick(*TickContext)            { b.ticks.Add(1) }
func (b *countingBehavior) OnCollisionEnter(_, _ Entity) { b.enters.Add(1) }
func (b *countingBehavior) OnCollisionStay(_, _ Entity)  { b.stays.Add(1) }
func (b *countingBehavior) OnCollisionExit(_, _ Entity)  { b.exits.Add(1) }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.EntityCount = 10
	cfg.LogicWorkers = 2
	cfg.JobsPerWorker = 4
	cfg.MaxNeighbors = 4
	cfg.MaxPairs = 16
	cfg.Substeps = 1
	cfg.Bounds = Rect{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000}
	cfg.Gravity = Vec2{}
	return cfg
}

// go test -run ^TestNewEngineRejectsBadConfig$ . -count 1
func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.LogicWorkers = 0
	if _, err := NewEngine(cfg); err == nil {
		t.Error("Expected an error for zero logic workers")
	}
	cfg = testConfig()
	cfg.EntityCount = -5
	if _, err := NewEngine(cfg); err == nil {
		t.Error("Expected an error for negative entity count")
	}
	cfg = testConfig()
	cfg.Bounds = Rect{MinX: 10, MinY: 0, MaxX: 0, MaxY: 10}
	if _, err := NewEngine(cfg); err == nil {
		t.Error("Expected an error for empty bounds")
	}
}

// go test -run ^TestEngineRunScenario$ . -count 1
func TestEngineRunScenario(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	behavior := &countingBehavior{}
	engine.RegisterBehavior(1, behavior)
	engine.SetNeighborSource(&BruteForceNeighbors{Range: 50})

	pool := engine.Pool()
	for i := 0; i < 10; i++ {
		e := pool.Spawn(1)
		// Spread entities out; slots 0 and 1 overlap permanently.
		pool.Place(e, Vec2{X: float32(i) * 100, Y: 0})
		pool.SetTunables(e, 10, 1, 3)
		pool.EnablePhysics(e)
	}
	pool.Place(Entity{ID: 1, Version: pool.versions[1]}, Vec2{X: 4, Y: 0})
	pool.SetTrigger(Entity{ID: 1, Version: pool.versions[1]}, true)

	var frames atomic.Int64
	Subscribe(engine.Bus(), func(ev FrameCompleted) {
		frames.Store(ev.Frame)
		if ev.Frame >= 5 {
			engine.Stop()
		}
	})

	if err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	if err := engine.Run(); err == nil {
		t.Error("Expected a second Run to fail while the engine is live")
	}
	engine.Wait()

	completed := frames.Load()
	if completed < 5 {
		t.Fatalf("Expected at least 5 completed frames, got %d", completed)
	}
	ticks := behavior.ticks.Load()
	if ticks < 10*completed {
		t.Errorf("Expected at least %d ticks (10 entities x %d frames), got %d", 10*completed, completed, ticks)
	}
	if ticks%10 != 0 {
		t.Errorf("Expected every frame to tick all 10 entities, got %d total ticks", ticks)
	}
	// Slots 0 and 1 overlap from frame 1: one enter per participant,
	// stays after that, no exit.
	if got := behavior.enters.Load(); got != 2 {
		t.Errorf("Expected 2 enter callbacks, got %d", got)
	}
	if behavior.stays.Load() == 0 {
		t.Error("Expected stay callbacks for the persistent overlap")
	}
	if got := behavior.exits.Load(); got != 0 {
		t.Errorf("Expected no exit callbacks, got %d", got)
	}
}

// go test -run ^TestEngineStepSequence$ . -count 1
func TestEngineStepSequence(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	behavior := &countingBehavior{}
	engine.RegisterBehavior(1, behavior)
	engine.SetNeighborSource(&BruteForceNeighbors{Range: 50})

	pool := engine.Pool()
	a := pool.Spawn(1)
	b := pool.Spawn(1)
	pool.Place(a, Vec2{X: 0, Y: 0})
	pool.Place(b, Vec2{X: 4, Y: 0})
	for _, e := range []Entity{a, b} {
		pool.SetTunables(e, 10, 1, 3)
		pool.SetTrigger(e, true) // keep them overlapping
		pool.EnablePhysics(e)
	}

	engine.Step()
	if got := behavior.enters.Load(); got != 2 {
		t.Fatalf("Frame 1: expected 2 enters, got %d", got)
	}
	engine.Step()
	if got := behavior.stays.Load(); got != 2 {
		t.Fatalf("Frame 2: expected 2 stays, got %d", got)
	}

	// Despawn one participant: the pair vanishes, exit fires.
	pool.Despawn(b)
	engine.Step()
	if got := behavior.exits.Load(); got != 1 {
		t.Fatalf("Frame 3: expected 1 exit (despawned side skipped), got %d", got)
	}
	if got := engine.Frame(); got != 3 {
		t.Errorf("Expected 3 completed frames, got %d", got)
	}
}

// go test -run ^TestEngineStopHaltsAllUnits$ . -count 1
func TestEngineStopHaltsAllUnits(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	engine.SetNeighborSource(&BruteForceNeighbors{Range: 10})
	for i := 0; i < 10; i++ {
		engine.Pool().Spawn(1)
	}
	if err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	engine.Stop()

	done := make(chan struct{})
	go func() {
		engine.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Engine did not halt within 5s")
	}
	if engine.Frame() == 0 {
		t.Error("Expected at least one completed frame before the halt")
	}
}
