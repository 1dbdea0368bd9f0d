// Profiling:
// go build ./profile/sim
// go tool pprof -http=":8000" -nodefraction=0.001 ./sim cpu.pprof

package main

import (
	"log"
	"math/rand"

	parsim "github.com/brotochola/MultithreadedGameEngine-sub000"
	"github.com/pkg/profile"
)

const (
	entities = 5000
	frames   = 600
)

// wanderer steers toward the world center so the swarm never settles
// and the solver always has overlaps to resolve.
type wanderer struct {
	parsim.NopBehavior
}

func (wanderer) Tick(ctx *parsim.TickContext) {
	pos := ctx.Pool.Position(ctx.Entity)
	ctx.Pool.Accelerate(ctx.Entity, parsim.Vec2{
		X: (500 - pos.X) * 0.0005 * ctx.DT,
		Y: (500 - pos.Y) * 0.0005 * ctx.DT,
	})
}

func main() {
	cfg := parsim.DefaultConfig()
	cfg.EntityCount = entities
	cfg.MaxPairs = 8192
	cfg.MaxNeighbors = 24

	engine, err := parsim.NewEngine(cfg)
	if err != nil {
		log.Fatal(err)
	}
	engine.RegisterBehavior(1, wanderer{})
	engine.SetNeighborSource(&parsim.BruteForceNeighbors{Range: 24})

	pool := engine.Pool()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < entities; i++ {
		e := pool.Spawn(1)
		pool.Place(e, parsim.Vec2{
			X: rng.Float32() * 1000,
			Y: rng.Float32() * 1000,
		})
		pool.SetTunables(e, 4, 0.98, 3)
		pool.EnablePhysics(e)
	}

	rec, err := parsim.NewFrameRecorder("sim_frames.db")
	if err != nil {
		log.Fatal(err)
	}
	rec.Attach(engine.Bus())
	parsim.Subscribe(engine.Bus(), func(ev parsim.FrameCompleted) {
		if ev.Frame >= frames {
			engine.Stop()
		}
	})

	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	if err := engine.Run(); err != nil {
		log.Fatal(err)
	}
	engine.Wait()
	p.Stop()

	if err := rec.Close(); err != nil {
		log.Fatal(err)
	}
}
