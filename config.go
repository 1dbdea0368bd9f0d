package parsim

import (
	"fmt"
	"os"
	"runtime"

	"github.com/sugawarayuuta/sonnet"
)

// Config carries every startup-time parameter of the simulation core.
// All of it is fixed once the engine is built; anything wrong here
// fails construction, nothing is recovered at runtime.
type Config struct {
	// EntityCount is the fixed pool capacity.
	EntityCount int `json:"entityCount"`
	// LogicWorkers is the number of logic execution units. The physics
	// unit is always one more on top of this.
	LogicWorkers int `json:"logicWorkers"`
	// JobsPerWorker sets job granularity: the job table holds
	// LogicWorkers × JobsPerWorker ranges, so workers finishing early
	// pick up extra ranges and load self-balances.
	JobsPerWorker int `json:"jobsPerWorker"`
	// MaxNeighbors caps the per-entity neighbor list length.
	MaxNeighbors int `json:"maxNeighbors"`
	// MaxPairs caps the collision buffer; pairs past it are dropped.
	MaxPairs int `json:"maxPairs"`
	// Substeps is the constraint solver pass count per frame.
	Substeps int `json:"substeps"`
	// TimeScale is the normalized delta-time ratio fed to ticks and
	// the integrator, 1.0 at the nominal frame rate.
	TimeScale float32 `json:"timeScale"`
	// Gravity is the external force added each integration step.
	Gravity Vec2 `json:"gravity"`
	// Bounds is the world rectangle entities are constrained to.
	Bounds Rect `json:"bounds"`
	// Elasticity scales the reflected velocity on boundary penetration.
	Elasticity float32 `json:"elasticity"`
	// ResponseStrength scales pairwise separation per substep.
	ResponseStrength float32 `json:"responseStrength"`
	// MinSpeed is the threshold below which heading stops updating.
	MinSpeed float32 `json:"minSpeed"`
	// Seed feeds the solver's zero-distance jitter; 0 picks a default.
	Seed uint32 `json:"seed"`
}

// DefaultConfig returns a runnable configuration: one logic worker per
// spare CPU, 8× job granularity, 4 solver substeps.
func DefaultConfig() Config {
	workers := runtime.GOMAXPROCS(0) - 1
	if workers < 1 {
		workers = 1
	}
	return Config{
		EntityCount:      1024,
		LogicWorkers:     workers,
		JobsPerWorker:    8,
		MaxNeighbors:     16,
		MaxPairs:         1024,
		Substeps:         4,
		TimeScale:        1,
		Bounds:           Rect{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000},
		Elasticity:       0.5,
		ResponseStrength: 0.5,
		MinSpeed:         0.01,
	}
}

// LoadConfig reads a JSON config file over the defaults, so partial
// files only override what they mention.
//
// Parameters:
//   - path: The JSON file to read.
//
// Returns:
//   - The merged configuration, validated.
//   - An error if the file cannot be read, parsed, or validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("parsim: read config: %w", err)
	}
	if err := sonnet.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsim: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the startup invariants. A config that passes here
// cannot deadlock the barrier or leave entities unprocessed.
func (c *Config) Validate() error {
	if c.EntityCount <= 0 {
		return fmt.Errorf("parsim: entityCount must be positive, got %d", c.EntityCount)
	}
	if c.LogicWorkers < 1 {
		return fmt.Errorf("parsim: logicWorkers must be at least 1, got %d", c.LogicWorkers)
	}
	if c.JobsPerWorker < 1 {
		return fmt.Errorf("parsim: jobsPerWorker must be at least 1, got %d", c.JobsPerWorker)
	}
	if c.MaxNeighbors < 1 {
		return fmt.Errorf("parsim: maxNeighbors must be at least 1, got %d", c.MaxNeighbors)
	}
	if c.MaxPairs < 1 {
		return fmt.Errorf("parsim: maxPairs must be at least 1, got %d", c.MaxPairs)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("parsim: substeps must be at least 1, got %d", c.Substeps)
	}
	if c.TimeScale <= 0 {
		return fmt.Errorf("parsim: timeScale must be positive, got %v", c.TimeScale)
	}
	if c.Bounds.MinX >= c.Bounds.MaxX || c.Bounds.MinY >= c.Bounds.MaxY {
		return fmt.Errorf("parsim: bounds %+v are empty", c.Bounds)
	}
	if c.Elasticity < 0 || c.ResponseStrength < 0 {
		return fmt.Errorf("parsim: elasticity and responseStrength must be non-negative")
	}
	return nil
}
