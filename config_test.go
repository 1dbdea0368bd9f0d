package parsim

import (
	"os"
	"path/filepath"
	"testing"
)

// go test -run ^TestDefaultConfigValidates$ . -count 1
func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config must validate, got %v", err)
	}
}

// go test -run ^TestLoadConfigMergesOverDefaults$ . -count 1
func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.json")
	data := `{
		"entityCount": 64,
		"logicWorkers": 2,
		"gravity": {"x": 0, "y": 0.25},
		"bounds": {"minX": -10, "minY": -10, "maxX": 10, "maxY": 10}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EntityCount != 64 {
		t.Errorf("Expected entityCount 64, got %d", cfg.EntityCount)
	}
	if cfg.LogicWorkers != 2 {
		t.Errorf("Expected logicWorkers 2, got %d", cfg.LogicWorkers)
	}
	if cfg.Gravity.Y != 0.25 {
		t.Errorf("Expected gravity.y 0.25, got %v", cfg.Gravity.Y)
	}
	if cfg.Bounds.MaxX != 10 {
		t.Errorf("Expected bounds.maxX 10, got %v", cfg.Bounds.MaxX)
	}
	// Untouched fields keep their defaults.
	def := DefaultConfig()
	if cfg.Substeps != def.Substeps {
		t.Errorf("Expected default substeps %d, got %d", def.Substeps, cfg.Substeps)
	}
	if cfg.JobsPerWorker != def.JobsPerWorker {
		t.Errorf("Expected default jobsPerWorker %d, got %d", def.JobsPerWorker, cfg.JobsPerWorker)
	}
}

// go test -run ^TestLoadConfigRejectsBadInput$ . -count 1
func TestLoadConfigRejectsBadInput(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"entityCount": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected an error for malformed JSON")
	}

	path = filepath.Join(t.TempDir(), "invalid.json")
	if err := os.WriteFile(path, []byte(`{"entityCount": 0}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected a validation error for entityCount 0")
	}
}

// go test -run ^TestValidateCatchesEachDefect$ . -count 1
func TestValidateCatchesEachDefect(t *testing.T) {
	mutations := []func(*Config){
		func(c *Config) { c.EntityCount = 0 },
		func(c *Config) { c.LogicWorkers = 0 },
		func(c *Config) { c.JobsPerWorker = 0 },
		func(c *Config) { c.MaxNeighbors = 0 },
		func(c *Config) { c.MaxPairs = 0 },
		func(c *Config) { c.Substeps = 0 },
		func(c *Config) { c.TimeScale = 0 },
		func(c *Config) { c.Bounds = Rect{} },
		func(c *Config) { c.Elasticity = -1 },
		func(c *Config) { c.ResponseStrength = -1 },
	}
	for i, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("Mutation %d: expected a validation error", i)
		}
	}
}
