package config

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Protocol != "demo" {
		t.Errorf("expected protocol demo, got %s", cfg.Protocol)
	}
	if cfg.Dt != 0.01 {
		t.Errorf("expected dt 0.01, got %v", cfg.Dt)
	}
	if cfg.Synapse.WInit != 1 || cfg.Synapse.Apost != -0.01 {
		t.Errorf("unexpected synapse defaults %+v", cfg.Synapse)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestTrainingDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Protocol = "training"

	if got := cfg.EpochDuration(); got != 80 {
		t.Errorf("EpochDuration() = %v, want 80", got)
	}
	if got := cfg.TotalDuration(); got != 800 {
		t.Errorf("TotalDuration() = %v, want 800", got)
	}
	if got := cfg.WindowsPerEpoch(); got != 4 {
		t.Errorf("WindowsPerEpoch() = %v, want 4", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"no outputs", func(c *Config) { c.Outputs = 0 }},
		{"negative tau", func(c *Config) { c.Neuron.Tau = -1 }},
		{"inverted bounds", func(c *Config) { c.Synapse.WMin = 2 }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"input length mismatch", func(c *Config) { c.Input.Times = []float64{0} }},
		{"training without patterns", func(c *Config) {
			c.Protocol = "training"
			c.Training.Patterns = nil
		}},
		{"training zero window", func(c *Config) {
			c.Protocol = "training"
			c.Training.Window = 0
		}},
		{"offset beyond pattern", func(c *Config) {
			c.Protocol = "training"
			c.Training.Patterns = [][]float64{{25}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Protocol = "training"
	cfg.Training.Epochs = 3
	cfg.Synapse.WInit = 0.7
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("loaded config differs:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	c := cfg.Clone()
	c.Training.Patterns[0][0] = 3
	c.Input.Times[1] = 9

	if cfg.Training.Patterns[0][0] != 0.01 || cfg.Input.Times[1] != 5.5 {
		t.Error("clone shares slices with the original")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("demo", "weak")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Synapse.WInit != 0.6 {
		t.Errorf("expected w_init 0.6, got %f", cfg.Synapse.WInit)
	}

	cfg.Synapse.WInit = 0.1
	if again := GetPreset("demo", "weak"); again.Synapse.WInit != 0.6 {
		t.Error("preset was mutated through a previous result")
	}

	wide := GetPreset("training", "wide")
	if wide.Protocol != "training" || wide.Outputs != 2 {
		t.Errorf("unexpected wide preset %+v", wide)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("demo", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "default"); cfg != nil {
		t.Error("expected nil for nonexistent protocol")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("training")
	want := []string{"default", "fast", "jitter", "wide"}
	if !reflect.DeepEqual(presets, want) {
		t.Errorf("ListPresets() = %v, want %v", presets, want)
	}

	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent protocol")
	}

	for _, p := range ListProtocols() {
		for _, name := range ListPresets(p) {
			if err := GetPreset(p, name).Validate(); err != nil {
				t.Errorf("preset %s/%s invalid: %v", p, name, err)
			}
		}
	}
}

func TestSetParam(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		check func(*Config) bool
	}{
		{"w_init", 0.5, func(c *Config) bool { return c.Synapse.WInit == 0.5 }},
		{"tau", 5, func(c *Config) bool { return c.Neuron.Tau == 5 }},
		{"window", 40, func(c *Config) bool { return c.Training.Window == 40 }},
		{"epochs", 2.6, func(c *Config) bool { return c.Training.Epochs == 3 }},
		{"outputs", 2, func(c *Config) bool { return c.Outputs == 2 }},
		{"seed", 9, func(c *Config) bool { return c.Seed == 9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.SetParam(tt.name, tt.value); err != nil {
				t.Fatalf("SetParam() error: %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("%s not applied", tt.name)
			}
			if got := cfg.GetParams()[tt.name]; tt.name != "epochs" && got != tt.value {
				t.Errorf("GetParams()[%s] = %v, want %v", tt.name, got, tt.value)
			}
		})
	}

	cfg := DefaultConfig()
	if err := cfg.SetParam("gain", 1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown parameter, got %v", err)
	}
	if err := cfg.SetParam("tau", math.NaN()); err == nil {
		t.Error("expected error for NaN")
	}
	if len(ParamNames()) != 19 {
		t.Errorf("expected 19 parameters, got %v", ParamNames())
	}
}
