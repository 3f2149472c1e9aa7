package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 50.0
	DefaultTau       = 3.0
	DefaultThreshold = 1.0
	DefaultTrace     = 4.0
	DefaultA         = 0.01
	DefaultWindow    = 20.0
	DefaultEpochs    = 10
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Protocol   string         `yaml:"protocol"`
	Integrator string         `yaml:"integrator"`
	Dt         float64        `yaml:"dt"`
	Duration   float64        `yaml:"duration"`
	Seed       int64          `yaml:"seed"`
	Outputs    int            `yaml:"outputs"`
	Neuron     NeuronConfig   `yaml:"neuron"`
	Synapse    SynapseConfig  `yaml:"synapse"`
	Input      InputConfig    `yaml:"input"`
	Training   TrainingConfig `yaml:"training"`
}

type NeuronConfig struct {
	Tau       float64 `yaml:"tau"`
	Threshold float64 `yaml:"threshold"`
	Reset     float64 `yaml:"reset"`
	Rest      float64 `yaml:"rest"`
}

type SynapseConfig struct {
	TauPre  float64 `yaml:"tau_pre"`
	TauPost float64 `yaml:"tau_post"`
	Apre    float64 `yaml:"apre"`
	Apost   float64 `yaml:"apost"`
	WMin    float64 `yaml:"w_min"`
	WMax    float64 `yaml:"w_max"`
	WInit   float64 `yaml:"w_init"`
}

// InputConfig is the explicit spike schedule used by the demo protocol.
type InputConfig struct {
	Indices []int     `yaml:"indices"`
	Times   []float64 `yaml:"times"`
}

// TrainingConfig describes the repeated pattern presentation. Pattern
// offsets are milliseconds relative to the start of each presentation.
type TrainingConfig struct {
	Patterns        [][]float64 `yaml:"patterns"`
	PatternDuration float64     `yaml:"pattern_duration"`
	Epochs          int         `yaml:"epochs"`
	Window          float64     `yaml:"window"`
	Jitter          float64     `yaml:"jitter"`
}

func DefaultConfig() *Config {
	return &Config{
		Protocol:   "demo",
		Integrator: "exact",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Outputs:    1,
		Neuron: NeuronConfig{
			Tau:       DefaultTau,
			Threshold: DefaultThreshold,
		},
		Synapse: SynapseConfig{
			TauPre:  DefaultTrace,
			TauPost: DefaultTrace,
			Apre:    DefaultA,
			Apost:   -DefaultA,
			WMin:    0,
			WMax:    1,
			WInit:   1,
		},
		Input: InputConfig{
			Indices: []int{0, 0},
			Times:   []float64{0, 5.5},
		},
		Training: TrainingConfig{
			Patterns:        [][]float64{{0.01, 5.5}, {0.01, 8.7}, {0.01, 5.6}, {0.01, 8.4}},
			PatternDuration: 20,
			Epochs:          DefaultEpochs,
			Window:          DefaultWindow,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EpochDuration is the time needed to present every pattern once.
func (c *Config) EpochDuration() float64 {
	return float64(len(c.Training.Patterns)) * c.Training.PatternDuration
}

// TotalDuration is the simulated time of the configured protocol.
func (c *Config) TotalDuration() float64 {
	if c.Protocol == "training" {
		return c.EpochDuration() * float64(c.Training.Epochs)
	}
	return c.Duration
}

// WindowsPerEpoch is how many WTA invocations fall inside one epoch.
func (c *Config) WindowsPerEpoch() int {
	if c.Training.Window <= 0 {
		return 0
	}
	return int(c.EpochDuration()/c.Training.Window + 0.5)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt)
	}
	if c.Outputs < 1 {
		return fmt.Errorf("%w: need at least one output neuron, got %d", ErrInvalidConfig, c.Outputs)
	}
	if c.Neuron.Tau <= 0 || c.Synapse.TauPre <= 0 || c.Synapse.TauPost <= 0 {
		return fmt.Errorf("%w: time constants must be positive", ErrInvalidConfig)
	}
	if c.Synapse.WMin > c.Synapse.WMax {
		return fmt.Errorf("%w: w_min %v above w_max %v", ErrInvalidConfig, c.Synapse.WMin, c.Synapse.WMax)
	}

	switch c.Protocol {
	case "training":
		t := c.Training
		if len(t.Patterns) == 0 {
			return fmt.Errorf("%w: training needs at least one pattern", ErrInvalidConfig)
		}
		if t.PatternDuration <= 0 || t.Epochs < 1 || t.Window <= 0 {
			return fmt.Errorf("%w: pattern_duration, epochs and window must be positive", ErrInvalidConfig)
		}
		if t.Jitter < 0 {
			return fmt.Errorf("%w: negative jitter %v", ErrInvalidConfig, t.Jitter)
		}
		for i, p := range t.Patterns {
			for _, s := range p {
				if s < 0 || s >= t.PatternDuration {
					return fmt.Errorf("%w: pattern %d offset %v outside [0, %v)", ErrInvalidConfig, i, s, t.PatternDuration)
				}
			}
		}
	default:
		if c.Duration <= 0 {
			return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidConfig, c.Duration)
		}
		if len(c.Input.Indices) != len(c.Input.Times) {
			return fmt.Errorf("%w: %d input indices for %d times", ErrInvalidConfig, len(c.Input.Indices), len(c.Input.Times))
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Input.Indices = append([]int(nil), c.Input.Indices...)
	out.Input.Times = append([]float64(nil), c.Input.Times...)
	out.Training.Patterns = make([][]float64, len(c.Training.Patterns))
	for i, p := range c.Training.Patterns {
		out.Training.Patterns[i] = append([]float64(nil), p...)
	}
	return &out
}
