package automation

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/san-kum/spikesim/internal/config"
	"github.com/san-kum/spikesim/internal/experiment"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and overrides
// individual parameters.
type ScenarioStep struct {
	Protocol   string             `yaml:"protocol"`
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step into a validated run configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	protocol := s.Protocol
	if protocol == "" {
		protocol = "demo"
	}
	preset := s.Preset
	if preset == "" {
		preset = "default"
	}

	cfg := config.GetPreset(protocol, preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %s/%s", protocol, preset)
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}

	names := make([]string, 0, len(s.Params))
	for k := range s.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := cfg.SetParam(k, s.Params[k]); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// StepResult pairs a finished run with the configuration that produced it.
type StepResult struct {
	Name   string
	Config *config.Config
	Result *experiment.Result
}

// RunScenario executes the steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Printf("scenario %s: step %d/%d %s/%s", scenario.Name, i+1, len(scenario.Steps), cfg.Protocol, step.Preset)

		res, err := runOnce(ctx, cfg, registry)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		name := step.SaveAs
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		results = append(results, StepResult{Name: name, Config: cfg, Result: res})
	}

	return results, nil
}

func runOnce(ctx context.Context, cfg *config.Config, registry *experiment.Registry) (*experiment.Result, error) {
	exp := experiment.New(cfg, registry)
	if err := exp.Setup(registry.DefaultMetrics(cfg.Neuron.Threshold)); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	res, err := exp.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	return res, nil
}
