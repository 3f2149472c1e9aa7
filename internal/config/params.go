package config

import (
	"fmt"
	"math"
	"sort"
)

// SetParam assigns a numeric field by its YAML name. Integer fields are
// rounded.
func (c *Config) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s=%v", ErrInvalidConfig, name, value)
	}
	p, ok := c.floatParams()[name]
	if ok {
		*p = value
		return nil
	}
	switch name {
	case "outputs":
		c.Outputs = int(math.Round(value))
	case "epochs":
		c.Training.Epochs = int(math.Round(value))
	case "seed":
		c.Seed = int64(value)
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidConfig, name)
	}
	return nil
}

func (c *Config) GetParams() map[string]float64 {
	out := map[string]float64{
		"outputs": float64(c.Outputs),
		"epochs":  float64(c.Training.Epochs),
		"seed":    float64(c.Seed),
	}
	for name, p := range c.floatParams() {
		out[name] = *p
	}
	return out
}

// ParamNames lists every name SetParam accepts.
func ParamNames() []string {
	names := make([]string, 0)
	for name := range DefaultConfig().GetParams() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) floatParams() map[string]*float64 {
	return map[string]*float64{
		"dt":               &c.Dt,
		"duration":         &c.Duration,
		"tau":              &c.Neuron.Tau,
		"threshold":        &c.Neuron.Threshold,
		"reset":            &c.Neuron.Reset,
		"rest":             &c.Neuron.Rest,
		"tau_pre":          &c.Synapse.TauPre,
		"tau_post":         &c.Synapse.TauPost,
		"apre":             &c.Synapse.Apre,
		"apost":            &c.Synapse.Apost,
		"w_min":            &c.Synapse.WMin,
		"w_max":            &c.Synapse.WMax,
		"w_init":           &c.Synapse.WInit,
		"pattern_duration": &c.Training.PatternDuration,
		"window":           &c.Training.Window,
		"jitter":           &c.Training.Jitter,
	}
}
