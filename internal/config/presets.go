package config

import "sort"

// Presets are keyed by protocol, then preset name. GetPreset returns a copy
// layered over DefaultConfig.
var Presets = map[string]map[string]func(*Config){
	"demo": {
		"default": func(c *Config) {},
		"weak": func(c *Config) {
			c.Synapse.WInit = 0.6
		},
		"late": func(c *Config) {
			c.Input.Times = []float64{0, 9.0}
		},
		"burst": func(c *Config) {
			c.Input.Indices = []int{0, 0, 0, 0}
			c.Input.Times = []float64{0, 1, 2, 3}
		},
	},
	"training": {
		"default": func(c *Config) {},
		"fast": func(c *Config) {
			c.Training.Epochs = 2
		},
		"wide": func(c *Config) {
			c.Outputs = 2
			c.Synapse.WInit = 0.8
		},
		"jitter": func(c *Config) {
			c.Training.Jitter = 0.5
			c.Seed = 1
		},
	},
}

func GetPreset(protocol, preset string) *Config {
	protocolPresets, ok := Presets[protocol]
	if !ok {
		return nil
	}
	apply, ok := protocolPresets[preset]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Protocol = protocol
	apply(cfg)
	return cfg
}

func ListPresets(protocol string) []string {
	protocolPresets, ok := Presets[protocol]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(protocolPresets))
	for name := range protocolPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListProtocols returns every protocol with presets.
func ListProtocols() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
