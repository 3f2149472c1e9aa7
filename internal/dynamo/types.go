package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Control is the external drive applied to a system during one step.
type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Solvable systems can be advanced exactly over dt without numerical
// integration.
type Solvable interface {
	System
	Advance(x State, u Control, t, dt float64) State
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Config holds the clock settings of a run. Times are in milliseconds.
type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      50.0,
		ValidateState: true,
	}
}

// Validate reports the first invalid clock setting.
func (c Config) Validate() error {
	if c.Dt <= 0 {
		return ErrInvalidTimestep
	}
	if c.Duration <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Steps returns the number of whole timesteps needed to cover d.
func (c Config) Steps(d float64) int {
	return int(math.Round(d / c.Dt))
}
