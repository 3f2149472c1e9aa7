package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/spikesim/internal/dynamo"
)

// leak is dv/dt = -v/tau, the membrane equation without input.
type leak struct{ tau float64 }

func (l *leak) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	for i := range x {
		dx[i] = -x[i] / l.tau
	}
	return dx
}

func (l *leak) StateDim() int   { return 1 }
func (l *leak) ControlDim() int { return 0 }

type solvableLeak struct{ leak }

func (s *solvableLeak) Advance(x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	out := make(dynamo.State, len(x))
	f := math.Exp(-dt / s.tau)
	for i := range x {
		out[i] = x[i] * f
	}
	return out
}

type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int   { return 2 }
func (o *oscillator) ControlDim() int { return 0 }

func integrate(integ dynamo.Integrator, dyn dynamo.System, x dynamo.State, dt float64, steps int) dynamo.State {
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, nil, float64(i)*dt, dt)
	}
	return x
}

func TestLeakAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 1e-3},
		{"rk4", NewRK4(), 1e-9},
		{"exact-fallback", NewExact(), 1e-9},
	}

	want := math.Exp(-1.0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := integrate(tt.integ, &leak{tau: 3}, dynamo.State{1}, 0.01, 300)
			if math.Abs(x[0]-want) > tt.tol {
				t.Errorf("got %.8f, want %.8f (tol %g)", x[0], want, tt.tol)
			}
		})
	}
}

func TestExactUsesClosedForm(t *testing.T) {
	x := integrate(NewExact(), &solvableLeak{leak{tau: 3}}, dynamo.State{1}, 0.01, 300)
	if math.Abs(x[0]-math.Exp(-1.0)) > 1e-12 {
		t.Errorf("closed form drifted: got %.15f", x[0])
	}
}

func TestRK4Oscillator(t *testing.T) {
	x := integrate(NewRK4(), &oscillator{}, dynamo.State{1, 0}, 0.01, 100)

	if math.Abs(x[0]-math.Cos(1)) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], math.Cos(1))
	}
	if math.Abs(x[1]+math.Sin(1)) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], -math.Sin(1))
	}
}

func BenchmarkExact(b *testing.B) {
	dyn := &solvableLeak{leak{tau: 3}}
	integ := NewExact()
	x := dynamo.State{1, 1, 1, 1}
	for i := 0; i < b.N; i++ {
		x = integ.Step(dyn, x, nil, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	dyn := &leak{tau: 3}
	integ := NewRK4()
	x := dynamo.State{1, 1, 1, 1}
	for i := 0; i < b.N; i++ {
		x = integ.Step(dyn, x, nil, 0, 0.01)
	}
}
