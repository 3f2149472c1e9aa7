package integrators

import "github.com/san-kum/spikesim/internal/dynamo"

// Exact advances systems that implement dynamo.Solvable in closed form and
// falls back to RK4 for everything else.
type Exact struct {
	fallback *RK4
}

func NewExact() *Exact {
	return &Exact{fallback: NewRK4()}
}

func (e *Exact) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	if s, ok := dyn.(dynamo.Solvable); ok {
		return s.Advance(x, u, t, dt)
	}
	return e.fallback.Step(dyn, x, u, t, dt)
}
