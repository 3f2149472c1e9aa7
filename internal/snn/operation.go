package snn

import (
	"fmt"
	"math"
)

// When selects the schedule slot an operation runs in.
type When int

const (
	WhenStart When = iota
	WhenEnd
)

func (w When) String() string {
	switch w {
	case WhenStart:
		return "start"
	case WhenEnd:
		return "end"
	default:
		return fmt.Sprintf("When(%d)", int(w))
	}
}

// Operation is a callback the network invokes every Interval milliseconds,
// starting at t=0. Fn receives the current network time.
type Operation struct {
	Name     string
	Interval float64
	When     When
	Fn       func(t float64) error
}

type scheduledOp struct {
	Operation
	every int
}

func (o Operation) bind(dt float64) (*scheduledOp, error) {
	if o.Fn == nil {
		return nil, fmt.Errorf("%w: %s has no callback", ErrInvalidInterval, o.Name)
	}
	every := int(math.Round(o.Interval / dt))
	if o.Interval <= 0 || every < 1 || math.Abs(float64(every)*dt-o.Interval) > dt*1e-6 {
		return nil, fmt.Errorf("%w: %s interval %vms with dt %vms", ErrInvalidInterval, o.Name, o.Interval, dt)
	}
	return &scheduledOp{Operation: o, every: every}, nil
}

func (o *scheduledOp) due(step int) bool {
	return step%o.every == 0
}
