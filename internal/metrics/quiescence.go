package metrics

import (
	"math"

	"github.com/san-kum/spikesim/internal/dynamo"
)

// Quiescence is the fraction of steps in which every potential stayed at or
// below level.
type Quiescence struct {
	name       string
	level      float64
	violations int
	samples    int
}

func NewQuiescence(level float64) *Quiescence {
	return &Quiescence{
		name:  "quiescence",
		level: level,
	}
}

func (q *Quiescence) Name() string {
	return q.name
}

func (q *Quiescence) Observe(x dynamo.State, u dynamo.Control, t float64) {
	q.samples++
	for _, val := range x {
		if math.Abs(val) > q.level {
			q.violations++
			break
		}
	}
}

func (q *Quiescence) Value() float64 {
	if q.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(q.violations)/float64(q.samples)
}

func (q *Quiescence) Reset() {
	q.violations = 0
	q.samples = 0
}
