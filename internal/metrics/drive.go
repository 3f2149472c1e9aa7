package metrics

import (
	"math"

	"github.com/san-kum/spikesim/internal/dynamo"
)

// SynapticDrive totals the absolute synaptic input delivered to the
// outputs, reported per step.
type SynapticDrive struct {
	name    string
	sum     float64
	events  int
	samples int
}

func NewSynapticDrive() *SynapticDrive {
	return &SynapticDrive{
		name: "synaptic_drive",
	}
}

func (d *SynapticDrive) Name() string {
	return d.name
}

func (d *SynapticDrive) Observe(x dynamo.State, u dynamo.Control, t float64) {
	for _, val := range u {
		if val != 0 {
			d.sum += math.Abs(val)
			d.events++
		}
	}
	d.samples++
}

func (d *SynapticDrive) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.sum / float64(d.samples)
}

// Events returns how many non-zero deliveries were observed.
func (d *SynapticDrive) Events() int { return d.events }

func (d *SynapticDrive) Reset() {
	d.sum = 0
	d.events = 0
	d.samples = 0
}
