// Package snn is a clock-driven spiking network engine.
//
// A [Network] owns spike sources ([SpikeGenerator]), leaky integrate-and-fire
// populations ([NeuronGroup]), plastic connections ([Synapses]) and monitors.
// Every timestep runs the same fixed schedule:
//
//	start       operations scheduled WhenStart, state monitors record
//	groups      membrane potentials advance by one dt
//	thresholds  generators emit, groups detect v > threshold
//	synapses    on_pre pathway, then on_post pathway
//	resets      spiking neurons return to their reset potential
//	end         operations scheduled WhenEnd
//
// Time is measured in milliseconds. The step counter is the source of truth:
// the network time is always step*dt, and window queries are answered on step
// indices so that boundaries never depend on float rounding.
package snn
