// Package wta implements winner-take-all competitive learning with weight
// rollback on top of any engine that exposes the capabilities below.
//
// Once per window the [Rule] looks at which output neurons spiked in
// (now-window, now]. If none did, every potential is reset and the current
// weights become the new baseline. Otherwise the spiking neuron with the
// lowest pre-spike potential wins: its incoming weights keep whatever
// plasticity produced during the window, every other neuron's incoming
// weights are rolled back to the baseline and its potential is reset.
//
// The rule carries no hidden state. The baseline travels in a [State] value
// that each call consumes and returns; [Trainer] threads it between calls
// and keeps the [History].
//
// # Scheduling
//
// The engine invokes the rule at t = 0, W, 2W, ... after all events of that
// timestep. The call at k*W therefore judges the window that has just closed,
// the call at t=0 always sees an empty window, and the last window of a run
// is never judged. A run of length T produces T/W records.
package wta
