// Package dynamo provides core simulation primitives for spiking networks.
//
// The package defines the fundamental interfaces and types shared by the
// engine and the numerical steppers:
//
//   - [State]: vector of continuous state variables (membrane potentials)
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Solvable]: systems with a closed-form solution over one step
//   - [Integrator]: numerical integrator interface
//   - [Metric], [Observer]: per-step hooks
//   - [Ensemble]: runs independent simulations on a bounded worker pool
//
// # Example
//
//	grp := snn.NewNeuronGroup(1, snn.DefaultLIF())
//	net := snn.NewNetwork(dynamo.DefaultConfig(), integrators.NewExact())
//	net.Add(grp)
//	err := net.Run(ctx, 50)
//
// # Thread Safety
//
// Networks and the objects they own are NOT thread-safe. For parallel runs,
// build one network per job and use [Ensemble].
package dynamo
