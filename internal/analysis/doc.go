// Package analysis summarizes recorded runs.
//
//   - [PowerSpectrum]: spectrum of a sampled membrane potential trace
//   - [ISI], [FiringRate], [CV]: spike train statistics
//   - [Latencies]: output response delay after the last input spike
//   - [Summarize]: all of the above for one result
//
// Times are in milliseconds; rates and frequencies are reported in Hz.
//
//	st := analysis.Summarize(res.InputTimes, res.OutputTimes, res.Duration)
//	fmt.Printf("rate %.1f Hz, mean latency %.2f ms\n", st.OutputRate, st.MeanLatency)
package analysis
