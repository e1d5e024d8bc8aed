// Package analysis summarises simulated trajectories.
//
// The package includes:
//
//   - [PopulationStats]: per-time mean, standard deviation and 95% CI across cells
//   - [Summarize]: shape and per-species range of a trajectory matrix
//   - [DominantPeriod]: oscillation period of a sampled series via FFT
//
// # Oscillations
//
// Negative feedback through DUSP and SOS makes ERK activity pulse. The
// period of the strongest non-DC component is a compact readout:
//
//	period := analysis.DominantPeriod(times, erkPP)
//	if period > 0 {
//	    // series oscillates
//	}
package analysis
