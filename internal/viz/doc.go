// Package viz renders result files in the terminal.
//
//   - [RenderSummary]: the file-content panel printed after a run
//   - [Browser]: a Bubble Tea model for stepping through trajectories
//
// # Key Bindings
//
//	←/→ h/l - Previous/next series
//	Tab     - Switch between observables and species
//	q       - Quit
package viz
