// Package harness runs tour scenarios on virtual time and checks the
// result.
//
// A scenario names a list of circuits and the tour timings, plays the tour
// through the sequencer without drawing anything, and evaluates assertions
// against the recorded trace of status updates and scene renders.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: reference_tour
//	description: "Three circuits at default timings"
//	session_id: session-1
//	timing:
//	  interval: 2s
//	  duration: 1250ms
//	  frame: 625ms
//	  ease: linear
//	circuits:
//	  - {country: Aland, name: Alpha Ring, lat: 10, lng: 20, years_active: "1950-1960"}
//	assertions:
//	  - type: step_at
//	    step: 0
//	    at: 0s
//	  - type: target
//	    step: 0
//	    rotation: [-20, 10]
//
// circuits_file may replace circuits; it names a CSV table relative to the
// scenario file.
//
// # Assertion Types
//
//   - step_at: step N started (its status was shown) at the given offset
//   - arc: step N carries the arc from/to, or none
//   - target: step N rotates to the given rotation
//   - status_order: the statuses were shown in this order
//   - render_count: the scene was rendered exactly N times
//   - interrupted: exactly N transitions were cut short
//   - final_rotation: the globe ends at the given rotation
//
// # Deterministic Runs
//
// Every run uses the virtual clock and a fixed session id, so the trace is
// byte-identical across runs and can be compared against a golden file.
package harness
