// Package harness runs scripted node store scenarios.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: leaf_beside_branch
//	description: "A leaf next to a branch gets a padding cell below it"
//	seed:               # optional [id, parent] rows imported before the run
//	  - [1, 0]
//	steps:
//	  - load: true
//	    loaded: 1
//	  - add: /1
//	  - fail: 1         # next authority request fails
//	  - add: /1
//	    expect: authority_failure
//	  - remove: /9
//	    expect: not_found
//	assertions:
//	  - type: width
//	    value: 1
//	  - type: children
//	    node: /1
//	    children: ["2"]
//
// Step outcomes are ok (the default), not_found or authority_failure.
// Assertions are width, rows, present, absent and children.
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory SQLite database, so node
// ids are issued 1, 2, 3, ... (or continue after the highest seeded id).
// Authority requests are traced and numbered by testutil.DeterministicClock,
// which makes the trace and final grid stable enough for golden files.
package harness
