// Package harness runs reservation scenarios end to end.
//
// A scenario provisions rooms and accounts in a fresh in-memory store,
// optionally stages grid/log disagreements, drives a flow of requests
// through booking.Service and then asserts on the final grid and log.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	rooms:
//	  - id: 101
//	  - { id: 201, department: EEE, category: general }
//	accounts:
//	  - { identity: alice, secret: pw1 }
//	  - { identity: admin, secret: pw2, role: admin }
//	setup:
//	  - { kind: occupy, room: 102, day: Tue, hour: 10AM }
//	  - { kind: log, room: 201, day: Wed, hour: 1PM, actor: alice, action: book }
//	flow:
//	  - op: book
//	    actor: alice
//	    room: 101
//	    day: Mon
//	    hour: 9AM
//	    expect:
//	      state: committed
//	  - { op: cancel, actor: alice, room: 101, day: Mon, hour: 9AM, fail: append }
//	assertions:
//	  - { type: slot_state, room: 101, day: Mon, hour: 9AM, free: true }
//	  - { type: verify, violations: [booked_but_free] }
//
// Flow ops are book, cancel, add_room and register. A fail clause of save
// or append makes the store reject that write for the one step.
//
// # Assertion Types
//
//   - slot_state: the grid flag of a slot
//   - last_action: the last log entry of a slot (book, cancel or none)
//   - log_count: the number of stored log entries
//   - history: an actor's history size and cancelled-by-other count
//   - active_bookings: how many slots an actor currently holds
//   - verify: the violation kinds reported by a full reconciliation
//
// # Deterministic Testing
//
// Every transaction carries the same fixed request id and log seqs start at
// 1 in each fresh database, so Snapshot output is identical across runs
// and can be compared against golden files with RunWithGolden.
package harness
