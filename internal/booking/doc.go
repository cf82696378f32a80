// Package booking runs booking and cancellation transactions across the
// occupancy grid, the rooms snapshot and the action log.
//
// A transaction checks the grid, resolves ownership from the log, flips the
// grid flag, persists the full snapshot and finally appends a log entry, in
// that order. A failed snapshot write restores the in-memory flag and nothing
// is logged. A failed log append after a durable snapshot does not undo the
// booking; it is reported as a LOG_APPEND_FAILED warning and the grid is left
// ahead of the log until someone reconciles them by hand.
//
// Service holds one mutex around every transaction and query, so the
// check-mutate-persist-append sequence never interleaves.
package booking
