// Package store provides SQLite-backed durable storage for slotmap.
//
// Three independently loaded stores share one database file:
//   - Rooms: full snapshot of every room's occupancy grid, rewritten on every mutation
//   - Accounts: identities, secrets and roles
//   - Action log: append-only Book/Cancel events
//
// # Critical Patterns
//
// Append-only log
//   - action_log rows are never updated or deleted (enforced by triggers)
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - seq is strictly increasing; gaps are allowed after a failed insert
//
// Fresh reads
//   - Scan re-runs its query on every range; there is no in-memory cache
//   - Rows failing validation are skipped and logged, never returned
//
// Snapshot writes
//   - SaveRooms upserts every room inside one transaction; rows are never deleted
//   - A failed save leaves the previously committed snapshot untouched
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single connection: callers must not issue store calls while ranging over Scan
package store
