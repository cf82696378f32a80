// Package model provides the domain types shared by every slotmap package.
//
// This package contains type definitions, boundary parsing, and record
// validation only. All other internal packages import model; model imports
// nothing internal.
//
// Key design constraints:
//   - A slot is the (room, day, hour) triple; days are 0=Sun..6=Sat, hours 0-23
//   - Log entries are ordered by Seq (append position), never by wall time
//   - Room ids encode floor*100+unit with floor 1-9 and unit 1-99
//   - Records reloaded from storage are validated, never trusted
package model
