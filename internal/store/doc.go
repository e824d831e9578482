// Package store keeps compiled builds in SQLite so a document can be
// projected for new audiences without reparsing its definition.
//
// A build is content-addressed: its id is the fingerprint of the
// unfiltered IR, so writing the same definition twice stores one row.
// Every compile, filtered or not, is also recorded as a run carrying a
// UUIDv7 token, the requested audiences and the projected fingerprint.
//
// # Ordering
//
// Rows carry a seq INTEGER assigned on insert. Every listing orders by
// seq ASC, id ASC COLLATE BINARY, never by wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
