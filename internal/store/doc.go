// Package store owns the authoritative user record set and its durable slot.
//
// The package has two layers:
//   - Store: the in-memory record set with ReplaceAll, AddAtTop, Update and
//     Delete. Every accepted mutation re-serialises the full set before it
//     returns.
//   - Slot: an opaque named byte slot. SQLiteSlot is the production slot; the
//     Store never looks inside it beyond the versioned snapshot envelope.
//
// # Snapshot Format
//
// The slot holds {"state":{"users":[...]},"version":1}. Only state.users is
// consumed on load. Any mismatch (bad JSON, other version, missing users,
// malformed user) is treated as "no prior data".
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// Mutations never return errors. A failed slot write is logged and reported
// to the Observer; the in-memory change stands.
package store
