// Package record defines the canonical user record and its provenance.
//
// This package contains type definitions and the input validation boundary
// only. Every other internal package imports record; record imports nothing
// internal.
//
// Key constraints:
//   - ID is unique across the whole record set
//   - CreatedAt is non-nil if and only if Origin is Local
//   - Name and Email are validated by callers before a mutation, never by the store
package record
