// Package primitives provides the foundational value types for the
// threading layer: lifecycle states, priority levels, thread identities,
// the error taxonomy, transition events and declarative thread profiles.
//
// This package imports nothing from the rest of the module. Everything else
// (synchronisation primitives, the thread runtime, persisters) builds on it.
//
// Core invariants:
//   - States only move along the edges reported by CanTransition
//   - Priority values are always one of the five declared levels
//   - Error codes are stable and comparable with errors.Is
//
//go:generate go test ./... -race
package primitives
