// Package history keeps in-memory, per-session conversation history.
//
// Invariants:
// - A session never holds more than MaxHistoryLength turns after a mutation completes.
// - Appends to the same session are serialized.
// - Reads return snapshots, never aliases of internal state.
package history
