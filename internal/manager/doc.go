// Package manager owns the reconciliation engine and is the single writer of
// its state. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor helpers, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: manager state and the Snapshot projection.
//   - errors.go: error types and helpers (IsNotFound, IsInvalidSetting).
//   - events.go, eventpub_memory.go: user-facing events and the bounded in-memory feed.
//   - loop.go: the inbox loop (Run, Enqueue) that serializes push handling and reloads.
//   - handle.go: push notification handling and transition effects.
//   - renderings.go: rendering load and suppression toggles.
//   - ops.go, settings.go: documented mutations forwarded to the backend.
//   - status_report.go: read-only views for the HTTP layer.
//
// Push notifications are applied strictly in arrival order. A transition's
// reload completes before the next notification is looked at, so a status
// arriving mid-reload is applied after the merge.
//
// External packages should use public methods only (NewWithConfig, Run,
// Enqueue, the views and the mutations). Internal types are subject to change.
package manager
