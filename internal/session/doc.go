// Package session reconciles polled automation snapshots into a single view.
//
// The backend's workflow is opaque and its status endpoint may be polled
// concurrently, so results can arrive out of order or repeat earlier data. A
// Tracker enforces the client-side invariants at this boundary:
//
//   - Every poll takes a Ticket from Begin before it is issued. Apply and Fail
//     ignore results older than the newest ticket already applied.
//   - Progress is recomputed from (currentStep, totalSteps) and never moves
//     backwards within a run. A totalSteps of zero keeps the previous value.
//   - The running to stopped transition is reported exactly once, through
//     Delta.Terminal and a queued Notice. Progress is frozen afterwards.
//   - Log entries are appended in received order and de-duplicated by
//     (timestamp, message).
//   - The in-flight generation is overwritten on every apply.
//
// Failed polls leave the last-known view untouched and only bump the failure
// counters, mirroring how the UI shows an offline backend.
package session
