// Package journal provides SQLite-backed recording of pipeline runs.
//
// The journal is an append-only log with two tables:
//   - runs: one row per pipeline run (run ID, config fingerprint, outcome)
//   - stage_records: one row per stage attempt within a run
//
// Stage records are ordered by a logical seq number stamped by the
// pipeline clock, never by wall time, so a run's history reads back in
// execution order regardless of clock adjustments.
//
// The journal is optional: the driver runs without one, and `mornc run`
// only opens a database when --journal is given. `mornc history` reads it
// back.
package journal
