// Package harness replays scripted pipeline scenarios for tests.
//
// A scenario is a YAML file naming the outcome of each stage command
// (exit code, launch failure, artifact side effects), which stages are
// enabled, and what the run is expected to produce. The harness executes
// the scenario against the real pipeline with a scripted command runner
// in a scratch directory, captures a deterministic transcript, and
// compares it against golden files with goldie.
//
// The harness is test infrastructure: it is consumed by _test.go files,
// not wired to a user-facing command.
package harness
