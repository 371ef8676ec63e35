// Package pipeline implements the staged build-lower-native-exec driver.
//
// The pipeline is strictly sequential: each stage is a blocking subprocess
// invocation, and a stage runs only if every stage before it succeeded.
// Every stage returns an explicit result; the first failing stage halts
// the pipeline and is reported with its command line and exit code.
//
// The exec stage is special-cased: a non-zero exit from the produced
// program is the pipeline's result, not a failure. The driver's job for
// that stage is to surface the integer. A failure to launch the program at
// all (missing binary, not executable) is still a stage failure.
//
// Each stage validates that its required input artifact exists before
// launching the subprocess, so a missing IR file is reported as a clear
// diagnostic instead of being deferred to the native compiler.
//
// ORDERING: Stage results are stamped with a monotonic logical clock
// (Clock.Next()), never wall-clock timestamps. The journal orders stage
// records by seq, so a replayed history reads in execution order
// regardless of clock skew.
package pipeline
