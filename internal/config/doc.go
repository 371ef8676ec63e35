// Package config defines the pipeline configuration for the mornc driver.
//
// A configuration names every artifact path exactly once and lists which
// stages are enabled. The legacy driver shared fixed string-literal paths
// informally between stages; here the paths flow through a single Config
// value that each stage consumes.
//
// Configurations are authored in CUE under a top-level "pipeline" field.
// When no configuration file is present, Default() reproduces the
// morninglang conventions:
//
//	build:  bash build.sh all            -> build/bin/morninglang
//	lower:  ./build/bin/morninglang      -> out.ll
//	native: clang++ -O3 -Igc -lgc out.ll -> out.bin
//	exec:   ./out.bin
//
// Stage execution order is fixed (build, lower, native, exec) regardless of
// the order stages appear in the enabled list.
package config
