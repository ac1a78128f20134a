// Package profile provides optional runtime profiling for the kconf
// command.
//
// The package wraps [github.com/pkg/profile] behind the "pprof" build
// tag. Binaries built without the tag carry no profiling code and all
// operations are no-ops.
//
//	go build -tags pprof ./...
//	kconf --pprof-mode=cpu --pprof-dir=/tmp/profiles dump Kconfig
//
// Profile files are written to the configured directory with names
// matching the profiling mode (cpu.pprof, mem.pprof, and so on) and
// can be inspected with go tool pprof.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
