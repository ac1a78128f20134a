// Package cli contains the command line interface for kconf.
//
// # Usage
//
//	kconf dump -k Kconfig --format=yaml
//	kconf eval -k Kconfig 'FOO && !BAR'
//	kconf search -k Kconfig serial
//	kconf show -k Kconfig FOO
//	kconf alldefconfig -k Kconfig -o .config
//
// Every subcommand shares the database flags: -k selects the top-level
// Kconfig file, --srctree sets the root for relative file lookups, -c
// loads an existing .config, and -e injects $(VAR) values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorized pretty printing
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof ./...
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
