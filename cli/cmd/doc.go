// Package cmd implements the kconf subcommands.
//
// Every command embeds [Kconf], which carries the flags for locating and
// parsing the Kconfig tree and an optional .config file. Commands receive
// a context.Context holding the active [kong.Context], so output can be
// redirected in tests.
package cmd
