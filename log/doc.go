// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A process-wide default logger backs the package-level functions. It is
// reconfigured in place with [Config], which lets the CLI apply logging
// flags before any subcommand runs:
//
//	log.Config(log.WithLevel(log.LevelDebug), log.WithFormat(log.FormatText))
//	log.Info("configuration loaded", slog.Int("symbols", n))
//
// Independent loggers can be created with [Make] for components that need
// their own level or output, such as the engine's suppressible warning
// channel.
//
// Two output formats are supported, [FormatJSON] and [FormatText]. In text
// format a colorized pretty handler is used when enabled and the output is
// a terminal.
package log
