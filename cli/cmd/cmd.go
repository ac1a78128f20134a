package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/RomaVis/Kconfiglib/kconfig"
	"github.com/RomaVis/Kconfiglib/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer Kong was configured with, so tests can capture
// command output. Falls back to os.Stdout outside a Kong run.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// Kconf holds the flags shared by every command that loads a configuration
// database.
type Kconf struct {
	Kconfig string            `help:"Top-level Kconfig file"                        default:"Kconfig" short:"k"`
	Srctree string            `help:"Source tree root for relative file lookups"                                type:"existingdir"`
	Config  string            `help:"Load this .config before running the command"                    short:"c"`
	Env     map[string]string `help:"Extra $(VAR) values visible to Kconfig files"  name:"env"        short:"e"  mapsep:","`
	Quiet   bool              `help:"Suppress Kconfig warnings"                                       short:"q"`
}

// Load parses the configured Kconfig tree and applies the .config file, if
// any.
func (f *Kconf) Load(ctx context.Context) (*kconfig.Kconfig, error) {
	env := make(map[string]string)

	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			env[name] = value
		}
	}

	for name, value := range f.Env {
		env[name] = value
	}

	if f.Srctree != "" {
		env["srctree"] = f.Srctree
	}

	k, err := kconfig.Parse(f.Kconfig,
		kconfig.WithEnv(env),
		kconfig.WithLogger(log.Default()),
		kconfig.WithWarnings(!f.Quiet),
	)
	if err != nil {
		return nil, ErrLoadDatabase.Wrap(err).
			With(slog.String("kconfig", f.Kconfig))
	}

	log.DebugContext(ctx, "database loaded",
		slog.String("kconfig", f.Kconfig),
		slog.Int("symbols", len(k.DefinedSyms())),
		slog.Int("choices", len(k.Choices())),
	)

	if f.Config != "" {
		if err := k.LoadConfig(f.Config, true); err != nil {
			return nil, ErrLoadConfig.Wrap(err).
				With(slog.String("config", f.Config))
		}
	}

	return k, nil
}

// openOutput returns the destination for command output. The path "-" means
// the command's stdout, and the returned close function is a no-op in that
// case.
func openOutput(ctx context.Context, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout(ctx), func() error { return nil }, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, ErrWriteOutput.Wrap(err).
			With(slog.String("path", path))
	}

	return file, file.Close, nil
}
