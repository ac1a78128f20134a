package cmd

import (
	"context"
	"log/slog"

	"github.com/RomaVis/Kconfiglib/kconfig"
)

// Dump serializes the configuration database with computed values.
type Dump struct {
	Kconf `embed:""`

	Format string `help:"Output format" default:"yaml" enum:"yaml,json" short:"f"`
	Output string `help:"Output file or '-' for stdout" default:"-" short:"o"`
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) error {
	k, err := d.Load(ctx)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(ctx, d.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	var encode func(*kconfig.Kconfig) error

	switch d.Format {
	case "json":
		encode = func(k *kconfig.Kconfig) error { return k.EncodeJSON(out) }
	default:
		encode = func(k *kconfig.Kconfig) error { return k.EncodeYAML(out) }
	}

	if err := encode(k); err != nil {
		return ErrEncodeDump.Wrap(err).
			With(slog.String("format", d.Format))
	}

	return nil
}
