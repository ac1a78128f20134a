package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/RomaVis/Kconfiglib/kconfig"
	"github.com/RomaVis/Kconfiglib/log"
)

// defconfigOut holds the flags shared by the configuration generators.
type defconfigOut struct {
	Output    string `help:"Output configuration file"                   default:".config" short:"o"`
	Allconfig string `help:"Override file applied after value selection"`
}

// write applies the KCONFIG_ALLCONFIG override, if any, and writes the
// resulting configuration.
func (d *defconfigOut) write(ctx context.Context, k *kconfig.Kconfig) error {
	override := d.Allconfig
	if override == "" {
		override = os.Getenv("KCONFIG_ALLCONFIG")
	}

	if override != "" {
		if err := k.LoadConfig(override, false); err != nil {
			return ErrLoadConfig.Wrap(err).
				With(slog.String("allconfig", override))
		}
	}

	if err := k.WriteConfig(d.Output, ""); err != nil {
		return ErrWriteOutput.Wrap(err).
			With(slog.String("path", d.Output))
	}

	log.InfoContext(ctx, "configuration written",
		slog.String("path", d.Output),
	)

	return nil
}

// Alldefconfig writes a configuration with every symbol at its default
// value.
type Alldefconfig struct {
	Kconf        `embed:""`
	defconfigOut `embed:""`
}

// Run executes the alldefconfig command.
func (c *Alldefconfig) Run(ctx context.Context) error {
	k, err := c.Load(ctx)
	if err != nil {
		return err
	}

	return c.write(ctx, k)
}

// Allnoconfig writes a configuration with every bool and tristate symbol
// set to n, except symbols marked allnoconfig_y.
type Allnoconfig struct {
	Kconf        `embed:""`
	defconfigOut `embed:""`
}

// Run executes the allnoconfig command.
func (c *Allnoconfig) Run(ctx context.Context) error {
	k, err := c.Load(ctx)
	if err != nil {
		return err
	}

	for _, sym := range k.DefinedSyms() {
		if t := sym.Type(); t != kconfig.TypeBool && t != kconfig.TypeTristate {
			continue
		}

		if sym.IsAllNoconfigY() {
			sym.SetTriValue(kconfig.Yes)
		} else {
			sym.SetTriValue(kconfig.No)
		}
	}

	return c.write(ctx, k)
}

// Allyesconfig writes a configuration with every symbol as high as its
// visibility allows.
type Allyesconfig struct {
	Kconf        `embed:""`
	defconfigOut `embed:""`
}

// Run executes the allyesconfig command.
func (c *Allyesconfig) Run(ctx context.Context) error {
	k, err := c.Load(ctx)
	if err != nil {
		return err
	}

	// Choice members are driven by their choice's mode and selection.
	for _, sym := range k.DefinedSyms() {
		if sym.Choice() != nil {
			continue
		}

		if t := sym.Type(); t != kconfig.TypeBool && t != kconfig.TypeTristate {
			continue
		}

		if vis := sym.Visibility(); vis > kconfig.No {
			sym.SetTriValue(vis)
		}
	}

	for _, choice := range k.Choices() {
		choice.SetTriValue(kconfig.Yes)
	}

	return c.write(ctx, k)
}
