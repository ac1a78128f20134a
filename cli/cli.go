package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/RomaVis/Kconfiglib/cli/cmd"
	"github.com/RomaVis/Kconfiglib/pkg"
)

// CLI is the top-level command-line interface for kconf.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Dump         cmd.Dump         `cmd:"" help:"Serialize the database as YAML or JSON"`
	Eval         cmd.Eval         `cmd:"" help:"Evaluate a Kconfig expression"`
	Search       cmd.Search       `cmd:"" help:"Fuzzy-search symbols by name and prompt"`
	Show         cmd.Show         `cmd:"" help:"Print symbol definitions or the menu tree"`
	Alldefconfig cmd.Alldefconfig `cmd:"" help:"Write a configuration with default values"`
	Allnoconfig  cmd.Allnoconfig  `cmd:"" help:"Write a configuration with everything disabled"`
	Allyesconfig cmd.Allyesconfig `cmd:"" help:"Write a configuration with everything enabled"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`
}

// Run executes the kconf CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Vars{"version": pkg.Version}.CloneWith(cli.Pprof.vars()),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}
