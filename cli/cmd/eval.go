package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Eval evaluates a Kconfig expression against the loaded database and
// prints its tristate value.
type Eval struct {
	Kconf `embed:""`

	Expr []string `arg:"" help:"Expression to evaluate, e.g. 'FOO && !BAR'" name:"expr"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) error {
	k, err := e.Load(ctx)
	if err != nil {
		return err
	}

	expr := strings.Join(e.Expr, " ")

	value, err := k.EvalString(expr)
	if err != nil {
		return ErrEvalExpr.Wrap(err).
			With(slog.String("expr", expr))
	}

	out := stdout(ctx)
	fmt.Fprintln(out, value)

	return nil
}
