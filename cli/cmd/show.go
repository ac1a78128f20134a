package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/RomaVis/Kconfiglib/kconfig"
)

// Show prints symbol definitions in Kconfig syntax, or the whole menu tree
// when no symbol is named.
type Show struct {
	Kconf `embed:""`

	Name string `arg:"" help:"Symbol or named choice to show" name:"name" optional:""`
	All  bool   `help:"Include entries that are currently invisible" short:"a"`
}

// Run executes the show command.
func (s *Show) Run(ctx context.Context) error {
	k, err := s.Load(ctx)
	if err != nil {
		return err
	}

	out := stdout(ctx)

	if s.Name != "" {
		return s.showNamed(out, k)
	}

	s.showTree(out, k.TopNode().List, 0)

	return nil
}

// showNamed prints every definition location of the named symbol or choice.
func (s *Show) showNamed(out io.Writer, k *kconfig.Kconfig) error {
	if sym, ok := k.LookupSym(s.Name); ok {
		for _, node := range sym.Nodes() {
			fmt.Fprintf(out, "# %s:%d\n%s", node.Filename, node.Linenr, node)
		}

		fmt.Fprintf(out, "# value: %s\n", sym.StrValue())

		return nil
	}

	if choice, ok := k.NamedChoices()[s.Name]; ok {
		for _, node := range choice.Nodes() {
			fmt.Fprintf(out, "# %s:%d\n%s", node.Filename, node.Linenr, node)
		}

		fmt.Fprintf(out, "# mode: %s\n", choice.StrValue())

		return nil
	}

	return ErrUnknownSymbol.With(slog.String("name", s.Name))
}

// showTree prints the menu hierarchy one entry per line, indented by depth.
func (s *Show) showTree(out io.Writer, node *kconfig.MenuNode, depth int) {
	for ; node != nil; node = node.Next {
		if s.All || node.Visible() > kconfig.No {
			fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), entryLine(node))
		}

		s.showTree(out, node.List, depth+1)
	}
}

// entryLine summarizes one menu node for tree output.
func entryLine(node *kconfig.MenuNode) string {
	switch item := node.Item.(type) {
	case *kconfig.Symbol:
		if node.HasPrompt {
			return fmt.Sprintf("%s (%s) = %s", node.Prompt, item.Name, item.StrValue())
		}

		return fmt.Sprintf("(%s) = %s", item.Name, item.StrValue())

	case *kconfig.Choice:
		prompt := node.Prompt
		if prompt == "" {
			prompt = "choice"
		}

		if sel := item.Selection(); sel != nil {
			return fmt.Sprintf("%s <%s>", prompt, sel.Name)
		}

		return fmt.Sprintf("%s <none>", prompt)

	default:
		// Menus and comments carry only their prompt.
		return node.Prompt
	}
}
