package cmd

import (
	"context"
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/RomaVis/Kconfiglib/kconfig"
)

// Search fuzzy-matches defined symbols by name and prompt text.
type Search struct {
	Kconf `embed:""`

	Query string `arg:"" help:"Fuzzy query matched against symbol names and prompts" name:"query"`
	Limit int    `help:"Maximum number of results" default:"20" short:"n"`
}

// searchEntry adapts the symbol list to fuzzy.Source. Each symbol is
// matched on "NAME prompt".
type searchEntries []*kconfig.Symbol

func (s searchEntries) String(i int) string {
	sym := s[i]
	text := sym.Name

	for _, node := range sym.Nodes() {
		if node.HasPrompt {
			text += " " + node.Prompt

			break
		}
	}

	return text
}

func (s searchEntries) Len() int { return len(s) }

// Run executes the search command.
func (s *Search) Run(ctx context.Context) error {
	k, err := s.Load(ctx)
	if err != nil {
		return err
	}

	entries := searchEntries(k.DefinedSyms())
	matches := fuzzy.FindFrom(s.Query, entries)

	if s.Limit > 0 && len(matches) > s.Limit {
		matches = matches[:s.Limit]
	}

	out := stdout(ctx)

	for _, match := range matches {
		sym := entries[match.Index]

		prompt := ""
		for _, node := range sym.Nodes() {
			if node.HasPrompt {
				prompt = node.Prompt

				break
			}
		}

		if prompt != "" {
			fmt.Fprintf(out, "%s\t%s\t%q\t%s\n",
				sym.Name, sym.Type(), prompt, sym.StrValue())
		} else {
			fmt.Fprintf(out, "%s\t%s\t\t%s\n",
				sym.Name, sym.Type(), sym.StrValue())
		}
	}

	return nil
}
