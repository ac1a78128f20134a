package kconfig

import (
	"encoding/json"
	"io"

	"github.com/goccy/go-yaml"
)

// SymbolDump is the serializable snapshot of one symbol.
type SymbolDump struct {
	Name       string   `yaml:"name"       json:"name"`
	Type       string   `yaml:"type"       json:"type"`
	Value      string   `yaml:"value"      json:"value"`
	Visibility string   `yaml:"visibility" json:"visibility"`
	UserValue  string   `yaml:"user_value,omitempty" json:"user_value,omitempty"`
	Prompts    []string `yaml:"prompts,omitempty"    json:"prompts,omitempty"`
	DependsOn  string   `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Choice     string   `yaml:"choice,omitempty"     json:"choice,omitempty"`
	Help       string   `yaml:"help,omitempty"       json:"help,omitempty"`
}

// ChoiceDump is the serializable snapshot of one choice.
type ChoiceDump struct {
	Name      string   `yaml:"name,omitempty" json:"name,omitempty"`
	Type      string   `yaml:"type"           json:"type"`
	Mode      string   `yaml:"mode"           json:"mode"`
	Selection string   `yaml:"selection,omitempty" json:"selection,omitempty"`
	Optional  bool     `yaml:"optional,omitempty"  json:"optional,omitempty"`
	Members   []string `yaml:"members"        json:"members"`
}

// Dump is a serializable snapshot of the whole configuration database,
// with values as currently computed.
type Dump struct {
	Mainmenu string       `yaml:"mainmenu" json:"mainmenu"`
	Symbols  []SymbolDump `yaml:"symbols"  json:"symbols"`
	Choices  []ChoiceDump `yaml:"choices,omitempty" json:"choices,omitempty"`
}

// Dump snapshots the database for serialization. Only defined symbols are
// included, in definition order.
func (k *Kconfig) Dump() *Dump {
	d := &Dump{
		Mainmenu: k.MainmenuText(),
		Symbols:  make([]SymbolDump, 0, len(k.definedSyms)),
	}

	for _, sym := range k.definedSyms {
		sd := SymbolDump{
			Name:       sym.Name,
			Type:       sym.Type().String(),
			Value:      sym.StrValue(),
			Visibility: sym.Visibility().String(),
		}

		if user, ok := sym.UserValue(); ok {
			sd.UserValue = user
		}

		for _, node := range sym.nodes {
			if node.HasPrompt {
				sd.Prompts = append(sd.Prompts, node.Prompt)
			}

			if node.Help != "" && sd.Help == "" {
				sd.Help = node.Help
			}
		}

		if sym.directDep != nil && sym.directDep != k.yExpr() {
			sd.DependsOn = exprString(sym.directDep)
		}

		if sym.choice != nil {
			sd.Choice = sym.choice.Name
			if sd.Choice == "" {
				sd.Choice = "<anonymous>"
			}
		}

		d.Symbols = append(d.Symbols, sd)
	}

	for _, choice := range k.choices {
		cd := ChoiceDump{
			Name:     choice.Name,
			Type:     choice.Type().String(),
			Mode:     choice.StrValue(),
			Optional: choice.isOptional,
			Members:  make([]string, 0, len(choice.syms)),
		}

		if sel := choice.Selection(); sel != nil {
			cd.Selection = sel.Name
		}

		for _, sym := range choice.syms {
			cd.Members = append(cd.Members, sym.Name)
		}

		d.Choices = append(d.Choices, cd)
	}

	return d
}

// EncodeYAML writes the database snapshot to w as YAML.
func (k *Kconfig) EncodeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w, yaml.Indent(2))
	defer enc.Close()

	if err := enc.Encode(k.Dump()); err != nil {
		return WrapError(err)
	}

	return nil
}

// EncodeJSON writes the database snapshot to w as indented JSON.
func (k *Kconfig) EncodeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(k.Dump()); err != nil {
		return WrapError(err)
	}

	return nil
}
