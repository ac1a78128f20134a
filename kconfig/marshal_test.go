package kconfig

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

const dumpSrc = `
mainmenu "Dump test"

config FOO
	bool "foo prompt"
	default y
	help
	  Foo help.

config BAR
	bool "bar"
	depends on FOO

choice
	prompt "pick"

config CA
	bool "ca"

config CB
	bool "cb"

endchoice
`

func findSym(t *testing.T, d *Dump, name string) SymbolDump {
	t.Helper()

	for _, sd := range d.Symbols {
		if sd.Name == name {
			return sd
		}
	}

	t.Fatalf("symbol %s not in dump", name)

	return SymbolDump{}
}

func TestDump(t *testing.T) {
	k := parseTest(t, dumpSrc)

	sym(t, k, "BAR").SetValue("y")

	d := k.Dump()

	if d.Mainmenu != "Dump test" {
		t.Errorf("mainmenu = %q", d.Mainmenu)
	}

	foo := findSym(t, d, "FOO")

	if foo.Type != "bool" || foo.Value != "y" || foo.Visibility != "y" {
		t.Errorf("FOO dump = %+v", foo)
	}

	if len(foo.Prompts) != 1 || foo.Prompts[0] != "foo prompt" {
		t.Errorf("FOO prompts = %v", foo.Prompts)
	}

	if foo.Help != "Foo help.\n" {
		t.Errorf("FOO help = %q", foo.Help)
	}

	if foo.DependsOn != "" {
		t.Errorf("FOO depends_on = %q, want empty", foo.DependsOn)
	}

	bar := findSym(t, d, "BAR")

	if bar.DependsOn != "FOO" {
		t.Errorf("BAR depends_on = %q", bar.DependsOn)
	}

	if bar.UserValue != "y" {
		t.Errorf("BAR user_value = %q", bar.UserValue)
	}

	ca := findSym(t, d, "CA")

	if ca.Choice != "<anonymous>" {
		t.Errorf("CA choice = %q", ca.Choice)
	}

	if len(d.Choices) != 1 {
		t.Fatalf("choices = %d, want 1", len(d.Choices))
	}

	cd := d.Choices[0]

	if cd.Type != "bool" || cd.Mode != "y" || cd.Selection != "CA" {
		t.Errorf("choice dump = %+v", cd)
	}

	if got := strings.Join(cd.Members, " "); got != "CA CB" {
		t.Errorf("members = %q", got)
	}
}

func TestEncodeYAML(t *testing.T) {
	k := parseTest(t, dumpSrc)

	var buf bytes.Buffer

	if err := k.EncodeYAML(&buf); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	out := buf.String()

	for _, want := range []string{
		"mainmenu: Dump test",
		"name: FOO",
		"depends_on: FOO",
		"selection: CA",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML output missing %q:\n%s", want, out)
		}
	}
}

func TestEncodeJSON(t *testing.T) {
	k := parseTest(t, dumpSrc)

	var buf bytes.Buffer

	if err := k.EncodeJSON(&buf); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var d Dump
	if err := json.Unmarshal(buf.Bytes(), &d); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if d.Mainmenu != "Dump test" {
		t.Errorf("mainmenu = %q", d.Mainmenu)
	}

	if got := len(d.Symbols); got != 4 {
		t.Errorf("symbols = %d, want 4", got)
	}

	if bar := findSym(t, &d, "BAR"); bar.DependsOn != "FOO" {
		t.Errorf("BAR depends_on = %q", bar.DependsOn)
	}
}
