package kconfig

import (
	"slices"
	"testing"
)

const boolChoiceSrc = `
choice
	bool "Pick one"

config CA
	bool "CA"

config CB
	bool "CB"

config CC
	bool "CC"

endchoice
`

func TestBoolChoice(t *testing.T) {
	k := parseTest(t, boolChoiceSrc)

	if len(k.Choices()) != 1 {
		t.Fatalf("got %d choices, want 1", len(k.Choices()))
	}

	choice := k.Choices()[0]

	if got := choice.TriValue(); got != Yes {
		t.Errorf("choice mode = %v, want y", got)
	}

	// The first visible member is selected by default
	if got := choice.Selection(); got != sym(t, k, "CA") {
		t.Errorf("selection = %v, want CA", got)
	}

	if got := sym(t, k, "CA").TriValue(); got != Yes {
		t.Errorf("CA = %v, want y", got)
	}

	if got := sym(t, k, "CB").TriValue(); got != No {
		t.Errorf("CB = %v, want n", got)
	}

	// Setting a member to y moves the selection
	sym(t, k, "CB").SetValue("y")

	if got := choice.Selection(); got != sym(t, k, "CB") {
		t.Errorf("selection = %v after CB=y, want CB", got)
	}

	if got := sym(t, k, "CA").TriValue(); got != No {
		t.Errorf("CA = %v after CB=y, want n", got)
	}

	// Choice members only accept y in y mode
	if got := sym(t, k, "CC").Assignable(); !slices.Equal(got, []Tristate{Yes}) {
		t.Errorf("CC assignable = %v, want [y]", got)
	}
}

func TestChoiceDefault(t *testing.T) {
	k := parseTest(t, `
choice
	bool "Pick one"
	default CB

config CA
	bool "CA"

config CB
	bool "CB"

endchoice
`)

	choice := k.Choices()[0]

	if got := choice.Selection(); got != sym(t, k, "CB") {
		t.Errorf("selection = %v, want default CB", got)
	}

	// A user selection overrides the default
	sym(t, k, "CA").SetValue("y")

	if got := choice.Selection(); got != sym(t, k, "CA") {
		t.Errorf("selection = %v, want CA", got)
	}
}

func TestOptionalChoice(t *testing.T) {
	k := parseTest(t, `
choice
	bool "Pick one"
	optional

config CA
	bool "CA"

config CB
	bool "CB"

endchoice
`)

	choice := k.Choices()[0]

	if got := choice.TriValue(); got != No {
		t.Errorf("optional choice mode = %v, want n", got)
	}

	if got := choice.Selection(); got != nil {
		t.Errorf("selection = %v in n mode, want nil", got)
	}

	if got := sym(t, k, "CA").TriValue(); got != No {
		t.Errorf("CA = %v in n mode, want n", got)
	}

	choice.SetTriValue(Yes)

	if got := choice.Selection(); got != sym(t, k, "CA") {
		t.Errorf("selection = %v after y mode, want CA", got)
	}

	if got := choice.Assignable(); !slices.Equal(got, []Tristate{No, Yes}) {
		t.Errorf("assignable = %v, want [n y]", got)
	}
}

func TestTristateChoice(t *testing.T) {
	k := parseTest(t, `
config MODULES
	bool "modules"
	default y
	option modules

choice
	tristate "Pick some"

config CA
	tristate "CA"

config CB
	tristate "CB"

endchoice
`)

	choice := k.Choices()[0]

	// Tristate choices sit in m mode until the user says otherwise
	if got := choice.TriValue(); got != Mod {
		t.Errorf("choice mode = %v, want m", got)
	}

	if got := choice.Selection(); got != nil {
		t.Errorf("selection = %v in m mode, want nil", got)
	}

	// In m mode members can be m individually
	ca, cb := sym(t, k, "CA"), sym(t, k, "CB")

	ca.SetValue("m")
	cb.SetValue("m")

	if ca.TriValue() != Mod || cb.TriValue() != Mod {
		t.Errorf("members = %v, %v in m mode, want m, m", ca.TriValue(), cb.TriValue())
	}

	// y mode enforces a single selection, falling back to the first
	// visible member
	choice.SetTriValue(Yes)

	if got := choice.Selection(); got != ca {
		t.Errorf("selection = %v in y mode, want first member CA", got)
	}

	if got := cb.TriValue(); got != No {
		t.Errorf("CB = %v in y mode, want n", got)
	}

	cb.SetValue("y")

	if got := choice.Selection(); got != cb {
		t.Errorf("selection = %v, want CB", got)
	}

	if got := cb.TriValue(); got != Yes {
		t.Errorf("CB = %v, want y", got)
	}

	if got := choice.Assignable(); !slices.Equal(got, []Tristate{Mod, Yes}) {
		t.Errorf("assignable = %v, want [m y]", got)
	}
}

// A member whose dependencies nest it under another member belongs to the
// menu tree but not to the selection group.
func TestChoiceNestedMember(t *testing.T) {
	k := parseTest(t, `
choice
	bool "Pick one"

config CA
	bool "CA"

config CN
	bool "CN" if CA

config CB
	bool "CB"

endchoice
`)

	choice := k.Choices()[0]

	members := make([]string, 0, len(choice.Syms()))
	for _, s := range choice.Syms() {
		members = append(members, s.Name)
	}

	if !slices.Equal(members, []string{"CA", "CB"}) {
		t.Errorf("members = %v, want [CA CB]", members)
	}

	if got := sym(t, k, "CN").Choice(); got != nil {
		t.Error("nested symbol adopted into the choice")
	}
}

func TestNamedChoiceMerge(t *testing.T) {
	k := parseTest(t, `
choice GROUP
	bool "Pick one"

config CA
	bool "CA"

endchoice

choice GROUP

config CB
	bool "CB"

endchoice
`)

	if len(k.Choices()) != 1 {
		t.Fatalf("got %d choices, want 1 merged", len(k.Choices()))
	}

	choice, ok := k.NamedChoices()["GROUP"]
	if !ok {
		t.Fatal("choice GROUP not found")
	}

	if len(choice.Syms()) != 2 {
		t.Errorf("got %d members, want 2", len(choice.Syms()))
	}

	if len(choice.Nodes()) != 2 {
		t.Errorf("got %d nodes, want 2", len(choice.Nodes()))
	}
}
