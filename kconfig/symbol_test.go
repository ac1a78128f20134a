package kconfig

import (
	"slices"
	"strings"
	"testing"
)

func sym(t *testing.T, k *Kconfig, name string) *Symbol {
	t.Helper()

	s, ok := k.LookupSym(name)
	if !ok {
		t.Fatalf("symbol %s not found", name)
	}

	return s
}

func TestSymbolDefaults(t *testing.T) {
	k := parseTest(t, `
config GATE
	bool "gate"

config A
	bool "A"
	default y if GATE
	default n

config B
	tristate "B"
	default y

config S
	string "S"
	default "hello" if GATE
	default "fallback"
`)

	a, b, s := sym(t, k, "A"), sym(t, k, "B"), sym(t, k, "S")

	if got := a.TriValue(); got != No {
		t.Errorf("A = %v, want n while GATE is off", got)
	}

	if got := s.StrValue(); got != "fallback" {
		t.Errorf("S = %q, want fallback", got)
	}

	sym(t, k, "GATE").SetValue("y")

	if got := a.TriValue(); got != Yes {
		t.Errorf("A = %v, want y with GATE on", got)
	}

	if got := s.StrValue(); got != "hello" {
		t.Errorf("S = %q, want hello with GATE on", got)
	}

	// Without module support B's tristate degrades to bool
	if got := b.Type(); got != TypeBool {
		t.Errorf("B effective type = %v, want bool", got)
	}

	if got := b.TriValue(); got != Yes {
		t.Errorf("B = %v, want y", got)
	}
}

func TestSymbolUserValue(t *testing.T) {
	k := parseTest(t, modSrc)
	a := sym(t, k, "A")

	if !a.SetValue("y") {
		t.Fatal("SetValue(y) rejected")
	}

	if got := a.TriValue(); got != Yes {
		t.Errorf("A = %v after SetValue(y)", got)
	}

	if user, ok := a.UserValue(); !ok || user != "y" {
		t.Errorf("UserValue = %q, %v", user, ok)
	}

	a.UnsetValue()

	if got := a.TriValue(); got != Mod {
		t.Errorf("A = %v after UnsetValue, want default m", got)
	}

	if _, ok := a.UserValue(); ok {
		t.Error("UserValue still set after UnsetValue")
	}

	if a.SetValue("bogus") {
		t.Error("SetValue accepted a bogus tristate")
	}

	if !containsWarning(k, "invalid") {
		t.Error("no warning for invalid value")
	}
}

func TestSymbolVisibility(t *testing.T) {
	k := parseTest(t, `
config GATE
	bool "gate"

config A
	bool "A" if GATE

config B
	bool
	default y

config C
	bool "C"
	depends on GATE
`)

	a, b, c := sym(t, k, "A"), sym(t, k, "B"), sym(t, k, "C")

	if got := a.Visibility(); got != No {
		t.Errorf("A visibility = %v, want n", got)
	}

	if got := c.Visibility(); got != No {
		t.Errorf("C visibility = %v, want n", got)
	}

	// Promptless symbols are never visible, but defaults still apply
	if got := b.Visibility(); got != No {
		t.Errorf("B visibility = %v, want n", got)
	}

	if got := b.TriValue(); got != Yes {
		t.Errorf("B = %v, want y from default", got)
	}

	// Invisible symbols ignore user values
	a.SetValue("y")

	if got := a.TriValue(); got != No {
		t.Errorf("invisible A = %v after SetValue(y), want n", got)
	}

	sym(t, k, "GATE").SetValue("y")

	if got := a.Visibility(); got != Yes {
		t.Errorf("A visibility = %v with GATE on, want y", got)
	}

	if got := a.TriValue(); got != Yes {
		t.Errorf("A = %v with GATE on, want y", got)
	}
}

func TestSymbolSelect(t *testing.T) {
	k := parseTest(t, `
config DEP
	bool "dep"

config T
	bool "T"
	depends on DEP

config V
	bool "V"

config S
	bool "S"
	default y
	select T
	select V
`)

	target := sym(t, k, "T")

	// The select forces T up even though its dependencies are unmet
	if got := target.TriValue(); got != Yes {
		t.Errorf("T = %v, want y from select", got)
	}

	if !containsWarning(k, "selected") {
		t.Error("no warning for select with unmet dependencies")
	}

	// A visible selected symbol cannot be turned off
	visible := sym(t, k, "V")
	if got := visible.Assignable(); !slices.Equal(got, []Tristate{Yes}) {
		t.Errorf("V assignable = %v, want [y]", got)
	}

	sym(t, k, "S").SetValue("n")

	if got := target.TriValue(); got != No {
		t.Errorf("T = %v with S off, want n", got)
	}

	if got := visible.TriValue(); got != No {
		t.Errorf("V = %v with S off, want n", got)
	}
}

func TestSymbolImply(t *testing.T) {
	k := parseTest(t, `
config S
	bool "S"
	default y
	imply T

config T
	bool "T"
`)

	target := sym(t, k, "T")

	if got := target.TriValue(); got != Yes {
		t.Errorf("T = %v, want y from imply", got)
	}

	// Unlike select, an implied symbol can still be disabled
	if got := target.Assignable(); !slices.Equal(got, []Tristate{No, Yes}) {
		t.Errorf("T assignable = %v, want [n y]", got)
	}

	target.SetValue("n")

	if got := target.TriValue(); got != No {
		t.Errorf("T = %v after SetValue(n), want n", got)
	}
}

func TestSymbolAssignable(t *testing.T) {
	k := parseTest(t, modSrc)

	tests := []struct {
		name string
		want []Tristate
	}{
		{"A", []Tristate{No, Mod, Yes}},
		{"B", []Tristate{No, Yes}},
		{"C", []Tristate{No, Yes}},
		{"INTA", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sym(t, k, tt.name).Assignable(); !slices.Equal(got, tt.want) {
				t.Errorf("assignable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntRange(t *testing.T) {
	k := parseTest(t, `
config I
	int "I"
	range 1 10
	default 20

config H
	hex "H"
	range 0x1 0xff
	default 0x1f
`)

	i := sym(t, k, "I")

	if got := i.StrValue(); got != "10" {
		t.Errorf("I = %q, want default clamped to 10", got)
	}

	if !containsWarning(k, "clamped") {
		t.Error("no warning for clamped default")
	}

	if !i.SetValue("5") {
		t.Fatal("SetValue(5) rejected")
	}

	if got := i.StrValue(); got != "5" {
		t.Errorf("I = %q after SetValue(5)", got)
	}

	// Out-of-range user values are kept but do not take effect
	i.SetValue("15")

	if got := i.StrValue(); got != "10" {
		t.Errorf("I = %q with out-of-range user value, want 10", got)
	}

	if !containsWarning(k, "outside the active range") {
		t.Error("no warning for out-of-range user value")
	}

	if i.SetValue("abc") {
		t.Error("SetValue accepted a non-number for an int symbol")
	}

	h := sym(t, k, "H")

	// In-range hex defaults keep their written form
	if got := h.StrValue(); got != "0x1f" {
		t.Errorf("H = %q, want 0x1f", got)
	}

	if !h.SetValue("0x80") {
		t.Fatal("SetValue(0x80) rejected")
	}

	if got := h.StrValue(); got != "0x80" {
		t.Errorf("H = %q after SetValue(0x80)", got)
	}
}

func TestIntRangeNegative(t *testing.T) {
	k := parseTest(t, `
config N
	int "N"
	range -10 10
	default -20
`)

	n := sym(t, k, "N")

	if got := n.StrValue(); got != "-10" {
		t.Errorf("N = %q, want default clamped to -10", got)
	}

	if !containsWarning(k, "clamped") {
		t.Error("no warning for clamped default")
	}

	if !n.SetValue("-5") {
		t.Fatal("SetValue(-5) rejected")
	}

	if got := n.StrValue(); got != "-5" {
		t.Errorf("N = %q after SetValue(-5)", got)
	}

	n.SetValue("-15")

	if got := n.StrValue(); got != "-10" {
		t.Errorf("N = %q with out-of-range user value, want -10", got)
	}

	if !containsWarning(k, "outside the active range") {
		t.Error("no warning for out-of-range user value")
	}
}

func TestEnvSymbol(t *testing.T) {
	k := parseTest(t, `
config ARCH
	string "arch"
	option env="TEST_ARCH"
`, WithEnv(map[string]string{"TEST_ARCH": "riscv"}))

	arch := sym(t, k, "ARCH")

	if got := arch.StrValue(); got != "riscv" {
		t.Errorf("ARCH = %q, want riscv", got)
	}

	// Environment symbols reject user assignments
	if arch.SetValue("arm") {
		t.Error("SetValue succeeded on an environment symbol")
	}

	if got := arch.StrValue(); got != "riscv" {
		t.Errorf("ARCH = %q after rejected assignment", got)
	}

	if got := arch.EnvVar(); got != "TEST_ARCH" {
		t.Errorf("EnvVar = %q", got)
	}
}

func TestUnsetEnvWarning(t *testing.T) {
	k := parseTest(t, `
config ARCH
	string "arch"
	option env="TEST_UNSET_VAR"
`, WithEnv(map[string]string{}))

	if !containsWarning(k, "environment variable is not set") {
		t.Error("no warning for unset environment variable")
	}

	if got := sym(t, k, "ARCH").StrValue(); got != "" {
		t.Errorf("ARCH = %q, want empty", got)
	}
}

func containsWarning(k *Kconfig, substr string) bool {
	for _, w := range k.Warnings() {
		if strings.Contains(w, substr) {
			return true
		}
	}

	return false
}
