package kconfig

import (
	"errors"
	"testing"
)

// parseTest parses Kconfig source held in a string, failing the test on
// error. Warnings stay enabled and recorded.
func parseTest(t *testing.T, src string, opts ...Option) *Kconfig {
	t.Helper()

	k, err := ParseString(src, opts...)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	return k
}

const modSrc = `
config MODULES
	bool "Enable modules"
	default y
	option modules

config A
	tristate "A"
	default m

config B
	bool "B"
	default y

config C
	bool "C"

config INTA
	int "int symbol"
	default 7

config HEXA
	hex "hex symbol"
	default 0x20
`

func TestEvalString(t *testing.T) {
	tests := []struct {
		expr string
		want Tristate
	}{
		{"y", Yes},
		{"n", No},
		{"A", Mod},
		{"B", Yes},
		{"C", No},
		{"!A", Mod},
		{"!B", No},
		{"A && B", Mod},
		{"A || C", Mod},
		{"B || A", Yes},
		{"A && C", No},
		{"!(A && B)", Mod},
		{"A = m", Yes},
		{"A = y", No},
		{"A != y", Yes},
		{"C = n", Yes},
		{"A < B", Yes},
		{"B <= B", Yes},
		{"INTA = 7", Yes},
		{"INTA < 8", Yes},
		{"INTA >= 8", No},
		{"INTA != 7", No},
		{"INTA < -138", No},
		{"INTA > -138", Yes},
		{"-138 < INTA", Yes},
		{`"-138" < INTA`, Yes},
		{"HEXA = 0x20", Yes},
		{"HEXA = 32", Yes},
		{"HEXA > 0x1f", Yes},
		{`"foo" = "foo"`, Yes},
		{`"foo" != "bar"`, Yes},
		{`"abc" < "abd"`, Yes},
		{"UNDEFINED = UNDEFINED", Yes},
		{`UNDEFINED = "UNDEFINED"`, Yes},
	}

	k := parseTest(t, modSrc)

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := k.EvalString(tt.expr)
			if err != nil {
				t.Fatalf("EvalString(%q) failed: %v", tt.expr, err)
			}

			if got != tt.want {
				t.Errorf("EvalString(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

// A bare m in an expression tracks module support, so it collapses to n
// when the modules symbol is off.
func TestEvalStringBareM(t *testing.T) {
	noMod := parseTest(t, `
config A
	tristate "A"
	default m
`)

	if got, err := noMod.EvalString("m"); err != nil || got != No {
		t.Errorf("EvalString(m) without modules = %v, %v; want n", got, err)
	}

	// A's tristate type degrades to bool, promoting the m default to y
	if got := noMod.Syms()["A"].TriValue(); got != Yes {
		t.Errorf("A without modules = %v, want y", got)
	}

	withMod := parseTest(t, modSrc)

	if got, err := withMod.EvalString("m"); err != nil || got != Mod {
		t.Errorf("EvalString(m) with modules = %v, %v; want m", got, err)
	}
}

func TestEvalStringMalformed(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"", ErrExpectedExpr},
		{"&", ErrUnexpectedToken},
		{"|", ErrUnexpectedToken},
		{"!", ErrExpectedExpr},
		{"(", ErrExpectedExpr},
		{")", ErrExpectedExpr},
		{"=", ErrExpectedExpr},
		{"(A", ErrSyntax},
		{"A &&", ErrExpectedExpr},
		{"&& A", ErrExpectedExpr},
		{"A = ", ErrExpectedExpr},
		{"A B", ErrTrailingTokens},
		{"A ) B", ErrTrailingTokens},
		{`"unterminated`, ErrUnterminated},
	}

	k := parseTest(t, modSrc)

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := k.EvalString(tt.expr)
			if err == nil {
				t.Fatalf("EvalString(%q) succeeded, want error", tt.expr)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("EvalString(%q) error = %v, want %v", tt.expr, err, tt.want)
			}
		})
	}
}

func TestExprString(t *testing.T) {
	k := parseTest(t, modSrc)

	tests := []struct {
		expr string
		want string
	}{
		{"A && B", "A && B"},
		{"A || B && C", "A || B && C"},
		{"(A || B) && C", "(A || B) && C"},
		{"!A", "!A"},
		{"!(A || B)", "!(A || B)"},
		{"A = m", "A = m"},
		{`A != "foo"`, `A != "foo"`},
		{"INTA <= 8", "INTA <= 8"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			toks, err := k.tokenizeExpr(tt.expr)
			if err != nil {
				t.Fatal(err)
			}

			p := &parser{kconfig: k, tokens: toks}

			e, err := p.parseExpr(false)
			if err != nil {
				t.Fatal(err)
			}

			if got := exprString(e); got != tt.want {
				t.Errorf("exprString = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTristateString(t *testing.T) {
	if No.String() != "n" || Mod.String() != "m" || Yes.String() != "y" {
		t.Error("tristate string forms wrong")
	}

	if _, ok := triFromString("x"); ok {
		t.Error("triFromString accepted garbage")
	}
}
