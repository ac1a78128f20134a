package kconfig

import (
	"log/slog"
	"os"
	"strings"

	"github.com/RomaVis/Kconfiglib/log"
)

// Kconfig is a parsed configuration database: every symbol and choice
// defined by a tree of Kconfig files, together with the menu structure they
// were declared in. Values are computed on demand and cached.
type Kconfig struct {
	syms         map[string]*Symbol
	constSyms    map[string]*Symbol
	namedChoices map[string]*Choice

	definedSyms []*Symbol
	choices     []*Choice

	topNode *MenuNode

	modules       *Symbol
	defconfigList *Symbol

	env          map[string]string
	srctree      string
	configPrefix string

	// ConfigHeader holds the leading comment block of the most recently
	// loaded configuration file.
	ConfigHeader string

	logger log.Logger

	warnings []string

	warnEnabled bool
	warnUndef   bool
	warnRedun   bool

	warnNoPrompt bool
}

// Option adjusts construction-time behavior.
type Option func(*Kconfig)

// WithLogger routes warnings to the given logger instead of the package
// default.
func WithLogger(l log.Logger) Option {
	return func(k *Kconfig) { k.logger = l }
}

// WithEnv replaces the process environment snapshot. Useful in tests and
// when embedding.
func WithEnv(env map[string]string) Option {
	return func(k *Kconfig) {
		k.env = env
	}
}

// WithWarnings enables or disables all warnings from the start.
func WithWarnings(on bool) Option {
	return func(k *Kconfig) { k.warnEnabled = on }
}

// newKconfig builds an empty database with the constant symbols in place.
func newKconfig(opts ...Option) *Kconfig {
	k := &Kconfig{
		syms:         make(map[string]*Symbol),
		constSyms:    make(map[string]*Symbol),
		namedChoices: make(map[string]*Choice),
		logger:       log.Default(),
		warnEnabled:  true,
		warnUndef:    true,
		warnRedun:    true,
		warnNoPrompt: true,
	}

	for _, name := range []string{"n", "m", "y"} {
		sym := &Symbol{
			kconfig:    k,
			Name:       name,
			origType:   TypeTristate,
			isConstant: true,
		}
		k.constSyms[name] = sym
	}

	for _, opt := range opts {
		opt(k)
	}

	if k.env == nil {
		k.env = make(map[string]string, len(os.Environ()))

		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				k.env[kv[:i]] = kv[i+1:]
			}
		}
	}

	k.srctree = k.env["srctree"]

	k.configPrefix = "CONFIG_"
	if prefix, ok := k.env["CONFIG_"]; ok {
		k.configPrefix = prefix
	}

	// MODULES is the conventional modules symbol; 'option modules'
	// redesignates it. Conditions written as "if m" reference it, so it
	// exists even when undefined.
	k.modules = k.getSym("MODULES")

	return k
}

// Parse reads the Kconfig file at path, following source directives, and
// returns the resulting database. Relative paths are also tried under
// $srctree when set.
func Parse(path string, opts ...Option) (*Kconfig, error) {
	k := newKconfig(opts...)

	if err := k.parseRoot(path); err != nil {
		return nil, err
	}

	return k, nil
}

// ParseString parses Kconfig source from a string. Source directives
// resolve against the current directory and $srctree.
func ParseString(src string, opts ...Option) (*Kconfig, error) {
	k := newKconfig(opts...)

	if err := k.parseRootString(src); err != nil {
		return nil, err
	}

	return k, nil
}

// Syms returns all non-constant symbols seen, defined or referenced, keyed
// by name.
func (k *Kconfig) Syms() map[string]*Symbol { return k.syms }

// ConstSyms returns the constant symbols, keyed by their value.
func (k *Kconfig) ConstSyms() map[string]*Symbol { return k.constSyms }

// DefinedSyms returns the defined symbols in definition order, once each.
func (k *Kconfig) DefinedSyms() []*Symbol { return k.definedSyms }

// Choices returns all choices in definition order.
func (k *Kconfig) Choices() []*Choice { return k.choices }

// NamedChoices returns the named choices, keyed by name.
func (k *Kconfig) NamedChoices() map[string]*Choice { return k.namedChoices }

// TopNode returns the root of the menu tree. Its prompt is the main menu
// title.
func (k *Kconfig) TopNode() *MenuNode { return k.topNode }

// MainmenuText returns the main menu title.
func (k *Kconfig) MainmenuText() string { return k.topNode.Prompt }

// Modules returns the symbol controlling module support: the one designated
// with 'option modules', or the symbol named MODULES otherwise. The symbol
// may be undefined, in which case modules are off.
func (k *Kconfig) Modules() *Symbol { return k.modules }

// DefconfigList returns the symbol designated with 'option defconfig_list',
// or nil.
func (k *Kconfig) DefconfigList() *Symbol { return k.defconfigList }

// LookupSym returns the symbol with the given name, if it was seen during
// parsing.
func (k *Kconfig) LookupSym(name string) (*Symbol, bool) {
	sym, ok := k.syms[name]

	return sym, ok
}

func (k *Kconfig) modulesEnabled() bool {
	return k.modules != nil && k.modules.TriValue() != No
}

// EvalString parses and evaluates an expression in Kconfig syntax, such as
// "FOO && BAR = \"baz\"", against the current symbol values.
func (k *Kconfig) EvalString(s string) (Tristate, error) {
	toks, err := k.tokenizeExpr(s)
	if err != nil {
		return No, err
	}

	p := &parser{kconfig: k, tokens: toks}

	expr, err := p.parseExpr(true)
	if err != nil {
		return No, err
	}

	if p.peek().kind != tEOL {
		return No, ErrTrailingTokens.With(slog.String("expression", s))
	}

	return exprValue(expr), nil
}

// tokenizeExpr tokenizes a standalone expression, where no keyword may
// appear, so words like "int" resolve to symbols.
func (k *Kconfig) tokenizeExpr(s string) ([]token, error) {
	toks, err := k.tokenize(s)
	if err != nil {
		return nil, err
	}

	// Words are symbol references here, never keywords
	for i, t := range toks {
		if t.kind != tStr && t.text != "" {
			toks[i].kind = tName
		}
	}

	return toks, nil
}

// UnsetValues removes the user values from every symbol and choice, as if
// no configuration had been loaded.
func (k *Kconfig) UnsetValues() {
	k.warnNoPrompt = false
	defer func() { k.warnNoPrompt = true }()

	for _, sym := range k.definedSyms {
		sym.UnsetValue()
	}

	for _, choice := range k.choices {
		choice.UnsetValue()
	}
}

// SetWarnings enables or disables all warnings.
func (k *Kconfig) SetWarnings(on bool) { k.warnEnabled = on }

// SetUndefWarnings enables or disables warnings for assignments to
// undefined symbols in configuration files.
func (k *Kconfig) SetUndefWarnings(on bool) { k.warnUndef = on }

// SetRedunWarnings enables or disables warnings for redundant assignments
// in configuration files.
func (k *Kconfig) SetRedunWarnings(on bool) { k.warnRedun = on }

// Warnings returns the warnings generated so far, oldest first.
func (k *Kconfig) Warnings() []string { return k.warnings }

func (k *Kconfig) warn(msg string, attrs ...slog.Attr) {
	if !k.warnEnabled {
		return
	}

	k.warnings = append(k.warnings, msg)
	k.logger.Warn(msg, attrs...)
}

func (k *Kconfig) warnUndefAssign(name string, file string, line int) {
	if !k.warnUndef {
		return
	}

	k.warn("attempt to assign the value to the undefined symbol "+name,
		slog.String("file", file), slog.Int("line", line))
}

func (k *Kconfig) invalidateAll() {
	for _, sym := range k.definedSyms {
		sym.invalidate()
	}

	for _, choice := range k.choices {
		choice.invalidate()
	}
}
