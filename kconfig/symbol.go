package kconfig

import (
	"log/slog"
	"strconv"
	"strings"
)

// DefaultProp is a conditional default value.
type DefaultProp struct {
	Value *Expr
	Cond  *Expr
}

// RangeProp is a conditional bound on an int or hex symbol.
type RangeProp struct {
	Low  *Symbol
	High *Symbol
	Cond *Expr
}

// TargetProp is a conditional select or imply of another symbol.
type TargetProp struct {
	Target *Symbol
	Cond   *Expr
}

// Symbol is a configuration symbol. Values are computed lazily from user
// values, defaults, and reverse dependencies, and cached until an input
// changes.
type Symbol struct {
	kconfig *Kconfig

	Name string

	origType   Type
	isConstant bool

	nodes []*MenuNode

	defaults []DefaultProp
	ranges   []RangeProp
	selects  []TargetProp
	implies  []TargetProp

	directDep  *Expr
	revDep     *Expr // accumulated select conditions
	weakRevDep *Expr // accumulated imply conditions

	choice *Choice

	envVar         string
	isAllNoconfigY bool

	hasUser bool
	userTri Tristate
	userStr string

	visCached bool
	cachedVis Tristate

	valCached   bool
	cachedTri   Tristate
	cachedStr   string
	writeToConf bool

	assignCached bool
	cachedAssign []Tristate

	referenced bool
	refFile    string
	refLine    int

	dependents []dependent
	leaf       *Expr
}

// dependent is an entity whose cached state derives from another's value.
// Both Symbol and Choice satisfy it.
type dependent interface {
	invalidate()
	isCached() bool
	recInvalidate()
}

// Kconfig returns the configuration database the symbol belongs to.
func (s *Symbol) Kconfig() *Kconfig { return s.kconfig }

// OrigType returns the type as declared in the Kconfig files.
func (s *Symbol) OrigType() Type { return s.origType }

// Type returns the effective type. Tristate degrades to bool while the
// modules symbol is n.
func (s *Symbol) Type() Type {
	if s.origType == TypeTristate && !s.kconfig.modulesEnabled() {
		return TypeBool
	}

	return s.origType
}

// Nodes returns the menu nodes from the symbol's definition locations.
func (s *Symbol) Nodes() []*MenuNode { return s.nodes }

// Choice returns the choice the symbol is a member of, or nil.
func (s *Symbol) Choice() *Choice { return s.choice }

// IsConstant reports whether the symbol is a constant.
func (s *Symbol) IsConstant() bool { return s.isConstant }

// EnvVar returns the name of the environment variable the symbol takes its
// value from, or an empty string.
func (s *Symbol) EnvVar() string { return s.envVar }

// IsAllNoconfigY reports whether the symbol should stay y in all-no
// configurations.
func (s *Symbol) IsAllNoconfigY() bool { return s.isAllNoconfigY }

// Defaults returns the symbol's conditional defaults, in declaration order.
func (s *Symbol) Defaults() []DefaultProp { return s.defaults }

// Ranges returns the symbol's conditional ranges, in declaration order.
func (s *Symbol) Ranges() []RangeProp { return s.ranges }

// Selects returns the symbol's select clauses.
func (s *Symbol) Selects() []TargetProp { return s.selects }

// Implies returns the symbol's imply clauses.
func (s *Symbol) Implies() []TargetProp { return s.implies }

// DirectDep returns the conjunction of the symbol's direct dependencies
// across all definition locations.
func (s *Symbol) DirectDep() *Expr { return s.directDep }

// RevDep returns the accumulated reverse dependency from select clauses
// naming this symbol.
func (s *Symbol) RevDep() *Expr { return s.revDep }

// WeakRevDep returns the accumulated weak reverse dependency from imply
// clauses naming this symbol.
func (s *Symbol) WeakRevDep() *Expr { return s.weakRevDep }

// UserValue returns the symbol's user value in string form, and whether one
// is set. The stored value is not clamped; the effective value may differ.
func (s *Symbol) UserValue() (string, bool) {
	if !s.hasUser {
		return "", false
	}

	if s.origType == TypeBool || s.origType == TypeTristate {
		return s.userTri.String(), true
	}

	return s.userStr, true
}

// Visibility returns the symbol's visibility: the strongest prompt condition
// across its definition locations, adjusted for choice membership and module
// support.
func (s *Symbol) Visibility() Tristate {
	if !s.visCached {
		s.cachedVis = s.calcVisibility()
		s.visCached = true
	}

	return s.cachedVis
}

func (s *Symbol) calcVisibility() Tristate {
	vis := No

	for _, node := range s.nodes {
		if node.HasPrompt {
			vis = max(vis, exprValue(node.PromptCond))
		}
	}

	if s.choice != nil {
		// Non-tristate choice symbols are only visible in y mode
		if s.choice.origType == TypeTristate && s.origType != TypeTristate &&
			s.choice.TriValue() != Yes {
			return No
		}

		// Choice symbols with m visibility are not visible in y mode
		if s.origType == TypeTristate && vis == Mod &&
			s.choice.TriValue() == Yes {
			return No
		}
	}

	// Promote m to y for non-tristates, including tristates degraded to
	// bool by modules being disabled
	if vis == Mod && s.Type() != TypeTristate {
		return Yes
	}

	return vis
}

// TriValue returns the symbol's tristate value. Non-bool, non-tristate
// symbols always have tristate value n.
func (s *Symbol) TriValue() Tristate {
	s.calcValue()

	return s.cachedTri
}

// StrValue returns the symbol's value in string form. For bool and tristate
// symbols this is "n", "m", or "y". Undefined symbols evaluate to their own
// name.
func (s *Symbol) StrValue() string {
	s.calcValue()

	return s.cachedStr
}

func (s *Symbol) calcValue() {
	if s.valCached {
		return
	}

	// Set the cached flag up front so value lookups during computation
	// (through expressions that loop back here) terminate instead of
	// recursing. A symbol on a dependency loop sees its own stale value.
	s.valCached = true

	switch s.origType {
	case TypeBool, TypeTristate:
		s.cachedTri = s.calcTri()
		s.cachedStr = s.cachedTri.String()

	case TypeString, TypeInt, TypeHex:
		s.cachedStr = s.calcStr()
		s.cachedTri = No

	default:
		// Constants and undefined symbols evaluate to their own name
		s.cachedStr = s.Name
		s.cachedTri = No

		if s.isConstant {
			if t, ok := triFromString(s.Name); ok {
				s.cachedTri = t
			}
		}
	}
}

func (s *Symbol) calcTri() Tristate {
	if s.isConstant {
		t, _ := triFromString(s.Name)

		return t
	}

	vis := s.Visibility()
	s.writeToConf = vis != No

	val := No

	switch {
	case s.choice == nil:
		if vis != No && s.hasUser {
			val = min(s.userTri, vis)
		} else {
			// No user value, or invisible. Defaults and implies apply.
			for _, def := range s.defaults {
				condVal := exprValue(def.Cond)
				if condVal == No {
					continue
				}

				val = min(exprValue(def.Value), condVal)
				if val != No {
					s.writeToConf = true
				}

				break
			}

			// Implies only apply while the direct dependencies hold
			if impVal := exprValue(s.weakRevDep); impVal != No &&
				exprValue(s.directDep) != No {
				val = max(val, impVal)
				s.writeToConf = true
			}
		}

		// Selects force the value up regardless of visibility
		if selVal := exprValue(s.revDep); selVal != No {
			if exprValue(s.directDep) < selVal {
				s.warnSelectUnmetDeps()
			}

			val = max(val, selVal)
			s.writeToConf = true
		}

		// m promotes to y for bool symbols, and for symbols implied to y
		if val == Mod &&
			(s.Type() == TypeBool || exprValue(s.weakRevDep) == Yes) {
			val = Yes
		}

	case vis == Yes:
		// Member of a choice in y mode. The selection decides.
		if s.choice.Selection() == s {
			val = Yes
		}

	case vis != No && s.hasUser && s.userTri != No:
		// Member of a choice in m mode, individually enabled
		val = Mod
	}

	return val
}

func (s *Symbol) calcStr() string {
	vis := s.Visibility()
	s.writeToConf = vis != No

	if s.origType == TypeString {
		if vis != No && s.hasUser {
			return s.userStr
		}

		for _, def := range s.defaults {
			if exprValue(def.Cond) != No {
				s.writeToConf = true

				return exprStrValue(def.Value)
			}
		}

		return ""
	}

	return s.calcNum(vis)
}

// calcNum computes the value of an int or hex symbol: a valid in-range user
// value is kept verbatim, otherwise the first active default applies,
// clamped to the active range.
func (s *Symbol) calcNum(vis Tristate) string {
	base := s.origType.numBase()

	var low, high int64

	hasRange := false

	for _, r := range s.ranges {
		if exprValue(r.Cond) == No {
			continue
		}

		hasRange = true
		low, _ = parseNum(r.Low.StrValue(), base)
		high, _ = parseNum(r.High.StrValue(), base)

		break
	}

	if vis != No && s.hasUser && s.userStr != "" {
		userNum, _ := parseNum(s.userStr, base)

		if !hasRange || low <= userNum && userNum <= high {
			return s.userStr
		}

		s.kconfig.warn("user value " + s.userStr + " on the " +
			s.origType.String() + " symbol " + s.nameAndLoc() +
			" ignored due to being outside the active range [" +
			formatNum(low, base) + ", " + formatNum(high, base) +
			"], falling back on defaults")
	}

	val := ""
	valNum := int64(0)
	hasDefault := false

	for _, def := range s.defaults {
		if exprValue(def.Cond) == No {
			continue
		}

		hasDefault = true
		s.writeToConf = true

		val = exprStrValue(def.Value)
		valNum, _ = parseNum(val, base)

		break
	}

	if hasRange {
		clamped := valNum

		switch {
		case valNum < low:
			clamped = low
		case valNum > high:
			clamped = high
		}

		if clamped != valNum {
			if hasDefault {
				s.kconfig.warn("default value " + val + " on " +
					s.nameAndLoc() + " clamped to " +
					formatNum(clamped, base))
			}

			val = formatNum(clamped, base)
		}
	}

	return val
}

// parseNum parses a value in the given base. Base 16 accepts an optional 0x
// prefix, and base 0 infers the radix from the prefix. Unparsable values
// count as zero, matching strtoll() on garbage input.
func parseNum(s string, base int) (int64, bool) {
	if base == 16 {
		if t := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"); t != s {
			s = t
		}
	}

	n, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

func formatNum(n int64, base int) string {
	if base == 16 {
		return "0x" + strconv.FormatInt(n, 16)
	}

	return strconv.FormatInt(n, 10)
}

// Assignable returns the user values that would have an effect on the
// symbol, in increasing order. An empty result means the symbol is not
// visible.
func (s *Symbol) Assignable() []Tristate {
	if !s.assignCached {
		s.cachedAssign = s.calcAssignable()
		s.assignCached = true
	}

	return s.cachedAssign
}

func (s *Symbol) calcAssignable() []Tristate {
	if s.origType != TypeBool && s.origType != TypeTristate {
		return nil
	}

	vis := s.Visibility()
	if vis == No {
		return nil
	}

	selVal := exprValue(s.revDep)

	if vis == Yes {
		switch {
		case s.choice != nil:
			return []Tristate{Yes}

		case selVal == No:
			if s.Type() == TypeBool || exprValue(s.weakRevDep) == Yes {
				return []Tristate{No, Yes}
			}

			return []Tristate{No, Mod, Yes}

		case selVal == Yes:
			return []Tristate{Yes}

		default: // selected to m
			if s.Type() == TypeBool || exprValue(s.weakRevDep) == Yes {
				return []Tristate{Yes}
			}

			return []Tristate{Mod, Yes}
		}
	}

	// vis == Mod. Only tristates end up here, since m visibility promotes
	// to y for everything else.
	switch {
	case selVal == No:
		if exprValue(s.weakRevDep) == Yes {
			return []Tristate{No, Yes}
		}

		return []Tristate{No, Mod}

	case selVal == Yes:
		return []Tristate{Yes}

	default:
		return []Tristate{Mod}
	}
}

// SetValue sets the symbol's user value from its string form. For bool and
// tristate symbols the value must be "n", "m", or "y". It returns false,
// with a warning, when the value is invalid for the symbol's type. The
// effective value may still differ from an accepted user value because of
// visibility, ranges, and reverse dependencies.
func (s *Symbol) SetValue(value string) bool {
	if s.origType == TypeBool || s.origType == TypeTristate {
		t, ok := triFromString(value)
		if !ok {
			s.warnInvalidValue(value)

			return false
		}

		return s.SetTriValue(t)
	}

	valid := false

	switch s.origType {
	case TypeString:
		valid = true
	case TypeInt:
		_, valid = parseNum(value, 10)
	case TypeHex:
		n, ok := parseNum(value, 16)
		valid = ok && n >= 0
	}

	if !valid {
		s.warnInvalidValue(value)

		return false
	}

	if s.envVar != "" {
		s.kconfig.warn("ignored attempt to assign user value to " +
			s.nameAndLoc() + ", which is set from the environment")

		return false
	}

	if s.hasUser && s.userStr == value {
		return true
	}

	s.hasUser = true
	s.userStr = value
	s.recInvalidateIfHasPrompt()

	return true
}

// SetTriValue sets the user value of a bool or tristate symbol. Bool
// symbols accept only n and y.
func (s *Symbol) SetTriValue(value Tristate) bool {
	switch s.origType {
	case TypeBool:
		if value == Mod {
			s.warnInvalidValue(value.String())

			return false
		}

	case TypeTristate:

	default:
		s.warnInvalidValue(value.String())

		return false
	}

	if s.envVar != "" {
		s.kconfig.warn("ignored attempt to assign user value to " +
			s.nameAndLoc() + ", which is set from the environment")

		return false
	}

	// A repeated identical value changes nothing, except for choice
	// symbols, where assigning y again may still move the selection.
	if s.hasUser && s.userTri == value && s.choice == nil {
		return true
	}

	s.hasUser = true
	s.userTri = value

	if s.choice != nil && value == Yes {
		// Setting a choice symbol to y makes it the user selection of
		// the choice. Like user values, the selection is not guaranteed
		// to take effect, since the symbol may be invisible.
		s.choice.userSelection = s
		s.choice.recInvalidate()
	} else {
		s.recInvalidateIfHasPrompt()
	}

	return true
}

// UnsetValue removes the symbol's user value, as if it had never been set.
func (s *Symbol) UnsetValue() {
	if !s.hasUser {
		return
	}

	s.hasUser = false
	s.userStr = ""
	s.userTri = No
	s.recInvalidateIfHasPrompt()
}

func (s *Symbol) warnInvalidValue(value string) {
	s.kconfig.warn("the value \"" + value + "\" is invalid for " +
		s.nameAndLoc() + ", which has type " + s.origType.String() +
		", assignment ignored")
}

func (s *Symbol) warnSelectUnmetDeps() {
	s.kconfig.warn(s.nameAndLoc() +
		" has direct dependencies with value " +
		exprValue(s.directDep).String() +
		", but is currently being selected with strength " +
		exprValue(s.revDep).String(),
		slog.String("symbol", s.Name))
}

// nameAndLoc returns the symbol name with its definition location, for
// diagnostics.
func (s *Symbol) nameAndLoc() string {
	if len(s.nodes) == 0 {
		return s.Name + " (undefined)"
	}

	node := s.nodes[0]

	return s.Name + " (defined at " + node.Filename + ":" +
		strconv.Itoa(node.Linenr) + ")"
}

func (s *Symbol) invalidate() {
	s.visCached = false
	s.valCached = false
	s.assignCached = false
}

func (s *Symbol) isCached() bool {
	return s.visCached || s.valCached || s.assignCached
}

func (s *Symbol) recInvalidate() {
	if s == s.kconfig.modules {
		// The modules symbol changes the effective type of every
		// tristate, so everything needs recomputing.
		s.kconfig.invalidateAll()

		return
	}

	s.invalidate()

	for _, dep := range s.dependents {
		// Entities with no cached state recompute from scratch anyway,
		// and skipping them bounds the recursion.
		if dep.isCached() {
			dep.recInvalidate()
		}
	}
}

// recInvalidateIfHasPrompt invalidates only when the symbol has a prompt
// somewhere. Promptless symbols ignore user values, so nothing can change.
func (s *Symbol) recInvalidateIfHasPrompt() {
	for _, node := range s.nodes {
		if node.HasPrompt {
			s.recInvalidate()

			return
		}
	}

	if s.kconfig.warnNoPrompt {
		s.kconfig.warn(s.nameAndLoc() +
			" has no prompt, meaning user values have no effect on it")
	}
}

// String renders the symbol's definition locations in Kconfig syntax.
func (s *Symbol) String() string {
	if len(s.nodes) == 0 {
		return "symbol " + s.Name + " (undefined)"
	}

	parts := make([]string, len(s.nodes))
	for i, node := range s.nodes {
		parts[i] = node.String()
	}

	return strings.Join(parts, "\n")
}
