package kconfig

import (
	"strconv"
	"strings"
)

// Choice is a group of symbols of which at most one may be y. In m mode,
// members may independently be m instead.
type Choice struct {
	kconfig *Kconfig

	Name string // empty for anonymous choices

	origType Type
	nodes    []*MenuNode

	syms     []*Symbol
	defaults []DefaultProp

	directDep *Expr

	isOptional bool

	hasUser       bool
	userTri       Tristate
	userSelection *Symbol

	visCached bool
	cachedVis Tristate

	valCached bool
	cachedTri Tristate

	selCached bool
	cachedSel *Symbol

	assignCached bool
	cachedAssign []Tristate

	dependents []dependent
	leaf       *Expr
}

// Kconfig returns the configuration database the choice belongs to.
func (c *Choice) Kconfig() *Kconfig { return c.kconfig }

// OrigType returns the type as declared, or inferred from the first typed
// member.
func (c *Choice) OrigType() Type { return c.origType }

// Type returns the effective type, with tristate degrading to bool while
// modules are disabled.
func (c *Choice) Type() Type {
	if c.origType == TypeTristate && !c.kconfig.modulesEnabled() {
		return TypeBool
	}

	return c.origType
}

// Nodes returns the menu nodes from the choice's definition locations.
func (c *Choice) Nodes() []*MenuNode { return c.nodes }

// Syms returns the member symbols, in declaration order. Members whose
// dependencies nest them under an earlier member are not part of the
// selection group.
func (c *Choice) Syms() []*Symbol { return c.syms }

// IsOptional reports whether the choice may be left in n mode even when
// visible.
func (c *Choice) IsOptional() bool { return c.isOptional }

// Defaults returns the choice's conditional default selections.
func (c *Choice) Defaults() []DefaultProp { return c.defaults }

// UserValue returns the user-set mode and whether one is set.
func (c *Choice) UserValue() (Tristate, bool) { return c.userTri, c.hasUser }

// UserSelection returns the member most recently set to y by the user, or
// nil. The effective selection may differ if that member is invisible.
func (c *Choice) UserSelection() *Symbol { return c.userSelection }

// Visibility returns the strongest prompt condition across the choice's
// definition locations.
func (c *Choice) Visibility() Tristate {
	if !c.visCached {
		c.cachedVis = c.calcVisibility()
		c.visCached = true
	}

	return c.cachedVis
}

func (c *Choice) calcVisibility() Tristate {
	vis := No

	for _, node := range c.nodes {
		if node.HasPrompt {
			vis = max(vis, exprValue(node.PromptCond))
		}
	}

	if vis == Mod && c.Type() != TypeTristate {
		return Yes
	}

	return vis
}

// TriValue returns the choice's mode: n frees all members, m lets members
// be m or n individually, and y enforces a single selection. A tristate
// choice without a user-set mode sits in m mode, matching the C
// implementation.
func (c *Choice) TriValue() Tristate {
	if c.valCached {
		return c.cachedTri
	}

	c.valCached = true

	val := Yes

	switch {
	case c.hasUser:
		val = c.userTri
	case c.isOptional:
		val = No
	case c.Type() == TypeTristate:
		val = Mod
	}

	val = min(val, c.Visibility())

	if val == Mod && c.Type() != TypeTristate {
		val = Yes
	}

	c.cachedTri = val

	return val
}

// StrValue returns the mode in string form.
func (c *Choice) StrValue() string { return c.TriValue().String() }

// Selection returns the selected member while the choice is in y mode:
// the user selection if visible, else the first visible default, else the
// first visible member. It returns nil in n and m modes.
func (c *Choice) Selection() *Symbol {
	if !c.selCached {
		c.cachedSel = c.calcSelection()
		c.selCached = true
	}

	return c.cachedSel
}

func (c *Choice) calcSelection() *Symbol {
	if c.TriValue() != Yes {
		return nil
	}

	if c.userSelection != nil && c.userSelection.Visibility() != No {
		return c.userSelection
	}

	return c.selectionFromDefaults()
}

func (c *Choice) selectionFromDefaults() *Symbol {
	for _, def := range c.defaults {
		if def.Value == nil || def.Value.Sym == nil {
			continue
		}

		if exprValue(def.Cond) != No && def.Value.Sym.Visibility() != No {
			return def.Value.Sym
		}
	}

	for _, sym := range c.syms {
		if sym.Visibility() != No {
			return sym
		}
	}

	return nil
}

// Assignable returns the modes the user can put the choice in, in
// increasing order.
func (c *Choice) Assignable() []Tristate {
	if !c.assignCached {
		c.cachedAssign = c.calcAssignable()
		c.assignCached = true
	}

	return c.cachedAssign
}

func (c *Choice) calcAssignable() []Tristate {
	vis := c.Visibility()

	switch {
	case vis == No:
		return nil

	case vis == Yes:
		if !c.isOptional {
			if c.Type() == TypeBool {
				return []Tristate{Yes}
			}

			return []Tristate{Mod, Yes}
		}

		if c.Type() == TypeBool {
			return []Tristate{No, Yes}
		}

		return []Tristate{No, Mod, Yes}

	default: // vis == Mod, necessarily a tristate
		if c.isOptional {
			return []Tristate{No, Mod}
		}

		return []Tristate{Mod}
	}
}

// SetValue sets the choice's user mode. Bool choices accept only n and y.
func (c *Choice) SetValue(value string) bool {
	t, ok := triFromString(value)
	if !ok {
		c.warnInvalidValue(value)

		return false
	}

	return c.SetTriValue(t)
}

// SetTriValue sets the choice's user mode from a tristate.
func (c *Choice) SetTriValue(value Tristate) bool {
	if value == Mod && c.origType != TypeTristate {
		c.warnInvalidValue(value.String())

		return false
	}

	if c.hasUser && c.userTri == value {
		return true
	}

	c.hasUser = true
	c.userTri = value
	c.recInvalidate()

	return true
}

// UnsetValue removes the user mode and the user selection.
func (c *Choice) UnsetValue() {
	if !c.hasUser && c.userSelection == nil {
		return
	}

	c.hasUser = false
	c.userTri = No
	c.userSelection = nil
	c.recInvalidate()
}

func (c *Choice) warnInvalidValue(value string) {
	c.kconfig.warn("the value \"" + value + "\" is invalid for " +
		c.nameAndLoc() + ", which has type " + c.origType.String() +
		", assignment ignored")
}

func (c *Choice) nameAndLoc() string {
	name := c.Name
	if name == "" {
		name = "<choice>"
	}

	if len(c.nodes) == 0 {
		return name + " (undefined)"
	}

	node := c.nodes[0]

	return name + " (defined at " + node.Filename + ":" +
		strconv.Itoa(node.Linenr) + ")"
}

func (c *Choice) invalidate() {
	c.visCached = false
	c.valCached = false
	c.selCached = false
	c.assignCached = false
}

func (c *Choice) isCached() bool {
	return c.visCached || c.valCached || c.selCached || c.assignCached
}

func (c *Choice) recInvalidate() {
	c.invalidate()

	for _, dep := range c.dependents {
		if dep.isCached() {
			dep.recInvalidate()
		}
	}
}

// String renders the choice's definition locations in Kconfig syntax.
func (c *Choice) String() string {
	parts := make([]string, len(c.nodes))
	for i, node := range c.nodes {
		parts[i] = node.String()
	}

	return strings.Join(parts, "\n")
}
