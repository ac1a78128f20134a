package kconfig

import (
	"strconv"
	"strings"
)

// Tristate is a value in Kconfig's three-valued logic.
type Tristate int

// Tristate values, ordered so that conjunction is min and disjunction is max.
const (
	No  Tristate = 0
	Mod Tristate = 1
	Yes Tristate = 2
)

// String returns the Kconfig spelling of the tristate ("n", "m", or "y").
func (t Tristate) String() string {
	switch t {
	case Mod:
		return "m"
	case Yes:
		return "y"
	default:
		return "n"
	}
}

// triFromString maps "n"/"m"/"y" to a tristate value.
func triFromString(s string) (Tristate, bool) {
	switch s {
	case "n":
		return No, true
	case "m":
		return Mod, true
	case "y":
		return Yes, true
	}

	return No, false
}

// Type identifies the declared type of a symbol or choice.
type Type int

const (
	TypeUnknown Type = iota
	TypeBool
	TypeTristate
	TypeString
	TypeInt
	TypeHex
)

// String returns the Kconfig keyword for the type.
func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeTristate:
		return "tristate"
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeHex:
		return "hex"
	default:
		return "unknown"
	}
}

// numBase returns the strconv base used when a value of this type appears as
// an operand of an ordering comparison. Base 0 lets prefixed literals pick
// their own radix.
func (t Type) numBase() int {
	switch t {
	case TypeInt:
		return 10
	case TypeHex:
		return 16
	default:
		return 0
	}
}

// ExprOp identifies an expression node.
type ExprOp int

const (
	OpSym ExprOp = iota // leaf, references a symbol
	OpNot
	OpAnd
	OpOr
	OpEqual
	OpUnequal
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

// String returns the operator's source spelling. Leaf and unary nodes have no
// infix spelling and return an empty string.
func (op ExprOp) String() string {
	switch op {
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpEqual:
		return "="
	case OpUnequal:
		return "!="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	default:
		return ""
	}
}

// Expr is a node in a dependency expression. Leaves (OpSym) reference a
// symbol through Sym, or a whole choice through Choice when a choice's mode
// gates its members. OpNot uses only L. Comparison operands are always
// symbol leaves.
type Expr struct {
	Op     ExprOp
	Sym    *Symbol
	Choice *Choice
	L, R   *Expr
}

// symExpr returns a leaf expression for sym, reusing the per-symbol leaf so
// that identical references share one node.
func symExpr(sym *Symbol) *Expr {
	if sym.leaf == nil {
		sym.leaf = &Expr{Op: OpSym, Sym: sym}
	}

	return sym.leaf
}

// choiceExpr returns a leaf expression whose value is the choice's mode.
func choiceExpr(c *Choice) *Expr {
	if c.leaf == nil {
		c.leaf = &Expr{Op: OpSym, Choice: c}
	}

	return c.leaf
}

// exprValue evaluates an expression to a tristate. Conjunction is min,
// disjunction is max, and negation subtracts from y. Comparisons are
// evaluated by compareSyms.
func exprValue(e *Expr) Tristate {
	if e == nil {
		return Yes
	}

	switch e.Op {
	case OpSym:
		if e.Choice != nil {
			return e.Choice.TriValue()
		}

		return e.Sym.TriValue()

	case OpAnd:
		v := exprValue(e.L)
		if v == No {
			return No
		}

		return min(v, exprValue(e.R))

	case OpOr:
		v := exprValue(e.L)
		if v == Yes {
			return Yes
		}

		return max(v, exprValue(e.R))

	case OpNot:
		return Yes - exprValue(e.L)

	default:
		return compareSyms(e.Op, e.L.Sym, e.R.Sym)
	}
}

// compareSyms evaluates a comparison between two symbols. Bool and tristate
// operands count as their numeric tristate value. Other operands are parsed
// in the base implied by their type, and the comparison falls back to a
// lexicographic one when either side fails to parse.
func compareSyms(op ExprOp, a, b *Symbol) Tristate {
	var comp int

	an, aok := symToNum(a)
	bn, bok := symToNum(b)

	if aok && bok {
		switch {
		case an < bn:
			comp = -1
		case an > bn:
			comp = 1
		}
	} else {
		comp = strings.Compare(a.StrValue(), b.StrValue())
	}

	var res bool

	switch op {
	case OpEqual:
		res = comp == 0
	case OpUnequal:
		res = comp != 0
	case OpLess:
		res = comp < 0
	case OpLessEqual:
		res = comp <= 0
	case OpGreater:
		res = comp > 0
	case OpGreaterEqual:
		res = comp >= 0
	}

	if res {
		return Yes
	}

	return No
}

// symToNum converts a symbol to a number for comparison purposes. Bool and
// tristate symbols count n/m/y as 0/1/2, mirroring the C implementation.
func symToNum(sym *Symbol) (int64, bool) {
	if sym.origType == TypeBool || sym.origType == TypeTristate {
		return int64(sym.TriValue()), true
	}

	s := sym.StrValue()

	base := sym.origType.numBase()
	if base == 16 {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	}

	n, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

// exprStrValue returns the string value an expression contributes as a
// default for a string, int, or hex symbol. Only symbol references make
// sense there.
func exprStrValue(e *Expr) string {
	if e == nil || e.Op != OpSym {
		return ""
	}

	return e.Sym.StrValue()
}

// exprString renders an expression in Kconfig syntax, parenthesizing
// subexpressions of lower precedence.
func exprString(e *Expr) string {
	if e == nil {
		return "y"
	}

	switch e.Op {
	case OpSym:
		if e.Choice != nil {
			name := e.Choice.Name
			if name == "" {
				name = "choice"
			}

			return "<" + name + ">"
		}

		return symRefString(e.Sym)

	case OpNot:
		return "!" + exprParen(e.L, OpNot)

	case OpAnd:
		return exprParen(e.L, OpAnd) + " && " + exprParen(e.R, OpAnd)

	case OpOr:
		return exprParen(e.L, OpOr) + " || " + exprParen(e.R, OpOr)

	default:
		return symRefString(e.L.Sym) + " " + e.Op.String() + " " +
			symRefString(e.R.Sym)
	}
}

// symRefString renders a symbol reference inside an expression. Constants
// other than n, m, and y are quoted.
func symRefString(sym *Symbol) string {
	if sym.isConstant && sym.origType != TypeTristate {
		return `"` + sym.Name + `"`
	}

	return sym.Name
}

// exprPrec returns the precedence rank of an operator, higher binding
// tighter.
func exprPrec(op ExprOp) int {
	switch op {
	case OpOr:
		return 1
	case OpAnd:
		return 2
	case OpNot:
		return 3
	default:
		return 4
	}
}

// exprParen renders a subexpression, adding parentheses when its operator
// binds looser than the enclosing one.
func exprParen(e *Expr, outer ExprOp) string {
	if exprPrec(e.Op) < exprPrec(outer) {
		return "(" + exprString(e) + ")"
	}

	return exprString(e)
}

// exprContains reports whether an expression is an AND chain rooted in sym,
// or an equality form equivalent to one. It decides whether a following menu
// entry should nest under sym's menu node.
func exprContains(e *Expr, sym *Symbol) bool {
	if e == nil {
		return false
	}

	switch e.Op {
	case OpSym:
		return e.Sym == sym

	case OpAnd:
		return exprContains(e.L, sym) || exprContains(e.R, sym)

	case OpEqual, OpUnequal:
		l, r := e.L.Sym, e.R.Sym
		if r == sym {
			l, r = r, l
		} else if l != sym {
			return false
		}

		kconf := sym.kconfig
		if e.Op == OpEqual {
			return r == kconf.constSyms["m"] || r == kconf.constSyms["y"]
		}

		return r == kconf.constSyms["n"]
	}

	return false
}

// eachExprSym calls fn for every symbol referenced by the expression.
func eachExprSym(e *Expr, fn func(*Symbol)) {
	if e == nil {
		return
	}

	if e.Op == OpSym {
		if e.Sym != nil {
			fn(e.Sym)
		}

		return
	}

	eachExprSym(e.L, fn)
	eachExprSym(e.R, fn)
}

// makeAnd builds the conjunction of two expressions, folding constant y
// operands away.
func (k *Kconfig) makeAnd(a, b *Expr) *Expr {
	switch {
	case a == nil || a == k.yExpr():
		return b
	case b == nil || b == k.yExpr():
		return a
	}

	return &Expr{Op: OpAnd, L: a, R: b}
}

// makeOr builds the disjunction of two expressions, folding constant n
// operands away.
func (k *Kconfig) makeOr(a, b *Expr) *Expr {
	switch {
	case a == nil || a == k.nExpr():
		return b
	case b == nil || b == k.nExpr():
		return a
	}

	return &Expr{Op: OpOr, L: a, R: b}
}

func (k *Kconfig) yExpr() *Expr { return symExpr(k.constSyms["y"]) }
func (k *Kconfig) nExpr() *Expr { return symExpr(k.constSyms["n"]) }
