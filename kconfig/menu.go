package kconfig

import "strings"

// ItemKind distinguishes menu nodes that hold no symbol or choice.
type ItemKind int

const (
	// MenuItem marks a plain "menu" node.
	MenuItem ItemKind = iota + 1
	// CommentItem marks a "comment" node.
	CommentItem
)

// MenuNode is a node in the menu tree. Item holds a *Symbol, a *Choice, an
// ItemKind for menus and comments, or nil for structural nodes pending
// removal. A symbol defined in several locations has one node per location.
type MenuNode struct {
	kconfig *Kconfig

	Item any

	// Parent points up. List points to the first child, Next to the
	// following sibling.
	Parent *MenuNode
	List   *MenuNode
	Next   *MenuNode

	Prompt     string
	PromptCond *Expr
	HasPrompt  bool

	// Dep is the node's dependency expression, with the dependencies of
	// enclosing nodes folded in during finalization.
	Dep *Expr

	// VisibleIf is the accumulated 'visible if' condition on menu nodes.
	VisibleIf *Expr

	Help string

	Filename string
	Linenr   int

	IsMenuconfig bool

	// Properties declared at this location, with propagated conditions.
	// They are also merged into the item itself.
	defaults []DefaultProp
	ranges   []RangeProp
	selects  []TargetProp
	implies  []TargetProp
}

// Kconfig returns the configuration database the node belongs to.
func (n *MenuNode) Kconfig() *Kconfig { return n.kconfig }

// Defaults returns the defaults declared at this location.
func (n *MenuNode) Defaults() []DefaultProp { return n.defaults }

// Ranges returns the ranges declared at this location.
func (n *MenuNode) Ranges() []RangeProp { return n.ranges }

// Selects returns the select clauses declared at this location.
func (n *MenuNode) Selects() []TargetProp { return n.selects }

// Implies returns the imply clauses declared at this location.
func (n *MenuNode) Implies() []TargetProp { return n.implies }

// PromptText returns the prompt and its condition, with ok false when the
// node has no prompt.
func (n *MenuNode) PromptText() (text string, cond *Expr, ok bool) {
	return n.Prompt, n.PromptCond, n.HasPrompt
}

// Visible reports the node's visibility in menu terms: the prompt condition
// value, with 'visible if' conditions already folded in.
func (n *MenuNode) Visible() Tristate {
	if !n.HasPrompt {
		return No
	}

	return exprValue(n.PromptCond)
}

// Walk calls fn for every node below the receiver in menu order. Returning
// false from fn stops the walk.
func (n *MenuNode) Walk(fn func(*MenuNode) bool) {
	cur := n.List

	for cur != nil {
		if !fn(cur) {
			return
		}

		if cur.List != nil {
			cur = cur.List

			continue
		}

		for cur.Next == nil {
			cur = cur.Parent
			if cur == nil || cur == n {
				return
			}
		}

		cur = cur.Next
	}
}

// String renders the node's declaration in Kconfig syntax, one property
// per line.
func (n *MenuNode) String() string {
	var b strings.Builder

	switch item := n.Item.(type) {
	case *Symbol:
		if n.IsMenuconfig {
			b.WriteString("menuconfig ")
		} else {
			b.WriteString("config ")
		}

		b.WriteString(item.Name)
		b.WriteByte('\n')

		if item.origType != TypeUnknown {
			b.WriteString("\t" + item.origType.String() + "\n")
		}

		n.writePrompt(&b)
		n.writeProps(&b)

		if item.envVar != "" {
			b.WriteString("\toption env=\"" + item.envVar + "\"\n")
		}

		if item == n.kconfig.modules {
			b.WriteString("\toption modules\n")
		}

		if item == n.kconfig.defconfigList {
			b.WriteString("\toption defconfig_list\n")
		}

		if item.isAllNoconfigY {
			b.WriteString("\toption allnoconfig_y\n")
		}

	case *Choice:
		b.WriteString("choice")

		if item.Name != "" {
			b.WriteString(" " + item.Name)
		}

		b.WriteByte('\n')

		if item.origType != TypeUnknown {
			b.WriteString("\t" + item.origType.String() + "\n")
		}

		n.writePrompt(&b)

		if item.isOptional {
			b.WriteString("\toptional\n")
		}

		n.writeProps(&b)

	case ItemKind:
		if item == CommentItem {
			b.WriteString("comment \"" + escapeString(n.Prompt) + "\"\n")
		} else {
			b.WriteString("menu \"" + escapeString(n.Prompt) + "\"\n")

			if n.VisibleIf != nil {
				b.WriteString("\tvisible if " +
					exprString(n.VisibleIf) + "\n")
			}

			if n.Dep != nil {
				b.WriteString("\tdepends on " + exprString(n.Dep) + "\n")
			}
		}

	default:
		// The top node
		b.WriteString("mainmenu \"" + escapeString(n.Prompt) + "\"\n")
	}

	n.writeHelp(&b)

	return b.String()
}

func (n *MenuNode) writePrompt(b *strings.Builder) {
	if !n.HasPrompt {
		return
	}

	b.WriteString("\tprompt \"" + escapeString(n.Prompt) + "\"")

	if n.PromptCond != nil && n.PromptCond != n.kconfig.yExpr() {
		b.WriteString(" if " + exprString(n.PromptCond))
	}

	b.WriteByte('\n')
}

func (n *MenuNode) writeProps(b *strings.Builder) {
	for _, def := range n.defaults {
		b.WriteString("\tdefault " + exprString(def.Value))
		n.writeCond(b, def.Cond)
	}

	for _, sel := range n.selects {
		b.WriteString("\tselect " + sel.Target.Name)
		n.writeCond(b, sel.Cond)
	}

	for _, imp := range n.implies {
		b.WriteString("\timply " + imp.Target.Name)
		n.writeCond(b, imp.Cond)
	}

	for _, r := range n.ranges {
		b.WriteString("\trange " + symRefString(r.Low) + " " +
			symRefString(r.High))
		n.writeCond(b, r.Cond)
	}
}

// writeCond appends a trailing condition, leaving out conditions that
// propagation reduced to constant y.
func (n *MenuNode) writeCond(b *strings.Builder, cond *Expr) {
	if cond != nil && cond != n.kconfig.yExpr() {
		b.WriteString(" if " + exprString(cond))
	}

	b.WriteByte('\n')
}

func (n *MenuNode) writeHelp(b *strings.Builder) {
	if n.Help == "" {
		return
	}

	b.WriteString("\thelp\n")

	for _, line := range strings.Split(strings.TrimRight(n.Help, "\n"), "\n") {
		if line == "" {
			b.WriteByte('\n')
		} else {
			b.WriteString("\t  " + line + "\n")
		}
	}
}
