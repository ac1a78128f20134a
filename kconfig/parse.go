package kconfig

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// srcFile is one file on the include stack.
type srcFile struct {
	name   string   // path as written, for diagnostics
	path   string   // path actually opened
	lines  []string // physical lines, without newlines
	idx    int      // next physical line
	lineno int      // first line of the current logical line
}

// parser carries the transient state of one parse. The durable result lives
// in the Kconfig.
type parser struct {
	kconfig *Kconfig

	files []*srcFile

	tokens []token
	ti     int
	reuse  bool // reprocess the current line instead of reading a new one
}

func (p *parser) cur() *srcFile {
	if len(p.files) == 0 {
		return nil
	}

	return p.files[len(p.files)-1]
}

// errAt tags an error with the current file and line.
func (p *parser) errAt(err *Error) error {
	if f := p.cur(); f != nil {
		return err.At(f.name, f.lineno)
	}

	return err
}

// nextLine advances to the next non-blank logical line of the current file
// and tokenizes it. Lines ending in a backslash continue onto the next
// physical line. It reports false at end of file.
func (p *parser) nextLine() (bool, error) {
	if p.reuse {
		p.reuse = false
		p.ti = 0

		return true, nil
	}

	f := p.cur()

	for f.idx < len(f.lines) {
		raw := f.lines[f.idx]
		f.lineno = f.idx + 1
		f.idx++

		for strings.HasSuffix(raw, "\\") && f.idx < len(f.lines) {
			raw = raw[:len(raw)-1] + f.lines[f.idx]
			f.idx++
		}

		toks, err := p.kconfig.tokenize(raw)
		if err != nil {
			return false, p.errAt(WrapError(err).With(
				slog.String("text", raw),
			))
		}

		if len(toks) == 0 {
			continue
		}

		p.tokens = toks
		p.ti = 0

		return true, nil
	}

	return false, nil
}

func (p *parser) peek() token {
	if p.ti < len(p.tokens) {
		return p.tokens[p.ti]
	}

	return token{}
}

func (p *parser) next() token {
	t := p.peek()
	p.ti++

	return t
}

func (p *parser) expectEOL() error {
	if p.ti < len(p.tokens) {
		return p.errAt(ErrTrailingTokens.With(
			slog.String("token", p.peek().text),
		))
	}

	return nil
}

// getSym returns the non-constant symbol with the given name, creating an
// undefined placeholder on first sight. The names n, m, and y resolve to
// the tristate constants.
func (k *Kconfig) getSym(name string) *Symbol {
	if name == "n" || name == "m" || name == "y" {
		return k.constSyms[name]
	}

	sym, ok := k.syms[name]
	if !ok {
		sym = &Symbol{
			kconfig:    k,
			Name:       name,
			revDep:     k.nExpr(),
			weakRevDep: k.nExpr(),
		}
		k.syms[name] = sym
	}

	return sym
}

// getConst returns the constant symbol for a quoted literal, creating it on
// first sight.
func (k *Kconfig) getConst(text string) *Symbol {
	sym, ok := k.constSyms[text]
	if !ok {
		sym = &Symbol{
			kconfig:    k,
			Name:       text,
			isConstant: true,
			revDep:     k.nExpr(),
			weakRevDep: k.nExpr(),
		}
		k.constSyms[text] = sym
	}

	return sym
}

// refSym resolves a symbol reference in an expression or property,
// recording the first reference location for undefined-symbol reporting.
func (p *parser) refSym(name string) *Symbol {
	sym := p.kconfig.getSym(name)

	if !sym.isConstant && !sym.referenced {
		sym.referenced = true

		if f := p.cur(); f != nil {
			sym.refFile = f.name
			sym.refLine = f.lineno
		}
	}

	return sym
}

// parseRoot parses the root Kconfig file at path and finalizes the tree.
func (k *Kconfig) parseRoot(path string) error {
	data, resolved, err := k.openFile(path)
	if err != nil {
		return ErrReadSource.Wrap(err).With(slog.String("path", path))
	}

	return k.parse(&srcFile{
		name:  path,
		path:  resolved,
		lines: splitLines(string(data)),
	})
}

// parseRootString parses Kconfig source held in a string.
func (k *Kconfig) parseRootString(src string) error {
	return k.parse(&srcFile{
		name:  "<string>",
		path:  "<string>",
		lines: splitLines(src),
	})
}

func (k *Kconfig) parse(root *srcFile) error {
	k.topNode = &MenuNode{
		kconfig:   k,
		Item:      MenuItem,
		Prompt:    "Linux Kernel Configuration",
		HasPrompt: true,
		Dep:       k.yExpr(),
		Filename:  root.name,
		Linenr:    1,
	}

	p := &parser{kconfig: k, files: []*srcFile{root}}

	if _, err := p.parseBlock(tEOL, k.topNode, k.topNode); err != nil {
		return err
	}

	k.topNode.List = k.topNode.Next
	k.topNode.Next = nil

	p.finalizeNode(k.topNode, nil)
	k.buildDeps()
	k.checkUndefined()

	return nil
}

func splitLines(src string) []string {
	return strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
}

// parseBlock parses menu entries into parent until the given end keyword,
// or until end of file when end is tEOL. Entries are chained through
// prev.Next; the final node of the chain is returned.
func (p *parser) parseBlock(end tokenKind, parent, prev *MenuNode) (*MenuNode, error) {
	k := p.kconfig

	for {
		ok, err := p.nextLine()
		if err != nil {
			return nil, err
		}

		if !ok {
			if end != tEOL {
				return nil, p.errAt(ErrSyntax.With(
					slog.String("expected", "block terminator"),
				))
			}

			return prev, nil
		}

		t0 := p.next()

		switch t0.kind {
		case tConfig, tMenuconfig:
			node, err := p.parseSymbol(parent, t0.kind == tMenuconfig)
			if err != nil {
				return nil, err
			}

			prev.Next = node
			prev = node

		case tChoice:
			node, err := p.parseChoice(parent)
			if err != nil {
				return nil, err
			}

			prev.Next = node
			prev = node

		case tMenu, tComment:
			node, err := p.parseMenuOrComment(parent, t0.kind == tMenu)
			if err != nil {
				return nil, err
			}

			prev.Next = node
			prev = node

		case tIf:
			expr, err := p.parseExpr(true)
			if err != nil {
				return nil, err
			}

			if err := p.expectEOL(); err != nil {
				return nil, err
			}

			node := &MenuNode{
				kconfig:  k,
				Parent:   parent,
				Dep:      expr,
				Filename: p.cur().name,
				Linenr:   p.cur().lineno,
			}

			if _, err := p.parseBlock(tEndif, node, node); err != nil {
				return nil, err
			}

			node.List = node.Next
			node.Next = nil

			prev.Next = node
			prev = node

		case tSource, tRsource, tOsource:
			var err error

			prev, err = p.parseSource(t0.kind, parent, prev)
			if err != nil {
				return nil, err
			}

		case tMainmenu:
			t := p.next()
			if t.kind != tStr {
				return nil, p.errAt(ErrSyntax.With(
					slog.String("expected", "quoted title"),
				))
			}

			k.topNode.Prompt = t.text

			if err := p.expectEOL(); err != nil {
				return nil, err
			}

		case tEndchoice, tEndmenu, tEndif:
			if t0.kind != end {
				return nil, p.errAt(ErrMisplacedKeyword.With(
					slog.String("keyword", t0.text),
				))
			}

			if err := p.expectEOL(); err != nil {
				return nil, err
			}

			return prev, nil

		default:
			return nil, p.errAt(ErrUnexpectedToken.With(
				slog.String("token", t0.text),
			))
		}
	}
}

func (p *parser) parseSymbol(parent *MenuNode, menuconfig bool) (*MenuNode, error) {
	k := p.kconfig

	t := p.next()
	if t.kind != tName {
		return nil, p.errAt(ErrSyntax.With(
			slog.String("expected", "symbol name"),
		))
	}

	sym := k.getSym(t.text)
	if sym.isConstant {
		return nil, p.errAt(ErrSyntax.With(
			slog.String("reason", "constant symbol redefined"),
		))
	}

	if err := p.expectEOL(); err != nil {
		return nil, err
	}

	node := &MenuNode{
		kconfig:      k,
		Item:         sym,
		Parent:       parent,
		IsMenuconfig: menuconfig,
		Dep:          k.yExpr(),
		Filename:     p.cur().name,
		Linenr:       p.cur().lineno,
	}

	if len(sym.nodes) == 0 {
		k.definedSyms = append(k.definedSyms, sym)
	}

	sym.nodes = append(sym.nodes, node)

	return node, p.parseProps(node)
}

func (p *parser) parseChoice(parent *MenuNode) (*MenuNode, error) {
	k := p.kconfig

	var choice *Choice

	if t := p.peek(); t.kind == tName {
		p.next()

		choice = k.namedChoices[t.text]
		if choice == nil {
			choice = &Choice{kconfig: k, Name: t.text}
			k.namedChoices[t.text] = choice
			k.choices = append(k.choices, choice)
		}
	} else {
		choice = &Choice{kconfig: k}
		k.choices = append(k.choices, choice)
	}

	if err := p.expectEOL(); err != nil {
		return nil, err
	}

	node := &MenuNode{
		kconfig:  k,
		Item:     choice,
		Parent:   parent,
		Dep:      k.yExpr(),
		Filename: p.cur().name,
		Linenr:   p.cur().lineno,
	}
	choice.nodes = append(choice.nodes, node)

	if err := p.parseProps(node); err != nil {
		return nil, err
	}

	if _, err := p.parseBlock(tEndchoice, node, node); err != nil {
		return nil, err
	}

	node.List = node.Next
	node.Next = nil

	return node, nil
}

func (p *parser) parseMenuOrComment(parent *MenuNode, isMenu bool) (*MenuNode, error) {
	k := p.kconfig

	t := p.next()
	if t.kind != tStr {
		return nil, p.errAt(ErrSyntax.With(
			slog.String("expected", "quoted prompt"),
		))
	}

	item := CommentItem
	if isMenu {
		item = MenuItem
	}

	node := &MenuNode{
		kconfig:   k,
		Item:      item,
		Parent:    parent,
		Prompt:    t.text,
		HasPrompt: true,
		Dep:       k.yExpr(),
		Filename:  p.cur().name,
		Linenr:    p.cur().lineno,
	}

	if err := p.expectEOL(); err != nil {
		return nil, err
	}

	if err := p.parseProps(node); err != nil {
		return nil, err
	}

	if isMenu {
		if _, err := p.parseBlock(tEndmenu, node, node); err != nil {
			return nil, err
		}

		node.List = node.Next
		node.Next = nil
	}

	return node, nil
}

// parseSource handles source, rsource, and osource. The included file's
// entries continue the current sibling chain, so the directive itself
// leaves no node behind.
func (p *parser) parseSource(kind tokenKind, parent, prev *MenuNode) (*MenuNode, error) {
	k := p.kconfig

	t := p.next()
	if t.kind != tStr {
		return nil, p.errAt(ErrSyntax.With(
			slog.String("expected", "quoted file path"),
		))
	}

	if err := p.expectEOL(); err != nil {
		return nil, err
	}

	name := t.text
	if kind == tRsource {
		name = filepath.Join(filepath.Dir(p.cur().name), name)
	}

	data, resolved, err := k.openFile(name)
	if err != nil {
		if kind == tOsource {
			return prev, nil
		}

		return nil, p.errAt(ErrReadSource.Wrap(err).With(
			slog.String("path", name),
		))
	}

	for _, f := range p.files {
		if f.path == resolved {
			return nil, p.errAt(ErrRecursiveInclude.With(
				slog.String("path", name),
				slog.String("chain", p.includeChain()),
			))
		}
	}

	p.files = append(p.files, &srcFile{
		name:  name,
		path:  resolved,
		lines: splitLines(string(data)),
	})

	prev, err = p.parseBlock(tEOL, parent, prev)

	p.files = p.files[:len(p.files)-1]

	return prev, err
}

func (p *parser) includeChain() string {
	names := make([]string, len(p.files))
	for i, f := range p.files {
		names[i] = f.name
	}

	return strings.Join(names, " -> ")
}

// parseProps parses the property lines following a config, menuconfig,
// choice, menu, or comment line, attaching them to the node. The first
// non-property line is handed back for the enclosing block.
func (p *parser) parseProps(node *MenuNode) error {
	k := p.kconfig

	for {
		ok, err := p.nextLine()
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}

		t0 := p.next()

		switch t0.kind {
		case tBool, tTristate, tString, tInt, tHex:
			p.setType(node, propType(t0.kind))

			if p.peek().kind == tStr {
				if err := p.parsePrompt(node); err != nil {
					return err
				}
			}

		case tDefBool, tDefTristate:
			typ := TypeBool
			if t0.kind == tDefTristate {
				typ = TypeTristate
			}

			p.setType(node, typ)

			if err := p.parseDefault(node); err != nil {
				return err
			}

		case tPrompt:
			if p.peek().kind != tStr {
				return p.errAt(ErrSyntax.With(
					slog.String("expected", "quoted prompt"),
				))
			}

			if err := p.parsePrompt(node); err != nil {
				return err
			}

		case tDefault:
			if err := p.parseDefault(node); err != nil {
				return err
			}

		case tDepends:
			if p.next().kind != tOn {
				return p.errAt(ErrSyntax.With(
					slog.String("expected", "'on' after 'depends'"),
				))
			}

			expr, err := p.parseExpr(true)
			if err != nil {
				return err
			}

			node.Dep = k.makeAnd(node.Dep, expr)

		case tSelect, tImply:
			if _, ok := node.Item.(*Symbol); !ok {
				return p.errAt(ErrMisplacedKeyword.With(
					slog.String("keyword", t0.text),
				))
			}

			t := p.next()
			if t.kind != tName {
				return p.errAt(ErrSyntax.With(
					slog.String("expected", "symbol name"),
				))
			}

			target := p.refSym(t.text)

			cond, err := p.parseCond()
			if err != nil {
				return err
			}

			prop := TargetProp{Target: target, Cond: cond}

			if t0.kind == tSelect {
				node.selects = append(node.selects, prop)
			} else {
				node.implies = append(node.implies, prop)
			}

		case tRange:
			low, err := p.operandSym()
			if err != nil {
				return err
			}

			high, err := p.operandSym()
			if err != nil {
				return err
			}

			cond, err := p.parseCond()
			if err != nil {
				return err
			}

			node.ranges = append(node.ranges, RangeProp{
				Low: low, High: high, Cond: cond,
			})

		case tVisible:
			if p.next().kind != tIf {
				return p.errAt(ErrSyntax.With(
					slog.String("expected", "'if' after 'visible'"),
				))
			}

			if node.Item != MenuItem {
				return p.errAt(ErrMisplacedKeyword.With(
					slog.String("keyword", "visible if"),
				))
			}

			expr, err := p.parseExpr(true)
			if err != nil {
				return err
			}

			node.VisibleIf = k.makeAnd(node.VisibleIf, expr)

		case tOptional:
			choice, ok := node.Item.(*Choice)
			if !ok {
				return p.errAt(ErrMisplacedKeyword.With(
					slog.String("keyword", "optional"),
				))
			}

			choice.isOptional = true

		case tOption:
			if err := p.parseOption(node); err != nil {
				return err
			}

		case tHelp:
			if err := p.expectEOL(); err != nil {
				return err
			}

			p.parseHelp(node)

			continue

		default:
			p.reuse = true

			return nil
		}

		if err := p.expectEOL(); err != nil {
			return err
		}
	}
}

func propType(kind tokenKind) Type {
	switch kind {
	case tBool:
		return TypeBool
	case tTristate:
		return TypeTristate
	case tString:
		return TypeString
	case tInt:
		return TypeInt
	default:
		return TypeHex
	}
}

func (p *parser) setType(node *MenuNode, typ Type) {
	var cur *Type

	switch item := node.Item.(type) {
	case *Symbol:
		cur = &item.origType
	case *Choice:
		cur = &item.origType
	default:
		return
	}

	if *cur != TypeUnknown && *cur != typ {
		p.kconfig.warn(itemName(node.Item) +
			" defined with multiple types, " + typ.String() + " wins")
	}

	*cur = typ
}

func (p *parser) parsePrompt(node *MenuNode) error {
	t := p.next()

	if node.HasPrompt {
		p.kconfig.warn(itemName(node.Item) +
			" defined with multiple prompts in single location")
	}

	cond, err := p.parseCond()
	if err != nil {
		return err
	}

	node.Prompt = t.text
	node.PromptCond = cond
	node.HasPrompt = true

	return nil
}

func (p *parser) parseDefault(node *MenuNode) error {
	value, err := p.parseExpr(false)
	if err != nil {
		return err
	}

	cond, err := p.parseCond()
	if err != nil {
		return err
	}

	node.defaults = append(node.defaults, DefaultProp{Value: value, Cond: cond})

	return nil
}

// parseCond parses an optional trailing "if <expr>".
func (p *parser) parseCond() (*Expr, error) {
	if p.peek().kind != tIf {
		return nil, nil
	}

	p.next()

	return p.parseExpr(true)
}

func (p *parser) operandSym() (*Symbol, error) {
	t := p.next()

	switch t.kind {
	case tName:
		return p.refSym(t.text), nil
	case tStr:
		return p.kconfig.getConst(t.text), nil
	}

	return nil, p.errAt(ErrSyntax.With(
		slog.String("expected", "symbol or constant"),
	))
}

func (p *parser) parseOption(node *MenuNode) error {
	k := p.kconfig

	sym, isSym := node.Item.(*Symbol)

	t := p.next()

	switch {
	case t.kind == tModules && isSym:
		k.modules = sym

	case t.kind == tDefconfigList && isSym:
		if k.defconfigList == nil {
			k.defconfigList = sym
		} else {
			k.warn("trying to redefine the defconfig symbol, keeping " +
				k.defconfigList.Name)
		}

	case t.kind == tAllnoconfigY && isSym:
		sym.isAllNoconfigY = true

	case t.kind == tEnv && isSym:
		if p.next().kind != tEqual || p.peek().kind != tStr {
			return p.errAt(ErrSyntax.With(
				slog.String("expected", "env=\"VARIABLE\""),
			))
		}

		name := p.next().text
		sym.envVar = name

		if value, ok := k.env[name]; ok {
			node.defaults = append(node.defaults, DefaultProp{
				Value: symExpr(k.getConst(value)),
			})
		} else {
			k.warn(sym.nameAndLoc() + " has 'option env=\"" + name +
				"\"', but the environment variable is not set")
		}

	default:
		return p.errAt(ErrSyntax.With(
			slog.String("expected", "option name"),
		))
	}

	return nil
}

// parseHelp captures an indentation-delimited help block from the physical
// lines following the help keyword.
func (p *parser) parseHelp(node *MenuNode) {
	f := p.cur()

	for f.idx < len(f.lines) &&
		strings.TrimSpace(f.lines[f.idx]) == "" {
		f.idx++
	}

	if f.idx >= len(f.lines) {
		p.emptyHelp(node)

		return
	}

	indent := indentation(f.lines[f.idx])
	if indent == 0 {
		p.emptyHelp(node)

		return
	}

	var lines []string

	for f.idx < len(f.lines) {
		line := expandTabs(f.lines[f.idx])

		if strings.TrimSpace(line) == "" {
			lines = append(lines, "")
			f.idx++

			continue
		}

		if indentation(line) < indent {
			break
		}

		lines = append(lines, line[indent:])
		f.idx++
	}

	node.Help = strings.TrimRight(strings.Join(lines, "\n"), " \t\n") + "\n"
}

func (p *parser) emptyHelp(node *MenuNode) {
	node.Help = ""
	p.kconfig.warn(itemName(node.Item) + " has 'help' but empty help text")
}

func itemName(item any) string {
	switch it := item.(type) {
	case *Symbol:
		return it.Name
	case *Choice:
		return it.nameAndLoc()
	default:
		return "<menu>"
	}
}

// expandTabs replaces tabs with spaces, using 8-column tab stops.
func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\t' {
			b.WriteString(strings.Repeat(" ", 8-b.Len()%8))
		} else {
			b.WriteByte(s[i])
		}
	}

	return b.String()
}

// indentation returns the width of a line's leading whitespace, with tabs
// expanded.
func indentation(s string) int {
	width := 0

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			width++
		case '\t':
			width += 8 - width%8
		default:
			return width
		}
	}

	return width
}

// parseExpr parses "expr1 || expr2 || ...". When transformM is set, a bare
// m is rewritten to m && the modules symbol, so conditions written as
// "if m" track module support.
func (p *parser) parseExpr(transformM bool) (*Expr, error) {
	e, err := p.parseAnd(transformM)
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tOr {
		p.next()

		r, err := p.parseAnd(transformM)
		if err != nil {
			return nil, err
		}

		e = &Expr{Op: OpOr, L: e, R: r}
	}

	return e, nil
}

func (p *parser) parseAnd(transformM bool) (*Expr, error) {
	e, err := p.parseFactor(transformM)
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tAnd {
		p.next()

		r, err := p.parseFactor(transformM)
		if err != nil {
			return nil, err
		}

		e = &Expr{Op: OpAnd, L: e, R: r}
	}

	return e, nil
}

func (p *parser) parseFactor(transformM bool) (*Expr, error) {
	t := p.next()

	switch t.kind {
	case tName, tStr:
		sym := p.factorSym(t)

		op, isRel := relOp(p.peek().kind)
		if !isRel {
			if transformM && sym == p.kconfig.constSyms["m"] {
				return &Expr{
					Op: OpAnd,
					L:  symExpr(sym),
					R:  symExpr(p.kconfig.modules),
				}, nil
			}

			return symExpr(sym), nil
		}

		p.next()

		rt := p.next()
		if rt.kind != tName && rt.kind != tStr {
			return nil, p.errAt(ErrExpectedExpr.With(
				slog.String("after", op.String()),
			))
		}

		return &Expr{Op: op, L: symExpr(sym), R: symExpr(p.factorSym(rt))}, nil

	case tNot:
		f, err := p.parseFactor(transformM)
		if err != nil {
			return nil, err
		}

		return &Expr{Op: OpNot, L: f}, nil

	case tOpenParen:
		e, err := p.parseExpr(transformM)
		if err != nil {
			return nil, err
		}

		if p.next().kind != tCloseParen {
			return nil, p.errAt(ErrSyntax.With(
				slog.String("expected", "closing parenthesis"),
			))
		}

		return e, nil
	}

	return nil, p.errAt(ErrExpectedExpr.With(slog.String("token", t.text)))
}

func (p *parser) factorSym(t token) *Symbol {
	if t.kind == tStr {
		return p.kconfig.getConst(t.text)
	}

	return p.refSym(t.text)
}

func relOp(kind tokenKind) (ExprOp, bool) {
	switch kind {
	case tEqual:
		return OpEqual, true
	case tUnequal:
		return OpUnequal, true
	case tLess:
		return OpLess, true
	case tLessEqual:
		return OpLessEqual, true
	case tGreater:
		return OpGreater, true
	case tGreaterEqual:
		return OpGreaterEqual, true
	}

	return 0, false
}

// finalizeNode propagates dependencies into a node's children, merges
// node-local properties into symbols and choices, and restructures the
// tree: entries that depend on the preceding symbol become an implicit
// submenu under it, if blocks dissolve into their parents, and choices
// adopt their member symbols.
func (p *parser) finalizeNode(node *MenuNode, visibleIf *Expr) {
	k := p.kconfig

	switch node.Item.(type) {
	case *Symbol, *Choice:
		if node.HasPrompt && visibleIf != nil {
			node.PromptCond = k.makeAnd(node.PromptCond, visibleIf)
		}
	}

	if sym, ok := node.Item.(*Symbol); ok {
		p.addPropsToSym(node, sym)

		// Entries following the symbol that depend on it form an
		// implicit submenu rooted at it.
		cur := node
		for cur.Next != nil && autoMenuDep(node, cur.Next) {
			p.finalizeNode(cur.Next, visibleIf)
			cur = cur.Next
			cur.Parent = node
		}

		if cur != node {
			node.List = node.Next
			node.Next = cur.Next
			cur.Next = nil
		}
	} else if node.List != nil {
		if node.Item == MenuItem && node.VisibleIf != nil {
			visibleIf = k.makeAnd(visibleIf, node.VisibleIf)
		}

		p.propagateDeps(node)

		for cur := node.List; cur != nil; cur = cur.Next {
			p.finalizeNode(cur, visibleIf)
		}
	}

	if node.List != nil {
		flattenPromptless(node.List)
		removeIfNodes(node)
	}

	if choice, ok := node.Item.(*Choice); ok {
		choice.directDep = k.makeOr(choice.directDep, node.Dep)
		choice.defaults = append(choice.defaults, node.defaults...)

		finalizeChoice(node, choice)
	}
}

// propagateDeps folds a node's dependencies into each direct child. For
// choices the choice itself is the dependency, so member visibility tracks
// the choice mode.
func (p *parser) propagateDeps(node *MenuNode) {
	k := p.kconfig

	basedep := node.Dep
	if choice, ok := node.Item.(*Choice); ok {
		basedep = choiceExpr(choice)
	}

	for cur := node.List; cur != nil; cur = cur.Next {
		cur.Dep = k.makeAnd(cur.Dep, basedep)
		dep := cur.Dep

		switch cur.Item.(type) {
		case *Symbol, *Choice:
			if cur.HasPrompt {
				cur.PromptCond = k.makeAnd(cur.PromptCond, dep)
			}

			for i := range cur.defaults {
				cur.defaults[i].Cond = k.makeAnd(cur.defaults[i].Cond, dep)
			}

			for i := range cur.ranges {
				cur.ranges[i].Cond = k.makeAnd(cur.ranges[i].Cond, dep)
			}

			for i := range cur.selects {
				cur.selects[i].Cond = k.makeAnd(cur.selects[i].Cond, dep)
			}

			for i := range cur.implies {
				cur.implies[i].Cond = k.makeAnd(cur.implies[i].Cond, dep)
			}

		default:
			if cur.HasPrompt {
				cur.PromptCond = k.makeAnd(cur.PromptCond, dep)
			}
		}
	}
}

// addPropsToSym merges a menu node's properties into its symbol and
// accumulates the reverse dependencies of select and imply targets.
func (p *parser) addPropsToSym(node *MenuNode, sym *Symbol) {
	k := p.kconfig

	sym.directDep = k.makeOr(sym.directDep, node.Dep)

	sym.defaults = append(sym.defaults, node.defaults...)
	sym.ranges = append(sym.ranges, node.ranges...)
	sym.selects = append(sym.selects, node.selects...)
	sym.implies = append(sym.implies, node.implies...)

	for _, sel := range node.selects {
		sel.Target.revDep = k.makeOr(sel.Target.revDep,
			k.makeAnd(symExpr(sym), sel.Cond))
	}

	for _, imp := range node.implies {
		imp.Target.weakRevDep = k.makeOr(imp.Target.weakRevDep,
			k.makeAnd(symExpr(sym), imp.Cond))
	}
}

// autoMenuDep reports whether the second node depends on the first node's
// symbol, which nests it under the first in the menu tree.
func autoMenuDep(node1, node2 *MenuNode) bool {
	sym, ok := node1.Item.(*Symbol)
	if !ok {
		return false
	}

	expr := node2.Dep
	if node2.HasPrompt {
		expr = node2.PromptCond
	}

	return exprContains(expr, sym)
}

// flattenPromptless splices the children of promptless structural nodes,
// mainly if blocks, in as following siblings, keeping menu order flat.
func flattenPromptless(node *MenuNode) {
	for ; node != nil; node = node.Next {
		if node.List == nil || node.HasPrompt {
			continue
		}

		last := node.List
		for {
			last.Parent = node.Parent

			if last.Next == nil {
				break
			}

			last = last.Next
		}

		last.Next = node.Next
		node.Next = node.List
		node.List = nil
	}
}

// removeIfNodes drops the emptied if nodes from a node's child list.
func removeIfNodes(node *MenuNode) {
	cur := node.List
	for cur != nil && cur.Item == nil {
		cur = cur.Next
	}

	node.List = cur

	for cur != nil {
		next := cur.Next
		for next != nil && next.Item == nil {
			next = next.Next
		}

		cur.Next = next
		cur = next
	}
}

// finalizeChoice adopts the direct child symbols as choice members and
// infers missing types in both directions.
func finalizeChoice(node *MenuNode, choice *Choice) {
	for cur := node.List; cur != nil; cur = cur.Next {
		if sym, ok := cur.Item.(*Symbol); ok {
			sym.choice = choice
			choice.syms = append(choice.syms, sym)
		}
	}

	if choice.origType == TypeUnknown {
		for _, sym := range choice.syms {
			if sym.origType != TypeUnknown {
				choice.origType = sym.origType

				break
			}
		}
	}

	for _, sym := range choice.syms {
		if sym.origType == TypeUnknown {
			sym.origType = choice.origType
		}
	}
}

// buildDeps indexes, for every symbol and choice, the entities whose cached
// values must be recomputed when it changes.
func (k *Kconfig) buildDeps() {
	type edge struct{ src, dst dependent }

	seen := make(map[edge]bool)

	addEdge := func(src, dst dependent) {
		if src == dst || seen[edge{src, dst}] {
			return
		}

		seen[edge{src, dst}] = true

		switch s := src.(type) {
		case *Symbol:
			s.dependents = append(s.dependents, dst)
		case *Choice:
			s.dependents = append(s.dependents, dst)
		}
	}

	var addExpr func(dst dependent, e *Expr)
	addExpr = func(dst dependent, e *Expr) {
		if e == nil {
			return
		}

		if e.Op == OpSym {
			switch {
			case e.Choice != nil:
				addEdge(e.Choice, dst)
			case !e.Sym.isConstant:
				addEdge(e.Sym, dst)
			}

			return
		}

		addExpr(dst, e.L)

		if e.Op != OpNot {
			addExpr(dst, e.R)
		}
	}

	for _, sym := range k.definedSyms {
		for _, node := range sym.nodes {
			if node.HasPrompt {
				addExpr(sym, node.PromptCond)
			}
		}

		for _, def := range sym.defaults {
			addExpr(sym, def.Value)
			addExpr(sym, def.Cond)
		}

		for _, r := range sym.ranges {
			if !r.Low.isConstant {
				addEdge(r.Low, sym)
			}

			if !r.High.isConstant {
				addEdge(r.High, sym)
			}

			addExpr(sym, r.Cond)
		}

		addExpr(sym, sym.revDep)
		addExpr(sym, sym.weakRevDep)
		addExpr(sym, sym.directDep)
	}

	for _, choice := range k.choices {
		for _, node := range choice.nodes {
			if node.HasPrompt {
				addExpr(choice, node.PromptCond)
			}
		}

		for _, def := range choice.defaults {
			addExpr(choice, def.Cond)
		}

		// Choice and members invalidate each other: member values feed
		// the mode, and the mode feeds member visibility.
		for _, sym := range choice.syms {
			addEdge(sym, choice)
			addEdge(choice, sym)
		}
	}
}

// checkUndefined warns once for every symbol that was referenced but never
// defined. Number-like names are literals, not missing symbols.
func (k *Kconfig) checkUndefined() {
	names := make([]string, 0, len(k.syms))
	for name := range k.syms {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		sym := k.syms[name]

		if len(sym.nodes) != 0 || !sym.referenced || isNumName(name) {
			continue
		}

		k.warn("undefined symbol " + name + ", referenced at " +
			sym.refFile + ":" + strconv.Itoa(sym.refLine))
	}
}

func isNumName(name string) bool {
	if _, err := strconv.ParseInt(name, 0, 64); err == nil {
		return true
	}

	_, err := strconv.ParseInt(name, 16, 64)

	return err == nil
}
