package kconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// DefaultConfigHeader is written at the top of saved configuration files
// when the caller supplies no header of its own.
const DefaultConfigHeader = "# Generated configuration, do not edit\n"

// LoadConfig reads a configuration file and applies its assignments as
// user values. With replace set, all existing user values are cleared
// first, so the file fully defines the configuration; otherwise the file
// merges over the current values. An empty path falls back to
// $KCONFIG_CONFIG, then ".config".
func (k *Kconfig) LoadConfig(path string, replace bool) error {
	if path == "" {
		path = k.env["KCONFIG_CONFIG"]
		if path == "" {
			path = ".config"
		}
	}

	data, resolved, err := k.openFile(path)
	if err != nil {
		return ErrReadSource.Wrap(err).With(slog.String("path", path))
	}

	k.logger.Debug("loading configuration",
		slog.String("path", resolved),
		slog.Bool("replace", replace),
	)

	if replace {
		k.UnsetValues()
		k.ConfigHeader = ""
	}

	k.warnNoPrompt = false
	defer func() { k.warnNoPrompt = true }()

	seen := make(map[*Symbol]string)
	inHeader := true

	var header strings.Builder

	for i, line := range splitLines(string(data)) {
		lineno := i + 1

		switch {
		case strings.HasPrefix(line, "#"):
			if name, ok := k.parseNotSet(line); ok {
				inHeader = false
				k.applyAssign(name, "n", path, lineno, seen)
			} else if inHeader {
				header.WriteString(line)
				header.WriteByte('\n')
			}

		case strings.TrimSpace(line) == "":
			inHeader = false

		default:
			inHeader = false

			name, value, ok := k.parseAssign(line)
			if !ok {
				k.warn("ignoring malformed line \"" + line + "\" in " +
					path + ":" + strconv.Itoa(lineno))

				continue
			}

			k.applyAssign(name, value, path, lineno, seen)
		}
	}

	if replace {
		k.ConfigHeader = header.String()
	}

	return nil
}

// parseNotSet matches the "# <prefix>NAME is not set" comment form.
func (k *Kconfig) parseNotSet(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "# "+k.configPrefix)
	if !ok {
		return "", false
	}

	name, ok := strings.CutSuffix(rest, " is not set")
	if !ok || name == "" {
		return "", false
	}

	for i := 0; i < len(name); i++ {
		if !isSymChar(name[i]) {
			return "", false
		}
	}

	return name, true
}

// parseAssign matches a "<prefix>NAME=value" line. Indented lines do not
// match and are ignored as malformed.
func (k *Kconfig) parseAssign(line string) (name, value string, ok bool) {
	rest, ok := strings.CutPrefix(line, k.configPrefix)
	if !ok {
		return "", "", false
	}

	eq := strings.IndexByte(rest, '=')
	if eq <= 0 {
		return "", "", false
	}

	name = rest[:eq]
	for i := 0; i < len(name); i++ {
		if !isSymChar(name[i]) {
			return "", "", false
		}
	}

	return name, rest[eq+1:], true
}

// applyAssign applies one assignment from a configuration file, with the
// diagnostics the reference format calls for: unknown names warn and are
// skipped, repeated names warn, and string values must be quoted.
func (k *Kconfig) applyAssign(name, value string, path string, lineno int,
	seen map[*Symbol]string) {
	sym, ok := k.syms[name]
	if !ok || len(sym.nodes) == 0 {
		k.warnUndefAssign(k.configPrefix+name, path, lineno)

		return
	}

	switch sym.origType {
	case TypeBool, TypeTristate:
		if _, ok := triFromString(value); !ok {
			k.warn("'" + value + "' is not a valid value for the " +
				sym.origType.String() + " symbol " + sym.nameAndLoc() +
				", assignment ignored")

			return
		}

	case TypeString:
		unquoted, ok := unquoteValue(value)
		if !ok {
			k.warn("malformed string literal in assignment to " +
				sym.nameAndLoc() + ", assignment ignored")

			return
		}

		value = unquoted
	}

	if prior, dup := seen[sym]; dup && k.warnRedun {
		if prior == value {
			k.warn("redundant assignment to " + sym.nameAndLoc() + " in " +
				path + ":" + strconv.Itoa(lineno))
		} else {
			k.warn(sym.nameAndLoc() + " set more than once. Old value \"" +
				prior + "\", new value \"" + value + "\"")
		}
	}

	seen[sym] = value

	sym.SetValue(value)
}

// unquoteValue strips the double quotes around a string value and removes
// one level of escaping.
func unquoteValue(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}

	return unescapeString(s[1 : len(s)-1]), true
}

// WriteConfig saves the current configuration to path in the on-disk
// format, prefixed by the given header comment block. An empty header
// falls back to the header of the most recently loaded file, then to
// DefaultConfigHeader.
func (k *Kconfig) WriteConfig(path, header string) error {
	if header == "" {
		header = k.ConfigHeader
	}

	if header == "" {
		header = DefaultConfigHeader
	}

	var b strings.Builder

	b.WriteString(header)

	seen := make(map[*Symbol]bool)

	k.topNode.Walk(func(node *MenuNode) bool {
		switch item := node.Item.(type) {
		case *Symbol:
			if !seen[item] {
				seen[item] = true
				k.writeSymLine(&b, item)
			}

		case ItemKind:
			// Menu and comment headers structure the output the same
			// way they structure the menus.
			if exprValue(node.Dep) != No &&
				(item == CommentItem || exprValue(node.VisibleIf) != No) {
				b.WriteString("\n#\n# " + node.Prompt + "\n#\n")
			}
		}

		return true
	})

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return WrapError(err).With(slog.String("path", path))
	}

	k.logger.Debug("configuration written", slog.String("path", path))

	return nil
}

func (k *Kconfig) writeSymLine(b *strings.Builder, sym *Symbol) {
	val := sym.StrValue()

	// StrValue computes whether the symbol belongs in the output
	if !sym.writeToConf {
		return
	}

	name := k.configPrefix + sym.Name

	switch sym.origType {
	case TypeBool, TypeTristate:
		if sym.TriValue() == No {
			b.WriteString("# " + name + " is not set\n")
		} else {
			b.WriteString(name + "=" + val + "\n")
		}

	case TypeString:
		if val != "" || sym.Visibility() != No {
			b.WriteString(name + "=\"" + escapeString(val) + "\"\n")
		}

	case TypeInt, TypeHex:
		if val != "" {
			b.WriteString(name + "=" + val + "\n")
		}
	}
}
