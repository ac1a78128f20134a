package kconfig

import (
	"log/slog"
	"strings"
)

// tokenKind identifies a lexical token produced from a Kconfig line.
type tokenKind int

const (
	tEOL tokenKind = iota

	// Keywords
	tConfig
	tMenuconfig
	tChoice
	tEndchoice
	tMenu
	tEndmenu
	tComment
	tIf
	tEndif
	tMainmenu
	tSource
	tRsource
	tOsource
	tBool
	tTristate
	tString
	tInt
	tHex
	tDefBool
	tDefTristate
	tPrompt
	tDefault
	tDepends
	tOn
	tSelect
	tImply
	tRange
	tVisible
	tOptional
	tOption
	tHelp
	tModules
	tDefconfigList
	tAllnoconfigY
	tEnv

	// Punctuation and operators
	tAnd
	tOr
	tNot
	tEqual
	tUnequal
	tLess
	tLessEqual
	tGreater
	tGreaterEqual
	tOpenParen
	tCloseParen

	// Operands
	tName // unquoted word, resolves to a symbol
	tStr  // quoted string literal
)

var keywords = map[string]tokenKind{
	"config":         tConfig,
	"menuconfig":     tMenuconfig,
	"choice":         tChoice,
	"endchoice":      tEndchoice,
	"menu":           tMenu,
	"endmenu":        tEndmenu,
	"comment":        tComment,
	"if":             tIf,
	"endif":          tEndif,
	"mainmenu":       tMainmenu,
	"source":         tSource,
	"rsource":        tRsource,
	"osource":        tOsource,
	"bool":           tBool,
	"boolean":        tBool,
	"tristate":       tTristate,
	"string":         tString,
	"int":            tInt,
	"hex":            tHex,
	"def_bool":       tDefBool,
	"def_tristate":   tDefTristate,
	"prompt":         tPrompt,
	"default":        tDefault,
	"depends":        tDepends,
	"on":             tOn,
	"select":         tSelect,
	"imply":          tImply,
	"range":          tRange,
	"visible":        tVisible,
	"optional":       tOptional,
	"option":         tOption,
	"help":           tHelp,
	"modules":        tModules,
	"defconfig_list": tDefconfigList,
	"allnoconfig_y":  tAllnoconfigY,
	"env":            tEnv,
}

// token is a single lexical token. Name tokens carry the word, string tokens
// the unquoted, expanded text.
type token struct {
	kind tokenKind
	text string
}

// isSymChar reports whether c may appear in a symbol name as written in a
// configuration file.
func isSymChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_'
}

// isNameChar reports whether c may appear in an unquoted operand inside a
// Kconfig file. Beyond symbol-name characters this covers negative number
// literals and bare path fragments.
func isNameChar(c byte) bool {
	return isSymChar(c) || c == '-' || c == '$' || c == '/' || c == '.'
}

// tokenize splits a logical line into tokens. The first word of a line is
// matched against the keyword table. Later words are matched only against
// the keywords valid in non-leading position (operators, 'if', 'on', option
// names), so symbols may freely be named "menu" or "int".
func (k *Kconfig) tokenize(line string) ([]token, error) {
	var toks []token

	i := 0
	n := len(line)

	for i < n {
		c := line[i]

		switch {
		case c == ' ' || c == '\t':
			i++

		case c == '#':
			i = n

		case c == '"' || c == '\'':
			text, rest, err := lexString(line[i:])
			if err != nil {
				return nil, err
			}

			i = n - len(rest)

			toks = append(toks, token{kind: tStr, text: k.expand(text)})

		case isNameChar(c):
			j := i
			for j < n && isNameChar(line[j]) {
				j++
			}

			word := line[i:j]
			i = j

			kind, ok := keywordKind(word, len(toks) == 0)
			if !ok {
				kind = tName
			}

			toks = append(toks, token{kind: kind, text: word})

		case c == '&':
			if i+1 >= n || line[i+1] != '&' {
				return nil, ErrUnexpectedToken.With(slog.String("token", "&"))
			}

			i += 2

			toks = append(toks, token{kind: tAnd})

		case c == '|':
			if i+1 >= n || line[i+1] != '|' {
				return nil, ErrUnexpectedToken.With(slog.String("token", "|"))
			}

			i += 2

			toks = append(toks, token{kind: tOr})

		case c == '!':
			if i+1 < n && line[i+1] == '=' {
				i += 2

				toks = append(toks, token{kind: tUnequal})
			} else {
				i++

				toks = append(toks, token{kind: tNot})
			}

		case c == '=':
			i++

			toks = append(toks, token{kind: tEqual})

		case c == '<':
			if i+1 < n && line[i+1] == '=' {
				i += 2

				toks = append(toks, token{kind: tLessEqual})
			} else {
				i++

				toks = append(toks, token{kind: tLess})
			}

		case c == '>':
			if i+1 < n && line[i+1] == '=' {
				i += 2

				toks = append(toks, token{kind: tGreaterEqual})
			} else {
				i++

				toks = append(toks, token{kind: tGreater})
			}

		case c == '(':
			i++

			toks = append(toks, token{kind: tOpenParen})

		case c == ')':
			i++

			toks = append(toks, token{kind: tCloseParen})

		default:
			return nil, ErrUnexpectedToken.With(
				slog.String("token", string(c)),
			)
		}
	}

	return toks, nil
}

// keywordKind resolves a word to a keyword token. In leading position every
// keyword matches. Elsewhere only the words that can legally follow another
// token do, so "int" and friends stay usable as symbol names inside
// expressions.
func keywordKind(word string, leading bool) (tokenKind, bool) {
	kind, ok := keywords[word]
	if !ok {
		return 0, false
	}

	if leading {
		return kind, true
	}

	switch kind {
	case tIf, tOn, tModules, tDefconfigList, tAllnoconfigY, tEnv:
		return kind, true
	}

	return 0, false
}

// lexString consumes a quoted string at the start of s and returns its
// unquoted text and the remainder of the line. A backslash escapes the
// character after it, whatever it is.
func lexString(s string) (text, rest string, err error) {
	quote := s[0]

	var b strings.Builder

	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return "", "", ErrUnterminated
			}

			i++

			b.WriteByte(s[i])

		case quote:
			return b.String(), s[i+1:], nil

		default:
			b.WriteByte(s[i])
		}
	}

	return "", "", ErrUnterminated
}

// escapeString prepares a string value for writing inside double quotes,
// backslash-escaping the two characters that need it.
func escapeString(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}

		b.WriteByte(s[i])
	}

	return b.String()
}

// unescapeString removes one level of backslash escaping. A backslash
// preceding any character is dropped.
func unescapeString(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}

		b.WriteByte(s[i])
	}

	return b.String()
}

// expand substitutes $(NAME) references in a string from the environment
// snapshot taken at construction. Unknown names expand to the empty string.
func (k *Kconfig) expand(s string) string {
	if !strings.Contains(s, "$(") {
		return s
	}

	var b strings.Builder

	for {
		start := strings.Index(s, "$(")
		if start < 0 {
			b.WriteString(s)

			return b.String()
		}

		end := strings.IndexByte(s[start:], ')')
		if end < 0 {
			b.WriteString(s)

			return b.String()
		}

		b.WriteString(s[:start])
		b.WriteString(k.env[s[start+2:start+end]])

		s = s[start+end+1:]
	}
}
