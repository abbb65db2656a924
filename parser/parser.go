// Package parser turns source text into core.Form trees.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	parsec "github.com/prataprc/goparsec"

	"github.com/sprig-lang/sprig/core"
)

// Parse reads every top-level Form out of src in order. Trailing
// whitespace/comments after the last form are ignored; any leftover
// text that the grammar could not consume at all is reported as a
// *core.ParseError.
//
// Grounded on bmatsuo-at-luthersystems-elps/parser/parser.go's
// Parse/ParseLVal loop: repeatedly run the top-level parser against
// the remaining Scanner until it stops producing nodes.
func Parse(src string) ([]*core.Form, error) {
	s := parsec.NewScanner([]byte(src))
	grammar := newGrammar()

	var forms []*core.Form
	node, rest := grammar(s)
	for node != nil {
		// expr is built without a Nodify callback, so its result can be
		// a []parsec.ParsecNode wrapping the matched node; flatten
		// unwraps it, and comment terminals fall out in nodeToForm.
		for _, n := range flatten([]parsec.ParsecNode{node}) {
			if f := nodeToForm(n); f != nil {
				forms = append(forms, f)
			}
		}
		s = rest
		node, rest = grammar(s)
	}
	if !s.Endof() && strings.TrimSpace(src[s.GetCursor():]) != "" {
		cursor := s.GetCursor()
		return forms, &core.ParseError{Message: fmt.Sprintf("unexpected input at byte offset %d", cursor)}
	}
	return forms, nil
}

type nodeKind int

const (
	nkTerm nodeKind = iota
	nkList
	nkQuoted
	nkUnquoted
)

type astNode struct {
	kind     nodeKind
	terminal *parsec.Terminal
	isString bool
	str      string // unescaped StrLit content, when isString
	children []*astNode
}

// newGrammar builds the recursive expr parser. The ordering inside
// term's OrdChoice matters: quotedAtom (a `'` glued with no
// intervening space to the symbol/number that follows, e.g. `'if`)
// is tried before bareSymbol so that a tight `'foo` is read as one
// Quoted node, while a `'` followed by whitespace falls through to
// bareSymbol and reads as the ordinary symbol "'" — the alias `quote`
// recognizes as its own name in call-head position.
func newGrammar() parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	tilde := parsec.Atom("~", "TILDE")

	comment := parsec.Token(`;[^\n]*`, "COMMENT")

	str := parsec.String()

	decimal := parsec.Token(`[+-]?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?`, "DECIMAL")

	symbolBody := `(?:\pL|[0-9_+\-*/=<>!&%?.#$])`
	symbolHead := `(?:\pL|[_+\-*/=<>!&%?.#$])`

	quotedAtom := parsec.Token(`'`+symbolHead+symbolBody+`*`, "QUOTEDATOM")
	bareSymbol := parsec.Token(symbolHead+symbolBody+`*`, "SYMBOL")
	bareQuote := parsec.Atom("'", "QUOTE")

	term := parsec.OrdChoice(nodify(nkTerm), str, decimal, quotedAtom, bareSymbol, bareQuote)

	var expr parsec.Parser
	exprList := parsec.Kleene(nil, &expr)
	list := parsec.And(nodify(nkList), openP, exprList, closeP)
	unquoted := parsec.And(nodify(nkUnquoted), tilde, &expr)

	expr = parsec.OrdChoice(nil, comment, unquoted, list, term)
	return expr
}

func nodify(kind nodeKind) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		nodes = flatten(nodes)
		switch kind {
		case nkTerm:
			if len(nodes) == 0 {
				return nil
			}
			switch v := nodes[0].(type) {
			case string:
				// parsec.String() yields the matched text as a raw Go
				// string rather than a *parsec.Terminal.
				return &astNode{kind: nkTerm, isString: true, str: unquoteString(v)}
			case *parsec.Terminal:
				if v.Name == "COMMENT" {
					return nil
				}
				return &astNode{kind: nkTerm, terminal: v}
			default:
				return nil
			}

		case nkList:
			var children []*astNode
			for _, n := range nodes {
				if c, ok := n.(*astNode); ok {
					children = append(children, c)
				}
			}
			return &astNode{kind: nkList, children: children}

		case nkUnquoted:
			var inner *astNode
			for _, n := range nodes {
				if c, ok := n.(*astNode); ok {
					inner = c
				}
			}
			if inner == nil {
				return nil
			}
			return &astNode{kind: nkUnquoted, children: []*astNode{inner}}
		}
		return nil
	}
}

func flatten(nodes []parsec.ParsecNode) []parsec.ParsecNode {
	var out []parsec.ParsecNode
	for _, n := range nodes {
		switch v := n.(type) {
		case []parsec.ParsecNode:
			out = append(out, flatten(v)...)
		case nil:
			// comments and other discarded terminals nodify to nil
		default:
			out = append(out, v)
		}
	}
	return out
}

func nodeToForm(node parsec.ParsecNode) *core.Form {
	n, ok := node.(*astNode)
	if !ok || n == nil {
		return nil
	}
	switch n.kind {
	case nkTerm:
		return termToForm(n)
	case nkList:
		children := make([]*core.Form, 0, len(n.children))
		for _, c := range n.children {
			if f := nodeToForm(c); f != nil {
				children = append(children, f)
			}
		}
		return core.ListOf(children)
	case nkUnquoted:
		if len(n.children) == 0 {
			return nil
		}
		inner := nodeToForm(n.children[0])
		return core.Unquoted(inner)
	}
	return nil
}

func termToForm(n *astNode) *core.Form {
	if n.isString {
		return core.StrLit(n.str)
	}
	t := n.terminal
	switch t.Name {
	case "DECIMAL":
		if strings.ContainsAny(t.Value, ".eE") {
			f, err := strconv.ParseFloat(t.Value, 64)
			if err != nil {
				return core.StrLit(t.Value)
			}
			return core.FloatLit(f)
		}
		i, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return core.StrLit(t.Value)
		}
		return core.IntLit(i)
	case "QUOTEDATOM":
		inner := symbolOrKeyword(t.Value[1:])
		return core.Quoted(inner)
	case "SYMBOL", "QUOTE":
		return symbolOrKeyword(t.Value)
	default:
		return core.Symbol(t.Value)
	}
}

// symbolOrKeyword classifies a bare identifier string as one of the
// three keyword literals (true/false/None/nil) or an ordinary symbol.
func symbolOrKeyword(name string) *core.Form {
	switch name {
	case "true":
		return core.BoolLit(true)
	case "false":
		return core.BoolLit(false)
	case "None", "nil":
		return core.NilLit()
	default:
		return core.Symbol(name)
	}
}

func unquoteString(s string) string {
	if len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
