package core

import (
	"fmt"
	"strconv"
	"strings"
)

// FormKind tags the variant carried by a Form.
type FormKind int

const (
	FormSymbol FormKind = iota
	FormInt
	FormFloat
	FormStr
	FormBool
	FormNil
	FormList
	FormQuoted
	FormUnquoted
)

// Form is a parsed source tree node. Forms are immutable after parsing.
// quote turns a Form into plain data Values (symbols, lists, literals;
// see FormToValue in value.go), and the ValForm Value variant carries a
// *Form directly where one is handed back as-is (macroexpand's result).
type Form struct {
	Kind FormKind

	Sym   string  // FormSymbol
	Int   int64   // FormInt
	Float float64 // FormFloat
	Str   string  // FormStr
	Bool  bool    // FormBool

	Children []*Form // FormList
	Inner    *Form   // FormQuoted, FormUnquoted

	// Span is the source position, used only for diagnostics.
	Span Span
}

// Span marks a source location for error reporting. Zero value means
// "unknown" and is never fatal to omit.
type Span struct {
	Line, Col int
}

func Symbol(name string) *Form           { return &Form{Kind: FormSymbol, Sym: name} }
func IntLit(v int64) *Form               { return &Form{Kind: FormInt, Int: v} }
func FloatLit(v float64) *Form           { return &Form{Kind: FormFloat, Float: v} }
func StrLit(v string) *Form              { return &Form{Kind: FormStr, Str: v} }
func BoolLit(v bool) *Form               { return &Form{Kind: FormBool, Bool: v} }
func NilLit() *Form                      { return &Form{Kind: FormNil} }
func List(children ...*Form) *Form       { return &Form{Kind: FormList, Children: children} }
func ListOf(children []*Form) *Form      { return &Form{Kind: FormList, Children: children} }
func Quoted(inner *Form) *Form           { return &Form{Kind: FormQuoted, Inner: inner} }
func Unquoted(inner *Form) *Form         { return &Form{Kind: FormUnquoted, Inner: inner} }

// IsSymbolNamed reports whether f is a bare symbol with the given name.
// Used throughout the dispatcher to recognize special-form heads.
func (f *Form) IsSymbolNamed(name string) bool {
	return f != nil && f.Kind == FormSymbol && f.Sym == name
}

// Head returns the first element of a FormList, or nil.
func (f *Form) Head() *Form {
	if f == nil || f.Kind != FormList || len(f.Children) == 0 {
		return nil
	}
	return f.Children[0]
}

// Tail returns all but the first element of a FormList.
func (f *Form) Tail() []*Form {
	if f == nil || f.Kind != FormList || len(f.Children) == 0 {
		return nil
	}
	return f.Children[1:]
}

func (f *Form) String() string {
	if f == nil {
		return "nil"
	}
	switch f.Kind {
	case FormSymbol:
		return f.Sym
	case FormInt:
		return strconv.FormatInt(f.Int, 10)
	case FormFloat:
		return strconv.FormatFloat(f.Float, 'g', -1, 64)
	case FormStr:
		return fmt.Sprintf("%q", f.Str)
	case FormBool:
		if f.Bool {
			return "true"
		}
		return "false"
	case FormNil:
		return "nil"
	case FormQuoted:
		return "'" + f.Inner.String()
	case FormUnquoted:
		return "~" + f.Inner.String()
	case FormList:
		parts := make([]string, len(f.Children))
		for i, c := range f.Children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return "<invalid form>"
	}
}

// Elide renders f the way the call-trace recorder does: nested lists
// past depth collapse to "(...)".
func (f *Form) Elide(depth int) string {
	if f == nil {
		return "nil"
	}
	if f.Kind != FormList {
		return f.String()
	}
	if depth <= 0 {
		return "(...)"
	}
	parts := make([]string, len(f.Children))
	for i, c := range f.Children {
		parts[i] = c.Elide(depth - 1)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Equal reports structural equality, ignoring Span. Used by the quote
// fixpoint property: (quote x) must equal x when x has no Unquoted.
func (f *Form) Equal(other *Form) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.Kind != other.Kind {
		return false
	}
	switch f.Kind {
	case FormSymbol:
		return f.Sym == other.Sym
	case FormInt:
		return f.Int == other.Int
	case FormFloat:
		return f.Float == other.Float
	case FormStr:
		return f.Str == other.Str
	case FormBool:
		return f.Bool == other.Bool
	case FormNil:
		return true
	case FormQuoted, FormUnquoted:
		return f.Inner.Equal(other.Inner)
	case FormList:
		if len(f.Children) != len(other.Children) {
			return false
		}
		for i := range f.Children {
			if !f.Children[i].Equal(other.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}
