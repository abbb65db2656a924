package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind tags the variant carried by a Value. Grounded on the
// tagged-struct representation of logos/core's ValueKind, extended with
// ValMacro, ValHostCallable, ValHostObject, and a Form-carrying variant
// for homoiconicity (quote/macro output round-trips through ValForm).
type ValueKind int

const (
	ValNil ValueKind = iota
	ValBool
	ValInt
	ValFloat
	ValString
	ValSymbol
	ValList
	ValFn
	ValMacro
	ValHostCallable
	ValHostObject
	ValForm
	ValBuiltin
)

// BuiltinFn is a native Go implementation of an evaluator builtin —
// arithmetic, list ops, I/O, conversion. Distinct from HostCallable:
// builtins are part of the evaluator itself (§6.4's minimal builtin
// list plus Part D's supplemented arithmetic/list builtins), not
// objects the HostBridge hands out. Only the higher-order builtins
// (map, filter, apply) reach the HostBridge, when the callable they
// are given is a HostCallable.
//
// Grounded on rphilander-logos/core/eval.go's
// `type Builtin func(args []Value) (Value, error)`.
type BuiltinFn func(args []Value) (Value, error)

// Builtin pairs a BuiltinFn with the name it was registered under, for
// error messages and the call-trace recorder.
type Builtin struct {
	Name string
	Fn   BuiltinFn
}

// FnValue is a closure: captured environment, parameter pattern, and
// body forms. Used for both ValFn and ValMacro — macros are flagged via
// ValueKind, not a separate struct, matching the distilled spec's "same
// shape as UserFn but flagged."
type FnValue struct {
	Name    string
	Params  *Form // the raw parameter pattern Form, destructured per call
	Body    []*Form
	Closure *Scope
}

// HostCallable is an opaque handle to something the host runtime can
// invoke via HostBridge.Call.
type HostCallable struct {
	Name string
	Impl any // host-side representation; opaque to the evaluator
}

// HostObject is an opaque handle whose attributes are reachable via `.`.
type HostObject struct {
	Name string
	Impl any
}

// Value is a runtime value. Lists and Strings are value-typed for
// equality; functions and host handles compare by identity.
type Value struct {
	Kind ValueKind

	Bool  bool
	Int   int64
	Float float64
	Str   string // ValString, ValSymbol
	List  *[]Value
	Fn    *FnValue
	Host  *HostCallable
	Obj   *HostObject
	Form  *Form
	Blt   *Builtin
}

func NilVal() Value            { return Value{Kind: ValNil} }
func BoolVal(b bool) Value     { return Value{Kind: ValBool, Bool: b} }
func IntVal(i int64) Value     { return Value{Kind: ValInt, Int: i} }
func FloatVal(f float64) Value { return Value{Kind: ValFloat, Float: f} }
func StringVal(s string) Value { return Value{Kind: ValString, Str: s} }
func SymbolVal(s string) Value { return Value{Kind: ValSymbol, Str: s} }
func FormValOf(f *Form) Value  { return Value{Kind: ValForm, Form: f} }

func ListVal(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: ValList, List: &items}
}

func FnVal(fn *FnValue) Value    { return Value{Kind: ValFn, Fn: fn} }
func MacroVal(fn *FnValue) Value { return Value{Kind: ValMacro, Fn: fn} }

func HostCallableVal(h *HostCallable) Value { return Value{Kind: ValHostCallable, Host: h} }
func HostObjectVal(o *HostObject) Value     { return Value{Kind: ValHostObject, Obj: o} }
func BuiltinVal(b *Builtin) Value           { return Value{Kind: ValBuiltin, Blt: b} }

// Truthy implements the distilled spec's Open-Question decision: Nil
// and Bool-false are falsy, everything else (including 0, "", and the
// empty list) is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValNil:
		return false
	case ValBool:
		return v.Bool
	default:
		return true
	}
}

func (v Value) KindName() string {
	switch v.Kind {
	case ValNil:
		return "nil"
	case ValBool:
		return "bool"
	case ValInt:
		return "int"
	case ValFloat:
		return "float"
	case ValString:
		return "string"
	case ValSymbol:
		return "symbol"
	case ValList:
		return "list"
	case ValFn:
		return "fn"
	case ValMacro:
		return "macro"
	case ValHostCallable:
		return "host-callable"
	case ValHostObject:
		return "host-object"
	case ValForm:
		return "form"
	case ValBuiltin:
		return "builtin"
	default:
		return "invalid"
	}
}

// IsCallable reports whether v can appear in call position.
func (v Value) IsCallable() bool {
	switch v.Kind {
	case ValFn, ValHostCallable, ValBuiltin:
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValNil:
		return "nil"
	case ValBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValInt:
		return strconv.FormatInt(v.Int, 10)
	case ValFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValString:
		return v.Str
	case ValSymbol:
		return v.Str
	case ValForm:
		return v.Form.String()
	case ValList:
		parts := make([]string, len(*v.List))
		for i, item := range *v.List {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	case ValFn:
		if v.Fn.Name != "" {
			return fmt.Sprintf("<fn %s>", v.Fn.Name)
		}
		return "<fn>"
	case ValMacro:
		return fmt.Sprintf("<macro %s>", v.Fn.Name)
	case ValHostCallable:
		return fmt.Sprintf("<host-callable %s>", v.Host.Name)
	case ValHostObject:
		return fmt.Sprintf("<host-object %s>", v.Obj.Name)
	case ValBuiltin:
		return fmt.Sprintf("<builtin %s>", v.Blt.Name)
	default:
		return "<invalid value>"
	}
}

// ValuesEqual implements value-typed equality for Lists and Strings,
// identity equality for functions and host handles.
func ValuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		// Int/Float cross-kind equality is deliberately excluded here;
		// the `=` builtin handles numeric coercion explicitly.
		return false
	}
	switch a.Kind {
	case ValNil:
		return true
	case ValBool:
		return a.Bool == b.Bool
	case ValInt:
		return a.Int == b.Int
	case ValFloat:
		return a.Float == b.Float
	case ValString, ValSymbol:
		return a.Str == b.Str
	case ValForm:
		return a.Form.Equal(b.Form)
	case ValList:
		if len(*a.List) != len(*b.List) {
			return false
		}
		for i := range *a.List {
			if !ValuesEqual((*a.List)[i], (*b.List)[i]) {
				return false
			}
		}
		return true
	case ValFn, ValMacro:
		return a.Fn == b.Fn
	case ValHostCallable:
		return a.Host == b.Host
	case ValHostObject:
		return a.Obj == b.Obj
	case ValBuiltin:
		return a.Blt == b.Blt
	default:
		return false
	}
}

// FormToValue converts a parsed Form into the Value it denotes as
// literal data — the mechanism behind `quote` for forms that carry no
// Unquoted children. Symbols become ValSymbol (not looked up); lists
// become ValList of the same conversion, recursively.
func FormToValue(f *Form) Value {
	if f == nil {
		return NilVal()
	}
	switch f.Kind {
	case FormSymbol:
		return SymbolVal(f.Sym)
	case FormInt:
		return IntVal(f.Int)
	case FormFloat:
		return FloatVal(f.Float)
	case FormStr:
		return StringVal(f.Str)
	case FormBool:
		return BoolVal(f.Bool)
	case FormNil:
		return NilVal()
	case FormList:
		items := make([]Value, len(f.Children))
		for i, c := range f.Children {
			items[i] = FormToValue(c)
		}
		return ListVal(items)
	case FormQuoted:
		return FormToValue(f.Inner)
	case FormUnquoted:
		// Only meaningful inside a quote context; the quote special
		// form resolves Unquoted children before reaching here.
		return FormToValue(f.Inner)
	default:
		return NilVal()
	}
}

// ValueToForm converts data produced by macro expansion (lists,
// symbols, literals) back into a Form so the engine can re-enter
// evaluation on it. Macro output must be a Form per the distilled
// spec's macro-expander contract; this is the inverse of FormToValue.
func ValueToForm(v Value) (*Form, error) {
	switch v.Kind {
	case ValForm:
		return v.Form, nil
	case ValNil:
		return NilLit(), nil
	case ValBool:
		return BoolLit(v.Bool), nil
	case ValInt:
		return IntLit(v.Int), nil
	case ValFloat:
		return FloatLit(v.Float), nil
	case ValString:
		return StrLit(v.Str), nil
	case ValSymbol:
		return Symbol(v.Str), nil
	case ValList:
		children := make([]*Form, len(*v.List))
		for i, item := range *v.List {
			f, err := ValueToForm(item)
			if err != nil {
				return nil, err
			}
			children[i] = f
		}
		return ListOf(children), nil
	default:
		return nil, &TypeError{Detail: fmt.Sprintf("macro output must be data, got %s", v.KindName())}
	}
}
