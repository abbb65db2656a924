package core

import "strconv"

// VarArgSymbol is the distinguished symbol marking a rest-parameter in
// a pattern list. Grounded on bmatsuo-at-luthersystems-elps/lisp/lang.go's
// VarArgSymbol = "&" constant and confirmed against
// original_source/lispy/interpreter.py's varargs detection in
// Function.__call__ (it scans parameters for a literal "&").
const VarArgSymbol = "&"

// Binding is one (name, value) pair produced by a successful destructure.
type Binding struct {
	Name  string
	Value Value
}

// destructureResult is returned by Destructure: either a sequence of
// bindings to install, or Mismatch=true signaling the pattern did not
// accept the value (used by `match` to try the next clause; a normal
// function/macro call call treats it as a fatal ArityError instead).
type destructureResult struct {
	Bindings []Binding
	Mismatch bool
	Reason   string
}

// Destructure binds pattern against value, per §4.2:
//   - Symbol -> binds that name to the whole value.
//   - List of patterns -> value must be a List; bind positionally. If
//     the pattern's second-to-last element is VarArgSymbol, the last
//     pattern binds the rest as a List; otherwise lengths must match.
//   - Nested List pattern -> recurse.
func Destructure(pattern *Form, value Value) destructureResult {
	if pattern == nil {
		return destructureResult{Mismatch: true, Reason: "nil pattern"}
	}

	switch pattern.Kind {
	case FormSymbol:
		return destructureResult{Bindings: []Binding{{Name: pattern.Sym, Value: value}}}

	case FormList:
		if value.Kind != ValList {
			return destructureResult{Mismatch: true, Reason: "pattern expects a list"}
		}
		return destructureList(pattern.Children, *value.List)

	default:
		return destructureResult{Mismatch: true, Reason: "pattern must be a symbol or list"}
	}
}

func destructureList(patterns []*Form, values []Value) destructureResult {
	restIdx := restIndex(patterns)

	if restIdx < 0 {
		if len(patterns) != len(values) {
			return destructureResult{Mismatch: true, Reason: "length mismatch"}
		}
		var out []Binding
		for i, p := range patterns {
			sub := Destructure(p, values[i])
			if sub.Mismatch {
				return sub
			}
			out = append(out, sub.Bindings...)
		}
		return destructureResult{Bindings: out}
	}

	// patterns[restIdx] == "&", patterns[restIdx+1] is the rest binding.
	fixed := patterns[:restIdx]
	restPattern := patterns[restIdx+1]
	if len(values) < len(fixed) {
		return destructureResult{Mismatch: true, Reason: "too few arguments for rest pattern"}
	}

	var out []Binding
	for i, p := range fixed {
		sub := Destructure(p, values[i])
		if sub.Mismatch {
			return sub
		}
		out = append(out, sub.Bindings...)
	}

	restValues := append([]Value{}, values[len(fixed):]...)
	sub := Destructure(restPattern, ListVal(restValues))
	if sub.Mismatch {
		return sub
	}
	out = append(out, sub.Bindings...)
	return destructureResult{Bindings: out}
}

// restIndex returns the index of VarArgSymbol within patterns, or -1
// if absent. Per §4.2 it must be the second-to-last element.
func restIndex(patterns []*Form) int {
	if len(patterns) < 2 {
		return -1
	}
	idx := len(patterns) - 2
	if patterns[idx].IsSymbolNamed(VarArgSymbol) {
		return idx
	}
	return -1
}

// BindParams destructures a full parameter pattern (as used by fn/defn/
// defmacro) against a flat positional argument list, returning an
// ArityError (not a Mismatch) on failure — function calls treat
// destructure mismatch as fatal, per §4.2's last sentence.
func BindParams(fnName string, params *Form, args []Value) ([]Binding, error) {
	if params == nil {
		if len(args) != 0 {
			return nil, &ArityError{FnName: fnName, Expected: "0 arguments", Got: len(args)}
		}
		return nil, nil
	}
	res := Destructure(params, ListVal(args))
	if res.Mismatch {
		return nil, &ArityError{FnName: fnName, Expected: paramShape(params), Got: len(args)}
	}
	return res.Bindings, nil
}

func paramShape(params *Form) string {
	if params.Kind != FormList {
		return "1 argument"
	}
	if restIndex(params.Children) >= 0 {
		return "at least " + strconv.Itoa(restIndex(params.Children)) + " arguments"
	}
	return strconv.Itoa(len(params.Children)) + " arguments"
}
