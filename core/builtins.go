package core

import (
	"fmt"
	"strconv"
)

// RegisterDefaultBuiltins installs the root environment's native Go
// builtins: arithmetic, comparisons, list ops, I/O, conversion,
// inc/dec, and macroexpand — §6.4's minimal list plus Part D's
// supplemented arithmetic/list surface from original_source/lispy's
// globals.py. map/filter/zip/cons/rest are provided here as native
// builtins for speed even though the prelude could define them in the
// language itself (original_source/lispy/stdlib.py does exactly that)
// — a deliberate split.
func (e *Evaluator) RegisterDefaultBuiltins() {
	e.RegisterBuiltin("+", builtinAdd)
	e.RegisterBuiltin("-", builtinSub)
	e.RegisterBuiltin("*", builtinMul)
	e.RegisterBuiltin("/", builtinDiv)
	e.RegisterBuiltin("%", builtinMod)
	e.RegisterBuiltin("=", builtinEq)
	e.RegisterBuiltin("!=", builtinNeq)
	e.RegisterBuiltin("<", builtinLt)
	e.RegisterBuiltin(">", builtinGt)
	e.RegisterBuiltin("<=", builtinLe)
	e.RegisterBuiltin(">=", builtinGe)
	e.RegisterBuiltin("not", builtinNot)
	e.RegisterBuiltin("and", builtinAnd)
	e.RegisterBuiltin("or", builtinOr)

	e.RegisterBuiltin("list", builtinList)
	e.RegisterBuiltin("dict", builtinDict)
	e.RegisterBuiltin("first", builtinFirst)
	e.RegisterBuiltin("rest", builtinRest)
	e.RegisterBuiltin("cons", builtinCons)
	e.RegisterBuiltin("concat", builtinConcat)
	e.RegisterBuiltin("len", builtinLen)
	e.RegisterBuiltin("range", builtinRange)
	e.RegisterBuiltin("map", e.builtinMap)
	e.RegisterBuiltin("filter", e.builtinFilter)
	e.RegisterBuiltin("zip", builtinZip)
	e.RegisterBuiltin("nth", builtinNth)
	e.RegisterBuiltin("slice", builtinSlice)
	e.RegisterBuiltin("apply", e.builtinApply)
	e.RegisterBuiltin("is_list", builtinIsList)

	e.RegisterBuiltin("print", builtinPrint)

	e.RegisterBuiltin("str", builtinStr)
	e.RegisterBuiltin("int", builtinInt)
	e.RegisterBuiltin("float", builtinFloat)

	e.RegisterBuiltin("inc", builtinInc)
	e.RegisterBuiltin("dec", builtinDec)

	e.RegisterBuiltin("macroexpand", e.builtinMacroexpand)
}

func numArgs2(args []Value, name string) (Value, Value, error) {
	if len(args) != 2 {
		return Value{}, Value{}, &ArityError{FnName: name, Expected: "2 arguments", Got: len(args)}
	}
	return args[0], args[1], nil
}

func asFloat(v Value) (float64, bool) {
	switch v.Kind {
	case ValInt:
		return float64(v.Int), true
	case ValFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func numericFold(name string, args []Value, identity int64, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) (Value, error) {
	if len(args) == 0 {
		return Value{}, &ArityError{FnName: name, Expected: "at least 1 argument", Got: 0}
	}
	allInt := true
	for _, a := range args {
		if a.Kind != ValInt {
			allInt = false
		}
		if a.Kind != ValInt && a.Kind != ValFloat {
			return Value{}, &TypeError{Detail: fmt.Sprintf("%s requires numbers, got %s", name, a.KindName())}
		}
	}
	if allInt {
		acc := args[0].Int
		for _, a := range args[1:] {
			acc = intOp(acc, a.Int)
		}
		return IntVal(acc), nil
	}
	acc, _ := asFloat(args[0])
	for _, a := range args[1:] {
		f, _ := asFloat(a)
		acc = floatOp(acc, f)
	}
	return FloatVal(acc), nil
}

func builtinAdd(args []Value) (Value, error) {
	return numericFold("+", args, 0, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
}
func builtinSub(args []Value) (Value, error) {
	if len(args) == 1 {
		if args[0].Kind == ValInt {
			return IntVal(-args[0].Int), nil
		}
		if args[0].Kind == ValFloat {
			return FloatVal(-args[0].Float), nil
		}
	}
	return numericFold("-", args, 0, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
}
func builtinMul(args []Value) (Value, error) {
	return numericFold("*", args, 1, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
}
func builtinDiv(args []Value) (Value, error) {
	if len(args) == 0 {
		return Value{}, &ArityError{FnName: "/", Expected: "at least 1 argument", Got: 0}
	}
	acc, ok := asFloat(args[0])
	if !ok {
		return Value{}, &TypeError{Detail: "/ requires numbers"}
	}
	for _, a := range args[1:] {
		f, ok := asFloat(a)
		if !ok {
			return Value{}, &TypeError{Detail: "/ requires numbers"}
		}
		acc /= f
	}
	return FloatVal(acc), nil
}
func builtinMod(args []Value) (Value, error) {
	a, b, err := numArgs2(args, "%")
	if err != nil {
		return Value{}, err
	}
	if a.Kind != ValInt || b.Kind != ValInt {
		return Value{}, &TypeError{Detail: "% requires integers"}
	}
	if b.Int == 0 {
		return Value{}, &TypeError{Detail: "% by zero"}
	}
	return IntVal(a.Int % b.Int), nil
}

func builtinEq(args []Value) (Value, error) {
	if len(args) == 0 {
		return BoolVal(true), nil
	}
	for _, a := range args[1:] {
		x, xok := asFloat(args[0])
		y, yok := asFloat(a)
		if xok && yok && args[0].Kind != a.Kind {
			if x != y {
				return BoolVal(false), nil
			}
			continue
		}
		if !ValuesEqual(args[0], a) {
			return BoolVal(false), nil
		}
	}
	return BoolVal(true), nil
}
func builtinNeq(args []Value) (Value, error) {
	v, err := builtinEq(args)
	if err != nil {
		return Value{}, err
	}
	return BoolVal(!v.Bool), nil
}

func compareChain(name string, args []Value, ok func(a, b float64) bool) (Value, error) {
	if len(args) < 2 {
		return Value{}, &ArityError{FnName: name, Expected: "at least 2 arguments", Got: len(args)}
	}
	for i := 0; i+1 < len(args); i++ {
		a, aok := asFloat(args[i])
		b, bok := asFloat(args[i+1])
		if !aok || !bok {
			return Value{}, &TypeError{Detail: name + " requires numbers"}
		}
		if !ok(a, b) {
			return BoolVal(false), nil
		}
	}
	return BoolVal(true), nil
}

func builtinLt(args []Value) (Value, error) { return compareChain("<", args, func(a, b float64) bool { return a < b }) }
func builtinGt(args []Value) (Value, error) { return compareChain(">", args, func(a, b float64) bool { return a > b }) }
func builtinLe(args []Value) (Value, error) { return compareChain("<=", args, func(a, b float64) bool { return a <= b }) }
func builtinGe(args []Value) (Value, error) { return compareChain(">=", args, func(a, b float64) bool { return a >= b }) }

func builtinNot(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityError{FnName: "not", Expected: "1 argument", Got: len(args)}
	}
	return BoolVal(!args[0].Truthy()), nil
}
func builtinAnd(args []Value) (Value, error) {
	for _, a := range args {
		if !a.Truthy() {
			return a, nil
		}
	}
	if len(args) == 0 {
		return BoolVal(true), nil
	}
	return args[len(args)-1], nil
}
func builtinOr(args []Value) (Value, error) {
	for _, a := range args {
		if a.Truthy() {
			return a, nil
		}
	}
	return BoolVal(false), nil
}

func builtinList(args []Value) (Value, error) {
	return ListVal(append([]Value{}, args...)), nil
}

func builtinDict(args []Value) (Value, error) {
	// Represented as a flat alist (list of 2-element lists) since the
	// distilled Value model has no dedicated map variant; keeps `get`
	// and friends implementable purely in terms of List.
	if len(args)%2 != 0 {
		return Value{}, &ArityError{FnName: "dict", Expected: "an even number of arguments", Got: len(args)}
	}
	pairs := make([]Value, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		pairs = append(pairs, ListVal([]Value{args[i], args[i+1]}))
	}
	return ListVal(pairs), nil
}

func asList(name string, v Value) ([]Value, error) {
	if v.Kind != ValList {
		return nil, &TypeError{Detail: fmt.Sprintf("%s requires a list, got %s", name, v.KindName())}
	}
	return *v.List, nil
}

func builtinFirst(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityError{FnName: "first", Expected: "1 argument", Got: len(args)}
	}
	items, err := asList("first", args[0])
	if err != nil {
		return Value{}, err
	}
	if len(items) == 0 {
		return NilVal(), nil
	}
	return items[0], nil
}

func builtinRest(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityError{FnName: "rest", Expected: "1 argument", Got: len(args)}
	}
	items, err := asList("rest", args[0])
	if err != nil {
		return Value{}, err
	}
	if len(items) <= 1 {
		return ListVal(nil), nil
	}
	return ListVal(append([]Value{}, items[1:]...)), nil
}

func builtinCons(args []Value) (Value, error) {
	x, lst, err := numArgs2(args, "cons")
	if err != nil {
		return Value{}, err
	}
	items, err := asList("cons", lst)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, 0, len(items)+1)
	out = append(out, x)
	out = append(out, items...)
	return ListVal(out), nil
}

func builtinConcat(args []Value) (Value, error) {
	var out []Value
	for _, a := range args {
		items, err := asList("concat", a)
		if err != nil {
			return Value{}, err
		}
		out = append(out, items...)
	}
	return ListVal(out), nil
}

func builtinLen(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityError{FnName: "len", Expected: "1 argument", Got: len(args)}
	}
	switch args[0].Kind {
	case ValList:
		return IntVal(int64(len(*args[0].List))), nil
	case ValString:
		return IntVal(int64(len(args[0].Str))), nil
	default:
		return Value{}, &TypeError{Detail: "len requires a list or string, got " + args[0].KindName()}
	}
}

func builtinRange(args []Value) (Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		stop = args[0].Int
	case 2:
		start, stop = args[0].Int, args[1].Int
	case 3:
		start, stop, step = args[0].Int, args[1].Int, args[2].Int
	default:
		return Value{}, &ArityError{FnName: "range", Expected: "1 to 3 arguments", Got: len(args)}
	}
	if step == 0 {
		return Value{}, &TypeError{Detail: "range step must not be zero"}
	}
	var out []Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, IntVal(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, IntVal(i))
		}
	}
	return ListVal(out), nil
}

// builtinMap/builtinFilter/builtinApply all call their callable argument
// synchronously (host-stack recursion), not through the frame-stack
// engine: a builtin's callback has already been fully evaluated into a
// Value by the time it reaches here (it's an argument, not a Form),
// so there is no Form left to route through Suspend/Tail. This mirrors
// rphilander-logos/core/eval.go's own builtins (builtinAppend, etc.),
// which call back into evalFn helpers directly rather than pushing
// engine frames.
// ApplyValue invokes fn (a ValFn/ValHostCallable/ValBuiltin) with args
// already evaluated to Values. Exported for embedders that hold a
// callable Value looked up from the root scope — cmd/sprig's `serve`
// dispatch needs this, since it does not drive the frame-stack engine
// directly.
func ApplyValue(e *Evaluator, fn Value, args []Value) (Value, error) {
	return callValue(e, fn, args)
}

func callValue(e *Evaluator, fn Value, args []Value) (Value, error) {
	switch fn.Kind {
	case ValBuiltin:
		return fn.Blt.Fn(args)
	case ValFn:
		bindings, err := BindParams(fn.Fn.Name, fn.Fn.Params, args)
		if err != nil {
			return Value{}, err
		}
		callEnv := ChildOf(fn.Fn.Closure)
		for _, b := range bindings {
			callEnv.DefineLocal(b.Name, b.Value)
		}
		return e.EvaluateProgram(fn.Fn.Body, callEnv)
	case ValHostCallable:
		return e.Bridge.Call(fn.Host, args, nil)
	default:
		return Value{}, &NotCallable{Got: fn.KindName()}
	}
}

func (e *Evaluator) builtinMap(args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, &ArityError{FnName: "map", Expected: "2 arguments", Got: len(args)}
	}
	fn, lst := args[0], args[1]
	items, err := asList("map", lst)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, len(items))
	for i, item := range items {
		v, err := callValue(e, fn, []Value{item})
		if err != nil {
			return Value{}, err
		}
		out[i] = v
	}
	return ListVal(out), nil
}

func (e *Evaluator) builtinFilter(args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, &ArityError{FnName: "filter", Expected: "2 arguments", Got: len(args)}
	}
	fn, lst := args[0], args[1]
	items, err := asList("filter", lst)
	if err != nil {
		return Value{}, err
	}
	var out []Value
	for _, item := range items {
		v, err := callValue(e, fn, []Value{item})
		if err != nil {
			return Value{}, err
		}
		if v.Truthy() {
			out = append(out, item)
		}
	}
	return ListVal(out), nil
}

func builtinZip(args []Value) (Value, error) {
	lists := make([][]Value, len(args))
	minLen := -1
	for i, a := range args {
		items, err := asList("zip", a)
		if err != nil {
			return Value{}, err
		}
		lists[i] = items
		if minLen == -1 || len(items) < minLen {
			minLen = len(items)
		}
	}
	if minLen < 0 {
		minLen = 0
	}
	out := make([]Value, minLen)
	for i := 0; i < minLen; i++ {
		row := make([]Value, len(lists))
		for j, l := range lists {
			row[j] = l[i]
		}
		out[i] = ListVal(row)
	}
	return ListVal(out), nil
}

func builtinNth(args []Value) (Value, error) {
	lst, idx, err := numArgs2(args, "nth")
	if err != nil {
		return Value{}, err
	}
	items, err := asList("nth", lst)
	if err != nil {
		return Value{}, err
	}
	if idx.Kind != ValInt {
		return Value{}, &TypeError{Detail: "nth index must be an integer"}
	}
	i := idx.Int
	if i < 0 {
		i += int64(len(items))
	}
	if i < 0 || i >= int64(len(items)) {
		return Value{}, &TypeError{Detail: "nth index out of range"}
	}
	return items[i], nil
}

func builtinSlice(args []Value) (Value, error) {
	if len(args) < 3 {
		return Value{}, &ArityError{FnName: "slice", Expected: "3 arguments", Got: len(args)}
	}
	items, err := asList("slice", args[0])
	if err != nil {
		return Value{}, err
	}
	start, stop := args[1].Int, args[2].Int
	if start < 0 {
		start = 0
	}
	if stop > int64(len(items)) {
		stop = int64(len(items))
	}
	if start >= stop {
		return ListVal(nil), nil
	}
	return ListVal(append([]Value{}, items[start:stop]...)), nil
}

func (e *Evaluator) builtinApply(args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, &ArityError{FnName: "apply", Expected: "2 arguments", Got: len(args)}
	}
	fn, lst := args[0], args[1]
	items, err := asList("apply", lst)
	if err != nil {
		return Value{}, err
	}
	return callValue(e, fn, items)
}

func builtinIsList(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityError{FnName: "is_list", Expected: "1 argument", Got: len(args)}
	}
	return BoolVal(args[0].Kind == ValList), nil
}

func builtinPrint(args []Value) (Value, error) {
	parts := make([]any, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Println(parts...)
	return NilVal(), nil
}

func builtinStr(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityError{FnName: "str", Expected: "1 argument", Got: len(args)}
	}
	return StringVal(args[0].String()), nil
}

func builtinInt(args []Value) (Value, error) {
	if len(args) < 1 {
		return Value{}, &ArityError{FnName: "int", Expected: "1 or 2 arguments", Got: len(args)}
	}
	base := 10
	if len(args) == 2 {
		base = int(args[1].Int)
	}
	switch args[0].Kind {
	case ValString:
		n, err := strconv.ParseInt(args[0].Str, base, 64)
		if err != nil {
			return Value{}, &TypeError{Detail: "int: " + err.Error()}
		}
		return IntVal(n), nil
	case ValFloat:
		return IntVal(int64(args[0].Float)), nil
	case ValInt:
		return args[0], nil
	default:
		return Value{}, &TypeError{Detail: "int: cannot convert " + args[0].KindName()}
	}
}

func builtinFloat(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityError{FnName: "float", Expected: "1 argument", Got: len(args)}
	}
	switch args[0].Kind {
	case ValString:
		f, err := strconv.ParseFloat(args[0].Str, 64)
		if err != nil {
			return Value{}, &TypeError{Detail: "float: " + err.Error()}
		}
		return FloatVal(f), nil
	case ValInt:
		return FloatVal(float64(args[0].Int)), nil
	case ValFloat:
		return args[0], nil
	default:
		return Value{}, &TypeError{Detail: "float: cannot convert " + args[0].KindName()}
	}
}

func builtinInc(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityError{FnName: "inc", Expected: "1 argument", Got: len(args)}
	}
	switch args[0].Kind {
	case ValInt:
		return IntVal(args[0].Int + 1), nil
	case ValFloat:
		return FloatVal(args[0].Float + 1), nil
	default:
		return Value{}, &TypeError{Detail: "inc requires a number"}
	}
}

func builtinDec(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityError{FnName: "dec", Expected: "1 argument", Got: len(args)}
	}
	switch args[0].Kind {
	case ValInt:
		return IntVal(args[0].Int - 1), nil
	case ValFloat:
		return FloatVal(args[0].Float - 1), nil
	default:
		return Value{}, &TypeError{Detail: "dec requires a number"}
	}
}

// builtinMacroexpand is bound as a method value (closing over e) rather
// than a free function, since macro expansion needs an Evaluator to
// evaluate the macro's body. It expects its single argument already
// evaluated to quoted data — callers write (macroexpand '(my-macro 1 2)),
// whose argument is a list of symbols and literals (a ValForm is accepted
// too); ValueToForm turns it back into a Form. A form whose head is not a
// macro bound in the root scope is returned unchanged.
func (e *Evaluator) builtinMacroexpand(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityError{FnName: "macroexpand", Expected: "1 argument", Got: len(args)}
	}
	form, err := ValueToForm(args[0])
	if err != nil {
		return Value{}, err
	}
	head := form.Head()
	if head == nil || head.Kind != FormSymbol {
		return args[0], nil
	}
	v, ok := e.Root.Lookup(head.Sym)
	if !ok || v.Kind != ValMacro {
		return args[0], nil
	}
	expanded, err := e.Expand(v.Fn, form.Tail(), e.Root)
	if err != nil {
		return Value{}, err
	}
	return FormValOf(expanded), nil
}
