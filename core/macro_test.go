package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMacroWhenExpandsAtCallSite mirrors the canonical
// `(defmacro when (c & body) (list 'if c (cons 'do body) None))` shape:
// argument forms reach the macro body unevaluated, and the expansion
// is re-entered in the original call-site environment.
func TestMacroWhenExpandsAtCallSite(t *testing.T) {
	e := newTestEvaluator()

	// (defmacro when (cond & body) (list 'if cond (cons 'do body) nil))
	macroBody := List(Symbol("list"),
		Quoted(Symbol("if")),
		Symbol("cond"),
		List(Symbol("cons"), Quoted(Symbol("do")), Symbol("body")),
		NilLit(),
	)
	params := List(Symbol("cond"), Symbol("&"), Symbol("body"))
	defmacro := List(Symbol("defmacro"), Symbol("when"), params, macroBody)
	evalForm(t, e, defmacro)

	v, ok := e.Root.Lookup("when")
	require.True(t, ok)
	assert.Equal(t, ValMacro, v.Kind)

	// (when (= 1 1) 7) -> 7
	call := List(Symbol("when"), List(Symbol("="), IntLit(1), IntLit(1)), IntLit(7))
	assert.Equal(t, int64(7), evalForm(t, e, call).Int)

	// condition false -> nil
	callFalse := List(Symbol("when"), List(Symbol("="), IntLit(1), IntLit(2)), IntLit(7))
	assert.Equal(t, ValNil, evalForm(t, e, callFalse).Kind)
}

func TestMacroArgumentsAreNotEvaluatedBeforeExpansion(t *testing.T) {
	e := newTestEvaluator()
	var evaluated bool
	e.RegisterBuiltin("side-effect", func(args []Value) (Value, error) {
		evaluated = true
		return NilVal(), nil
	})

	// (defmacro ignore-it (x) "skipped") — body never references x; the
	// expansion is the string literal "skipped", which evaluates to itself.
	defmacro := List(Symbol("defmacro"), Symbol("ignore-it"), List(Symbol("x")), StrLit("skipped"))
	evalForm(t, e, defmacro)

	call := List(Symbol("ignore-it"), List(Symbol("side-effect")))
	v := evalForm(t, e, call)
	assert.Equal(t, "skipped", v.Str)
	assert.False(t, evaluated, "unreferenced macro arguments must never be evaluated")
}

func TestMacroexpandIsIdempotentOnAlreadyExpandedForm(t *testing.T) {
	e := newTestEvaluator()
	defmacro := List(Symbol("defmacro"), Symbol("twice"), List(Symbol("x")),
		List(Symbol("list"), Symbol("x"), Symbol("x")))
	evalForm(t, e, defmacro)

	// (macroexpand (' (twice 1))) -> (1 1), a plain list, no longer a macro call
	call := List(Symbol("twice"), IntLit(1))
	expandOnce := List(Symbol("macroexpand"), Quoted(call))
	first := evalForm(t, e, expandOnce)
	require.Equal(t, ValForm, first.Kind)

	expandAgain := List(Symbol("macroexpand"), Quoted(first.Form))
	second, err := e.Evaluate(expandAgain, e.Root)
	require.NoError(t, err)

	secondForm, err := ValueToForm(second)
	require.NoError(t, err)
	assert.True(t, first.Form.Equal(secondForm), "re-expanding a non-macro-call form must be a no-op")
}

func TestMacroExpansionIsEvaluatedAsACall(t *testing.T) {
	e := newTestEvaluator()
	e.Root.DefineLocal("suffix", StringVal("!"))

	// (defmacro shout (x) (list 'str x))
	defmacro := List(Symbol("defmacro"), Symbol("shout"), List(Symbol("x")),
		List(Symbol("list"), Quoted(Symbol("str")), Symbol("x")))
	evalForm(t, e, defmacro)

	call := List(Symbol("shout"), StrLit("hi"))
	v := evalForm(t, e, call)
	assert.Equal(t, "hi", v.Str)
}

func TestExpandReturnsFormWithoutEvaluatingFurther(t *testing.T) {
	e := newTestEvaluator()
	defmacro := List(Symbol("defmacro"), Symbol("m"), List(Symbol("x")),
		List(Symbol("list"), Quoted(Symbol("+")), Symbol("x"), IntLit(1)))
	evalForm(t, e, defmacro)

	v, ok := e.Root.Lookup("m")
	require.True(t, ok)

	expanded, err := e.Expand(v.Fn, []*Form{IntLit(5)}, e.Root)
	require.NoError(t, err)
	assert.Equal(t, "(+ 5 1)", expanded.String())
}
