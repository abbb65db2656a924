package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvaluator() *Evaluator {
	e := NewEvaluator(NopBridge{})
	e.RegisterDefaultBuiltins()
	return e
}

func evalForm(t *testing.T, e *Evaluator, f *Form) Value {
	t.Helper()
	v, err := e.Evaluate(f, e.Root)
	require.NoError(t, err)
	return v
}

func TestEvaluateLiterals(t *testing.T) {
	e := newTestEvaluator()
	assert.Equal(t, int64(42), evalForm(t, e, IntLit(42)).Int)
	assert.Equal(t, 3.5, evalForm(t, e, FloatLit(3.5)).Float)
	assert.Equal(t, "hi", evalForm(t, e, StrLit("hi")).Str)
	assert.True(t, evalForm(t, e, BoolLit(true)).Bool)
	assert.Equal(t, ValNil, evalForm(t, e, NilLit()).Kind)
}

func TestEvaluateUnboundSymbolIsNameError(t *testing.T) {
	e := newTestEvaluator()
	_, err := e.Evaluate(Symbol("nope"), e.Root)
	require.Error(t, err)
	var nameErr *NameError
	assert.ErrorAs(t, err, &nameErr)
}

func TestEvaluateCallOrdinaryBuiltin(t *testing.T) {
	e := newTestEvaluator()
	f := List(Symbol("+"), IntLit(1), IntLit(2), IntLit(3))
	assert.Equal(t, int64(6), evalForm(t, e, f).Int)
}

func TestEvaluateIf(t *testing.T) {
	e := newTestEvaluator()
	thenCase := List(Symbol("if"), BoolLit(true), IntLit(1), IntLit(2))
	assert.Equal(t, int64(1), evalForm(t, e, thenCase).Int)
	elseCase := List(Symbol("if"), BoolLit(false), IntLit(1), IntLit(2))
	assert.Equal(t, int64(2), evalForm(t, e, elseCase).Int)
}

func TestEvaluateIfWrongArityFails(t *testing.T) {
	e := newTestEvaluator()
	_, err := e.Evaluate(List(Symbol("if"), BoolLit(true)), e.Root)
	require.Error(t, err)
	var arityErr *ArityError
	assert.ErrorAs(t, err, &arityErr)
}

func TestEvaluateLetSequentialBindings(t *testing.T) {
	e := newTestEvaluator()
	// (let (x 2 y (+ x 1)) (+ x y)) -> 5, later bindings see earlier ones
	bindings := List(Symbol("x"), IntLit(2), Symbol("y"), List(Symbol("+"), Symbol("x"), IntLit(1)))
	f := List(Symbol("let"), bindings, List(Symbol("+"), Symbol("x"), Symbol("y")))
	assert.Equal(t, int64(5), evalForm(t, e, f).Int)
}

func TestEvaluateLetDoesNotLeakBindingsToEnclosingScope(t *testing.T) {
	e := newTestEvaluator()
	bindings := List(Symbol("x"), IntLit(99))
	f := List(Symbol("let"), bindings, Symbol("x"))
	evalForm(t, e, f)
	_, ok := e.Root.Lookup("x")
	assert.False(t, ok, "let-bound names must not escape into the root scope")
}

func TestEvaluateDefBindsRootAndReturnsLastValue(t *testing.T) {
	e := newTestEvaluator()
	f := List(Symbol("def"), Symbol("a"), IntLit(1), Symbol("b"), IntLit(2))
	v := evalForm(t, e, f)
	assert.Equal(t, int64(2), v.Int)
	av, _ := e.Root.Lookup("a")
	assert.Equal(t, int64(1), av.Int)
	bv, _ := e.Root.Lookup("b")
	assert.Equal(t, int64(2), bv.Int)
}

func TestEvaluateDefFromInnerScopeStillBindsRoot(t *testing.T) {
	e := newTestEvaluator()
	inner := List(Symbol("def"), Symbol("leaked"), IntLit(7))
	f := List(Symbol("let"), List(), inner)
	evalForm(t, e, f)
	v, ok := e.Root.Lookup("leaked")
	require.True(t, ok, "def always binds the root scope even when called from inside a let")
	assert.Equal(t, int64(7), v.Int)
}

func TestEvaluateDefnAndCall(t *testing.T) {
	e := newTestEvaluator()
	defn := List(Symbol("defn"), Symbol("square"), List(Symbol("n")), List(Symbol("*"), Symbol("n"), Symbol("n")))
	evalForm(t, e, defn)
	call := List(Symbol("square"), IntLit(5))
	assert.Equal(t, int64(25), evalForm(t, e, call).Int)
}

func TestEvaluateDefnRecursion(t *testing.T) {
	e := newTestEvaluator()
	// (defn fact (n) (if (= n 0) 1 (* n (fact (- n 1)))))
	body := List(Symbol("if"),
		List(Symbol("="), Symbol("n"), IntLit(0)),
		IntLit(1),
		List(Symbol("*"), Symbol("n"), List(Symbol("fact"), List(Symbol("-"), Symbol("n"), IntLit(1)))),
	)
	defn := List(Symbol("defn"), Symbol("fact"), List(Symbol("n")), body)
	evalForm(t, e, defn)
	assert.Equal(t, int64(120), evalForm(t, e, List(Symbol("fact"), IntLit(5))).Int)
}

func TestEvaluateDeepTailRecursionDoesNotOverflow(t *testing.T) {
	e := newTestEvaluator()
	// (defn count (n acc) (if (= n 0) acc (count (- n 1) (+ acc 1))))
	body := List(Symbol("if"),
		List(Symbol("="), Symbol("n"), IntLit(0)),
		Symbol("acc"),
		List(Symbol("count"), List(Symbol("-"), Symbol("n"), IntLit(1)), List(Symbol("+"), Symbol("acc"), IntLit(1))),
	)
	defn := List(Symbol("defn"), Symbol("count"), List(Symbol("n"), Symbol("acc")), body)
	evalForm(t, e, defn)
	call := List(Symbol("count"), IntLit(10000), IntLit(0))
	assert.Equal(t, int64(10000), evalForm(t, e, call).Int)
}

func TestEvaluateHashFnArityInference(t *testing.T) {
	e := newTestEvaluator()
	// (# (+ %0 %1))
	fn := List(Symbol("#"), List(Symbol("+"), Symbol("%0"), Symbol("%1")))
	v := evalForm(t, e, fn)
	require.Equal(t, ValFn, v.Kind)
	assert.Len(t, v.Fn.Params.Children, 2)

	call := List(fn, IntLit(3), IntLit(4))
	assert.Equal(t, int64(7), evalForm(t, e, call).Int)
}

func TestEvaluateHashFnDoesNotDescendIntoNestedHash(t *testing.T) {
	e := newTestEvaluator()
	// (# (list %0 (# %0))) — the inner #'s %0 is its own parameter, not the outer's.
	outer := List(Symbol("#"), List(Symbol("list"), Symbol("%0"), List(Symbol("#"), Symbol("%0"))))
	v := evalForm(t, e, outer)
	require.Equal(t, ValFn, v.Kind)
	assert.Len(t, v.Fn.Params.Children, 1, "nested # must not inflate the outer arity")
}

func TestEvaluateDoEvaluatesInOrderAndReturnsLast(t *testing.T) {
	e := newTestEvaluator()
	f := List(Symbol("do"),
		List(Symbol("def"), Symbol("a"), IntLit(1)),
		List(Symbol("def"), Symbol("a"), IntLit(2)),
		Symbol("a"),
	)
	assert.Equal(t, int64(2), evalForm(t, e, f).Int)
}

func TestEvaluateQuoteReturnsFormAsData(t *testing.T) {
	e := newTestEvaluator()
	f := Quoted(List(Symbol("+"), IntLit(1), IntLit(2)))
	v := evalForm(t, e, f)
	require.Equal(t, ValList, v.Kind)
	items := *v.List
	require.Len(t, items, 3)
	assert.Equal(t, "+", items[0].Str)
	assert.Equal(t, ValSymbol, items[0].Kind)
}

func TestEvaluateQuoteWithUnquoteSplicesEvaluatedValue(t *testing.T) {
	e := newTestEvaluator()
	e.Root.DefineLocal("x", IntVal(2))
	// (' 1 ~x ~(+ x 1) 4)
	inc := List(Symbol("+"), Symbol("x"), IntLit(1))
	f := List(Symbol("'"), IntLit(1), Unquoted(Symbol("x")), Unquoted(inc), IntLit(4))
	v := evalForm(t, e, f)
	require.Equal(t, ValList, v.Kind)
	items := *v.List
	require.Len(t, items, 4)
	assert.Equal(t, int64(1), items[0].Int)
	assert.Equal(t, int64(2), items[1].Int)
	assert.Equal(t, int64(3), items[2].Int)
	assert.Equal(t, int64(4), items[3].Int)
}

func TestQuoteFixpointOnDataWithoutUnquote(t *testing.T) {
	e := newTestEvaluator()
	original := List(Symbol("a"), IntLit(1), List(Symbol("b"), StrLit("s")))
	quotedForm, err := ValueToForm(FormToValue(original))
	require.NoError(t, err)
	assert.True(t, original.Equal(quotedForm), "quoting data with no Unquoted children must round-trip unchanged")

	v := evalForm(t, e, Quoted(original))
	roundTripped, err := ValueToForm(v)
	require.NoError(t, err)
	assert.True(t, original.Equal(roundTripped))
}

func TestEvaluateDollarLooksUpSymbolByName(t *testing.T) {
	e := newTestEvaluator()
	e.Root.DefineLocal("greeting", StringVal("hi"))
	f := List(Symbol("$"), StrLit("greeting"))
	assert.Equal(t, "hi", evalForm(t, e, f).Str)
}

func TestEvaluateDollarRequiresString(t *testing.T) {
	e := newTestEvaluator()
	_, err := e.Evaluate(List(Symbol("$"), IntLit(1)), e.Root)
	require.Error(t, err)
	var typeErr *TypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestEvaluateDotRequiresHostObject(t *testing.T) {
	e := newTestEvaluator()
	_, err := e.Evaluate(List(Symbol("."), IntLit(1), Symbol("attr")), e.Root)
	require.Error(t, err)
	var typeErr *TypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestEvaluatePyimportWithNopBridgeFails(t *testing.T) {
	e := newTestEvaluator()
	_, err := e.Evaluate(List(Symbol("pyimport"), Symbol("sqlite")), e.Root)
	require.Error(t, err)
	var hostErr *HostError
	assert.ErrorAs(t, err, &hostErr)
}

func TestEvaluateMatchFirstMatchingClauseWins(t *testing.T) {
	e := newTestEvaluator()
	// (match (list 1 2 3) ((a) "one") ((a b c) "three") (_ "other"))
	lst := List(Symbol("list"), IntLit(1), IntLit(2), IntLit(3))
	clauses := []*Form{
		List(List(Symbol("a")), StrLit("one")),
		List(List(Symbol("a"), Symbol("b"), Symbol("c")), StrLit("three")),
		List(Symbol("_"), StrLit("other")),
	}
	f := ListOf(append([]*Form{Symbol("match"), lst}, clauses...))
	assert.Equal(t, "three", evalForm(t, e, f).Str)
}

func TestEvaluateMatchNoClauseMatchesFails(t *testing.T) {
	e := newTestEvaluator()
	f := List(Symbol("match"), IntLit(1), List(List(Symbol("a"), Symbol("b")), StrLit("nope")))
	_, err := e.Evaluate(f, e.Root)
	require.Error(t, err)
	var matchErr *MatchError
	assert.ErrorAs(t, err, &matchErr)
}

func TestEvaluateArgumentsEvaluatedLeftToRight(t *testing.T) {
	e := newTestEvaluator()
	var order []int64
	e.RegisterBuiltin("record", func(args []Value) (Value, error) {
		order = append(order, args[0].Int)
		return args[0], nil
	})
	// (list (record 1) (record 2) (record 3))
	f := List(Symbol("list"),
		List(Symbol("record"), IntLit(1)),
		List(Symbol("record"), IntLit(2)),
		List(Symbol("record"), IntLit(3)),
	)
	evalForm(t, e, f)
	assert.Equal(t, []int64{1, 2, 3}, order)
}

func TestEvaluateProgramReturnsLastTopLevelValue(t *testing.T) {
	e := newTestEvaluator()
	forms := []*Form{IntLit(1), IntLit(2), IntLit(3)}
	v, err := e.EvaluateProgram(forms, e.Root)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Int)
}

func TestEvaluateProgramEmptyIsNil(t *testing.T) {
	e := newTestEvaluator()
	v, err := e.EvaluateProgram(nil, e.Root)
	require.NoError(t, err)
	assert.Equal(t, ValNil, v.Kind)
}

func TestEvalErrorCarriesTrace(t *testing.T) {
	e := newTestEvaluator()
	f := List(Symbol("if"), List(Symbol("+"), Symbol("missing")), IntLit(1), IntLit(2))
	_, err := e.Evaluate(f, e.Root)
	require.Error(t, err)
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.NotNil(t, evalErr.Trace)
	assert.Contains(t, evalErr.Trace.Render(), "->")
}
