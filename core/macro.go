package core

// macroExpandFrame runs a macro's body against the call's unevaluated
// argument Forms and, once the body produces a value, converts that
// value back into a Form and tail-replaces itself with a frame
// evaluating the expanded Form in the ORIGINAL call-site environment
// — per §4.4, "replace the original invocation Form with that result
// and re-enter evaluation on it in the original environment."
//
// Grounded on bshepherdson-mal/go/src/step8_macros/step8_macros.go's
// macroexpand/is_macro_call loop, adapted from a host-recursive
// trampoline into a frame the SAME engine stack drives, so a macro
// whose expansion recursively contains further macro calls does not
// grow the host call stack either.
type macroExpandFrame struct {
	body          []*Form
	env           *Scope // scope the macro body runs in (child of its closure)
	target        *Scope // the original call-site environment
	idx           int
	lastRequested bool
	bindErr       error
}

func newMacroExpandFrame(fn *FnValue, argForms []*Form, callerEnv *Scope) *macroExpandFrame {
	argValues := make([]Value, len(argForms))
	for i, f := range argForms {
		argValues[i] = FormToValue(f)
	}
	bindings, err := BindParams(fn.Name, fn.Params, argValues)
	bodyEnv := ChildOf(fn.Closure)
	if err == nil {
		for _, b := range bindings {
			bodyEnv.DefineLocal(b.Name, b.Value)
		}
	}
	return &macroExpandFrame{body: fn.Body, env: bodyEnv, target: callerEnv, bindErr: err}
}

func (fr *macroExpandFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	if fr.bindErr != nil {
		return fail(fr.bindErr)
	}
	if len(fr.body) == 0 {
		return tail(NilLit(), fr.target)
	}
	if fr.idx == len(fr.body)-1 {
		if !fr.lastRequested {
			fr.lastRequested = true
			return suspend(fr.body[fr.idx], fr.env)
		}
		expanded, err := ValueToForm(reg)
		if err != nil {
			return fail(err)
		}
		return tail(expanded, fr.target)
	}
	next := fr.body[fr.idx]
	fr.idx++
	return suspend(next, fr.env)
}

func (fr *macroExpandFrame) traceForm() *Form     { return nil }
func (fr *macroExpandFrame) traceContext() string { return "macro expansion" }

// Expand performs one step of macro expansion synchronously and
// returns the resulting Form without evaluating it further — the
// primitive behind the `macroexpand` builtin (§4.4: "macroexpand is a
// builtin that performs one step of this and returns the Form without
// evaluating it further"). Unlike macroExpandFrame, which the engine
// drives via Suspend/Tail so a macro body's own recursion stays
// stack-safe, Expand recurses through e.EvaluateProgram directly —
// acceptable here because macro bodies invoked via the explicit
// `macroexpand` builtin are diagnostic, one-shot calls, not part of
// the hot evaluation path §4.5's stack-safety guarantee targets.
func (e *Evaluator) Expand(macro *FnValue, argForms []*Form, env *Scope) (*Form, error) {
	argValues := make([]Value, len(argForms))
	for i, f := range argForms {
		argValues[i] = FormToValue(f)
	}
	bindings, err := BindParams(macro.Name, macro.Params, argValues)
	if err != nil {
		return nil, err
	}
	bodyEnv := ChildOf(macro.Closure)
	for _, b := range bindings {
		bodyEnv.DefineLocal(b.Name, b.Value)
	}
	result, err := e.EvaluateProgram(macro.Body, bodyEnv)
	if err != nil {
		return nil, err
	}
	return ValueToForm(result)
}
