package core

// Evaluator owns the root scope, the builtin table, and the HostBridge
// used for module import / attribute access / foreign calls. One
// Evaluator corresponds to one single-threaded cooperative engine
// instance per §5 — nothing here is safe for concurrent use from two
// goroutines at once.
type Evaluator struct {
	Root     *Scope
	Bridge   HostBridge
	Builtins map[string]*Builtin
}

// NewEvaluator constructs an Evaluator with an empty root scope. Call
// RegisterDefaultBuiltins (builtins.go), or Bootstrap (bootstrap.go),
// which calls it and then loads the prelude, to get a usable
// environment; NewEvaluator alone is deliberately inert so tests can
// build a minimal root scope without the full prelude.
func NewEvaluator(bridge HostBridge) *Evaluator {
	if bridge == nil {
		bridge = NopBridge{}
	}
	return &Evaluator{
		Root:     NewRootScope(),
		Bridge:   bridge,
		Builtins: make(map[string]*Builtin),
	}
}

// RegisterBuiltin installs a builtin under name, in both the Builtins
// table (for macroexpand/diagnostics) and the root scope (so ordinary
// lookups find it).
func (e *Evaluator) RegisterBuiltin(name string, fn BuiltinFn) {
	b := &Builtin{Name: name, Fn: fn}
	e.Builtins[name] = b
	e.Root.DefineRoot(name, BuiltinVal(b))
}

// Evaluate is the driver entry point of §6.3: evaluate(form, env) ->
// Value | Error. A single top-level program is typically a sequence of
// Forms evaluated as if wrapped in (do ...); EvaluateProgram below
// does exactly that. Evaluate runs the frame-stack engine to
// completion or failure.
func (e *Evaluator) Evaluate(form *Form, env *Scope) (Value, error) {
	return e.run(form, env)
}

// EvaluateProgram evaluates a sequence of top-level Forms as an
// implicit (do ...), returning the value of the last one.
func (e *Evaluator) EvaluateProgram(forms []*Form, env *Scope) (Value, error) {
	if len(forms) == 0 {
		return NilVal(), nil
	}
	if len(forms) == 1 {
		return e.Evaluate(forms[0], env)
	}
	return e.run(ListOf(append([]*Form{Symbol("do")}, forms...)), env)
}

// --- the frame-stack engine loop (§4.5/§4.6) ---

// frame is one entry on the evaluator stack: an in-progress Form
// evaluation with its own small state machine. step is called with the
// result register's content from the most recently completed child
// frame; haveReg is false only on the very first call for a freshly
// pushed frame. traceForm/traceContext feed the call-trace recorder.
type frame interface {
	step(e *Evaluator, reg Value, haveReg bool) outcome
	traceForm() *Form
	traceContext() string
}

type outcomeKind int

const (
	outDone outcomeKind = iota
	outSuspend
	outTail
	outFail
)

// outcome is what a frame's step returns: Done(value), Suspend(form,
// env) or Suspend(frame), Tail(form, env) or Tail(frame), or Fail(err)
// — exactly the four outcomes of distilled spec §4.5's engine loop.
// The explicit-frame variants (fr != nil) let a special form hand the
// engine a ready-made sub-machine (e.g. macro expansion) instead of a
// bare Form to re-dispatch.
type outcome struct {
	kind outcomeKind
	val  Value
	form *Form
	env  *Scope
	fr   frame
	err  error
}

func done(v Value) outcome                { return outcome{kind: outDone, val: v} }
func suspend(f *Form, env *Scope) outcome { return outcome{kind: outSuspend, form: f, env: env} }
func tail(f *Form, env *Scope) outcome    { return outcome{kind: outTail, form: f, env: env} }
func suspendFrame(fr frame) outcome       { return outcome{kind: outSuspend, fr: fr} }
func tailFrame(fr frame) outcome          { return outcome{kind: outTail, fr: fr} }
func fail(err error) outcome              { return outcome{kind: outFail, err: err} }

// run drives the engine loop of §4.5 to completion:
//  1. If stack empty, return the result register.
//  2. Advance the top frame's state machine, passing in the result
//     register (or none on entry).
//  3. Act on Done/Suspend/Tail/Fail.
//  4. Repeat.
//
// Grounded on original_source/lispy/interpreter.py's
// IterativeInterpreter.evaluate — the literal coroutine-driving while
// loop this engine translates into an explicit Go frame stack: push a
// new frame when a handler "yields" a child expression, pop and feed
// the result back in when the child frame is Done. The frame-kind
// taxonomy (frameIfCond, frameLetBind, frameDo, frameApplyFn, ...) is
// grounded on rphilander-logos/core/step.go's serialization code for
// an engine whose driving loop was not itself retrievable; the
// concrete frame types here (ifFrame, letFrame, doFrame, callFrame,
// ...) follow that taxonomy under their own names and fields.
func (e *Evaluator) run(initial *Form, env *Scope) (Value, error) {
	stack := []frame{e.dispatchNewForm(initial, env)}
	var reg Value
	haveReg := false

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		out := top.step(e, reg, haveReg)

		switch out.kind {
		case outDone:
			stack = stack[:len(stack)-1]
			reg = out.val
			haveReg = true

		case outSuspend:
			var child frame
			if out.fr != nil {
				child = out.fr
			} else {
				child = e.dispatchNewForm(out.form, out.env)
			}
			stack = append(stack, child)
			haveReg = false

		case outTail:
			var next frame
			if out.fr != nil {
				next = out.fr
			} else {
				next = e.dispatchNewForm(out.form, out.env)
			}
			stack[len(stack)-1] = next
			haveReg = false

		case outFail:
			return Value{}, &EvalError{Err: out.err, Trace: captureTrace(stack)}
		}
	}
	return reg, nil
}

// dispatchNewForm turns a Form into the frame that evaluates it,
// implementing the per-variant dispatch of §4.5: literals and symbols
// resolve immediately; a List with a special-form head delegates to
// that form's own state machine; any other List head goes through
// callFrame (ordinary call or macro invocation).
func (e *Evaluator) dispatchNewForm(f *Form, env *Scope) frame {
	switch f.Kind {
	case FormInt:
		return &immediateFrame{form: f, value: IntVal(f.Int)}
	case FormFloat:
		return &immediateFrame{form: f, value: FloatVal(f.Float)}
	case FormStr:
		return &immediateFrame{form: f, value: StringVal(f.Str)}
	case FormBool:
		return &immediateFrame{form: f, value: BoolVal(f.Bool)}
	case FormNil:
		return &immediateFrame{form: f, value: NilVal()}
	case FormSymbol:
		return &refFrame{form: f, name: f.Sym, env: env}
	case FormQuoted:
		return newQuoteFrame(f, []*Form{f.Inner}, env)
	case FormUnquoted:
		// Outside a quote context an Unquoted is simply its inner
		// Form, evaluated normally — the escape only has meaning while
		// quote is walking a template (quoteFrame handles that case
		// directly and never reaches dispatchNewForm for it).
		return e.dispatchNewForm(f.Inner, env)
	case FormList:
		return e.dispatchList(f, env)
	default:
		return &immediateFrame{form: f, value: NilVal()}
	}
}

// immediateFrame produces a precomputed Value on its first step; used
// for literals, the empty list, and special forms with no suspension
// point at all (defn, #, comment, defmacro).
type immediateFrame struct {
	form  *Form
	value Value
}

func (fr *immediateFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	return done(fr.value)
}
func (fr *immediateFrame) traceForm() *Form    { return fr.form }
func (fr *immediateFrame) traceContext() string { return "" }

// failFrame immediately fails on its first step — used when a special
// form's arguments are malformed enough to reject before any
// suspension (e.g. wrong arity for `if`).
type failFrame struct {
	form *Form
	err  error
}

func (fr *failFrame) step(e *Evaluator, reg Value, haveReg bool) outcome { return fail(fr.err) }
func (fr *failFrame) traceForm() *Form                                   { return fr.form }
func (fr *failFrame) traceContext() string                               { return "" }

// refFrame resolves a Symbol by looking it up in env. Grounded on
// rphilander-logos/core/step.go's frameRef{refNodeID, savedNodeID}.
type refFrame struct {
	form *Form
	name string
	env  *Scope
}

func (fr *refFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	v, ok := fr.env.Lookup(fr.name)
	if !ok {
		return fail(&NameError{Name: fr.name})
	}
	return done(v)
}
func (fr *refFrame) traceForm() *Form     { return fr.form }
func (fr *refFrame) traceContext() string { return "" }
