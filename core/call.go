package core

// callFrame implements the non-special-form half of §4.5's List
// dispatch: evaluate the head, then evaluate each argument
// left-to-right, accumulating Values; once the head is known, if it is
// a Macro divert to the expander instead of evaluating arguments at
// all. When all arguments are in hand, apply.
type callFrame struct {
	form     *Form
	env      *Scope
	headForm *Form
	argForms []*Form

	headValue    Value
	headResolved bool
	args         []Value
}

func (fr *callFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	if !fr.headResolved {
		if !haveReg {
			return suspend(fr.headForm, fr.env)
		}
		fr.headValue = reg
		fr.headResolved = true

		if fr.headValue.Kind == ValMacro {
			return tailFrame(newMacroExpandFrame(fr.headValue.Fn, fr.argForms, fr.env))
		}
		if len(fr.argForms) == 0 {
			return fr.apply(e)
		}
		return suspend(fr.argForms[0], fr.env)
	}

	fr.args = append(fr.args, reg)
	if len(fr.args) < len(fr.argForms) {
		return suspend(fr.argForms[len(fr.args)], fr.env)
	}
	return fr.apply(e)
}

func (fr *callFrame) apply(e *Evaluator) outcome {
	switch fr.headValue.Kind {
	case ValFn:
		fn := fr.headValue.Fn
		bindings, err := BindParams(fn.Name, fn.Params, fr.args)
		if err != nil {
			return fail(err)
		}
		callEnv := ChildOf(fn.Closure)
		for _, b := range bindings {
			callEnv.DefineLocal(b.Name, b.Value)
		}
		if len(fn.Body) == 0 {
			return done(NilVal())
		}
		if len(fn.Body) == 1 {
			return tail(fn.Body[0], callEnv)
		}
		return tailFrame(&doFrame{form: fr.form, forms: fn.Body, env: callEnv})

	case ValHostCallable:
		v, err := e.Bridge.Call(fr.headValue.Host, fr.args, nil)
		if err != nil {
			return fail(&HostError{Op: "call", Err: err})
		}
		return done(v)

	case ValBuiltin:
		v, err := fr.headValue.Blt.Fn(fr.args)
		if err != nil {
			return fail(err)
		}
		return done(v)

	default:
		return fail(&NotCallable{Got: fr.headValue.KindName()})
	}
}

func (fr *callFrame) traceForm() *Form { return fr.form }
func (fr *callFrame) traceContext() string {
	if fr.headResolved && fr.headValue.Kind == ValFn && fr.headValue.Fn.Name != "" {
		return "in call to " + fr.headValue.Fn.Name
	}
	return ""
}
