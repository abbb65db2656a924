package core

import "github.com/sprig-lang/sprig/stdlib"

// ParseFunc turns source text into a sequence of top-level Forms. The
// core package never imports a concrete parser — that would make
// core depend on goparsec for no reason core itself needs — so
// Bootstrap takes the parse step as a function value and the caller
// (ordinarily cmd/sprig, wiring parser.Parse) supplies it.
type ParseFunc func(src string) ([]*Form, error)

// Bootstrap populates e's root scope with the native builtins and then
// parses and evaluates the embedded prelude program, defining its
// derived functions and macros (second, zero?, map-free reduce, when,
// unless, letfn, ...) into the same root scope.
//
// Grounded on original_source/lispy/interpreter.py's interpreter
// construction, which evaluates STDLIB once against the same global
// environment user programs subsequently run in.
func (e *Evaluator) Bootstrap(parse ParseFunc) error {
	e.RegisterDefaultBuiltins()
	forms, err := parse(stdlib.Prelude)
	if err != nil {
		return err
	}
	_, err = e.EvaluateProgram(forms, e.Root)
	return err
}
