package core

// dispatchList implements §4.3: for a List form whose head is a
// Symbol, first check whether it names a special form; otherwise treat
// it as a call (ordinary function/builtin/host-callable, or a macro —
// callFrame sorts that out once the head value is known).
func (e *Evaluator) dispatchList(f *Form, env *Scope) frame {
	if len(f.Children) == 0 {
		return &immediateFrame{form: f, value: NilVal()}
	}
	head := f.Children[0]
	if head.Kind != FormSymbol {
		return &callFrame{form: f, env: env, argForms: f.Children[1:], headForm: head}
	}

	switch head.Sym {
	case "if":
		return dispatchIf(f, env)
	case "let":
		return dispatchLet(f, env)
	case "def":
		return dispatchDef(f, env)
	case "defn":
		return dispatchDefn(f, env)
	case "#":
		return dispatchHashFn(f, env)
	case "do":
		return dispatchDo(f, env)
	case "quote", "'":
		return newQuoteFrame(f, f.Children[1:], env)
	case "comment":
		return &immediateFrame{form: f, value: NilVal()}
	case ".":
		return dispatchDot(f, env)
	case "$":
		return dispatchDollar(f, env)
	case "pyimport":
		return dispatchPyimport(f, env)
	case "pyimport_from":
		return dispatchPyimportFrom(f, env)
	case "defmacro":
		return dispatchDefmacro(f, env)
	case "match":
		return dispatchMatch(f, env)
	default:
		return &callFrame{form: f, env: env, argForms: f.Children[1:], headForm: head}
	}
}

// --- if ---

type ifFrame struct {
	form      *Form
	condForm  *Form
	thenForm  *Form
	elseForm  *Form
	env       *Scope
}

func dispatchIf(f *Form, env *Scope) frame {
	args := f.Children[1:]
	if len(args) != 3 {
		return &failFrame{form: f, err: &ArityError{FnName: "if", Expected: "3 arguments", Got: len(args)}}
	}
	return &ifFrame{form: f, condForm: args[0], thenForm: args[1], elseForm: args[2], env: env}
}

func (fr *ifFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	if !haveReg {
		return suspend(fr.condForm, fr.env)
	}
	if e.Bridge.IsTruthy(reg) {
		return tail(fr.thenForm, fr.env)
	}
	return tail(fr.elseForm, fr.env)
}
func (fr *ifFrame) traceForm() *Form     { return fr.form }
func (fr *ifFrame) traceContext() string { return "" }

// --- let ---

// letFrame evaluates bindings sequentially in the scope accumulated so
// far, then evaluates the body (implicit `do` if more than one form)
// in the fully extended scope. Grounded on distilled spec §4.3's let
// semantics and rphilander-logos/core/step.go's frameLetBind
// (bindings, bindPairs, bindIdx, bodyNode, scopeIdx).
type letFrame struct {
	form           *Form
	bindPairs      []*Form // pattern, expr, pattern, expr, ...
	bodyForms      []*Form
	scope          *Scope
	idx            int
	pendingPattern *Form
}

func dispatchLet(f *Form, env *Scope) frame {
	args := f.Children[1:]
	if len(args) < 1 {
		return &failFrame{form: f, err: &ArityError{FnName: "let", Expected: "at least 1 argument", Got: len(args)}}
	}
	bindingsForm := args[0]
	if bindingsForm.Kind != FormList || len(bindingsForm.Children)%2 != 0 {
		return &failFrame{form: f, err: &TypeError{Detail: "let bindings must be a list of pattern/expr pairs"}}
	}
	return &letFrame{
		form:      f,
		bindPairs: bindingsForm.Children,
		bodyForms: args[1:],
		scope:     ChildOf(env),
	}
}

func (fr *letFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	if haveReg && fr.pendingPattern != nil {
		res := Destructure(fr.pendingPattern, reg)
		if res.Mismatch {
			return fail(&ArityError{FnName: "let", Expected: "matching pattern", Got: 0})
		}
		for _, b := range res.Bindings {
			fr.scope.DefineLocal(b.Name, b.Value)
		}
		fr.pendingPattern = nil
	}
	if fr.idx < len(fr.bindPairs) {
		pat := fr.bindPairs[fr.idx]
		exprForm := fr.bindPairs[fr.idx+1]
		fr.idx += 2
		fr.pendingPattern = pat
		return suspend(exprForm, fr.scope)
	}
	if len(fr.bodyForms) == 0 {
		return done(NilVal())
	}
	if len(fr.bodyForms) == 1 {
		return tail(fr.bodyForms[0], fr.scope)
	}
	return tailFrame(&doFrame{form: fr.form, forms: fr.bodyForms, env: fr.scope})
}
func (fr *letFrame) traceForm() *Form     { return fr.form }
func (fr *letFrame) traceContext() string { return "" }

// --- def ---

// defFrame evaluates each ei left-to-right, binding ni in the root
// scope after each; the form's value is the last ek. Grounded on §4.3.
type defFrame struct {
	form        *Form
	pairs       []*Form // name, expr, name, expr, ...
	env         *Scope
	idx         int
	pendingName string
	last        Value
}

func dispatchDef(f *Form, env *Scope) frame {
	args := f.Children[1:]
	if len(args) == 0 || len(args)%2 != 0 {
		return &failFrame{form: f, err: &ArityError{FnName: "def", Expected: "an even number of name/expr arguments", Got: len(args)}}
	}
	for i := 0; i < len(args); i += 2 {
		if args[i].Kind != FormSymbol {
			return &failFrame{form: f, err: &TypeError{Detail: "def names must be bare symbols"}}
		}
	}
	return &defFrame{form: f, pairs: args, env: env}
}

func (fr *defFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	if haveReg && fr.pendingName != "" {
		fr.env.DefineRoot(fr.pendingName, reg)
		fr.last = reg
		fr.pendingName = ""
	}
	if fr.idx < len(fr.pairs) {
		name := fr.pairs[fr.idx].Sym
		exprForm := fr.pairs[fr.idx+1]
		fr.idx += 2
		fr.pendingName = name
		return suspend(exprForm, fr.env)
	}
	return done(fr.last)
}
func (fr *defFrame) traceForm() *Form     { return fr.form }
func (fr *defFrame) traceContext() string { return "" }

// --- defn ---

// dispatchDefn implements (defn name (params...) body...) as
// (def name (fn (params...) (do body...))) per §4.3, with the closure
// capturing the *current* environment — no suspension point needed,
// the closure is simply built and bound immediately.
func dispatchDefn(f *Form, env *Scope) frame {
	args := f.Children[1:]
	if len(args) < 2 {
		return &failFrame{form: f, err: &ArityError{FnName: "defn", Expected: "at least 2 arguments", Got: len(args)}}
	}
	nameForm, paramsForm, bodyForms := args[0], args[1], args[2:]
	if nameForm.Kind != FormSymbol {
		return &failFrame{form: f, err: &TypeError{Detail: "defn name must be a bare symbol"}}
	}
	fn := &FnValue{Name: nameForm.Sym, Params: paramsForm, Body: bodyForms, Closure: env}
	v := FnVal(fn)
	env.DefineRoot(nameForm.Sym, v)
	return &immediateFrame{form: f, value: v}
}

// --- # anonymous function shorthand ---

// dispatchHashFn implements (# body...): scan body for %i symbols,
// synthesize params %0..%m where m = max(i), capture current env.
// Grounded on original_source/lispy/stdlib.py's use of %0/%1 inside
// zip/letfn and distilled spec §9's arity-inference rule: descend into
// nested Lists, not into nested # forms (each has its own namespace).
func dispatchHashFn(f *Form, env *Scope) frame {
	body := f.Children[1:]
	maxIdx := -1
	for _, b := range body {
		maxIdx = maxPercentIndex(b, maxIdx)
	}
	arity := maxIdx + 1
	params := make([]*Form, arity)
	for i := 0; i < arity; i++ {
		params[i] = Symbol(percentName(i))
	}
	fn := &FnValue{Params: ListOf(params), Body: body, Closure: env}
	return &immediateFrame{form: f, value: FnVal(fn)}
}

func maxPercentIndex(f *Form, cur int) int {
	if f == nil {
		return cur
	}
	switch f.Kind {
	case FormSymbol:
		if idx, ok := percentIndex(f.Sym); ok && idx > cur {
			cur = idx
		}
	case FormList:
		if len(f.Children) > 0 && f.Children[0].IsSymbolNamed("#") {
			// nested # has its own parameter namespace; don't descend.
			return cur
		}
		for _, c := range f.Children {
			cur = maxPercentIndex(c, cur)
		}
	case FormQuoted, FormUnquoted:
		cur = maxPercentIndex(f.Inner, cur)
	}
	return cur
}

func percentIndex(sym string) (int, bool) {
	if len(sym) < 2 || sym[0] != '%' {
		return 0, false
	}
	n := 0
	for _, c := range sym[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func percentName(i int) string {
	return "%" + itoaSmall(i)
}

func itoaSmall(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	p := len(buf)
	for n > 0 {
		p--
		buf[p] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[p:])
}

// --- do ---

// doFrame evaluates each form in order, discarding intermediate
// results, and tail-replaces itself with the last form so the call
// does not accumulate a frame for it. Grounded on §4.5's worked
// example and rphilander-logos/core/step.go's frameDo.
type doFrame struct {
	form  *Form
	forms []*Form
	env   *Scope
	idx   int
}

func dispatchDo(f *Form, env *Scope) frame {
	return &doFrame{form: f, forms: f.Children[1:], env: env}
}

func (fr *doFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	if len(fr.forms) == 0 {
		return done(NilVal())
	}
	if fr.idx == len(fr.forms)-1 {
		return tail(fr.forms[fr.idx], fr.env)
	}
	next := fr.forms[fr.idx]
	fr.idx++
	return suspend(next, fr.env)
}
func (fr *doFrame) traceForm() *Form     { return fr.form }
func (fr *doFrame) traceContext() string { return "" }

// --- quote ---

// quoteFrame implements (quote x1 ... xk): returns the sequence
// unevaluated, except that an Unquoted child anywhere inside is
// evaluated in the ambient environment and its Value spliced in at
// that position. Unquotes are collected left-to-right across all
// xi up front, evaluated one per suspension in that order, then
// substituted back into a template that mirrors FormToValue.
type quoteFrame struct {
	form      *Form
	rootForms []*Form
	unquotes  []*Form
	results   []Value
	idx       int
	env       *Scope
}

func newQuoteFrame(f *Form, rootForms []*Form, env *Scope) *quoteFrame {
	var unq []*Form
	for _, rf := range rootForms {
		collectUnquotes(rf, &unq)
	}
	return &quoteFrame{form: f, rootForms: rootForms, unquotes: unq, env: env}
}

// collectUnquotes walks form in pre-order, appending the .Inner of
// every Unquoted node it finds. Does not special-case nested quotes
// (the spec does not exercise nested quoting; a nested quote's own
// unquotes are collected in the same left-to-right pass, which is the
// simplest generalization).
func collectUnquotes(form *Form, out *[]*Form) {
	if form == nil {
		return
	}
	switch form.Kind {
	case FormUnquoted:
		*out = append(*out, form.Inner)
	case FormList:
		for _, c := range form.Children {
			collectUnquotes(c, out)
		}
	case FormQuoted:
		collectUnquotes(form.Inner, out)
	}
}

func (fr *quoteFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	if haveReg {
		fr.results = append(fr.results, reg)
	}
	if fr.idx < len(fr.unquotes) {
		next := fr.unquotes[fr.idx]
		fr.idx++
		return suspend(next, fr.env)
	}
	pos := 0
	if len(fr.rootForms) == 1 {
		return done(substituteQuote(fr.rootForms[0], fr.results, &pos))
	}
	items := make([]Value, len(fr.rootForms))
	for i, rf := range fr.rootForms {
		items[i] = substituteQuote(rf, fr.results, &pos)
	}
	return done(ListVal(items))
}
func (fr *quoteFrame) traceForm() *Form     { return fr.form }
func (fr *quoteFrame) traceContext() string { return "" }

// substituteQuote mirrors FormToValue but replaces each Unquoted node,
// in the same left-to-right order collectUnquotes visited them, with
// the corresponding pre-evaluated Value from results.
func substituteQuote(f *Form, results []Value, pos *int) Value {
	if f == nil {
		return NilVal()
	}
	switch f.Kind {
	case FormUnquoted:
		v := results[*pos]
		*pos++
		return v
	case FormList:
		items := make([]Value, len(f.Children))
		for i, c := range f.Children {
			items[i] = substituteQuote(c, results, pos)
		}
		return ListVal(items)
	case FormQuoted:
		return substituteQuote(f.Inner, results, pos)
	default:
		return FormToValue(f)
	}
}

// --- . (host attribute access) ---

type dotFrame struct {
	form     *Form
	objForm  *Form
	attrName string
	env      *Scope
	obj      Value
	gotObj   bool
}

func dispatchDot(f *Form, env *Scope) frame {
	args := f.Children[1:]
	if len(args) != 2 || args[1].Kind != FormSymbol {
		return &failFrame{form: f, err: &ArityError{FnName: ".", Expected: "(object, bare-symbol-name)", Got: len(args)}}
	}
	return &dotFrame{form: f, objForm: args[0], attrName: args[1].Sym, env: env}
}

func (fr *dotFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	if !fr.gotObj {
		if !haveReg {
			return suspend(fr.objForm, fr.env)
		}
		fr.obj = reg
		fr.gotObj = true
	}
	if fr.obj.Kind != ValHostObject {
		return fail(&TypeError{Detail: ". requires a host object, got " + fr.obj.KindName()})
	}
	v, err := e.Bridge.GetAttr(fr.obj.Obj, fr.attrName)
	if err != nil {
		return fail(&HostError{Op: "get_attr", Err: err})
	}
	return done(v)
}
func (fr *dotFrame) traceForm() *Form     { return fr.form }
func (fr *dotFrame) traceContext() string { return "" }

// --- $ (string-to-symbol lookup) ---

type dollarFrame struct {
	form  *Form
	xForm *Form
	env   *Scope
}

func dispatchDollar(f *Form, env *Scope) frame {
	args := f.Children[1:]
	if len(args) != 1 {
		return &failFrame{form: f, err: &ArityError{FnName: "$", Expected: "1 argument", Got: len(args)}}
	}
	return &dollarFrame{form: f, xForm: args[0], env: env}
}

func (fr *dollarFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	if !haveReg {
		return suspend(fr.xForm, fr.env)
	}
	if reg.Kind != ValString {
		return fail(&TypeError{Detail: "$ requires its argument to evaluate to a string, got " + reg.KindName()})
	}
	v, ok := fr.env.Lookup(reg.Str)
	if !ok {
		return fail(&NameError{Name: reg.Str})
	}
	return done(v)
}
func (fr *dollarFrame) traceForm() *Form     { return fr.form }
func (fr *dollarFrame) traceContext() string { return "" }

// --- pyimport / pyimport_from ---

// dispatchPyimport has no suspension point: module names are bare
// symbols, and HostBridge calls are synchronous opaque calls per §5,
// so the import itself is plain Go work inside a single step.
func dispatchPyimport(f *Form, env *Scope) frame {
	return &pyimportFrame{form: f, names: f.Children[1:], env: env}
}

type pyimportFrame struct {
	form  *Form
	names []*Form
	env   *Scope
}

func (fr *pyimportFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	var last Value = NilVal()
	for _, n := range fr.names {
		if n.Kind != FormSymbol {
			return fail(&TypeError{Detail: "pyimport module names must be bare symbols"})
		}
		obj, err := e.Bridge.ImportModule(n.Sym)
		if err != nil {
			return fail(&HostError{Op: "import_module", Err: err})
		}
		v := HostObjectVal(obj)
		fr.env.DefineRoot(leafName(n.Sym), v)
		last = v
	}
	return done(last)
}
func (fr *pyimportFrame) traceForm() *Form     { return fr.form }
func (fr *pyimportFrame) traceContext() string { return "" }

type pyimportFromFrame struct {
	form    *Form
	modName string
	attr    string
	env     *Scope
}

func dispatchPyimportFrom(f *Form, env *Scope) frame {
	args := f.Children[1:]
	if len(args) != 2 || args[0].Kind != FormSymbol || args[1].Kind != FormSymbol {
		return &failFrame{form: f, err: &ArityError{FnName: "pyimport_from", Expected: "(module-symbol, name-symbol)", Got: len(args)}}
	}
	return &pyimportFromFrame{form: f, modName: args[0].Sym, attr: args[1].Sym, env: env}
}

func (fr *pyimportFromFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	obj, err := e.Bridge.ImportModule(fr.modName)
	if err != nil {
		return fail(&HostError{Op: "import_module", Err: err})
	}
	v, err := e.Bridge.GetAttr(obj, fr.attr)
	if err != nil {
		return fail(&HostError{Op: "get_attr", Err: err})
	}
	fr.env.DefineRoot(fr.attr, v)
	return done(v)
}
func (fr *pyimportFromFrame) traceForm() *Form     { return fr.form }
func (fr *pyimportFromFrame) traceContext() string { return "" }

func leafName(dotted string) string {
	last := dotted
	for i := len(dotted) - 1; i >= 0; i-- {
		if dotted[i] == '.' {
			last = dotted[i+1:]
			break
		}
	}
	return last
}

// --- defmacro ---

func dispatchDefmacro(f *Form, env *Scope) frame {
	args := f.Children[1:]
	if len(args) < 2 {
		return &failFrame{form: f, err: &ArityError{FnName: "defmacro", Expected: "at least 2 arguments", Got: len(args)}}
	}
	nameForm, paramsForm, bodyForms := args[0], args[1], args[2:]
	if nameForm.Kind != FormSymbol {
		return &failFrame{form: f, err: &TypeError{Detail: "defmacro name must be a bare symbol"}}
	}
	fn := &FnValue{Name: nameForm.Sym, Params: paramsForm, Body: bodyForms, Closure: env}
	v := MacroVal(fn)
	env.DefineRoot(nameForm.Sym, v)
	return &immediateFrame{form: f, value: v}
}

// --- match ---

// matchFrame evaluates expr, then tries each (pattern result) clause
// in order via the destructurer; the first non-mismatch wins and its
// result is tail-evaluated in a scope extended with the clause's
// bindings. `_` works as a catch-all for free: it's just a Symbol
// pattern, which always matches and binds the whole value to `_`.
type matchFrame struct {
	form      *Form
	exprForm  *Form
	clauses   []*Form
	env       *Scope
	value     Value
	haveValue bool
}

func dispatchMatch(f *Form, env *Scope) frame {
	args := f.Children[1:]
	if len(args) < 1 {
		return &failFrame{form: f, err: &ArityError{FnName: "match", Expected: "at least 1 argument", Got: len(args)}}
	}
	clauses := args[1:]
	for _, c := range clauses {
		if c.Kind != FormList || len(c.Children) != 2 {
			return &failFrame{form: f, err: &TypeError{Detail: "match clauses must be (pattern result) pairs"}}
		}
	}
	return &matchFrame{form: f, exprForm: args[0], clauses: clauses, env: env}
}

func (fr *matchFrame) step(e *Evaluator, reg Value, haveReg bool) outcome {
	if !fr.haveValue {
		if !haveReg {
			return suspend(fr.exprForm, fr.env)
		}
		fr.value = reg
		fr.haveValue = true
	}
	for _, clause := range fr.clauses {
		pattern := clause.Children[0]
		result := clause.Children[1]
		res := Destructure(pattern, fr.value)
		if res.Mismatch {
			continue
		}
		clauseEnv := ChildOf(fr.env)
		for _, b := range res.Bindings {
			clauseEnv.DefineLocal(b.Name, b.Value)
		}
		return tail(result, clauseEnv)
	}
	return fail(&MatchError{Value: fr.value})
}
func (fr *matchFrame) traceForm() *Form     { return fr.form }
func (fr *matchFrame) traceContext() string { return "" }
