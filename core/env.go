package core

// Scope is a mutable mapping from name to Value with a reference to an
// optional parent. Scopes form a DAG — multiple closures may share a
// captured parent — so mutation is restricted to inserting bindings,
// never reparenting; shared references therefore stay valid for as
// long as any closure holds them.
//
// Grounded on rphilander-logos/core/eval.go's locals []map[string]Value
// scope stack, generalized from a slice-indexed-by-call-depth into a
// parent-linked chain: a slice position cannot outlive the call that
// pushed it, but a closure's captured scope must outlive its defining
// call, so the chain needs to be a real linked structure, not a stack
// index.
type Scope struct {
	vars   map[string]Value
	parent *Scope
}

// NewRootScope creates a Scope with no parent. The evaluator's root
// environment is exactly one such Scope, shared and mutated by
// def/defn/defmacro, pyimport/pyimport_from, the bootstrap builtin
// loader, and embedders that call DefineRoot directly.
func NewRootScope() *Scope {
	return &Scope{vars: make(map[string]Value)}
}

// ChildOf creates a new child Scope whose parent is s. This implements
// child_of(parent) -> Scope from §4.1.
func ChildOf(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]Value), parent: parent}
}

// Root walks the parent chain to the outermost Scope.
func (s *Scope) Root() *Scope {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// Lookup walks from the innermost scope outward; the first binding
// found wins. Implements lookup(env, name) -> Value | NotFound.
func (s *Scope) Lookup(name string) (Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// DefineRoot inserts name into the root scope, overwriting any existing
// binding. Implements define_root(env, name, value). def/defn/defmacro
// always call this regardless of which scope they were invoked from —
// the distilled spec's Open Question decision to preserve the source's
// "def is always global" behavior.
func (s *Scope) DefineRoot(name string, v Value) {
	s.Root().vars[name] = v
}

// DefineLocal inserts name into s directly (not the root). A second
// binding of the same name in the same scope silently overwrites the
// first, per §4.1. Used for let-bindings and function-call parameter
// binding.
func (s *Scope) DefineLocal(name string, v Value) {
	s.vars[name] = v
}
