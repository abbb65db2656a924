package core

// HostBridge is the narrow interface the evaluator requires from its
// embedder: module import, attribute access, invoking host callables,
// and delegated truthiness. ImportModule, GetAttr and Call may fail;
// the evaluator surfaces their failures as *HostError. IsTruthy
// returns a plain bool and has no failure path.
//
// Grounded on distilled spec §6.2 directly. The call shape mirrors
// rphilander-logos/core/core.go's module-send boundary
// (builtinSend/SendRecord), generalized from a socket-module-actor
// protocol into a plain in-process Go interface — concrete adaptors in
// hostmodules/ implement this without any wire protocol at all.
type HostBridge interface {
	// ImportModule loads a host-runtime module by dotted name, e.g.
	// "sqlite" or "time".
	ImportModule(dottedName string) (*HostObject, error)

	// GetAttr looks up an attribute on a HostObject.
	GetAttr(obj *HostObject, name string) (Value, error)

	// Call invokes a HostCallable with positional and keyword arguments.
	// kwargs may be nil; this surface language has no call-site keyword
	// argument syntax, but the interface carries the slot per §6.2.
	Call(fn *HostCallable, args []Value, kwargs map[string]Value) (Value, error)

	// IsTruthy is delegated so host types can override truthiness for
	// values the bridge itself manufactures (e.g. an empty host
	// collection). `if` consults IsTruthy for every condition value;
	// the `and`/`or`/`not` builtins and `filter` use Value.Truthy()
	// directly and never ask the bridge.
	IsTruthy(v Value) bool
}

// NopBridge is a zero-value HostBridge that rejects every operation.
// Useful for embedding contexts with no host interop at all —
// NewEvaluator substitutes one when it is given a nil HostBridge, so that
// `pyimport`/`.`/host calls fail with a clear HostError rather than a
// nil-pointer panic.
type NopBridge struct{}

func (NopBridge) ImportModule(name string) (*HostObject, error) {
	return nil, &HostError{Op: "import_module", Err: errUnsupportedHost(name)}
}

func (NopBridge) GetAttr(obj *HostObject, name string) (Value, error) {
	return Value{}, &HostError{Op: "get_attr", Err: errUnsupportedHost(name)}
}

func (NopBridge) Call(fn *HostCallable, args []Value, kwargs map[string]Value) (Value, error) {
	return Value{}, &HostError{Op: "call", Err: errUnsupportedHost("no host bridge configured")}
}

func (NopBridge) IsTruthy(v Value) bool { return v.Truthy() }

type unsupportedHostError string

func (e unsupportedHostError) Error() string { return "no host bridge configured: " + string(e) }

func errUnsupportedHost(detail string) error { return unsupportedHostError(detail) }
