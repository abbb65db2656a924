// Package hostmodules wires the concrete in-process host modules
// (sqlitehost, timehost, httphost) behind a single core.HostBridge, so
// `(pyimport sqlite)`, `(pyimport time)`, `(pyimport http)` and the
// `.`-attribute/call surface they unlock all reach real Go code.
//
// Grounded on rphilander-logos/core/core.go's module-registry-by-name
// dispatch, generalized from "look up a socket path for this module
// name" to "look up a Go value for this module name" — same shape,
// no wire protocol.
package hostmodules

import (
	"fmt"

	"github.com/sprig-lang/sprig/core"
	"github.com/sprig-lang/sprig/hostmodules/httphost"
	"github.com/sprig-lang/sprig/hostmodules/sqlitehost"
	"github.com/sprig-lang/sprig/hostmodules/timehost"
)

// hostFn adapts a Go closure into a HostCallable's opaque Impl slot;
// Bridge.Call type-asserts back to this to invoke it.
type hostFn func(args []core.Value) (core.Value, error)

// Bridge is the default HostBridge wired up by cmd/sprig: sqlite, time
// and http modules, each backed by its own package under
// hostmodules/.
type Bridge struct {
	sqlite *sqlitehost.Module
	clock  *timehost.Clock
	http   *httphost.Server

	// evalHTTP receives decoded HTTP requests and dispatches them into
	// a sprig-language handler Value; set by cmd/sprig once both the
	// evaluator and the configured handler are known, since httphost's
	// Server must exist before the Evaluator that will drive it does.
	evalHTTP httphost.Callback
}

// NewBridge constructs a Bridge with no HTTP callback wired yet; call
// SetHTTPCallback once the embedding evaluator and its dispatch
// handler are constructed.
func NewBridge() *Bridge {
	b := &Bridge{
		sqlite: sqlitehost.NewModule(),
		clock:  timehost.NewClock(),
	}
	b.http = httphost.NewServer(func(req core.Value) (core.Value, error) {
		if b.evalHTTP == nil {
			return core.Value{}, fmt.Errorf("no http handler registered")
		}
		return b.evalHTTP(req)
	})
	return b
}

// SetHTTPCallback installs the handler invoked for every inbound HTTP
// request on any port opened via ((. http listen) port).
func (b *Bridge) SetHTTPCallback(cb httphost.Callback) { b.evalHTTP = cb }

func (b *Bridge) ImportModule(dottedName string) (*core.HostObject, error) {
	switch dottedName {
	case "sqlite", "time", "http":
		return &core.HostObject{Name: dottedName, Impl: nil}, nil
	default:
		return nil, &core.HostError{Op: "import_module", Err: fmt.Errorf("unknown module %q", dottedName)}
	}
}

func (b *Bridge) GetAttr(obj *core.HostObject, name string) (core.Value, error) {
	var fn hostFn
	switch obj.Name {
	case "sqlite":
		fn = b.sqliteAttr(name)
	case "time":
		fn = b.timeAttr(name)
	case "http":
		fn = b.httpAttr(name)
	default:
		return core.Value{}, &core.HostError{Op: "get_attr", Err: fmt.Errorf("unknown module %q", obj.Name)}
	}
	if fn == nil {
		return core.Value{}, &core.HostError{Op: "get_attr", Err: fmt.Errorf("%s has no attribute %q", obj.Name, name)}
	}
	return core.HostCallableVal(&core.HostCallable{Name: obj.Name + "." + name, Impl: fn}), nil
}

func (b *Bridge) Call(fn *core.HostCallable, args []core.Value, kwargs map[string]core.Value) (core.Value, error) {
	impl, ok := fn.Impl.(hostFn)
	if !ok {
		return core.Value{}, &core.HostError{Op: "call", Err: fmt.Errorf("%s is not callable", fn.Name)}
	}
	v, err := impl(args)
	if err != nil {
		return core.Value{}, &core.HostError{Op: fn.Name, Err: err}
	}
	return v, nil
}

func (b *Bridge) IsTruthy(v core.Value) bool { return v.Truthy() }

func strArg(args []core.Value, i int) (string, error) {
	if i >= len(args) || args[i].Kind != core.ValString {
		return "", fmt.Errorf("argument %d must be a string", i)
	}
	return args[i].Str, nil
}

func intArg(args []core.Value, i int) (int64, error) {
	if i >= len(args) || args[i].Kind != core.ValInt {
		return 0, fmt.Errorf("argument %d must be an int", i)
	}
	return args[i].Int, nil
}

func anyArgs(args []core.Value, from int) []any {
	out := make([]any, 0, len(args)-from)
	for _, a := range args[from:] {
		out = append(out, valueToAny(a))
	}
	return out
}

func valueToAny(v core.Value) any {
	switch v.Kind {
	case core.ValInt:
		return v.Int
	case core.ValFloat:
		return v.Float
	case core.ValString, core.ValSymbol:
		return v.Str
	case core.ValBool:
		return v.Bool
	case core.ValNil:
		return nil
	default:
		return v.String()
	}
}

func (b *Bridge) sqliteAttr(name string) hostFn {
	switch name {
	case "open":
		return func(args []core.Value) (core.Value, error) {
			path, err := strArg(args, 0)
			if err != nil {
				return core.Value{}, err
			}
			msg, err := b.sqlite.Open(path)
			if err != nil {
				return core.Value{}, err
			}
			return core.StringVal(msg), nil
		}
	case "close":
		return func(args []core.Value) (core.Value, error) {
			path, err := strArg(args, 0)
			if err != nil {
				return core.Value{}, err
			}
			msg, err := b.sqlite.Close(path)
			if err != nil {
				return core.Value{}, err
			}
			return core.StringVal(msg), nil
		}
	case "list":
		return func(args []core.Value) (core.Value, error) {
			names := b.sqlite.List()
			items := make([]core.Value, len(names))
			for i, n := range names {
				items[i] = core.StringVal(n)
			}
			return core.ListVal(items), nil
		}
	case "drop":
		return func(args []core.Value) (core.Value, error) {
			path, err := strArg(args, 0)
			if err != nil {
				return core.Value{}, err
			}
			msg, err := b.sqlite.Drop(path)
			if err != nil {
				return core.Value{}, err
			}
			return core.StringVal(msg), nil
		}
	case "query":
		return func(args []core.Value) (core.Value, error) {
			path, err := strArg(args, 0)
			if err != nil {
				return core.Value{}, err
			}
			stmt, err := strArg(args, 1)
			if err != nil {
				return core.Value{}, err
			}
			return b.sqlite.Query(path, stmt, anyArgs(args, 2))
		}
	case "exec":
		return func(args []core.Value) (core.Value, error) {
			path, err := strArg(args, 0)
			if err != nil {
				return core.Value{}, err
			}
			stmt, err := strArg(args, 1)
			if err != nil {
				return core.Value{}, err
			}
			res, err := b.sqlite.Exec(path, stmt, anyArgs(args, 2))
			if err != nil {
				return core.Value{}, err
			}
			return core.ListVal([]core.Value{
				core.ListVal([]core.Value{core.StringVal("rows_affected"), core.IntVal(res.RowsAffected)}),
				core.ListVal([]core.Value{core.StringVal("last_insert_id"), core.IntVal(res.LastInsertID)}),
			}), nil
		}
	default:
		return nil
	}
}

func (b *Bridge) timeAttr(name string) hostFn {
	switch name {
	case "now":
		return func(args []core.Value) (core.Value, error) {
			n := b.clock.Now()
			return core.ListVal([]core.Value{
				core.ListVal([]core.Value{core.StringVal("unix"), core.IntVal(n.Unix)}),
				core.ListVal([]core.Value{core.StringVal("iso"), core.StringVal(n.ISO)}),
			}), nil
		}
	case "format":
		return func(args []core.Value) (core.Value, error) {
			unix, err := intArg(args, 0)
			if err != nil {
				return core.Value{}, err
			}
			layout, err := strArg(args, 1)
			if err != nil {
				return core.Value{}, err
			}
			return core.StringVal(b.clock.Format(unix, layout)), nil
		}
	case "parse":
		return func(args []core.Value) (core.Value, error) {
			value, err := strArg(args, 0)
			if err != nil {
				return core.Value{}, err
			}
			layout, err := strArg(args, 1)
			if err != nil {
				return core.Value{}, err
			}
			unix, err := b.clock.Parse(value, layout)
			if err != nil {
				return core.Value{}, err
			}
			return core.IntVal(unix), nil
		}
	case "add":
		return func(args []core.Value) (core.Value, error) {
			unix, err := intArg(args, 0)
			if err != nil {
				return core.Value{}, err
			}
			dur, err := strArg(args, 1)
			if err != nil {
				return core.Value{}, err
			}
			result, err := b.clock.Add(unix, dur)
			if err != nil {
				return core.Value{}, err
			}
			return core.ListVal([]core.Value{
				core.ListVal([]core.Value{core.StringVal("unix"), core.IntVal(result.Unix)}),
				core.ListVal([]core.Value{core.StringVal("iso"), core.StringVal(result.ISO)}),
			}), nil
		}
	case "diff":
		return func(args []core.Value) (core.Value, error) {
			from, err := intArg(args, 0)
			if err != nil {
				return core.Value{}, err
			}
			to, err := intArg(args, 1)
			if err != nil {
				return core.Value{}, err
			}
			d := b.clock.Diff(from, to)
			return core.ListVal([]core.Value{
				core.ListVal([]core.Value{core.StringVal("duration"), core.StringVal(d.Duration)}),
				core.ListVal([]core.Value{core.StringVal("seconds"), core.FloatVal(d.Seconds)}),
			}), nil
		}
	default:
		return nil
	}
}

func (b *Bridge) httpAttr(name string) hostFn {
	switch name {
	case "listen":
		return func(args []core.Value) (core.Value, error) {
			port, err := intArg(args, 0)
			if err != nil {
				return core.Value{}, err
			}
			msg, err := b.http.Listen(int(port))
			if err != nil {
				return core.Value{}, err
			}
			return core.StringVal(msg), nil
		}
	case "stop":
		return func(args []core.Value) (core.Value, error) {
			port, err := intArg(args, 0)
			if err != nil {
				return core.Value{}, err
			}
			msg, err := b.http.Stop(int(port))
			if err != nil {
				return core.Value{}, err
			}
			return core.StringVal(msg), nil
		}
	case "list_ports":
		return func(args []core.Value) (core.Value, error) {
			ports := b.http.ListPorts()
			items := make([]core.Value, len(ports))
			for i, p := range ports {
				items[i] = core.IntVal(int64(p))
			}
			return core.ListVal(items), nil
		}
	default:
		return nil
	}
}
