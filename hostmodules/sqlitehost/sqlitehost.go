// Package sqlitehost adapts SQLite access for in-process use behind
// core.HostBridge, so `(pyimport sqlite)` / `(. sqlite open)` reach a
// real *sql.DB instead of a socket-module actor.
//
// Grounded on mod-sqlite/main.go's Module (open/close/query/exec/list/
// drop op set and its row->map scan loop), adapted from a JSON-over-
// unix-socket request/response protocol into direct method calls: the
// Request/Response envelope and its "op" string dispatch existed only
// to cross a process boundary that an in-process HostBridge does not
// have.
package sqlitehost

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sprig-lang/sprig/core"
)

// Module owns every SQLite connection opened during a process's
// lifetime, keyed by the file path passed to Open.
type Module struct {
	mu  sync.Mutex
	dbs map[string]*sql.DB
}

func NewModule() *Module {
	return &Module{dbs: make(map[string]*sql.DB)}
}

func (m *Module) getDB(name string) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	db, ok := m.dbs[name]
	if !ok {
		return nil, fmt.Errorf("database %q not open", name)
	}
	return db, nil
}

func (m *Module) Open(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.dbs[name]; exists {
		return "", fmt.Errorf("database %q already open", name)
	}
	db, err := sql.Open("sqlite3", name)
	if err != nil {
		return "", err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return "", err
	}
	m.dbs[name] = db
	return fmt.Sprintf("opened %s", name), nil
}

func (m *Module) Close(name string) (string, error) {
	m.mu.Lock()
	db, exists := m.dbs[name]
	if exists {
		delete(m.dbs, name)
	}
	m.mu.Unlock()
	if !exists {
		return "", fmt.Errorf("database %q not open", name)
	}
	if err := db.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("closed %s", name), nil
}

func (m *Module) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.dbs))
	for name := range m.dbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Module) Drop(name string) (string, error) {
	m.mu.Lock()
	db, open := m.dbs[name]
	if open {
		delete(m.dbs, name)
	}
	m.mu.Unlock()
	if open {
		db.Close()
	}
	if err := os.Remove(name); err != nil {
		return "", err
	}
	return fmt.Sprintf("dropped %s", name), nil
}

// Query runs a read statement and converts each result row into a
// core.Value dict (alist of [column value] pairs), mirroring
// mod-sqlite's column->value map but through core.Value's list-backed
// dict convention (core/builtins.go's builtinDict) rather than a Go map.
func (m *Module) Query(name, sql_ string, params []any) (core.Value, error) {
	db, err := m.getDB(name)
	if err != nil {
		return core.Value{}, err
	}
	rows, err := db.Query(sql_, params...)
	if err != nil {
		return core.Value{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return core.Value{}, err
	}

	var results []core.Value
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return core.Value{}, err
		}
		pairs := make([]core.Value, len(cols))
		for i, col := range cols {
			pairs[i] = core.ListVal([]core.Value{core.StringVal(col), goToValue(vals[i])})
		}
		results = append(results, core.ListVal(pairs))
	}
	if err := rows.Err(); err != nil {
		return core.Value{}, err
	}
	return core.ListVal(results), nil
}

// execResult is the shape Exec returns: rows affected and
// the last insert id, mirroring mod-sqlite's opExec response fields.
type execResult struct {
	RowsAffected int64
	LastInsertID int64
}

func (m *Module) Exec(name, sql_ string, params []any) (execResult, error) {
	db, err := m.getDB(name)
	if err != nil {
		return execResult{}, err
	}
	res, err := db.Exec(sql_, params...)
	if err != nil {
		return execResult{}, err
	}
	rows, _ := res.RowsAffected()
	id, _ := res.LastInsertId()
	return execResult{RowsAffected: rows, LastInsertID: id}, nil
}

func goToValue(v any) core.Value {
	switch x := v.(type) {
	case nil:
		return core.NilVal()
	case []byte:
		return core.StringVal(string(x))
	case string:
		return core.StringVal(x)
	case int64:
		return core.IntVal(x)
	case float64:
		return core.FloatVal(x)
	case bool:
		return core.BoolVal(x)
	default:
		return core.StringVal(fmt.Sprintf("%v", x))
	}
}
