package stdlib

import (
	"database/sql"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/rerr"
)

// handles is the host-side table backing opaque script handles: the
// script side only ever sees the Int key, never the Go value itself,
// so db/rpc connections need no new heap.Object kind.
var (
	dbMu      sync.Mutex
	dbHandles = map[int64]*sql.DB{}
	dbNext    int64
)

// newDB builds the `db` module (SPEC_FULL.md §11.4): a tiny key-value
// store backed by modernc.org/sqlite. The module itself is built once
// and cached; every db.open call opens a new connection and returns a
// new Int handle, which get/set/close take as their first argument.
func newDB(rt *object.Runtime) *object.Module {
	m := rt.NewModule("db", nil)
	set(rt, m, "open", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		path, err := expectString(args, 0, "db.open")
		if err != nil {
			return nil, err
		}
		conn, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, rerr.Wrap(rerr.Runtime, err, "db.open")
		}
		_, err = conn.Exec(`CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v TEXT NOT NULL)`)
		if err != nil {
			conn.Close()
			return nil, rerr.Wrap(rerr.Runtime, err, "db.open: creating kv table")
		}
		dbMu.Lock()
		dbNext++
		h := dbNext
		dbHandles[h] = conn
		dbMu.Unlock()
		return rt.Int(h), nil
	})
	set(rt, m, "get", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		h, err := expectInt(args, 0, "db.get")
		if err != nil {
			return nil, err
		}
		key, err := expectString(args, 1, "db.get")
		if err != nil {
			return nil, err
		}
		conn, err := dbConn(h)
		if err != nil {
			return nil, err
		}
		var v string
		err = conn.QueryRow(`SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
		if err == sql.ErrNoRows {
			return rt.None(), nil
		}
		if err != nil {
			return nil, rerr.Wrap(rerr.Runtime, err, "db.get")
		}
		return rt.Some(rt.String(v)), nil
	})
	set(rt, m, "set", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		h, err := expectInt(args, 0, "db.set")
		if err != nil {
			return nil, err
		}
		key, err := expectString(args, 1, "db.set")
		if err != nil {
			return nil, err
		}
		val, err := expectString(args, 2, "db.set")
		if err != nil {
			return nil, err
		}
		conn, err := dbConn(h)
		if err != nil {
			return nil, err
		}
		_, err = conn.Exec(`INSERT INTO kv (k, v) VALUES (?, ?)
			ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, val)
		if err != nil {
			return nil, rerr.Wrap(rerr.Runtime, err, "db.set")
		}
		return rt.Null(), nil
	})
	set(rt, m, "close", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		h, err := expectInt(args, 0, "db.close")
		if err != nil {
			return nil, err
		}
		conn, err := dbConn(h)
		if err != nil {
			return nil, err
		}
		dbMu.Lock()
		delete(dbHandles, h)
		dbMu.Unlock()
		return rt.Null(), conn.Close()
	})
	rt.MarkInitialized(m)
	return m
}

func dbConn(h int64) (*sql.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()
	conn, ok := dbHandles[h]
	if !ok {
		return nil, rerr.New(rerr.Runtime, "db: invalid handle %d", h)
	}
	return conn, nil
}
