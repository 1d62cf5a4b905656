// Package sqlitestore serves catalog rows from the SQLite Gaia extract: an
// R*Tree table gaiartree(idoffset, ralo, rahi, declo, dechi, lomag, himag)
// joined to gaialight(idoffset, ra, dec, astrometry, magnitudes), with the
// per-solution errors and correlations in a sibling heavy database
// attached as dbheavy.
package sqlitestore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/starcat-io/starfov/internal/catalog"
	"github.com/starcat-io/starfov/internal/fov"
)

const (
	defaultMaxConns = 8
	busyTimeoutMS   = 5000
)

type options struct {
	heavyPath string
	maxConns  int
}

type Option func(*options)

// WithHeavyPath points the store at an explicit heavy database instead of
// the derived sibling path. The file must exist.
func WithHeavyPath(path string) Option {
	return func(o *options) { o.heavyPath = path }
}

// WithMaxConns caps pooled connections. Every open cursor holds one
// connection, so this also caps concurrently open cursors; Open blocks
// once the cap is reached.
func WithMaxConns(n int) Option {
	return func(o *options) { o.maxConns = n }
}

// Store reads a Gaia extract database. It is safe for concurrent use.
type Store struct {
	db        *sql.DB
	path      string
	heavyPath string
	heavy     bool
}

// Open opens the catalog read-only and verifies the connection. The heavy
// database is attached when its file exists; queries that do not request
// heavy columns never need it.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	o := options{maxConns: defaultMaxConns}
	for _, f := range opts {
		f(&o)
	}

	heavyPath := o.heavyPath
	explicit := heavyPath != ""
	if !explicit {
		heavyPath = deriveHeavyPath(path)
	}

	heavy := false
	if heavyPath != "" {
		if _, err := os.Stat(heavyPath); err == nil {
			heavy = true
		} else if explicit {
			return nil, fmt.Errorf("heavy catalog %s: %w", heavyPath, err)
		}
	}

	driverName := "sqlite3"
	if heavy {
		driverName = registerAttachDriver(heavyPath)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=%d", path, busyTimeoutMS)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to catalog %s: %w", path, err)
	}

	// One pooled connection per open cursor; idle connections keep their
	// heavy attach from the connect hook.
	db.SetMaxOpenConns(o.maxConns)
	db.SetMaxIdleConns(o.maxConns)

	return &Store{db: db, path: path, heavyPath: heavyPath, heavy: heavy}, nil
}

// deriveHeavyPath inserts _heavy before the last extension:
// dir/gaia.sqlite3 becomes dir/gaia_heavy.sqlite3. It returns "" when the
// path has no extension to split on.
func deriveHeavyPath(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.TrimSuffix(path, ext) + "_heavy" + ext
}

var attachSeq atomic.Uint64

// registerAttachDriver registers a sqlite3 driver variant whose every new
// connection attaches the heavy database as dbheavy. ATTACH is
// per-connection state, so it has to run in the connect hook, not once
// through the pool.
func registerAttachDriver(heavyPath string) string {
	attach := fmt.Sprintf("ATTACH DATABASE '%s' AS dbheavy",
		strings.ReplaceAll(heavyPath, "'", "''"))
	name := fmt.Sprintf("sqlite3_dbheavy_%d", attachSeq.Add(1))
	sql.Register(name, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// SQLiteConn.Exec only exists in cgo builds; the non-cgo stub
			// driver fails Open before ever invoking this hook.
			execer, ok := any(conn).(driver.Execer)
			if !ok {
				return errors.New("sqlite3 driver built without cgo")
			}
			_, err := execer.Exec(attach, nil)
			return err
		},
	})
	return name
}

// Open starts a magnitude-ordered scan of one RA/Dec box.
func (s *Store) Open(ctx context.Context, box fov.Box, req catalog.Request) (catalog.Cursor, error) {
	if req.Band.Column() == "" {
		return nil, &catalog.ResourceError{
			Op:  "open cursor",
			Err: fmt.Errorf("unknown magnitude band %q", req.Band),
		}
	}
	if req.Heavy && !s.heavy {
		return nil, &catalog.ResourceError{
			Op:  "open cursor",
			Err: errors.New("heavy catalog " + s.heavyPath + " is not attached"),
		}
	}

	rows, err := s.db.QueryContext(ctx, buildQuery(req), bindArgs(box, req)...)
	if err != nil {
		return nil, &catalog.ResourceError{Op: "open cursor", Err: err}
	}
	return &cursor{rows: rows, req: req}, nil
}

// Ping reports whether the catalog is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the light database path.
func (s *Store) Path() string { return s.path }

// HeavyPath returns the heavy database path, attached or not. It is ""
// only when no path was given and none could be derived.
func (s *Store) HeavyPath() string { return s.heavyPath }

// Heavy reports whether the heavy database is attached.
func (s *Store) Heavy() bool { return s.heavy }
