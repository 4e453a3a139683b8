package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/arloliu/curvefit/errs"
)

// Driver selects the SQL backend of a SQLStore.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS curvefit_sessions (
  session_id TEXT PRIMARY KEY,
  snapshot   BLOB NOT NULL,
  updated_at INTEGER NOT NULL
);`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS curvefit_sessions (
  session_id TEXT PRIMARY KEY,
  snapshot   BYTEA NOT NULL,
  updated_at BIGINT NOT NULL
);`

// SQLStore persists snapshots in a curvefit_sessions table.
type SQLStore struct {
	db     *sql.DB
	driver Driver
	closed atomic.Bool
	now    func() time.Time
}

var _ Store = (*SQLStore)(nil)

// OpenSQL opens a database, pings it and ensures the schema exists.
//
// Parameters:
//   - driver: DriverSQLite (modernc) or DriverPostgres (pgx)
//   - dsn: driver-specific data source name
func OpenSQL(ctx context.Context, driver Driver, dsn string) (*SQLStore, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
	case DriverPostgres:
		drvName = "pgx"
	default:
		return nil, fmt.Errorf("unsupported driver: %q", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &SQLStore{db: db, driver: driver, now: time.Now}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	schema := schemaSQLite
	if s.driver == DriverPostgres {
		schema = schemaPostgres
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))

			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func (s *SQLStore) Save(ctx context.Context, id uuid.UUID, snapshot []byte) error {
	if s.closed.Load() {
		return errs.ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO curvefit_sessions (session_id, snapshot, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE
		SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`),
		id.String(), snapshot, s.now().UnixMicro())
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}

	return nil
}

func (s *SQLStore) Load(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if s.closed.Load() {
		return nil, errs.ErrStoreClosed
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT snapshot FROM curvefit_sessions WHERE session_id = ?`),
		id.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	return data, nil
}

func (s *SQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s.closed.Load() {
		return errs.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM curvefit_sessions WHERE session_id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
	}

	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]Info, error) {
	if s.closed.Load() {
		return nil, errs.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, updated_at, LENGTH(snapshot)
		FROM curvefit_sessions`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var (
			rawID     string
			updatedAt int64
			size      int
		)
		if err := rows.Scan(&rawID, &updatedAt, &size); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("session id %q: %w", rawID, err)
		}
		out = append(out, Info{ID: id, UpdatedAt: time.UnixMicro(updatedAt), Size: size})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sortInfos(out)

	return out, nil
}

func (s *SQLStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	return s.db.Close()
}
