package dao

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Operation names reported to observers and in StorageError
const (
	OpFetchOne           = "fetch_one"
	OpFetchMany          = "fetch_many"
	OpExecute            = "execute"
	OpExecuteReturningID = "execute_returning_id"
)

// Acquirer checks out one connection per call
type Acquirer interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// DBAcquirer adapts a *sql.DB pool to Acquirer
type DBAcquirer struct {
	DB *sql.DB
}

func (a DBAcquirer) Conn(ctx context.Context) (*sql.Conn, error) {
	return a.DB.Conn(ctx)
}

type settings struct {
	dialect  Dialect
	binder   Binder
	logger   *zap.Logger
	observer Observer
}

// Option configures a Template
type Option func(*settings)

func WithDialect(d Dialect) Option    { return func(s *settings) { s.dialect = d } }
func WithBinder(b Binder) Option      { return func(s *settings) { s.binder = b } }
func WithLogger(l *zap.Logger) Option { return func(s *settings) { s.logger = l } }
func WithObserver(o Observer) Option  { return func(s *settings) { s.observer = o } }

// Template executes statements against storage and maps rows to T.
//
// Every call acquires its own connection and prepared statement (plus a
// cursor for reads) and releases them cursor first, then statement, then
// connection on every exit path. Release failures are logged and never
// replace the call's result.
type Template[T any] struct {
	acq    Acquirer
	mapper RowMapper[T]
	settings
}

// New builds a template. mapper may be nil for write-only use.
func New[T any](acq Acquirer, mapper RowMapper[T], opts ...Option) *Template[T] {
	s := settings{dialect: SQLite}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.binder == nil {
		s.binder = NewTypedBinder(s.logger)
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	return &Template[T]{acq: acq, mapper: mapper, settings: s}
}

// Dialect the dialect statements are rebound for
func (t *Template[T]) Dialect() Dialect {
	return t.dialect
}

// FetchOne maps the first row. A query with no rows returns (nil, nil).
func (t *Template[T]) FetchOne(ctx context.Context, query string, params ...Param) (*T, error) {
	var out *T
	err := t.withQuery(ctx, OpFetchOne, query, params, func(rows *sql.Rows) error {
		if !rows.Next() {
			return nil
		}
		v, err := t.mapper(rows)
		if err != nil {
			return t.fail(OpFetchOne, StageScan, query, err)
		}
		out = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchMany maps every row in order. No rows yields an empty, non-nil slice.
func (t *Template[T]) FetchMany(ctx context.Context, query string, params ...Param) ([]T, error) {
	out := make([]T, 0)
	err := t.withQuery(ctx, OpFetchMany, query, params, func(rows *sql.Rows) error {
		for rows.Next() {
			v, err := t.mapper(rows)
			if err != nil {
				return t.fail(OpFetchMany, StageScan, query, err)
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Execute runs an insert, update or delete and returns the affected row count
func (t *Template[T]) Execute(ctx context.Context, query string, params ...Param) (int64, error) {
	var affected int64
	err := t.withStatement(ctx, OpExecute, query, params, func(stmt *sql.Stmt, args []any) error {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return t.fail(OpExecute, StageExec, query, err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return t.fail(OpExecute, StageExec, query, err)
		}
		return nil
	})
	return affected, err
}

// ExecuteReturningID runs an insert and returns the generated surrogate key
// named keyColumn. A successful insert that yields no key fails with
// ErrNoGeneratedKey.
func (t *Template[T]) ExecuteReturningID(ctx context.Context, query, keyColumn string, params ...Param) (int64, error) {
	if t.dialect.Keys == KeyReturning {
		return t.insertReturning(ctx, query, keyColumn, params)
	}

	var id int64
	err := t.withStatement(ctx, OpExecuteReturningID, query, params, func(stmt *sql.Stmt, args []any) error {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return t.fail(OpExecuteReturningID, StageExec, query, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return t.fail(OpExecuteReturningID, StageKey, query, ErrNoGeneratedKey)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return t.fail(OpExecuteReturningID, StageKey, query, fmt.Errorf("%w: %v", ErrNoGeneratedKey, err))
		}
		if id <= 0 {
			return t.fail(OpExecuteReturningID, StageKey, query, ErrNoGeneratedKey)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (t *Template[T]) insertReturning(ctx context.Context, query, keyColumn string, params []Param) (int64, error) {
	var id int64
	stmtText := strings.TrimRight(query, "; \n\t\r") + " RETURNING " + keyColumn
	err := t.withQueryOp(ctx, OpExecuteReturningID, stmtText, params, func(rows *sql.Rows) error {
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return t.fail(OpExecuteReturningID, StageQuery, stmtText, err)
			}
			return t.fail(OpExecuteReturningID, StageKey, stmtText, ErrNoGeneratedKey)
		}
		var key sql.NullInt64
		if err := rows.Scan(&key); err != nil {
			return t.fail(OpExecuteReturningID, StageScan, stmtText, err)
		}
		if !key.Valid {
			return t.fail(OpExecuteReturningID, StageKey, stmtText, ErrNoGeneratedKey)
		}
		id = key.Int64
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (t *Template[T]) withQuery(ctx context.Context, op, query string, params []Param, fn func(rows *sql.Rows) error) error {
	if t.mapper == nil {
		err := t.fail(op, StageScan, query, ErrNoMapper)
		t.observer.ObserveStatement(op, 0, err)
		return err
	}
	return t.withQueryOp(ctx, op, query, params, fn)
}

func (t *Template[T]) withQueryOp(ctx context.Context, op, query string, params []Param, fn func(rows *sql.Rows) error) error {
	return t.withStatement(ctx, op, query, params, func(stmt *sql.Stmt, args []any) error {
		rows, err := stmt.QueryContext(ctx, args...)
		if err != nil {
			return t.fail(op, StageQuery, query, err)
		}
		defer t.release(op, "cursor", rows.Close)

		if err := fn(rows); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return t.fail(op, StageQuery, query, err)
		}
		return nil
	})
}

// withStatement binds params, acquires a connection and prepares the
// statement, then hands both to fn. Deferred releases run in reverse
// acquisition order.
func (t *Template[T]) withStatement(ctx context.Context, op, query string, params []Param, fn func(stmt *sql.Stmt, args []any) error) (err error) {
	start := time.Now()
	defer func() { t.observer.ObserveStatement(op, time.Since(start), err) }()

	args, err := t.bind(op, query, params)
	if err != nil {
		return err
	}

	conn, err := t.acq.Conn(ctx)
	if err != nil {
		return t.fail(op, StageAcquire, query, err)
	}
	defer t.release(op, "connection", conn.Close)

	stmt, err := conn.PrepareContext(ctx, t.dialect.Rebind(query))
	if err != nil {
		return t.fail(op, StagePrepare, query, err)
	}
	defer t.release(op, "statement", stmt.Close)

	return fn(stmt, args)
}

func (t *Template[T]) bind(op, query string, params []Param) ([]any, error) {
	if want := CountPlaceholders(query); want != len(params) {
		return nil, t.fail(op, StageBind, query, fmt.Errorf("%w: statement has %d, got %d", ErrParamCount, want, len(params)))
	}
	args := make([]any, len(params))
	for i, p := range params {
		v, err := t.binder.Bind(p)
		if err != nil {
			return nil, t.fail(op, StageBind, query, fmt.Errorf("parameter %d: %w", i+1, err))
		}
		args[i] = v
	}
	return args, nil
}

func (t *Template[T]) fail(op, stage, query string, err error) error {
	if se, ok := err.(*StorageError); ok {
		return se
	}
	return &StorageError{Op: op, Stage: stage, Query: query, Err: err}
}

// release closes one resource; failures are logged only
func (t *Template[T]) release(op, resource string, closeFn func() error) {
	if err := closeFn(); err != nil {
		t.logger.Warn("Failed to release storage resource",
			zap.String("op", op),
			zap.String("resource", resource),
			zap.Error(err))
	}
}
