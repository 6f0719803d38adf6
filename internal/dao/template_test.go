package dao

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type pest struct {
	ID   int64
	Name string
}

func mapPest(row Row) (pest, error) {
	var p pest
	err := row.Scan(&p.ID, &p.Name)
	return p, err
}

func setupMockDB(t *testing.T, opts ...Option) (*sql.DB, sqlmock.Sqlmock, *Template[pest]) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	tpl := New[pest](DBAcquirer{DB: db}, mapPest, opts...)
	return db, mock, tpl
}

const selectPest = "SELECT id_plaga, nombre_comun FROM plaga WHERE id_plaga = ?"

func TestFetchOne_Found(t *testing.T) {
	db, mock, tpl := setupMockDB(t)
	defer db.Close()

	prep := mock.ExpectPrepare(regexp.QuoteMeta(selectPest)).WillBeClosed()
	prep.ExpectQuery().
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id_plaga", "nombre_comun"}).AddRow(3, "Roya")).
		RowsWillBeClosed()

	got, err := tpl.FetchOne(context.Background(), selectPest, Int(3))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pest{ID: 3, Name: "Roya"}, *got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchOne_AbsentIsNotAnError(t *testing.T) {
	db, mock, tpl := setupMockDB(t)
	defer db.Close()

	prep := mock.ExpectPrepare(regexp.QuoteMeta(selectPest)).WillBeClosed()
	prep.ExpectQuery().
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id_plaga", "nombre_comun"})).
		RowsWillBeClosed()

	got, err := tpl.FetchOne(context.Background(), selectPest, Long(99))
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchMany_EmptyIsNonNil(t *testing.T) {
	db, mock, tpl := setupMockDB(t)
	defer db.Close()

	query := "SELECT id_plaga, nombre_comun FROM plaga ORDER BY id_plaga"
	prep := mock.ExpectPrepare(regexp.QuoteMeta(query)).WillBeClosed()
	prep.ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id_plaga", "nombre_comun"})).
		RowsWillBeClosed()

	got, err := tpl.FetchMany(context.Background(), query)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchMany_PreservesOrder(t *testing.T) {
	db, mock, tpl := setupMockDB(t)
	defer db.Close()

	query := "SELECT id_plaga, nombre_comun FROM plaga WHERE nombre_comun LIKE ? ORDER BY id_plaga"
	prep := mock.ExpectPrepare(regexp.QuoteMeta(query)).WillBeClosed()
	prep.ExpectQuery().
		WithArgs("%a%").
		WillReturnRows(sqlmock.NewRows([]string{"id_plaga", "nombre_comun"}).
			AddRow(1, "Broca").
			AddRow(2, "Roya").
			AddRow(5, "Sigatoka")).
		RowsWillBeClosed()

	got, err := tpl.FetchMany(context.Background(), query, String("%a%"))
	require.NoError(t, err)
	assert.Equal(t, []pest{{1, "Broca"}, {2, "Roya"}, {5, "Sigatoka"}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetch_QueryErrorReleasesResources(t *testing.T) {
	db, mock, tpl := setupMockDB(t)
	defer db.Close()

	boom := errors.New("relation \"plaga\" does not exist")
	prep := mock.ExpectPrepare(regexp.QuoteMeta(selectPest)).WillBeClosed()
	prep.ExpectQuery().WithArgs(int64(1)).WillReturnError(boom)

	got, err := tpl.FetchOne(context.Background(), selectPest, Int(1))
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, OpFetchOne, se.Op)
	assert.Equal(t, StageQuery, se.Stage)
	assert.True(t, IsStorageError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetch_MapperErrorReleasesCursor(t *testing.T) {
	db, mock, _ := setupMockDB(t)
	defer db.Close()

	scanErr := errors.New("bad column")
	tpl := New[pest](DBAcquirer{DB: db}, func(Row) (pest, error) { return pest{}, scanErr })

	prep := mock.ExpectPrepare(regexp.QuoteMeta(selectPest)).WillBeClosed()
	prep.ExpectQuery().
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id_plaga", "nombre_comun"}).AddRow(1, "Roya")).
		RowsWillBeClosed()

	_, err := tpl.FetchMany(context.Background(), selectPest, Int(1))
	assert.ErrorIs(t, err, scanErr)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageScan, se.Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetch_PrepareError(t *testing.T) {
	db, mock, tpl := setupMockDB(t)
	defer db.Close()

	mock.ExpectPrepare(regexp.QuoteMeta(selectPest)).WillReturnError(errors.New("syntax error"))

	_, err := tpl.FetchOne(context.Background(), selectPest, Int(1))
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StagePrepare, se.Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_CloseErrorIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	db, mock, tpl := setupMockDB(t, WithLogger(zap.New(core)))
	defer db.Close()

	prep := mock.ExpectPrepare(regexp.QuoteMeta(selectPest)).
		WillReturnCloseError(errors.New("statement close failed"))
	prep.ExpectQuery().
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id_plaga", "nombre_comun"}).AddRow(3, "Roya"))

	got, err := tpl.FetchOne(context.Background(), selectPest, Int(3))
	require.NoError(t, err)
	assert.Equal(t, "Roya", got.Name)

	entries := logs.FilterMessage("Failed to release storage resource").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "statement", entries[0].ContextMap()["resource"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_CloseErrorDoesNotShadowQueryError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	db, mock, tpl := setupMockDB(t, WithLogger(zap.New(core)))
	defer db.Close()

	queryErr := errors.New("deadlock detected")
	prep := mock.ExpectPrepare(regexp.QuoteMeta(selectPest)).
		WillReturnCloseError(errors.New("statement close failed"))
	prep.ExpectQuery().WithArgs(int64(3)).WillReturnError(queryErr)

	_, err := tpl.FetchOne(context.Background(), selectPest, Int(3))
	assert.ErrorIs(t, err, queryErr)
	assert.Equal(t, 1, logs.FilterMessage("Failed to release storage resource").Len())
}

func TestExecute_AffectedRowsAndBoolBinding(t *testing.T) {
	db, mock, tpl := setupMockDB(t)
	defer db.Close()

	query := "UPDATE usuario SET activo = ? WHERE id_usuario = ?"
	prep := mock.ExpectPrepare(regexp.QuoteMeta(query)).WillBeClosed()
	prep.ExpectExec().
		WithArgs(int64(0), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := tpl.Execute(context.Background(), query, Bool(false), Long(5))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_Error(t *testing.T) {
	db, mock, tpl := setupMockDB(t)
	defer db.Close()

	query := "DELETE FROM plaga WHERE id_plaga = ?"
	boom := errors.New("foreign key violation")
	prep := mock.ExpectPrepare(regexp.QuoteMeta(query)).WillBeClosed()
	prep.ExpectExec().WithArgs(int64(2)).WillReturnError(boom)

	n, err := tpl.Execute(context.Background(), query, Long(2))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, boom)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageExec, se.Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ParamCountMismatch(t *testing.T) {
	db, mock, tpl := setupMockDB(t)
	defer db.Close()

	_, err := tpl.Execute(context.Background(), "UPDATE plaga SET nombre_comun = ? WHERE id_plaga = ?", String("Roya"))
	assert.ErrorIs(t, err, ErrParamCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteReturningID_LastInsertID(t *testing.T) {
	db, mock, tpl := setupMockDB(t)
	defer db.Close()

	query := "INSERT INTO plaga (nombre_comun) VALUES (?)"
	prep := mock.ExpectPrepare(regexp.QuoteMeta(query)).WillBeClosed()
	prep.ExpectExec().WithArgs("Roya").WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := tpl.ExecuteReturningID(context.Background(), query, "id_plaga", String("Roya"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteReturningID_NoKey(t *testing.T) {
	query := "INSERT INTO plaga (nombre_comun) VALUES (?)"

	t.Run("zero key", func(t *testing.T) {
		db, mock, tpl := setupMockDB(t)
		defer db.Close()
		prep := mock.ExpectPrepare(regexp.QuoteMeta(query)).WillBeClosed()
		prep.ExpectExec().WithArgs("Roya").WillReturnResult(sqlmock.NewResult(0, 1))

		_, err := tpl.ExecuteReturningID(context.Background(), query, "id_plaga", String("Roya"))
		assert.ErrorIs(t, err, ErrNoGeneratedKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver cannot report key", func(t *testing.T) {
		db, mock, tpl := setupMockDB(t)
		defer db.Close()
		prep := mock.ExpectPrepare(regexp.QuoteMeta(query)).WillBeClosed()
		prep.ExpectExec().WithArgs("Roya").WillReturnResult(sqlmock.NewErrorResult(errors.New("LastInsertId is not supported")))

		_, err := tpl.ExecuteReturningID(context.Background(), query, "id_plaga", String("Roya"))
		assert.ErrorIs(t, err, ErrNoGeneratedKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty key set", func(t *testing.T) {
		db, mock, tpl := setupMockDB(t, WithDialect(Postgres))
		defer db.Close()
		prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO plaga (nombre_comun) VALUES ($1) RETURNING id_plaga")).WillBeClosed()
		prep.ExpectQuery().
			WithArgs("Roya").
			WillReturnRows(sqlmock.NewRows([]string{"id_plaga"})).
			RowsWillBeClosed()

		_, err := tpl.ExecuteReturningID(context.Background(), query, "id_plaga", String("Roya"))
		assert.ErrorIs(t, err, ErrNoGeneratedKey)
		var se *StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, StageKey, se.Stage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestExecuteReturningID_Returning(t *testing.T) {
	db, mock, tpl := setupMockDB(t, WithDialect(Postgres))
	defer db.Close()

	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO plaga (nombre_comun, nombre_cientifico) VALUES ($1, $2) RETURNING id_plaga")).WillBeClosed()
	prep.ExpectQuery().
		WithArgs("Roya", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id_plaga"}).AddRow(int64(7))).
		RowsWillBeClosed()

	id, err := tpl.ExecuteReturningID(context.Background(),
		"INSERT INTO plaga (nombre_comun, nombre_cientifico) VALUES (?, ?)", "id_plaga",
		ParamsOf("Roya", (*string)(nil))...)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteReturningID_ReturningAfterTrailingSemicolon(t *testing.T) {
	db, mock, tpl := setupMockDB(t, WithDialect(Postgres))
	defer db.Close()

	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO plaga (nombre_comun) VALUES ($1) RETURNING id_plaga")).WillBeClosed()
	prep.ExpectQuery().
		WithArgs("Broca").
		WillReturnRows(sqlmock.NewRows([]string{"id_plaga"}).AddRow(int64(8))).
		RowsWillBeClosed()

	id, err := tpl.ExecuteReturningID(context.Background(),
		"INSERT INTO plaga (nombre_comun) VALUES (?);\n\t", "id_plaga", ParamsOf("Broca")...)
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type failingAcquirer struct{ err error }

func (f failingAcquirer) Conn(context.Context) (*sql.Conn, error) { return nil, f.err }

func TestAcquireFailure(t *testing.T) {
	boom := errors.New("connection refused")
	tpl := New[pest](failingAcquirer{err: boom}, mapPest)

	_, err := tpl.FetchMany(context.Background(), "SELECT id_plaga, nombre_comun FROM plaga")
	assert.ErrorIs(t, err, boom)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageAcquire, se.Stage)
}

func TestFetch_NoMapper(t *testing.T) {
	tpl := New[pest](failingAcquirer{}, nil)
	_, err := tpl.FetchOne(context.Background(), selectPest, Int(1))
	assert.ErrorIs(t, err, ErrNoMapper)
}

type recordingObserver struct {
	ops  []string
	errs []error
}

func (r *recordingObserver) ObserveStatement(op string, _ time.Duration, err error) {
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func TestObserver_ReceivesEveryCall(t *testing.T) {
	obs := &recordingObserver{}
	db, mock, tpl := setupMockDB(t, WithObserver(obs))
	defer db.Close()

	query := "DELETE FROM plaga WHERE id_plaga = ?"
	prep := mock.ExpectPrepare(regexp.QuoteMeta(query))
	prep.ExpectExec().WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := tpl.Execute(context.Background(), query, Long(1))
	require.NoError(t, err)
	_, err = tpl.Execute(context.Background(), query)
	require.Error(t, err)

	assert.Equal(t, []string{OpExecute, OpExecute}, obs.ops)
	assert.NoError(t, obs.errs[0])
	assert.ErrorIs(t, obs.errs[1], ErrParamCount)
}
