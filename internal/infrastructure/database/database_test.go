package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return Wrap(sqlx.NewDb(raw, "postgres")), mock
}

func TestSchemaReady(t *testing.T) {
	db, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery("to_regclass").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	assert.NoError(t, db.SchemaReady(ctx))

	mock.ExpectQuery("to_regclass").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	err := db.SchemaReady(ctx)
	assert.ErrorIs(t, err, ErrSchemaMissing)

	mock.ExpectQuery("to_regclass").WillReturnError(errors.New("boom"))
	err = db.SchemaReady(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSchemaMissing)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_CommitsOnSuccess(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM event_status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := InTx(context.Background(), db.DB, func(tx *sqlx.Tx) error {
		_, err := tx.Exec("DELETE FROM event_status WHERE event_id = $1", 1)
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	failure := errors.New("not owned")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := InTx(context.Background(), db.DB, func(tx *sqlx.Tx) error { return failure })
	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollsBackOnPanic(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = InTx(context.Background(), db.DB, func(tx *sqlx.Tx) error { panic("bad row") })
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats(t *testing.T) {
	db, _ := newMock(t)
	stats := db.Stats()
	assert.GreaterOrEqual(t, stats.Open, 0)
	assert.NotEmpty(t, stats.WaitDuration)
}

func TestInitMigration_UserDeleteCascades(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "000001_init.up.sql"))
	require.NoError(t, err)

	var userRefs int
	for _, line := range strings.Split(string(raw), "\n") {
		if !strings.Contains(line, "REFERENCES users(id)") {
			continue
		}
		userRefs++
		assert.Contains(t, line, "ON DELETE CASCADE", "user reference without cascade: %s", strings.TrimSpace(line))
	}
	assert.Equal(t, 3, userRefs)
	assert.Contains(t, string(raw), "CONSTRAINT calendar_events_recipe_id_fkey")
}
