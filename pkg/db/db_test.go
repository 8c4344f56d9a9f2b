package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres"} {
		d, err := Dialector(Config{Driver: driver, DSN: "dsn"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(Config{Driver: "sqlite"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	d, err := Open(gormmysql.New(gormmysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return d, mock
}

func TestOpen_Close(t *testing.T) {
	d, mock := newMockDB(t)
	mock.ExpectClose()
	require.NoError(t, d.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
