package database

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeedMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestSeedModulesSkipsPopulatedCatalogue(t *testing.T) {
	db, mock := newSeedMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM modules`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	inserted, err := SeedModules(context.Background(), db)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedModulesInsertsDefaults(t *testing.T) {
	db, mock := newSeedMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM modules`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	for _, m := range defaultModules {
		mock.ExpectExec("INSERT INTO modules").
			WithArgs(sqlmock.AnyArg(), m.code, m.title, m.credits, m.maxSlots, m.status, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	inserted, err := SeedModules(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, len(defaultModules), inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}
