package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikampus-api/internal/models"
)

func expectModuleLock(mock sqlmock.Sqlmock, moduleID string) {
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM modules WHERE id = $1 FOR UPDATE")).
		WithArgs(moduleID).
		WillReturnRows(sqlmock.NewRows(moduleRowColumns).
			AddRow(moduleID, "PRJ101", "Proyek Analisis Data", 4, 20, "Open", now, now))
}

func TestRegistrationRepositoryWithModuleLockCommits(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewRegistrationRepository(db)

	expectModuleLock(mock, "mod-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM registrations WHERE module_id = $1 AND status = $2")).
		WithArgs("mod-1", models.RegistrationStatusRegistered).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE module_id = $1 AND scholar_id = $2 AND status <> $3")).
		WithArgs("mod-1", "sch-1", models.RegistrationStatusCanceled).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO registrations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var inserted *models.Registration
	err := repo.WithModuleLock(context.Background(), "mod-1", func(ctx context.Context, scope RegistrationScope) error {
		assert.Equal(t, 20, scope.Module().MaxSlots)
		occupied, err := scope.CountRegistered(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, occupied)
		exists, err := scope.ExistsActive(ctx, "sch-1")
		require.NoError(t, err)
		assert.False(t, exists)
		inserted = &models.Registration{ScholarID: "sch-1", TotalFee: 800000, Status: models.RegistrationStatusRegistered}
		return scope.Insert(ctx, inserted)
	})
	require.NoError(t, err)
	assert.Equal(t, "mod-1", inserted.ModuleID)
	assert.NotEmpty(t, inserted.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryWithModuleLockRollsBack(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewRegistrationRepository(db)

	expectModuleLock(mock, "mod-1")
	mock.ExpectRollback()

	sentinel := errors.New("module full")
	err := repo.WithModuleLock(context.Background(), "mod-1", func(context.Context, RegistrationScope) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryWithModuleLockMissingModule(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	called := false
	err := repo.WithModuleLock(context.Background(), "missing", func(context.Context, RegistrationScope) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryUpdateStatusCompareAndSet(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewRegistrationRepository(db)

	score := models.ScoreB
	mock.ExpectExec(regexp.QuoteMeta("UPDATE registrations SET status = $3, final_score = $4 WHERE id = $1 AND status = $2")).
		WithArgs("reg-1", models.RegistrationStatusInProgress, models.RegistrationStatusCompleted, &score).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE registrations SET status = $3, final_score = $4 WHERE id = $1 AND status = $2")).
		WithArgs("reg-1", models.RegistrationStatusInProgress, models.RegistrationStatusCanceled, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.UpdateStatus(context.Background(), "reg-1", models.RegistrationStatusInProgress, models.RegistrationStatusCompleted, &score)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.UpdateStatus(context.Background(), "reg-1", models.RegistrationStatusInProgress, models.RegistrationStatusCanceled, nil)
	require.NoError(t, err)
	assert.False(t, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryListNewestFirst(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewRegistrationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "module_id", "scholar_id", "reg_date", "total_fee", "status", "final_score", "scholar_code", "scholar_name", "module_code", "module_title"}).
		AddRow("reg-2", "mod-1", "sch-2", time.Now(), 800000, "Registered", nil, "S2", "Budi", "PRJ101", "Proyek Analisis Data").
		AddRow("reg-1", "mod-1", "sch-1", time.Now().Add(-time.Hour), 800000, "Completed", "A", "S1", "Ayu", "PRJ101", "Proyek Analisis Data")
	mock.ExpectQuery(`WHERE p.module_id = \$1 ORDER BY p.reg_date DESC LIMIT 20 OFFSET 0`).
		WithArgs("mod-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM registrations p WHERE p.module_id = $1")).
		WithArgs("mod-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	registrations, total, err := repo.List(context.Background(), models.RegistrationFilter{ModuleID: "mod-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, registrations, 2)
	require.NotNil(t, registrations[1].FinalScore)
	assert.Equal(t, models.ScoreA, *registrations[1].FinalScore)
	assert.Nil(t, registrations[0].FinalScore)
	require.NoError(t, mock.ExpectationsWereMet())
}
