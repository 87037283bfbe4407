package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bssic/school-portal-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func applicationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_name", "father_name", "mother_name", "date_of_birth", "mobile", "address", "email", "previous_school", "class_name", "document_urls", "status", "created_at", "updated_at"}).
		AddRow("a1", "Aman Kumar", "Rajesh Kumar", "Sunita Devi", "2010-04-12", "9876543210", "Village Road", "aman@example.com", "Primary School", "Class 6", "{}", "pending", time.Now(), time.Now())
}

func TestApplicationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO admission_applications").
		WillReturnResult(sqlmock.NewResult(1, 1))

	app := &models.AdmissionApplication{StudentName: "Aman Kumar", Status: models.StatusPending}
	err := repo.Create(context.Background(), app)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryListStatusFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_name, father_name, mother_name, date_of_birth, mobile, address, email, previous_school, class_name, document_urls, status, created_at, updated_at FROM admission_applications WHERE 1=1 AND status = $1 ORDER BY created_at DESC")).
		WithArgs(models.StatusPending).
		WillReturnRows(applicationRows())

	status := models.StatusPending
	apps, err := repo.List(context.Background(), models.ApplicationFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateStatusIfPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE admission_applications SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'pending'")).
		WithArgs("a1", models.StatusApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.UpdateStatusIfPending(context.Background(), "a1", models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateStatusIfPendingLostRace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE admission_applications SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'pending'")).
		WithArgs("a1", models.StatusRejected, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.UpdateStatusIfPending(context.Background(), "a1", models.StatusRejected)
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admission_applications")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admission_applications WHERE status = $1")).
		WithArgs(models.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	pending, err := repo.CountByStatus(context.Background(), models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
