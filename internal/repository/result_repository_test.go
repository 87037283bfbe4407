package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bssic/school-portal-api/internal/models"
)

func resultRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"roll_number", "student_name", "class_name", "subjects", "total_marks", "percentage", "created_at"}).
		AddRow(int64(101), "Aman Kumar", "Class 10", []byte(`[{"subject":"Mathematics","marks":92}]`), int64(92), int64(92), time.Now())
}

func TestResultRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("INSERT INTO student_results").
		WillReturnResult(sqlmock.NewResult(1, 1))

	result := &models.StudentResult{
		RollNumber:  101,
		StudentName: "Aman Kumar",
		ClassName:   "Class 10",
		Subjects:    models.SubjectMarks{{Subject: "Mathematics", Marks: 92}},
		TotalMarks:  92,
		Percentage:  92,
	}
	err := repo.Create(context.Background(), result)
	require.NoError(t, err)
	assert.False(t, result.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryFindByRollNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT roll_number, student_name, class_name, subjects, total_marks, percentage, created_at FROM student_results WHERE roll_number = $1 LIMIT 1")).
		WithArgs(int64(101)).
		WillReturnRows(resultRows())

	result, err := repo.FindByRollNumber(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "Aman Kumar", result.StudentName)
	require.Len(t, result.Subjects, 1)
	assert.Equal(t, int64(92), result.Subjects[0].Marks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListPercentageSort(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT roll_number, student_name, class_name, subjects, total_marks, percentage, created_at FROM student_results WHERE 1=1 ORDER BY percentage DESC")).
		WillReturnRows(resultRows())

	results, err := repo.List(context.Background(), models.ResultFilter{Sort: models.ResultSortPercentage})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListSubjectFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT roll_number, student_name, class_name, subjects, total_marks, percentage, created_at FROM student_results WHERE 1=1 AND class_name = $1 AND subjects @> $2 ORDER BY created_at DESC")).
		WithArgs("Class 10", `[{"subject":"Mathematics"}]`).
		WillReturnRows(resultRows())

	results, err := repo.List(context.Background(), models.ResultFilter{ClassName: "Class 10", Subject: "Mathematics"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListSubjectFilterKeepsValidJSON(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	// Runes outside the Basic Multilingual Plane must stay raw UTF-8;
	// Go-style \U escapes are not valid JSON for the jsonb parser.
	subject := "Math \U0001D400"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT roll_number, student_name, class_name, subjects, total_marks, percentage, created_at FROM student_results WHERE 1=1 AND subjects @> $1 ORDER BY created_at DESC")).
		WithArgs(`[{"subject":"Math ` + "\U0001D400" + `"}]`).
		WillReturnRows(resultRows())

	results, err := repo.List(context.Background(), models.ResultFilter{Subject: subject})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_results WHERE roll_number = $1")).
		WithArgs(int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.Delete(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
