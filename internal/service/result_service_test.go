package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bssic/school-portal-api/internal/models"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
)

type mockResultRepo struct {
	results map[int64]*models.StudentResult
	deleted []int64
}

func (m *mockResultRepo) Create(ctx context.Context, result *models.StudentResult) error {
	if m.results == nil {
		m.results = make(map[int64]*models.StudentResult)
	}
	if _, exists := m.results[result.RollNumber]; exists {
		return &pq.Error{Code: "23505"}
	}
	m.results[result.RollNumber] = result
	return nil
}

func (m *mockResultRepo) FindByRollNumber(ctx context.Context, rollNumber int64) (*models.StudentResult, error) {
	result, ok := m.results[rollNumber]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return result, nil
}

func (m *mockResultRepo) List(ctx context.Context, filter models.ResultFilter) ([]models.StudentResult, error) {
	results := []models.StudentResult{}
	for _, r := range m.results {
		results = append(results, *r)
	}
	return results, nil
}

func (m *mockResultRepo) Delete(ctx context.Context, rollNumber int64) (int64, error) {
	if _, ok := m.results[rollNumber]; !ok {
		return 0, nil
	}
	delete(m.results, rollNumber)
	m.deleted = append(m.deleted, rollNumber)
	return 1, nil
}

func newTestResultService(repo *mockResultRepo, audits *mockAuditLogWriter) *ResultService {
	return NewResultService(repo, audits, nil, 0, "Test School", validator.New(), zap.NewNop())
}

func validResultRequest() SubmitResultRequest {
	return SubmitResultRequest{
		RollNumber:  101,
		StudentName: "Priya Sharma",
		ClassName:   "Class 10",
		Subjects: []SubjectMarkInput{
			{Subject: "Math", Marks: 90},
			{Subject: "Science", Marks: 80},
			{Subject: "English", Marks: 70},
		},
	}
}

func TestResultServiceSubmitDerivesTotals(t *testing.T) {
	repo := &mockResultRepo{}
	svc := newTestResultService(repo, &mockAuditLogWriter{})

	result, err := svc.Submit(context.Background(), validResultRequest(), "admin1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, int64(240), result.TotalMarks)
	assert.Equal(t, int64(80), result.Percentage)
}

func TestResultServiceSubmitDuplicateRoll(t *testing.T) {
	repo := &mockResultRepo{}
	svc := newTestResultService(repo, &mockAuditLogWriter{})

	_, err := svc.Submit(context.Background(), validResultRequest(), "admin1", models.RequestMeta{})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), validResultRequest(), "admin1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestResultServiceSubmitValidation(t *testing.T) {
	svc := newTestResultService(&mockResultRepo{}, &mockAuditLogWriter{})

	req := validResultRequest()
	req.Subjects = nil
	_, err := svc.Submit(context.Background(), req, "admin1", models.RequestMeta{})
	require.Error(t, err)

	req = validResultRequest()
	req.Subjects[0].Marks = 101
	_, err = svc.Submit(context.Background(), req, "admin1", models.RequestMeta{})
	require.Error(t, err)

	req = validResultRequest()
	req.ClassName = "Class 13"
	_, err = svc.Submit(context.Background(), req, "admin1", models.RequestMeta{})
	require.Error(t, err)
}

func TestResultServiceLookup(t *testing.T) {
	repo := &mockResultRepo{results: map[int64]*models.StudentResult{
		101: {RollNumber: 101, StudentName: "Priya Sharma", TotalMarks: 240, Percentage: 80},
	}}
	svc := newTestResultService(repo, &mockAuditLogWriter{})

	result, err := svc.Lookup(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "Priya Sharma", result.StudentName)

	_, err = svc.Lookup(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Lookup(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestResultServiceListSortValidation(t *testing.T) {
	svc := newTestResultService(&mockResultRepo{}, &mockAuditLogWriter{})

	_, err := svc.List(context.Background(), models.ResultFilter{Sort: "alphabetical"})
	require.Error(t, err)

	_, err = svc.List(context.Background(), models.ResultFilter{Sort: models.ResultSortPercentage})
	require.NoError(t, err)
}

func TestResultServiceDelete(t *testing.T) {
	repo := &mockResultRepo{results: map[int64]*models.StudentResult{
		101: {RollNumber: 101},
	}}
	audits := &mockAuditLogWriter{}
	svc := newTestResultService(repo, audits)

	err := svc.Delete(context.Background(), 101, "admin1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, []int64{101}, repo.deleted)
	assert.NotEmpty(t, audits.logs)

	err = svc.Delete(context.Background(), 101, "admin1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestResultServiceMarksheet(t *testing.T) {
	repo := &mockResultRepo{results: map[int64]*models.StudentResult{
		101: {
			RollNumber:  101,
			StudentName: "Priya Sharma",
			ClassName:   "Class 10",
			Subjects:    models.SubjectMarks{{Subject: "Math", Marks: 90}},
			TotalMarks:  90,
			Percentage:  90,
		},
	}}
	svc := newTestResultService(repo, &mockAuditLogWriter{})

	data, err := svc.Marksheet(context.Background(), 101)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}
