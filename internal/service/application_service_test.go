package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bssic/school-portal-api/internal/models"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
)

type mockApplicationRepo struct {
	apps          map[string]*models.AdmissionApplication
	created       []*models.AdmissionApplication
	statusUpdates []models.ApplicationStatus
	fieldUpdates  map[string]string
	pendingRows   int64
	deleted       []string
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *models.AdmissionApplication) error {
	m.created = append(m.created, app)
	return nil
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return app, nil
}

func (m *mockApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.AdmissionApplication, error) {
	apps := []models.AdmissionApplication{}
	for _, app := range m.apps {
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		apps = append(apps, *app)
	}
	return apps, nil
}

func (m *mockApplicationRepo) UpdateStatusIfPending(ctx context.Context, id string, status models.ApplicationStatus) (int64, error) {
	m.statusUpdates = append(m.statusUpdates, status)
	return m.pendingRows, nil
}

func (m *mockApplicationRepo) UpdateField(ctx context.Context, id, column, value string) (int64, error) {
	if m.fieldUpdates == nil {
		m.fieldUpdates = make(map[string]string)
	}
	m.fieldUpdates[column] = value
	if _, ok := m.apps[id]; !ok {
		return 0, nil
	}
	return 1, nil
}

func (m *mockApplicationRepo) UpdateDocumentURLs(ctx context.Context, id string, urls []string) (int64, error) {
	if _, ok := m.apps[id]; !ok {
		return 0, nil
	}
	return 1, nil
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id string) (int64, error) {
	if _, ok := m.apps[id]; !ok {
		return 0, nil
	}
	m.deleted = append(m.deleted, id)
	delete(m.apps, id)
	return 1, nil
}

type mockAuditLogWriter struct {
	logs []*models.AuditLog
}

func (m *mockAuditLogWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

type mockDocumentCleaner struct {
	removed []string
}

func (m *mockDocumentCleaner) RemoveStored(path string) {
	m.removed = append(m.removed, path)
}

func validApplicationRequest() SubmitApplicationRequest {
	return SubmitApplicationRequest{
		StudentName:    "Aman Kumar",
		FatherName:     "Rajesh Kumar",
		MotherName:     "Sunita Devi",
		DateOfBirth:    "2010-04-12",
		Mobile:         "9876543210",
		Address:        "Village Road, District",
		Email:          "Aman@Example.com",
		PreviousSchool: "Primary School",
		ClassName:      "Class 6",
	}
}

func newTestApplicationService(repo *mockApplicationRepo, audits *mockAuditLogWriter, docs *mockDocumentCleaner) *ApplicationService {
	return NewApplicationService(repo, audits, nil, docs, validator.New(), zap.NewNop())
}

func TestApplicationServiceSubmit(t *testing.T) {
	repo := &mockApplicationRepo{}
	svc := newTestApplicationService(repo, &mockAuditLogWriter{}, nil)

	app, err := svc.Submit(context.Background(), validApplicationRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, "aman@example.com", app.Email)
	require.Len(t, repo.created, 1)
}

func TestApplicationServiceSubmitMobileRules(t *testing.T) {
	svc := newTestApplicationService(&mockApplicationRepo{}, &mockAuditLogWriter{}, nil)

	for _, mobile := range []string{"12345", "98765432101", "98765abcde", "987 654321"} {
		req := validApplicationRequest()
		req.Mobile = mobile
		_, err := svc.Submit(context.Background(), req)
		require.Error(t, err, "mobile %q should be rejected", mobile)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestApplicationServiceSubmitUnknownClass(t *testing.T) {
	svc := newTestApplicationService(&mockApplicationRepo{}, &mockAuditLogWriter{}, nil)

	req := validApplicationRequest()
	req.ClassName = "Class 5"
	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceSubmitFiltersEmptyDocuments(t *testing.T) {
	repo := &mockApplicationRepo{}
	svc := newTestApplicationService(repo, &mockAuditLogWriter{}, nil)

	req := validApplicationRequest()
	req.DocumentURLs = []string{"", "applications/doc1.pdf", "  "}
	app, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"applications/doc1.pdf"}, []string(app.DocumentURLs))
}

func TestApplicationServiceUpdateStatus(t *testing.T) {
	repo := &mockApplicationRepo{pendingRows: 1, apps: map[string]*models.AdmissionApplication{
		"a1": {ID: "a1", Status: models.StatusPending},
	}}
	audits := &mockAuditLogWriter{}
	svc := newTestApplicationService(repo, audits, nil)

	err := svc.UpdateStatus(context.Background(), "a1", UpdateStatusRequest{Status: models.StatusApproved}, "admin1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, []models.ApplicationStatus{models.StatusApproved}, repo.statusUpdates)
	assert.NotEmpty(t, audits.logs)
}

func TestApplicationServiceUpdateStatusNotPending(t *testing.T) {
	repo := &mockApplicationRepo{pendingRows: 0, apps: map[string]*models.AdmissionApplication{
		"a1": {ID: "a1", Status: models.StatusApproved},
	}}
	svc := newTestApplicationService(repo, &mockAuditLogWriter{}, nil)

	err := svc.UpdateStatus(context.Background(), "a1", UpdateStatusRequest{Status: models.StatusRejected}, "admin1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStatusNotPending.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceUpdateStatusNotFound(t *testing.T) {
	repo := &mockApplicationRepo{pendingRows: 0, apps: map[string]*models.AdmissionApplication{}}
	svc := newTestApplicationService(repo, &mockAuditLogWriter{}, nil)

	err := svc.UpdateStatus(context.Background(), "missing", UpdateStatusRequest{Status: models.StatusApproved}, "admin1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceUpdateStatusRejectsPendingTarget(t *testing.T) {
	repo := &mockApplicationRepo{pendingRows: 1, apps: map[string]*models.AdmissionApplication{
		"a1": {ID: "a1", Status: models.StatusApproved},
	}}
	svc := newTestApplicationService(repo, &mockAuditLogWriter{}, nil)

	err := svc.UpdateStatus(context.Background(), "a1", UpdateStatusRequest{Status: models.StatusPending}, "admin1", models.RequestMeta{})
	require.Error(t, err)
	assert.Empty(t, repo.statusUpdates)
}

func TestApplicationServiceUpdateFieldWhitelist(t *testing.T) {
	repo := &mockApplicationRepo{apps: map[string]*models.AdmissionApplication{"a1": {ID: "a1"}}}
	svc := newTestApplicationService(repo, &mockAuditLogWriter{}, nil)

	err := svc.UpdateField(context.Background(), "a1", UpdateFieldRequest{Field: "status", Value: "approved"}, "admin1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.fieldUpdates)
}

func TestApplicationServiceUpdateFieldValidation(t *testing.T) {
	repo := &mockApplicationRepo{apps: map[string]*models.AdmissionApplication{"a1": {ID: "a1"}}}
	svc := newTestApplicationService(repo, &mockAuditLogWriter{}, nil)

	err := svc.UpdateField(context.Background(), "a1", UpdateFieldRequest{Field: "mobile", Value: "12345"}, "admin1", models.RequestMeta{})
	require.Error(t, err)
	assert.Empty(t, repo.fieldUpdates)

	err = svc.UpdateField(context.Background(), "a1", UpdateFieldRequest{Field: "mobile", Value: "9876543210"}, "admin1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "9876543210", repo.fieldUpdates["mobile"])
}

func TestApplicationServiceDeleteCleansDocuments(t *testing.T) {
	repo := &mockApplicationRepo{apps: map[string]*models.AdmissionApplication{
		"a1": {ID: "a1", DocumentURLs: []string{"applications/doc1.pdf", "https://example.com/other.pdf"}},
	}}
	docs := &mockDocumentCleaner{}
	svc := newTestApplicationService(repo, &mockAuditLogWriter{}, docs)

	err := svc.Delete(context.Background(), "a1", "admin1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, repo.deleted)
	assert.Contains(t, docs.removed, "applications/doc1.pdf")
}

func TestApplicationServiceExportCSV(t *testing.T) {
	repo := &mockApplicationRepo{apps: map[string]*models.AdmissionApplication{
		"a1": {ID: "a1", StudentName: "Aman Kumar", Status: models.StatusPending, ClassName: "Class 6"},
	}}
	svc := newTestApplicationService(repo, &mockAuditLogWriter{}, nil)

	data, err := svc.ExportCSV(context.Background(), models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Contains(t, string(data), "Aman Kumar")
	assert.Contains(t, string(data), "Student Name")
}
