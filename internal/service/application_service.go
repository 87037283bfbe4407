package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/bssic/school-portal-api/internal/models"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
	"github.com/bssic/school-portal-api/pkg/export"
)

type applicationRepository interface {
	Create(ctx context.Context, app *models.AdmissionApplication) error
	FindByID(ctx context.Context, id string) (*models.AdmissionApplication, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.AdmissionApplication, error)
	UpdateStatusIfPending(ctx context.Context, id string, status models.ApplicationStatus) (int64, error)
	UpdateField(ctx context.Context, id, column, value string) (int64, error)
	UpdateDocumentURLs(ctx context.Context, id string, urls []string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type documentCleaner interface {
	RemoveStored(path string)
}

var mobileRe = regexp.MustCompile(`^\d{10}$`)

// SubmitApplicationRequest is the public admission form payload. The
// field groups mirror the four wizard steps: personal, contact,
// academic, documents.
type SubmitApplicationRequest struct {
	StudentName    string   `json:"student_name" validate:"required"`
	FatherName     string   `json:"father_name" validate:"required"`
	MotherName     string   `json:"mother_name" validate:"required"`
	DateOfBirth    string   `json:"date_of_birth" validate:"required"`
	Mobile         string   `json:"mobile" validate:"required"`
	Address        string   `json:"address" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	PreviousSchool string   `json:"previous_school" validate:"required"`
	ClassName      string   `json:"class_name" validate:"required"`
	DocumentURLs   []string `json:"document_urls" validate:"max=3"`
}

// UpdateStatusRequest carries an approve/reject decision.
type UpdateStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required"`
}

// UpdateFieldRequest edits a single application field.
type UpdateFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// UpdateDocumentsRequest replaces the application's document list.
type UpdateDocumentsRequest struct {
	DocumentURLs []string `json:"document_urls" validate:"max=3"`
}

// ApplicationService handles admission application workflows.
type ApplicationService struct {
	repo      applicationRepository
	audits    auditWriter
	cache     *CacheService
	docs      documentCleaner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService creates an instance of ApplicationService.
func NewApplicationService(repo applicationRepository, audits auditWriter, cache *CacheService, docs documentCleaner, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ApplicationService{repo: repo, audits: audits, cache: cache, docs: docs, validator: validate, logger: logger}
}

// Submit validates and stores a new application. Empty document URL
// entries are dropped: three blank upload fields become an empty list,
// never a list of empty strings.
func (s *ApplicationService) Submit(ctx context.Context, req SubmitApplicationRequest) (*models.AdmissionApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	if !mobileRe.MatchString(req.Mobile) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mobile must be exactly 10 digits")
	}
	if !models.ValidClassName(req.ClassName) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class must be one of: %s", strings.Join(models.ClassNames, ", ")))
	}

	app := &models.AdmissionApplication{
		ID:             uuid.NewString(),
		StudentName:    req.StudentName,
		FatherName:     req.FatherName,
		MotherName:     req.MotherName,
		DateOfBirth:    req.DateOfBirth,
		Mobile:         req.Mobile,
		Address:        req.Address,
		Email:          strings.ToLower(req.Email),
		PreviousSchool: req.PreviousSchool,
		ClassName:      req.ClassName,
		DocumentURLs:   pq.StringArray(filterEmpty(req.DocumentURLs)),
		Status:         models.StatusPending,
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store application")
	}

	s.invalidateDashboard(ctx)

	return app, nil
}

// List returns applications newest first, optionally filtered by status
// and student name search.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.AdmissionApplication, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown application status")
	}
	apps, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, nil
}

// Get returns a single application.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// UpdateStatus approves or rejects a pending application. The transition
// is a compare-and-swap: if the application is no longer pending the call
// fails with a precondition error instead of overwriting a prior decision.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest, actorID string, meta models.RequestMeta) error {
	if req.Status != models.StatusApproved && req.Status != models.StatusRejected {
		return appErrors.Clone(appErrors.ErrValidation, "status must be approved or rejected")
	}

	rows, err := s.repo.UpdateStatusIfPending(ctx, id, req.Status)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}
	if rows == 0 {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "application not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
		}
		return appErrors.ErrStatusNotPending
	}

	payload, _ := json.Marshal(map[string]interface{}{"status": req.Status})
	s.writeAudit(ctx, actorID, models.AuditActionApplicationStatus, id, payload, meta)
	s.invalidateDashboard(ctx)

	return nil
}

// Mutable application fields mapped onto their columns. The map keys are
// the only field names accepted by UpdateField.
var applicationFieldColumns = map[string]string{
	"student_name":    "student_name",
	"father_name":     "father_name",
	"mother_name":     "mother_name",
	"date_of_birth":   "date_of_birth",
	"mobile":          "mobile",
	"address":         "address",
	"email":           "email",
	"previous_school": "previous_school",
	"class_name":      "class_name",
}

// UpdateField edits one whitelisted field of an application, applying the
// same per-field rules as the submission form.
func (s *ApplicationService) UpdateField(ctx context.Context, id string, req UpdateFieldRequest, actorID string, meta models.RequestMeta) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid field update payload")
	}

	column, ok := applicationFieldColumns[req.Field]
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q is not editable", req.Field))
	}

	switch req.Field {
	case "mobile":
		if !mobileRe.MatchString(req.Value) {
			return appErrors.Clone(appErrors.ErrValidation, "mobile must be exactly 10 digits")
		}
	case "email":
		if err := s.validator.Var(req.Value, "email"); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid email address")
		}
	case "class_name":
		if !models.ValidClassName(req.Value) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class must be one of: %s", strings.Join(models.ClassNames, ", ")))
		}
	}

	rows, err := s.repo.UpdateField(ctx, id, column, req.Value)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application field")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}

	payload, _ := json.Marshal(map[string]interface{}{"field": req.Field, "value": req.Value})
	s.writeAudit(ctx, actorID, models.AuditActionApplicationUpdate, id, payload, meta)

	return nil
}

// UpdateDocuments replaces the stored document list.
func (s *ApplicationService) UpdateDocuments(ctx context.Context, id string, req UpdateDocumentsRequest, actorID string, meta models.RequestMeta) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid documents payload")
	}

	urls := filterEmpty(req.DocumentURLs)
	rows, err := s.repo.UpdateDocumentURLs(ctx, id, urls)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application documents")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}

	payload, _ := json.Marshal(map[string]interface{}{"document_urls": urls})
	s.writeAudit(ctx, actorID, models.AuditActionApplicationUpdate, id, payload, meta)

	return nil
}

// Delete removes an application and cleans up any locally stored
// documents it referenced.
func (s *ApplicationService) Delete(ctx context.Context, id string, actorID string, meta models.RequestMeta) error {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete application")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}

	if s.docs != nil {
		for _, url := range app.DocumentURLs {
			s.docs.RemoveStored(url)
		}
	}

	payload, _ := json.Marshal(map[string]interface{}{"student_name": app.StudentName, "status": app.Status})
	s.writeAudit(ctx, actorID, models.AuditActionApplicationDelete, id, payload, meta)
	s.invalidateDashboard(ctx)

	return nil
}

// ExportCSV renders the (optionally filtered) application list as CSV.
func (s *ApplicationService) ExportCSV(ctx context.Context, filter models.ApplicationFilter) ([]byte, error) {
	apps, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Student Name", "Father Name", "Mother Name", "Date of Birth", "Mobile", "Email", "Address", "Previous School", "Class", "Status", "Submitted At"},
	}
	for _, app := range apps {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":              app.ID,
			"Student Name":    app.StudentName,
			"Father Name":     app.FatherName,
			"Mother Name":     app.MotherName,
			"Date of Birth":   app.DateOfBirth,
			"Mobile":          app.Mobile,
			"Email":           app.Email,
			"Address":         app.Address,
			"Previous School": app.PreviousSchool,
			"Class":           app.ClassName,
			"Status":          string(app.Status),
			"Submitted At":    app.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	data, err := export.NewCSVExporter().Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render applications csv")
	}
	return data, nil
}

func (s *ApplicationService) writeAudit(ctx context.Context, actorID, action, resourceID string, payload []byte, meta models.RequestMeta) {
	if s.audits == nil {
		return
	}
	if err := s.audits.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "applications",
		ResourceID: &resourceID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record application audit log", zap.Error(err))
	}
}

func (s *ApplicationService) invalidateDashboard(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, dashboardStatsCacheKey)
	}
}

func filterEmpty(urls []string) []string {
	filtered := make([]string, 0, len(urls))
	for _, u := range urls {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			filtered = append(filtered, trimmed)
		}
	}
	return filtered
}
