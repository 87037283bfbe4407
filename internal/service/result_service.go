package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/bssic/school-portal-api/internal/models"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
	"github.com/bssic/school-portal-api/pkg/export"
)

const resultCacheKeyFormat = "result:%d"

type resultRepository interface {
	Create(ctx context.Context, result *models.StudentResult) error
	FindByRollNumber(ctx context.Context, rollNumber int64) (*models.StudentResult, error)
	List(ctx context.Context, filter models.ResultFilter) ([]models.StudentResult, error)
	Delete(ctx context.Context, rollNumber int64) (int64, error)
}

// SubjectMarkInput is one subject score on a result upload.
type SubjectMarkInput struct {
	Subject string `json:"subject" validate:"required"`
	Marks   int64  `json:"marks" validate:"gte=0,lte=100"`
}

// SubmitResultRequest uploads one student's result. Total marks and
// percentage are computed here, not taken from the payload.
type SubmitResultRequest struct {
	RollNumber  int64              `json:"roll_number" validate:"required,gt=0"`
	StudentName string             `json:"student_name" validate:"required"`
	ClassName   string             `json:"class_name" validate:"required"`
	Subjects    []SubjectMarkInput `json:"subjects" validate:"required,min=1,dive"`
}

// ResultService manages exam result publication and lookup.
type ResultService struct {
	repo       resultRepository
	audits     auditWriter
	cache      *CacheService
	cacheTTL   time.Duration
	marksheets *export.MarksheetExporter
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewResultService creates an instance of ResultService.
func NewResultService(repo resultRepository, audits auditWriter, cache *CacheService, cacheTTL time.Duration, schoolName string, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ResultService{
		repo:       repo,
		audits:     audits,
		cache:      cache,
		cacheTTL:   cacheTTL,
		marksheets: export.NewMarksheetExporter(schoolName),
		validator:  validate,
		logger:     logger,
	}
}

// Submit publishes a result. One result per roll number: a second upload
// for the same roll is rejected, never merged or overwritten.
func (s *ResultService) Submit(ctx context.Context, req SubmitResultRequest, actorID string, meta models.RequestMeta) (*models.StudentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result payload")
	}
	if !models.ValidClassName(req.ClassName) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class must be one of: %s", strings.Join(models.ClassNames, ", ")))
	}

	subjects := make(models.SubjectMarks, 0, len(req.Subjects))
	var total int64
	for _, sub := range req.Subjects {
		subjects = append(subjects, models.SubjectMark{Subject: strings.TrimSpace(sub.Subject), Marks: sub.Marks})
		total += sub.Marks
	}

	result := &models.StudentResult{
		RollNumber:  req.RollNumber,
		StudentName: req.StudentName,
		ClassName:   req.ClassName,
		Subjects:    subjects,
		TotalMarks:  total,
		Percentage:  total / int64(len(subjects)),
	}

	if err := s.repo.Create(ctx, result); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a result for this roll number already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store result")
	}

	payload, _ := json.Marshal(map[string]interface{}{"roll_number": req.RollNumber, "class_name": req.ClassName})
	s.writeAudit(ctx, actorID, models.AuditActionResultUpload, fmt.Sprintf("%d", req.RollNumber), payload, meta)
	s.invalidate(ctx, req.RollNumber)

	return result, nil
}

// Lookup returns the result for a roll number, consulting the cache
// first. A missing roll is a plain not-found, indistinguishable from a
// roll that never existed.
func (s *ResultService) Lookup(ctx context.Context, rollNumber int64) (*models.StudentResult, error) {
	if rollNumber <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roll number must be a positive number")
	}

	cacheKey := fmt.Sprintf(resultCacheKeyFormat, rollNumber)
	if s.cache != nil && s.cache.Enabled() {
		var cached models.StudentResult
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	result, err := s.repo.FindByRollNumber(ctx, rollNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no result found for this roll number")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}

	if s.cache != nil && s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache result", zap.Int64("roll_number", rollNumber), zap.Error(err))
		}
	}

	return result, nil
}

// List returns results for the admin panel, filtered by class or subject
// and sorted by upload time or percentage.
func (s *ResultService) List(ctx context.Context, filter models.ResultFilter) ([]models.StudentResult, error) {
	if filter.Sort != "" && filter.Sort != models.ResultSortTimestamp && filter.Sort != models.ResultSortPercentage {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sort must be timestamp or percentage")
	}
	results, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}
	return results, nil
}

// Delete removes a published result and drops its cache entry.
func (s *ResultService) Delete(ctx context.Context, rollNumber int64, actorID string, meta models.RequestMeta) error {
	rows, err := s.repo.Delete(ctx, rollNumber)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete result")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "no result found for this roll number")
	}

	payload, _ := json.Marshal(map[string]interface{}{"roll_number": rollNumber})
	s.writeAudit(ctx, actorID, models.AuditActionResultDelete, fmt.Sprintf("%d", rollNumber), payload, meta)
	s.invalidate(ctx, rollNumber)

	return nil
}

// Marksheet renders the student's result as a printable PDF.
func (s *ResultService) Marksheet(ctx context.Context, rollNumber int64) ([]byte, error) {
	result, err := s.Lookup(ctx, rollNumber)
	if err != nil {
		return nil, err
	}

	sheet := export.Marksheet{
		RollNumber:  result.RollNumber,
		StudentName: result.StudentName,
		ClassName:   result.ClassName,
		TotalMarks:  result.TotalMarks,
		Percentage:  result.Percentage,
	}
	for _, sub := range result.Subjects {
		sheet.Subjects = append(sheet.Subjects, export.MarksheetSubject{Subject: sub.Subject, Marks: sub.Marks})
	}

	data, err := s.marksheets.Render(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render marksheet")
	}
	return data, nil
}

func (s *ResultService) writeAudit(ctx context.Context, actorID, action, resourceID string, payload []byte, meta models.RequestMeta) {
	if s.audits == nil {
		return
	}
	if err := s.audits.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "results",
		ResourceID: &resourceID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record result audit log", zap.Error(err))
	}
}

func (s *ResultService) invalidate(ctx context.Context, rollNumber int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf(resultCacheKeyFormat, rollNumber))
	_ = s.cache.Invalidate(ctx, dashboardStatsCacheKey)
}
