package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bssic/school-portal-api/internal/models"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
)

type contactRepository interface {
	Create(ctx context.Context, submission *models.ContactSubmission) error
	List(ctx context.Context) ([]models.ContactSubmission, error)
}

// SubmitContactRequest is the public contact form payload.
type SubmitContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// ContactService stores and lists contact form submissions.
type ContactService struct {
	repo      contactRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService creates an instance of ContactService.
func NewContactService(repo contactRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ContactService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Submit stores a contact message and returns its generated id.
func (s *ContactService) Submit(ctx context.Context, req SubmitContactRequest) (*models.ContactSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contact payload")
	}

	submission := &models.ContactSubmission{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}

	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store contact submission")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, dashboardStatsCacheKey)
	}

	return submission, nil
}

// List returns contact submissions newest first.
func (s *ContactService) List(ctx context.Context) ([]models.ContactSubmission, error) {
	submissions, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contact submissions")
	}
	return submissions, nil
}
