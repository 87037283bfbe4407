package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bssic/school-portal-api/internal/models"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
)

type adminUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type collectionWiper interface {
	DeleteAll(ctx context.Context) error
}

// SystemResetTargets lists the collections wiped by a system reset.
type SystemResetTargets struct {
	Applications collectionWiper
	Results      collectionWiper
	Contacts     collectionWiper
}

// AddAdminRequest grants admin access to a new account.
type AddAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// AdminService manages the admin roster and the system reset operation.
type AdminService struct {
	users     adminUserRepository
	reset     SystemResetTargets
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminService creates an instance of AdminService.
func NewAdminService(users adminUserRepository, reset SystemResetTargets, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdminService{users: users, reset: reset, cache: cache, validator: validate, logger: logger}
}

// List returns all active admin accounts, oldest first.
func (s *AdminService) List(ctx context.Context) ([]models.User, error) {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}
	return admins, nil
}

// Add creates a new ADMIN account. The email is validated before any
// lookup so a malformed address never reaches the database.
func (s *AdminService) Add(ctx context.Context, req AddAdminRequest, actorID string, meta models.RequestMeta) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an account with this email already exists")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         models.RoleAdmin,
		Active:       true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}

	payload, _ := json.Marshal(map[string]interface{}{"email": email, "role": user.Role})
	s.writeAudit(ctx, actorID, models.AuditActionAdminAdd, user.ID, payload, meta)

	return user, nil
}

// Remove revokes an admin account. Only the SUPERADMIN may remove
// admins, admins cannot remove themselves, and the SUPERADMIN account
// cannot be removed by anyone.
func (s *AdminService) Remove(ctx context.Context, id string, actorID string, actorRole models.UserRole, meta models.RequestMeta) error {
	if id == actorID {
		return appErrors.ErrSelfRemoval
	}
	if actorRole != models.RoleSuperAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only the super admin can remove admins")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}

	if user.Role == models.RoleSuperAdmin {
		return appErrors.ErrSuperAdminImmutable
	}
	if !user.Active {
		return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
	}

	if err := s.users.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove admin")
	}
	if err := s.users.RevokeUserRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke refresh tokens of removed admin", zap.String("user_id", id), zap.Error(err))
	}

	payload, _ := json.Marshal(map[string]interface{}{"email": user.Email})
	s.writeAudit(ctx, actorID, models.AuditActionAdminRemove, id, payload, meta)

	return nil
}

// ResetSystem wipes all applications, results and contact submissions.
// Admin accounts survive the reset.
func (s *AdminService) ResetSystem(ctx context.Context, actorID string, meta models.RequestMeta) error {
	if err := s.reset.Applications.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset applications")
	}
	if err := s.reset.Results.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset results")
	}
	if err := s.reset.Contacts.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset contact submissions")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "result:*")
		_ = s.cache.Invalidate(ctx, dashboardStatsCacheKey)
	}

	s.writeAudit(ctx, actorID, models.AuditActionSystemReset, "system", []byte(`{"scope":"all"}`), meta)

	return nil
}

func (s *AdminService) writeAudit(ctx context.Context, actorID, action, resourceID string, payload []byte, meta models.RequestMeta) {
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "admins",
		ResourceID: &resourceID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record admin audit log", zap.Error(err))
	}
}
