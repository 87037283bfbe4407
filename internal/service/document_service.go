package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bssic/school-portal-api/internal/models"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
	"github.com/bssic/school-portal-api/pkg/storage"
)

// DocumentConfig bounds what applicants may upload.
type DocumentConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	DownloadBasePath string
}

// DocumentService stores admission documents on disk and mints signed
// download URLs for reviewing admins. Uploaded files are never served
// directly: every download passes signature and expiry checks.
type DocumentService struct {
	store  *storage.LocalStorage
	signer *storage.SignedURLSigner
	cfg    DocumentConfig
	logger *zap.Logger
}

// NewDocumentService creates an instance of DocumentService.
func NewDocumentService(store *storage.LocalStorage, signer *storage.SignedURLSigner, cfg DocumentConfig, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}
	if cfg.DownloadBasePath == "" {
		cfg.DownloadBasePath = "/api/v1/documents/download"
	}
	return &DocumentService{store: store, signer: signer, cfg: cfg, logger: logger}
}

// Upload validates and persists one multipart file, returning the stored
// path that the applicant embeds in their application.
func (s *DocumentService) Upload(ctx context.Context, header *multipart.FileHeader) (*models.DocumentUpload, error) {
	if header == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no file provided")
	}
	if header.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	if header.Size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSizeBytes))
	}

	contentType := header.Header.Get("Content-Type")
	if !s.allowedMIME(contentType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("content type %q is not accepted", contentType))
	}

	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	stored := fmt.Sprintf("applications/%s%s", uuid.NewString(), ext)

	path, err := s.store.SaveStream(stored, io.LimitReader(file, s.cfg.MaxFileSizeBytes))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}

	s.logger.Info("document stored",
		zap.String("path", path),
		zap.Int64("size", header.Size),
		zap.String("content_type", contentType))

	return &models.DocumentUpload{
		Path:        stored,
		Filename:    filepath.Base(header.Filename),
		Size:        header.Size,
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

// SignURLs mints signed download URLs for the stored paths in an
// application's document list. External URLs pass through unsigned.
func (s *DocumentService) SignURLs(paths []string) []models.SignedDocumentURL {
	signed := make([]models.SignedDocumentURL, 0, len(paths))
	for _, p := range paths {
		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			signed = append(signed, models.SignedDocumentURL{Path: p, URL: p})
			continue
		}
		token, expiresAt, err := s.signer.Generate(uuid.NewString(), p)
		if err != nil {
			s.logger.Warn("failed to sign document url", zap.String("path", p), zap.Error(err))
			continue
		}
		signed = append(signed, models.SignedDocumentURL{
			Path:      p,
			URL:       fmt.Sprintf("%s?token=%s", s.cfg.DownloadBasePath, token),
			ExpiresAt: expiresAt,
		})
	}
	return signed
}

// OpenSigned validates a download token and opens the referenced file.
func (s *DocumentService) OpenSigned(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document")
	}
	return file, nil
}

// RemoveStored deletes a locally stored document, ignoring external URLs.
// Failures are logged, not returned: document cleanup is best effort.
func (s *DocumentService) RemoveStored(path string) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return
	}
	if err := s.store.Delete(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to delete stored document", zap.String("path", path), zap.Error(err))
	}
}

func (s *DocumentService) allowedMIME(contentType string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	base := contentType
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimSpace(strings.ToLower(base))
	for _, allowed := range s.cfg.AllowedMIMEs {
		if base == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
