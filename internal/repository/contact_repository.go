package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bssic/school-portal-api/internal/models"
)

// ContactRepository provides database access for contact form submissions.
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository creates a new instance of ContactRepository.
func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts a new contact submission.
func (r *ContactRepository) Create(ctx context.Context, submission *models.ContactSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO contact_submissions (id, name, email, phone, message, created_at) VALUES (:id, :name, :email, :phone, :message, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create contact submission: %w", err)
	}
	return nil
}

// List returns all submissions, newest first.
func (r *ContactRepository) List(ctx context.Context) ([]models.ContactSubmission, error) {
	const query = `SELECT id, name, email, phone, message, created_at FROM contact_submissions ORDER BY created_at DESC`
	submissions := []models.ContactSubmission{}
	if err := r.db.SelectContext(ctx, &submissions, query); err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	return submissions, nil
}

// Count returns the total number of submissions.
func (r *ContactRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM contact_submissions`); err != nil {
		return 0, fmt.Errorf("count contact submissions: %w", err)
	}
	return total, nil
}

// DeleteAll wipes the submissions table (system reset).
func (r *ContactRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contact_submissions`); err != nil {
		return fmt.Errorf("delete all contact submissions: %w", err)
	}
	return nil
}
