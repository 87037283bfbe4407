package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bssic/school-portal-api/internal/models"
)

const applicationColumns = "id, student_name, father_name, mother_name, date_of_birth, mobile, address, email, previous_school, class_name, document_urls, status, created_at, updated_at"

// ApplicationRepository provides database access for admission applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.AdmissionApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now

	const query = `INSERT INTO admission_applications (id, student_name, father_name, mother_name, date_of_birth, mobile, address, email, previous_school, class_name, document_urls, status, created_at, updated_at) VALUES (:id, :student_name, :father_name, :mother_name, :date_of_birth, :mobile, :address, :email, :previous_school, :class_name, :document_urls, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByID returns an application by identifier.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	query := fmt.Sprintf("SELECT %s FROM admission_applications WHERE id = $1 LIMIT 1", applicationColumns)
	var app models.AdmissionApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &app, nil
}

// List returns applications sorted by newest first, optionally filtered
// by status and by a case-insensitive student name search.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.AdmissionApplication, error) {
	query := fmt.Sprintf("SELECT %s FROM admission_applications WHERE 1=1", applicationColumns)
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(student_name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	apps := []models.AdmissionApplication{}
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// UpdateStatusIfPending transitions an application out of pending.
// The WHERE clause doubles as a compare-and-swap so two racing reviewers
// cannot both win; the returned count is 0 when the record was missing
// or no longer pending.
func (r *ApplicationRepository) UpdateStatusIfPending(ctx context.Context, id string, status models.ApplicationStatus) (int64, error) {
	const query = `UPDATE admission_applications SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("update application status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update application status rows: %w", err)
	}
	return rows, nil
}

// UpdateField sets a single whitelisted column. The caller is responsible
// for mapping field names onto columns; column is never user input here.
func (r *ApplicationRepository) UpdateField(ctx context.Context, id, column, value string) (int64, error) {
	query := fmt.Sprintf("UPDATE admission_applications SET %s = $2, updated_at = $3 WHERE id = $1", column)
	res, err := r.db.ExecContext(ctx, query, id, value, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("update application field %s: %w", column, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update application field rows: %w", err)
	}
	return rows, nil
}

// UpdateDocumentURLs replaces the stored document list.
func (r *ApplicationRepository) UpdateDocumentURLs(ctx context.Context, id string, urls []string) (int64, error) {
	const query = `UPDATE admission_applications SET document_urls = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, pq.Array(urls), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("update application documents: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update application documents rows: %w", err)
	}
	return rows, nil
}

// Delete removes an application.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM admission_applications WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete application: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete application rows: %w", err)
	}
	return rows, nil
}

// Count returns the total number of applications.
func (r *ApplicationRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM admission_applications`); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return total, nil
}

// CountByStatus returns the number of applications with the given status.
func (r *ApplicationRepository) CountByStatus(ctx context.Context, status models.ApplicationStatus) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM admission_applications WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("count applications by status: %w", err)
	}
	return total, nil
}

// DeleteAll wipes the applications table (system reset).
func (r *ApplicationRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM admission_applications`); err != nil {
		return fmt.Errorf("delete all applications: %w", err)
	}
	return nil
}
