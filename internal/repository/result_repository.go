package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bssic/school-portal-api/internal/models"
)

const resultColumns = "roll_number, student_name, class_name, subjects, total_marks, percentage, created_at"

// ResultRepository provides database access for published student results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new instance of ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create inserts a new result keyed by roll number.
func (r *ResultRepository) Create(ctx context.Context, result *models.StudentResult) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_results (roll_number, student_name, class_name, subjects, total_marks, percentage, created_at) VALUES (:roll_number, :student_name, :class_name, :subjects, :total_marks, :percentage, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

// FindByRollNumber returns a result by roll number.
func (r *ResultRepository) FindByRollNumber(ctx context.Context, rollNumber int64) (*models.StudentResult, error) {
	query := fmt.Sprintf("SELECT %s FROM student_results WHERE roll_number = $1 LIMIT 1", resultColumns)
	var result models.StudentResult
	if err := r.db.GetContext(ctx, &result, query, rollNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find result by roll number: %w", err)
	}
	return &result, nil
}

// List returns results with optional class/subject filters. The default
// order is newest first; sort=percentage orders by percentage descending.
func (r *ResultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.StudentResult, error) {
	query := fmt.Sprintf("SELECT %s FROM student_results WHERE 1=1", resultColumns)
	var conditions []string
	var args []interface{}

	if filter.ClassName != "" {
		conditions = append(conditions, fmt.Sprintf("class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.Subject != "" {
		// subjects is a JSONB array of {subject, marks} objects.
		match, err := json.Marshal([]map[string]string{{"subject": filter.Subject}})
		if err != nil {
			return nil, fmt.Errorf("encode subject filter: %w", err)
		}
		conditions = append(conditions, fmt.Sprintf("subjects @> $%d", len(args)+1))
		args = append(args, string(match))
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	switch filter.Sort {
	case models.ResultSortPercentage:
		query += " ORDER BY percentage DESC"
	default:
		query += " ORDER BY created_at DESC"
	}

	results := []models.StudentResult{}
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// Delete removes a result by roll number.
func (r *ResultRepository) Delete(ctx context.Context, rollNumber int64) (int64, error) {
	const query = `DELETE FROM student_results WHERE roll_number = $1`
	res, err := r.db.ExecContext(ctx, query, rollNumber)
	if err != nil {
		return 0, fmt.Errorf("delete result: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete result rows: %w", err)
	}
	return rows, nil
}

// Count returns the total number of results.
func (r *ResultRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM student_results`); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return total, nil
}

// DeleteAll wipes the results table (system reset).
func (r *ResultRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM student_results`); err != nil {
		return fmt.Errorf("delete all results: %w", err)
	}
	return nil
}
