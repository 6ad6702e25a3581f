package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"employee-review/internal/domain"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback domain.Feedback) (domain.Feedback, error)
	FindDuplicate(ctx context.Context, employeeID, reviewerID int64, text string) (domain.Feedback, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Feedback, error)
	ListAll(ctx context.Context) ([]domain.Feedback, error)
}

type PgFeedbackRepository struct {
	pool *pgxpool.Pool
}

func NewPgFeedbackRepository(pool *pgxpool.Pool) *PgFeedbackRepository {
	return &PgFeedbackRepository{pool: pool}
}

// Create inserta la reseña con el peso ya calculado y devuelve la fila con id y fecha.
func (r *PgFeedbackRepository) Create(ctx context.Context, fb domain.Feedback) (domain.Feedback, error) {
	const query = `
		INSERT INTO feedback (text, employee_id, reviewer_id, is_self_review, weight, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := r.pool.QueryRow(ctx, query,
		fb.Text,
		fb.EmployeeID,
		fb.ReviewerID,
		fb.IsSelfReview,
		fb.Weight,
		fb.CreatedAt,
	).Scan(&fb.ID); err != nil {
		return domain.Feedback{}, err
	}
	return fb, nil
}

// FindDuplicate busca una reseña idéntica del mismo autor; pgx.ErrNoRows si no hay.
func (r *PgFeedbackRepository) FindDuplicate(ctx context.Context, employeeID, reviewerID int64, text string) (domain.Feedback, error) {
	const query = `
		SELECT id, text, employee_id, reviewer_id, is_self_review, weight, created_at
		FROM feedback
		WHERE employee_id = $1 AND reviewer_id = $2 AND text = $3
		ORDER BY id
		LIMIT 1
	`
	var fb domain.Feedback
	err := r.pool.QueryRow(ctx, query, employeeID, reviewerID, text).Scan(
		&fb.ID,
		&fb.Text,
		&fb.EmployeeID,
		&fb.ReviewerID,
		&fb.IsSelfReview,
		&fb.Weight,
		&fb.CreatedAt,
	)
	if err != nil {
		return domain.Feedback{}, err
	}
	return fb, nil
}

func (r *PgFeedbackRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Feedback, error) {
	const query = `
		SELECT id, text, employee_id, reviewer_id, is_self_review, weight, created_at
		FROM feedback
		WHERE employee_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFeedback(rows)
}

func (r *PgFeedbackRepository) ListAll(ctx context.Context) ([]domain.Feedback, error) {
	const query = `
		SELECT id, text, employee_id, reviewer_id, is_self_review, weight, created_at
		FROM feedback
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFeedback(rows)
}

func scanFeedback(rows pgxRows) ([]domain.Feedback, error) {
	var out []domain.Feedback
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(
			&fb.ID,
			&fb.Text,
			&fb.EmployeeID,
			&fb.ReviewerID,
			&fb.IsSelfReview,
			&fb.Weight,
			&fb.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
