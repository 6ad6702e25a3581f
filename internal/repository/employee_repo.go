package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"employee-review/internal/domain"
)

type EmployeeRepository interface {
	EnsureExists(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (domain.Employee, error)
	ListWithFeedbackCount(ctx context.Context) ([]domain.EmployeeFeedbackCount, error)
	UpdatePsychotype(ctx context.Context, psychotype domain.Psychotype) error
}

type ReviewerRepository interface {
	EnsureExists(ctx context.Context, id int64) error
}

type PgEmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewPgEmployeeRepository(pool *pgxpool.Pool) *PgEmployeeRepository {
	return &PgEmployeeRepository{pool: pool}
}

// EnsureExists crea el empleado si no existe. Es idempotente.
func (r *PgEmployeeRepository) EnsureExists(ctx context.Context, id int64) error {
	const query = `
		INSERT INTO employees (id, created_at)
		VALUES ($1, now())
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgEmployeeRepository) GetByID(ctx context.Context, id int64) (domain.Employee, error) {
	const query = `
		SELECT id, psychotype, psychotype_description, created_at
		FROM employees
		WHERE id = $1
	`
	var e domain.Employee
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.Psychotype,
		&e.PsychotypeDescription,
		&e.CreatedAt,
	)
	if err != nil {
		return domain.Employee{}, err
	}
	return e, nil
}

func (r *PgEmployeeRepository) ListWithFeedbackCount(ctx context.Context) ([]domain.EmployeeFeedbackCount, error) {
	const query = `
		SELECT e.id, e.psychotype, e.psychotype_description, e.created_at, COUNT(f.id)
		FROM employees e
		LEFT JOIN feedback f ON f.employee_id = e.id
		GROUP BY e.id
		ORDER BY e.id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EmployeeFeedbackCount
	for rows.Next() {
		var item domain.EmployeeFeedbackCount
		if err := rows.Scan(
			&item.ID,
			&item.Psychotype,
			&item.PsychotypeDescription,
			&item.CreatedAt,
			&item.FeedbackCount,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePsychotype sobrescribe el valor actual; devuelve pgx.ErrNoRows si el empleado no existe.
func (r *PgEmployeeRepository) UpdatePsychotype(ctx context.Context, p domain.Psychotype) error {
	tag, err := r.pool.Exec(ctx, updatePsychotypeQuery, p.EmployeeID, p.Label, p.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const updatePsychotypeQuery = `
	UPDATE employees
	SET psychotype = $2, psychotype_description = $3
	WHERE id = $1
`

type PgReviewerRepository struct {
	pool *pgxpool.Pool
}

func NewPgReviewerRepository(pool *pgxpool.Pool) *PgReviewerRepository {
	return &PgReviewerRepository{pool: pool}
}

func (r *PgReviewerRepository) EnsureExists(ctx context.Context, id int64) error {
	const query = `
		INSERT INTO reviewers (id, created_at)
		VALUES ($1, now())
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
