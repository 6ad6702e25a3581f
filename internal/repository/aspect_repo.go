package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"employee-review/internal/domain"
)

type AspectRepository interface {
	List(ctx context.Context) ([]domain.Aspect, error)
	GetByID(ctx context.Context, id int64) (domain.Aspect, error)
	Create(ctx context.Context, text string) (domain.Aspect, error)
	Update(ctx context.Context, aspect domain.Aspect) error
	Delete(ctx context.Context, id int64) error
}

type PgAspectRepository struct {
	pool *pgxpool.Pool
}

func NewPgAspectRepository(pool *pgxpool.Pool) *PgAspectRepository {
	return &PgAspectRepository{pool: pool}
}

func (r *PgAspectRepository) List(ctx context.Context) ([]domain.Aspect, error) {
	const query = `
		SELECT id, text
		FROM aspects
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aspects []domain.Aspect
	for rows.Next() {
		var a domain.Aspect
		if err := rows.Scan(&a.ID, &a.Text); err != nil {
			return nil, err
		}
		aspects = append(aspects, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return aspects, nil
}

func (r *PgAspectRepository) GetByID(ctx context.Context, id int64) (domain.Aspect, error) {
	const query = `
		SELECT id, text
		FROM aspects
		WHERE id = $1
	`
	var a domain.Aspect
	if err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Text); err != nil {
		return domain.Aspect{}, err
	}
	return a, nil
}

func (r *PgAspectRepository) Create(ctx context.Context, text string) (domain.Aspect, error) {
	const query = `
		INSERT INTO aspects (text)
		VALUES ($1)
		RETURNING id, text
	`
	var a domain.Aspect
	if err := r.pool.QueryRow(ctx, query, text).Scan(&a.ID, &a.Text); err != nil {
		return domain.Aspect{}, err
	}
	return a, nil
}

func (r *PgAspectRepository) Update(ctx context.Context, aspect domain.Aspect) error {
	const query = `
		UPDATE aspects
		SET text = $2
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, aspect.ID, aspect.Text)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAspectRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM aspects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
