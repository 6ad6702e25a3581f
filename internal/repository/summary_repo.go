package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"employee-review/internal/domain"
)

type SummaryRepository interface {
	SaveRun(ctx context.Context, run domain.SummaryRun) error
	ListAspectSummaries(ctx context.Context, employeeID int64) ([]domain.AspectSummary, error)
	ListGeneralSummaries(ctx context.Context, employeeID int64) ([]domain.GeneralSummary, error)
}

type PgSummaryRepository struct {
	pool *pgxpool.Pool
}

func NewPgSummaryRepository(pool *pgxpool.Pool) *PgSummaryRepository {
	return &PgSummaryRepository{pool: pool}
}

// SaveRun persiste una ejecución completa en una sola transacción: agrega las filas
// de aspectos y el veredicto general, y sobrescribe el psicotipo del empleado.
func (r *PgSummaryRepository) SaveRun(ctx context.Context, run domain.SummaryRun) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertAspect = `
		INSERT INTO aspect_summaries (employee_id, run_id, aspect_name, text, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, a := range run.Aspects {
		if _, err := tx.Exec(ctx, insertAspect,
			run.EmployeeID,
			run.RunID,
			a.AspectName,
			a.Text,
			a.Score,
			a.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert aspect summary %q: %w", a.AspectName, err)
		}
	}

	const insertGeneral = `
		INSERT INTO general_summaries (employee_id, run_id, text, score, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	var score interface{}
	if run.General.Score != nil {
		score = *run.General.Score
	}
	if _, err := tx.Exec(ctx, insertGeneral,
		run.EmployeeID,
		run.RunID,
		run.General.Text,
		score,
		run.General.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert general summary: %w", err)
	}

	tag, err := tx.Exec(ctx, updatePsychotypeQuery, run.EmployeeID, run.Psychotype.Label, run.Psychotype.Description)
	if err != nil {
		return fmt.Errorf("update psychotype: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

func (r *PgSummaryRepository) ListAspectSummaries(ctx context.Context, employeeID int64) ([]domain.AspectSummary, error) {
	const query = `
		SELECT id, employee_id, run_id, aspect_name, text, score, created_at
		FROM aspect_summaries
		WHERE employee_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AspectSummary
	for rows.Next() {
		var a domain.AspectSummary
		if err := rows.Scan(
			&a.ID,
			&a.EmployeeID,
			&a.RunID,
			&a.AspectName,
			&a.Text,
			&a.Score,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgSummaryRepository) ListGeneralSummaries(ctx context.Context, employeeID int64) ([]domain.GeneralSummary, error) {
	const query = `
		SELECT id, employee_id, run_id, text, score, created_at
		FROM general_summaries
		WHERE employee_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GeneralSummary
	for rows.Next() {
		var g domain.GeneralSummary
		var score sql.NullFloat64
		if err := rows.Scan(
			&g.ID,
			&g.EmployeeID,
			&g.RunID,
			&g.Text,
			&score,
			&g.CreatedAt,
		); err != nil {
			return nil, err
		}
		if score.Valid {
			val := score.Float64
			g.Score = &val
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
