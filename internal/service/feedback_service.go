package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"employee-review/internal/domain"
	"employee-review/internal/repository"
)

// OptionalID es un id numérico que puede faltar en el payload. Acepta número,
// string numérico, "" o null.
type OptionalID struct {
	Value int64
	Valid bool
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*o = OptionalID{}
		return nil
	}
	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*o = OptionalID{}
			return nil
		}
	} else {
		raw = string(data)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: id %q is not an integer", ErrInvalidFeedback, raw)
	}
	*o = OptionalID{Value: v, Valid: true}
	return nil
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(o.Value, 10)), nil
}

// FeedbackInput es una entrada del alta masiva de reseñas.
type FeedbackInput struct {
	ReviewerID OptionalID `json:"ID_reviewer"`
	EmployeeID OptionalID `json:"ID_under_review"`
	Review     string     `json:"review"`
}

// WeightCalculator calcula el peso de una reseña nueva frente a las ya guardadas.
type WeightCalculator interface {
	ComputeWeight(record domain.Feedback, peers []domain.Feedback) (float64, error)
}

// FeedbackService registra reseñas calculando su peso una sola vez, al crearlas.
type FeedbackService struct {
	employees repository.EmployeeRepository
	reviewers repository.ReviewerRepository
	feedback  repository.FeedbackRepository
	weights   WeightCalculator
	logger    *zap.Logger
	now       func() time.Time
}

func NewFeedbackService(
	employees repository.EmployeeRepository,
	reviewers repository.ReviewerRepository,
	feedback repository.FeedbackRepository,
	weights WeightCalculator,
	logger *zap.Logger,
) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{
		employees: employees,
		reviewers: reviewers,
		feedback:  feedback,
		weights:   weights,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateBatch descarta en silencio las entradas sin ids, valida todas las demás
// antes de escribir y luego las procesa en orden. Una reseña repetida (mismo texto,
// empleado y autor) devuelve el registro existente.
func (s *FeedbackService) CreateBatch(ctx context.Context, inputs []FeedbackInput) ([]domain.Feedback, error) {
	pending := make([]FeedbackInput, 0, len(inputs))
	for i, in := range inputs {
		if !in.ReviewerID.Valid || !in.EmployeeID.Valid {
			s.logger.Debug("feedback without ids skipped", zap.Int("index", i))
			continue
		}
		in.Review = strings.TrimSpace(in.Review)
		if in.Review == "" {
			return nil, fmt.Errorf("%w: entry %d has an empty review", ErrInvalidFeedback, i)
		}
		pending = append(pending, in)
	}

	created := make([]domain.Feedback, 0, len(pending))
	for _, in := range pending {
		fb, err := s.create(ctx, in)
		if err != nil {
			return created, err
		}
		created = append(created, fb)
	}
	return created, nil
}

func (s *FeedbackService) create(ctx context.Context, in FeedbackInput) (domain.Feedback, error) {
	employeeID, reviewerID := in.EmployeeID.Value, in.ReviewerID.Value

	if err := s.employees.EnsureExists(ctx, employeeID); err != nil {
		return domain.Feedback{}, fmt.Errorf("ensure employee: %w", err)
	}
	if err := s.reviewers.EnsureExists(ctx, reviewerID); err != nil {
		return domain.Feedback{}, fmt.Errorf("ensure reviewer: %w", err)
	}

	existing, err := s.feedback.FindDuplicate(ctx, employeeID, reviewerID, in.Review)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Feedback{}, fmt.Errorf("find duplicate: %w", err)
	}

	peers, err := s.feedback.ListByEmployee(ctx, employeeID)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("list peers: %w", err)
	}

	record := domain.Feedback{
		Text:         in.Review,
		EmployeeID:   employeeID,
		ReviewerID:   reviewerID,
		IsSelfReview: employeeID == reviewerID,
		CreatedAt:    s.now(),
	}
	weight, err := s.weights.ComputeWeight(record, peers)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("compute weight: %w", err)
	}
	record.Weight = weight

	saved, err := s.feedback.Create(ctx, record)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("create feedback: %w", err)
	}
	s.logger.Info("feedback created",
		zap.Int64("employee_id", employeeID),
		zap.Int64("reviewer_id", reviewerID),
		zap.Float64("weight", weight),
	)
	return saved, nil
}

// ListByEmployee exige que el empleado exista (pgx.ErrNoRows si no).
func (s *FeedbackService) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Feedback, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.feedback.ListByEmployee(ctx, employeeID)
}

func (s *FeedbackService) ListAll(ctx context.Context) ([]domain.Feedback, error) {
	return s.feedback.ListAll(ctx)
}
