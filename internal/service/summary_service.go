package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"employee-review/internal/domain"
	"employee-review/internal/llm"
	"employee-review/internal/repository"
)

// SummaryService ejecuta el pipeline lotes -> consolidación -> psicotipo y
// persiste el resultado de una sola vez.
type SummaryService struct {
	llmClient       llm.LLMClient
	employees       repository.EmployeeRepository
	aspects         repository.AspectRepository
	feedback        repository.FeedbackRepository
	summaries       repository.SummaryRepository
	locker          RunLocker
	maxPromptLength int
	logger          *zap.Logger
	now             func() time.Time
}

// SummaryResult es lo que devuelve una ejecución exitosa.
type SummaryResult struct {
	RunID        string                     `json:"run_id"`
	EmployeeID   int64                      `json:"employee_id"`
	Consolidated domain.ConsolidatedSummary `json:"summary"`
	Psychotype   domain.Psychotype          `json:"psychotype"`
	Batches      int                        `json:"batches"`
}

func NewSummaryService(
	llmClient llm.LLMClient,
	employees repository.EmployeeRepository,
	aspects repository.AspectRepository,
	feedback repository.FeedbackRepository,
	summaries repository.SummaryRepository,
	locker RunLocker,
	maxPromptLength int,
	logger *zap.Logger,
) *SummaryService {
	if locker == nil {
		locker = NewLocalRunLocker()
	}
	if maxPromptLength <= 0 {
		maxPromptLength = DefaultMaxPromptLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{
		llmClient:       llmClient,
		employees:       employees,
		aspects:         aspects,
		feedback:        feedback,
		summaries:       summaries,
		locker:          locker,
		maxPromptLength: maxPromptLength,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// summaryRun lleva el estado de una ejecución entre etapas.
type summaryRun struct {
	id         string
	employeeID int64
	stage      Stage
	logger     *zap.Logger
}

func (r *summaryRun) enter(stage Stage) {
	r.stage = stage
	r.logger.Debug("summary stage", zap.String("stage", stage.String()))
}

func (r *summaryRun) fail(err error) error {
	failedAt := r.stage
	r.stage = StageFailed
	r.logger.Error("summary run failed", zap.String("stage", failedAt.String()), zap.Error(err))
	return &PipelineError{Stage: failedAt, EmployeeID: r.employeeID, Err: err}
}

// RunSummary genera y persiste el resumen del empleado. Cualquier error de
// lotes o consolidación aborta sin escribir nada; el psicotipo cae al valor por defecto.
func (s *SummaryService) RunSummary(ctx context.Context, employeeID int64) (SummaryResult, error) {
	run := &summaryRun{
		id:         uuid.NewString(),
		employeeID: employeeID,
	}
	run.logger = s.logger.With(zap.Int64("employee_id", employeeID), zap.String("run_id", run.id))
	run.enter(StageBatching)

	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return SummaryResult{}, run.fail(fmt.Errorf("get employee: %w", err))
	}

	release, err := s.locker.Acquire(ctx, employeeID)
	if err != nil {
		return SummaryResult{}, run.fail(err)
	}
	defer release()

	records, err := s.feedback.ListByEmployee(ctx, employeeID)
	if err != nil {
		return SummaryResult{}, run.fail(fmt.Errorf("list feedback: %w", err))
	}
	if len(records) == 0 {
		return SummaryResult{}, run.fail(ErrNoFeedback)
	}
	aspects, err := s.aspects.List(ctx)
	if err != nil {
		return SummaryResult{}, run.fail(fmt.Errorf("list aspects: %w", err))
	}

	items := make([]domain.WeightedText, 0, len(records))
	for _, fb := range records {
		items = append(items, domain.WeightedText{Text: fb.Text, Weight: fb.Weight})
	}
	prompts := BuildPrompts(aspects, items, s.maxPromptLength)
	run.logger.Info("feedback batched", zap.Int("feedback", len(records)), zap.Int("batches", len(prompts)))

	run.enter(StagePerBatchSummarizing)
	batchSummaries := make([]string, 0, len(prompts))
	for i, prompt := range prompts {
		gen, err := s.llmClient.Generate(ctx, prompt)
		if err != nil {
			return SummaryResult{}, run.fail(fmt.Errorf("batch %d: %w", i+1, err))
		}
		run.logger.Debug("batch summarized", zap.Int("batch", i+1), zap.Stringer("kind", gen.Kind))
		batchSummaries = append(batchSummaries, summaryText(gen))
	}

	run.enter(StageConsolidating)
	gen, err := s.llmClient.Generate(ctx, buildConsolidationPrompt(batchSummaries))
	if err != nil {
		return SummaryResult{}, run.fail(fmt.Errorf("consolidate: %w", err))
	}
	consolidated, err := parseConsolidated(gen)
	if err != nil {
		return SummaryResult{}, run.fail(err)
	}

	run.enter(StagePsychotypeInferring)
	psychotype := s.inferPsychotype(ctx, run, consolidated)

	record := buildSummaryRun(run.id, employeeID, consolidated, psychotype, s.now())
	if err := s.summaries.SaveRun(ctx, record); err != nil {
		return SummaryResult{}, run.fail(fmt.Errorf("save run: %w", err))
	}

	run.enter(StageDone)
	run.logger.Info("summary run completed",
		zap.Int("batches", len(prompts)),
		zap.Int("aspects", len(record.Aspects)),
		zap.String("psychotype", psychotype.Label),
	)
	return SummaryResult{
		RunID:        run.id,
		EmployeeID:   employeeID,
		Consolidated: consolidated,
		Psychotype:   psychotype,
		Batches:      len(prompts),
	}, nil
}

// inferPsychotype nunca falla: ante cualquier error devuelve el psicotipo por defecto.
func (s *SummaryService) inferPsychotype(ctx context.Context, run *summaryRun, consolidated domain.ConsolidatedSummary) domain.Psychotype {
	fallback := domain.DefaultPsychotype(run.employeeID)

	payload, err := json.Marshal(consolidated)
	if err != nil {
		run.logger.Warn("psychotype prompt encoding failed", zap.Error(err))
		return fallback
	}
	gen, err := s.llmClient.Generate(ctx, buildPsychotypePrompt(string(payload)))
	if err != nil {
		run.logger.Warn("psychotype inference failed", zap.Error(fmt.Errorf("%w: %v", ErrPsychotypeParse, err)))
		return fallback
	}
	label, description, err := parsePsychotype(gen)
	if err != nil {
		run.logger.Warn("psychotype inference failed", zap.Error(err))
		return fallback
	}
	return domain.Psychotype{
		EmployeeID:  run.employeeID,
		Label:       label,
		Description: description,
	}
}

func buildSummaryRun(runID string, employeeID int64, consolidated domain.ConsolidatedSummary, psychotype domain.Psychotype, now time.Time) domain.SummaryRun {
	record := domain.SummaryRun{
		RunID:      runID,
		EmployeeID: employeeID,
		Psychotype: psychotype,
		General: domain.GeneralSummary{
			EmployeeID: employeeID,
			RunID:      runID,
			CreatedAt:  now,
		},
	}
	for _, a := range consolidated.Aspects {
		var score float64
		if a.Score != nil {
			score = *a.Score
		}
		record.Aspects = append(record.Aspects, domain.AspectSummary{
			EmployeeID: employeeID,
			RunID:      runID,
			AspectName: a.Name,
			Text:       a.Description,
			Score:      score,
			CreatedAt:  now,
		})
	}
	if c := consolidated.Conclusion; c != nil {
		record.General.Text = c.Description
		record.General.Score = c.Score
	}
	return record
}

// StageOf devuelve la etapa en la que falló la ejecución, si err viene del pipeline.
func StageOf(err error) (Stage, bool) {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Stage, true
	}
	return StageFailed, false
}
