package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFeedback indica que el empleado no tiene reseñas al momento de la ejecución.
	ErrNoFeedback = errors.New("no feedback for employee")
	// ErrConsolidationParse es fatal: la respuesta consolidada no es un objeto JSON utilizable.
	ErrConsolidationParse = errors.New("consolidated summary is not valid json")
	// ErrPsychotypeParse nunca aborta la ejecución; se reemplaza por el psicotipo por defecto.
	ErrPsychotypeParse = errors.New("psychotype response is not valid json")
	// ErrRunInProgress indica que otra ejecución ya tiene el lock del empleado.
	ErrRunInProgress = errors.New("summary run already in progress")
	// ErrInvalidFeedback agrupa errores de validación en la carga de reseñas.
	ErrInvalidFeedback = errors.New("invalid feedback")
)

// Stage es la etapa del pipeline de resumen.
type Stage int

const (
	StageBatching Stage = iota
	StagePerBatchSummarizing
	StageConsolidating
	StagePsychotypeInferring
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageBatching:
		return "batching"
	case StagePerBatchSummarizing:
		return "per_batch_summarizing"
	case StageConsolidating:
		return "consolidating"
	case StagePsychotypeInferring:
		return "psychotype_inferring"
	case StageDone:
		return "done"
	default:
		return "failed"
	}
}

// PipelineError envuelve la causa con la etapa en la que se abortó la ejecución.
type PipelineError struct {
	Stage      Stage
	EmployeeID int64
	Err        error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("summary for employee %d failed at %s: %v", e.EmployeeID, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
