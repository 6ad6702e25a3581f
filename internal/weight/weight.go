// Package weight calcula el peso de confianza de una reseña en [0,1].
//
// El peso combina tres señales: autoevaluación (peso 0), dispersión de
// longitudes entre las reseñas del mismo empleado y un descuento por carga
// emocional. El cálculo es puro; persistir el resultado es tarea del llamador.
package weight

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/jonreiter/govader"
	"gonum.org/v1/gonum/stat"

	"employee-review/internal/domain"
)

// ErrValidation indica un peso fuera de [0,1] después del recorte.
var ErrValidation = errors.New("feedback weight out of range")

// SentimentAnalyzer devuelve la polaridad de un texto en [-1,1].
type SentimentAnalyzer interface {
	Polarity(text string) float64
}

// Dispersion calcula la desviación estándar de una muestra.
type Dispersion interface {
	StdDev(values []float64) float64
}

// VaderSentiment usa el puntaje compuesto de VADER como polaridad.
type VaderSentiment struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderSentiment() *VaderSentiment {
	return &VaderSentiment{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderSentiment) Polarity(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

// PopulationStdDev es la desviación poblacional (divide por N, no por N-1).
type PopulationStdDev struct{}

func (PopulationStdDev) StdDev(values []float64) float64 {
	return stat.PopStdDev(values, nil)
}

// Engine combina las señales de confianza.
type Engine struct {
	sentiment  SentimentAnalyzer
	dispersion Dispersion
}

// NewEngine construye el motor; las dependencias nil usan VADER y la desviación poblacional.
func NewEngine(sentiment SentimentAnalyzer, dispersion Dispersion) *Engine {
	if sentiment == nil {
		sentiment = NewVaderSentiment()
	}
	if dispersion == nil {
		dispersion = PopulationStdDev{}
	}
	return &Engine{sentiment: sentiment, dispersion: dispersion}
}

// IsSelfReview reporta si el autor de la reseña es el propio empleado.
func IsSelfReview(record domain.Feedback) bool {
	return record.ReviewerID == record.EmployeeID
}

// ComputeWeight devuelve el peso de record dado el conjunto actual de reseñas
// del mismo empleado. La reseña nueva cuenta dentro del conjunto de dispersión.
func (e *Engine) ComputeWeight(record domain.Feedback, peers []domain.Feedback) (float64, error) {
	if IsSelfReview(record) {
		return 0, nil
	}

	w := clamp(e.DispersionScore(record, peers) * e.EmotionalityDiscount(record.Text))
	if math.IsNaN(w) || w < 0 || w > 1 {
		return 0, fmt.Errorf("%w: %v", ErrValidation, w)
	}
	return w, nil
}

// DispersionScore es 1 - stddev/max sobre las longitudes en caracteres.
// Con menos de dos reseñas devuelve 1.
func (e *Engine) DispersionScore(record domain.Feedback, peers []domain.Feedback) float64 {
	lengths := make([]float64, 0, len(peers)+1)
	counted := false
	for _, p := range peers {
		if record.ID != 0 && p.ID == record.ID {
			counted = true
		}
		lengths = append(lengths, float64(utf8.RuneCountInString(p.Text)))
	}
	if !counted {
		lengths = append(lengths, float64(utf8.RuneCountInString(record.Text)))
	}
	if len(lengths) < 2 {
		return 1.0
	}

	maxLen := 0.0
	for _, l := range lengths {
		maxLen = math.Max(maxLen, l)
	}
	if maxLen == 0 {
		return 1.0
	}
	return clamp(1 - e.dispersion.StdDev(lengths)/maxLen)
}

// EmotionalityDiscount es 1 - |polaridad|: lo neutral pesa más.
func (e *Engine) EmotionalityDiscount(text string) float64 {
	polarity := e.sentiment.Polarity(text)
	if math.IsNaN(polarity) {
		return 1
	}
	return 1 - math.Min(math.Abs(polarity), 1)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(0, math.Min(v, 1))
}
