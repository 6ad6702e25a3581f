package domain

import "time"

// Feedback es una reseña libre sobre un empleado. Weight se calcula una sola vez
// al crearla y no se recalcula cuando llegan reseñas nuevas.
type Feedback struct {
	ID           int64     `json:"id"`
	Text         string    `json:"review"`
	EmployeeID   int64     `json:"ID_under_review"`
	ReviewerID   int64     `json:"ID_reviewer"`
	IsSelfReview bool      `json:"is_self_review"`
	Weight       float64   `json:"weight"`
	CreatedAt    time.Time `json:"created_at"`
}

// Aspect es una dimensión de evaluación global (no depende del empleado).
type Aspect struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// WeightedText es la vista mínima de una reseña que necesita el armado de prompts.
type WeightedText struct {
	Text   string
	Weight float64
}
