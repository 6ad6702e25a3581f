package domain

import "time"

// Employee es el sujeto evaluado. El psicotipo es un valor mutable que cada
// ejecución del resumen sobrescribe.
type Employee struct {
	ID                    int64     `json:"employee_id"`
	Psychotype            *string   `json:"psychotype"`
	PsychotypeDescription *string   `json:"psychotype_description"`
	CreatedAt             time.Time `json:"created_at"`
}

// EmployeeFeedbackCount acompaña al empleado con la cantidad de reseñas recibidas.
type EmployeeFeedbackCount struct {
	Employee
	FeedbackCount int `json:"feedback_count"`
}

// Reviewer es el autor de una reseña.
type Reviewer struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Psychotype es la etiqueta inferida a partir del resumen consolidado.
type Psychotype struct {
	EmployeeID  int64  `json:"-"`
	Label       string `json:"psychotype"`
	Description string `json:"psychotype_description"`
}

const (
	DefaultPsychotypeLabel       = "Не определен"
	DefaultPsychotypeDescription = "Нет описания"
)

// DefaultPsychotype devuelve el valor usado cuando la inferencia no produce un JSON válido.
func DefaultPsychotype(employeeID int64) Psychotype {
	return Psychotype{
		EmployeeID:  employeeID,
		Label:       DefaultPsychotypeLabel,
		Description: DefaultPsychotypeDescription,
	}
}
