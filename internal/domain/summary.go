package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// ConclusionKey es la clave reservada del resumen consolidado para el veredicto general.
const ConclusionKey = "Вывод"

// AspectSummary es una fila append-only producida por la consolidación.
type AspectSummary struct {
	ID         int64     `json:"-"`
	EmployeeID int64     `json:"-"`
	RunID      string    `json:"-"`
	AspectName string    `json:"aspect_name"`
	Text       string    `json:"text"`
	Score      float64   `json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

// GeneralSummary es el veredicto general de una ejecución; el puntaje puede faltar.
type GeneralSummary struct {
	ID         int64     `json:"-"`
	EmployeeID int64     `json:"-"`
	RunID      string    `json:"-"`
	Text       string    `json:"text"`
	Score      *float64  `json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

// AspectScore es una entrada del mapa consolidado devuelto por el LLM.
type AspectScore struct {
	Name        string   `json:"-"`
	Score       *float64 `json:"score"`
	Description string   `json:"description"`
}

// ConsolidatedSummary conserva el orden de aspectos de la respuesta del modelo.
type ConsolidatedSummary struct {
	Aspects    []AspectScore
	Conclusion *AspectScore
}

// MarshalJSON emite un objeto con los aspectos en orden y el veredicto al final.
func (s ConsolidatedSummary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	entries := s.Aspects
	if s.Conclusion != nil {
		conclusion := *s.Conclusion
		conclusion.Name = ConclusionKey
		entries = append(entries[:len(entries):len(entries)], conclusion)
	}
	for i, entry := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SummaryRun agrupa todo lo que una ejecución exitosa persiste de una vez.
type SummaryRun struct {
	RunID      string
	EmployeeID int64
	Aspects    []AspectSummary
	General    GeneralSummary
	Psychotype Psychotype
}
