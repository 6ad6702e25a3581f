package llm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind distingue las dos formas de respuesta del endpoint.
type Kind int

const (
	KindRaw Kind = iota
	KindStructured
)

func (k Kind) String() string {
	if k == KindStructured {
		return "structured"
	}
	return "raw"
}

// Generation es la respuesta normalizada: JSON válido (Structured) o texto plano (Raw).
// Se resuelve una sola vez en el borde; el resto del código consulta Kind.
type Generation struct {
	Kind Kind
	Text string
	JSON json.RawMessage
}

func Raw(text string) Generation {
	return Generation{Kind: KindRaw, Text: text}
}

func Structured(value json.RawMessage) Generation {
	return Generation{Kind: KindStructured, JSON: value}
}

// IsStructured reporta si el cuerpo era JSON válido.
func (g Generation) IsStructured() bool {
	return g.Kind == KindStructured
}

// String devuelve el contenido tal como llegó, útil para logs.
func (g Generation) String() string {
	if g.IsStructured() {
		return string(g.JSON)
	}
	return g.Text
}

// ErrRequestFailed agrupa fallas de transporte y respuestas no 2xx.
var ErrRequestFailed = errors.New("llm request failed")

// RequestError describe una llamada fallida al endpoint.
type RequestError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("llm request failed: status=%d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("llm request failed: %s: %v", e.Message, e.Err)
	default:
		return "llm request failed: " + e.Message
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }
