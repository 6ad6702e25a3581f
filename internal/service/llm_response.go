package service

import (
	"bytes"
	"encoding/json"
	"io"
	"regexp"
	"strconv"
	"strings"

	"employee-review/internal/llm"
)

var (
	fenceStartRe = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEndRe   = regexp.MustCompile("(?is)\\s*```\\s*$")
	// Líneas tipo "**1. Профессионализм**" que el modelo antepone a veces.
	numberedListRe = regexp.MustCompile(`(?m)^\*\*\d+\..*\n`)
)

// cleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanLLMJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStartRe.ReplaceAllString(s, "")
	s = fenceEndRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// jsonObjectFromText busca un objeto JSON dentro de texto libre: primero el texto
// limpio completo y, si no parsea, el primer objeto balanceado.
func jsonObjectFromText(raw string) ([]byte, bool) {
	cleaned := cleanLLMJSONResponse(raw)
	if strings.HasPrefix(cleaned, "{") && json.Valid([]byte(cleaned)) {
		return []byte(cleaned), true
	}
	if obj := extractFirstJSONObject(cleaned); obj != "" && json.Valid([]byte(obj)) {
		return []byte(obj), true
	}
	return nil, false
}

// jsonObjectFromGeneration resuelve la respuesta etiquetada a un objeto JSON.
func jsonObjectFromGeneration(gen llm.Generation) ([]byte, bool) {
	if gen.IsStructured() {
		trimmed := bytes.TrimSpace(gen.JSON)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, false
		}
		return trimmed, true
	}
	return jsonObjectFromText(gen.Text)
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado, ignorando llaves dentro de strings.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString, escaped := false, false
	depth := 0
	for i := start; i < len(input); i++ {
		ch := input[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

// summaryText convierte la respuesta de un lote en texto para la consolidación.
// El JSON se reescribe compacto, con el orden de claves y el texto no ASCII intactos.
func summaryText(gen llm.Generation) string {
	if !gen.IsStructured() {
		return strings.TrimSpace(gen.Text)
	}
	text, err := compactJSONText(gen.JSON)
	if err != nil {
		text = string(gen.JSON)
	}
	return strings.TrimSpace(stripNumberedListArtifacts(text))
}

func stripNumberedListArtifacts(s string) string {
	return numberedListRe.ReplaceAllString(s, "")
}

// compactJSONText reescribe JSON sin espacios y sin escapar \uXXXX ni HTML.
func compactJSONText(raw []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	type frame struct {
		object bool
		n      int
	}
	var (
		out   bytes.Buffer
		stack []frame
	)
	separator := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		switch {
		case top.object && top.n%2 == 1:
			out.WriteByte(':')
		case top.n > 0:
			out.WriteByte(',')
		}
		top.n++
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch v := tok.(type) {
		case json.Delim:
			if v == '{' || v == '[' {
				separator()
				stack = append(stack, frame{object: v == '{'})
			} else {
				stack = stack[:len(stack)-1]
			}
			out.WriteByte(byte(v))
		case string:
			separator()
			s, err := encodeJSONString(v)
			if err != nil {
				return "", err
			}
			out.WriteString(s)
		case json.Number:
			separator()
			out.WriteString(v.String())
		case bool:
			separator()
			out.WriteString(strconv.FormatBool(v))
		case nil:
			separator()
			out.WriteString("null")
		}
	}
	return out.String(), nil
}

func encodeJSONString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
