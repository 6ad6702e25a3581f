package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"employee-review/internal/domain"
	"employee-review/internal/llm"
)

// parseConsolidated interpreta el mapa aspecto -> {score, description}. No hay
// fallback: si la respuesta no es un objeto JSON con al menos una entrada válida,
// devuelve ErrConsolidationParse.
func parseConsolidated(gen llm.Generation) (domain.ConsolidatedSummary, error) {
	obj, ok := jsonObjectFromGeneration(gen)
	if !ok {
		return domain.ConsolidatedSummary{}, fmt.Errorf("%w: %s", ErrConsolidationParse, truncateForError(gen.String()))
	}

	summary, err := parseScoreMap(obj)
	if err != nil {
		return domain.ConsolidatedSummary{}, fmt.Errorf("%w: %v", ErrConsolidationParse, err)
	}
	if len(summary.Aspects) == 0 && summary.Conclusion == nil {
		return domain.ConsolidatedSummary{}, fmt.Errorf("%w: no aspect entries", ErrConsolidationParse)
	}
	return summary, nil
}

// parseScoreMap recorre el objeto conservando el orden de las claves. Las entradas
// que no son objetos se ignoran.
func parseScoreMap(obj []byte) (domain.ConsolidatedSummary, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return domain.ConsolidatedSummary{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return domain.ConsolidatedSummary{}, fmt.Errorf("expected object, got %v", tok)
	}

	var summary domain.ConsolidatedSummary
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return domain.ConsolidatedSummary{}, err
		}
		name, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return domain.ConsolidatedSummary{}, err
		}
		entry, ok := parseAspectEntry(value)
		if !ok {
			continue
		}
		entry.Name = strings.TrimSpace(name)
		if entry.Name == domain.ConclusionKey {
			conclusion := entry
			summary.Conclusion = &conclusion
			continue
		}
		summary.Aspects = append(summary.Aspects, entry)
	}
	return summary, nil
}

func parseAspectEntry(value json.RawMessage) (domain.AspectScore, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value, &fields); err != nil || fields == nil {
		return domain.AspectScore{}, false
	}
	return domain.AspectScore{
		Score:       parseScore(fields["score"]),
		Description: rawToText(fields["description"]),
	}, true
}

// parseScore acepta números y strings numéricos ("4,5" incluido); el resto es nil.
func parseScore(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if f, err := num.Float64(); err == nil {
			return &f
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
	}
	return nil
}

func rawToText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if text, err := compactJSONText(raw); err == nil {
		return text
	}
	return string(raw)
}

// parsePsychotype exige ambas claves como strings; cualquier otra forma es ErrPsychotypeParse.
func parsePsychotype(gen llm.Generation) (label, description string, err error) {
	obj, ok := jsonObjectFromGeneration(gen)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrPsychotypeParse, truncateForError(gen.String()))
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(obj, &payload); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrPsychotypeParse, err)
	}
	rawLabel, okLabel := payload["psychotype"]
	rawDesc, okDesc := payload["psychotype_description"]
	if !okLabel || !okDesc {
		return "", "", fmt.Errorf("%w: missing psychotype keys", ErrPsychotypeParse)
	}
	if err := json.Unmarshal(rawLabel, &label); err != nil {
		return "", "", fmt.Errorf("%w: psychotype: %v", ErrPsychotypeParse, err)
	}
	if err := json.Unmarshal(rawDesc, &description); err != nil {
		return "", "", fmt.Errorf("%w: psychotype_description: %v", ErrPsychotypeParse, err)
	}
	return strings.TrimSpace(label), strings.TrimSpace(description), nil
}

func truncateForError(s string) string {
	const limit = 200
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
