package service

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"employee-review/internal/domain"
)

// DefaultMaxPromptLength es el tope orientativo por lote, en caracteres.
const DefaultMaxPromptLength = 20000

// Batcher reparte reseñas ponderadas en prompts autocontenidos. Cada prompt empieza
// con la instrucción completa; ninguna reseña se parte ni se trunca. El tope es
// orientativo: una reseña que por sí sola lo excede va completa en su propio lote.
type Batcher struct {
	template    string
	templateLen int
	maxLen      int

	buf    strings.Builder
	bufLen int
	items  int
	seq    int
}

// NewBatcher arma el template con la lista de aspectos. maxLen <= 0 usa DefaultMaxPromptLength.
func NewBatcher(aspects []domain.Aspect, maxLen int) *Batcher {
	if maxLen <= 0 {
		maxLen = DefaultMaxPromptLength
	}
	b := &Batcher{
		template: buildBasePrompt(aspects),
		maxLen:   maxLen,
	}
	b.templateLen = utf8.RuneCountInString(b.template)
	b.reset()
	return b
}

// Add agrega la reseña al lote actual. Si no entra, devuelve el lote completo
// anterior (ok=true) y arranca uno nuevo con esta reseña.
func (b *Batcher) Add(item domain.WeightedText) (flushed string, ok bool) {
	b.seq++
	rendered := renderFeedbackItem(b.seq, item)
	n := utf8.RuneCountInString(rendered)

	if b.items > 0 && b.bufLen+n > b.maxLen {
		flushed, ok = b.buf.String(), true
		b.reset()
	}
	b.buf.WriteString(rendered)
	b.bufLen += n
	b.items++
	return flushed, ok
}

// Flush devuelve el último lote parcial, si tiene al menos una reseña.
func (b *Batcher) Flush() (string, bool) {
	if b.items == 0 {
		return "", false
	}
	out := b.buf.String()
	b.reset()
	return out, true
}

// Pending reporta cuántas reseñas esperan en el lote parcial.
func (b *Batcher) Pending() int {
	return b.items
}

func (b *Batcher) reset() {
	b.buf.Reset()
	b.buf.WriteString(b.template)
	b.bufLen = b.templateLen
	b.items = 0
}

// BuildPrompts reparte items en prompts respetando el orden de llegada.
func BuildPrompts(aspects []domain.Aspect, items []domain.WeightedText, maxLen int) []string {
	b := NewBatcher(aspects, maxLen)
	var prompts []string
	for _, item := range items {
		if p, ok := b.Add(item); ok {
			prompts = append(prompts, p)
		}
	}
	if p, ok := b.Flush(); ok {
		prompts = append(prompts, p)
	}
	return prompts
}

func renderFeedbackItem(n int, item domain.WeightedText) string {
	return fmt.Sprintf("Отзыв %d (вес: %s):\n%s\n\n", n, formatWeight(item.Weight), item.Text)
}

// formatWeight imprime el peso siempre con parte decimal: 1.0, 0.5, 0.8372.
func formatWeight(w float64) string {
	s := strconv.FormatFloat(w, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
