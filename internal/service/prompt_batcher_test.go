package service

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employee-review/internal/domain"
)

var testAspects = []domain.Aspect{
	{ID: 1, Text: "Профессионализм"},
	{ID: 2, Text: "Коммуникация"},
}

func textOfRunes(n int) string {
	return strings.Repeat("ж", n)
}

func TestBuildPrompts_OversizedItemGetsOwnBatch(t *testing.T) {
	items := []domain.WeightedText{
		{Text: textOfRunes(100), Weight: 1},
		{Text: textOfRunes(200), Weight: 0.5},
		{Text: textOfRunes(19990), Weight: 0.8},
	}

	prompts := BuildPrompts(testAspects, items, 20000)

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "Отзыв 1 (вес: 1.0):\n"+items[0].Text)
	assert.Contains(t, prompts[0], "Отзыв 2 (вес: 0.5):\n"+items[1].Text)
	assert.NotContains(t, prompts[0], "Отзыв 3")
	assert.Contains(t, prompts[1], "Отзыв 3 (вес: 0.8):\n"+items[2].Text)
	assert.Greater(t, utf8.RuneCountInString(prompts[1]), 20000, "oversized item must not be truncated")
}

func TestBuildPrompts_EveryItemOnceInOrder(t *testing.T) {
	var items []domain.WeightedText
	for i := 0; i < 40; i++ {
		items = append(items, domain.WeightedText{Text: fmt.Sprintf("reseña-%02d %s", i, textOfRunes(150)), Weight: 0.25})
	}
	template := buildBasePrompt(testAspects)
	maxLen := utf8.RuneCountInString(template) + 700

	prompts := BuildPrompts(testAspects, items, maxLen)
	require.Greater(t, len(prompts), 1)

	var joined strings.Builder
	for _, p := range prompts {
		require.True(t, strings.HasPrefix(p, template), "each prompt starts with the instruction")
		assert.LessOrEqual(t, utf8.RuneCountInString(p), maxLen)
		assert.Contains(t, p, "Отзыв ", "no template-only prompt")
		joined.WriteString(strings.TrimPrefix(p, template))
	}

	all := joined.String()
	last := -1
	for i, item := range items {
		assert.Equal(t, 1, strings.Count(all, item.Text), "item %d must appear once", i)
		idx := strings.Index(all, fmt.Sprintf("Отзыв %d (вес: 0.25):\n%s", i+1, item.Text))
		require.GreaterOrEqual(t, idx, 0, "item %d keeps its global number", i)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestBuildPrompts_Empty(t *testing.T) {
	assert.Empty(t, BuildPrompts(testAspects, nil, 20000))
}

func TestBatcher_FirstOversizedItemDoesNotFlushTemplate(t *testing.T) {
	b := NewBatcher(testAspects, 10)

	flushed, ok := b.Add(domain.WeightedText{Text: textOfRunes(50), Weight: 1})
	assert.False(t, ok)
	assert.Empty(t, flushed)
	assert.Equal(t, 1, b.Pending())

	flushed, ok = b.Add(domain.WeightedText{Text: "второй", Weight: 1})
	require.True(t, ok)
	assert.Contains(t, flushed, "Отзыв 1")
	assert.Equal(t, 1, b.Pending())

	last, ok := b.Flush()
	require.True(t, ok)
	assert.Contains(t, last, "Отзыв 2 (вес: 1.0):\nвторой")

	_, ok = b.Flush()
	assert.False(t, ok)
}

func TestBuildBasePrompt_ListsAspects(t *testing.T) {
	p := buildBasePrompt(testAspects)
	assert.Contains(t, p, "1. Профессионализм\n2. Коммуникация\n")
	assert.Contains(t, p, `"Вывод"`)
}

func TestFormatWeight(t *testing.T) {
	cases := map[float64]string{
		1:      "1.0",
		0:      "0.0",
		0.5:    "0.5",
		0.8372: "0.8372",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatWeight(in))
	}
}
