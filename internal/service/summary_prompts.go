package service

import (
	"fmt"
	"strings"

	"employee-review/internal/domain"
)

// buildBasePrompt arma la instrucción fija que encabeza cada lote de reseñas.
func buildBasePrompt(aspects []domain.Aspect) string {
	lines := make([]string, 0, len(aspects))
	for i, a := range aspects {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, a.Text))
	}
	aspectList := strings.Join(lines, "\n")

	return "Вот несколько отзывов(и их веса) о сотруднике:\n\n" +
		"На основе этих отзывов и их весов, максимально объективно оцени сотрудника по шкале от 1 до 5 " +
		"(оценка не обязательно должна быть целой)(учитывай веса отзывов: чем меньше вес, тем меньше отзыв " +
		"должен влиять на итоговую оценку аспекта. Если вес нулевой, то этот отзыв вообще не должен учитываться) " +
		"по следующим критериям:\n" +
		aspectList + "\n" +
		"Добавь краткое объяснение к каждому набранному баллу. Не ссылайся на конкретные отзывы в объяснениях. " +
		"Также, основываясь на всей этой информации, сделай краткий вывод по сотруднику.\n" +
		"Верни ответ в формате JSON со следующей структурой (аспект Профессионализм дан для примера, " +
		"анализ должен производиться по каждому аспекту, который указан выше):\n\n" +
		"{\n" +
		`  "Профессионализм": {"score": (оценка данного аспекта), "description": "Краткий вывод по этому аспекту"},` + "\n" +
		`  "` + domain.ConclusionKey + `": {"score": (общая оценка сотрудника), "description": "Вывод по сотруднику"}` + "\n" +
		"}"
}

func buildConsolidationPrompt(summaries []string) string {
	return "Вот сводки по нескольким аспектам сотрудника на основе отзывов о нем:\n\n" +
		strings.Join(summaries, "\n\n") +
		"\n\nВ ответе должен содержаться итоговый вывод и оценка по каждому аспекту, который есть во входящих данных. " +
		"Верни ответ в формате JSON со следующей структурой (аспект Профессионализм дан для примера, " +
		"анализ должен производиться по каждому аспекту, который содержится в сводках выше):\n\n" +
		"{\n" +
		`  "Профессионализм": {"score": (итоговая оценка данного аспекта), "description": "Краткий вывод по этому аспекту"},` + "\n" +
		`  "` + domain.ConclusionKey + `": {"score": (итоговая оценка сотрудника), "description": "Краткий вывод по сотруднику"}` + "\n" +
		"}"
}

func buildPsychotypePrompt(consolidated string) string {
	return "Вот общая сводка по сотруднику на основе отзывов:\n\n" + consolidated + "\n\n" +
		"На основе этой информации определи психотип сотрудника. Верни краткий вывод о психотипе. " +
		"Верни ответ в формате JSON без лишней информации и пояснений:\n" +
		"{\n" +
		`  "psychotype": "психотип сотрудника",` + "\n" +
		`  "psychotype_description": "Краткий вывод по психотипу сотрудника"` + "\n" +
		"}\n"
}
