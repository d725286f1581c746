package app

import (
	"math"

	"examifyr-gateway/internal/domain"
)

// CalculateScore counts questions whose answer matches answer_index.
// Unanswered questions count as incorrect. Percentage is rounded and is 0 for
// an empty quiz.
func CalculateScore(quiz domain.Quiz, answers domain.AnswerMap) domain.Score {
	total := len(quiz.Questions)
	correct := 0
	for _, question := range quiz.Questions {
		if choice, ok := answers[question.ID.String()]; ok && choice == question.AnswerIndex {
			correct++
		}
	}
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(correct) / float64(total) * 100))
	}
	return domain.Score{Correct: correct, Total: total, Percentage: percentage}
}
