// Package remote loads quizzes from the upstream quiz backend.
package remote

import (
	"context"
	"fmt"

	"examifyr-gateway/internal/client"
	"examifyr-gateway/internal/domain"
)

// QuizLoader fetches quiz JSON over HTTP.
type QuizLoader struct {
	client *client.Client
}

func NewQuizLoader(c *client.Client) *QuizLoader {
	return &QuizLoader{client: c}
}

// LoadQuiz returns domain.ErrQuizNotFound (wrapping the *client.APIError)
// when the backend answers 404.
func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := l.client.GetQuizByID(ctx, quizID)
	if err != nil {
		if client.IsNotFound(err) {
			return domain.Quiz{}, fmt.Errorf("%w: %w", domain.ErrQuizNotFound, err)
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}
