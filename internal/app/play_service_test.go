package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"examifyr-gateway/internal/app"
	"examifyr-gateway/internal/domain"
	"examifyr-gateway/internal/infra/memory"
)

func TestPlayAnswerAndSubmit(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	session, err := service.Start(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if session.ID() == "" {
		t.Fatal("expected session id")
	}

	progress, err := service.Answer(ctx, session.ID(), "1", 1)
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if progress.Answered != 1 || progress.Total != 2 {
		t.Fatalf("unexpected progress %+v", progress)
	}
	// Changing an answer replaces it.
	if _, err := service.Answer(ctx, session.ID(), "1", 0); err != nil {
		t.Fatalf("re-answer failed: %v", err)
	}

	result, err := service.Submit(ctx, session.ID())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	want := domain.Score{Correct: 1, Total: 2, Percentage: 50}
	if result.Score != want {
		t.Fatalf("score = %+v, want %+v", result.Score, want)
	}
	if len(result.Review) != 2 {
		t.Fatalf("expected 2 review items, got %d", len(result.Review))
	}
	if result.Review[0].Selected == nil || *result.Review[0].Selected != 0 || !result.Review[0].Correct {
		t.Fatalf("unexpected first review item %+v", result.Review[0])
	}
	if result.Review[1].Selected != nil || result.Review[1].Correct {
		t.Fatalf("unanswered question must be incorrect, got %+v", result.Review[1])
	}
	if result.Review[0].Explanation == nil || *result.Review[0].Explanation != "first letter" {
		t.Fatalf("expected explanation on review, got %+v", result.Review[0].Explanation)
	}
}

func TestPlayRejectsAnswersAfterSubmitUntilReset(t *testing.T) {
	ctx := context.Background()
	service := newTestService()
	session, _ := service.Start(ctx, "quiz-1")

	if _, err := service.Submit(ctx, session.ID()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := service.Answer(ctx, session.ID(), "1", 0); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	progress, err := service.Reset(ctx, session.ID())
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if progress.Answered != 0 {
		t.Fatalf("expected cleared answers, got %+v", progress)
	}
	if _, err := service.Answer(ctx, session.ID(), "1", 0); err != nil {
		t.Fatalf("answer after reset failed: %v", err)
	}
}

func TestPlayValidatesAnswers(t *testing.T) {
	ctx := context.Background()
	service := newTestService()
	session, _ := service.Start(ctx, "quiz-1")

	if _, err := service.Answer(ctx, session.ID(), "nope", 0); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if _, err := service.Answer(ctx, session.ID(), "1", 2); !errors.Is(err, domain.ErrChoiceOutOfRange) {
		t.Fatalf("expected ErrChoiceOutOfRange, got %v", err)
	}
	if _, err := service.Answer(ctx, session.ID(), "1", -1); !errors.Is(err, domain.ErrChoiceOutOfRange) {
		t.Fatalf("expected ErrChoiceOutOfRange, got %v", err)
	}
}

func TestPlaySessionLifecycle(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	if _, err := service.Start(ctx, "quiz-unknown"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if _, err := service.Start(ctx, "broken"); !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("expected ErrInvalidQuiz, got %v", err)
	}

	session, _ := service.Start(ctx, "quiz-1")
	service.End(ctx, session.ID())
	if _, err := service.Submit(ctx, session.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after end, got %v", err)
	}
}

func newTestService() *app.PlayService {
	explanation := "first letter"
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {
			QuizID:     "quiz-1",
			Topic:      "alphabet",
			Difficulty: domain.DifficultyEasy,
			Questions: []domain.Question{
				{ID: domain.IntID(1), Question: "First letter?", Choices: []string{"a", "b"}, AnswerIndex: 0, Explanation: &explanation},
				{ID: domain.IntID(2), Question: "Last letter?", Choices: []string{"y", "z"}, AnswerIndex: 1},
			},
		},
		"broken": {
			QuizID:     "broken",
			Topic:      "bad",
			Difficulty: domain.DifficultyHard,
			Questions: []domain.Question{
				{ID: domain.IntID(1), Question: "?", Choices: []string{"a", "b"}, AnswerIndex: 5},
			},
		},
	}), 5*time.Minute)
	return app.NewPlayService(memory.NewSessionStore(), quizRepo)
}
