package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"examifyr-gateway/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository abstracts where play sessions live (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz content (from cache or the upstream service).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// PlayService runs quiz attempts: it owns the answer map of each session
// until the session ends.
type PlayService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	newID    func() string
}

func NewPlayService(store SessionRepository, quizzes QuizRepository) *PlayService {
	return &PlayService{sessions: store, quizzes: quizzes, newID: uuid.NewString}
}

// Progress reports how many questions of a session have an answer.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// ReviewItem explains the outcome of a single question after submission.
type ReviewItem struct {
	QuestionID  domain.QuestionID `json:"questionId"`
	Selected    *int              `json:"selected"`
	AnswerIndex int               `json:"answerIndex"`
	Correct     bool              `json:"correct"`
	Explanation *string           `json:"explanation,omitempty"`
}

// Result is the outcome of a submitted session.
type Result struct {
	Score  domain.Score `json:"score"`
	Review []ReviewItem `json:"review"`
}

// Start loads a quiz and opens a new session for it.
func (s *PlayService) Start(ctx context.Context, quizID string) (*Session, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	session := newSession(s.newID(), quiz, time.Now)
	s.sessions.Save(session)
	return session, nil
}

// Answer records the selected choice for a question, replacing any earlier choice.
func (s *PlayService) Answer(_ context.Context, sessionID, questionID string, choice int) (Progress, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Progress{}, domain.ErrSessionNotFound
	}
	return session.answer(questionID, choice)
}

// Reset clears all answers and reopens a submitted session.
func (s *PlayService) Reset(_ context.Context, sessionID string) (Progress, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Progress{}, domain.ErrSessionNotFound
	}
	return session.reset(), nil
}

// Submit scores the session. Further answers are rejected until Reset.
func (s *PlayService) Submit(_ context.Context, sessionID string) (Result, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Result{}, domain.ErrSessionNotFound
	}
	return session.submit(), nil
}

// End discards the session and its answers.
func (s *PlayService) End(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}

// Session is one attempt at a quiz.
type Session struct {
	id        string
	quiz      domain.Quiz
	index     map[string]int
	startedAt time.Time
	now       func() time.Time

	mu          sync.Mutex
	answers     domain.AnswerMap
	submittedAt time.Time
}

// NewSession is exported for infrastructure layers and tests that need to seed sessions.
func NewSession(id string, quiz domain.Quiz) *Session {
	return newSession(id, quiz, time.Now)
}

func newSession(id string, quiz domain.Quiz, now func() time.Time) *Session {
	index := make(map[string]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		index[q.ID.String()] = i
	}
	return &Session{
		id:        id,
		quiz:      quiz,
		index:     index,
		startedAt: now(),
		now:       now,
		answers:   make(domain.AnswerMap),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Quiz() domain.Quiz {
	return s.quiz
}

// Elapsed is the time since the session started.
func (s *Session) Elapsed() time.Duration {
	return s.now().Sub(s.startedAt)
}

func (s *Session) answer(questionID string, choice int) (Progress, error) {
	i, ok := s.index[questionID]
	if !ok {
		return Progress{}, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, questionID)
	}
	if choice < 0 || choice >= len(s.quiz.Questions[i].Choices) {
		return Progress{}, fmt.Errorf("%w: %d", domain.ErrChoiceOutOfRange, choice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.submittedAt.IsZero() {
		return Progress{}, domain.ErrAlreadySubmitted
	}
	s.answers[questionID] = choice
	return s.progressLocked(), nil
}

func (s *Session) reset() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = make(domain.AnswerMap)
	s.submittedAt = time.Time{}
	return s.progressLocked()
}

func (s *Session) submit() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submittedAt.IsZero() {
		s.submittedAt = s.now()
	}

	review := make([]ReviewItem, 0, len(s.quiz.Questions))
	for _, q := range s.quiz.Questions {
		item := ReviewItem{
			QuestionID:  q.ID,
			AnswerIndex: q.AnswerIndex,
			Explanation: q.Explanation,
		}
		if choice, ok := s.answers[q.ID.String()]; ok {
			selected := choice
			item.Selected = &selected
			item.Correct = choice == q.AnswerIndex
		}
		review = append(review, item)
	}
	return Result{Score: CalculateScore(s.quiz, s.answers), Review: review}
}

// Progress returns the current answer count.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

func (s *Session) progressLocked() Progress {
	return Progress{Answered: len(s.answers), Total: len(s.quiz.Questions)}
}
