package domain

import "errors"

// NotFoundHint is shown to users when the upstream no longer knows a quiz id.
const NotFoundHint = "Quiz not found. The quiz store is in-memory and may have been reset."

var (
	// ErrQuizNotFound indicates the upstream service has no quiz with the requested id.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz is returned when a quiz violates the data model invariants.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrSessionNotFound is returned when a play session does not exist or has ended.
	ErrSessionNotFound = errors.New("play session not found")
	// ErrQuestionNotFound indicates a submitted question id is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrChoiceOutOfRange indicates a submitted choice index has no matching choice.
	ErrChoiceOutOfRange = errors.New("choice out of range")
	// ErrAlreadySubmitted is returned when answering after a session was submitted.
	ErrAlreadySubmitted = errors.New("session already submitted")
)
