package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Difficulty is the requested or reported difficulty of a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

const (
	MinQuestions = 1
	MaxQuestions = 20
)

// ClampNumQuestions bounds n to [MinQuestions, MaxQuestions].
func ClampNumQuestions(n int) int {
	if n < MinQuestions {
		return MinQuestions
	}
	if n > MaxQuestions {
		return MaxQuestions
	}
	return n
}

// QuestionID is a question identifier that may arrive as a JSON string or integer.
// It remembers which form it came in so it marshals back unchanged.
type QuestionID struct {
	value   string
	numeric bool
}

// StringID builds a string question id.
func StringID(s string) QuestionID {
	return QuestionID{value: s}
}

// IntID builds an integer question id.
func IntID(n int64) QuestionID {
	return QuestionID{value: strconv.FormatInt(n, 10), numeric: true}
}

// String returns the answer-map key for the id.
func (id QuestionID) String() string {
	return id.value
}

// IsNumeric reports whether the id was an integer on the wire.
func (id QuestionID) IsNumeric() bool {
	return id.numeric
}

func (id QuestionID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*id = IntID(n)
		return nil
	}
	// Whole numbers written as 1.0 or 1e0 are still integer ids.
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		if f, err := num.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			*id = IntID(int64(f))
			return nil
		}
	}
	return fmt.Errorf("question id must be a string or integer, got %s", data)
}

// Question is a single multiple-choice question. AnswerIndex points into Choices.
type Question struct {
	ID          QuestionID `json:"id"`
	Question    string     `json:"question" validate:"required"`
	Choices     []string   `json:"choices" validate:"min=2"`
	AnswerIndex int        `json:"answer_index" validate:"gte=0"`
	Explanation *string    `json:"explanation,omitempty"`
}

// Quiz is a generated quiz as returned by the upstream service.
type Quiz struct {
	QuizID     string     `json:"quiz_id" validate:"required"`
	Topic      string     `json:"topic" validate:"required"`
	Difficulty Difficulty `json:"difficulty" validate:"oneof=easy medium hard"`
	Questions  []Question `json:"questions" validate:"min=1,dive"`
}

// GenerateQuizRequest asks the upstream service for a new quiz.
type GenerateQuizRequest struct {
	Topic        string     `json:"topic"`
	Difficulty   Difficulty `json:"difficulty"`
	NumQuestions int        `json:"num_questions"`
}

// AnswerMap maps a stringified question id to the selected choice index.
type AnswerMap map[string]int

// Score summarizes an answer map against a quiz.
type Score struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}
