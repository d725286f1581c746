package domain

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidRequest wraps schema violations of inbound request bodies.
var ErrInvalidRequest = errors.New("invalid request")

var validate = validator.New()

// Validate checks the quiz against the data model invariants: non-empty topic
// and questions, at least two choices per question, answer_index inside
// choices and unique question ids.
func (q Quiz) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}
	seen := make(map[string]struct{}, len(q.Questions))
	for i, question := range q.Questions {
		if question.AnswerIndex >= len(question.Choices) {
			return fmt.Errorf("%w: question %d answer_index %d out of range", ErrInvalidQuiz, i, question.AnswerIndex)
		}
		key := question.ID.String()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidQuiz, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

const generateQuizRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["topic", "difficulty", "num_questions"],
  "properties": {
    "topic": {"type": "string", "minLength": 1, "pattern": "\\S"},
    "difficulty": {"type": "string", "enum": ["easy", "medium", "hard"]},
    "num_questions": {"type": "integer", "minimum": 1, "maximum": 20}
  }
}`

var generateSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(generateQuizRequestSchema))
})

// ValidateGenerateRequestJSON checks a raw generate request body against the
// GenerateQuizRequest schema. Extra properties are allowed and forwarded.
func ValidateGenerateRequestJSON(raw []byte) error {
	schema, err := generateSchema()
	if err != nil {
		return fmt.Errorf("compile generate schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}
