package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScoreUngraded is the reserved score meaning "this quiz has never been
// graded". Every new quiz starts here; only an explicit score update moves
// it to a real value.
const ScoreUngraded Score = -1

// Score is a quiz score with a tagged "ungraded" state.
//
// WHY A NAMED TYPE INSTEAD OF A BARE int?
// The stored representation is still an integer (-1 = ungraded, 0..100 =
// graded) for compatibility with the API and the database column, but
// consumers should branch on Graded() rather than comparing against a magic
// number scattered around the codebase. The type makes the two states
// explicit at every call site.
type Score int

// Graded reports whether the quiz has been scored at least once.
func (s Score) Graded() bool {
	return s != ScoreUngraded
}

// Quiz is a generated multiple-choice quiz for one (owner, file) pair.
//
// Questions is stored verbatim as the single-line JSON string the generator
// produced; it is validated at generation time (see ParseQuestions) so a row
// in the database is always well-formed. At most one quiz exists per
// (UserID, FileID) — regeneration replaces the row, so the ID changes.
type Quiz struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FileID    string    `json:"fileId"`
	Score     Score     `json:"score"`
	Questions string    `json:"questions"`
	CreatedAt time.Time `json:"createdAt"`
}

// Question is one multiple-choice item of a quiz payload.
type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIdx   int      `json:"answer_idx"`
	Explanation string   `json:"explanation"`
}

// ParseQuestions parses and shape-validates a quiz payload.
//
// The generator promises an array of questions with exactly four options
// each and a 0-based answer index. We verify that promise here, at the
// boundary, so malformed AI output is rejected before anything is persisted.
func ParseQuestions(payload string) ([]Question, error) {
	var questions []Question
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		return nil, fmt.Errorf("model: parsing questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("model: quiz payload contains no questions")
	}
	for i, q := range questions {
		if q.Question == "" {
			return nil, fmt.Errorf("model: question %d has empty text", i)
		}
		if len(q.Options) != 4 {
			return nil, fmt.Errorf("model: question %d has %d options, want 4", i, len(q.Options))
		}
		if q.AnswerIdx < 0 || q.AnswerIdx > 3 {
			return nil, fmt.Errorf("model: question %d has answer_idx %d, want 0..3", i, q.AnswerIdx)
		}
	}
	return questions, nil
}
