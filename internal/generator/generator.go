// Package generator talks to the external AI service that turns uploaded
// notes into quiz questions or flashcards.
//
// The rest of the application treats generation as an opaque function:
// (file bytes, MIME type, kind, item count) in, one line of JSON text out.
// The Generator interface is injected into the study service at
// construction, so tests substitute a fake and never touch the network —
// there is no package-level client singleton anywhere.
package generator

import "context"

// Kind selects which artifact the generator should produce.
type Kind string

const (
	KindQuiz       Kind = "quiz"
	KindFlashcards Kind = "flashcards"
)

// Generator produces study material from raw file content.
//
// The returned string is the model's text response: on success a single-line
// JSON array of questions or cards, on a content problem the structured
// error object {"error": "reason"}. Callers parse and validate — the
// generator itself promises nothing about the text beyond returning it.
//
// Implementations must honour ctx: the call is the only long-latency
// operation in the system (seconds), and the caller bounds it with a
// deadline rather than hanging the request.
type Generator interface {
	Generate(ctx context.Context, data []byte, mimeType string, kind Kind, count int) (string, error)
}
