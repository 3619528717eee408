package service

import (
	"context"

	"github.com/PhilipWidoff/SmartPDF/types"
)

// AIService is a plain conversational interface over a hosted model, used by
// the analysis endpoints.
type AIService interface {
	Chat(ctx context.Context, prompt string, messages []types.Message) (string, error)
}

// AnswerRequest is one retrieval-augmented question against a single document,
// with the bounded conversation memory already built.
type AnswerRequest struct {
	Document string
	Question string
	Memory   []types.Message
}

// AnswerEngine produces a natural-language answer for a question, internally
// condensing follow-up questions against the memory before retrieval.
type AnswerEngine interface {
	Answer(ctx context.Context, req AnswerRequest) (string, error)
}

// StreamingAnswerEngine additionally supports incremental delivery; the full
// answer is returned once the stream completes.
type StreamingAnswerEngine interface {
	AnswerEngine
	AnswerStream(ctx context.Context, req AnswerRequest, handler types.StreamHandler) (string, error)
}
