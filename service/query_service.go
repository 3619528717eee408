package service

import (
	"context"

	"github.com/PhilipWidoff/SmartPDF/types"
)

// IndexCache hands out the searchable representation of a document, building
// it on first use.
type IndexCache interface {
	GetOrBuild(ctx context.Context, document string) (*IndexManifest, error)
}

// Locator resolves page citations for an answer. It never fails; at worst it
// returns no citations.
type Locator interface {
	Locate(ctx context.Context, document, answerText string) []types.Citation
}

// QueryService orchestrates one question against one document: ensure the
// index exists, bound the conversation memory, delegate answering, then attach
// page citations.
type QueryService struct {
	indexes      IndexCache
	engine       AnswerEngine
	locator      Locator
	memoryWindow int
}

func NewQueryService(indexes IndexCache, engine AnswerEngine, locator Locator, memoryWindow int) *QueryService {
	if memoryWindow <= 0 {
		memoryWindow = DefaultMemoryWindow
	}
	return &QueryService{
		indexes:      indexes,
		engine:       engine,
		locator:      locator,
		memoryWindow: memoryWindow,
	}
}

// Answer handles a single query request synchronously, start to finish.
// Index and engine failures are fatal for the request; citation resolution is
// best-effort and only affects the citation list.
func (s *QueryService) Answer(ctx context.Context, document, question string, history []types.ConversationTurn, isNewConversation bool) (*types.QueryResult, error) {
	if _, err := s.indexes.GetOrBuild(ctx, document); err != nil {
		return nil, err
	}

	memory := BuildMemory(history, isNewConversation, s.memoryWindow)

	answer, err := s.engine.Answer(ctx, AnswerRequest{
		Document: document,
		Question: question,
		Memory:   memory,
	})
	if err != nil {
		return nil, err
	}

	citations := s.locator.Locate(ctx, document, answer)

	return &types.QueryResult{
		Question:     question,
		Answer:       answer,
		HasCitations: len(citations) > 0,
		Citations:    citations,
	}, nil
}
