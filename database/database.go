package database

import (
	"context"

	"github.com/PhilipWidoff/SmartPDF/types"
)

// ScoredChunk is a retrieved chunk together with its vector distance.
type ScoredChunk struct {
	ID       string  `json:"id"`
	Content  string  `json:"content"`
	Document string  `json:"document"`
	Title    string  `json:"title"`
	Page     int     `json:"page"`
	Distance float32 `json:"distance"`
}

// VectorIndex defines the retrieval engine consumed by the index cache and the
// answering engines. The implementation owns embedding and similarity search.
type VectorIndex interface {
	// Indexing operations
	BatchInsertChunks(ctx context.Context, chunks []types.DocumentChunk) error
	DeleteDocumentChunks(ctx context.Context, document string) error

	// Search operations
	SearchSimilar(ctx context.Context, query string, document string, limit int) ([]ScoredChunk, error)
}
