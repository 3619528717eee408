package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/PhilipWidoff/SmartPDF/database"
	"github.com/PhilipWidoff/SmartPDF/types"
)

// fakeDocumentStore serves canned pages and backs Path with real files so
// checksumming works.
type fakeDocumentStore struct {
	paths      map[string]string
	pagesByDoc map[string][]types.Page
	pagesErr   error
	pageReads  int32
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{
		paths:      make(map[string]string),
		pagesByDoc: make(map[string][]types.Page),
	}
}

// addDocument materializes a source file in a temp dir and registers pages
// for it.
func (f *fakeDocumentStore) addDocument(t *testing.T, document, content string, pages []types.Page) {
	t.Helper()
	path := filepath.Join(t.TempDir(), document)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	f.paths[document] = path
	f.pagesByDoc[document] = pages
}

func (f *fakeDocumentStore) List() ([]string, error) {
	var out []string
	for document := range f.paths {
		out = append(out, document)
	}
	return out, nil
}

func (f *fakeDocumentStore) Exists(document string) bool {
	_, ok := f.paths[document]
	return ok
}

func (f *fakeDocumentStore) Path(document string) (string, error) {
	if path, ok := f.paths[document]; ok {
		return path, nil
	}
	return "", errors.New("file not found: " + document)
}

func (f *fakeDocumentStore) Pages(ctx context.Context, document string) ([]types.Page, error) {
	atomic.AddInt32(&f.pageReads, 1)
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	pages, ok := f.pagesByDoc[document]
	if !ok {
		return nil, errors.New("file not found: " + document)
	}
	return pages, nil
}

// fakeVectorIndex records writes and serves canned search results.
type fakeVectorIndex struct {
	inserts   int32
	deletes   int32
	chunks    []types.DocumentChunk
	insertErr error
	results   []database.ScoredChunk
}

func (f *fakeVectorIndex) BatchInsertChunks(ctx context.Context, chunks []types.DocumentChunk) error {
	atomic.AddInt32(&f.inserts, 1)
	if f.insertErr != nil {
		return f.insertErr
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeVectorIndex) DeleteDocumentChunks(ctx context.Context, document string) error {
	atomic.AddInt32(&f.deletes, 1)
	return nil
}

func (f *fakeVectorIndex) SearchSimilar(ctx context.Context, query string, document string, limit int) ([]database.ScoredChunk, error) {
	return f.results, nil
}

// fakeAnswerEngine returns a fixed answer.
type fakeAnswerEngine struct {
	answer string
	err    error
	last   AnswerRequest
	calls  int
}

func (f *fakeAnswerEngine) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	f.calls++
	f.last = req
	return f.answer, f.err
}

// fakeAIService replays canned responses for analysis tests.
type fakeAIService struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeAIService) Chat(ctx context.Context, prompt string, messages []types.Message) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}
