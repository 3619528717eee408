package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhilipWidoff/SmartPDF/types"
)

func TestChunkPages_SmallPageFitsOneChunk(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{MaxChunkSize: 1024, OverlapSize: 128})

	chunks := s.ChunkPages("guide.pdf", "guide", []types.Page{
		{Number: 1, Text: "A short page."},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "A short page.", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, "guide.pdf", chunks[0].Metadata.Document)
	assert.Equal(t, 1, chunks[0].Metadata.TotalPages)
}

func TestChunkPages_SkipsEmptyPages(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{MaxChunkSize: 1024, OverlapSize: 128})

	chunks := s.ChunkPages("guide.pdf", "guide", []types.Page{
		{Number: 1, Text: "   "},
		{Number: 2, Text: "Real content."},
		{Number: 3, Text: ""},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, 2, chunks[0].Page)
	assert.Equal(t, 3, chunks[0].Metadata.TotalPages)
}

func TestCreateChunks_SplitsAtSentenceBoundaries(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{MaxChunkSize: 100, OverlapSize: 20})
	text := strings.TrimSpace(strings.Repeat("This sentence is about forty characters. ", 10))

	chunks := s.createChunks(text, types.DocumentMetadata{PageNum: 3})

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.NotEmpty(t, chunk.Content, "chunk %d", i)
		assert.LessOrEqual(t, len(chunk.Content), 100, "chunk %d", i)
		assert.Equal(t, 3, chunk.Page)
	}
	// Sentence-boundary splitting keeps whole sentences together.
	assert.True(t, strings.HasSuffix(chunks[0].Content, "."), "chunk should end at a sentence: %q", chunks[0].Content)
}

func TestCreateChunks_OverlappingChunksMakeProgress(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{MaxChunkSize: 50, OverlapSize: 60})
	// Overlap larger than chunk size must not loop forever.
	text := strings.Repeat("word ", 100)

	chunks := s.createChunks(text, types.DocumentMetadata{PageNum: 1})
	assert.NotEmpty(t, chunks)
}

func TestCleanText(t *testing.T) {
	s := NewPDFService(DefaultDocumentServiceConfig)

	cleaned := s.cleanText("  hello\u0000 world\r�next  ")
	assert.Equal(t, "hello worldnext", cleaned)
}

func TestGetFileNameWithoutExt(t *testing.T) {
	assert.Equal(t, "manual", GetFileNameWithoutExt("documents/manual.pdf"))
	assert.Equal(t, "manual", GetFileNameWithoutExt("manual.pdf"))
	assert.Equal(t, "manual", GetFileNameWithoutExt("manual"))
}
