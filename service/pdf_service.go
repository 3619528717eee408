package service

import (
	"bytes"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/PhilipWidoff/SmartPDF/types"
)

// PDFService handles PDF text extraction and chunking.
type PDFService struct {
	maxChunkSize int // Maximum size of each text chunk
	overlapSize  int // Size of overlap between chunks
}

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	MaxChunkSize: 1024,
	OverlapSize:  128,
}

// NewPDFService creates a new PDF service with configurable chunk sizes
func NewPDFService(config types.DocumentServiceConfig) *PDFService {
	return &PDFService{
		maxChunkSize: config.MaxChunkSize,
		overlapSize:  config.OverlapSize,
	}
}

// ExtractPages reads a PDF file and returns the plain text of every page in
// order. Pages that yield no text in-process are retried with pdftotext; pages
// that still fail are kept as empty so numbering stays 1-based.
func (s *PDFService) ExtractPages(filePath string) ([]types.Page, error) {
	f, reader, err := pdflib.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", filePath, err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]types.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		var text string
		page := reader.Page(i)
		if !page.V.IsNull() {
			if t, err := page.GetPlainText(nil); err == nil {
				text = t
			}
		}
		if strings.TrimSpace(text) == "" {
			if t, err := extractTextWithPdftotext(filePath, i); err == nil {
				text = t
			} else {
				log.Printf("Warning: failed to extract text from page %d: %v", i, err)
			}
		}
		pages = append(pages, types.Page{
			Number: i,
			Text:   s.cleanText(text),
		})
	}
	return pages, nil
}

// ChunkPages splits extracted pages into overlapping page-tagged chunks for
// indexing. Empty pages produce no chunks.
func (s *PDFService) ChunkPages(document, title string, pages []types.Page) []types.DocumentChunk {
	var chunks []types.DocumentChunk
	for _, page := range pages {
		text := strings.TrimSpace(page.Text)
		if text == "" {
			continue
		}
		metadata := types.DocumentMetadata{
			Document:   document,
			Title:      title,
			PageNum:    page.Number,
			TotalPages: len(pages),
		}
		chunks = append(chunks, s.createChunks(text, metadata)...)
	}
	return chunks
}

// GetFileNameWithoutExt extracts filename without extension from a file path
func GetFileNameWithoutExt(filepath string) string {
	// Get base filename from path
	base := filepath[strings.LastIndex(filepath, "/")+1:]

	// Remove extension
	if idx := strings.LastIndex(base, "."); idx != -1 {
		base = base[:idx]
	}

	return base
}

// createChunks splits text into overlapping chunks with proper sentence boundaries
func (s *PDFService) createChunks(text string, metadata types.DocumentMetadata) []types.DocumentChunk {
	textLen := len(text)
	// Return early if text fits in one chunk
	if textLen <= s.maxChunkSize {
		return []types.DocumentChunk{
			{
				Content:  text,
				Page:     metadata.PageNum,
				Metadata: metadata,
			},
		}
	}

	var chunks []types.DocumentChunk
	currentPos := 0
	for currentPos < textLen {
		// Calculate end position for current chunk
		chunkEnd := currentPos + s.maxChunkSize
		if chunkEnd >= textLen {
			// Handle last chunk
			chunk := strings.TrimSpace(text[currentPos:])
			if chunk != "" {
				chunks = append(chunks, types.DocumentChunk{
					Content:  chunk,
					Page:     metadata.PageNum,
					Metadata: metadata,
				})
			}
			break
		}

		// Find nearest sentence end
		sentenceEnd := chunkEnd
		for i := chunkEnd; i > currentPos; i-- {
			if text[i] == '.' || text[i] == '?' || text[i] == '!' {
				sentenceEnd = i + 1
				break
			}
		}

		// If no sentence end found, use word boundary
		if sentenceEnd == chunkEnd {
			for i := chunkEnd; i > currentPos; i-- {
				if text[i] == ' ' {
					sentenceEnd = i
					break
				}
			}
		}

		chunk := strings.TrimSpace(text[currentPos:sentenceEnd])
		if chunk != "" {
			chunks = append(chunks, types.DocumentChunk{
				Content:  chunk,
				Page:     metadata.PageNum,
				Metadata: metadata,
			})
		}

		// Update position for next chunk, keeping an overlap with the
		// previous one but always making forward progress.
		next := sentenceEnd - s.overlapSize
		if next <= currentPos {
			next = sentenceEnd
		}
		currentPos = next
	}

	return chunks
}

// extractTextWithPdftotext extracts text using the pdftotext utility, used as a
// fallback when in-process extraction yields nothing for a page.
func extractTextWithPdftotext(filepath string, pageNumber int) (string, error) {
	pdftotextCmd := exec.Command("pdftotext", "-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		filepath, "-")
	var txtOut bytes.Buffer
	pdftotextCmd.Stdout = &txtOut

	if err := pdftotextCmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed for page %d: %w", pageNumber, err)
	}
	pageText := txtOut.String()
	if trimmed := strings.TrimSpace(pageText); len(trimmed) > 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

func (s *PDFService) cleanText(text string) string {

	replacements := map[string]string{
		"\u0000": "",   // Null character
		"\ufffd": "",   // Unicode replacement character
		"\u001b": "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
		"  ":     " ",  // Multiple spaces to single space
	}
	// Apply replacements
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}

	// Trim leading/trailing whitespace
	cleaned = strings.TrimSpace(cleaned)

	return cleaned
}
