package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/PhilipWidoff/SmartPDF/types"
)

// DocumentStore exposes the durable PDF directory to the rest of the system.
// Documents are addressed by file name, with or without the .pdf extension.
type DocumentStore interface {
	List() ([]string, error)
	Exists(document string) bool
	Path(document string) (string, error)
	Pages(ctx context.Context, document string) ([]types.Page, error)
}

// FileDocumentStore is a DocumentStore over a local directory of PDFs.
type FileDocumentStore struct {
	documentsDir string
	pdfService   *PDFService
}

func NewFileDocumentStore(documentsDir string, pdfService *PDFService) *FileDocumentStore {
	if err := os.MkdirAll(documentsDir, 0755); err != nil {
		panic(err)
	}
	return &FileDocumentStore{
		documentsDir: documentsDir,
		pdfService:   pdfService,
	}
}

// List returns the identifiers of every PDF in the documents directory.
func (s *FileDocumentStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.documentsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory: %w", err)
	}
	var documents []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == ".pdf" {
			documents = append(documents, entry.Name())
		}
	}
	sort.Strings(documents)
	return documents, nil
}

func (s *FileDocumentStore) Exists(document string) bool {
	_, err := s.Path(document)
	return err == nil
}

// Path resolves a document identifier to a file path inside the documents
// directory. Uploaded files carry a timestamp suffix, so "manual.pdf" also
// resolves "manual_1712345678.pdf".
func (s *FileDocumentStore) Path(document string) (string, error) {
	name := filepath.Base(document)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}

	candidate := filepath.Join(s.documentsDir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	actual, err := s.findFileWithTimestamp(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.documentsDir, actual), nil
}

// Pages extracts the plain text of every page of the document.
func (s *FileDocumentStore) Pages(ctx context.Context, document string) ([]types.Page, error) {
	path, err := s.Path(document)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.pdfService.ExtractPages(path)
}

func (s *FileDocumentStore) findFileWithTimestamp(requestedName string) (string, error) {
	files, err := os.ReadDir(s.documentsDir)
	if err != nil {
		return "", err
	}

	baseName := strings.TrimSuffix(requestedName, ".pdf")
	for _, file := range files {
		name := file.Name()
		if !strings.HasSuffix(name, ".pdf") {
			continue
		}

		nameWithoutExt := strings.TrimSuffix(name, ".pdf")
		if nameWithoutExt == baseName {
			return name, nil
		}
		// Find last underscore position
		lastUnderscoreIdx := strings.LastIndex(nameWithoutExt, "_")
		if lastUnderscoreIdx == -1 {
			continue
		}

		// Get potential timestamp part
		timestampPart := nameWithoutExt[lastUnderscoreIdx+1:]
		fileBaseName := nameWithoutExt[:lastUnderscoreIdx]

		// Validate if it's a timestamp (Unix timestamp is typically 10 or 13 digits)
		if len(timestampPart) == 10 || len(timestampPart) == 13 {
			if _, err := strconv.ParseInt(timestampPart, 10, 64); err == nil {
				if fileBaseName == baseName {
					return name, nil
				}
			}
		}
	}

	return "", fmt.Errorf("file not found: %s", requestedName)
}
