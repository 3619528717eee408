package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/PhilipWidoff/SmartPDF/database"
)

// IndexManifest is the durable record of a built document index. The vectors
// themselves live in the vector store; the manifest on disk is what makes a
// document count as "already indexed" across process restarts.
type IndexManifest struct {
	Document     string `json:"document"`
	Title        string `json:"title"`
	Pages        int    `json:"pages"`
	Chunks       int    `json:"chunks"`
	SourceSHA256 string `json:"source_sha256"`
	CreatedAt    int64  `json:"created_at"`
}

// IndexService caches document indexes: an in-process map serves repeat
// requests without touching storage, a JSON manifest per document makes the
// cache survive restarts, and a singleflight group guarantees at most one
// build per document under concurrent first access.
type IndexService struct {
	indexDir   string
	documents  DocumentStore
	pdfService *PDFService
	vectorDB   database.VectorIndex

	mu      sync.RWMutex
	indexes map[string]*IndexManifest
	group   singleflight.Group
}

func NewIndexService(
	indexDir string,
	documents DocumentStore,
	pdfService *PDFService,
	vectorDB database.VectorIndex,
) *IndexService {
	if err := os.MkdirAll(indexDir, 0755); err != nil {
		panic(err)
	}
	return &IndexService{
		indexDir:   indexDir,
		documents:  documents,
		pdfService: pdfService,
		vectorDB:   vectorDB,
		indexes:    make(map[string]*IndexManifest),
	}
}

// GetOrBuild returns the index for a document, building and persisting it on
// first use. Repeat calls within the process are served from memory without
// any storage access.
func (s *IndexService) GetOrBuild(ctx context.Context, document string) (*IndexManifest, error) {
	s.mu.RLock()
	manifest, ok := s.indexes[document]
	s.mu.RUnlock()
	if ok {
		return manifest, nil
	}

	result, err, _ := s.group.Do(document, func() (interface{}, error) {
		// A concurrent caller may have finished while we waited.
		s.mu.RLock()
		manifest, ok := s.indexes[document]
		s.mu.RUnlock()
		if ok {
			return manifest, nil
		}

		manifest, err := s.loadOrBuild(ctx, document)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.indexes[document] = manifest
		s.mu.Unlock()
		return manifest, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*IndexManifest), nil
}

func (s *IndexService) loadOrBuild(ctx context.Context, document string) (*IndexManifest, error) {
	sourcePath, err := s.documents.Path(document)
	if err != nil {
		return nil, fmt.Errorf("unknown document %s: %w", document, err)
	}
	checksum, err := fileSHA256(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", sourcePath, err)
	}

	if manifest, err := s.loadManifest(document); err == nil {
		if manifest.SourceSHA256 == checksum {
			log.Printf("Loaded existing index for %s (%d chunks)", document, manifest.Chunks)
			return manifest, nil
		}
		log.Printf("Index for %s is stale, rebuilding", document)
	}

	return s.build(ctx, document, checksum)
}

func (s *IndexService) build(ctx context.Context, document, checksum string) (*IndexManifest, error) {
	pages, err := s.documents.Pages(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", document, err)
	}

	title := GetFileNameWithoutExt(document)
	chunks := s.pdfService.ChunkPages(document, title, pages)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s produced no indexable text", document)
	}

	// Drop whatever a previous (possibly stale) build left behind before
	// inserting, so the vector store never holds two generations at once.
	if err := s.vectorDB.DeleteDocumentChunks(ctx, document); err != nil {
		return nil, err
	}
	if err := s.vectorDB.BatchInsertChunks(ctx, chunks); err != nil {
		return nil, err
	}

	manifest := &IndexManifest{
		Document:     document,
		Title:        title,
		Pages:        len(pages),
		Chunks:       len(chunks),
		SourceSHA256: checksum,
		CreatedAt:    time.Now().Unix(),
	}
	if err := s.saveManifest(manifest); err != nil {
		return nil, err
	}
	log.Printf("Built index for %s: %d pages, %d chunks", document, manifest.Pages, manifest.Chunks)
	return manifest, nil
}

func (s *IndexService) manifestPath(document string) string {
	return filepath.Join(s.indexDir, storageKey(document)+".index.json")
}

func (s *IndexService) loadManifest(document string) (*IndexManifest, error) {
	data, err := os.ReadFile(s.manifestPath(document))
	if err != nil {
		return nil, err
	}
	var manifest IndexManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("corrupt index manifest for %s: %w", document, err)
	}
	return &manifest, nil
}

func (s *IndexService) saveManifest(manifest *IndexManifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.manifestPath(manifest.Document), data, 0644); err != nil {
		return fmt.Errorf("failed to persist index manifest: %w", err)
	}
	return nil
}

// storageKey derives a filesystem-safe key from a document identifier.
func storageKey(document string) string {
	var b strings.Builder
	for _, r := range document {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
