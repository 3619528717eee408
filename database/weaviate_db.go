package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/PhilipWidoff/SmartPDF/config"
	"github.com/PhilipWidoff/SmartPDF/types"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "document", DataType: []string{"text"}},
			{Name: "title", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "totalPages", DataType: []string{"int"}},
		},
		VectorIndexType: "hnsw",
	}
)

type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(config config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	CHUNK_CLASS_OBJECT.Vectorizer = config.Text2Vec
	CHUNK_CLASS_OBJECT.ModuleConfig = config.ModuleConfig
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	// Create DocumentChunk class if it doesn't exist
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create DocumentChunk class: %v", err)
		}
	}
	return &WeaviateStore{
		client: client,
	}, nil
}

func (s *WeaviateStore) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete DocumentChunk class: %v", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create DocumentChunk class: %v", err)
	}
	return nil
}

func (s *WeaviateStore) BatchInsertChunks(ctx context.Context, chunks []types.DocumentChunk) error {
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		// Create batch for current chunk
		batcher := s.client.Batch().ObjectsBatcher()

		// Add chunks to current batch
		for j := i; j < end; j++ {
			properties := map[string]interface{}{
				"content":    chunks[j].Content,
				"document":   chunks[j].Metadata.Document,
				"title":      chunks[j].Metadata.Title,
				"page":       chunks[j].Page,
				"totalPages": chunks[j].Metadata.TotalPages,
			}

			batcher = batcher.WithObjects(&models.Object{
				Class:      CHUNK_CLASS,
				Properties: properties,
			})
		}

		// Execute current batch
		_, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}

		log.Printf("Inserted batch %d-%d of %d chunks", i, end, total)
	}

	return nil
}

func (s *WeaviateStore) DeleteDocumentChunks(ctx context.Context, document string) error {
	where := filters.Where().
		WithPath([]string{"document"}).
		WithOperator(filters.Equal).
		WithValueText(document)

	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(CHUNK_CLASS).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete chunks of %s: %v", document, err)
	}
	return nil
}

func (s *WeaviateStore) SearchSimilar(ctx context.Context, query string, document string, limit int) ([]ScoredChunk, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "document"},
		{Name: "title"},
		{Name: "page"},
		{Name: "totalPages"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "id"}}},
	}

	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearText(nearText)
	if document != "" {
		where := filters.Where().
			WithPath([]string{"document"}).
			WithOperator(filters.Equal).
			WithValueText(document)
		getBuilder = getBuilder.WithWhere(where)
	}
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}

	response, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}

	var chunks []ScoredChunk
	get, ok := response.Data["Get"].(map[string]interface{})
	if !ok {
		return chunks, nil
	}
	if data, ok := get[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			if props, ok := item.(map[string]interface{}); ok {
				chunk := ScoredChunk{
					Content:  asString(props["content"]),
					Document: asString(props["document"]),
					Title:    asString(props["title"]),
					Page:     asInt(props["page"]),
				}
				if additional, ok := props["_additional"].(map[string]interface{}); ok {
					chunk.ID = asString(additional["id"])
					if d, ok := additional["distance"].(float64); ok {
						chunk.Distance = float32(d)
					}
				}
				chunks = append(chunks, chunk)
			}
		}
	}
	return chunks, nil
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asInt(v interface{}) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}
