package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PhilipWidoff/SmartPDF/types"
)

// maxAnalysisChars caps how much extracted text is sent to the model for a
// single analysis call.
const maxAnalysisChars = 12000

// AnalysisService delegates document analysis to a hosted model. Each kind is
// a single pass-through call with a kind-specific prompt; no results are
// stored.
type AnalysisService struct {
	ai        AIService
	documents DocumentStore
}

func NewAnalysisService(ai AIService, documents DocumentStore) *AnalysisService {
	return &AnalysisService{
		ai:        ai,
		documents: documents,
	}
}

// Analyze runs one analysis kind against a document. The question argument is
// only consulted for the question-answering kind.
func (s *AnalysisService) Analyze(ctx context.Context, document, kind, question string) (interface{}, error) {
	text, err := s.documentText(ctx, document)
	if err != nil {
		return nil, err
	}

	switch kind {
	case types.AnalysisTopics:
		return s.stringList(ctx, text,
			"List the main topics of the document as a JSON array of short strings. Reply with JSON only.")
	case types.AnalysisKeywords:
		return s.stringList(ctx, text,
			"Extract the most important keywords of the document as a JSON array of strings. Reply with JSON only.")
	case types.AnalysisEntities:
		return s.entities(ctx, text)
	case types.AnalysisReadability:
		return s.readability(ctx, text)
	case types.AnalysisSentiment:
		return s.sentiment(ctx, text)
	case types.AnalysisSummary:
		return s.ai.Chat(ctx, "Summarize the document below in a short paragraph.", textMessage(text))
	case types.AnalysisQA:
		if strings.TrimSpace(question) == "" {
			return nil, fmt.Errorf("question-answering analysis requires a question")
		}
		prompt := fmt.Sprintf("Answer the question using only the document below. Question: %s", question)
		return s.ai.Chat(ctx, prompt, textMessage(text))
	default:
		return nil, fmt.Errorf("unknown analysis kind: %s", kind)
	}
}

func (s *AnalysisService) documentText(ctx context.Context, document string) (string, error) {
	pages, err := s.documents.Pages(ctx, document)
	if err != nil {
		return "", fmt.Errorf("failed to read document %s: %w", document, err)
	}
	var b strings.Builder
	for _, page := range pages {
		if b.Len() >= maxAnalysisChars {
			break
		}
		b.WriteString(page.Text)
		b.WriteString("\n")
	}
	text := b.String()
	if len(text) > maxAnalysisChars {
		text = text[:maxAnalysisChars]
	}
	return text, nil
}

func (s *AnalysisService) stringList(ctx context.Context, text, prompt string) ([]string, error) {
	raw, err := s.ai.Chat(ctx, prompt, textMessage(text))
	if err != nil {
		return nil, err
	}
	var list []string
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &list); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}
	return uniqueOrdered(list), nil
}

func (s *AnalysisService) entities(ctx context.Context, text string) (types.EntityMap, error) {
	raw, err := s.ai.Chat(ctx,
		"Extract the named entities of the document as a JSON object mapping a category "+
			"(such as PERSON, ORG, LOCATION, DATE) to an array of entity strings. Reply with JSON only.",
		textMessage(text))
	if err != nil {
		return nil, err
	}
	var entities types.EntityMap
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &entities); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}
	return NormalizeEntityMap(entities), nil
}

func (s *AnalysisService) readability(ctx context.Context, text string) (*types.ReadabilityResult, error) {
	raw, err := s.ai.Chat(ctx,
		"Assess the readability of the document. Reply with JSON only, shaped as "+
			`{"score": <flesch reading ease 0-100>, "grade_level": "<school grade>", "assessment": "<one sentence>"}.`,
		textMessage(text))
	if err != nil {
		return nil, err
	}
	var result types.ReadabilityResult
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}
	return &result, nil
}

func (s *AnalysisService) sentiment(ctx context.Context, text string) (*types.SentimentResult, error) {
	raw, err := s.ai.Chat(ctx,
		"Classify the overall sentiment of the document. Reply with JSON only, shaped as "+
			`{"label": "positive|neutral|negative", "score": <confidence 0-1>}.`,
		textMessage(text))
	if err != nil {
		return nil, err
	}
	var result types.SentimentResult
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}
	return &result, nil
}

// NormalizeEntityMap deduplicates entity values per category while preserving
// their first-seen order.
func NormalizeEntityMap(entities types.EntityMap) types.EntityMap {
	normalized := make(types.EntityMap, len(entities))
	for category, values := range entities {
		normalized[category] = uniqueOrdered(values)
	}
	return normalized
}

func uniqueOrdered(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// stripCodeFences removes a surrounding markdown code fence that hosted
// models tend to wrap JSON replies in.
func stripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(raw, "```")
	}
	return strings.TrimSpace(raw)
}

func textMessage(text string) []types.Message {
	return []types.Message{
		{Role: types.RoleUser, Content: text},
	}
}
