package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhilipWidoff/SmartPDF/types"
)

func analysisFixture(t *testing.T, response string) (*AnalysisService, *fakeAIService) {
	t.Helper()
	docs := newFakeDocumentStore()
	docs.addDocument(t, "report.pdf", "raw", []types.Page{
		{Number: 1, Text: "Quarterly results were strong."},
	})
	ai := &fakeAIService{response: response}
	return NewAnalysisService(ai, docs), ai
}

func TestAnalyze_Topics(t *testing.T) {
	analysis, _ := analysisFixture(t, `["finance", "growth", "finance"]`)

	result, err := analysis.Analyze(context.Background(), "report.pdf", types.AnalysisTopics, "")

	require.NoError(t, err)
	assert.Equal(t, []string{"finance", "growth"}, result)
}

func TestAnalyze_TopicsStripsCodeFences(t *testing.T) {
	analysis, _ := analysisFixture(t, "```json\n[\"finance\"]\n```")

	result, err := analysis.Analyze(context.Background(), "report.pdf", types.AnalysisTopics, "")

	require.NoError(t, err)
	assert.Equal(t, []string{"finance"}, result)
}

func TestAnalyze_EntitiesDeduplicated(t *testing.T) {
	analysis, _ := analysisFixture(t, `{"ORG": ["Acme", "Acme", "Globex"], "PERSON": ["Ada"]}`)

	result, err := analysis.Analyze(context.Background(), "report.pdf", types.AnalysisEntities, "")

	require.NoError(t, err)
	entities, ok := result.(types.EntityMap)
	require.True(t, ok)
	assert.Equal(t, []string{"Acme", "Globex"}, entities["ORG"])
	assert.Equal(t, []string{"Ada"}, entities["PERSON"])
}

func TestAnalyze_Sentiment(t *testing.T) {
	analysis, _ := analysisFixture(t, `{"label": "positive", "score": 0.92}`)

	result, err := analysis.Analyze(context.Background(), "report.pdf", types.AnalysisSentiment, "")

	require.NoError(t, err)
	sentiment, ok := result.(*types.SentimentResult)
	require.True(t, ok)
	assert.Equal(t, "positive", sentiment.Label)
	assert.InDelta(t, 0.92, sentiment.Score, 0.001)
}

func TestAnalyze_UnknownKind(t *testing.T) {
	analysis, _ := analysisFixture(t, "")

	_, err := analysis.Analyze(context.Background(), "report.pdf", "mood-ring", "")
	assert.Error(t, err)
}

func TestAnalyze_QARequiresQuestion(t *testing.T) {
	analysis, ai := analysisFixture(t, "An answer")

	_, err := analysis.Analyze(context.Background(), "report.pdf", types.AnalysisQA, "")
	assert.Error(t, err)
	assert.Empty(t, ai.prompts, "no model call without a question")

	result, err := analysis.Analyze(context.Background(), "report.pdf", types.AnalysisQA, "How were the results?")
	require.NoError(t, err)
	assert.Equal(t, "An answer", result)
}

func TestAnalyze_UnreadableDocument(t *testing.T) {
	docs := newFakeDocumentStore()
	analysis := NewAnalysisService(&fakeAIService{}, docs)

	_, err := analysis.Analyze(context.Background(), "missing.pdf", types.AnalysisSummary, "")
	assert.Error(t, err)
}

func TestNormalizeEntityMap(t *testing.T) {
	entities := NormalizeEntityMap(types.EntityMap{
		"ORG": {"Acme", " Acme ", "", "Globex", "Acme"},
	})
	assert.Equal(t, []string{"Acme", "Globex"}, entities["ORG"])
}
