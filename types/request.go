package types

// Analysis kinds accepted by POST /api/v1/analyze.
const (
	AnalysisTopics      = "topics"
	AnalysisEntities    = "entities"
	AnalysisReadability = "readability"
	AnalysisSummary     = "summary"
	AnalysisSentiment   = "sentiment"
	AnalysisKeywords    = "keywords"
	AnalysisQA          = "question-answering"
)

type AnalyzeRequest struct {
	Document string `json:"document"`
	Kind     string `json:"kind"`
	// Question is only consulted for the question-answering kind.
	Question string `json:"question,omitempty"`
}
