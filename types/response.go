package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type DocumentListResponse struct {
	Documents []string `json:"documents"`
}

type UploadResponse struct {
	OriginalName string `json:"original_name,omitempty"`
	Document     string `json:"document,omitempty"`
}

// EntityMap maps an entity category label to the ordered set of unique
// entity strings found for that category.
type EntityMap map[string][]string

type ReadabilityResult struct {
	Score      float64 `json:"score"`
	GradeLevel string  `json:"grade_level"`
	Assessment string  `json:"assessment"`
}

type SentimentResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type AnalyzeResponse struct {
	Document string      `json:"document"`
	Kind     string      `json:"kind"`
	Result   interface{} `json:"result"`
}
