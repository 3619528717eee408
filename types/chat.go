package types

// Role tags accepted in a conversation history supplied by the caller.
// Anything that is not RoleHuman maps to the assistant role.
const (
	RoleHuman     = "human"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one entry of the caller-supplied conversation history.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message represents a single message in the conversation sent to an AI engine.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryRequest is the payload of POST /api/v1/query. History is supplied
// wholesale on every request; nothing is persisted server-side.
type QueryRequest struct {
	Question        string             `json:"question"`
	Document        string             `json:"document"`
	History         []ConversationTurn `json:"history"`
	NewConversation bool               `json:"new_conversation"`
}

// QueryResult carries the answer plus any resolved page citations.
type QueryResult struct {
	Question     string     `json:"question"`
	Answer       string     `json:"answer"`
	HasCitations bool       `json:"has_citations"`
	Citations    []Citation `json:"citations"`
}
