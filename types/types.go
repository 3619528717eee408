package types

import "context"

const (
	TypeWebsocketPing      = "ping"
	TypeWebsocketPong      = "pong"
	TypeWebsocketQuery     = "query"
	TypeWebsocketAnswer    = "answer"
	TypeWebsocketCitations = "citations"
	TypeWebsocketError     = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketAnswerResponse struct {
	Delta string `json:"delta"`
}

type WebSocketCitationsResponse struct {
	HasCitations bool       `json:"has_citations"`
	Citations    []Citation `json:"citations"`
}

// FunctionHandler is a type for handling function calls
type FunctionHandler func(ctx context.Context, args []byte) (any, error)

// StreamHandler consumes incremental answer fragments.
type StreamHandler func(response string)
