package service

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PhilipWidoff/SmartPDF/types"
)

// WebSocketService streams query answers over a websocket: answer deltas as
// they are generated, then a final citations frame.
type WebSocketService struct {
	indexes      IndexCache
	engine       StreamingAnswerEngine
	locator      Locator
	memoryWindow int
	upgrader     websocket.Upgrader
}

func NewWebSocketService(indexes IndexCache, engine StreamingAnswerEngine, locator Locator, memoryWindow int) *WebSocketService {
	if memoryWindow <= 0 {
		memoryWindow = DefaultMemoryWindow
	}
	return &WebSocketService{
		indexes:      indexes,
		engine:       engine,
		locator:      locator,
		memoryWindow: memoryWindow,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleQuery(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	// Set connection properties
	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			s.send(conn, types.TypeWebsocketError, "invalid frame")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketPing:
			s.send(conn, types.TypeWebsocketPong, nil)
		case types.TypeWebsocketQuery:
			payloadBytes, err := json.Marshal(req.Payload)
			if err != nil {
				s.send(conn, types.TypeWebsocketError, "invalid payload")
				continue
			}
			var query types.QueryRequest
			if err := json.Unmarshal(payloadBytes, &query); err != nil {
				s.send(conn, types.TypeWebsocketError, "invalid payload")
				continue
			}
			s.handleQuery(conn, r, query)
		default:
			s.send(conn, types.TypeWebsocketError, "unknown frame type")
		}
	}
}

func (s *WebSocketService) handleQuery(conn *websocket.Conn, r *http.Request, query types.QueryRequest) {
	if query.Question == "" || query.Document == "" {
		s.send(conn, types.TypeWebsocketError, "question and document are required")
		return
	}

	ctx := r.Context()
	if _, err := s.indexes.GetOrBuild(ctx, query.Document); err != nil {
		s.send(conn, types.TypeWebsocketError, err.Error())
		return
	}

	memory := BuildMemory(query.History, query.NewConversation, s.memoryWindow)
	answer, err := s.engine.AnswerStream(ctx, AnswerRequest{
		Document: query.Document,
		Question: query.Question,
		Memory:   memory,
	}, func(delta string) {
		s.send(conn, types.TypeWebsocketAnswer, types.WebSocketAnswerResponse{Delta: delta})
	})
	if err != nil {
		s.send(conn, types.TypeWebsocketError, err.Error())
		return
	}

	citations := s.locator.Locate(ctx, query.Document, answer)
	s.send(conn, types.TypeWebsocketCitations, types.WebSocketCitationsResponse{
		HasCitations: len(citations) > 0,
		Citations:    citations,
	})
}

func (s *WebSocketService) send(conn *websocket.Conn, frameType string, payload interface{}) {
	if err := conn.WriteJSON(types.WebSocketResponse{Type: frameType, Payload: payload}); err != nil {
		log.Printf("WebSocket write error: %v", err)
	}
}
