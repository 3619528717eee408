package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/PhilipWidoff/SmartPDF/database"
	"github.com/PhilipWidoff/SmartPDF/types"
)

// GeminiService is the alternative answering engine, selected with
// ai_backend: gemini. API keys rotate on failure.
type GeminiService struct {
	apiKeys        []string
	currentKey     int
	client         *genai.Client
	model          *genai.GenerativeModel
	functionsCall  map[string]types.FunctionHandler
	vectorDB       database.VectorIndex
	retrievalLimit int
	mu             sync.Mutex
}

func NewGeminiService(apiKeys []string, modelName string, vectorDB database.VectorIndex, retrievalLimit int) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}
	if retrievalLimit <= 0 {
		retrievalLimit = 5
	}

	service := &GeminiService{
		apiKeys:        apiKeys,
		currentKey:     0,
		functionsCall:  make(map[string]types.FunctionHandler),
		vectorDB:       vectorDB,
		retrievalLimit: retrievalLimit,
	}

	err := service.initClient()
	if err != nil {
		return nil, err
	}

	service.model = service.client.GenerativeModel(modelName)
	return service, nil
}

func (s *GeminiService) initClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		return err
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

// Answer implements the condense-and-retrieve strategy on top of a Gemini
// chat session.
func (s *GeminiService) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	prompt, err := s.buildAnswerPrompt(ctx, req)
	if err != nil {
		return "", err
	}
	return s.Chat(ctx, prompt+"\n\nQuestion: "+req.Question, req.Memory)
}

// AnswerStream streams the generated answer and returns the accumulated text.
func (s *GeminiService) AnswerStream(ctx context.Context, req AnswerRequest, handler types.StreamHandler) (string, error) {
	prompt, err := s.buildAnswerPrompt(ctx, req)
	if err != nil {
		return "", err
	}

	var full strings.Builder
	iter := s.model.GenerateContentStream(ctx, genai.Text(prompt+"\n\nQuestion: "+req.Question))
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if rerr := s.rotateAPIKey(); rerr != nil {
				return "", rerr
			}
			return "", err
		}
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					full.WriteString(string(text))
					handler(string(text))
				}
			}
		}
	}
	return full.String(), nil
}

func (s *GeminiService) buildAnswerPrompt(ctx context.Context, req AnswerRequest) (string, error) {
	question := req.Question
	if len(req.Memory) > 0 {
		condensed, err := s.Chat(ctx, condensePrompt, append(req.Memory, types.Message{
			Role:    types.RoleUser,
			Content: req.Question,
		}))
		if err != nil {
			log.Printf("Question condensation failed, using original question: %v", err)
		} else if strings.TrimSpace(condensed) != "" {
			question = strings.TrimSpace(condensed)
		}
	}

	chunks, err := s.vectorDB.SearchSimilar(ctx, question, req.Document, s.retrievalLimit)
	if err != nil {
		return "", fmt.Errorf("retrieval failed for %s: %w", req.Document, err)
	}

	var prompt strings.Builder
	prompt.WriteString(systemMessageDocumentAssistant.Content)
	prompt.WriteString(fmt.Sprintf("\n\nExcerpts from %q:\n\n", req.Document))
	for _, chunk := range chunks {
		prompt.WriteString(fmt.Sprintf("[page %d] %s\n\n", chunk.Page, chunk.Content))
	}
	return prompt.String(), nil
}

func (s *GeminiService) Chat(ctx context.Context, prompt string, messages []types.Message) (string, error) {
	// Convert messages to chat history
	history := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := "model"
		if msg.Role == types.RoleUser {
			role = "user"
		}
		history = append(history, &genai.Content{
			Parts: []genai.Part{genai.Text(msg.Content)},
			Role:  role,
		})
	}
	// Start chat
	chat := s.model.StartChat()
	chat.History = history

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		// Try rotating API key if there's an error
		if err := s.rotateAPIKey(); err != nil {
			return "", err
		}
		chat = s.model.StartChat()
		chat.History = history
		resp, err = chat.SendMessage(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	candidate := resp.Candidates[0]
	if funcs := candidate.FunctionCalls(); len(funcs) > 0 {
		resp, err = s.handleFunctionCall(ctx, chat, funcs)
		if err != nil {
			return "", err
		}
	}
	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					content += string(text)
				}
			}
		}
	}

	return content, nil
}

func (s *GeminiService) handleFunctionCall(ctx context.Context, chat *genai.ChatSession, functions []genai.FunctionCall) (*genai.GenerateContentResponse, error) {
	funcResults := []genai.Part{}
	for _, function := range functions {
		handler, exists := s.functionsCall[function.Name]
		if !exists {
			return nil, fmt.Errorf("unknown function: %s", function.Name)
		}

		// Convert args to JSON bytes first
		argsBytes, err := json.Marshal(function.Args)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal function args: %v", err)
		}
		// Execute the function
		result, err := handler(ctx, argsBytes)
		if err != nil {
			return nil, fmt.Errorf("function execution failed: %v", err)
		}
		funcResults = append(funcResults, genai.FunctionResponse{
			Name:     function.Name,
			Response: map[string]any{"result": result},
		})
	}
	// Generate final response with function result
	resp, err := chat.SendMessage(
		ctx,
		funcResults...,
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("no response generated")
	}
	candidate := resp.Candidates[0]
	if funcs := candidate.FunctionCalls(); len(funcs) > 0 {
		return s.handleFunctionCall(ctx, chat, funcs)
	}

	return resp, nil
}

// RegisterFunction adds a new function to the model's capabilities
func (s *GeminiService) RegisterFunction(name, description string, parameters map[string]*genai.Schema, handler types.FunctionHandler) {
	functionDeclaration := &genai.FunctionDeclaration{
		Name:        name,
		Description: description,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: parameters,
			Required:   make([]string, 0, len(parameters)),
		},
	}

	// Add required parameters
	for paramName := range parameters {
		functionDeclaration.Parameters.Required = append(
			functionDeclaration.Parameters.Required,
			paramName,
		)
	}

	// Create the tool with the function declaration
	tool := &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{functionDeclaration},
	}

	// Set the tool and function call handler
	s.model.Tools = append(s.model.Tools, tool)
	s.functionsCall[name] = handler
}
