package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/PhilipWidoff/SmartPDF/database"
	"github.com/PhilipWidoff/SmartPDF/types"
)

var systemMessageDocumentAssistant = openai.ChatCompletionMessage{
	Role: openai.ChatMessageRoleSystem,
	Content: "You are a document assistant. You answer questions strictly from the " +
		"document excerpts provided to you. Every excerpt is labeled with its page " +
		"number; when your answer draws on an excerpt, say so explicitly, e.g. " +
		"\"on page 12\". If the excerpts do not contain the answer, say you do not know.",
}

const condensePrompt = "Given the conversation so far and a follow-up question, " +
	"rewrite the follow-up as a single standalone question. Reply with the " +
	"standalone question only."

type OpenAIService struct {
	client         *openai.Client
	functionsCall  map[string]types.FunctionHandler
	tools          []openai.Tool
	model          string
	vectorDB       database.VectorIndex
	retrievalLimit int
}

func NewOpenAIService(baseURL, apiKey, model string, vectorDB database.VectorIndex, retrievalLimit int) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL // Set this to your local LLM server URL
	}
	client := openai.NewClientWithConfig(config)
	if retrievalLimit <= 0 {
		retrievalLimit = 5
	}
	return &OpenAIService{
		client:         client,
		functionsCall:  make(map[string]types.FunctionHandler),
		tools:          make([]openai.Tool, 0),
		model:          model,
		vectorDB:       vectorDB,
		retrievalLimit: retrievalLimit,
	}
}

// Answer runs the condense-question strategy followed by retrieval-augmented
// completion: follow-ups are rewritten against the memory before retrieval so
// referential questions like "what about chapter 2" resolve correctly.
func (s *OpenAIService) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	messages, err := s.buildAnswerMessages(ctx, req)
	if err != nil {
		return "", err
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: messages,
			Tools:    s.tools,
			Model:    s.model,
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}

	if resp.Choices[0].FinishReason == openai.FinishReasonToolCalls {
		resp, err = s.handleFunctionCall(ctx, messages, resp)
		if err != nil {
			return "", err
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// AnswerStream is Answer with incremental delivery. Tool calls are not
// resolved on the streaming path.
func (s *OpenAIService) AnswerStream(ctx context.Context, req AnswerRequest, handler types.StreamHandler) (string, error) {
	messages, err := s.buildAnswerMessages(ctx, req)
	if err != nil {
		return "", err
	}

	stream, err := s.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{
			Messages: messages,
			Model:    s.model,
		},
	)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var full strings.Builder
	for {
		resp, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				return full.String(), nil
			}
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		full.WriteString(delta)
		handler(delta)
	}
}

// Chat is the plain conversational interface used by the analysis endpoints.
func (s *OpenAIService) Chat(ctx context.Context, prompt string, messages []types.Message) (string, error) {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompt,
	})
	openaiMessages = append(openaiMessages, toOpenAIMessages(messages)...)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: openaiMessages,
			Model:    s.model,
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) buildAnswerMessages(ctx context.Context, req AnswerRequest) ([]openai.ChatCompletionMessage, error) {
	question := req.Question
	if len(req.Memory) > 0 {
		condensed, err := s.condenseQuestion(ctx, req.Memory, req.Question)
		if err != nil {
			log.Printf("Question condensation failed, using original question: %v", err)
		} else if condensed != "" {
			question = condensed
		}
	}

	chunks, err := s.vectorDB.SearchSimilar(ctx, question, req.Document, s.retrievalLimit)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed for %s: %w", req.Document, err)
	}

	var excerpts strings.Builder
	excerpts.WriteString(fmt.Sprintf("Excerpts from %q:\n\n", req.Document))
	for _, chunk := range chunks {
		excerpts.WriteString(fmt.Sprintf("[page %d] %s\n\n", chunk.Page, chunk.Content))
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Memory)+3)
	messages = append(messages, systemMessageDocumentAssistant)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: excerpts.String(),
	})
	messages = append(messages, toOpenAIMessages(req.Memory)...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Question,
	})
	return messages, nil
}

func (s *OpenAIService) condenseQuestion(ctx context.Context, memory []types.Message, question string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(memory)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: condensePrompt,
	})
	messages = append(messages, toOpenAIMessages(memory)...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: messages,
			Model:    s.model,
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (s *OpenAIService) RegisterFunctionCall(name, description string, params jsonschema.Definition, handler types.FunctionHandler) {
	if s.functionsCall == nil {
		s.functionsCall = make(map[string]types.FunctionHandler)
	}
	f := openai.FunctionDefinition{
		Name:        name,
		Description: description,
		Parameters:  params,
	}
	t := openai.Tool{
		Type:     openai.ToolTypeFunction,
		Function: &f,
	}
	s.functionsCall[name] = handler
	s.tools = append(s.tools, t)
}

func (s *OpenAIService) handleFunctionCall(ctx context.Context, openaiMessages []openai.ChatCompletionMessage, resp openai.ChatCompletionResponse) (openai.ChatCompletionResponse, error) {
	openaiMessages = append(openaiMessages, resp.Choices[0].Message)
	for _, toolCall := range resp.Choices[0].Message.ToolCalls {
		if toolCall.Type == openai.ToolTypeFunction {
			handler := s.functionsCall[toolCall.Function.Name]
			if handler == nil {
				return openai.ChatCompletionResponse{}, errors.New("no handler found for function call")
			}
			result, err := handler(ctx, []byte(toolCall.Function.Arguments))
			if err != nil {
				return openai.ChatCompletionResponse{}, err
			}
			openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    fmt.Sprintf("%v", result),
				Name:       toolCall.Function.Name,
				ToolCallID: toolCall.ID,
			})
		}
	}
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: openaiMessages,
			Tools:    s.tools,
			Model:    s.model,
		},
	)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("no response generated")
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonToolCalls {
		return s.handleFunctionCall(ctx, openaiMessages, resp)
	}
	return resp, nil
}

func toOpenAIMessages(messages []types.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleAssistant
		if msg.Role == types.RoleUser {
			role = openai.ChatMessageRoleUser
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return out
}
