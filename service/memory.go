package service

import "github.com/PhilipWidoff/SmartPDF/types"

// DefaultMemoryWindow bounds how many prior turns are replayed to the
// answering engine, roughly two human/assistant exchanges.
const DefaultMemoryWindow = 4

// BuildMemory derives the bounded conversation memory handed to the answering
// engine. A new conversation always starts empty; otherwise the last window
// turns of the supplied history are kept in original order, with the "human"
// role mapped to the user role and every other role to the assistant role.
func BuildMemory(history []types.ConversationTurn, isNewConversation bool, window int) []types.Message {
	if isNewConversation {
		return nil
	}
	if window <= 0 {
		window = DefaultMemoryWindow
	}
	start := 0
	if len(history) > window {
		start = len(history) - window
	}

	memory := make([]types.Message, 0, len(history)-start)
	for _, turn := range history[start:] {
		role := types.RoleAssistant
		if turn.Role == types.RoleHuman {
			role = types.RoleUser
		}
		memory = append(memory, types.Message{
			Role:    role,
			Content: turn.Content,
		})
	}
	return memory
}
