package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhilipWidoff/SmartPDF/types"
)

func historyOf(n int) []types.ConversationTurn {
	history := make([]types.ConversationTurn, 0, n)
	for i := 0; i < n; i++ {
		role := types.RoleHuman
		if i%2 == 1 {
			role = "ai"
		}
		history = append(history, types.ConversationTurn{
			Role:    role,
			Content: fmt.Sprintf("turn %d", i),
		})
	}
	return history
}

func TestBuildMemory_NewConversationIsAlwaysEmpty(t *testing.T) {
	for _, n := range []int{0, 1, 10, 100} {
		memory := BuildMemory(historyOf(n), true, 4)
		assert.Empty(t, memory, "history length %d", n)
	}
}

func TestBuildMemory_KeepsLastWindowTurnsInOrder(t *testing.T) {
	history := historyOf(10)
	memory := BuildMemory(history, false, 4)

	require.Len(t, memory, 4)
	for i, msg := range memory {
		assert.Equal(t, history[6+i].Content, msg.Content)
	}
}

func TestBuildMemory_ShortHistoryYieldsFewerTurns(t *testing.T) {
	history := historyOf(3)
	memory := BuildMemory(history, false, 4)

	require.Len(t, memory, 3)
	for i, msg := range memory {
		assert.Equal(t, history[i].Content, msg.Content)
	}
}

func TestBuildMemory_MapsRoles(t *testing.T) {
	history := []types.ConversationTurn{
		{Role: types.RoleHuman, Content: "hello"},
		{Role: "ai", Content: "hi"},
		{Role: "assistant", Content: "still here"},
		{Role: "HUMAN", Content: "case matters"},
	}
	memory := BuildMemory(history, false, 4)

	require.Len(t, memory, 4)
	assert.Equal(t, types.RoleUser, memory[0].Role)
	assert.Equal(t, types.RoleAssistant, memory[1].Role)
	assert.Equal(t, types.RoleAssistant, memory[2].Role)
	// Only the exact "human" tag maps to the user role.
	assert.Equal(t, types.RoleAssistant, memory[3].Role)
}

func TestBuildMemory_NeverExceedsWindow(t *testing.T) {
	for _, n := range []int{0, 4, 5, 50} {
		memory := BuildMemory(historyOf(n), false, 4)
		assert.LessOrEqual(t, len(memory), 4, "history length %d", n)
	}
}
