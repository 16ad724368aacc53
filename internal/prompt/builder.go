// Package prompt builds completion requests from call transcripts.
package prompt

import (
	"github.com/kenniferm/eunoia-backend/internal/action"
	"github.com/kenniferm/eunoia-backend/internal/llm"
	"github.com/kenniferm/eunoia-backend/internal/protocol"
)

// Builder converts transcripts into ordered chat messages for the
// completion engine.
type Builder struct {
	systemPrompt  string
	reminderNudge string
}

// NewBuilder creates a builder with the configured persona text. The system
// prompt is the concatenation of the style instructions and the agent role.
func NewBuilder(systemPrompt, agentPrompt, reminderNudge string) *Builder {
	return &Builder{
		systemPrompt:  systemPrompt + agentPrompt,
		reminderNudge: reminderNudge,
	}
}

// Build produces the ordered message list for one completion pass.
// Transcript order is meaning-bearing and is preserved exactly. When
// priorCall is set (the re-entry pass after a function ran), the originating
// tool call and its result are replayed after the transcript so the engine
// can narrate the outcome.
func (b *Builder) Build(event *protocol.InboundEvent, priorCall *action.FunctionCall) []llm.ChatMessage {
	messages := []llm.ChatMessage{
		{Role: "system", Content: b.systemPrompt},
	}

	for _, turn := range event.Transcript {
		role := "user"
		if turn.Role == protocol.RoleAgent {
			role = "assistant"
		}
		messages = append(messages, llm.ChatMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	if priorCall != nil {
		messages = append(messages, llm.ChatMessage{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{
				{
					ID:   priorCall.ID,
					Type: "function",
					Function: llm.ToolCallFunction{
						Name:      priorCall.Name,
						Arguments: priorCall.ArgumentsJSON(),
					},
				},
			},
		})
		messages = append(messages, llm.ChatMessage{
			Role:       "tool",
			ToolCallID: priorCall.ID,
			Content:    priorCall.Result,
		})
	}

	if event.InteractionType == protocol.InteractionReminderRequired {
		messages = append(messages, llm.ChatMessage{
			Role:    "user",
			Content: b.reminderNudge,
		})
	}

	return messages
}
