package action

import "github.com/kenniferm/eunoia-backend/internal/llm"

// Catalog returns the function definitions passed to the completion engine
// alongside every prompt. The engine may choose at most one per turn.
func Catalog() []llm.Tool {
	return []llm.Tool{
		{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        NameEndCall,
				Description: "End the call only when user explicitly requests it.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"message": map[string]interface{}{
							"type":        "string",
							"description": "The message you will say before ending the call with the customer.",
						},
					},
					"required": []string{"message"},
				},
			},
		},
		{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        NameTransferCall,
				Description: "Transfer the call to a human agent when the user asks for one.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"message": map[string]interface{}{
							"type":        "string",
							"description": "The message you will say before transferring the call.",
						},
					},
					"required": []string{"message"},
				},
			},
		},
		{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        NameBookAppointment,
				Description: "Book an appointment to meet our doctor in office.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"message": map[string]interface{}{
							"type":        "string",
							"description": "The message you will say while setting up the appointment like 'one moment'.",
						},
						"date": map[string]interface{}{
							"type":        "string",
							"description": "The date of appointment to make in forms of year-month-day.",
						},
					},
					"required": []string{"message"},
				},
			},
		},
	}
}
