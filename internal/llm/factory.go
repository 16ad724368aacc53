package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvLLMMode is the environment variable name for mode selection.
	EnvLLMMode = "LLM_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "mock"
)

// NewCompletionClient creates a completion client based on the LLM_MODE
// environment variable. If LLM_MODE=mock, returns a MockClient so the server
// can run without a completion provider; otherwise returns a real Client.
func NewCompletionClient(baseURL, apiKey string, timeout time.Duration) CompletionClient {
	if os.Getenv(EnvLLMMode) == ModeMock {
		log.Println("LLM_MODE=mock detected, using mock completion client")
		return NewMockClient()
	}

	return NewClient(baseURL, apiKey, timeout)
}
