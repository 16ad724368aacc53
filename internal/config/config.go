// Package config provides configuration for the call bridge server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the server configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Completion engine settings
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Telephony provider settings
	TelephonyBaseURL string
	TelephonyAPIKey  string
	TransferNumber   string

	// Turn processing
	TurnTimeout time.Duration

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Persona settings (swappable prompt text)
	BeginSentence string
	SystemPrompt  string
	AgentPrompt   string
	ReminderNudge string

	// Logging
	LogLevel string
}

// Default persona text. Overridable through environment variables so
// deployments can swap the agent's voice without a rebuild.
const (
	defaultBeginSentence = "Hello, I am your AI assistant. How can I help you today?"

	defaultSystemPrompt = "## Objective\n" +
		"You are a conversational voice AI agent speaking with a user over the phone. " +
		"Respond based on your given instruction and the provided transcript, and sound as human as possible.\n\n" +
		"## Style Guardrails\n" +
		"* Be concise: address one question or action item at a time, and keep responses short.\n" +
		"* Do not repeat: rephrase if you have to reiterate a point, and vary your sentence structure.\n" +
		"* Be conversational: speak like a human, with occasional filler words and without formal language.\n" +
		"* Be proactive: lead the conversation, and end each reply with a question or suggested next step.\n\n" +
		"## Response Guideline\n" +
		"* Overcome ASR errors: this is a real-time transcript and errors are expected. " +
		"Guess what the user is trying to say when you can, and ask for clarification colloquially when you cannot.\n" +
		"* Always stick to your role, and steer the conversation back to it when needed.\n" +
		"* Respond directly to what the user just said so the conversation flows naturally.\n\n" +
		"## Role\n"

	defaultAgentPrompt = "As a professional assistant for our clinic, your responsibilities are comprehensive " +
		"and client-centered. You answer questions about the clinic, help callers decide whether a visit is " +
		"right for them, and book appointments with the doctor when the caller asks for one. Keep every reply " +
		"under three sentences."

	defaultReminderNudge = "(Now the user has not responded in a while, you would say:)"
)

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:      getEnv("DATABASE_URL", "file:eunoia.db?cache=shared&mode=rwc"),
		LLMBaseURL:       getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:        getEnv("LLM_API_KEY", ""),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4o"),
		LLMTimeout:       time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,
		TelephonyBaseURL: getEnv("TELEPHONY_BASE_URL", "https://api.retellai.com"),
		TelephonyAPIKey:  getEnv("TELEPHONY_API_KEY", ""),
		TransferNumber:   getEnv("TRANSFER_NUMBER", ""),
		TurnTimeout:      time.Duration(getEnvInt("TURN_TIMEOUT_MS", 60000)) * time.Millisecond,
		PingInterval:     time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:     time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:      time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 120000)) * time.Millisecond,
		MaxMessageSize:   int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 262144)),
		BeginSentence:    getEnv("BEGIN_SENTENCE", defaultBeginSentence),
		SystemPrompt:     getEnv("SYSTEM_PROMPT", defaultSystemPrompt),
		AgentPrompt:      getEnv("AGENT_PROMPT", defaultAgentPrompt),
		ReminderNudge:    getEnv("REMINDER_NUDGE", defaultReminderNudge),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
