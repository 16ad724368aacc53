// Package protocol defines the message shapes exchanged with the voice-call channel.
package protocol

// Interaction types sent by the call channel.
const (
	InteractionCallDetails      = "call_details"
	InteractionPingPong         = "ping_pong"
	InteractionUpdateOnly       = "update_only"
	InteractionResponseRequired = "response_required"
	InteractionReminderRequired = "reminder_required"
)

// Utterance roles.
const (
	RoleAgent = "agent"
	RoleUser  = "user"
)

// Response types for non-turn outbound messages.
const (
	ResponseTypeConfig   = "config"
	ResponseTypePingPong = "ping_pong"
)

// Utterance is one recorded turn of the conversation transcript.
type Utterance struct {
	Role    string `json:"role"` // agent, user
	Content string `json:"content"`
}

// InboundEvent is one message received from the call channel.
type InboundEvent struct {
	InteractionType string      `json:"interaction_type"`
	ResponseID      int         `json:"response_id,omitempty"`
	Transcript      []Utterance `json:"transcript,omitempty"`
	Timestamp       int64       `json:"timestamp,omitempty"`
}

// OutboundResponse is one response fragment sent back on the call channel.
// The last fragment of a turn carries ContentComplete=true; EndCall may
// only appear on that final fragment.
type OutboundResponse struct {
	ResponseID      int    `json:"response_id"`
	Content         string `json:"content"`
	ContentComplete bool   `json:"content_complete"`
	EndCall         bool   `json:"end_call"`
}

// PingPongResponse echoes a ping_pong event back with the same timestamp.
type PingPongResponse struct {
	ResponseType string `json:"response_type"`
	Timestamp    int64  `json:"timestamp"`
}

// ConfigResponse is sent once when the channel opens, before the greeting.
type ConfigResponse struct {
	ResponseType string       `json:"response_type"`
	Config       ConfigFields `json:"config"`
}

// ConfigFields announces channel capabilities to the call provider.
type ConfigFields struct {
	AutoReconnect bool `json:"auto_reconnect"`
	CallDetails   bool `json:"call_details"`
}

// NewConfigResponse builds the one-time channel configuration announcement.
func NewConfigResponse() ConfigResponse {
	return ConfigResponse{
		ResponseType: ResponseTypeConfig,
		Config: ConfigFields{
			AutoReconnect: true,
			CallDetails:   true,
		},
	}
}

// NewPingPong builds the echo for a ping_pong event.
func NewPingPong(timestamp int64) PingPongResponse {
	return PingPongResponse{
		ResponseType: ResponseTypePingPong,
		Timestamp:    timestamp,
	}
}
