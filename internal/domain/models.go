// Package domain defines the persisted entities of the call bridge.
package domain

import "time"

// CallStatus represents the lifecycle state of a call.
type CallStatus string

// Call statuses.
const (
	CallStatusRegistered CallStatus = "registered"
	CallStatusOngoing    CallStatus = "ongoing"
	CallStatusEnded      CallStatus = "ended"
)

// Call end reasons.
const (
	EndReasonAgentHangup = "agent_hangup"
	EndReasonTransferred = "transferred"
	EndReasonChannelGone = "channel_closed"
)

// Call represents one registered phone call.
type Call struct {
	CallID    string     `json:"call_id"`
	AgentID   string     `json:"agent_id"`
	Status    CallStatus `json:"status"`
	EndReason string     `json:"end_reason,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Appointment represents an appointment booked during a call.
type Appointment struct {
	AppointmentID string    `json:"appointment_id"`
	CallID        string    `json:"call_id"`
	Date          string    `json:"date"` // year-month-day as spoken by the engine
	CreatedAt     time.Time `json:"created_at"`
}
