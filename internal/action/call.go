// Package action defines the callable functions offered to the completion
// engine and the executors that carry out their side effects.
package action

import (
	"encoding/json"
	"fmt"
)

// Function names the engine may select.
const (
	NameEndCall         = "end_call"
	NameTransferCall    = "transfer_call"
	NameBookAppointment = "book_appointment"
)

// FunctionCall is an assembled function call extracted from a completion
// stream: created when the stream first emits a tool-call identifier,
// finalized once the argument buffer parses, and consumed by the executor.
type FunctionCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
	Result    string
}

// ParseArguments finalizes the draft by decoding the accumulated argument
// buffer.
func (f *FunctionCall) ParseArguments(raw string) error {
	if raw == "" {
		raw = "{}"
	}
	args := make(map[string]interface{})
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return fmt.Errorf("failed to parse arguments for %s: %w", f.Name, err)
	}
	f.Arguments = args
	return nil
}

// StringArg returns a string argument by key, or "" when absent.
func (f *FunctionCall) StringArg(key string) string {
	if v, ok := f.Arguments[key].(string); ok {
		return v
	}
	return ""
}

// Message returns the spoken message the engine attached to the call.
func (f *FunctionCall) Message() string {
	return f.StringArg("message")
}

// ArgumentsJSON re-encodes the parsed arguments for the re-entry prompt.
func (f *FunctionCall) ArgumentsJSON() string {
	data, err := json.Marshal(f.Arguments)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Terminal reports whether the function ends the turn without a second
// completion pass.
func Terminal(name string) bool {
	return name == NameEndCall || name == NameTransferCall
}
