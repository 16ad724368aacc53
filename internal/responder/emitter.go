package responder

import (
	"log"

	"github.com/kenniferm/eunoia-backend/internal/protocol"
)

// turnEmitter emits the response sequence for one turn. It enforces the
// channel invariants: exactly one message carries content_complete=true, it
// is the last message of the turn, and end_call may only ride on it.
type turnEmitter struct {
	channel    Channel
	callID     string
	responseID int
	terminated bool
}

func newTurnEmitter(channel Channel, callID string, responseID int) *turnEmitter {
	return &turnEmitter{
		channel:    channel,
		callID:     callID,
		responseID: responseID,
	}
}

// Fragment emits a non-final content fragment in arrival order.
func (e *turnEmitter) Fragment(content string) {
	if e.terminated {
		return
	}
	e.emit(protocol.OutboundResponse{
		ResponseID:      e.responseID,
		Content:         content,
		ContentComplete: false,
		EndCall:         false,
	})
}

// Final emits the terminal message of the turn. Further emissions are
// dropped.
func (e *turnEmitter) Final(content string, endCall bool) {
	if e.terminated {
		return
	}
	e.terminated = true
	e.emit(protocol.OutboundResponse{
		ResponseID:      e.responseID,
		Content:         content,
		ContentComplete: true,
		EndCall:         endCall,
	})
}

func (e *turnEmitter) emit(res protocol.OutboundResponse) {
	if err := e.channel.SendJSON(res); err != nil {
		log.Printf("WARN: failed to emit response_id=%d for call %s: %v", e.responseID, e.callID, err)
	}
}
