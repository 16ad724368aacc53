package responder

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/kenniferm/eunoia-backend/internal/action"
	"github.com/kenniferm/eunoia-backend/internal/domain"
	"github.com/kenniferm/eunoia-backend/internal/llm"
	"github.com/kenniferm/eunoia-backend/internal/policy"
	"github.com/kenniferm/eunoia-backend/internal/protocol"
)

// Sampling parameters for every completion pass.
var (
	temperature      = 0.5
	maxTokens        = 500
	frequencyPenalty = 1.0
)

// errStreamDone stops stream consumption once a function call is committed.
var errStreamDone = errors.New("stream consumption complete")

// maxReentries bounds how many narration passes one turn may trigger.
const maxReentries = 1

// respondTurn processes one response_required/reminder_required event
// through to its terminal message, including the bounded re-entry pass
// after a function executes. One emitter spans all passes of the turn so
// the terminal invariant holds over the whole sequence.
func (s *Session) respondTurn(ctx context.Context, ev *protocol.InboundEvent) {
	em := newTurnEmitter(s.channel, s.callID, ev.ResponseID)

	var prior *action.FunctionCall
	for depth := 0; ; depth++ {
		next := s.pass(ctx, ev, em, prior, depth)
		if next == nil {
			return
		}
		prior = next
	}
}

// pass runs one completion pass: build the prompt, consume the stream, and
// finalize. It returns a result-bearing function call when a narration pass
// should follow, or nil when the turn is terminated.
func (s *Session) pass(ctx context.Context, ev *protocol.InboundEvent, em *turnEmitter, prior *action.FunctionCall, depth int) *action.FunctionCall {
	req := &llm.ChatCompletionRequest{
		Model:            s.cfg.LLMModel,
		Messages:         s.builder.Build(ev, prior),
		Temperature:      &temperature,
		MaxTokens:        &maxTokens,
		FrequencyPenalty: &frequencyPenalty,
		Tools:            action.Catalog(),
	}

	var draft *action.FunctionCall
	var args strings.Builder

	err := s.llm.CreateChatCompletionStream(ctx, req, func(chunk *llm.StreamChunk) error {
		if len(chunk.Choices) == 0 {
			return nil
		}
		delta := chunk.Choices[0].Delta
		if delta == nil {
			return nil
		}

		if len(delta.ToolCalls) > 0 {
			toolCall := delta.ToolCalls[0]
			if toolCall.ID != "" {
				if draft != nil {
					// A second call identifier means the first call is
					// complete; one function per turn, stop consuming.
					return errStreamDone
				}
				draft = &action.FunctionCall{
					ID:   toolCall.ID,
					Name: toolCall.Function.Name,
				}
			} else if draft != nil {
				args.WriteString(toolCall.Function.Arguments)
			}
			return nil
		}

		// Plain content is forwarded as it arrives; once a function call
		// has begun the engine has committed to it and stray content is
		// ignored.
		if delta.Content != "" && draft == nil {
			em.Fragment(delta.Content)
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStreamDone) {
		// Partial content already emitted stands; finalization below still
		// produces the terminal message.
		log.Printf("Error in completion stream for call %s: %v", s.callID, err)
	}

	return s.finalize(ctx, em, draft, args.String(), depth)
}

// finalize closes out a completion pass: it either terminates the turn or
// executes the assembled function call and hands back the result for the
// narration pass.
func (s *Session) finalize(ctx context.Context, em *turnEmitter, draft *action.FunctionCall, rawArgs string, depth int) *action.FunctionCall {
	if draft == nil {
		em.Final("", false)
		return nil
	}

	if err := draft.ParseArguments(rawArgs); err != nil {
		log.Printf("Error parsing function arguments for call %s: %v", s.callID, err)
		em.Final("", false)
		return nil
	}

	if !action.Terminal(draft.Name) && !s.registry.Has(draft.Name) {
		log.Printf("Unknown function %q selected by engine for call %s", draft.Name, s.callID)
		em.Final("", false)
		return nil
	}

	if blocked := s.blockedByPolicy(ctx, draft); blocked {
		log.Printf("Function %q blocked by policy for call %s", draft.Name, s.callID)
		em.Final("", false)
		return nil
	}

	switch draft.Name {
	case action.NameEndCall:
		em.Final(draft.Message(), true)
		s.hangup(domain.EndReasonAgentHangup)
		return nil

	case action.NameTransferCall:
		em.Final(draft.Message(), false)
		s.transfer()
		return nil

	default:
		// Acknowledge before the side effect so the counterpart hears
		// something while the action runs.
		em.Fragment(draft.Message())

		// The side effect runs to completion even if the channel goes away
		// mid-execution.
		execCtx, cancel := context.WithTimeout(context.Background(), s.cfg.TurnTimeout)
		result, err := s.registry.Execute(execCtx, s.callID, draft)
		cancel()
		if err != nil {
			log.Printf("Function %q failed for call %s: %v", draft.Name, s.callID, err)
			result = "The action failed: " + err.Error()
		}
		draft.Result = result

		if depth >= maxReentries {
			log.Printf("WARN: re-entry limit reached for call %s, terminating turn", s.callID)
			em.Final("", false)
			return nil
		}
		return draft
	}
}

// blockedByPolicy evaluates the action policy; evaluation errors fail open
// with a warning so a broken policy does not silence the agent.
func (s *Session) blockedByPolicy(ctx context.Context, call *action.FunctionCall) bool {
	if s.policy == nil {
		return false
	}
	decision, err := s.policy.Evaluate(ctx, map[string]interface{}{
		"function_name": call.Name,
		"args":          call.Arguments,
		"call_id":       s.callID,
		"after_hours":   afterHours(time.Now()),
	})
	if err != nil {
		log.Printf("WARN: policy evaluation failed for call %s: %v", s.callID, err)
		return false
	}
	return decision == policy.DecisionBlock
}

// hangup terminates the call after the closing message has been queued.
func (s *Session) hangup(reason string) {
	if s.control != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.control.EndCall(ctx, s.callID); err != nil {
			log.Printf("WARN: telephony end call failed for %s: %v", s.callID, err)
		}
		cancel()
	}
	if s.store != nil {
		if err := s.store.EndCall(context.Background(), s.callID, reason); err != nil {
			log.Printf("WARN: failed to record call end for %s: %v", s.callID, err)
		}
	}
	s.channel.Hangup()
}

// transfer hands the call leg to the telephony provider; the provider
// closes this channel once the transfer completes.
func (s *Session) transfer() {
	if s.control != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.control.TransferCall(ctx, s.callID); err != nil {
			log.Printf("WARN: telephony transfer failed for %s: %v", s.callID, err)
		}
		cancel()
	}
	if s.store != nil {
		if err := s.store.EndCall(context.Background(), s.callID, domain.EndReasonTransferred); err != nil {
			log.Printf("WARN: failed to record call transfer for %s: %v", s.callID, err)
		}
	}
}

// afterHours reports whether the clinic is closed; policy input only.
func afterHours(now time.Time) bool {
	hour := now.Hour()
	return hour < 9 || hour >= 17
}
