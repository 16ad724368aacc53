// Package responder implements the streaming response orchestrator: it owns
// the per-call session, turns inbound transcript events into completion
// requests, and streams ordered response fragments back to the call channel.
package responder

import (
	"context"
	"log"
	"sync"

	"github.com/kenniferm/eunoia-backend/internal/action"
	"github.com/kenniferm/eunoia-backend/internal/config"
	"github.com/kenniferm/eunoia-backend/internal/domain"
	"github.com/kenniferm/eunoia-backend/internal/llm"
	"github.com/kenniferm/eunoia-backend/internal/policy"
	"github.com/kenniferm/eunoia-backend/internal/prompt"
	"github.com/kenniferm/eunoia-backend/internal/protocol"
	"github.com/kenniferm/eunoia-backend/internal/store"
)

// Channel is the outbound side of the call channel. Messages sent through
// it are delivered in FIFO order.
type Channel interface {
	SendJSON(v interface{}) error
	Hangup()
}

// CallControl is the telephony capability the function executor needs.
type CallControl interface {
	EndCall(ctx context.Context, callID string) error
	TransferCall(ctx context.Context, callID string) error
}

// turnQueueSize bounds how many turn events may wait while one is in flight.
const turnQueueSize = 32

// Factory builds sessions with shared collaborators.
type Factory struct {
	cfg      *config.Config
	llm      llm.CompletionClient
	builder  *prompt.Builder
	registry *action.Registry
	policy   *policy.Engine
	control  CallControl
	store    store.Store
}

// NewFactory creates a session factory.
func NewFactory(cfg *config.Config, client llm.CompletionClient, registry *action.Registry, policyEngine *policy.Engine, control CallControl, st store.Store) *Factory {
	return &Factory{
		cfg:      cfg,
		llm:      client,
		builder:  prompt.NewBuilder(cfg.SystemPrompt, cfg.AgentPrompt, cfg.ReminderNudge),
		registry: registry,
		policy:   policyEngine,
		control:  control,
		store:    st,
	}
}

// NewSession creates a session for one call and starts its turn loop.
func (f *Factory) NewSession(callID string, channel Channel) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		callID:   callID,
		channel:  channel,
		cfg:      f.cfg,
		llm:      f.llm,
		builder:  f.builder,
		registry: f.registry,
		policy:   f.policy,
		control:  f.control,
		store:    f.store,
		turns:    make(chan *protocol.InboundEvent, turnQueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	go s.run()
	return s
}

// Session owns the lifecycle of one call: the greeting, the FIFO turn queue,
// and at most one completion stream in flight at a time.
type Session struct {
	callID   string
	channel  Channel
	cfg      *config.Config
	llm      llm.CompletionClient
	builder  *prompt.Builder
	registry *action.Registry
	policy   *policy.Engine
	control  CallControl
	store    store.Store

	turns chan *protocol.InboundEvent

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Greet sends the fixed opening line. It must be called before any inbound
// event is dispatched so the counterpart always hears the agent first.
func (s *Session) Greet() {
	s.send(protocol.OutboundResponse{
		ResponseID:      0,
		Content:         s.cfg.BeginSentence,
		ContentComplete: true,
		EndCall:         false,
	})
}

// HandleEvent dispatches one inbound event by interaction type.
func (s *Session) HandleEvent(ev *protocol.InboundEvent) {
	switch ev.InteractionType {
	case protocol.InteractionPingPong:
		// Echoed immediately; never queued behind an in-flight turn.
		s.send(protocol.NewPingPong(ev.Timestamp))

	case protocol.InteractionCallDetails:
		if s.store != nil {
			if err := s.store.UpdateCallStatus(s.ctx, s.callID, domain.CallStatusOngoing); err != nil {
				log.Printf("WARN: failed to mark call %s ongoing: %v", s.callID, err)
			}
		}

	case protocol.InteractionUpdateOnly:
		// Transcript bookkeeping only; the next event carries the full
		// transcript again, so there is nothing to do.

	case protocol.InteractionResponseRequired, protocol.InteractionReminderRequired:
		select {
		case s.turns <- ev:
		default:
			log.Printf("WARN: turn queue full for call %s, dropping response_id=%d", s.callID, ev.ResponseID)
		}

	default:
		log.Printf("WARN: unknown interaction_type %q for call %s", ev.InteractionType, s.callID)
	}
}

// Close stops the session. In-flight stream consumption is cancelled; a
// side effect that already started runs to completion.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
	})
}

// run consumes the turn queue sequentially, one completion in flight at a
// time.
func (s *Session) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.turns:
			turnCtx, cancel := context.WithTimeout(s.ctx, s.cfg.TurnTimeout)
			s.respondTurn(turnCtx, ev)
			cancel()
		}
	}
}

func (s *Session) send(v interface{}) {
	if err := s.channel.SendJSON(v); err != nil {
		log.Printf("WARN: failed to send to call %s: %v", s.callID, err)
	}
}
