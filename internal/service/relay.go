package service

import (
	"context"
	"errors"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/xiaot623/gogo/chatrelay/internal/adapter/webhook"
	"github.com/xiaot623/gogo/chatrelay/internal/domain"
	"github.com/xiaot623/gogo/chatrelay/internal/extract"
	"github.com/xiaot623/gogo/chatrelay/internal/stream"
	"github.com/xiaot623/gogo/chatrelay/policy"
)

const noAnswerMessage = "The assistant response could not be read."

// Relay runs one request to completion and returns its final ledger record.
//
// Every relay ends with exactly one complete or error event, unless the client
// went away first, in which case nothing more is written and the relay is
// CANCELLED. The ledger is written with a context that outlives the request so
// that cancelled relays are still traced.
func (s *Service) Relay(ctx context.Context, req *domain.ChatRequest, emitter stream.Emitter) *domain.Relay {
	if req == nil {
		req = &domain.ChatRequest{}
	}
	ledgerCtx := context.WithoutCancel(ctx)

	relay := &domain.Relay{
		RelayID:        "rly_" + uuid.New().String()[:8],
		ConversationID: req.ConversationIDValue(),
		State:          domain.RelayStateIdle,
		MessageLength:  utf8.RuneCountInString(req.Message),
		StartedAt:      time.Now(),
	}
	if err := s.store.CreateRelay(ledgerCtx, relay); err != nil {
		log.Printf("WARN: failed to create relay %s: %v", relay.RelayID, err)
	}

	settings := req.ResolveSettings(s.defaultSettings())
	s.recordEvent(ledgerCtx, relay.RelayID, domain.LedgerEventRelayStarted, domain.RelayStartedPayload{
		ConversationID: relay.ConversationID,
		MessageLength:  relay.MessageLength,
		Settings:       settings,
	})

	if rerr := s.admit(ctx, req, settings); rerr != nil {
		s.fail(ctx, ledgerCtx, relay, emitter, rerr, nil)
		return relay
	}

	body, rerr := s.callUpstream(ctx, ledgerCtx, relay, req.Message, settings)
	if rerr != nil {
		if ctx.Err() != nil {
			s.cancel(ledgerCtx, relay, 0, "client disconnected during upstream call")
			return relay
		}
		s.fail(ctx, ledgerCtx, relay, emitter, rerr, nil)
		return relay
	}

	s.transition(ledgerCtx, relay, domain.RelayStateEmitting)

	payload, err := extract.Decode(body)
	if err != nil {
		log.Printf("WARN: relay %s: upstream payload is not JSON (%d bytes): %v", relay.RelayID, len(body), err)
		s.fail(ctx, ledgerCtx, relay, emitter, domain.NewRelayError(domain.ErrorCodeStream, noAnswerMessage, err), nil)
		return relay
	}

	answer, err := extract.Extract(payload)
	if err != nil {
		var noAnswer *extract.NoAnswerError
		var keys []string
		if errors.As(err, &noAnswer) {
			keys = noAnswer.Keys
		}
		log.Printf("WARN: relay %s: no answer in upstream payload, keys=%v", relay.RelayID, keys)
		s.fail(ctx, ledgerCtx, relay, emitter, domain.NewRelayError(domain.ErrorCodeStream, noAnswerMessage, err), keys)
		return relay
	}
	answerKey, _ := extract.Strategy(payload)

	chunks := s.chunker.Split(answer.Text)
	events := make([]domain.Event, 0, len(chunks)+3)
	for _, c := range chunks {
		events = append(events, domain.MessageEvent(c))
	}
	if len(answer.Sources) > 0 {
		events = append(events, domain.SourcesEvent(answer.Sources))
	}
	if answer.Usage != nil {
		events = append(events, domain.UsageEvent(*answer.Usage))
	}
	events = append(events, domain.CompleteEvent())

	for i, ev := range events {
		if err := emitter.Emit(ctx, ev); err != nil {
			s.cancel(ledgerCtx, relay, i, err.Error())
			return relay
		}
	}

	relay.ChunkCount = len(chunks)
	log.Printf("relay %s done: key=%s chunks=%d sources=%d", relay.RelayID, answerKey, len(chunks), len(answer.Sources))
	s.finish(ledgerCtx, relay, domain.RelayStateDone, "")
	s.recordEvent(ledgerCtx, relay.RelayID, domain.LedgerEventRelayDone, domain.RelayDonePayload{
		ChunkCount:  len(chunks),
		SourceCount: len(answer.Sources),
		Usage:       answer.Usage,
	})
	return relay
}

// admit runs the checks that must pass before the upstream is called.
func (s *Service) admit(ctx context.Context, req *domain.ChatRequest, settings domain.Settings) *domain.RelayError {
	if !req.HasMessage() {
		return domain.NewRelayError(domain.ErrorCodeValidation, "Message is required", nil)
	}
	if err := settings.Validate(); err != nil {
		return domain.NewRelayError(domain.ErrorCodeValidation, err.Error(), err)
	}

	if s.policyEngine != nil {
		decision, err := s.policyEngine.Evaluate(ctx, policy.Input{
			MessageLength:   utf8.RuneCountInString(req.Message),
			TopK:            settings.TopK,
			Temperature:     settings.Temperature,
			HasConversation: req.ConversationIDValue() != "",
			Limits: policy.Limits{
				MaxMessageLength:    s.config.MaxMessageLength,
				MaxTopK:             s.config.MaxTopK,
				RequireConversation: s.config.RequireConversationID,
			},
		})
		if err != nil {
			return domain.NewRelayError(domain.ErrorCodeInternal, "Request could not be checked", err)
		}
		if !decision.Allow {
			return domain.NewRelayError(domain.ErrorCodeValidation, decision.Reason, nil)
		}
	}

	if s.upstream == nil || s.upstream.Endpoint() == "" {
		return domain.NewRelayError(domain.ErrorCodeConfig, "Upstream webhook is not configured", webhook.ErrNotConfigured)
	}
	return nil
}

// callUpstream makes the single webhook call of a relay.
func (s *Service) callUpstream(ctx, ledgerCtx context.Context, relay *domain.Relay, message string, settings domain.Settings) ([]byte, *domain.RelayError) {
	s.transition(ledgerCtx, relay, domain.RelayStateAwaitingUpstream)
	s.recordEvent(ledgerCtx, relay.RelayID, domain.LedgerEventUpstreamCallStarted, domain.UpstreamCallStartedPayload{
		Endpoint: s.upstream.Endpoint(),
	})

	start := time.Now()
	body, err := s.upstream.Send(ctx, domain.NewUpstreamRequest(message, settings))

	done := domain.UpstreamCallDonePayload{
		LatencyMs:     time.Since(start).Milliseconds(),
		ResponseBytes: len(body),
	}
	if err != nil {
		done.Error = err.Error()
	}
	s.recordEvent(ledgerCtx, relay.RelayID, domain.LedgerEventUpstreamCallDone, done)

	if err != nil {
		return nil, domain.NewRelayError(domain.ErrorCodeUpstream, upstreamMessage(err), err)
	}
	return body, nil
}

// upstreamMessage passes a non-empty upstream body through verbatim.
func upstreamMessage(err error) string {
	var statusErr *webhook.StatusError
	if errors.As(err, &statusErr) && statusErr.Body != "" {
		return statusErr.Body
	}
	return err.Error()
}

// fail sends the single error event of a relay and records the failure.
func (s *Service) fail(ctx, ledgerCtx context.Context, relay *domain.Relay, emitter stream.Emitter, rerr *domain.RelayError, keys []string) {
	if rerr.Code == domain.ErrorCodeValidation {
		log.Printf("WARN: relay %s rejected: %v", relay.RelayID, rerr)
	} else {
		log.Printf("ERROR: relay %s failed: %v", relay.RelayID, rerr)
	}

	if err := emitter.Emit(ctx, rerr.Event()); err != nil {
		s.cancel(ledgerCtx, relay, 0, err.Error())
		return
	}

	s.finish(ledgerCtx, relay, domain.RelayStateErrored, rerr.Code)
	s.recordEvent(ledgerCtx, relay.RelayID, domain.LedgerEventRelayFailed, domain.RelayFailedPayload{
		Code:    rerr.Code,
		Message: rerr.Message,
		Keys:    keys,
	})
}

// cancel records that the client went away. Nothing is emitted.
func (s *Service) cancel(ledgerCtx context.Context, relay *domain.Relay, eventsSent int, reason string) {
	log.Printf("WARN: relay %s cancelled in %s after %d events: %s", relay.RelayID, relay.State, eventsSent, reason)
	state := relay.State
	s.finish(ledgerCtx, relay, domain.RelayStateCancelled, "")
	s.recordEvent(ledgerCtx, relay.RelayID, domain.LedgerEventRelayCancelled, domain.RelayCancelledPayload{
		State:      state,
		EventsSent: eventsSent,
		Reason:     reason,
	})
}
