// Package chat answers one question at a time using the asker's stored
// history and records the exchange.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"fitness-chatter/internal/history"
	"fitness-chatter/internal/llm"
)

// ErrCompletion marks failures of the completion provider.
var ErrCompletion = errors.New("completion provider error")

const defaultWriteRetries = 3

type Service struct {
	store history.Store
	llm   llm.Client

	now          func() time.Time
	newID        func() string
	writeBackOff func() backoff.BackOff
}

type Option func(*Service)

// WithClock overrides the time source used to stamp turns.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs overrides exchange id generation.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithWriteBackOff sets the retry policy for persisting an exchange.
func WithWriteBackOff(b func() backoff.BackOff) Option {
	return func(s *Service) { s.writeBackOff = b }
}

func NewService(store history.Store, client llm.Client, opts ...Option) *Service {
	s := &Service{
		store: store,
		llm:   client,
		now:   func() time.Time { return time.Now().UTC() },
		newID: newExchangeID,
		writeBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), defaultWriteRetries)
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Reply answers question for userID and records both turns of the exchange.
func (s *Service) Reply(ctx context.Context, userID, question string) (string, error) {
	turns, err := s.store.History(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	resp, err := s.llm.Generate(ctx, BuildPrompt(turns, question))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompletion, err)
	}
	log.Printf("LLM response for %s [model=%s, tokens: prompt=%d, completion=%d, total=%d, history=%d]",
		userID, resp.Model, resp.PromptTokens, resp.CompletionTokens, resp.TotalTokens, len(turns))

	// the reply is already paid for; a client hanging up must not drop it
	if err := s.persist(context.WithoutCancel(ctx), userID, question, resp.Content); err != nil {
		return "", fmt.Errorf("save exchange: %w", err)
	}
	return resp.Content, nil
}

// persist appends the user and assistant turns in one store call. Both turns
// carry ids derived from one exchange id, so retries cannot duplicate them.
func (s *Service) persist(ctx context.Context, userID, question, answer string) error {
	exchange := s.newID()
	ts := s.now()
	turns := []history.Turn{
		{ID: exchange + ":0", UserID: userID, Role: history.RoleUser, Message: question, Timestamp: ts},
		{ID: exchange + ":1", UserID: userID, Role: history.RoleAssistant, Message: answer, Timestamp: ts},
	}

	op := func() error {
		err := s.store.Append(ctx, turns...)
		if err != nil && !errors.Is(err, history.ErrStoreUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Printf("append exchange %s for %s failed, retrying in %s: %v", exchange, userID, wait, err)
	}
	return backoff.RetryNotify(op, backoff.WithContext(s.writeBackOff(), ctx), notify)
}

func newExchangeID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
