// Package advisor runs the conversational money checkup against a generative
// language model.
//
// All conversation state lives in Session values owned by the caller. The
// Advisor itself is stateless, so one instance serves every user.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrQuotaExceeded means the provider rejected the call for rate or quota reasons.
	ErrQuotaExceeded = errors.New("advisor: quota exceeded")
	// ErrModelUnavailable means the requested model does not exist or refused the request.
	ErrModelUnavailable = errors.New("advisor: model unavailable")
	// ErrNoSession is returned by Reply before a checkup has started the conversation.
	ErrNoSession = errors.New("advisor: conversation has not started")
	// ErrUnknownModel is returned by Reply when the session names a model this
	// Advisor was not configured with.
	ErrUnknownModel = errors.New("advisor: session model is not offered")
)

// Role is the speaker of one Turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Session is a conversation with one model. The zero Session has not started.
type Session struct {
	Model   string `json:"model"`
	History []Turn `json:"history"`
}

// Started reports whether a checkup has opened the conversation.
func (s Session) Started() bool {
	return s.Model != "" && len(s.History) > 0
}

// Provider generates the next model turn for a conversation.
type Provider interface {
	Generate(ctx context.Context, model string, history []Turn) (string, error)
}

// Advisor opens and continues checkup conversations.
type Advisor struct {
	provider Provider
	model    string
	fallback string
}

// New creates an Advisor that asks model first and retries the checkup with
// fallback when model is unavailable. An empty fallback disables the retry.
func New(provider Provider, model, fallback string) *Advisor {
	return &Advisor{provider: provider, model: model, fallback: fallback}
}

// Checkup starts a new conversation seeded with the month's snapshot and
// returns it together with the model's first reply.
func (a *Advisor) Checkup(ctx context.Context, snap Snapshot) (Session, string, error) {
	s, reply, err := a.open(ctx, a.model, CheckupPrompt(snap))
	if errors.Is(err, ErrModelUnavailable) && a.fallback != "" {
		s, reply, err = a.open(ctx, a.fallback, FallbackPrompt(snap))
	}
	if err != nil {
		return Session{}, "", err
	}
	return s, reply, nil
}

// Reply continues s with message. The input session is not modified.
func (a *Advisor) Reply(ctx context.Context, s Session, message string) (Session, string, error) {
	if !s.Started() {
		return Session{}, "", ErrNoSession
	}
	if !a.offers(s.Model) {
		return Session{}, "", fmt.Errorf("%w: %q", ErrUnknownModel, s.Model)
	}
	history := append(slices.Clone(s.History), Turn{Role: RoleUser, Text: message})
	reply, err := a.provider.Generate(ctx, s.Model, history)
	if err != nil {
		return Session{}, "", fmt.Errorf("continue conversation: %w", err)
	}
	return Session{Model: s.Model, History: append(history, Turn{Role: RoleModel, Text: reply})}, reply, nil
}

func (a *Advisor) offers(model string) bool {
	return model == a.model || (a.fallback != "" && model == a.fallback)
}

func (a *Advisor) open(ctx context.Context, model, prompt string) (Session, string, error) {
	history := []Turn{{Role: RoleUser, Text: prompt}}
	reply, err := a.provider.Generate(ctx, model, history)
	if err != nil {
		return Session{}, "", fmt.Errorf("checkup with %s: %w", model, err)
	}
	return Session{Model: model, History: append(history, Turn{Role: RoleModel, Text: reply})}, reply, nil
}
