package services

import (
	"context"
	"errors"

	"orbit/internal/advisor"
	"orbit/internal/aggregate"
	apperrors "orbit/internal/errors"
	"orbit/internal/ledger"
	"orbit/internal/logger"
)

// AdvisorReply is one advisor answer together with the updated conversation.
type AdvisorReply struct {
	Session advisor.Session `json:"session"`
	Reply   string          `json:"reply"`
}

// AdvisorServicer defines the contract for the money checkup conversation.
type AdvisorServicer interface {
	Checkup(ctx context.Context, userID string, key ledger.MonthKey) (*AdvisorReply, error)
	Reply(ctx context.Context, session advisor.Session, message string) (*AdvisorReply, error)
}

// advisorService adapts advisor.Advisor to stored ledgers and AppErrors.
type advisorService struct {
	advisor *advisor.Advisor
	ledgers LedgerServicer
}

// NewAdvisorService creates a new AdvisorServicer. A nil advisor makes every
// call fail with ErrAdvisorUnavailable.
func NewAdvisorService(a *advisor.Advisor, ledgers LedgerServicer) AdvisorServicer {
	return &advisorService{advisor: a, ledgers: ledgers}
}

// Checkup opens a conversation about month key of the user's stored ledger.
func (s *advisorService) Checkup(ctx context.Context, userID string, key ledger.MonthKey) (*AdvisorReply, error) {
	if s.advisor == nil {
		return nil, apperrors.ErrAdvisorUnavailable
	}
	state, err := s.ledgers.GetLedger(userID)
	if err != nil {
		return nil, err
	}
	items := state.OrbitData.Items(key)
	session, reply, err := s.advisor.Checkup(ctx, advisor.Snapshot{Items: items, Totals: aggregate.ComputeTotals(items)})
	if err != nil {
		return nil, advisorError(err)
	}
	return &AdvisorReply{Session: session, Reply: reply}, nil
}

// Reply continues a conversation previously returned by Checkup or Reply.
func (s *advisorService) Reply(ctx context.Context, session advisor.Session, message string) (*AdvisorReply, error) {
	if s.advisor == nil {
		return nil, apperrors.ErrAdvisorUnavailable
	}
	next, reply, err := s.advisor.Reply(ctx, session, message)
	if err != nil {
		return nil, advisorError(err)
	}
	return &AdvisorReply{Session: next, Reply: reply}, nil
}

func advisorError(err error) error {
	switch {
	case errors.Is(err, advisor.ErrNoSession):
		return apperrors.ErrNoAdvisorSession
	case errors.Is(err, advisor.ErrUnknownModel):
		return apperrors.Wrap(apperrors.ErrInvalidAdvisorSession, err)
	case errors.Is(err, advisor.ErrQuotaExceeded):
		return apperrors.Wrap(apperrors.ErrAdvisorQuota, err)
	default:
		logger.Get().Warnw("Advisor call failed", "error", err)
		return apperrors.Wrap(apperrors.ErrAdvisorUnavailable, err)
	}
}
