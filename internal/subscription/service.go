package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/vasanthanrk/careerboost/internal/logger"
	"github.com/vasanthanrk/careerboost/internal/metrics"
	"github.com/vasanthanrk/careerboost/internal/plan"
)

type Service interface {
	Status(ctx context.Context, userID int) (*StatusView, error)
	Cancel(ctx context.Context, userID int) (*Subscription, error)
	Sweep(ctx context.Context, now time.Time) (int, error)
	// Entitled reports whether the user currently has paid-tier access.
	Entitled(ctx context.Context, userID int, now time.Time) (bool, error)
}

type service struct {
	repo  Repository
	plans plan.Repository
}

func NewService(repo Repository, plans plan.Repository) Service {
	return &service{repo: repo, plans: plans}
}

func (s *service) Status(ctx context.Context, userID int) (*StatusView, error) {
	sub, err := s.repo.CurrentForUser(ctx, userID)
	if errors.Is(err, ErrNoActiveSubscription) {
		return &StatusView{Active: false, Plan: "free", Status: "none"}, nil
	}
	if err != nil {
		return nil, err
	}

	planCode := "free"
	if p, err := s.plans.FindByID(ctx, sub.PlanID); err == nil {
		planCode = p.Code
	}

	now := time.Now()
	view := &StatusView{
		Active:            IsEntitled(sub, now),
		Plan:              planCode,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.Status != StatusExpired {
		end := sub.CurrentPeriodEnd
		next := sub.NextBillingDate
		view.ExpiresOn = &end
		view.NextBillingDate = &next
	}
	if !view.Active {
		view.Plan = "free"
	}

	return view, nil
}

func (s *service) Cancel(ctx context.Context, userID int) (*Subscription, error) {
	sub, err := s.repo.Cancel(ctx, userID)
	if err != nil {
		return nil, err
	}

	metrics.RecordCancellation()
	logger.Infof("Subscription %d canceled by user %d, entitled until %s",
		sub.ID, userID, sub.CurrentPeriodEnd.Format(time.RFC3339))

	return sub, nil
}

func (s *service) Sweep(ctx context.Context, now time.Time) (int, error) {
	n, err := s.repo.SweepExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		metrics.RecordExpired(n)
		logger.Infof("Expiry sweep transitioned %d subscriptions to expired", n)
	}

	return n, nil
}

func (s *service) Entitled(ctx context.Context, userID int, now time.Time) (bool, error) {
	sub, err := s.repo.CurrentForUser(ctx, userID)
	if errors.Is(err, ErrNoActiveSubscription) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return IsEntitled(sub, now), nil
}
