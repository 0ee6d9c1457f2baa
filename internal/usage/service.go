package usage

import (
	"context"
	"time"

	"github.com/vasanthanrk/careerboost/internal/subscription"
)

type Service interface {
	// Check answers whether the user may use the feature right now. Entitled
	// paying users bypass metering entirely; free-tier users are compared
	// against the static limit table.
	Check(ctx context.Context, userID int, feature string) (Quota, error)
	// Increment records one use of the feature after the gated action
	// succeeded.
	Increment(ctx context.Context, userID int, feature string) (int, error)
	// Consume is the atomic check-and-increment: it admits the call and
	// records the use in one step.
	Consume(ctx context.Context, userID int, feature string) (Quota, error)
}

type service struct {
	repo Repository
	subs subscription.Service
}

func NewService(repo Repository, subs subscription.Service) Service {
	return &service{repo: repo, subs: subs}
}

func (s *service) Check(ctx context.Context, userID int, feature string) (Quota, error) {
	entitled, err := s.subs.Entitled(ctx, userID, time.Now())
	if err != nil {
		return Quota{}, err
	}
	if entitled {
		// No metric row is required, or even consulted, for paying users.
		return Quota{Allowed: true, Used: 0, Limit: UnlimitedLimit}, nil
	}

	metric, err := s.repo.GetOrCreate(ctx, userID, feature)
	if err != nil {
		return Quota{}, err
	}

	limit := LimitFor(feature)
	return Quota{
		Allowed: metric.Count < limit,
		Used:    metric.Count,
		Limit:   limit,
	}, nil
}

func (s *service) Increment(ctx context.Context, userID int, feature string) (int, error) {
	return s.repo.Increment(ctx, userID, feature)
}

func (s *service) Consume(ctx context.Context, userID int, feature string) (Quota, error) {
	entitled, err := s.subs.Entitled(ctx, userID, time.Now())
	if err != nil {
		return Quota{}, err
	}
	if entitled {
		return Quota{Allowed: true, Used: 0, Limit: UnlimitedLimit}, nil
	}

	limit := LimitFor(feature)
	used, allowed, err := s.repo.ConsumeWithinLimit(ctx, userID, feature, limit)
	if err != nil {
		return Quota{}, err
	}

	return Quota{Allowed: allowed, Used: used, Limit: limit}, nil
}
