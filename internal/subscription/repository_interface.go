package subscription

import (
	"context"
	"time"
)

type Repository interface {
	CurrentForUser(ctx context.Context, userID int) (*Subscription, error)
	FindByGatewayOrderID(ctx context.Context, orderID string) (*Subscription, error)
	FindByGatewaySubscriptionID(ctx context.Context, gatewaySubID string) (*Subscription, error)
	Cancel(ctx context.Context, userID int) (*Subscription, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}
