package plan

import "context"

type Repository interface {
	ListActive(ctx context.Context) ([]*Plan, error)
	FindByCode(ctx context.Context, code string) (*Plan, error)
	FindByID(ctx context.Context, id int) (*Plan, error)
	Create(ctx context.Context, req CreatePlanRequest) (*Plan, error)
	Deactivate(ctx context.Context, code string) error
}
