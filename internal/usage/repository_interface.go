package usage

import "context"

type Repository interface {
	// GetOrCreate returns the (user, feature) metric row, creating it at
	// count 0 on first sight.
	GetOrCreate(ctx context.Context, userID int, feature string) (*UserMetric, error)
	// Increment bumps the counter unconditionally, creating the row at 1 if
	// absent, and returns the new count.
	Increment(ctx context.Context, userID int, feature string) (int, error)
	// ConsumeWithinLimit atomically increments the counter only while it is
	// below limit, holding a row lock across the check and the write so two
	// concurrent calls cannot both slip under the cap.
	ConsumeWithinLimit(ctx context.Context, userID int, feature string, limit int) (used int, allowed bool, err error)
}
