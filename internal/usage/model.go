package usage

import (
	"encoding/json"
	"time"
)

// UnlimitedLimit marks a quota that is not metered at all.
const UnlimitedLimit = -1

type UserMetric struct {
	ID          int        `db:"id" json:"id"`
	UserID      int        `db:"user_id" json:"user_id"`
	FeatureName string     `db:"feature_name" json:"feature_name"`
	Count       int        `db:"count" json:"count"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Quota is the structured allow/deny answer callers use to render
// remaining-uses messaging.
type Quota struct {
	Allowed bool
	Used    int
	Limit   int
}

func (q Quota) MarshalJSON() ([]byte, error) {
	var limit interface{} = q.Limit
	if q.Limit == UnlimitedLimit {
		limit = "unlimited"
	}
	return json.Marshal(map[string]interface{}{
		"allowed": q.Allowed,
		"used":    q.Used,
		"limit":   limit,
	})
}
