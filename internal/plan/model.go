package plan

import "time"

type Plan struct {
	ID             int       `db:"id" json:"id"`
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	AmountCents    int64     `db:"amount_cents" json:"amount_cents"`
	Currency       string    `db:"currency" json:"currency"`
	IntervalMonths int       `db:"interval_months" json:"interval_months"`
	Description    *string   `db:"description" json:"description,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type CreatePlanRequest struct {
	Code           string `json:"code" binding:"required,min=2,max=50,plan_code"`
	Name           string `json:"name" binding:"required,min=2,max=100"`
	AmountCents    int64  `json:"amount_cents" binding:"required,gt=0"`
	Currency       string `json:"currency" binding:"required,len=3"`
	IntervalMonths int    `json:"interval_months" binding:"required,gte=1,lte=36"`
	Description    string `json:"description,omitempty" binding:"max=255"`
}
