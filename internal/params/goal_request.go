package params

import "github.com/shopspring/decimal"

type CreateGoalRequest struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Description  *string         `json:"description,omitempty"`
	TargetAmount decimal.Decimal `json:"target_amount" validate:"required,gt=0"`
	Deadline     string          `json:"deadline" validate:"required,datetime=2006-01-02"`
}

type ContributionRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Note   *string         `json:"note,omitempty" validate:"omitempty,max=255"`
	Date   string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateGoalRequest struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Description  *string         `json:"description,omitempty"`
	TargetAmount decimal.Decimal `json:"target_amount" validate:"required,gt=0"`
	Deadline     string          `json:"deadline" validate:"required,datetime=2006-01-02"`
}
