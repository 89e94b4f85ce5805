package params

import "github.com/shopspring/decimal"

type ExpenseRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"required,gt=0"`
	CategoryName string          `json:"category,omitempty" validate:"max=100"`
	Description  string          `json:"description" validate:"required,max=255"`
	Notes        *string         `json:"notes,omitempty"`
	Date         string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type ExpenseFilter struct {
	Category string
	Limit    int
	Offset   int
}
