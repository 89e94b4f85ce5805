package params

import (
	"go-finance-ledger/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dates are calendar days in YYYY-MM-DD form; an empty date means today.

type CreateTransactionRequest struct {
	Type         entity.TransactionType `json:"transaction_type" validate:"required,oneof=income expense"`
	Amount       decimal.Decimal        `json:"amount" validate:"required,gt=0"`
	CategoryName string                 `json:"category,omitempty" validate:"max=100"`
	Description  string                 `json:"description" validate:"required,max=255"`
	Date         string                 `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateTransactionRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"required,gt=0"`
	CategoryName string          `json:"category,omitempty" validate:"max=100"`
	Description  string          `json:"description" validate:"required,max=255"`
	Date         string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type AllocateRequest struct {
	GoalID uuid.UUID       `json:"goal_id" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Date   string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateAllocationRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
}
