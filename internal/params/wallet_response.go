package params

import (
	"go-finance-ledger/internal/entity"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletResponse struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	AllocatedAmount  decimal.Decimal `json:"allocated_amount"`
	Version          int             `json:"version"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func NewWalletResponse(w *entity.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:               w.ID,
		UserID:           w.UserID,
		TotalBalance:     w.TotalBalance,
		AvailableBalance: w.AvailableBalance,
		AllocatedAmount:  w.AllocatedAmount(),
		Version:          w.Version,
		UpdatedAt:        w.UpdatedAt,
	}
}

type TransactionResponse struct {
	ID          uuid.UUID              `json:"id"`
	Type        entity.TransactionType `json:"transaction_type"`
	Amount      decimal.Decimal        `json:"amount"`
	CategoryID  *uuid.UUID             `json:"category_id,omitempty"`
	Category    string                 `json:"category,omitempty"`
	ExpenseID   *uuid.UUID             `json:"expense_id,omitempty"`
	Description string                 `json:"description"`
	Date        string                 `json:"date"`
	CreatedAt   time.Time              `json:"created_at"`
}

func NewTransactionResponse(t *entity.WalletTransaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:          t.ID,
		Type:        t.Type,
		Amount:      t.Amount,
		CategoryID:  t.CategoryID,
		ExpenseID:   t.ExpenseID,
		Description: t.Description,
		Date:        t.Date.Format(DateLayout),
		CreatedAt:   t.CreatedAt,
	}
	if t.Category != nil {
		resp.Category = t.Category.Name
	}
	return resp
}

type TransactionHistoryResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
	Page         int                    `json:"page"`
	Limit        int                    `json:"limit"`
	TotalPages   int                    `json:"total_pages"`
}

// LedgerEntryResponse is returned by every wallet write.
type LedgerEntryResponse struct {
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Wallet      *WalletResponse      `json:"wallet"`
}

type AllocationResponse struct {
	ID     uuid.UUID       `json:"id"`
	GoalID uuid.UUID       `json:"goal_id"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
	Goal   *GoalResponse   `json:"goal"`
	Wallet *WalletResponse `json:"wallet"`
}
