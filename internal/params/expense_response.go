package params

import (
	"go-finance-ledger/internal/entity"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseResponse struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Notes         *string         `json:"notes,omitempty"`
	Date          string          `json:"date"`
	TransactionID *uuid.UUID      `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func NewExpenseResponse(e *entity.Expense, mirror *entity.WalletTransaction) *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		CategoryID:  e.CategoryID,
		Category:    e.CategoryName(),
		Description: e.Description,
		Notes:       e.Notes,
		Date:        e.Date.Format(DateLayout),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if mirror != nil {
		id := mirror.ID
		resp.TransactionID = &id
	}
	return resp
}

type ExpenseListResponse struct {
	Expenses []*ExpenseResponse `json:"expenses"`
	Total    int64              `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

type ExpenseMutationResponse struct {
	Expense *ExpenseResponse `json:"expense,omitempty"`
	Wallet  *WalletResponse  `json:"wallet"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
}

func NewCategoryResponse(c *entity.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
	}
}

type CategoryTotalResponse struct {
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	Category   string          `json:"category"`
	Color      string          `json:"color"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
}

type MonthTotalResponse struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type ExpenseStatisticsResponse struct {
	Total      decimal.Decimal          `json:"total"`
	ByCategory []*CategoryTotalResponse `json:"by_category"`
	ByMonth    []*MonthTotalResponse    `json:"by_month"`
}
