package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// WalletTransaction is a single ledger entry. When ExpenseID is set the entry
// mirrors that Expense and is only changed through the expense write path.
type WalletTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	WalletID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"wallet_id"`
	Type        TransactionType `gorm:"column:transaction_type;type:varchar(20);not null;check:transaction_type IN ('income','expense')" json:"transaction_type"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null;check:amount > 0" json:"amount"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	ExpenseID   *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"expense_id,omitempty"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Date        time.Time       `gorm:"type:date;not null;index:idx_wallet_transactions_date,sort:desc" json:"date"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Expense  *Expense  `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsMirror reports whether the entry shadows an Expense.
func (t *WalletTransaction) IsMirror() bool {
	return t.ExpenseID != nil
}

// MatchesExpense reports whether the mirrored fields equal the expense's.
func (t *WalletTransaction) MatchesExpense(e *Expense) bool {
	return t.Type == TransactionTypeExpense &&
		t.Amount.Equal(e.Amount) &&
		sameCategory(t.CategoryID, e.CategoryID) &&
		t.Description == e.Description &&
		sameDay(t.Date, e.Date)
}

// CopyFromExpense overwrites the mirrored fields with the expense's values.
func (t *WalletTransaction) CopyFromExpense(e *Expense) {
	t.Amount = e.Amount
	t.CategoryID = e.CategoryID
	t.Description = e.Description
	t.Date = e.Date
}

func (t *WalletTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

func sameCategory(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
