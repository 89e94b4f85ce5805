package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds the derived balances of one user. Both balance columns are
// overwritten on every recompute and must not be written anywhere else.
type Wallet struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	TotalBalance     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_balance"`
	AvailableBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"available_balance"`
	Version          int             `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Transactions []WalletTransaction `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
	Allocations  []GoalAllocation    `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE" json:"allocations,omitempty"`
}

// AllocatedAmount is the part of the total balance committed to goals.
func (w *Wallet) AllocatedAmount() decimal.Decimal {
	return w.TotalBalance.Sub(w.AvailableBalance)
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (Wallet) TableName() string {
	return "wallets"
}
