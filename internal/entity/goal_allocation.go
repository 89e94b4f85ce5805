package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GoalAllocation commits wallet funds to a personal goal. It lowers the
// available balance without touching the total balance.
type GoalAllocation struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	WalletID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"wallet_id"`
	GoalID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"goal_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null;check:amount > 0" json:"amount"`
	Date      time.Time       `gorm:"type:date;not null" json:"date"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Goal *Goal `gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE" json:"-"`
}

func (a *GoalAllocation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (GoalAllocation) TableName() string {
	return "goal_allocations"
}
