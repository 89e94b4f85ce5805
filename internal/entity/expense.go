package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const UncategorizedLabel = "Uncategorized"

type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null;check:amount > 0" json:"amount"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Notes       *string         `gorm:"type:text" json:"notes,omitempty"`
	Date        time.Time       `gorm:"type:date;not null;index:idx_expenses_date,sort:desc" json:"date"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// CategoryName returns the category label shown for uncategorised expenses too.
func (e *Expense) CategoryName() string {
	if e.Category == nil {
		return UncategorizedLabel
	}
	return e.Category.Name
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (Expense) TableName() string {
	return "expenses"
}
