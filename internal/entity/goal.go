package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Goal struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Progress    `gorm:"embedded"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (Goal) TableName() string {
	return "goals"
}

// Contribution is one manual deposit toward a personal goal.
type Contribution struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	GoalID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"goal_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null;check:amount > 0" json:"amount"`
	Note      *string         `gorm:"type:varchar(255)" json:"note,omitempty"`
	Date      time.Time       `gorm:"type:date;not null" json:"date"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Goal *Goal `gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Contribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Contribution) TableName() string {
	return "contributions"
}
