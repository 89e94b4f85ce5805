package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultCategoryIcon  = "bi-tag"
	DefaultCategoryColor = "#6c757d"
)

// Category is shared by every user; names are stored normalized.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Icon        string    `gorm:"type:varchar(50);not null;default:'bi-tag'" json:"icon"`
	Color       string    `gorm:"type:varchar(7);not null;default:'#6c757d'" json:"color"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Category) TableName() string {
	return "categories"
}
