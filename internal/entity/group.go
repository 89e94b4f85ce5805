package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MembershipRole string

const (
	MembershipRoleAdmin  MembershipRole = "admin"
	MembershipRoleMember MembershipRole = "member"
)

type GroupGoalType string

const (
	GroupGoalTypeSavings    GroupGoalType = "savings"
	GroupGoalTypeProject    GroupGoalType = "project"
	GroupGoalTypeInvestment GroupGoalType = "investment"
	GroupGoalTypeTravel     GroupGoalType = "travel"
	GroupGoalTypeOther      GroupGoalType = "other"
)

// Group is a collaborative pot. Its embedded Progress is the legacy
// aggregate that predates GroupGoal.
type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	InviteCode  string    `gorm:"type:varchar(8);not null;uniqueIndex" json:"invite_code"`
	CreatorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`
	Progress    `gorm:"embedded"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Memberships []Membership `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Goals       []GroupGoal  `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"goals,omitempty"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (Group) TableName() string {
	return "groups"
}

type Membership struct {
	ID       uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_group" json:"user_id"`
	GroupID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_group" json:"group_id"`
	Role     MembershipRole `gorm:"type:varchar(20);not null;default:'member';check:role IN ('admin','member')" json:"role"`
	JoinedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (m *Membership) IsAdmin() bool {
	return m.Role == MembershipRoleAdmin
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (Membership) TableName() string {
	return "memberships"
}

type GroupGoal struct {
	ID          uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	GroupID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"group_id"`
	Title       string        `gorm:"type:varchar(200);not null" json:"title"`
	Description *string       `gorm:"type:text" json:"description,omitempty"`
	GoalType    GroupGoalType `gorm:"type:varchar(20);not null;default:'savings'" json:"goal_type"`
	Progress    `gorm:"embedded"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (g *GroupGoal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (GroupGoal) TableName() string {
	return "group_goals"
}

// GroupContribution records a member payment. A nil GoalID means the payment
// went to the group's legacy aggregate.
type GroupContribution struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	GroupID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"group_id"`
	GoalID    *uuid.UUID      `gorm:"type:uuid;index" json:"goal_id,omitempty"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null;check:amount > 0" json:"amount"`
	Note      *string         `gorm:"type:varchar(255)" json:"note,omitempty"`
	Date      time.Time       `gorm:"type:date;not null" json:"date"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Goal *GroupGoal `gorm:"foreignKey:GoalID;constraint:OnDelete:SET NULL" json:"-"`
}

func (c *GroupContribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (GroupContribution) TableName() string {
	return "group_contributions"
}

// ContributionTarget selects where a group contribution is booked.
type ContributionTarget interface {
	contributionTarget()
}

// ToGoal books the contribution on a specific GroupGoal.
type ToGoal struct {
	GoalID uuid.UUID
}

// ToGroupLegacyAggregate books the contribution on the group's own totals.
//
// Deprecated: contribute to a GroupGoal instead.
type ToGroupLegacyAggregate struct{}

func (ToGoal) contributionTarget()                 {}
func (ToGroupLegacyAggregate) contributionTarget() {}

// AllModels lists every persisted type in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &Wallet{}, &Category{}, &Expense{}, &WalletTransaction{},
		&Goal{}, &GoalAllocation{}, &Contribution{},
		&Group{}, &Membership{}, &GroupGoal{}, &GroupContribution{},
	}
}
