package params

import (
	"go-finance-ledger/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateGroupRequest struct {
	Name         string          `json:"name" validate:"required,max=200"`
	Description  string          `json:"description" validate:"max=2000"`
	TargetAmount decimal.Decimal `json:"target_amount" validate:"required,gt=0"`
	Deadline     string          `json:"deadline" validate:"required,datetime=2006-01-02"`
}

type JoinGroupRequest struct {
	InviteCode string `json:"invite_code" validate:"required,len=8,alphanum"`
}

type InviteMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type CreateGroupGoalRequest struct {
	Title        string               `json:"title" validate:"required,max=200"`
	Description  *string              `json:"description,omitempty"`
	GoalType     entity.GroupGoalType `json:"goal_type" validate:"omitempty,oneof=savings project investment travel other"`
	TargetAmount decimal.Decimal      `json:"target_amount" validate:"required,gt=0"`
	Deadline     string               `json:"deadline" validate:"required,datetime=2006-01-02"`
}

// GroupContributionRequest targets a group goal when GoalID is set and the
// group's legacy totals otherwise.
type GroupContributionRequest struct {
	GoalID *uuid.UUID      `json:"goal_id,omitempty"`
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Note   *string         `json:"note,omitempty" validate:"omitempty,max=255"`
	Date   string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r *GroupContributionRequest) Target() entity.ContributionTarget {
	if r.GoalID != nil {
		return entity.ToGoal{GoalID: *r.GoalID}
	}
	return entity.ToGroupLegacyAggregate{}
}
