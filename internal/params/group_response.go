package params

import (
	"go-finance-ledger/internal/entity"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MemberResponse struct {
	UserID   uuid.UUID             `json:"user_id"`
	Name     string                `json:"name,omitempty"`
	Role     entity.MembershipRole `json:"role"`
	JoinedAt time.Time             `json:"joined_at"`
}

type GroupGoalResponse struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Description *string              `json:"description,omitempty"`
	GoalType    entity.GroupGoalType `json:"goal_type"`
	ProgressResponse
}

func NewGroupGoalResponse(g *entity.GroupGoal, now time.Time) *GroupGoalResponse {
	return &GroupGoalResponse{
		ID:               g.ID,
		Title:            g.Title,
		Description:      g.Description,
		GoalType:         g.GoalType,
		ProgressResponse: NewProgressResponse(&g.Progress, now),
	}
}

type GroupResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	InviteCode  string    `json:"invite_code"`
	CreatorID   uuid.UUID `json:"creator_id"`
	ProgressResponse
	Members []*MemberResponse    `json:"members,omitempty"`
	Goals   []*GroupGoalResponse `json:"goals,omitempty"`
}

func NewGroupResponse(g *entity.Group, now time.Time) *GroupResponse {
	resp := &GroupResponse{
		ID:               g.ID,
		Name:             g.Name,
		Description:      g.Description,
		InviteCode:       g.InviteCode,
		CreatorID:        g.CreatorID,
		ProgressResponse: NewProgressResponse(&g.Progress, now),
	}
	for i := range g.Memberships {
		m := &g.Memberships[i]
		member := &MemberResponse{UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt}
		if m.User != nil {
			member.Name = m.User.Name
		}
		resp.Members = append(resp.Members, member)
	}
	for i := range g.Goals {
		resp.Goals = append(resp.Goals, NewGroupGoalResponse(&g.Goals[i], now))
	}
	return resp
}

type GroupContributionResponse struct {
	ID     uuid.UUID          `json:"id"`
	Amount decimal.Decimal    `json:"amount"`
	Date   string             `json:"date"`
	Goal   *GroupGoalResponse `json:"goal,omitempty"`
	Group  *GroupResponse     `json:"group,omitempty"`
}
