package params

import (
	"go-finance-ledger/internal/entity"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProgressResponse struct {
	TargetAmount  decimal.Decimal   `json:"target_amount"`
	CurrentAmount decimal.Decimal   `json:"current_amount"`
	Remaining     decimal.Decimal   `json:"remaining"`
	Percentage    decimal.Decimal   `json:"percentage"`
	Deadline      string            `json:"deadline"`
	Status        entity.GoalStatus `json:"status"`
	Overdue       bool              `json:"overdue"`
}

func NewProgressResponse(p *entity.Progress, now time.Time) ProgressResponse {
	return ProgressResponse{
		TargetAmount:  p.TargetAmount,
		CurrentAmount: p.CurrentAmount,
		Remaining:     p.Remaining(),
		Percentage:    p.Percentage(),
		Deadline:      p.Deadline.Format(DateLayout),
		Status:        p.Status,
		Overdue:       p.IsOverdue(now),
	}
}

type GoalResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	ProgressResponse
	CreatedAt time.Time `json:"created_at"`
}

func NewGoalResponse(g *entity.Goal, now time.Time) *GoalResponse {
	return &GoalResponse{
		ID:               g.ID,
		Title:            g.Title,
		Description:      g.Description,
		ProgressResponse: NewProgressResponse(&g.Progress, now),
		CreatedAt:        g.CreatedAt,
	}
}

type ContributionResponse struct {
	ID     uuid.UUID       `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Note   *string         `json:"note,omitempty"`
	Date   string          `json:"date"`
	Goal   *GoalResponse   `json:"goal"`
}

type ReleaseFundsResponse struct {
	Released decimal.Decimal `json:"released"`
	Goal     *GoalResponse   `json:"goal"`
	Wallet   *WalletResponse `json:"wallet"`
}

type DeleteGoalResponse struct {
	Released decimal.Decimal `json:"released"`
	Wallet   *WalletResponse `json:"wallet"`
}
