package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusCancelled GoalStatus = "cancelled"
)

var hundred = decimal.NewFromInt(100)

// Progress is the self-accumulating part shared by goals and groups.
// CurrentAmount only moves through Apply; it is never derived from history.
type Progress struct {
	TargetAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null;check:target_amount > 0" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"current_amount"`
	Deadline      time.Time       `gorm:"type:date;not null" json:"deadline"`
	Status        GoalStatus      `gorm:"type:varchar(20);not null;default:'active';check:status IN ('active','completed','cancelled')" json:"status"`
}

// Apply adds amount (which may be negative for corrections) to the running
// total, never going below zero. Reaching the target flips an active goal to
// completed; that transition is one-way. It reports whether this call caused it.
func (p *Progress) Apply(amount decimal.Decimal) bool {
	p.CurrentAmount = p.CurrentAmount.Add(amount)
	if p.CurrentAmount.IsNegative() {
		p.CurrentAmount = decimal.Zero
	}
	if p.Status == GoalStatusActive && p.CurrentAmount.GreaterThanOrEqual(p.TargetAmount) {
		p.Status = GoalStatusCompleted
		return true
	}
	return false
}

// Cancel force-transitions to cancelled regardless of the current status.
func (p *Progress) Cancel() {
	p.Status = GoalStatusCancelled
}

func (p *Progress) IsCancelled() bool {
	return p.Status == GoalStatusCancelled
}

// Percentage is capped at 100.
func (p *Progress) Percentage() decimal.Decimal {
	if !p.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	pct := p.CurrentAmount.Div(p.TargetAmount).Mul(hundred)
	return decimal.Min(pct, hundred).Round(2)
}

func (p *Progress) Remaining() decimal.Decimal {
	return decimal.Max(p.TargetAmount.Sub(p.CurrentAmount), decimal.Zero)
}

func (p *Progress) IsOverdue(now time.Time) bool {
	if p.Status != GoalStatusActive {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := p.Deadline.Date()
	return today.After(time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC))
}
