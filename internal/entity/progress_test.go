package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newProgress(target, current int64) *Progress {
	return &Progress{
		TargetAmount:  decimal.NewFromInt(target),
		CurrentAmount: decimal.NewFromInt(current),
		Deadline:      time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Status:        GoalStatusActive,
	}
}

func TestProgressApply(t *testing.T) {
	p := newProgress(100, 0)

	assert.False(t, p.Apply(decimal.NewFromInt(60)))
	assert.Equal(t, GoalStatusActive, p.Status)

	assert.True(t, p.Apply(decimal.NewFromInt(40)))
	assert.Equal(t, GoalStatusCompleted, p.Status)

	// Completion is terminal even when the amount drops afterwards.
	assert.False(t, p.Apply(decimal.NewFromInt(-90)))
	assert.Equal(t, GoalStatusCompleted, p.Status)
	assert.True(t, decimal.NewFromInt(10).Equal(p.CurrentAmount))
}

func TestProgressApply_ClampsAtZero(t *testing.T) {
	p := newProgress(100, 30)
	p.Apply(decimal.NewFromInt(-50))
	assert.True(t, p.CurrentAmount.IsZero())
}

func TestProgressApply_CancelledNeverCompletes(t *testing.T) {
	p := newProgress(100, 0)
	p.Cancel()
	assert.False(t, p.Apply(decimal.NewFromInt(500)))
	assert.Equal(t, GoalStatusCancelled, p.Status)
}

func TestProgressPercentageAndRemaining(t *testing.T) {
	tests := []struct {
		name      string
		target    int64
		current   int64
		percent   string
		remaining int64
	}{
		{"empty", 200, 0, "0", 200},
		{"partial", 300, 100, "33.33", 200},
		{"exact", 50, 50, "100", 0},
		{"over", 50, 80, "100", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProgress(tt.target, tt.current)
			assert.Equal(t, tt.percent, p.Percentage().String())
			assert.True(t, decimal.NewFromInt(tt.remaining).Equal(p.Remaining()))
		})
	}
}

func TestProgressIsOverdue(t *testing.T) {
	p := newProgress(100, 0)

	assert.False(t, p.IsOverdue(time.Date(2026, 6, 30, 23, 0, 0, 0, time.UTC)), "deadline day is not overdue")
	assert.True(t, p.IsOverdue(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))

	p.Status = GoalStatusCompleted
	assert.False(t, p.IsOverdue(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}
