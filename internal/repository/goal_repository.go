package repository

import (
	"context"
	"errors"
	"fmt"
	"go-finance-ledger/internal/entity"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GoalRepository interface {
	Create(ctx context.Context, goal *entity.Goal) error
	GetByID(ctx context.Context, userID, goalID uuid.UUID) (*entity.Goal, error)
	GetByIDForUpdate(ctx context.Context, userID, goalID uuid.UUID) (*entity.Goal, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Goal, error)
	SaveProgress(ctx context.Context, goal *entity.Goal) error
	UpdateDetails(ctx context.Context, goal *entity.Goal) error
	// Delete removes the goal together with its contributions.
	Delete(ctx context.Context, goalID uuid.UUID) error
	CreateContribution(ctx context.Context, contribution *entity.Contribution) error
	ListContributions(ctx context.Context, goalID uuid.UUID) ([]*entity.Contribution, error)

	BeginTx(ctx context.Context) *gorm.DB
	WithTx(tx *gorm.DB) GoalRepository
}

type GoalRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGoalRepository(db *gorm.DB, logger *logrus.Logger) GoalRepository {
	return &GoalRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *GoalRepositoryImpl) Create(ctx context.Context, goal *entity.Goal) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(goal).Error; err != nil {
		r.logger.WithError(err).WithField("user_id", goal.UserID).Error("Failed to create goal")
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (r *GoalRepositoryImpl) get(ctx context.Context, lock bool, userID, goalID uuid.UUID) (*entity.Goal, error) {
	var goal entity.Goal
	query := r.db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("goal_id", goalID).Error("Failed to get goal")
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return &goal, nil
}

func (r *GoalRepositoryImpl) GetByID(ctx context.Context, userID, goalID uuid.UUID) (*entity.Goal, error) {
	return r.get(ctx, false, userID, goalID)
}

func (r *GoalRepositoryImpl) GetByIDForUpdate(ctx context.Context, userID, goalID uuid.UUID) (*entity.Goal, error) {
	return r.get(ctx, true, userID, goalID)
}

func (r *GoalRepositoryImpl) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Goal, error) {
	var goals []*entity.Goal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("deadline").
		Find(&goals).Error
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to list goals")
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

func (r *GoalRepositoryImpl) SaveProgress(ctx context.Context, goal *entity.Goal) error {
	err := r.db.WithContext(ctx).
		Model(&entity.Goal{}).
		Where("id = ?", goal.ID).
		Updates(map[string]interface{}{
			"current_amount": goal.CurrentAmount,
			"status":         goal.Status,
			"updated_at":     time.Now(),
		}).Error
	if err != nil {
		r.logger.WithError(err).WithField("goal_id", goal.ID).Error("Failed to save goal progress")
		return fmt.Errorf("failed to save goal progress: %w", err)
	}
	return nil
}

// UpdateDetails writes the editable fields and the progress they may affect.
func (r *GoalRepositoryImpl) UpdateDetails(ctx context.Context, goal *entity.Goal) error {
	err := r.db.WithContext(ctx).
		Model(&entity.Goal{}).
		Where("id = ?", goal.ID).
		Updates(map[string]interface{}{
			"title":          goal.Title,
			"description":    goal.Description,
			"target_amount":  goal.TargetAmount,
			"deadline":       goal.Deadline,
			"current_amount": goal.CurrentAmount,
			"status":         goal.Status,
			"updated_at":     time.Now(),
		}).Error
	if err != nil {
		r.logger.WithError(err).WithField("goal_id", goal.ID).Error("Failed to update goal")
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return nil
}

func (r *GoalRepositoryImpl) Delete(ctx context.Context, goalID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Delete(&entity.Contribution{}, "goal_id = ?", goalID).Error; err != nil {
		r.logger.WithError(err).WithField("goal_id", goalID).Error("Failed to delete goal contributions")
		return fmt.Errorf("failed to delete goal contributions: %w", err)
	}
	if err := db.Delete(&entity.Goal{}, "id = ?", goalID).Error; err != nil {
		r.logger.WithError(err).WithField("goal_id", goalID).Error("Failed to delete goal")
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

func (r *GoalRepositoryImpl) CreateContribution(ctx context.Context, contribution *entity.Contribution) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(contribution).Error; err != nil {
		r.logger.WithError(err).WithField("goal_id", contribution.GoalID).Error("Failed to create contribution")
		return fmt.Errorf("failed to create contribution: %w", err)
	}
	return nil
}

func (r *GoalRepositoryImpl) ListContributions(ctx context.Context, goalID uuid.UUID) ([]*entity.Contribution, error) {
	var contributions []*entity.Contribution
	err := r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("date DESC").
		Find(&contributions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	return contributions, nil
}

func (r *GoalRepositoryImpl) BeginTx(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Begin()
}

func (r *GoalRepositoryImpl) WithTx(tx *gorm.DB) GoalRepository {
	return &GoalRepositoryImpl{
		db:     tx,
		logger: r.logger,
	}
}
