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

type GroupRepository interface {
	Create(ctx context.Context, group *entity.Group) error
	GetByID(ctx context.Context, groupID uuid.UUID) (*entity.Group, error)
	GetByIDForUpdate(ctx context.Context, groupID uuid.UUID) (*entity.Group, error)
	GetByInviteCode(ctx context.Context, code string) (*entity.Group, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
	SaveProgress(ctx context.Context, group *entity.Group) error

	AddMember(ctx context.Context, membership *entity.Membership) error
	GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*entity.Membership, error)
	ListMemberships(ctx context.Context, groupID uuid.UUID) ([]*entity.Membership, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error

	CreateGoal(ctx context.Context, goal *entity.GroupGoal) error
	GetGoalForUpdate(ctx context.Context, groupID, goalID uuid.UUID) (*entity.GroupGoal, error)
	SaveGoalProgress(ctx context.Context, goal *entity.GroupGoal) error

	CreateContribution(ctx context.Context, contribution *entity.GroupContribution) error

	BeginTx(ctx context.Context) *gorm.DB
	WithTx(tx *gorm.DB) GroupRepository
}

type GroupRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGroupRepository(db *gorm.DB, logger *logrus.Logger) GroupRepository {
	return &GroupRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *GroupRepositoryImpl) Create(ctx context.Context, group *entity.Group) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(group).Error; err != nil {
		r.logger.WithError(err).WithField("creator_id", group.CreatorID).Error("Failed to create group")
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (r *GroupRepositoryImpl) GetByID(ctx context.Context, groupID uuid.UUID) (*entity.Group, error) {
	var group entity.Group
	err := r.db.WithContext(ctx).
		Preload("Memberships.User").
		Preload("Goals").
		Where("id = ?", groupID).
		First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("group_id", groupID).Error("Failed to get group")
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &group, nil
}

func (r *GroupRepositoryImpl) GetByIDForUpdate(ctx context.Context, groupID uuid.UUID) (*entity.Group, error) {
	var group entity.Group
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", groupID).
		First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get group for update: %w", err)
	}
	return &group, nil
}

func (r *GroupRepositoryImpl) GetByInviteCode(ctx context.Context, code string) (*entity.Group, error) {
	var group entity.Group
	err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get group by invite code: %w", err)
	}
	return &group, nil
}

func (r *GroupRepositoryImpl) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Group{}).Where("invite_code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check invite code: %w", err)
	}
	return count > 0, nil
}

func (r *GroupRepositoryImpl) SaveProgress(ctx context.Context, group *entity.Group) error {
	err := r.db.WithContext(ctx).
		Model(&entity.Group{}).
		Where("id = ?", group.ID).
		Updates(map[string]interface{}{
			"current_amount": group.CurrentAmount,
			"status":         group.Status,
			"updated_at":     time.Now(),
		}).Error
	if err != nil {
		r.logger.WithError(err).WithField("group_id", group.ID).Error("Failed to save group progress")
		return fmt.Errorf("failed to save group progress: %w", err)
	}
	return nil
}

func (r *GroupRepositoryImpl) AddMember(ctx context.Context, membership *entity.Membership) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(membership).Error; err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"group_id": membership.GroupID,
			"user_id":  membership.UserID,
		}).Error("Failed to add group member")
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (r *GroupRepositoryImpl) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*entity.Membership, error) {
	var membership entity.Membership
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &membership, nil
}

func (r *GroupRepositoryImpl) ListMemberships(ctx context.Context, groupID uuid.UUID) ([]*entity.Membership, error) {
	var memberships []*entity.Membership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

func (r *GroupRepositoryImpl) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Membership{}, "group_id = ? AND user_id = ?", groupID, userID)
	if result.Error != nil {
		r.logger.WithError(result.Error).WithFields(logrus.Fields{
			"group_id": groupID,
			"user_id":  userID,
		}).Error("Failed to remove group member")
		return fmt.Errorf("failed to remove member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GroupRepositoryImpl) CreateGoal(ctx context.Context, goal *entity.GroupGoal) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(goal).Error; err != nil {
		r.logger.WithError(err).WithField("group_id", goal.GroupID).Error("Failed to create group goal")
		return fmt.Errorf("failed to create group goal: %w", err)
	}
	return nil
}

func (r *GroupRepositoryImpl) GetGoalForUpdate(ctx context.Context, groupID, goalID uuid.UUID) (*entity.GroupGoal, error) {
	var goal entity.GroupGoal
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND group_id = ?", goalID, groupID).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get group goal: %w", err)
	}
	return &goal, nil
}

func (r *GroupRepositoryImpl) SaveGoalProgress(ctx context.Context, goal *entity.GroupGoal) error {
	err := r.db.WithContext(ctx).
		Model(&entity.GroupGoal{}).
		Where("id = ?", goal.ID).
		Updates(map[string]interface{}{
			"current_amount": goal.CurrentAmount,
			"status":         goal.Status,
			"updated_at":     time.Now(),
		}).Error
	if err != nil {
		r.logger.WithError(err).WithField("group_goal_id", goal.ID).Error("Failed to save group goal progress")
		return fmt.Errorf("failed to save group goal progress: %w", err)
	}
	return nil
}

func (r *GroupRepositoryImpl) CreateContribution(ctx context.Context, contribution *entity.GroupContribution) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(contribution).Error; err != nil {
		r.logger.WithError(err).WithField("group_id", contribution.GroupID).Error("Failed to create group contribution")
		return fmt.Errorf("failed to create group contribution: %w", err)
	}
	return nil
}

func (r *GroupRepositoryImpl) BeginTx(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Begin()
}

func (r *GroupRepositoryImpl) WithTx(tx *gorm.DB) GroupRepository {
	return &GroupRepositoryImpl{
		db:     tx,
		logger: r.logger,
	}
}
