package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/notify"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/repository"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength   = 8
	inviteCodeAttempts = 5
)

type GroupUsecase interface {
	CreateGroup(ctx context.Context, userID uuid.UUID, req *params.CreateGroupRequest) (*params.GroupResponse, *response.CustomError)
	GetGroup(ctx context.Context, userID, groupID uuid.UUID) (*params.GroupResponse, *response.CustomError)
	JoinGroup(ctx context.Context, userID uuid.UUID, req *params.JoinGroupRequest) (*params.GroupResponse, *response.CustomError)
	InviteMember(ctx context.Context, userID, groupID uuid.UUID, req *params.InviteMemberRequest) *response.CustomError
	// RemoveMember is admin only. Neither the creator nor the acting admin
	// can be removed this way.
	RemoveMember(ctx context.Context, userID, groupID, memberID uuid.UUID) (*params.GroupResponse, *response.CustomError)
	CreateGroupGoal(ctx context.Context, userID, groupID uuid.UUID, req *params.CreateGroupGoalRequest) (*params.GroupGoalResponse, *response.CustomError)
	Contribute(ctx context.Context, userID, groupID uuid.UUID, target entity.ContributionTarget, req *params.GroupContributionRequest) (*params.GroupContributionResponse, *response.CustomError)
}

type GroupUsecaseImpl struct {
	repo     repository.GroupRepository
	userRepo repository.UserRepository
	notifier notify.Notifier
	logger   *logrus.Logger
	now      func() time.Time
}

func NewGroupUsecase(repo repository.GroupRepository, userRepo repository.UserRepository, notifier notify.Notifier, logger *logrus.Logger) GroupUsecase {
	return &GroupUsecaseImpl{
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// GenerateInviteCode returns a random code of uppercase letters and digits.
func GenerateInviteCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		b.WriteByte(inviteCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func (u *GroupUsecaseImpl) uniqueInviteCode(ctx context.Context) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := GenerateInviteCode()
		if err != nil {
			return "", err
		}
		exists, err := u.repo.InviteCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique invite code")
}

func (u *GroupUsecaseImpl) CreateGroup(ctx context.Context, userID uuid.UUID, req *params.CreateGroupRequest) (*params.GroupResponse, *response.CustomError) {
	if !req.TargetAmount.IsPositive() {
		return nil, response.BadRequestError("target_amount must be greater than zero")
	}
	deadline, err := params.ParseDate(req.Deadline, u.now())
	if err != nil {
		return nil, response.BadRequestError(err.Error())
	}

	code, err := u.uniqueInviteCode(ctx)
	if err != nil {
		u.logger.WithError(err).Error("Failed to generate invite code")
		return nil, response.GeneralError("failed to generate invite code")
	}

	tx := u.repo.BeginTx(ctx)
	if tx.Error != nil {
		return nil, response.GeneralError("failed to begin transaction")
	}
	defer tx.Rollback()
	txRepo := u.repo.WithTx(tx)

	group := &entity.Group{
		Name:        req.Name,
		Description: req.Description,
		InviteCode:  code,
		CreatorID:   userID,
		Progress: entity.Progress{
			TargetAmount:  req.TargetAmount,
			CurrentAmount: decimal.Zero,
			Deadline:      deadline,
			Status:        entity.GoalStatusActive,
		},
	}
	if err := txRepo.Create(ctx, group); err != nil {
		return nil, response.RepositoryError("failed to create group")
	}

	membership := &entity.Membership{
		UserID:   userID,
		GroupID:  group.ID,
		Role:     entity.MembershipRoleAdmin,
		JoinedAt: u.now(),
	}
	if err := txRepo.AddMember(ctx, membership); err != nil {
		return nil, response.RepositoryError("failed to add group admin")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.RepositoryError("failed to commit transaction")
	}

	u.logger.WithFields(logrus.Fields{
		"group_id":   group.ID,
		"creator_id": userID,
	}).Info("Group created")

	group.Memberships = []entity.Membership{*membership}
	return params.NewGroupResponse(group, u.now()), nil
}

// membership returns the caller's membership or a 403.
func (u *GroupUsecaseImpl) membership(ctx context.Context, repo repository.GroupRepository, groupID, userID uuid.UUID, adminOnly bool) (*entity.Membership, *response.CustomError) {
	m, err := repo.GetMembership(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, toCustomError(ErrNotMember, "")
		}
		return nil, response.RepositoryError("failed to get membership")
	}
	if adminOnly && !m.IsAdmin() {
		return nil, response.ForbiddenError("only group admins can do this")
	}
	return m, nil
}

func (u *GroupUsecaseImpl) GetGroup(ctx context.Context, userID, groupID uuid.UUID) (*params.GroupResponse, *response.CustomError) {
	group, err := u.repo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("group not found")
		}
		return nil, response.RepositoryError("failed to get group")
	}
	if _, cerr := u.membership(ctx, u.repo, groupID, userID, false); cerr != nil {
		return nil, cerr
	}
	return params.NewGroupResponse(group, u.now()), nil
}

func (u *GroupUsecaseImpl) JoinGroup(ctx context.Context, userID uuid.UUID, req *params.JoinGroupRequest) (*params.GroupResponse, *response.CustomError) {
	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))
	group, err := u.repo.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("invalid invite code")
		}
		return nil, response.RepositoryError("failed to get group")
	}

	if _, err := u.repo.GetMembership(ctx, group.ID, userID); err == nil {
		return nil, response.ConflictError("already a member of this group")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.RepositoryError("failed to get membership")
	}

	membership := &entity.Membership{
		UserID:   userID,
		GroupID:  group.ID,
		Role:     entity.MembershipRoleMember,
		JoinedAt: u.now(),
	}
	if err := u.repo.AddMember(ctx, membership); err != nil {
		return nil, response.RepositoryError("failed to join group")
	}

	u.logger.WithFields(logrus.Fields{
		"group_id": group.ID,
		"user_id":  userID,
	}).Info("User joined group")

	return u.GetGroup(ctx, userID, group.ID)
}

func (u *GroupUsecaseImpl) InviteMember(ctx context.Context, userID, groupID uuid.UUID, req *params.InviteMemberRequest) *response.CustomError {
	group, err := u.repo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFoundError("group not found")
		}
		return response.RepositoryError("failed to get group")
	}
	if _, cerr := u.membership(ctx, u.repo, groupID, userID, true); cerr != nil {
		return cerr
	}

	inviter, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return response.RepositoryError("failed to get inviter")
	}

	u.logger.WithFields(logrus.Fields{
		"group_id": groupID,
		"email":    req.Email,
	}).Info("Group invitation sent")

	u.notifier.GroupInvitation(req.Email, inviter.Name, group.Name, group.InviteCode)
	return nil
}

func (u *GroupUsecaseImpl) RemoveMember(ctx context.Context, userID, groupID, memberID uuid.UUID) (*params.GroupResponse, *response.CustomError) {
	group, err := u.repo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("group not found")
		}
		return nil, response.RepositoryError("failed to get group")
	}
	if _, cerr := u.membership(ctx, u.repo, groupID, userID, true); cerr != nil {
		return nil, cerr
	}

	switch memberID {
	case group.CreatorID:
		return nil, response.BadRequestError("the group creator cannot be removed")
	case userID:
		return nil, response.BadRequestError("admins cannot remove themselves")
	}

	if err := u.repo.RemoveMember(ctx, groupID, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("member not found")
		}
		return nil, response.RepositoryError("failed to remove member")
	}

	u.logger.WithFields(logrus.Fields{
		"group_id":   groupID,
		"member_id":  memberID,
		"removed_by": userID,
	}).Info("Group member removed")

	return u.GetGroup(ctx, userID, groupID)
}

func (u *GroupUsecaseImpl) CreateGroupGoal(ctx context.Context, userID, groupID uuid.UUID, req *params.CreateGroupGoalRequest) (*params.GroupGoalResponse, *response.CustomError) {
	if !req.TargetAmount.IsPositive() {
		return nil, response.BadRequestError("target_amount must be greater than zero")
	}
	deadline, err := params.ParseDate(req.Deadline, u.now())
	if err != nil {
		return nil, response.BadRequestError(err.Error())
	}
	if _, cerr := u.membership(ctx, u.repo, groupID, userID, true); cerr != nil {
		return nil, cerr
	}

	goalType := req.GoalType
	if goalType == "" {
		goalType = entity.GroupGoalTypeSavings
	}

	goal := &entity.GroupGoal{
		GroupID:     groupID,
		Title:       req.Title,
		Description: req.Description,
		GoalType:    goalType,
		Progress: entity.Progress{
			TargetAmount:  req.TargetAmount,
			CurrentAmount: decimal.Zero,
			Deadline:      deadline,
			Status:        entity.GoalStatusActive,
		},
		CreatedBy: userID,
	}
	if err := u.repo.CreateGoal(ctx, goal); err != nil {
		return nil, response.RepositoryError("failed to create group goal")
	}

	u.logger.WithFields(logrus.Fields{
		"group_id":      groupID,
		"group_goal_id": goal.ID,
	}).Info("Group goal created")

	return params.NewGroupGoalResponse(goal, u.now()), nil
}

// Contribute books a member payment on the chosen target.
func (u *GroupUsecaseImpl) Contribute(ctx context.Context, userID, groupID uuid.UUID, target entity.ContributionTarget, req *params.GroupContributionRequest) (*params.GroupContributionResponse, *response.CustomError) {
	if !req.Amount.IsPositive() {
		return nil, response.BadRequestError("amount must be greater than zero")
	}
	date, err := params.ParseDate(req.Date, u.now())
	if err != nil {
		return nil, response.BadRequestError(err.Error())
	}

	tx := u.repo.BeginTx(ctx)
	if tx.Error != nil {
		return nil, response.GeneralError("failed to begin transaction")
	}
	defer tx.Rollback()
	txRepo := u.repo.WithTx(tx)

	if _, cerr := u.membership(ctx, txRepo, groupID, userID, false); cerr != nil {
		return nil, cerr
	}

	contribution := &entity.GroupContribution{
		GroupID: groupID,
		UserID:  userID,
		Amount:  req.Amount,
		Note:    req.Note,
		Date:    date,
	}
	resp := &params.GroupContributionResponse{}

	switch t := target.(type) {
	case entity.ToGoal:
		goal, err := txRepo.GetGoalForUpdate(ctx, groupID, t.GoalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NotFoundError("group goal not found")
			}
			return nil, response.RepositoryError("failed to get group goal")
		}
		if goal.IsCancelled() {
			return nil, toCustomError(ErrGoalCancelled, "")
		}
		goal.Apply(req.Amount)
		if err := txRepo.SaveGoalProgress(ctx, goal); err != nil {
			return nil, response.RepositoryError("failed to update group goal")
		}
		goalID := goal.ID
		contribution.GoalID = &goalID
		resp.Goal = params.NewGroupGoalResponse(goal, u.now())

	case entity.ToGroupLegacyAggregate:
		u.logger.WithField("group_id", groupID).Warn("Contribution booked on legacy group totals; target a group goal instead")
		group, err := txRepo.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NotFoundError("group not found")
			}
			return nil, response.RepositoryError("failed to get group")
		}
		if group.IsCancelled() {
			return nil, toCustomError(ErrGoalCancelled, "")
		}
		group.Apply(req.Amount)
		if err := txRepo.SaveProgress(ctx, group); err != nil {
			return nil, response.RepositoryError("failed to update group")
		}
		resp.Group = params.NewGroupResponse(group, u.now())

	default:
		return nil, response.BadRequestError("unknown contribution target")
	}

	if err := txRepo.CreateContribution(ctx, contribution); err != nil {
		return nil, response.RepositoryError("failed to create contribution")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.RepositoryError("failed to commit transaction")
	}

	u.logger.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  userID,
		"amount":   req.Amount.StringFixed(2),
	}).Info("Group contribution recorded")

	resp.ID = contribution.ID
	resp.Amount = contribution.Amount
	resp.Date = contribution.Date.Format(params.DateLayout)
	return resp, nil
}
